package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/rotate"
)

// UsageError marks errors caused by malformed or missing command-line
// arguments, caught before any engine interaction. main exits 2 for these
// and 1 for everything else.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// exactArgs is cobra.ExactArgs with the failure classified as a usage error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &UsageError{Err: err}
		}
		return nil
	}
}

// openJournal opens the run journal, or returns nil when journaling is
// disabled or unavailable. The journal is an audit trail; a rotation must
// not fail because its bookkeeping can't be written.
func openJournal(path string) *journal.Journal {
	if noJournal || path == "" {
		return nil
	}
	j, err := journal.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: run journaling disabled: %v\n", err)
		return nil
	}
	return j
}

// recordRun writes one rotation cycle to the journal. Both result and runErr
// may describe the same cycle: a partial failure has a result and an error.
func recordRun(j *journal.Journal, startedAt time.Time, opts rotate.Options, result *rotate.Result, runErr error) {
	if j == nil || opts.DryRun {
		return
	}

	run := &journal.Run{
		StartedAt:  startedAt,
		Filesystem: opts.Filesystem,
		Group:      opts.Group,
		Keep:       opts.Keep,
		Status:     journal.StatusOK,
	}
	if result != nil {
		run.Created = result.Created
		run.DestroyedCount = len(result.Destroyed)
		run.FailedCount = len(result.Failures)
		if len(result.Failures) > 0 {
			run.Status = journal.StatusPartial
		}
	}
	if runErr != nil && (result == nil || len(result.Failures) == 0) {
		run.Status = journal.StatusError
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	runID, err := j.InsertRun(run)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run: %v\n", err)
		return
	}
	if result == nil {
		return
	}

	for _, id := range result.Destroyed {
		ds := &journal.DestroyedSnapshot{RunID: runID, Identifier: id, OK: true}
		if err := j.InsertDestroyedSnapshot(ds); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record destroyed snapshot: %v\n", err)
		}
	}
	for _, failure := range result.Failures {
		ds := &journal.DestroyedSnapshot{
			RunID:      runID,
			Identifier: failure.Identifier,
			OK:         false,
			Error:      failure.Err.Error(),
		}
		if err := j.InsertDestroyedSnapshot(ds); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record destroyed snapshot: %v\n", err)
		}
	}
}

// printResult prints what one cycle did, in the shared format used by the
// rotate, prune and run commands.
func printResult(result *rotate.Result, verbose bool) {
	if result.Created != "" {
		fmt.Printf("Created %s\n", result.Created)
	}

	if len(result.Destroyed) == 0 && len(result.Failures) == 0 {
		fmt.Printf("Nothing to destroy (%d kept)\n", result.Kept)
		return
	}

	fmt.Printf("Destroyed %d snapshots (%d kept)\n", len(result.Destroyed), result.Kept)
	if verbose {
		for _, id := range result.Destroyed {
			fmt.Printf("  - %s\n", id)
		}
	}

	if len(result.Failures) > 0 {
		fmt.Printf("\n⚠️  %d failures:\n", len(result.Failures))
		for _, failure := range result.Failures {
			fmt.Printf("  - %s: %v\n", failure.Identifier, failure.Err)
		}
	}
}
