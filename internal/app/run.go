package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/config"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/rotate"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/zfs"
)

var runFlagDryRun bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute every rotation policy from the config file",
	Long: `Run every policy from the policy file, one after another. A failing
policy does not stop the remaining ones; the command exits non-zero at the
end if any policy failed.

Examples:
  zfs-snap-rotate run
  zfs-snap-rotate run --config /etc/zfs-snap-rotate.yaml --dry-run`,
	Args: exactArgs(0),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runFlagDryRun, "dry-run", false, "show what every policy would do without doing it")

	RootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var j *journal.Journal
	if !runFlagDryRun {
		j = openJournal(cfg.Journal)
		if j != nil {
			defer j.Close()
		}
	}

	rotator := rotate.New(zfs.New())

	failed := 0
	for _, policy := range cfg.Policies {
		if runPolicy(rotator, j, policy, runFlagDryRun) != nil {
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d policies failed", failed, len(cfg.Policies))
	}
	return nil
}

// runPolicy executes one policy and prints its outcome.
func runPolicy(rotator *rotate.Rotator, j *journal.Journal, policy config.Policy, dryRun bool) error {
	opts := rotate.Options{
		Filesystem: policy.Filesystem,
		Group:      policy.Group,
		Keep:       policy.Keep,
		Recursive:  policy.Recursive,
		DryRun:     dryRun,
	}

	fmt.Printf("==> %s group %s (keep %d)\n", policy.Filesystem, policy.Group, policy.Keep)

	startedAt := time.Now()
	result, err := rotator.Rotate(opts)
	if err != nil {
		recordRun(j, startedAt, opts, result, err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	if dryRun {
		fmt.Printf("Would create %s, would destroy %d snapshots (%d kept)\n",
			result.Created, len(result.Destroyed), result.Kept)
		return nil
	}

	printResult(result, false)

	runErr := result.Err()
	recordRun(j, startedAt, opts, result, runErr)
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
	}
	return runErr
}
