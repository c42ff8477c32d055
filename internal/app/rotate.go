package app

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/rotate"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/zfs"
)

var (
	rotateFlagGroup     string
	rotateFlagKeep      int
	rotateFlagRecursive bool
	rotateFlagDryRun    bool
	rotateFlagVerbose   bool
)

var rotateCmd = &cobra.Command{
	Use:   "rotate <filesystem>",
	Short: "Snapshot a filesystem and destroy expired snapshots of the group",
	Long: `Create a new snapshot of a filesystem, then destroy the oldest snapshots
of the same group beyond the retention count.

The new snapshot counts toward the retention count in the same run: with
--keep 1 the filesystem ends up holding only the snapshot just created.
Snapshots of other groups, and snapshots not named by this tool, are never
counted and never destroyed.

A failed destroy does not stop the run; the remaining expired snapshots are
still attempted and the run exits non-zero at the end.

Examples:
  # Keep the 7 newest daily snapshots of tank/home
  zfs-snap-rotate rotate tank/home --group daily --keep 7

  # Show what would happen without touching the pool
  zfs-snap-rotate rotate tank/home --group daily --keep 7 --dry-run

  # Snapshot and rotate tank/vm and its descendants together
  zfs-snap-rotate rotate tank/vm --group hourly --keep 24 --recursive`,
	Args: exactArgs(1),
	RunE: runRotate,
}

func init() {
	rotateCmd.Flags().StringVar(&rotateFlagGroup, "group", "", "snapshot group label (letters and digits only)")
	rotateCmd.Flags().IntVar(&rotateFlagKeep, "keep", 0, "number of snapshots of the group to keep")
	rotateCmd.Flags().BoolVar(&rotateFlagRecursive, "recursive", false, "snapshot and destroy recursively on descendant filesystems")
	rotateCmd.Flags().BoolVar(&rotateFlagDryRun, "dry-run", false, "show what would be created and destroyed without doing it")
	rotateCmd.Flags().BoolVar(&rotateFlagVerbose, "verbose", false, "list every destroyed snapshot")

	RootCmd.AddCommand(rotateCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	if rotateFlagGroup == "" {
		return &UsageError{Err: fmt.Errorf("required flag --group not set")}
	}
	if !cmd.Flags().Changed("keep") {
		return &UsageError{Err: fmt.Errorf("required flag --keep not set")}
	}

	opts := rotate.Options{
		Filesystem: args[0],
		Group:      rotateFlagGroup,
		Keep:       rotateFlagKeep,
		Recursive:  rotateFlagRecursive,
		DryRun:     rotateFlagDryRun,
	}

	rotator := rotate.New(zfs.New())

	var j *journal.Journal
	if !opts.DryRun {
		j = openJournal(journalPath)
		if j != nil {
			defer j.Close()
		}
	}
	startedAt := time.Now()

	result, err := rotator.Rotate(opts)
	if err != nil {
		recordRun(j, startedAt, opts, result, err)
		return err
	}

	if opts.DryRun {
		fmt.Println("Dry-run mode: no snapshots were created or destroyed.")
		fmt.Printf("Would create %s\n", result.Created)
		fmt.Printf("Would destroy %d snapshots (%d kept)\n", len(result.Destroyed), result.Kept)
		for _, id := range result.Destroyed {
			fmt.Printf("  - %s\n", id)
		}
		return nil
	}

	printResult(result, rotateFlagVerbose)

	runErr := result.Err()
	recordRun(j, startedAt, opts, result, runErr)
	return runErr
}
