package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/rotate"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/zfs"
)

var (
	pruneFlagGroup     string
	pruneFlagKeep      int
	pruneFlagRecursive bool
	pruneFlagDryRun    bool
	pruneFlagYes       bool
	pruneFlagVerbose   bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune <filesystem>",
	Short: "Apply retention without creating a new snapshot",
	Long: `Destroy the oldest snapshots of a group beyond the retention count,
without creating a new snapshot first. Useful after lowering a group's keep
count.

Examples:
  # Trim tank/home down to the 3 newest daily snapshots
  zfs-snap-rotate prune tank/home --group daily --keep 3

  # Preview first
  zfs-snap-rotate prune tank/home --group daily --keep 3 --dry-run`,
	Args: exactArgs(1),
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().StringVar(&pruneFlagGroup, "group", "", "snapshot group label (letters and digits only)")
	pruneCmd.Flags().IntVar(&pruneFlagKeep, "keep", 0, "number of snapshots of the group to keep")
	pruneCmd.Flags().BoolVar(&pruneFlagRecursive, "recursive", false, "destroy recursively on descendant filesystems")
	pruneCmd.Flags().BoolVar(&pruneFlagDryRun, "dry-run", false, "show what would be destroyed without doing it")
	pruneCmd.Flags().BoolVar(&pruneFlagYes, "yes", false, "skip the confirmation prompt")
	pruneCmd.Flags().BoolVar(&pruneFlagVerbose, "verbose", false, "list every destroyed snapshot")

	RootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	if pruneFlagGroup == "" {
		return &UsageError{Err: fmt.Errorf("required flag --group not set")}
	}
	if !cmd.Flags().Changed("keep") {
		return &UsageError{Err: fmt.Errorf("required flag --keep not set")}
	}

	opts := rotate.Options{
		Filesystem: args[0],
		Group:      pruneFlagGroup,
		Keep:       pruneFlagKeep,
		Recursive:  pruneFlagRecursive,
		DryRun:     pruneFlagDryRun,
	}

	if !opts.DryRun && !pruneFlagYes {
		if !confirmPrune(opts.Filesystem, opts.Group, opts.Keep) {
			fmt.Println("Prune cancelled.")
			return nil
		}
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

	result, err := rotator.Prune(opts)
	if err != nil {
		recordRun(j, startedAt, opts, result, err)
		return err
	}

	if opts.DryRun {
		fmt.Println("Dry-run mode: no snapshots were destroyed.")
		fmt.Printf("Would destroy %d snapshots (%d kept)\n", len(result.Destroyed), result.Kept)
		for _, id := range result.Destroyed {
			fmt.Printf("  - %s\n", id)
		}
		return nil
	}

	printResult(result, pruneFlagVerbose)

	runErr := result.Err()
	recordRun(j, startedAt, opts, result, runErr)
	return runErr
}

// confirmPrune prompts before destroying snapshots outside a rotation cycle.
func confirmPrune(filesystem, group string, keep int) bool {
	fmt.Printf("Destroy all but the %d newest %q snapshots of %s? [y/N]: ", keep, group, filesystem)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
