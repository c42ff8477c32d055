package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/output"
)

var (
	historyFlagLimit int
	historyFlagRun   int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent rotation runs from the journal",
	Long: `Show the most recent rotation runs recorded in the journal, newest
first. With --run, shows every destroy attempt of one run instead.

Examples:
  zfs-snap-rotate history
  zfs-snap-rotate history --limit 50
  zfs-snap-rotate history --run 17`,
	Args: exactArgs(0),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 20, "number of runs to show")
	historyCmd.Flags().Int64Var(&historyFlagRun, "run", 0, "show destroy attempts of one run")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyFlagLimit < 1 {
		return &UsageError{Err: fmt.Errorf("invalid --limit %d: must be at least 1", historyFlagLimit)}
	}

	j, err := journal.Open(journalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	if historyFlagRun > 0 {
		snapshots, err := j.ListDestroyedSnapshots(historyFlagRun)
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Printf("Run %d destroyed no snapshots.\n", historyFlagRun)
			return nil
		}
		for _, ds := range snapshots {
			if ds.OK {
				fmt.Printf("  ✓ %s\n", ds.Identifier)
			} else {
				fmt.Printf("  ✗ %s: %s\n", ds.Identifier, ds.Error)
			}
		}
		return nil
	}

	runs, err := j.ListRuns(historyFlagLimit)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderRunTable(runs))
	return nil
}
