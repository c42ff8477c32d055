package app

import (
	"github.com/spf13/cobra"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/config"
)

var (
	configPath  string
	journalPath string
	noJournal   bool

	// RootCmd is the root command for zfs-snap-rotate
	RootCmd = &cobra.Command{
		Use:   "zfs-snap-rotate",
		Short: "Rotating ZFS snapshots with per-group retention",
		Long: `zfs-snap-rotate creates a timestamped ZFS snapshot and destroys the
oldest snapshots of the same group once the retention count is exceeded.

Snapshots are named <filesystem>@YYYY-MM-DDTHH:MM:SS-<group> (UTC). The
fixed-width timestamp makes names sort chronologically as plain text, and the
group suffix keeps retention classes independent: rotating "daily" never
touches "weekly" snapshots, nor snapshots created by other tools.

Examples:
  # Snapshot tank/home and keep the 7 newest daily snapshots
  zfs-snap-rotate rotate tank/home --group daily --keep 7

  # Preview without touching the pool
  zfs-snap-rotate rotate tank/home --group daily --keep 7 --dry-run

  # Rotate a filesystem and all its descendants
  zfs-snap-rotate rotate tank/vm --group hourly --keep 24 --recursive

  # Run every policy from /etc/zfs-snap-rotate.yaml
  zfs-snap-rotate run

  # Keep policies running on their cron schedules
  zfs-snap-rotate daemon

  # Inspect what past runs destroyed
  zfs-snap-rotate history`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "policy file path")
	RootCmd.PersistentFlags().StringVar(&journalPath, "journal", config.DefaultJournalPath, "run journal database path")
	RootCmd.PersistentFlags().BoolVar(&noJournal, "no-journal", false, "disable run journaling")

	RootCmd.SuggestionsMinimumDistance = 2

	// Flag parse errors are usage errors, not operational ones.
	RootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
}

// Execute runs the root command.
func Execute() error {
	return RootCmd.Execute()
}
