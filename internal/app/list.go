package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/output"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/rotate"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/zfs"
)

var (
	listFlagGroup     string
	listFlagRecursive bool
)

var listCmd = &cobra.Command{
	Use:   "list <filesystem>",
	Short: "List snapshots of a filesystem",
	Long: `List a filesystem's snapshots, newest first. Snapshots named by this tool
show their group and creation time; foreign snapshots show up too but are
marked with "-" and would never be touched by rotation.

With --group, only that group's snapshots are shown.

Examples:
  zfs-snap-rotate list tank/home
  zfs-snap-rotate list tank/home --group daily
  zfs-snap-rotate list tank/vm --recursive`,
	Args: exactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFlagGroup, "group", "", "only show snapshots of this group")
	listCmd.Flags().BoolVar(&listFlagRecursive, "recursive", false, "include snapshots of descendant filesystems")

	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if listFlagGroup != "" {
		if err := rotate.ValidateGroup(listFlagGroup); err != nil {
			return err
		}
	}

	engine := zfs.New()
	filesystem := args[0]

	exists, err := engine.FilesystemExists(filesystem)
	if err != nil {
		return fmt.Errorf("failed to check filesystem %s: %w", filesystem, err)
	}
	if !exists {
		return fmt.Errorf("filesystem %s does not exist", filesystem)
	}

	snapshots, err := engine.ListSnapshots(filesystem, !listFlagRecursive)
	if err != nil {
		return err
	}

	var rows []output.SnapshotRow
	for _, snap := range snapshots {
		name, ok := rotate.ParseName(snap.Name)
		if listFlagGroup != "" && (!ok || name.Group != listFlagGroup) {
			continue
		}

		row := output.SnapshotRow{Identifier: snap.Name, Used: snap.Used}
		if ok {
			row.Group = name.Group
			row.Created = name.Timestamp
		}
		rows = append(rows, row)
	}

	fmt.Print(output.RenderSnapshotTable(rows))
	return nil
}
