// Package output renders terminal tables for snapshot listings and run
// history. Tables are plain fixed-width columns; ANSI color is emitted only
// when stdout is a TTY and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
)

// ANSI color codes for run status display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// SnapshotRow is one line of a snapshot listing.
type SnapshotRow struct {
	Identifier string
	Group      string    // empty for snapshots outside the rotation scheme
	Created    time.Time // zero for snapshots outside the rotation scheme
	Used       uint64
}

// RenderSnapshotTable renders a snapshot listing. Rows are printed in the
// order given; callers sort.
func RenderSnapshotTable(rows []SnapshotRow) string {
	if len(rows) == 0 {
		return "No snapshots found.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-52s %-10s %-15s %-8s\n",
		"Snapshot", "Group", "Created", "Used"))
	sb.WriteString(strings.Repeat("─", 88))
	sb.WriteString("\n")

	for _, row := range rows {
		group := row.Group
		created := "-"
		if group == "" {
			group = "-"
		}
		if !row.Created.IsZero() {
			created = humanize.Time(row.Created)
		}

		sb.WriteString(fmt.Sprintf("%-52s %-10s %-15s %-8s\n",
			truncate(row.Identifier, 52),
			truncate(group, 10),
			created,
			humanize.IBytes(row.Used)))
	}

	return sb.String()
}

// RenderRunTable renders rotation run history, as stored in the journal.
func RenderRunTable(runs []*journal.Run) string {
	if len(runs) == 0 {
		return "No rotation runs recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-5s %-15s %-30s %-5s %-10s %-7s %-8s\n",
		"ID", "When", "Target", "Keep", "Destroyed", "Failed", "Status"))
	sb.WriteString(strings.Repeat("─", 86))
	sb.WriteString("\n")

	for _, run := range runs {
		target := run.Filesystem + "@" + run.Group

		sb.WriteString(fmt.Sprintf("%-5d %-15s %-30s %-5d %-10d %-7d %-8s\n",
			run.ID,
			humanize.Time(run.StartedAt),
			truncate(target, 30),
			run.Keep,
			run.DestroyedCount,
			run.FailedCount,
			statusColored(run.Status)))
	}

	return sb.String()
}

// statusColored colors a run status when color is enabled.
func statusColored(status string) string {
	switch status {
	case journal.StatusOK:
		return colorize(colorGreen, status)
	case journal.StatusPartial:
		return colorize(colorYellow, status)
	case journal.StatusError:
		return colorize(colorRed, status)
	default:
		return status
	}
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
