package output

import (
	"strings"
	"testing"
	"time"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
)

func TestRenderSnapshotTable(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		rows     []SnapshotRow
		contains []string
	}{
		{
			name:     "empty",
			rows:     []SnapshotRow{},
			contains: []string{"No snapshots found"},
		},
		{
			name: "managed snapshot",
			rows: []SnapshotRow{
				{
					Identifier: "tank/home@2024-01-05T00:00:00-daily",
					Group:      "daily",
					Created:    now.Add(-24 * time.Hour),
					Used:       1048576,
				},
			},
			contains: []string{"tank/home@2024-01-05T00:00:00-daily", "daily", "1 day ago", "1.0 MiB"},
		},
		{
			name: "foreign snapshot",
			rows: []SnapshotRow{
				{Identifier: "tank/home@before-upgrade", Used: 0},
			},
			contains: []string{"tank/home@before-upgrade", "-", "0 B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderSnapshotTable(tt.rows)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("table missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestRenderRunTable(t *testing.T) {
	runs := []*journal.Run{
		{
			ID:             2,
			StartedAt:      time.Now().Add(-time.Hour),
			Filesystem:     "tank/vm",
			Group:          "hourly",
			Keep:           24,
			DestroyedCount: 1,
			FailedCount:    1,
			Status:         journal.StatusPartial,
		},
		{
			ID:             1,
			StartedAt:      time.Now().Add(-25 * time.Hour),
			Filesystem:     "tank/home",
			Group:          "daily",
			Keep:           7,
			DestroyedCount: 1,
			Status:         journal.StatusOK,
		},
	}

	got := RenderRunTable(runs)
	for _, want := range []string{"tank/vm@hourly", "tank/home@daily", "partial", "ok", "1 hour ago"} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}

func TestRenderRunTableEmpty(t *testing.T) {
	if got := RenderRunTable(nil); !strings.Contains(got, "No rotation runs recorded") {
		t.Errorf("unexpected empty table output: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short, 10) = %q", got)
	}
	if got := truncate("a-very-long-snapshot-name", 10); got != "a-very-..." {
		t.Errorf("truncate long = %q", got)
	}
	if len(truncate("abcdef", 3)) != 3 {
		t.Errorf("truncate tiny = %q", truncate("abcdef", 3))
	}
}
