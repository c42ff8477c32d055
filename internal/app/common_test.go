package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/rotate"
)

func TestUsageErrorUnwraps(t *testing.T) {
	inner := fmt.Errorf("required flag --group not set")
	err := error(&UsageError{Err: inner})

	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Fatal("errors.As failed to find UsageError")
	}
	if usageErr.Error() != inner.Error() {
		t.Errorf("Error() = %q, want %q", usageErr.Error(), inner.Error())
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is failed through UsageError")
	}
}

func TestExactArgs(t *testing.T) {
	check := exactArgs(1)

	if err := check(rotateCmd, []string{"tank/home"}); err != nil {
		t.Errorf("exactArgs(1) rejected one arg: %v", err)
	}

	err := check(rotateCmd, nil)
	if err == nil {
		t.Fatal("exactArgs(1) accepted zero args")
	}
	var usageErr *UsageError
	if !errors.As(err, &usageErr) {
		t.Errorf("arg count error not classified as usage error: %v", err)
	}
}

func setupTestJournal(t *testing.T) *journal.Journal {
	t.Helper()
	j, err := journal.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordRun(t *testing.T) {
	j := setupTestJournal(t)

	opts := rotate.Options{Filesystem: "tank/home", Group: "daily", Keep: 2}
	result := &rotate.Result{
		Created:   "tank/home@2024-01-06T00:00:00-daily",
		Kept:      2,
		Destroyed: []string{"tank/home@2024-01-01T00:00:00-daily"},
		Failures: []rotate.DestroyFailure{
			{Identifier: "tank/home@2024-01-02T00:00:00-daily", Err: fmt.Errorf("dataset is busy")},
		},
	}

	recordRun(j, time.Now(), opts, result, result.Err())

	runs, err := j.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	run := runs[0]
	if run.Status != journal.StatusPartial {
		t.Errorf("Status = %q, want %q", run.Status, journal.StatusPartial)
	}
	if run.DestroyedCount != 1 || run.FailedCount != 1 {
		t.Errorf("counts = %d destroyed, %d failed; want 1 and 1", run.DestroyedCount, run.FailedCount)
	}
	if run.Created != result.Created {
		t.Errorf("Created = %q, want %q", run.Created, result.Created)
	}

	attempts, err := j.ListDestroyedSnapshots(run.ID)
	if err != nil {
		t.Fatalf("ListDestroyedSnapshots failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(attempts))
	}
	if !attempts[0].OK || attempts[1].OK {
		t.Errorf("attempts = %+v, want ok then failed", attempts)
	}
}

func TestRecordRunErrorStatus(t *testing.T) {
	j := setupTestJournal(t)

	opts := rotate.Options{Filesystem: "tank/home", Group: "daily", Keep: 2}
	recordRun(j, time.Now(), opts, nil, fmt.Errorf("filesystem tank/home does not exist"))

	runs, err := j.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].Status != journal.StatusError {
		t.Errorf("Status = %q, want %q", runs[0].Status, journal.StatusError)
	}
	if runs[0].Error == "" {
		t.Error("Error text empty, want message recorded")
	}
}

func TestRecordRunSkipsDryRun(t *testing.T) {
	j := setupTestJournal(t)

	opts := rotate.Options{Filesystem: "tank/home", Group: "daily", Keep: 2, DryRun: true}
	recordRun(j, time.Now(), opts, &rotate.Result{Created: "tank/home@x"}, nil)

	runs, err := j.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("dry-run recorded %d runs, want 0", len(runs))
	}
}
