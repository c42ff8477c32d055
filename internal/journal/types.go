package journal

import "time"

// Run statuses.
const (
	StatusOK      = "ok"      // rotation completed, nothing failed
	StatusPartial = "partial" // snapshot created but some destroys failed
	StatusError   = "error"   // validation, creation or listing failed
)

// Run is one recorded rotation cycle.
type Run struct {
	ID             int64
	StartedAt      time.Time
	Filesystem     string
	Group          string
	Keep           int
	Created        string // full identifier of the created snapshot, if any
	DestroyedCount int
	FailedCount    int
	Status         string
	Error          string
}

// DestroyedSnapshot is one destroy attempt within a run.
type DestroyedSnapshot struct {
	RunID      int64
	Identifier string
	OK         bool
	Error      string
}
