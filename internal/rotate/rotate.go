// Package rotate implements the snapshot rotation core: naming new snapshots,
// partitioning a filesystem's snapshot set into keep and destroy subsets, and
// driving the engine through one create-then-expire cycle.
package rotate

import (
	"fmt"
	"time"
)

// Engine is the storage-engine surface the rotator consumes. *zfs.Client
// satisfies it; tests use a fake.
type Engine interface {
	FilesystemExists(filesystem string) (bool, error)
	CreateSnapshot(identifier string, recursive bool) error
	ListSnapshotNames(filesystem string, depthOne bool) ([]string, error)
	DestroySnapshot(identifier string, recursive bool) error
}

// Options describes one rotation cycle: one filesystem, one group.
type Options struct {
	Filesystem string
	Group      string
	Keep       int
	Recursive  bool

	// DryRun computes the full result without any mutating engine call.
	// The would-be snapshot is still counted toward the selection.
	DryRun bool
}

// DestroyFailure records one snapshot that could not be destroyed.
type DestroyFailure struct {
	Identifier string
	Err        error
}

// Result reports what one rotation cycle did (or, under DryRun, would do).
type Result struct {
	Created   string // full identifier of the new snapshot, empty for Prune
	Kept      int
	Destroyed []string
	Failures  []DestroyFailure
}

// Err reduces the per-snapshot destroy failures to the cycle's overall error.
// A cycle with any failed destroy fails as a whole, even though the creation
// step succeeded and the remaining candidates were still attempted.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return fmt.Errorf("failed to destroy %d of %d expired snapshots (first: %s: %v)",
		len(r.Failures), len(r.Destroyed)+len(r.Failures),
		r.Failures[0].Identifier, r.Failures[0].Err)
}

// Rotator runs rotation cycles against an engine.
type Rotator struct {
	engine Engine
	clock  func() time.Time
}

// New creates a Rotator.
func New(engine Engine) *Rotator {
	return &Rotator{engine: engine, clock: time.Now}
}

// NewWithClock creates a Rotator with a fixed clock, for tests.
func NewWithClock(engine Engine, clock func() time.Time) *Rotator {
	return &Rotator{engine: engine, clock: clock}
}

// Rotate performs one full cycle: validate, create the new snapshot, then
// expire everything of the group beyond the keep count. The new snapshot
// counts toward the keep count in the same cycle, so keep=1 leaves only the
// snapshot just created.
//
// Creation failure aborts before any destroy. A listing failure after a
// successful create also aborts, leaving the new snapshot in place: without a
// trustworthy snapshot set nothing can be safely destroyed.
func (r *Rotator) Rotate(opts Options) (*Result, error) {
	if err := r.validate(opts); err != nil {
		return nil, err
	}

	name := NewName(opts.Filesystem, opts.Group, r.clock())
	result := &Result{Created: name.String()}

	if !opts.DryRun {
		if err := r.engine.CreateSnapshot(name.String(), opts.Recursive); err != nil {
			return nil, err
		}
	}

	// Selection always runs against the filesystem's own snapshot list;
	// recursive mode propagates through create and destroy, where the engine
	// applies the same short name to every descendant.
	identifiers, err := r.engine.ListSnapshotNames(opts.Filesystem, true)
	if err != nil {
		if opts.DryRun {
			return nil, err
		}
		return nil, fmt.Errorf("snapshot %s was created but rotation was skipped: %w", name.String(), err)
	}
	if opts.DryRun {
		identifiers = append(identifiers, name.String())
	}

	r.expire(identifiers, opts, result)
	return result, nil
}

// Prune applies retention without creating a new snapshot. Used after
// lowering a group's keep count.
func (r *Rotator) Prune(opts Options) (*Result, error) {
	if err := r.validate(opts); err != nil {
		return nil, err
	}

	identifiers, err := r.engine.ListSnapshotNames(opts.Filesystem, true)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	r.expire(identifiers, opts, result)
	return result, nil
}

// expire selects and destroys the expired subset, attempting every candidate
// even when one fails. Failures land in result.Failures.
func (r *Rotator) expire(identifiers []string, opts Options, result *Result) {
	selection := Select(identifiers, opts.Group, opts.Keep)
	result.Kept = len(selection.Keep)

	for _, name := range selection.Destroy {
		if opts.DryRun {
			result.Destroyed = append(result.Destroyed, name.String())
			continue
		}
		if err := r.engine.DestroySnapshot(name.String(), opts.Recursive); err != nil {
			result.Failures = append(result.Failures, DestroyFailure{
				Identifier: name.String(),
				Err:        err,
			})
			continue
		}
		result.Destroyed = append(result.Destroyed, name.String())
	}
}

// validate checks the cycle's inputs before any mutating engine call.
func (r *Rotator) validate(opts Options) error {
	if opts.Filesystem == "" {
		return fmt.Errorf("filesystem is empty")
	}
	if err := ValidateGroup(opts.Group); err != nil {
		return err
	}
	if opts.Keep < 1 {
		return fmt.Errorf("invalid keep count %d: must be at least 1", opts.Keep)
	}

	exists, err := r.engine.FilesystemExists(opts.Filesystem)
	if err != nil {
		return fmt.Errorf("failed to check filesystem %s: %w", opts.Filesystem, err)
	}
	if !exists {
		return fmt.Errorf("filesystem %s does not exist", opts.Filesystem)
	}
	return nil
}
