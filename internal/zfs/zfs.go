// Package zfs wraps the zfs command-line tool. All engine operations the
// rotation core needs (existence check, snapshot create, list, destroy) shell
// out to a single `zfs` invocation and surface its stderr on failure.
package zfs

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Error is a zfs invocation that exited non-zero, with its stderr captured
// so callers can match on what the tool reported rather than on a flattened
// message string.
type Error struct {
	Subcommand string
	Stderr     string
	Err        error
}

func (e *Error) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("zfs %s failed: %v (stderr: %s)", e.Subcommand, e.Err, e.Stderr)
	}
	return fmt.Sprintf("zfs %s failed: %v", e.Subcommand, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Runner executes one zfs invocation and returns its stdout. Tests substitute
// a fake to simulate the engine without subprocesses.
type Runner func(args ...string) ([]byte, error)

// Client issues zfs commands.
type Client struct {
	run Runner
}

// New returns a Client that executes the real zfs binary.
func New() *Client {
	return &Client{run: runZFS}
}

// NewWithRunner returns a Client backed by a custom runner.
func NewWithRunner(run Runner) *Client {
	return &Client{run: run}
}

func runZFS(args ...string) ([]byte, error) {
	cmd := exec.Command("zfs", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &Error{
				Subcommand: args[0],
				Stderr:     strings.TrimSpace(string(exitErr.Stderr)),
				Err:        err,
			}
		}
		return nil, &Error{Subcommand: args[0], Err: err}
	}
	return output, nil
}

// FilesystemExists reports whether filesystem is an existing filesystem-class
// dataset. Snapshots and volumes under the same name do not count.
func (c *Client) FilesystemExists(filesystem string) (bool, error) {
	output, err := c.run("list", "-t", "filesystem", "-H", "-o", "name", filesystem)
	if err != nil {
		var zfsErr *Error
		if errors.As(err, &zfsErr) && strings.Contains(zfsErr.Stderr, "does not exist") {
			return false, nil
		}
		return false, err
	}
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if strings.TrimSpace(line) == filesystem {
			return true, nil
		}
	}
	return false, nil
}

// CreateSnapshot creates the snapshot under its full identifier. With
// recursive set, matching snapshots are created on every descendant
// filesystem under the same short name.
func (c *Client) CreateSnapshot(identifier string, recursive bool) error {
	args := []string{"snapshot"}
	if recursive {
		args = append(args, "-r")
	}
	args = append(args, identifier)
	if _, err := c.run(args...); err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", identifier, err)
	}
	return nil
}

// ListSnapshotNames lists snapshot identifiers in descending name order.
// With depthOne set, only the filesystem's own snapshots are returned;
// otherwise descendants are included.
func (c *Client) ListSnapshotNames(filesystem string, depthOne bool) ([]string, error) {
	args := []string{"list", "-t", "snapshot", "-H", "-o", "name", "-S", "name"}
	args = append(args, depthArgs(depthOne)...)
	args = append(args, filesystem)

	output, err := c.run(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots of %s: %w", filesystem, err)
	}

	var names []string
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// ListSnapshots lists snapshots with their used size in bytes, descending by
// name. Used by the list command; rotation itself only needs names.
func (c *Client) ListSnapshots(filesystem string, depthOne bool) ([]Snapshot, error) {
	args := []string{"list", "-t", "snapshot", "-H", "-p", "-o", "name,used", "-S", "name"}
	args = append(args, depthArgs(depthOne)...)
	args = append(args, filesystem)

	output, err := c.run(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots of %s: %w", filesystem, err)
	}

	var snapshots []Snapshot
	for _, line := range strings.Split(string(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return nil, fmt.Errorf("unexpected zfs list output line: %q", line)
		}
		used, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("failed to parse used size in line %q: %w", line, err)
		}
		snapshots = append(snapshots, Snapshot{Name: fields[0], Used: used})
	}
	return snapshots, nil
}

// DestroySnapshot destroys one snapshot by full identifier. With recursive
// set, same-named snapshots on descendant filesystems are destroyed too.
func (c *Client) DestroySnapshot(identifier string, recursive bool) error {
	args := []string{"destroy"}
	if recursive {
		args = append(args, "-r")
	}
	args = append(args, identifier)
	if _, err := c.run(args...); err != nil {
		return fmt.Errorf("failed to destroy snapshot %s: %w", identifier, err)
	}
	return nil
}

func depthArgs(depthOne bool) []string {
	if depthOne {
		return []string{"-d", "1"}
	}
	return []string{"-r"}
}
