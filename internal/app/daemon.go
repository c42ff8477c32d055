package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/config"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/journal"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/rotate"
	"github.com/jeanpaulgalea/zfs-snap-rotate/internal/zfs"
)

// debounceInterval coalesces the burst of fsnotify events an editor or
// config-management tool produces when rewriting the policy file.
const debounceInterval = 500 * time.Millisecond

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled rotation policies until stopped",
	Long: `Run in the foreground and execute every policy that has a cron
schedule. The policy file is watched for changes and reloaded on the fly; a
broken edit keeps the previous policies running. Stop with SIGINT or SIGTERM.

Intended to run under a supervisor (systemd unit, container entrypoint).

Example policy entry:
  policies:
    - filesystem: tank/home
      group: daily
      keep: 7
      schedule: "0 3 * * *"`,
	Args: exactArgs(0),
	RunE: runDaemon,
}

func init() {
	RootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	d := &daemon{
		configPath: configPath,
		logger:     slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "daemon"),
		rotator:    rotate.New(zfs.New()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return d.run(ctx, cfg)
}

type daemon struct {
	configPath string
	logger     *slog.Logger
	rotator    *rotate.Rotator

	// runMu serializes policy runs: the engine is driven by at most one
	// rotation cycle at a time, matching the tool's one-at-a-time model.
	// Reloads and shutdown must never hold it while waiting for cron to
	// stop, or they deadlock with a job queued behind the running one.
	runMu sync.Mutex

	// mu guards the cron and journal pointers across reloads.
	mu      sync.Mutex
	cron    *cron.Cron
	journal *journal.Journal
}

func (d *daemon) run(ctx context.Context, cfg *config.Config) error {
	d.apply(cfg)
	defer d.shutdown()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		d.logger.Warn("config watching disabled", "error", err)
		<-ctx.Done()
		return nil
	}
	defer watcher.Close()

	// Watch the directory rather than the file: editors and config tools
	// replace the file by rename, which would orphan a file watch.
	if err := watcher.Add(filepath.Dir(d.configPath)); err != nil {
		d.logger.Warn("config watching disabled", "error", err, "path", d.configPath)
		<-ctx.Done()
		return nil
	}

	d.logger.Info("daemon started", "config", d.configPath)

	var debounce *time.Timer
	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				<-ctx.Done()
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(d.configPath) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceInterval, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				<-ctx.Done()
				return nil
			}
			d.logger.Warn("config watch error", "error", err)

		case <-reload:
			newCfg, err := config.Load(d.configPath)
			if err != nil {
				d.logger.Error("config reload failed, keeping previous policies", "error", err)
				continue
			}
			d.apply(newCfg)
			d.logger.Info("config reloaded", "policies", len(newCfg.Policies))
		}
	}
}

// apply replaces the running schedule with the given config.
func (d *daemon) apply(cfg *config.Config) {
	d.stopSchedule()

	var j *journal.Journal
	if !noJournal {
		var err error
		j, err = journal.Open(cfg.Journal)
		if err != nil {
			d.logger.Warn("run journaling disabled", "error", err)
			j = nil
		}
	}

	c := cron.New()
	scheduled := 0
	for _, policy := range cfg.Policies {
		if policy.Schedule == "" {
			d.logger.Info("policy has no schedule, skipping",
				"filesystem", policy.Filesystem, "group", policy.Group)
			continue
		}

		p := policy
		if _, err := c.AddFunc(p.Schedule, func() { d.runPolicy(p) }); err != nil {
			// Validated at load time; only reachable if validation drifts.
			d.logger.Error("failed to schedule policy",
				"filesystem", p.Filesystem, "group", p.Group, "error", err)
			continue
		}
		scheduled++
		d.logger.Info("policy scheduled",
			"filesystem", p.Filesystem, "group", p.Group,
			"keep", p.Keep, "schedule", p.Schedule)
	}

	d.mu.Lock()
	d.cron = c
	d.journal = j
	d.mu.Unlock()

	c.Start()
	d.logger.Info("schedule applied", "scheduled", scheduled, "policies", len(cfg.Policies))
}

// stopSchedule detaches the current cron and journal, then waits for
// in-flight jobs and closes the journal. The wait happens without holding
// any lock a job could be queued on: a detached job that runs late finds
// d.journal nil and skips recording.
func (d *daemon) stopSchedule() {
	d.mu.Lock()
	c := d.cron
	j := d.journal
	d.cron = nil
	d.journal = nil
	d.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	if j != nil {
		j.Close()
	}
}

func (d *daemon) runPolicy(policy config.Policy) {
	d.runMu.Lock()
	defer d.runMu.Unlock()

	d.mu.Lock()
	j := d.journal
	d.mu.Unlock()

	logger := d.logger.With("filesystem", policy.Filesystem, "group", policy.Group)
	logger.Info("rotation started", "keep", policy.Keep)

	opts := rotate.Options{
		Filesystem: policy.Filesystem,
		Group:      policy.Group,
		Keep:       policy.Keep,
		Recursive:  policy.Recursive,
	}

	startedAt := time.Now()
	result, err := d.rotator.Rotate(opts)
	if err != nil {
		recordRun(j, startedAt, opts, result, err)
		logger.Error("rotation failed", "error", err)
		return
	}

	runErr := result.Err()
	recordRun(j, startedAt, opts, result, runErr)

	if runErr != nil {
		logger.Error("rotation incomplete",
			"created", result.Created,
			"destroyed", len(result.Destroyed),
			"failed", len(result.Failures),
			"error", runErr)
		return
	}
	logger.Info("rotation finished",
		"created", result.Created,
		"destroyed", len(result.Destroyed),
		"kept", result.Kept)
}

func (d *daemon) shutdown() {
	d.stopSchedule()
}
