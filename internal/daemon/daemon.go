// Package daemon runs scheduled dashboard updates: a gocron schedule derived
// from update_frequency, optional Prometheus metrics, optional NATS run
// events, and git publishing of changed documents.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/dashboard/internal/config"
	"git.home.luguber.info/inful/dashboard/internal/dashboard"
	"git.home.luguber.info/inful/dashboard/internal/events"
	"git.home.luguber.info/inful/dashboard/internal/git"
	"git.home.luguber.info/inful/dashboard/internal/logfields"
	"git.home.luguber.info/inful/dashboard/internal/metrics"
	"git.home.luguber.info/inful/dashboard/internal/state"
)

// runTimeout caps one scheduled update end to end; individual fetches have
// their own (shorter) timeouts and retry budgets.
const runTimeout = 10 * time.Minute

// Daemon owns the scheduler and the shared run infrastructure.
type Daemon struct {
	mu         sync.RWMutex
	cfg        *config.Config
	configPath string

	scheduler gocron.Scheduler
	job       gocron.Job

	store     state.Store
	publisher *events.Publisher
	gitPub    *git.Publisher
	recorder  metrics.Recorder
	registry  *prom.Registry

	httpServer *http.Server
	watcher    *ConfigWatcher
}

// New creates a daemon from a loaded config. The config file path is watched
// for changes when non-empty.
func New(cfg *config.Config, configPath string) (*Daemon, error) {
	if cfg.Daemon == nil {
		return nil, fmt.Errorf("daemon configuration block is required")
	}

	d := &Daemon{
		cfg:        cfg,
		configPath: configPath,
		recorder:   metrics.NoopRecorder{},
	}

	if cfg.Daemon.MetricsAddr != "" {
		d.registry = prom.NewRegistry()
		d.recorder = metrics.NewPrometheusRecorder(d.registry)
	}

	if err := os.MkdirAll(cfg.Daemon.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := state.NewSQLiteStore(filepath.Join(cfg.Daemon.DataDir, "runs.db"))
	if err != nil {
		return nil, fmt.Errorf("open run history: %w", err)
	}
	d.store = store

	if cfg.Daemon.NATS != nil {
		pub, err := events.NewPublisher(cfg.Daemon.NATS)
		if err != nil {
			// Event delivery is best effort; a missing broker must not keep
			// the schedule from running.
			slog.Warn("NATS publisher unavailable", logfields.Error(err))
		} else {
			d.publisher = pub
		}
	}

	d.gitPub = git.NewPublisher(cfg.Daemon.Git)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	d.scheduler = scheduler

	return d, nil
}

// Start schedules the periodic update and begins serving metrics. It returns
// after startup; the scheduler runs on its own goroutines.
func (d *Daemon) Start(ctx context.Context) error {
	interval, err := d.cfg.Daemon.UpdateInterval()
	if err != nil {
		return err
	}

	job, err := d.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(d.runScheduled),
		gocron.WithName("dashboard-update"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule update job: %w", err)
	}
	d.job = job

	slog.Info("Starting scheduler", slog.Duration("interval", interval))
	d.scheduler.Start()

	if addr := d.cfg.Daemon.MetricsAddr; addr != "" {
		d.startMetricsServer(addr)
	}

	if d.configPath != "" {
		watcher, err := NewConfigWatcher(d.configPath, d)
		if err != nil {
			return err
		}
		d.watcher = watcher
		if err := watcher.Start(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Stop shuts the scheduler, watcher, and metrics server down gracefully.
func (d *Daemon) Stop(ctx context.Context) error {
	slog.Info("Stopping daemon")

	if d.watcher != nil {
		_ = d.watcher.Stop()
	}
	if err := d.scheduler.Shutdown(); err != nil {
		slog.Warn("Scheduler shutdown failed", logfields.Error(err))
	}
	if d.httpServer != nil {
		if err := d.httpServer.Shutdown(ctx); err != nil {
			slog.Warn("Metrics server shutdown failed", logfields.Error(err))
		}
	}
	d.publisher.Close()
	if err := d.store.Close(); err != nil {
		slog.Warn("Run history close failed", logfields.Error(err))
	}
	return nil
}

// RunOnce executes a single update outside the schedule (manual trigger).
func (d *Daemon) RunOnce(ctx context.Context) error {
	return d.runUpdate(ctx)
}

func (d *Daemon) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if err := d.runUpdate(ctx); err != nil {
		slog.Error("Scheduled update failed", logfields.Error(err))
	}
}

func (d *Daemon) runUpdate(ctx context.Context) error {
	cfg := d.currentConfig()
	orch := dashboard.New(cfg, d.recorder)

	outcome, runErr := orch.Run(ctx)

	rec := state.RunRecord{
		ID:         outcome.RunID,
		StartedAt:  outcome.StartedAt,
		FinishedAt: outcome.FinishedAt,
		Changed:    outcome.Changed,
		Sections:   map[string]string{},
	}
	for name, st := range outcome.Sections {
		rec.Sections[name] = string(st)
	}
	if runErr != nil {
		rec.Error = runErr.Error()
		rec.FinishedAt = time.Now()
	}
	if err := d.store.Record(rec); err != nil {
		slog.Warn("Failed to record run outcome", logfields.Error(err))
	}

	if runErr != nil {
		return runErr
	}

	if d.publisher != nil {
		d.publisher.Publish(events.RunEvent{
			RunID:      outcome.RunID,
			FinishedAt: outcome.FinishedAt,
			Changed:    outcome.Changed,
			Sections:   len(outcome.Sections),
			Failed:     outcome.UnavailableSections(),
		})
	}

	if outcome.Changed && d.gitPub != nil {
		if err := d.gitPub.Publish(ctx, cfg.Output.ReadmePath); err != nil {
			// Publishing is retried implicitly on the next changed run.
			slog.Error("Git publish failed", logfields.Error(err))
		}
	}
	return nil
}

func (d *Daemon) startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(d.registry))
	d.httpServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		slog.Info("Serving metrics", slog.String("addr", addr))
		if err := d.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", logfields.Error(err))
		}
	}()
}

func (d *Daemon) currentConfig() *config.Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// Reload swaps in a freshly loaded config and reschedules the update job if
// the interval changed. Called by the config watcher.
func (d *Daemon) Reload(cfg *config.Config) error {
	if cfg.Daemon == nil {
		return fmt.Errorf("reloaded config is missing the daemon block")
	}

	oldInterval, _ := d.currentConfig().Daemon.UpdateInterval()
	newInterval, err := cfg.Daemon.UpdateInterval()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.cfg = cfg
	d.mu.Unlock()

	if newInterval != oldInterval && d.job != nil {
		job, err := d.scheduler.Update(
			d.job.ID(),
			gocron.DurationJob(newInterval),
			gocron.NewTask(d.runScheduled),
			gocron.WithName("dashboard-update"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return fmt.Errorf("failed to reschedule update job: %w", err)
		}
		d.job = job
		slog.Info("Update schedule changed", slog.Duration("interval", newInterval))
	}

	slog.Info("Configuration reloaded")
	return nil
}
