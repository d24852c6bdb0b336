package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"vodforge/internal/config"
	"vodforge/internal/logging"
	"vodforge/internal/pipeline"
	"vodforge/internal/records"
)

// Daemon coordinates the background pipeline and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *records.Store
	pipeline *pipeline.Pipeline
	lockPath string
	lock     *flock.Flock
	running  atomic.Bool
	cancel   context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	RecordsDBPath string
	LockFilePath  string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *records.Store, p *pipeline.Pipeline, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || p == nil {
		return nil, errors.New("daemon requires config, store, and pipeline")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "vodforge.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		pipeline: p,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the pipeline.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another vodforge instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.pipeline.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start pipeline: %w", err)
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("vodforge daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.pipeline.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("vodforge daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports the daemon's runtime information.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		RecordsDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
	}
}
