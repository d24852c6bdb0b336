package pipeline

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"vodforge/internal/config"
	"vodforge/internal/logging"
	"vodforge/internal/notifications"
	"vodforge/internal/records"
	"vodforge/internal/stagemove"
	"vodforge/internal/transcode"
)

// Transcoder produces the HLS ladder for one source video.
type Transcoder interface {
	Transcode(ctx context.Context, sourcePath string, sink transcode.ProgressSink) (*transcode.Result, error)
}

// Pipeline owns bundle detection and processing for one upload root.
type Pipeline struct {
	cfg        *config.Config
	store      *records.Store
	sync       *records.Synchronizer
	mover      *stagemove.Mover
	transcoder Transcoder
	notifier   notifications.Service
	logger     *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}

	pending chan string
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

// New assembles a pipeline with the default component implementations.
func New(cfg *config.Config, store *records.Store, logger *slog.Logger) *Pipeline {
	return NewWithComponents(
		cfg,
		store,
		transcode.NewOrchestrator(cfg, logging.NewComponentLogger(logger, "transcode")),
		notifications.NewService(cfg),
		logger,
	)
}

// NewWithComponents assembles a pipeline with injected transcoder and
// notifier, used by tests and embedders.
func NewWithComponents(cfg *config.Config, store *records.Store, transcoder Transcoder, notifier notifications.Service, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}
	return &Pipeline{
		cfg:        cfg,
		store:      store,
		sync:       records.NewSynchronizer(store),
		mover:      stagemove.New(logging.NewComponentLogger(logger, "stagemove")),
		transcoder: transcoder,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		inflight:   make(map[string]struct{}),
		pending:    make(chan string, 64),
	}
}

// Start prepares the stage directories, fails over records and bundle
// directories orphaned by a previous run, and launches the scanner and
// worker pool. It returns once everything is running.
func (p *Pipeline) Start(ctx context.Context) error {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return err
	}

	stale, err := p.store.MarkStaleProcessing(ctx)
	if err != nil {
		return err
	}
	if stale > 0 {
		p.logger.Warn("failed records left processing by previous run",
			logging.Int64("count", stale))
	}
	if err := p.failOrphanedBundles(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	workers := p.cfg.Workflow.BundleWorkers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.scan(runCtx)

	p.logger.Info("pipeline started",
		logging.String("pending_dir", p.cfg.PendingDir()),
		logging.Int("bundle_workers", workers),
		logging.Int("episode_workers", p.cfg.Workflow.EpisodeWorkers))
	return nil
}

// failOrphanedBundles routes bundle directories stranded in the processing
// area by a previous run to the failed area, matching the record failover
// done by MarkStaleProcessing. From there the retry command can requeue them.
func (p *Pipeline) failOrphanedBundles(ctx context.Context) error {
	entries, err := os.ReadDir(p.cfg.ProcessingDir())
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if _, err := p.mover.Relocate(ctx, name, p.cfg.ProcessingDir(), p.cfg.FailedDir()); err != nil {
			p.logger.Error("move orphaned bundle to failed area",
				logging.String(logging.FieldBundle, name),
				logging.Error(err))
			continue
		}
		p.logger.Warn("orphaned bundle moved to failed area",
			logging.String(logging.FieldBundle, name))
	}
	return nil
}

// Stop cancels all work and waits for in-flight bundles to wind down.
// Cancellation kills any running encoder process group.
func (p *Pipeline) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.logger.Info("pipeline stopped")
}

// Admit registers a bundle for processing, deduplicating against work that
// is already queued or running. It reports whether the bundle was accepted.
func (p *Pipeline) Admit(bundleName string) bool {
	p.mu.Lock()
	if _, exists := p.inflight[bundleName]; exists {
		p.mu.Unlock()
		return false
	}
	p.inflight[bundleName] = struct{}{}
	p.mu.Unlock()

	select {
	case p.pending <- bundleName:
		return true
	default:
		// Queue full; release so the next scan retries.
		p.release(bundleName)
		return false
	}
}

func (p *Pipeline) release(bundleName string) {
	p.mu.Lock()
	delete(p.inflight, bundleName)
	p.mu.Unlock()
}

func (p *Pipeline) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case bundleName := <-p.pending:
			p.process(ctx, bundleName)
			p.release(bundleName)
		}
	}
}
