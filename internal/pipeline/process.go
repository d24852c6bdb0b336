package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"vodforge/internal/logging"
	"vodforge/internal/manifest"
	"vodforge/internal/records"
	"vodforge/internal/services"
)

// process runs one bundle through the full lifecycle. The bundle always ends
// in the completed or failed area unless relocation itself breaks, in which
// case it is left in place for manual intervention.
func (p *Pipeline) process(ctx context.Context, bundleName string) {
	ctx = logging.ContextWithFields(ctx, logging.Fields{
		Bundle:        bundleName,
		CorrelationID: uuid.NewString(),
	})
	logger := logging.WithContext(ctx, p.logger)

	processingPath, err := p.mover.Relocate(ctx, bundleName, p.cfg.PendingDir(), p.cfg.ProcessingDir())
	if err != nil {
		logger.Error("move bundle into processing", logging.Error(err))
		_ = p.notifier.NotifyError(ctx, err, bundleName)
		return
	}

	m, err := manifest.Validate(processingPath, p.cfg.Validation.MinVideoBytes)
	if err != nil {
		logger.Error("bundle rejected", logging.Error(err))
		p.quarantine(ctx, bundleName, err)
		return
	}
	logger.Info("bundle validated",
		logging.String("type", string(m.Type)),
		logging.Int("episodes", m.EpisodeCount()))
	_ = p.notifier.NotifyBundleDetected(ctx, bundleName, string(m.Type))

	if _, err := p.store.Create(ctx, bundleName, m); err != nil {
		logger.Error("create content record", logging.Error(err))
		p.quarantine(ctx, bundleName, err)
		return
	}

	if m.IsShow() {
		err = p.processShow(ctx, logger, bundleName, processingPath, m)
	} else {
		err = p.processMovie(ctx, logger, bundleName, processingPath)
	}
	if ctx.Err() != nil {
		// Shutdown interrupted the job; the record stays processing and is
		// failed over on the next start.
		logger.Warn("bundle interrupted by shutdown")
		return
	}

	p.finish(ctx, logger, bundleName, m, err)
}

// quarantine routes a bundle to the failed area after a pre-record failure.
func (p *Pipeline) quarantine(ctx context.Context, bundleName string, cause error) {
	_ = p.notifier.NotifyBundleFailed(ctx, bundleName, services.Detail(cause))
	if _, err := p.mover.Relocate(ctx, bundleName, p.cfg.ProcessingDir(), p.cfg.FailedDir()); err != nil {
		p.logger.Error("move rejected bundle to failed area",
			logging.String(logging.FieldBundle, bundleName),
			logging.Error(err))
	}
}

// finish reconciles the record's final state and routes the bundle to its
// terminal stage directory.
func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, bundleName string, m *manifest.Manifest, jobErr error) {
	record, err := p.store.GetByBundle(ctx, bundleName)
	if err != nil || record == nil {
		logger.Error("load record for final routing", logging.Error(err))
		return
	}

	if jobErr != nil && record.Status != records.StatusFailed {
		if updateErr := p.sync.UpdateStatus(ctx, bundleName, records.RootPath, records.StatusFailed, services.Detail(jobErr)); updateErr != nil {
			logger.Error("record failure", logging.Error(updateErr))
		}
		record.Status = records.StatusFailed
	}

	if record.Status == records.StatusFailed {
		logger.Error("bundle failed", logging.Error(jobErr))
		_ = p.notifier.NotifyBundleFailed(ctx, bundleName, record.ErrorDetails)
		if _, err := p.mover.Relocate(ctx, bundleName, p.cfg.ProcessingDir(), p.cfg.FailedDir()); err != nil {
			logger.Error("move bundle to failed area", logging.Error(err))
		}
		return
	}

	if _, err := p.mover.Relocate(ctx, bundleName, p.cfg.ProcessingDir(), p.cfg.CompletedDir()); err != nil {
		logger.Error("move bundle to completed area", logging.Error(err))
		if updateErr := p.sync.UpdateStatus(ctx, bundleName, records.RootPath, records.StatusFailed, services.Detail(err)); updateErr != nil {
			logger.Error("record relocation failure", logging.Error(updateErr))
		}
		return
	}

	logger.Info("bundle published", logging.String("title", m.Title))
	_ = p.notifier.NotifyBundlePublished(ctx, m.Title)
}

func (p *Pipeline) processMovie(ctx context.Context, logger *slog.Logger, bundleName, processingPath string) error {
	source := filepath.Join(processingPath, manifest.VideoFileName)
	result, err := p.transcoder.Transcode(ctx, source, func(pct int) {
		if err := p.sync.UpdateProgress(ctx, bundleName, records.RootPath, pct); err != nil {
			logger.Warn("record progress", logging.Error(err))
		}
	})
	if err != nil {
		return err
	}
	_ = p.notifier.NotifyTranscodeCompleted(ctx, bundleName)

	urls := records.ArtifactURLs{
		HLS: masterPlaylistURL(p.cfg, bundleName),
	}
	if thumb := manifest.FindThumbnail(processingPath); thumb != "" {
		urls.Thumbnail = publishedURL(p.cfg, bundleName, thumb)
	}
	if _, statErr := os.Stat(filepath.Join(processingPath, manifest.TrailerFileName)); statErr == nil {
		urls.Trailer = publishedURL(p.cfg, bundleName, manifest.TrailerFileName)
	}
	if err := p.sync.AttachArtifacts(ctx, bundleName, records.RootPath, urls); err != nil {
		return err
	}

	logger.Info("movie transcoded", logging.Float64("duration_seconds", result.DurationSeconds))
	return p.sync.UpdateStatus(ctx, bundleName, records.RootPath, records.StatusCompleted, "")
}

// processShow fans episode jobs out over the episode worker pool. A failing
// episode marks only itself failed; the aggregate status computed by the
// synchronizer decides the bundle's fate afterwards.
func (p *Pipeline) processShow(ctx context.Context, logger *slog.Logger, bundleName, processingPath string, m *manifest.Manifest) error {
	type episodeJob struct {
		season  int
		episode int
	}

	jobs := make(chan episodeJob)
	workers := p.cfg.Workflow.EpisodeWorkers
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				p.processEpisode(ctx, logger, bundleName, processingPath, job.season, job.episode)
			}
		}()
	}

	for _, season := range m.Seasons {
		for _, episode := range season.Episodes {
			select {
			case jobs <- episodeJob{season: season.SeasonNumber, episode: episode.EpisodeNumber}:
			case <-ctx.Done():
			}
		}
	}
	close(jobs)
	wg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	urls := records.ArtifactURLs{}
	if thumb := manifest.FindThumbnail(processingPath); thumb != "" {
		urls.Thumbnail = publishedURL(p.cfg, bundleName, thumb)
	}
	if urls.Thumbnail != "" {
		if err := p.sync.AttachArtifacts(ctx, bundleName, records.RootPath, urls); err != nil {
			return err
		}
	}
	_ = p.notifier.NotifyTranscodeCompleted(ctx, bundleName)
	return nil
}

func (p *Pipeline) processEpisode(ctx context.Context, logger *slog.Logger, bundleName, processingPath string, season, episode int) {
	if ctx.Err() != nil {
		return
	}

	dirName := manifest.EpisodeDirName(season, episode)
	path := records.EpisodePath(season, episode)
	episodeLogger := logger.With(logging.String(logging.FieldEpisodeKey, manifest.EpisodeLabel(season, episode)))

	if err := p.sync.UpdateStatus(ctx, bundleName, path, records.StatusProcessing, ""); err != nil {
		episodeLogger.Error("record episode start", logging.Error(err))
	}

	episodeDir := filepath.Join(processingPath, dirName)
	source := filepath.Join(episodeDir, manifest.VideoFileName)
	result, err := p.transcoder.Transcode(ctx, source, func(pct int) {
		if err := p.sync.UpdateProgress(ctx, bundleName, path, pct); err != nil {
			episodeLogger.Warn("record episode progress", logging.Error(err))
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		episodeLogger.Error("episode transcode failed", logging.Error(err))
		if updateErr := p.sync.UpdateStatus(ctx, bundleName, path, records.StatusFailed, services.Detail(err)); updateErr != nil {
			episodeLogger.Error("record episode failure", logging.Error(updateErr))
		}
		return
	}

	if err := p.sync.SetDuration(ctx, bundleName, path, result.DurationSeconds); err != nil {
		episodeLogger.Warn("record episode duration", logging.Error(err))
	}
	urls := records.ArtifactURLs{
		HLS: masterPlaylistURL(p.cfg, bundleName, dirName),
	}
	if thumb := manifest.FindThumbnail(episodeDir); thumb != "" {
		urls.Thumbnail = publishedURL(p.cfg, bundleName, dirName, thumb)
	}
	if err := p.sync.AttachArtifacts(ctx, bundleName, path, urls); err != nil {
		episodeLogger.Error("record episode artifacts", logging.Error(err))
	}
	if err := p.sync.UpdateStatus(ctx, bundleName, path, records.StatusCompleted, ""); err != nil {
		episodeLogger.Error("record episode completion", logging.Error(err))
	}
	episodeLogger.Info("episode transcoded", logging.Float64("duration_seconds", result.DurationSeconds))
}
