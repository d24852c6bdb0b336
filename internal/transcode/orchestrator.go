package transcode

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"vodforge/internal/config"
	"vodforge/internal/logging"
	"vodforge/internal/services"
)

// OutputDirName is the subdirectory created next to each source video to
// hold the HLS playlists and segments.
const OutputDirName = "video"

// Result summarizes a finished transcode job.
type Result struct {
	DurationSeconds float64
	OutputDir       string
}

// Orchestrator turns one source video into the full HLS ladder.
type Orchestrator struct {
	cfg    *config.Config
	prober *Prober
	ladder []Rendition
	logger *slog.Logger
}

// NewOrchestrator builds an orchestrator from configuration.
func NewOrchestrator(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:    cfg,
		prober: NewProber(cfg),
		ladder: LadderFromConfig(cfg),
		logger: logger,
	}
}

// Transcode probes sourcePath, encodes every ladder rendition into a video/
// directory beside it, and writes the master playlist. Overall progress
// weights each rendition equally across the job.
func (o *Orchestrator) Transcode(ctx context.Context, sourcePath string, sink ProgressSink) (*Result, error) {
	duration, err := o.prober.Duration(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	outputDir := filepath.Join(filepath.Dir(sourcePath), OutputDirName)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTranscode, transcodeStage, "prepare",
			"create output directory", err)
	}

	opts := runnerOptions{
		Binary:         o.cfg.FFmpegBinary(),
		CRF:            o.cfg.Transcode.CRF,
		AudioRateKbps:  o.cfg.Transcode.AudioRateKbps,
		SegmentSeconds: o.cfg.Transcode.SegmentSeconds,
	}
	coalescer := newProgressCoalescer(sink)
	total := len(o.ladder)

	for i, rendition := range o.ladder {
		o.logger.Info("encoding rendition",
			logging.String("rendition", rendition.Name),
			logging.String("source", sourcePath))
		done := i
		err := runRendition(ctx, opts, rendition, sourcePath, outputDir, func(elapsed float64) {
			pct := (done*100 + renditionPercent(elapsed, duration)) / total
			coalescer.report(pct)
		})
		if err != nil {
			return nil, err
		}
		coalescer.report((done + 1) * 100 / total)
	}

	if err := WriteMasterPlaylist(outputDir, o.ladder); err != nil {
		return nil, services.Wrap(services.ErrTranscode, transcodeStage, "playlist",
			"write master playlist", err)
	}
	coalescer.report(100)

	return &Result{DurationSeconds: duration, OutputDir: outputDir}, nil
}
