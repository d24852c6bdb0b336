package transcode

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"vodforge/internal/config"
	"vodforge/internal/services"
)

const probeStage = "probe"

// Prober discovers media duration via ffprobe.
type Prober struct {
	binary string
}

// NewProber returns a prober using the configured ffprobe binary.
func NewProber(cfg *config.Config) *Prober {
	return &Prober{binary: cfg.FFprobeBinary()}
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the media duration of the file in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	cmd := commandContext(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, services.Wrap(services.ErrProbe, probeStage, "ffprobe",
			fmt.Sprintf("probe %s", path), err)
	}

	var parsed probeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return 0, services.Wrap(services.ErrProbe, probeStage, "ffprobe", "parse probe output", err)
	}
	seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64)
	if err != nil || seconds <= 0 {
		return 0, services.Wrap(services.ErrProbe, probeStage, "ffprobe",
			fmt.Sprintf("no usable duration in probe output for %s", path), nil)
	}
	return seconds, nil
}
