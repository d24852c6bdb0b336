package testsupport

import (
	"path/filepath"
	"testing"

	"vodforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.UploadDir = filepath.Join(base, "uploads")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Publish.BaseURL = "http://media.test"
	cfg.Validation.MinVideoBytes = 16
	cfg.Workflow.ScanInterval = 1
	cfg.Workflow.SettleDelay = 0

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithMinVideoBytes overrides the minimum accepted video size.
func WithMinVideoBytes(size int64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Validation.MinVideoBytes = size
	}
}

// WithWorkers overrides the bundle and episode worker counts.
func WithWorkers(bundles, episodes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.BundleWorkers = bundles
		cfg.Workflow.EpisodeWorkers = episodes
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.UploadDir)
}
