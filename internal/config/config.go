package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	UploadDir string `toml:"upload_dir"`
	LogDir    string `toml:"log_dir"`
}

// Publish contains configuration for published artifact URLs.
type Publish struct {
	BaseURL string `toml:"base_url"`
}

// Rendition describes one tier of the output quality ladder.
type Rendition struct {
	Name        string `toml:"name"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	MaxRateKbps int    `toml:"max_rate_kbps"`
	BufSizeKbps int    `toml:"buf_size_kbps"`
}

// Transcode contains encoder configuration. The ladder is fixed by
// configuration and never derived from the source video.
type Transcode struct {
	SegmentSeconds int         `toml:"segment_seconds"`
	AudioRateKbps  int         `toml:"audio_rate_kbps"`
	CRF            int         `toml:"crf"`
	Renditions     []Rendition `toml:"renditions"`
}

// Workflow contains scanner timing and concurrency limits.
type Workflow struct {
	ScanInterval       int `toml:"scan_interval"`
	SettleDelay        int `toml:"settle_delay"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
	BundleWorkers      int `toml:"bundle_workers"`
	EpisodeWorkers     int `toml:"episode_workers"`
}

// Validation contains bundle structure validation thresholds.
type Validation struct {
	MinVideoBytes int64 `toml:"min_video_bytes"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Ingest         bool   `toml:"ingest"`
	Publish        bool   `toml:"publish"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config is the root configuration document.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Publish       Publish       `toml:"publish"`
	Transcode     Transcode     `toml:"transcode"`
	Workflow      Workflow      `toml:"workflow"`
	Validation    Validation    `toml:"validation"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vodforge/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	// Array tables append on decode; start empty so a configured ladder
	// replaces the default instead of stacking on top of it.
	cfg.Transcode.Renditions = nil

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vodforge.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// PendingDir returns the stage root where new bundles arrive.
func (c *Config) PendingDir() string {
	return filepath.Join(c.Paths.UploadDir, "pending")
}

// ProcessingDir returns the stage root for bundles being processed.
func (c *Config) ProcessingDir() string {
	return filepath.Join(c.Paths.UploadDir, "processing")
}

// CompletedDir returns the terminal stage root for published bundles.
func (c *Config) CompletedDir() string {
	return filepath.Join(c.Paths.UploadDir, "completed")
}

// FailedDir returns the terminal stage root for rejected bundles.
func (c *Config) FailedDir() string {
	return filepath.Join(c.Paths.UploadDir, "failed")
}

// StageRoots returns the four lifecycle directories in pipeline order.
func (c *Config) StageRoots() []string {
	return []string{c.PendingDir(), c.ProcessingDir(), c.CompletedDir(), c.FailedDir()}
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	dirs := append(c.StageRoots(), c.Paths.LogDir)
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the encoder executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the probe executable name used for duration discovery.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

// SampleConfig returns the embedded sample configuration document.
func SampleConfig() string {
	return sampleConfig
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
