package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePublish()
	c.normalizeTranscode()
	c.normalizeWorkflow()
	c.normalizeValidation()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.UploadDir, err = expandPath(c.Paths.UploadDir); err != nil {
		return fmt.Errorf("paths.upload_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePublish() {
	c.Publish.BaseURL = strings.TrimRight(strings.TrimSpace(c.Publish.BaseURL), "/")
	if c.Publish.BaseURL == "" {
		c.Publish.BaseURL = defaultPublishBaseURL
	}
}

func (c *Config) normalizeTranscode() {
	if c.Transcode.SegmentSeconds <= 0 {
		c.Transcode.SegmentSeconds = defaultSegmentSeconds
	}
	if c.Transcode.AudioRateKbps <= 0 {
		c.Transcode.AudioRateKbps = defaultAudioRateKbps
	}
	if c.Transcode.CRF <= 0 {
		c.Transcode.CRF = defaultCRF
	}
	if len(c.Transcode.Renditions) == 0 {
		c.Transcode.Renditions = Default().Transcode.Renditions
	}
	for i := range c.Transcode.Renditions {
		r := &c.Transcode.Renditions[i]
		r.Name = strings.ToLower(strings.TrimSpace(r.Name))
		if r.BufSizeKbps <= 0 {
			r.BufSizeKbps = r.MaxRateKbps * 2
		}
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.ScanInterval <= 0 {
		c.Workflow.ScanInterval = defaultScanInterval
	}
	if c.Workflow.SettleDelay < 0 {
		c.Workflow.SettleDelay = defaultSettleDelay
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.BundleWorkers <= 0 {
		c.Workflow.BundleWorkers = defaultBundleWorkers
	}
	if c.Workflow.EpisodeWorkers <= 0 {
		c.Workflow.EpisodeWorkers = defaultEpisodeWorkers
	}
}

func (c *Config) normalizeValidation() {
	if c.Validation.MinVideoBytes <= 0 {
		c.Validation.MinVideoBytes = defaultMinVideoBytes
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("VODFORGE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
