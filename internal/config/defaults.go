package config

const (
	defaultUploadDir          = "~/.local/share/vodforge/uploads"
	defaultLogDir             = "~/.local/share/vodforge/logs"
	defaultPublishBaseURL     = "http://localhost/uploads"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultSegmentSeconds     = 6
	defaultAudioRateKbps      = 128
	defaultCRF                = 23
	defaultScanInterval       = 30
	defaultSettleDelay        = 5
	defaultErrorRetryInterval = 10
	defaultBundleWorkers      = 2
	defaultEpisodeWorkers     = 2
	defaultMinVideoBytes      = 1 << 20
	defaultNotifyTimeout      = 10
)

// Default returns a Config populated with repository defaults. The rendition
// ladder matches the published three-tier HLS layout: a high tier for 720p,
// a mid tier for 480p, and a low tier for 360p.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			LogDir:    defaultLogDir,
		},
		Publish: Publish{
			BaseURL: defaultPublishBaseURL,
		},
		Transcode: Transcode{
			SegmentSeconds: defaultSegmentSeconds,
			AudioRateKbps:  defaultAudioRateKbps,
			CRF:            defaultCRF,
			Renditions: []Rendition{
				{Name: "high", Width: 1280, Height: 720, MaxRateKbps: 2000, BufSizeKbps: 4000},
				{Name: "mid", Width: 854, Height: 480, MaxRateKbps: 1000, BufSizeKbps: 2000},
				{Name: "low", Width: 640, Height: 360, MaxRateKbps: 600, BufSizeKbps: 1200},
			},
		},
		Workflow: Workflow{
			ScanInterval:       defaultScanInterval,
			SettleDelay:        defaultSettleDelay,
			ErrorRetryInterval: defaultErrorRetryInterval,
			BundleWorkers:      defaultBundleWorkers,
			EpisodeWorkers:     defaultEpisodeWorkers,
		},
		Validation: Validation{
			MinVideoBytes: defaultMinVideoBytes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Ingest:         true,
			Publish:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
