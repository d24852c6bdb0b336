package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Paths.UploadDir) == "" {
		return errors.New("paths.upload_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if len(c.Transcode.Renditions) == 0 {
		return errors.New("transcode.renditions must declare at least one tier")
	}
	seen := make(map[string]struct{}, len(c.Transcode.Renditions))
	for i, r := range c.Transcode.Renditions {
		if r.Name == "" {
			return fmt.Errorf("transcode.renditions[%d]: name must be set", i)
		}
		if _, dup := seen[r.Name]; dup {
			return fmt.Errorf("transcode.renditions[%d]: duplicate name %q", i, r.Name)
		}
		seen[r.Name] = struct{}{}
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("transcode.renditions[%d] (%s): width and height must be positive", i, r.Name)
		}
		if r.MaxRateKbps <= 0 {
			return fmt.Errorf("transcode.renditions[%d] (%s): max_rate_kbps must be positive", i, r.Name)
		}
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
