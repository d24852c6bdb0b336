package pipeline

import (
	"strings"

	"vodforge/internal/config"
	"vodforge/internal/transcode"
)

// publishedURL joins path segments under the bundle's final location in the
// completed area. Artifact URLs always point there, even while the bundle is
// still in processing, because that is where consumers will find the files.
func publishedURL(cfg *config.Config, bundleName string, parts ...string) string {
	segments := make([]string, 0, len(parts)+3)
	segments = append(segments, strings.TrimRight(cfg.Publish.BaseURL, "/"), "completed", bundleName)
	segments = append(segments, parts...)
	return strings.Join(segments, "/")
}

func masterPlaylistURL(cfg *config.Config, bundleName string, subdirs ...string) string {
	parts := append(append([]string{}, subdirs...), transcode.OutputDirName, transcode.MasterPlaylistName)
	return publishedURL(cfg, bundleName, parts...)
}
