package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"vodforge/internal/services"
)

const (
	// VideoFileName is the raw upload expected in a movie bundle root and in
	// every episode directory.
	VideoFileName = "video.mp4"
	// TrailerFileName is the optional trailer in a movie bundle root.
	TrailerFileName = "trailer.mp4"

	validateStage = "validate"
)

var thumbnailNames = []string{"thumbnail.jpg", "thumbnail.png"}

var episodeDirPattern = regexp.MustCompile(`^s(\d+)e(\d+)$`)

// Validate parses the bundle's metadata.json and confirms required files and
// subdirectories exist and are non-trivial. It fails with a validation error
// describing the first violation. minVideoBytes rejects likely-truncated
// video uploads.
func Validate(bundlePath string, minVideoBytes int64) (*Manifest, error) {
	m, err := readManifest(bundlePath)
	if err != nil {
		return nil, err
	}

	switch m.Type {
	case TypeMovie:
		if err := validateMovie(bundlePath, minVideoBytes); err != nil {
			return nil, err
		}
	case TypeShow:
		if err := validateShow(bundlePath, m, minVideoBytes); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// FindThumbnail returns the thumbnail file name present in dir (jpg preferred),
// or an empty string when none exists.
func FindThumbnail(dir string) string {
	for _, name := range thumbnailNames {
		if info, err := os.Stat(filepath.Join(dir, name)); err == nil && !info.IsDir() && info.Size() > 0 {
			return name
		}
	}
	return ""
}

func readManifest(bundlePath string) (*Manifest, error) {
	metadataPath := filepath.Join(bundlePath, MetadataFileName)
	data, err := os.ReadFile(metadataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrValidation, validateStage, "manifest", MetadataFileName+" is required", nil)
		}
		return nil, services.Wrap(services.ErrValidation, validateStage, "manifest", "read "+MetadataFileName, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, services.Wrap(services.ErrValidation, validateStage, "manifest", "invalid metadata JSON", err)
	}

	missing := make([]string, 0, 4)
	if strings.TrimSpace(m.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(m.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(string(m.Type)) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(m.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrValidation, validateStage, "manifest",
			"missing required fields: "+strings.Join(missing, ", "), nil)
	}

	contentType, ok := ParseContentType(string(m.Type))
	if !ok {
		return nil, services.Wrap(services.ErrValidation, validateStage, "manifest",
			fmt.Sprintf("unknown content type %q", m.Type), nil)
	}
	m.Type = contentType

	return &m, nil
}

func validateMovie(bundlePath string, minVideoBytes int64) error {
	videoPath := filepath.Join(bundlePath, VideoFileName)
	info, err := os.Stat(videoPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrValidation, validateStage, "movie",
				fmt.Sprintf("required file %s is missing", VideoFileName), nil)
		}
		return services.Wrap(services.ErrValidation, validateStage, "movie", "stat "+VideoFileName, err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrValidation, validateStage, "movie",
			fmt.Sprintf("file %s is empty", VideoFileName), nil)
	}
	if info.Size() < minVideoBytes {
		return services.Wrap(services.ErrValidation, validateStage, "movie",
			fmt.Sprintf("file %s is too small (%d bytes), likely a truncated upload", VideoFileName, info.Size()), nil)
	}

	if FindThumbnail(bundlePath) == "" {
		return services.Wrap(services.ErrValidation, validateStage, "movie",
			"either thumbnail.jpg or thumbnail.png is required and must be non-empty", nil)
	}
	return nil
}

func validateShow(bundlePath string, m *Manifest, minVideoBytes int64) error {
	if FindThumbnail(bundlePath) == "" {
		return services.Wrap(services.ErrValidation, validateStage, "show",
			"either thumbnail.jpg or thumbnail.png is required and must be non-empty", nil)
	}
	if len(m.Seasons) == 0 {
		return services.Wrap(services.ErrValidation, validateStage, "show",
			"show metadata must declare a non-empty seasons list", nil)
	}

	declared := make(map[string]struct{})
	for _, season := range m.Seasons {
		if season.SeasonNumber <= 0 || strings.TrimSpace(season.Title) == "" || len(season.Episodes) == 0 {
			return services.Wrap(services.ErrValidation, validateStage, "show",
				fmt.Sprintf("invalid season structure for season %d", season.SeasonNumber), nil)
		}
		for _, episode := range season.Episodes {
			if episode.EpisodeNumber <= 0 || strings.TrimSpace(episode.Title) == "" {
				return services.Wrap(services.ErrValidation, validateStage, "show",
					fmt.Sprintf("invalid episode structure in season %d", season.SeasonNumber), nil)
			}
			dirName := EpisodeDirName(season.SeasonNumber, episode.EpisodeNumber)
			declared[dirName] = struct{}{}
			if err := validateEpisodeDir(bundlePath, dirName, minVideoBytes); err != nil {
				return err
			}
		}
	}

	// Symmetric check: episode directories on disk must all be declared.
	entries, err := os.ReadDir(bundlePath)
	if err != nil {
		return services.Wrap(services.ErrValidation, validateStage, "show", "read bundle directory", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !episodeDirPattern.MatchString(name) {
			continue
		}
		if _, ok := declared[name]; !ok {
			return services.Wrap(services.ErrValidation, validateStage, "show",
				fmt.Sprintf("episode directory %s exists on disk but is not declared in metadata", name), nil)
		}
	}
	return nil
}

func validateEpisodeDir(bundlePath, dirName string, minVideoBytes int64) error {
	episodePath := filepath.Join(bundlePath, dirName)
	info, err := os.Stat(episodePath)
	if err != nil || !info.IsDir() {
		return services.Wrap(services.ErrValidation, validateStage, "show",
			fmt.Sprintf("missing directory %s for declared episode", dirName), nil)
	}

	videoInfo, err := os.Stat(filepath.Join(episodePath, VideoFileName))
	if err != nil || videoInfo.Size() == 0 {
		return services.Wrap(services.ErrValidation, validateStage, "show",
			fmt.Sprintf("missing %s in episode directory %s", VideoFileName, dirName), nil)
	}
	if videoInfo.Size() < minVideoBytes {
		return services.Wrap(services.ErrValidation, validateStage, "show",
			fmt.Sprintf("%s in episode directory %s is too small (%d bytes), likely a truncated upload",
				VideoFileName, dirName, videoInfo.Size()), nil)
	}
	if FindThumbnail(episodePath) == "" {
		return services.Wrap(services.ErrValidation, validateStage, "show",
			fmt.Sprintf("missing thumbnail in episode directory %s", dirName), nil)
	}
	return nil
}
