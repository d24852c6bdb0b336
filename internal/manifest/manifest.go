package manifest

import (
	"fmt"
	"strings"
)

// MetadataFileName is the manifest file expected at every bundle root.
const MetadataFileName = "metadata.json"

// ContentType distinguishes single-video bundles from season/episode trees.
type ContentType string

const (
	TypeMovie ContentType = "movie"
	TypeShow  ContentType = "show"
)

// Episode is one declared episode within a season.
type Episode struct {
	EpisodeNumber int     `json:"episodeNumber"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
	RentalPrice   float64 `json:"rentalPrice,omitempty"`
}

// Season is one declared season with its episode list.
type Season struct {
	SeasonNumber int       `json:"seasonNumber"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	RentalPrice  float64   `json:"rentalPrice,omitempty"`
	Episodes     []Episode `json:"episodes"`
}

// Manifest is the declarative metadata parsed from a bundle. Immutable once read.
type Manifest struct {
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Type        ContentType `json:"type"`
	RentalPrice float64     `json:"rentalPrice,omitempty"`
	Seasons     []Season    `json:"seasons,omitempty"`
}

// IsShow reports whether the manifest declares a season/episode tree.
func (m *Manifest) IsShow() bool {
	return m != nil && m.Type == TypeShow
}

// EpisodeCount returns the total number of declared episodes.
func (m *Manifest) EpisodeCount() int {
	if m == nil {
		return 0
	}
	count := 0
	for _, season := range m.Seasons {
		count += len(season.Episodes)
	}
	return count
}

// EpisodeDirName returns the bundle subdirectory name for a season/episode pair.
func EpisodeDirName(season, episode int) string {
	return fmt.Sprintf("s%de%d", season, episode)
}

// EpisodeLabel returns the display form of a season/episode pair (e.g. S01E02).
func EpisodeLabel(season, episode int) string {
	return fmt.Sprintf("S%02dE%02d", season, episode)
}

// ParseContentType converts a string into a known ContentType.
func ParseContentType(value string) (ContentType, bool) {
	normalized := ContentType(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case TypeMovie, TypeShow:
		return normalized, true
	}
	return "", false
}
