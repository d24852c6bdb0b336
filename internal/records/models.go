package records

import (
	"fmt"
	"strings"
	"time"

	"vodforge/internal/manifest"
)

// Status represents the lifecycle of a record or of one episode within it.
// The same vocabulary is used at every tree level.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusFailed}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// ArtifactURLs are the published artifact locations attached to a record or episode.
type ArtifactURLs struct {
	HLS       string `json:"hls_url,omitempty"`
	Thumbnail string `json:"thumbnail_url,omitempty"`
	Trailer   string `json:"trailer_url,omitempty"`
}

// EpisodeRecord mirrors one episode's pipeline state inside a show record.
type EpisodeRecord struct {
	EpisodeNumber int     `json:"episode_number"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
	RentalPrice   float64 `json:"rental_price,omitempty"`
	HLSURL        string  `json:"hls_url,omitempty"`
	ThumbnailURL  string  `json:"thumbnail_url,omitempty"`
	Status        Status  `json:"status"`
	Progress      int     `json:"progress"`
	ErrorDetails  string  `json:"error_details,omitempty"`
}

// SeasonRecord groups the episode records of one season.
type SeasonRecord struct {
	SeasonNumber int             `json:"season_number"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	RentalPrice  float64         `json:"rental_price,omitempty"`
	Episodes     []EpisodeRecord `json:"episodes"`
}

// Record is the persisted content entity consumed by the external layer.
type Record struct {
	ID           int64
	BundleName   string
	Title        string
	Category     string
	Description  string
	Type         manifest.ContentType
	RentalPrice  float64
	Status       Status
	Progress     int
	HLSURL       string
	ThumbnailURL string
	TrailerURL   string
	ErrorDetails string
	Seasons      []SeasonRecord
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Path addresses a sub-entity of a record: the zero value is the record root,
// a non-zero value is one (season, episode) coordinate.
type Path struct {
	Season  int
	Episode int
}

// RootPath addresses the record itself (movie or whole-show).
var RootPath = Path{}

// EpisodePath addresses one episode of a show record.
func EpisodePath(season, episode int) Path {
	return Path{Season: season, Episode: episode}
}

// IsRoot reports whether the path addresses the record root.
func (p Path) IsRoot() bool {
	return p.Season == 0 && p.Episode == 0
}

func (p Path) String() string {
	if p.IsRoot() {
		return "root"
	}
	return manifest.EpisodeDirName(p.Season, p.Episode)
}

// Episode resolves the addressed episode within the record.
func (r *Record) Episode(p Path) (*EpisodeRecord, error) {
	if p.IsRoot() {
		return nil, fmt.Errorf("path %s does not address an episode", p)
	}
	for i := range r.Seasons {
		if r.Seasons[i].SeasonNumber != p.Season {
			continue
		}
		for j := range r.Seasons[i].Episodes {
			if r.Seasons[i].Episodes[j].EpisodeNumber == p.Episode {
				return &r.Seasons[i].Episodes[j], nil
			}
		}
	}
	return nil, fmt.Errorf("record %s has no episode at %s", r.BundleName, p)
}

// AggregateStatus composes a show's status from its episodes: failed if any
// episode failed; completed if every episode completed; processing if at
// least one episode completed or is in progress; otherwise pending.
func AggregateStatus(seasons []SeasonRecord) Status {
	total := 0
	completed := 0
	active := 0
	for _, season := range seasons {
		for _, episode := range season.Episodes {
			total++
			switch episode.Status {
			case StatusFailed:
				return StatusFailed
			case StatusCompleted:
				completed++
			case StatusProcessing:
				active++
			}
		}
	}
	switch {
	case total == 0:
		return StatusPending
	case completed == total:
		return StatusCompleted
	case completed > 0 || active > 0:
		return StatusProcessing
	default:
		return StatusPending
	}
}

// AggregateProgress averages episode progress across the show.
func AggregateProgress(seasons []SeasonRecord) int {
	total := 0
	sum := 0
	for _, season := range seasons {
		for _, episode := range season.Episodes {
			total++
			sum += episode.Progress
		}
	}
	if total == 0 {
		return 0
	}
	return sum / total
}

// ClampProgress bounds a progress value to [0,100].
func ClampProgress(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// SeasonsFromManifest builds the mirrored season/episode tree for a new show
// record. Every episode starts pending at zero progress.
func SeasonsFromManifest(m *manifest.Manifest) []SeasonRecord {
	if m == nil || len(m.Seasons) == 0 {
		return nil
	}
	seasons := make([]SeasonRecord, 0, len(m.Seasons))
	for _, season := range m.Seasons {
		sr := SeasonRecord{
			SeasonNumber: season.SeasonNumber,
			Title:        season.Title,
			Description:  season.Description,
			RentalPrice:  season.RentalPrice,
			Episodes:     make([]EpisodeRecord, 0, len(season.Episodes)),
		}
		for _, episode := range season.Episodes {
			sr.Episodes = append(sr.Episodes, EpisodeRecord{
				EpisodeNumber: episode.EpisodeNumber,
				Title:         episode.Title,
				Description:   episode.Description,
				Duration:      episode.Duration,
				RentalPrice:   episode.RentalPrice,
				Status:        StatusPending,
			})
		}
		seasons = append(seasons, sr)
	}
	return seasons
}
