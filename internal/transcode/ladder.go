package transcode

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vodforge/internal/config"
)

// MasterPlaylistName is the entry playlist referencing every rendition.
const MasterPlaylistName = "master.m3u8"

// Rendition is one ladder tier with its computed playlist bandwidth.
type Rendition struct {
	Name        string
	Width       int
	Height      int
	MaxRateKbps int
	BufSizeKbps int
	Bandwidth   int
}

// PlaylistName returns the rendition's media playlist file name.
func (r Rendition) PlaylistName() string {
	return r.Name + ".m3u8"
}

// SegmentPattern returns the ffmpeg segment file name pattern.
func (r Rendition) SegmentPattern() string {
	return r.Name + "_%03d.ts"
}

// Resolution returns the WxH form used in the master playlist.
func (r Rendition) Resolution() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// LadderFromConfig builds the rendition ladder from configuration. Bandwidth
// advertises video maxrate plus the audio rate, in bits per second.
func LadderFromConfig(cfg *config.Config) []Rendition {
	ladder := make([]Rendition, 0, len(cfg.Transcode.Renditions))
	for _, r := range cfg.Transcode.Renditions {
		bufSize := r.BufSizeKbps
		if bufSize <= 0 {
			bufSize = 2 * r.MaxRateKbps
		}
		ladder = append(ladder, Rendition{
			Name:        r.Name,
			Width:       r.Width,
			Height:      r.Height,
			MaxRateKbps: r.MaxRateKbps,
			BufSizeKbps: bufSize,
			Bandwidth:   (r.MaxRateKbps + cfg.Transcode.AudioRateKbps) * 1000,
		})
	}
	return ladder
}

// WriteMasterPlaylist writes master.m3u8 into dir, listing renditions from
// highest to lowest bandwidth.
func WriteMasterPlaylist(dir string, ladder []Rendition) error {
	ordered := make([]Rendition, len(ladder))
	copy(ordered, ladder)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Bandwidth > ordered[j].Bandwidth
	})

	var builder strings.Builder
	builder.WriteString("#EXTM3U\n")
	builder.WriteString("#EXT-X-VERSION:3\n")
	for _, r := range ordered {
		fmt.Fprintf(&builder, "#EXT-X-STREAM-INF:BANDWIDTH=%d,RESOLUTION=%s\n", r.Bandwidth, r.Resolution())
		builder.WriteString(r.PlaylistName())
		builder.WriteString("\n")
	}

	return os.WriteFile(filepath.Join(dir, MasterPlaylistName), []byte(builder.String()), 0o644)
}
