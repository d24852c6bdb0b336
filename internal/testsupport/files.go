package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"vodforge/internal/manifest"
)

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}

// WriteManifest serializes a manifest into metadata.json at the bundle root.
func WriteManifest(t testing.TB, bundleDir string, m manifest.Manifest) {
	t.Helper()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.MkdirAll(bundleDir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", bundleDir, err)
	}
	if err := os.WriteFile(filepath.Join(bundleDir, manifest.MetadataFileName), data, 0o644); err != nil {
		t.Fatalf("write metadata: %v", err)
	}
}

// WriteMovieBundle lays out a complete movie bundle under dir.
func WriteMovieBundle(t testing.TB, dir string, videoBytes int64) {
	t.Helper()

	WriteManifest(t, dir, manifest.Manifest{
		Title:       "Test Movie",
		Category:    "drama",
		Description: "A movie used in tests",
		Type:        manifest.TypeMovie,
		RentalPrice: 3.99,
	})
	WriteFile(t, filepath.Join(dir, manifest.VideoFileName), videoBytes)
	WriteFile(t, filepath.Join(dir, "thumbnail.jpg"), 64)
}

// WriteShowBundle lays out a show bundle with the given season/episode shape,
// e.g. []int{2, 1} produces s1e1, s1e2, and s2e1.
func WriteShowBundle(t testing.TB, dir string, episodesPerSeason []int, videoBytes int64) {
	t.Helper()

	m := manifest.Manifest{
		Title:       "Test Show",
		Category:    "documentary",
		Description: "A show used in tests",
		Type:        manifest.TypeShow,
	}
	for s, count := range episodesPerSeason {
		season := manifest.Season{
			SeasonNumber: s + 1,
			Title:        "Season",
		}
		for e := 0; e < count; e++ {
			season.Episodes = append(season.Episodes, manifest.Episode{
				EpisodeNumber: e + 1,
				Title:         "Episode",
			})
			episodeDir := filepath.Join(dir, manifest.EpisodeDirName(s+1, e+1))
			WriteFile(t, filepath.Join(episodeDir, manifest.VideoFileName), videoBytes)
			WriteFile(t, filepath.Join(episodeDir, "thumbnail.jpg"), 64)
		}
		m.Seasons = append(m.Seasons, season)
	}
	WriteManifest(t, dir, m)
	WriteFile(t, filepath.Join(dir, "thumbnail.jpg"), 64)
}
