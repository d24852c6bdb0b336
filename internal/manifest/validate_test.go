package manifest_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vodforge/internal/manifest"
	"vodforge/internal/services"
	"vodforge/internal/testsupport"
)

const minVideoBytes = 1024

func TestValidateMovie(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "movie-123")
	testsupport.WriteMovieBundle(t, dir, 2*minVideoBytes)

	m, err := manifest.Validate(dir, minVideoBytes)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if m.Type != manifest.TypeMovie || m.Title != "Test Movie" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if m.IsShow() {
		t.Fatal("movie classified as show")
	}
}

func TestValidateMissingMetadata(t *testing.T) {
	dir := t.TempDir()

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("error %v is not a validation error", err)
	}
	if !strings.Contains(err.Error(), "metadata.json") {
		t.Fatalf("error does not name the missing file: %v", err)
	}
}

func TestValidateMissingRequiredFields(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteManifest(t, dir, manifest.Manifest{Title: "Only Title", Type: manifest.TypeMovie})

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"category", "description"} {
		if !strings.Contains(err.Error(), field) {
			t.Fatalf("error does not name missing field %s: %v", field, err)
		}
	}
}

func TestValidateUnknownType(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteManifest(t, dir, manifest.Manifest{
		Title:       "T",
		Category:    "c",
		Description: "d",
		Type:        "podcast",
	})

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil || !strings.Contains(err.Error(), "podcast") {
		t.Fatalf("unknown type not rejected: %v", err)
	}
}

func TestValidateMovieMissingVideo(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteManifest(t, dir, manifest.Manifest{
		Title:       "T",
		Category:    "c",
		Description: "d",
		Type:        manifest.TypeMovie,
	})
	testsupport.WriteFile(t, filepath.Join(dir, "thumbnail.jpg"), 64)

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil || !strings.Contains(err.Error(), manifest.VideoFileName) {
		t.Fatalf("missing video not named: %v", err)
	}
}

func TestValidateMovieTruncatedVideo(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "movie-1")
	testsupport.WriteMovieBundle(t, dir, minVideoBytes/2)

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil || !strings.Contains(err.Error(), "too small") {
		t.Fatalf("truncated video accepted: %v", err)
	}
}

func TestValidateMovieMissingThumbnail(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteManifest(t, dir, manifest.Manifest{
		Title:       "T",
		Category:    "c",
		Description: "d",
		Type:        manifest.TypeMovie,
	})
	testsupport.WriteFile(t, filepath.Join(dir, manifest.VideoFileName), 2*minVideoBytes)

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil || !strings.Contains(err.Error(), "thumbnail") {
		t.Fatalf("missing thumbnail accepted: %v", err)
	}
}

func TestValidateShow(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "series-1")
	testsupport.WriteShowBundle(t, dir, []int{2, 1}, 2*minVideoBytes)

	m, err := manifest.Validate(dir, minVideoBytes)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !m.IsShow() || m.EpisodeCount() != 3 {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestValidateShowMissingEpisodeDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "series-1")
	testsupport.WriteShowBundle(t, dir, []int{2}, 2*minVideoBytes)
	if err := os.RemoveAll(filepath.Join(dir, "s1e2")); err != nil {
		t.Fatalf("remove episode dir: %v", err)
	}

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil || !strings.Contains(err.Error(), "s1e2") {
		t.Fatalf("missing episode dir not named: %v", err)
	}
}

func TestValidateShowUndeclaredEpisodeDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "series-1")
	testsupport.WriteShowBundle(t, dir, []int{1}, 2*minVideoBytes)
	extra := filepath.Join(dir, "s1e9")
	testsupport.WriteFile(t, filepath.Join(extra, manifest.VideoFileName), 2*minVideoBytes)

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil || !strings.Contains(err.Error(), "s1e9") {
		t.Fatalf("undeclared episode dir not rejected: %v", err)
	}
}

func TestValidateShowEpisodeMissingThumbnail(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "series-1")
	testsupport.WriteShowBundle(t, dir, []int{1}, 2*minVideoBytes)
	if err := os.Remove(filepath.Join(dir, "s1e1", "thumbnail.jpg")); err != nil {
		t.Fatalf("remove thumbnail: %v", err)
	}

	_, err := manifest.Validate(dir, minVideoBytes)
	if err == nil || !strings.Contains(err.Error(), "s1e1") {
		t.Fatalf("episode thumbnail defect not named: %v", err)
	}
}

func TestEpisodeNames(t *testing.T) {
	if got := manifest.EpisodeDirName(1, 12); got != "s1e12" {
		t.Fatalf("EpisodeDirName = %q", got)
	}
	if got := manifest.EpisodeLabel(1, 2); got != "S01E02" {
		t.Fatalf("EpisodeLabel = %q", got)
	}
}

func TestParseContentType(t *testing.T) {
	if parsed, ok := manifest.ParseContentType(" Movie "); !ok || parsed != manifest.TypeMovie {
		t.Fatalf("ParseContentType = %v, %v", parsed, ok)
	}
	if _, ok := manifest.ParseContentType("series"); ok {
		t.Fatal("unknown type accepted")
	}
}
