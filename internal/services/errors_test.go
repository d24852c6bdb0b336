package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := Wrap(ErrTranscode, "transcode", "high", "ffmpeg failed", base)

	if !errors.Is(err, ErrTranscode) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("cause lost: %v", err)
	}
	want := "transcode error: transcode: high: ffmpeg failed: exit status 1"
	if err.Error() != want {
		t.Fatalf("message %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrValidation, "validate", "movie", "video.mp4 is required", nil)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("marker lost: %v", err)
	}
	if errors.Is(err, ErrTranscode) {
		t.Fatal("wrong marker matched")
	}
}

func TestWrapNilMarkerDefaults(t *testing.T) {
	err := Wrap(nil, "probe", "ffprobe", "unexpected output", nil)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatalf("nil marker not defaulted: %v", err)
	}
}

func TestDetailStripsMarkerPrefix(t *testing.T) {
	err := Wrap(ErrValidation, "validate", "manifest", "missing required fields: title", nil)
	want := "validate: manifest: missing required fields: title"
	if got := Detail(err); got != want {
		t.Fatalf("Detail = %q, want %q", got, want)
	}
	if got := Detail(nil); got != "" {
		t.Fatalf("Detail(nil) = %q", got)
	}
	plain := errors.New("some other failure")
	if got := Detail(plain); got != "some other failure" {
		t.Fatalf("Detail(plain) = %q", got)
	}
}
