package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"vodforge/internal/logging"
	"vodforge/internal/services"
)

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("VODFORGE_HELPER_MODE") {
	case "probe":
		fmt.Println(`{"format":{"duration":"120.000000"}}`)
	case "encode":
		fmt.Fprintln(os.Stderr, "frame=  100 fps=30 q=28.0 size=256kB time=00:00:30.00 bitrate=900kbits/s")
		fmt.Fprintln(os.Stderr, "frame=  400 fps=30 q=28.0 size=900kB time=00:02:00.00 bitrate=900kbits/s")
	case "encode-fail":
		fmt.Fprintln(os.Stderr, "[matroska @ 0x0] Invalid data found when processing input")
		os.Exit(1)
	case "encode-longline":
		fmt.Fprintln(os.Stderr, strings.Repeat("x", 2*1024*1024))
	}
	os.Exit(0)
}

// stubCommands routes ffprobe and ffmpeg invocations to the helper process
// and captures ffmpeg argument lists.
func stubCommands(t *testing.T, encodeMode string, capture *[][]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		mode := encodeMode
		if strings.Contains(name, "ffprobe") {
			mode = "probe"
		} else if capture != nil {
			*capture = append(*capture, append([]string(nil), args...))
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "VODFORGE_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestTranscodeProducesLadderAndProgress(t *testing.T) {
	var captured [][]string
	stubCommands(t, "encode", &captured)

	dir := t.TempDir()
	source := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	var reports []int
	orchestrator := NewOrchestrator(testConfig(), logging.NewNop())
	result, err := orchestrator.Transcode(context.Background(), source, func(pct int) {
		reports = append(reports, pct)
	})
	if err != nil {
		t.Fatalf("Transcode: %v", err)
	}

	if result.DurationSeconds != 120 {
		t.Fatalf("duration %v, want 120", result.DurationSeconds)
	}
	if result.OutputDir != filepath.Join(dir, OutputDirName) {
		t.Fatalf("output dir %s", result.OutputDir)
	}
	if _, err := os.Stat(filepath.Join(result.OutputDir, MasterPlaylistName)); err != nil {
		t.Fatalf("master playlist missing: %v", err)
	}

	if len(captured) != 3 {
		t.Fatalf("expected one ffmpeg run per rendition, got %d", len(captured))
	}
	joined := strings.Join(captured[0], " ")
	for _, fragment := range []string{
		"-c:v libx264", "-crf 23", "-maxrate 2000k", "-bufsize 4000k",
		"scale=1280:720", "-c:a aac", "-ar 48000", "-b:a 128k",
		"-hls_time 6", "-hls_playlist_type vod",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("high rendition args missing %q: %s", fragment, joined)
		}
	}

	if len(reports) == 0 {
		t.Fatal("no progress reported")
	}
	last := -1
	for _, pct := range reports {
		if pct <= last {
			t.Fatalf("progress not strictly increasing: %v", reports)
		}
		last = pct
	}
	if last != 100 {
		t.Fatalf("final progress %d, want 100", last)
	}
}

func TestTranscodeFailureCarriesStderrTail(t *testing.T) {
	stubCommands(t, "encode-fail", nil)

	dir := t.TempDir()
	source := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	orchestrator := NewOrchestrator(testConfig(), logging.NewNop())
	_, err := orchestrator.Transcode(context.Background(), source, nil)
	if err == nil {
		t.Fatal("expected transcode failure")
	}
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("error %v is not a transcode error", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("stderr tail missing from error: %v", err)
	}
}

func TestTranscodeStderrOverflowSurfaces(t *testing.T) {
	stubCommands(t, "encode-longline", nil)

	dir := t.TempDir()
	source := filepath.Join(dir, "video.mp4")
	if err := os.WriteFile(source, []byte("x"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	orchestrator := NewOrchestrator(testConfig(), logging.NewNop())
	_, err := orchestrator.Transcode(context.Background(), source, nil)
	if err == nil {
		t.Fatal("expected error when stderr exceeds the scan buffer")
	}
	if !errors.Is(err, services.ErrTranscode) {
		t.Fatalf("error %v is not a transcode error", err)
	}
	if !strings.Contains(err.Error(), "stderr") {
		t.Fatalf("stderr read failure not named: %v", err)
	}
}

func TestProberRejectsBadDuration(t *testing.T) {
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "VODFORGE_HELPER_MODE=encode")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	prober := NewProber(testConfig())
	if _, err := prober.Duration(context.Background(), "/tmp/whatever.mp4"); err == nil {
		t.Fatal("expected probe error for unparseable output")
	}
}
