package transcode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"vodforge/internal/services"
)

const transcodeStage = "transcode"

// stderrTailLines bounds the diagnostic tail preserved from a failed run.
const stderrTailLines = 40

var commandContext = exec.CommandContext

// runnerOptions carry the encode settings shared by every rendition.
type runnerOptions struct {
	Binary         string
	CRF            int
	AudioRateKbps  int
	SegmentSeconds int
}

// runRendition encodes one ladder tier of source into outputDir. onElapsed
// receives the elapsed media seconds parsed from ffmpeg's stderr reports.
func runRendition(ctx context.Context, opts runnerOptions, r Rendition, source, outputDir string, onElapsed func(float64)) error {
	args := []string{
		"-y",
		"-i", source,
		"-map", "0:v:0",
		"-map", "0:a:0?",
		"-c:v", "libx264",
		"-crf", strconv.Itoa(opts.CRF),
		"-maxrate", fmt.Sprintf("%dk", r.MaxRateKbps),
		"-bufsize", fmt.Sprintf("%dk", r.BufSizeKbps),
		"-vf", fmt.Sprintf("scale=%d:%d", r.Width, r.Height),
		"-c:a", "aac",
		"-ar", "48000",
		"-b:a", fmt.Sprintf("%dk", opts.AudioRateKbps),
		"-hls_time", strconv.Itoa(opts.SegmentSeconds),
		"-hls_list_size", "0",
		"-hls_playlist_type", "vod",
		"-hls_segment_filename", outputDir + "/" + r.SegmentPattern(),
		outputDir + "/" + r.PlaylistName(),
	}

	cmd := commandContext(ctx, opts.Binary, args...) //nolint:gosec
	// The encoder spawns helper processes; a process group lets shutdown
	// take the whole tree down at once.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
	cmd.WaitDelay = 5 * time.Second

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return services.Wrap(services.ErrTranscode, transcodeStage, r.Name, "open stderr pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrTranscode, transcodeStage, r.Name, "start ffmpeg", err)
	}

	tail := make([]string, 0, stderrTailLines)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if elapsed, ok := parseElapsed(line); ok {
			if onElapsed != nil {
				onElapsed(elapsed)
			}
			continue
		}
		if len(tail) == stderrTailLines {
			tail = tail[1:]
		}
		tail = append(tail, line)
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep draining so ffmpeg cannot block writing stderr before exit.
		_, _ = io.Copy(io.Discard, stderr)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		message := fmt.Sprintf("ffmpeg failed for rendition %s", r.Name)
		if len(tail) > 0 {
			message += ": " + strings.Join(tail, " | ")
		}
		return services.Wrap(services.ErrTranscode, transcodeStage, r.Name, message, err)
	}
	if scanErr != nil {
		return services.Wrap(services.ErrTranscode, transcodeStage, r.Name, "read ffmpeg stderr", scanErr)
	}
	return nil
}
