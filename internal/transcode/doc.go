// Package transcode runs ffmpeg to produce the multi-rendition HLS layout
// for a single video file. The orchestrator probes duration with ffprobe,
// encodes each ladder rendition in sequence, and finishes by writing the
// master playlist. Progress is derived from ffmpeg's stderr time= reports
// and delivered through a caller-provided sink.
package transcode
