package transcode

import (
	"regexp"
	"strconv"
)

// ProgressSink receives overall job progress as a whole percentage.
type ProgressSink func(percent int)

var timePattern = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// parseElapsed extracts the elapsed media time in seconds from an ffmpeg
// stderr line, if the line carries a time= report.
func parseElapsed(line string) (float64, bool) {
	match := timePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	hours, err1 := strconv.ParseFloat(match[1], 64)
	minutes, err2 := strconv.ParseFloat(match[2], 64)
	seconds, err3 := strconv.ParseFloat(match[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, false
	}
	return hours*3600 + minutes*60 + seconds, true
}

// renditionPercent converts elapsed media time into a bounded percentage of
// the rendition's total duration.
func renditionPercent(elapsed, duration float64) int {
	if duration <= 0 {
		return 0
	}
	pct := int(elapsed / duration * 100)
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// progressCoalescer forwards only increasing percentages to the sink so a
// noisy stderr stream cannot flood the store with duplicate updates.
type progressCoalescer struct {
	sink ProgressSink
	last int
}

func newProgressCoalescer(sink ProgressSink) *progressCoalescer {
	return &progressCoalescer{sink: sink, last: -1}
}

func (c *progressCoalescer) report(percent int) {
	if c.sink == nil || percent <= c.last {
		return
	}
	c.last = percent
	c.sink(percent)
}
