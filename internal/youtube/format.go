package youtube

import (
	"fmt"
	"strings"
)

// Record is a single caption segment as returned by the transcript source:
// the playback offset at which the segment starts and its text.
type Record struct {
	// Start is the segment's start offset in seconds from the beginning of
	// the video. Never negative.
	Start float64

	// Text is the caption text, already cleaned of markup and entities.
	Text string
}

// FormatTranscript renders records as one "[MM:SS] text" line per record,
// newline-joined, preserving input order exactly. Minutes are zero-padded to
// at least two digits but never wrapped or truncated; a segment starting at
// one hour renders as [60:00]. An empty input yields an empty string.
func FormatTranscript(records []Record) string {
	if len(records) == 0 {
		return ""
	}
	lines := make([]string, len(records))
	for i, r := range records {
		total := int(r.Start)
		lines[i] = fmt.Sprintf("[%02d:%02d] %s", total/60, total%60, r.Text)
	}
	return strings.Join(lines, "\n")
}
