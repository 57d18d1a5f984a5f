package catalog

import (
	"fmt"
	"net/url"
)

// PlayerLink builds the deep link used to jump into the main player at
// a time offset. Map pins, timeline excerpts, and chat citations all
// navigate through these.
func PlayerLink(recordingPath string, seconds float64) string {
	return fmt.Sprintf("/player?recording=%s&t=%s",
		url.QueryEscape(recordingPath), formatOffset(seconds))
}

func formatOffset(seconds float64) string {
	if seconds == float64(int64(seconds)) {
		return fmt.Sprintf("%d", int64(seconds))
	}
	return fmt.Sprintf("%.2f", seconds)
}

// FormatTimestamp renders seconds as M:SS, the label format used in
// chat prompts and citations.
func FormatTimestamp(seconds float64) string {
	mins := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%d:%02d", mins, secs)
}
