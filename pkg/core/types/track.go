package types

import "fmt"

// Track is a single search result that can be fetched and played.
type Track struct {
	Title           string `json:"title"`
	SourceURL       string `json:"source_url"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Duration renders the track length as m:ss.
func (t Track) Duration() string {
	return FormatDuration(t.DurationSeconds)
}

// FormatDuration renders seconds as m:ss. Negative values render as 0:00.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
