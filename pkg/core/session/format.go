package session

import (
	"fmt"
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core/types"
)

// formatTracks renders a 1-based list, one "N. Title (m:ss)" line per track.
func formatTracks(tracks []types.Track) string {
	lines := make([]string, len(tracks))
	for i, t := range tracks {
		lines[i] = fmt.Sprintf("%d. %s (%s)", i+1, t.Title, t.Duration())
	}
	return strings.Join(lines, "\n")
}
