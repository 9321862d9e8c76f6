// Package ytdlp searches YouTube through the yt-dlp command line tool.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core/music"
	"github.com/vango-go/vai-assistant/pkg/core/types"
)

const watchURL = "https://www.youtube.com/watch?v="

// Runner executes a command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Searcher implements music.SearchProvider with yt-dlp.
type Searcher struct {
	path string
	run  Runner
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithRunner replaces the command runner.
func WithRunner(run Runner) Option {
	return func(s *Searcher) {
		s.run = run
	}
}

// New creates a searcher that invokes the binary at path ("yt-dlp" when
// empty).
func New(path string, opts ...Option) *Searcher {
	if strings.TrimSpace(path) == "" {
		path = "yt-dlp"
	}
	s := &Searcher{path: path, run: execRunner}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the provider identifier.
func (s *Searcher) Name() string {
	return "yt-dlp"
}

// Search runs a flat ytsearch for query and parses one JSON entry per line.
func (s *Searcher) Search(ctx context.Context, query string, max int) ([]types.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if max <= 0 {
		max = 1
	}

	out, err := s.run(ctx, s.path, Args(query, max)...)
	if err != nil {
		return nil, err
	}
	return parseEntries(out)
}

// Args returns the yt-dlp arguments for a search.
func Args(query string, max int) []string {
	return []string{
		"--flat-playlist",
		"--dump-json",
		"--no-warnings",
		"--quiet",
		fmt.Sprintf("ytsearch%d:%s", max, query),
	}
}

type entry struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	WebpageURL string   `json:"webpage_url"`
	Duration   *float64 `json:"duration"`
}

func parseEntries(out []byte) ([]types.Track, error) {
	var tracks []types.Track
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("decode yt-dlp entry: %w", err)
		}
		tracks = append(tracks, e.track())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read yt-dlp output: %w", err)
	}
	return tracks, nil
}

func (e entry) track() types.Track {
	url := e.WebpageURL
	if url == "" && strings.HasPrefix(e.URL, "http") {
		url = e.URL
	}
	if url == "" && e.ID != "" {
		url = watchURL + e.ID
	}

	seconds := 0
	if e.Duration != nil && *e.Duration > 0 {
		seconds = int(math.Round(*e.Duration))
	}

	title := strings.TrimSpace(e.Title)
	if title == "" {
		title = e.ID
	}
	return types.Track{Title: title, SourceURL: url, DurationSeconds: seconds}
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

var _ music.SearchProvider = (*Searcher)(nil)
