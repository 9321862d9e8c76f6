package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/vango-go/vai-assistant/pkg/core/types"
)

type fakeSpeaker struct {
	mu     sync.Mutex
	said   []string
	audios [][]byte
}

func (s *fakeSpeaker) Speak(_ context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.said = append(s.said, text)
}

func (s *fakeSpeaker) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.said) == 0 {
		return ""
	}
	return s.said[len(s.said)-1]
}

func (s *fakeSpeaker) all() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.said, "\n")
}

func (s *fakeSpeaker) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.said)
}

type audioSpeaker struct {
	fakeSpeaker
}

func (s *audioSpeaker) SpeakAudio(_ context.Context, text string, audio []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.said = append(s.said, text)
	s.audios = append(s.audios, audio)
}

type fakeChat struct {
	reply  types.Reply
	err    error
	panic  bool
	system []types.Turn
	turns  []types.Turn
	calls  int
}

func (c *fakeChat) Complete(_ context.Context, system, history []types.Turn) (types.Reply, error) {
	c.calls++
	if c.panic {
		panic("backend exploded")
	}
	c.system = system
	c.turns = history
	return c.reply, c.err
}

type fakeSearch struct {
	tracks  []types.Track
	err     error
	queries []string
}

func (s *fakeSearch) Name() string { return "fake" }

func (s *fakeSearch) Search(_ context.Context, query string, max int) ([]types.Track, error) {
	s.queries = append(s.queries, query)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.tracks) > max {
		return s.tracks[:max], nil
	}
	return s.tracks, nil
}

type fakeFetcher struct {
	// fail lists titles whose download fails with the given error.
	fail    map[string]error
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, track types.Track) ([]byte, error) {
	f.fetched = append(f.fetched, track.Title)
	if err, ok := f.fail[track.Title]; ok {
		return nil, err
	}
	return []byte("mp3:" + track.Title), nil
}

type fakeSink struct {
	err    error
	played []string
}

func (s *fakeSink) Play(_ context.Context, audio []byte) error {
	if s.err != nil {
		return s.err
	}
	s.played = append(s.played, string(audio))
	return nil
}

// scriptedListener returns each line once, then blocks until ctx ends.
type scriptedListener struct {
	lines []string
}

func (l *scriptedListener) Listen(ctx context.Context) (string, bool) {
	if len(l.lines) == 0 {
		<-ctx.Done()
		return "", false
	}
	line := l.lines[0]
	l.lines = l.lines[1:]
	return line, strings.TrimSpace(line) != ""
}

var errBoom = errors.New("boom")
