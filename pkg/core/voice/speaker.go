package voice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-go/vai-assistant/pkg/core/voice/tts"
)

// Sink plays encoded audio to completion.
type Sink interface {
	Play(ctx context.Context, audio []byte) error
}

// SpeakerOptions configures a Speaker.
type SpeakerOptions struct {
	// EnableAudio turns synthesis and playback on. When off the speaker
	// only writes to the console.
	EnableAudio bool
	Voice       string
	Language    string
	// Label prefixes console lines, usually the assistant's name.
	Label string
	// ChunkChars is the target length of one synthesized clip.
	ChunkChars int
	// SynthTimeout bounds one synthesis request.
	SynthTimeout time.Duration

	Console io.Writer
	Logger  *slog.Logger
}

// Speaker echoes replies to the console and speaks them. Failures are
// logged and never returned.
type Speaker struct {
	synth  tts.Synthesizer
	sink   Sink
	opts   SpeakerOptions
	logger *slog.Logger
}

// NewSpeaker creates a speaker. synth and sink may be nil when audio is
// disabled.
func NewSpeaker(synth tts.Synthesizer, sink Sink, opts SpeakerOptions) *Speaker {
	if opts.Console == nil {
		opts.Console = io.Discard
	}
	if opts.ChunkChars <= 0 {
		opts.ChunkChars = DefaultChunkChars
	}
	if opts.SynthTimeout <= 0 {
		opts.SynthTimeout = 20 * time.Second
	}
	if strings.TrimSpace(opts.Label) == "" {
		opts.Label = "Assistant"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{
		synth:  synth,
		sink:   sink,
		opts:   opts,
		logger: logger.With("component", "speaker"),
	}
}

// Speak prints text and, when audio is enabled, synthesizes and plays it.
func (s *Speaker) Speak(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	s.echo(text)
	s.say(ctx, text)
}

// SpeakAudio prints text and plays audio that came attached to a reply,
// falling back to synthesis when playback fails.
func (s *Speaker) SpeakAudio(ctx context.Context, text string, audio []byte) {
	text = strings.TrimSpace(text)
	if text != "" {
		s.echo(text)
	}
	if !s.opts.EnableAudio || s.sink == nil {
		return
	}
	if len(audio) > 0 {
		err := s.sink.Play(ctx, audio)
		if err == nil {
			return
		}
		s.logger.Warn("attached audio playback failed, synthesizing instead", "error", err)
	}
	if text != "" {
		s.say(ctx, text)
	}
}

func (s *Speaker) echo(text string) {
	fmt.Fprintf(s.opts.Console, "%s: %s\n", s.opts.Label, text)
}

func (s *Speaker) say(ctx context.Context, text string) {
	if !s.opts.EnableAudio || s.synth == nil || s.sink == nil {
		return
	}

	for _, chunk := range SplitSpeech(text, s.opts.ChunkChars) {
		if ctx.Err() != nil {
			return
		}
		audio, err := s.synthesize(ctx, chunk)
		if err != nil {
			s.logger.Warn("speech synthesis failed", "provider", s.synth.Name(), "error", err)
			return
		}
		if len(audio) == 0 {
			continue
		}
		if err := s.sink.Play(ctx, audio); err != nil {
			s.logger.Warn("speech playback failed", "error", err)
			return
		}
	}
}

func (s *Speaker) synthesize(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SynthTimeout)
	defer cancel()

	out, err := s.synth.Synthesize(ctx, text, tts.SynthesizeOptions{
		Voice:    s.opts.Voice,
		Language: s.opts.Language,
		Format:   "mp3",
	})
	if err != nil {
		return nil, err
	}
	return out.Audio, nil
}
