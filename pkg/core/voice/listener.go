// Package voice connects the session to the microphone, speech recognition,
// speech synthesis and the speaker.
package voice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-go/vai-assistant/pkg/core/voice/stt"
	"github.com/vango-go/vai-assistant/pkg/metrics"
)

// Microphone opens audio captures of 16-bit mono PCM.
type Microphone interface {
	Open(ctx context.Context, sampleRate int) (Capture, error)
}

// Capture delivers PCM frames until closed.
type Capture interface {
	Frames() <-chan []byte
	Close() error
}

// ListenerOptions configures a Listener.
type ListenerOptions struct {
	Endpoint EndpointConfig

	// PhraseTimeout bounds the wait for speech to begin.
	PhraseTimeout time.Duration
	// PreRoll is the audio kept from before speech was detected.
	PreRoll time.Duration
	// FlushTimeout bounds the wait for the final transcript.
	FlushTimeout time.Duration

	Language string
	Console  io.Writer
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Listener captures one phrase per call and transcribes it.
type Listener struct {
	mic    Microphone
	stt    stt.Streamer
	opts   ListenerOptions
	logger *slog.Logger
}

// NewListener creates a listener.
func NewListener(mic Microphone, streamer stt.Streamer, opts ListenerOptions) *Listener {
	opts.Endpoint = NewEndpointer(opts.Endpoint).cfg
	if opts.PhraseTimeout <= 0 {
		opts.PhraseTimeout = 8 * time.Second
	}
	if opts.PreRoll <= 0 {
		opts.PreRoll = 300 * time.Millisecond
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = 5 * time.Second
	}
	if opts.Console == nil {
		opts.Console = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		mic:    mic,
		stt:    streamer,
		opts:   opts,
		logger: logger.With("component", "listener"),
	}
}

// Listen blocks until a phrase is recognized, the phrase timeout passes
// without speech, or ctx ends. It never reports ordinary silence or
// unclear audio as an error.
func (l *Listener) Listen(ctx context.Context) (string, bool) {
	start := time.Now()
	defer func() { l.opts.Metrics.RecordListen(time.Since(start)) }()

	fmt.Fprintln(l.opts.Console, "Listening...")

	text, err := l.listen(ctx)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Warn("listen failed", "error", err)
			// Keep a broken device from spinning the session loop.
			select {
			case <-ctx.Done():
			case <-time.After(l.opts.PhraseTimeout):
			}
		}
		return "", false
	}
	if text == "" {
		return "", false
	}
	fmt.Fprintf(l.opts.Console, "You: %s\n", text)
	return text, true
}

func (l *Listener) listen(ctx context.Context) (string, error) {
	capture, err := l.mic.Open(ctx, l.opts.Endpoint.SampleRate)
	if err != nil {
		return "", fmt.Errorf("open microphone: %w", err)
	}
	captureClosed := false
	closeCapture := func() {
		if !captureClosed {
			captureClosed = true
			_ = capture.Close()
		}
	}
	defer closeCapture()

	ep := NewEndpointer(l.opts.Endpoint)
	preRoll := NewRingBuffer(l.opts.PreRoll, l.opts.Endpoint.SampleRate)
	onset := time.NewTimer(l.opts.PhraseTimeout)
	defer onset.Stop()

	var stream stt.Stream
	defer func() {
		if stream != nil {
			_ = stream.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case <-onset.C:
			if ep.Speaking() {
				continue
			}
			l.logger.Debug("no speech before phrase timeout")
			return "", nil

		case frame, ok := <-capture.Frames():
			if !ok {
				if stream == nil {
					return "", fmt.Errorf("microphone stopped")
				}
				closeCapture()
				return l.finish(ctx, stream)
			}

			switch ep.Push(frame) {
			case EventNone:
				if stream == nil {
					preRoll.Write(frame)
					continue
				}
				if err := stream.SendAudio(frame); err != nil {
					return "", fmt.Errorf("send audio: %w", err)
				}

			case EventSpeechStart:
				onset.Stop()
				stream, err = l.stt.Open(ctx, stt.TranscribeOptions{
					Language:   l.opts.Language,
					SampleRate: l.opts.Endpoint.SampleRate,
				})
				if err != nil {
					return "", fmt.Errorf("open transcription: %w", err)
				}
				audio := append(preRoll.Read(), frame...)
				preRoll.Clear()
				if err := stream.SendAudio(audio); err != nil {
					return "", fmt.Errorf("send audio: %w", err)
				}

			case EventDiscard:
				l.logger.Debug("discarding short noise burst")
				_ = stream.Close()
				stream = nil
				onset.Reset(l.opts.PhraseTimeout)

			case EventSpeechEnd:
				if err := stream.SendAudio(frame); err != nil {
					return "", fmt.Errorf("send audio: %w", err)
				}
				closeCapture()
				return l.finish(ctx, stream)
			}
		}
	}
}

// finish flushes the stream and joins the final segments. When the server
// never marks a segment final the last interim text is used.
func (l *Listener) finish(ctx context.Context, stream stt.Stream) (string, error) {
	if err := stream.Finalize(); err != nil {
		return "", fmt.Errorf("finalize: %w", err)
	}

	timeout := time.NewTimer(l.opts.FlushTimeout)
	defer timeout.Stop()

	var (
		finals  []string
		interim string
	)
collect:
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timeout.C:
			l.logger.Warn("transcript flush timed out")
			break collect
		case d, ok := <-stream.Transcripts():
			if !ok {
				if err := stream.Err(); err != nil {
					return "", err
				}
				break collect
			}
			if d.Flushed {
				break collect
			}
			text := strings.TrimSpace(d.Text)
			if text == "" {
				continue
			}
			if d.IsFinal {
				finals = append(finals, text)
				interim = ""
			} else {
				interim = text
			}
		}
	}

	if len(finals) == 0 {
		return interim, nil
	}
	return strings.Join(finals, " "), nil
}
