package device

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/vango-go/vai-assistant/pkg/core"
	"github.com/vango-go/vai-assistant/pkg/core/voice"
)

// OtoSink decodes clips and plays them on the default output device.
type OtoSink struct {
	mu   sync.Mutex
	ctx  *oto.Context
	once sync.Once
	err  error
}

// NewOtoSink creates a sink. The output device is opened on first use.
func NewOtoSink() *OtoSink {
	return &OtoSink{}
}

func (s *OtoSink) context() (*oto.Context, error) {
	s.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   outputRate,
			ChannelCount: outputChannels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			s.err = fmt.Errorf("init speaker: %w", err)
			return
		}
		<-ready
		s.ctx = ctx
	})
	return s.ctx, s.err
}

// Play decodes audio and blocks until it has played or ctx ends. Decode
// and device failures are playback errors.
func (s *OtoSink) Play(ctx context.Context, audio []byte) error {
	pcm, rate, err := decode(audio)
	if err != nil {
		return core.NewPlaybackError(err)
	}
	pcm = resample(pcm, rate, outputRate)

	s.mu.Lock()
	defer s.mu.Unlock()

	otoCtx, err := s.context()
	if err != nil {
		return core.NewPlaybackError(err)
	}
	if err := otoCtx.Resume(); err != nil {
		return core.NewPlaybackError(fmt.Errorf("resume speaker: %w", err))
	}
	// Release the device between clips.
	defer func() { _ = otoCtx.Suspend() }()

	player := otoCtx.NewPlayer(bytes.NewReader(pcm))
	defer player.Close()
	player.Play()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	if err := player.Err(); err != nil {
		return core.NewPlaybackError(err)
	}
	return nil
}

var _ voice.Sink = (*OtoSink)(nil)
