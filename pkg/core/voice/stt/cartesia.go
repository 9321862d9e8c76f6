package stt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	cartesiaWSURL   = "wss://api.cartesia.ai/stt/websocket"
	cartesiaVersion = "2025-04-16"
)

// CartesiaProvider implements Streamer over Cartesia's STT websocket.
type CartesiaProvider struct {
	apiKey string
	wsURL  string
	dialer *websocket.Dialer
}

// Option configures a CartesiaProvider.
type Option func(*CartesiaProvider)

// WithURL overrides the websocket endpoint.
func WithURL(u string) Option {
	return func(c *CartesiaProvider) { c.wsURL = u }
}

// NewCartesia creates a new Cartesia STT provider.
func NewCartesia(apiKey string, opts ...Option) *CartesiaProvider {
	c := &CartesiaProvider{
		apiKey: apiKey,
		wsURL:  cartesiaWSURL,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider identifier.
func (c *CartesiaProvider) Name() string {
	return "cartesia"
}

// Open implements Streamer.
func (c *CartesiaProvider) Open(ctx context.Context, opts TranscribeOptions) (Stream, error) {
	return c.NewStreamingSTT(ctx, opts)
}

// StreamingSTT represents a real-time streaming transcription session.
type StreamingSTT struct {
	conn        *websocket.Conn
	transcripts chan TranscriptDelta
	done        chan struct{}
	closed      atomic.Bool
	writeMu     sync.Mutex
	errMu       sync.Mutex
	err         error
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewStreamingSTT dials a new streaming session. Audio is sent with
// SendAudio and transcripts arrive on Transcripts.
func (c *CartesiaProvider) NewStreamingSTT(ctx context.Context, opts TranscribeOptions) (*StreamingSTT, error) {
	u, err := c.sessionURL(opts)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("X-API-Key", c.apiKey)
	headers.Set("Cartesia-Version", cartesiaVersion)

	conn, resp, err := c.dialer.DialContext(ctx, u, headers)
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			if len(body) > 0 {
				return nil, fmt.Errorf("websocket connect (status %d): %s", resp.StatusCode, string(body))
			}
			return nil, fmt.Errorf("websocket connect: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("websocket connect: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &StreamingSTT{
		conn:        conn,
		transcripts: make(chan TranscriptDelta, 100),
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}

	go s.readLoop()
	go func() {
		// Unblock ReadMessage when the caller's context ends.
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

func (c *CartesiaProvider) sessionURL(opts TranscribeOptions) (string, error) {
	u, err := url.Parse(c.wsURL)
	if err != nil {
		return "", fmt.Errorf("parse websocket URL: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "ink-whisper"
	}
	language := opts.Language
	if language == "" {
		language = "en"
	}
	encoding := opts.Encoding
	if encoding == "" {
		encoding = "pcm_s16le"
	}
	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}

	q := u.Query()
	q.Set("model", model)
	q.Set("language", language)
	q.Set("encoding", encoding)
	q.Set("sample_rate", strconv.Itoa(sampleRate))
	// Endpointing happens locally, so the server never closes on silence.
	q.Set("min_volume", "0.01")
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *StreamingSTT) readLoop() {
	defer func() {
		close(s.transcripts)
		close(s.done)
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.ctx.Err() == nil && !s.closed.Load() &&
				!websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.setErr(fmt.Errorf("read transcript: %w", err))
			}
			return
		}

		var msg cartesiaSTTResponse
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		var delta TranscriptDelta
		switch msg.Type {
		case "transcript":
			delta = TranscriptDelta{
				Text:      msg.Text,
				IsFinal:   msg.IsFinal,
				Timestamp: msg.Duration,
			}
		case "flush_done":
			delta = TranscriptDelta{Flushed: true}
		case "done":
			return
		case "error":
			s.setErr(fmt.Errorf("cartesia stt: %s", msg.Error))
			return
		default:
			continue
		}

		select {
		case s.transcripts <- delta:
		case <-s.ctx.Done():
			return
		}
	}
}

type cartesiaSTTResponse struct {
	Type      string  `json:"type"`     // "transcript", "flush_done", "done", "error"
	Text      string  `json:"text"`     // Transcribed text
	IsFinal   bool    `json:"is_final"` // Whether this is final
	Duration  float64 `json:"duration"` // Audio duration
	Language  string  `json:"language"` // Detected language
	RequestID string  `json:"request_id"`
	Error     string  `json:"error"` // Error message if type is "error"
}

var errSessionClosed = errors.New("session closed")

// SendAudio sends PCM audio in the session's encoding.
func (s *StreamingSTT) SendAudio(data []byte) error {
	if s.closed.Load() {
		return errSessionClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// Finalize asks the server to transcribe everything sent so far. A delta
// with Flushed set follows once it has.
func (s *StreamingSTT) Finalize() error {
	if s.closed.Load() {
		return errSessionClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, []byte("finalize"))
}

// Transcripts returns the channel of transcript deltas. It is closed when
// the session ends.
func (s *StreamingSTT) Transcripts() <-chan TranscriptDelta {
	return s.transcripts
}

// Err returns the error that ended the session, if any.
func (s *StreamingSTT) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *StreamingSTT) setErr(err error) {
	s.errMu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.errMu.Unlock()
}

// Close ends the session and waits for the read loop to exit.
func (s *StreamingSTT) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.TextMessage, []byte("done"))
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()

	s.cancel()
	err := s.conn.Close()
	<-s.done
	return err
}

var _ Streamer = (*CartesiaProvider)(nil)
