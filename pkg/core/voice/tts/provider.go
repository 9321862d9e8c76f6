// Package tts provides text-to-speech synthesis for spoken replies.
package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Synthesizer converts text to encoded audio.
type Synthesizer interface {
	// Name returns the provider identifier.
	Name() string

	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*Synthesis, error)
}

// SynthesizeOptions configures synthesis.
type SynthesizeOptions struct {
	Voice      string  // Provider voice identifier
	Speed      float64 // Speed multiplier, provider default when zero
	Language   string  // Language code
	Format     string  // Output format: "mp3" or "wav"
	SampleRate int     // Sample rate in Hz
}

// Synthesis is the result of synthesis.
type Synthesis struct {
	Audio  []byte // Encoded audio
	Format string // Audio format
}

// Option configures an HTTP-backed synthesizer.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL overrides the provider API base URL.
func WithBaseURL(url string) Option {
	return func(o *options) { o.baseURL = strings.TrimRight(url, "/") }
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func buildOptions(defaultBaseURL string, opts []Option) options {
	o := options{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// readAudio reads a synthesis response body, turning non-2xx statuses into
// errors that carry the provider's message.
func readAudio(provider string, resp *http.Response) ([]byte, error) {
	if resp.StatusCode == http.StatusNoContent {
		return []byte{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%s error %d: %s", provider, resp.StatusCode, strings.TrimSpace(string(errBody)))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}
