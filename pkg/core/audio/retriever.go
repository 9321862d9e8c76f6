// Package audio resolves playable audio for a track through an ordered chain
// of download providers.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vango-go/vai-assistant/pkg/core"
	"github.com/vango-go/vai-assistant/pkg/core/types"
	"github.com/vango-go/vai-assistant/pkg/metrics"
)

// DefaultAttemptTimeout bounds a single provider attempt.
const DefaultAttemptTimeout = 20 * time.Second

// Provider returns encoded audio bytes for a track.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, track types.Track) ([]byte, error)
}

// Attempt records the outcome of one provider in the chain.
type Attempt struct {
	Provider string
	Bytes    int
	Duration time.Duration
	Err      error
}

// OK reports whether the attempt produced audio.
func (a Attempt) OK() bool {
	return a.Err == nil && a.Bytes > 0
}

// ExhaustedError lists every failed attempt of a chain.
type ExhaustedError struct {
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return "no download providers configured"
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Provider, a.Err))
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the individual attempt errors.
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

// Options configures a Retriever.
type Options struct {
	AttemptTimeout time.Duration
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

// Retriever tries providers in order until one returns audio.
type Retriever struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewRetriever creates a retriever over providers, tried in the given order.
func NewRetriever(providers []Provider, opts Options) *Retriever {
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		providers: append([]Provider(nil), providers...),
		timeout:   opts.AttemptTimeout,
		logger:    logger.With("component", "retriever"),
		metrics:   opts.Metrics,
	}
}

// Providers returns the names of the configured providers in chain order.
func (r *Retriever) Providers() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Fetch returns the first non-empty audio body produced by the chain. Each
// provider is tried once. When every provider fails the error is a
// download error wrapping an *ExhaustedError.
func (r *Retriever) Fetch(ctx context.Context, track types.Track) ([]byte, error) {
	attempts := make([]Attempt, 0, len(r.providers))

	for _, p := range r.providers {
		if err := ctx.Err(); err != nil {
			attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
			break
		}

		data, attempt := r.try(ctx, p, track)
		if attempt.OK() {
			r.logger.Info("audio fetched", "provider", attempt.Provider, "bytes", attempt.Bytes, "duration", attempt.Duration)
			return data, nil
		}
		attempts = append(attempts, attempt)
		r.logger.Warn("download provider failed, trying next", "provider", attempt.Provider, "error", attempt.Err)
	}

	exhausted := &ExhaustedError{Attempts: attempts}
	return nil, core.NewDownloadError(
		fmt.Sprintf("all download providers failed for %q: %s", track.Title, exhausted.Error()),
		exhausted,
	)
}

func (r *Retriever) try(ctx context.Context, p Provider, track types.Track) ([]byte, Attempt) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	data, err := p.Fetch(attemptCtx, track)
	attempt := Attempt{
		Provider: p.Name(),
		Bytes:    len(data),
		Duration: time.Since(start),
		Err:      err,
	}
	if err == nil && len(data) == 0 {
		attempt.Err = errEmptyBody
	}

	outcome := "ok"
	switch {
	case attempt.Err == nil:
	case errors.Is(attempt.Err, context.DeadlineExceeded):
		outcome = "timeout"
	case errors.Is(attempt.Err, errEmptyBody):
		outcome = "empty"
	default:
		outcome = "error"
	}
	r.metrics.RecordDownloadAttempt(attempt.Provider, outcome, attempt.Bytes)

	if attempt.Err != nil {
		return nil, attempt
	}
	return data, attempt
}

var errEmptyBody = errors.New("empty audio body")
