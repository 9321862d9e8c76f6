// Package chat turns a conversation into a completion request and extracts
// the reply, retrying transient backend failures.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vango-go/vai-assistant/pkg/core"
	"github.com/vango-go/vai-assistant/pkg/core/types"
	"github.com/vango-go/vai-assistant/pkg/metrics"
)

const (
	DefaultMaxAttempts    = 3
	DefaultBaseDelay      = 500 * time.Millisecond
	DefaultMaxDelay       = 4 * time.Second
	DefaultAttemptTimeout = 30 * time.Second
)

// Backend is a completion service: it accepts role-tagged turns and returns
// a single reply.
type Backend interface {
	// Name returns the backend identifier.
	Name() string

	// Generate sends the turns in order and returns the model reply.
	Generate(ctx context.Context, turns []types.Turn) (types.Reply, error)
}

// Options configures a Bridge.
type Options struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	AttemptTimeout time.Duration
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

// Bridge forwards conversation context to a Backend.
type Bridge struct {
	backend Backend
	opts    Options
	logger  *slog.Logger
}

// NewBridge creates a bridge with defaults filled in for zero options.
func NewBridge(backend Backend, opts Options) *Bridge {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	// The cap must leave room for every doubling so each wait is longer
	// than the one before.
	if floor := opts.BaseDelay << (opts.MaxAttempts - 1); opts.MaxDelay < floor {
		opts.MaxDelay = floor
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{
		backend: backend,
		opts:    opts,
		logger:  logger.With("component", "chat", "backend", backend.Name()),
	}
}

// Complete sends system prompts followed by history and returns the reply.
// It does not record either turn; the caller owns the conversation history.
// Every failure is reported as a *core.Error of type core.ErrAPI.
func (b *Bridge) Complete(ctx context.Context, system []types.Turn, history []types.Turn) (types.Reply, error) {
	if len(history) == 0 {
		return types.Reply{}, core.NewAPIError("no conversation turns to send")
	}

	payload := make([]types.Turn, 0, len(system)+len(history))
	payload = append(payload, system...)
	payload = append(payload, history...)

	start := time.Now()
	defer func() {
		b.opts.Metrics.RecordChat(b.backend.Name(), time.Since(start))
	}()

	var (
		reply   types.Reply
		attempt int
	)
	err := retry.Do(ctx, b.backoff(), func(ctx context.Context) error {
		attempt++
		r, err := b.attempt(ctx, payload)
		if err != nil {
			b.opts.Metrics.RecordChatAttempt(b.backend.Name(), "failed")
			if !retryable(err) || attempt >= b.opts.MaxAttempts {
				b.logger.Warn("completion failed", "attempt", attempt, "error", err)
				return err
			}
			b.logger.Debug("completion attempt failed, retrying", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		b.opts.Metrics.RecordChatAttempt(b.backend.Name(), "ok")
		reply = r
		return nil
	})
	if err != nil {
		return types.Reply{}, core.AsAPIError(err)
	}
	return reply, nil
}

func (b *Bridge) backoff() retry.Backoff {
	backoff := retry.NewExponential(b.opts.BaseDelay)
	backoff = retry.WithCappedDuration(b.opts.MaxDelay, backoff)
	return retry.WithMaxRetries(uint64(b.opts.MaxAttempts-1), backoff)
}

func (b *Bridge) attempt(ctx context.Context, payload []types.Turn) (types.Reply, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, b.opts.AttemptTimeout)
	defer cancel()

	reply, err := b.backend.Generate(attemptCtx, payload)
	if err != nil {
		return types.Reply{}, err
	}
	return validateReply(reply)
}

// validateReply fails fast on replies that carry nothing to say.
func validateReply(reply types.Reply) (types.Reply, error) {
	reply.Text = strings.TrimSpace(reply.Text)
	if reply.Text == "" && !reply.HasAudio() {
		return types.Reply{}, core.NewInvalidResponseError("reply has neither text nor audio")
	}
	return reply, nil
}

// retryable treats transport failures and retryable backend errors as
// transient. Classified non-retryable errors and caller cancellation are not.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		return coreErr.IsRetryable()
	}
	return true
}
