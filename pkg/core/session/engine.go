// Package session runs the voice dialog: it pulls utterances from a
// listener, routes them to chat or to the music flow, and speaks results.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vango-go/vai-assistant/pkg/core"
	"github.com/vango-go/vai-assistant/pkg/core/conversation"
	"github.com/vango-go/vai-assistant/pkg/core/music"
	"github.com/vango-go/vai-assistant/pkg/core/types"
	"github.com/vango-go/vai-assistant/pkg/metrics"
)

// State is the dialog mode.
type State int32

const (
	StateNormal State = iota
	StateMusicSelection
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "NORMAL"
	case StateMusicSelection:
		return "MUSIC_SELECTION"
	case StateTerminated:
		return "TERMINATED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Listener returns the next recognized utterance. ok is false when nothing
// usable was heard.
type Listener interface {
	Listen(ctx context.Context) (text string, ok bool)
}

// Speaker says text to the user. It never fails from the caller's view.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

// AudioSpeaker is a Speaker that can play audio attached to a chat reply.
type AudioSpeaker interface {
	Speaker
	SpeakAudio(ctx context.Context, text string, audio []byte)
}

// Sink plays a fetched track.
type Sink interface {
	Play(ctx context.Context, audio []byte) error
}

// Chat completes a conversation. *chat.Bridge implements it.
type Chat interface {
	Complete(ctx context.Context, system []types.Turn, history []types.Turn) (types.Reply, error)
}

// Fetcher downloads a track. *audio.Retriever implements it.
type Fetcher interface {
	Fetch(ctx context.Context, track types.Track) ([]byte, error)
}

// Deps are the collaborators of an Engine.
type Deps struct {
	Listener Listener
	Speaker  Speaker
	Chat     Chat
	Catalog  *music.Catalog
	Fetcher  Fetcher
	Sink     Sink
	// History is created from Options.MaxHistory when nil.
	History *conversation.History
}

// Options configures an Engine.
type Options struct {
	Phrases      Phrases
	SystemPrompt string
	// MaxHistory bounds both the stored history and the turns sent per
	// call, the new user turn included.
	MaxHistory int
	// MaxResults is the number of search results offered, 1..5.
	MaxResults int

	AssistantName string
	UserName      string
	Now           func() time.Time

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

const (
	DefaultMaxHistory = 20
	DefaultMaxResults = music.MaxPosition
)

// Engine is the session state machine. It is driven by one goroutine;
// State may be read from others.
type Engine struct {
	deps    Deps
	opts    Options
	system  []types.Turn
	history *conversation.History
	state   atomic.Int32
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates an engine in NORMAL state.
func New(deps Deps, opts Options) *Engine {
	if opts.MaxHistory <= 0 {
		opts.MaxHistory = DefaultMaxHistory
	}
	if opts.MaxResults <= 0 || opts.MaxResults > music.MaxPosition {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.Phrases.Triggers == nil && opts.Phrases.Exit == nil {
		opts.Phrases = DefaultPhrases()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if strings.TrimSpace(opts.AssistantName) == "" {
		opts.AssistantName = "Assistant"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	history := deps.History
	if history == nil {
		history = conversation.NewHistory(opts.MaxHistory)
	}

	var system []types.Turn
	if prompt := strings.TrimSpace(opts.SystemPrompt); prompt != "" {
		system = []types.Turn{types.SystemTurn(prompt)}
	}

	e := &Engine{
		deps:    deps,
		opts:    opts,
		system:  system,
		history: history,
		logger:  logger.With("component", "session", "session_id", uuid.NewString()),
		metrics: opts.Metrics,
	}
	e.state.Store(int32(StateNormal))
	return e
}

// State returns the current dialog mode.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// History returns the conversation log.
func (e *Engine) History() *conversation.History {
	return e.history
}

// Greet speaks the time-of-day greeting.
func (e *Engine) Greet(ctx context.Context) {
	e.deps.Speaker.Speak(ctx, Greeting(e.opts.Now(), e.opts.AssistantName, e.opts.UserName))
}

// Run listens and dispatches until the session terminates or ctx ends. It
// returns nil on termination and ctx.Err() on cancellation.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("session started")
	for {
		if e.State() == StateTerminated {
			e.logger.Info("session terminated")
			return nil
		}
		if err := ctx.Err(); err != nil {
			e.logger.Info("session interrupted", "state", e.State().String())
			return err
		}

		text, ok := e.deps.Listener.Listen(ctx)
		if !ok || ctx.Err() != nil {
			continue
		}
		e.Step(ctx, text)
	}
}

// Step handles one utterance and returns the resulting state. Failures
// inside the turn are spoken and never escape.
func (e *Engine) Step(ctx context.Context, utterance string) (next State) {
	from := e.State()
	next = from
	if from == StateTerminated {
		return next
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("turn panicked", "state", from.String(), "panic", r)
			e.metrics.RecordError("panic")
			e.deps.Speaker.Speak(ctx, e.opts.Phrases.Messages.TryAgain)
			next = e.State()
		}
	}()

	text := normalize(utterance)
	switch from {
	case StateNormal:
		next = e.stepNormal(ctx, text)
	case StateMusicSelection:
		next = e.stepSelection(ctx, text)
	}

	if next != from {
		e.logger.Debug("state transition", "from", from.String(), "to", next.String())
		e.metrics.RecordTransition(from.String(), next.String())
	}
	e.state.Store(int32(next))
	return next
}

func (e *Engine) stepNormal(ctx context.Context, text string) State {
	intent, trigger := classify(text, e.opts.Phrases)
	if intent != IntentNone {
		e.metrics.RecordTurn(string(intent))
	}

	switch intent {
	case IntentExit:
		e.say(ctx, e.opts.Phrases.Messages.Farewell)
		return StateTerminated
	case IntentMusic:
		e.logger.Debug("music request", "trigger", trigger)
		return e.search(ctx, extractQuery(text, e.opts.Phrases.Triggers, e.opts.Phrases.Fillers))
	case IntentChat:
		e.chat(ctx, text)
	}
	return StateNormal
}

func (e *Engine) chat(ctx context.Context, text string) {
	user := types.UserTurn(text)
	turns := append(e.history.Recent(e.opts.MaxHistory-1), user)

	reply, err := e.deps.Chat.Complete(ctx, e.system, turns)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.report(err)
		e.say(ctx, e.opts.Phrases.Messages.ChatFailed)
		return
	}

	// An audio-only reply has no text to replay to the backend.
	if strings.TrimSpace(reply.Text) == "" {
		e.history.Append(user)
	} else {
		e.history.Append(user, types.AssistantTurn(reply.Text))
	}

	if as, ok := e.deps.Speaker.(AudioSpeaker); ok && reply.HasAudio() {
		as.SpeakAudio(ctx, reply.Text, reply.Audio)
		return
	}
	e.say(ctx, reply.Text)
}

func (e *Engine) search(ctx context.Context, query string) State {
	msgs := e.opts.Phrases.Messages
	if query == "" {
		e.say(ctx, msgs.AskTitle)
		return StateNormal
	}

	e.say(ctx, fill(msgs.Searching, "query", query))
	tracks, err := e.deps.Catalog.Search(ctx, query, e.opts.MaxResults)
	if err != nil {
		if ctx.Err() != nil {
			return StateNormal
		}
		e.report(err)
		if core.IsErrorType(err, core.ErrSearch) {
			e.say(ctx, msgs.SearchFailed)
		} else {
			e.say(ctx, msgs.TryAgain)
		}
		return StateNormal
	}
	if len(tracks) == 0 {
		e.say(ctx, fill(msgs.NotFound, "query", query))
		return StateNormal
	}

	e.say(ctx, msgs.Results+"\n"+formatTracks(tracks)+"\n"+msgs.SelectPrompt)
	return StateMusicSelection
}

func (e *Engine) stepSelection(ctx context.Context, text string) State {
	if text == "" {
		return StateMusicSelection
	}
	msgs := e.opts.Phrases.Messages
	catalog := e.deps.Catalog

	if _, ok := firstWords(text, e.opts.Phrases.Cancel); ok {
		e.metrics.RecordTurn(string(IntentCancel))
		catalog.Clear()
		e.say(ctx, msgs.Cancelled)
		return StateNormal
	}

	e.metrics.RecordTurn(string(IntentSelect))
	index, ok := catalog.ResolveSelection(text)
	track, inRange := catalog.Track(index)
	if !ok || !inRange {
		e.say(ctx, fill(msgs.NotRecognized, "count", fmt.Sprint(catalog.Len())))
		return StateMusicSelection
	}

	e.say(ctx, fill(msgs.Announce, "title", track.Title))
	err := e.play(ctx, track)
	switch {
	case err == nil:
		catalog.Clear()
		e.say(ctx, fill(msgs.Finished, "title", track.Title))
		return StateNormal
	case ctx.Err() != nil:
		return StateMusicSelection
	case core.IsErrorType(err, core.ErrDownload), core.IsErrorType(err, core.ErrPlayback):
		e.report(err)
		e.say(ctx, fill(msgs.FetchFailed, "title", track.Title))
		catalog.Remove(index)
		if catalog.Len() == 0 {
			e.say(ctx, msgs.Exhausted)
			return StateNormal
		}
		e.say(ctx, msgs.Remaining+"\n"+formatTracks(catalog.Results())+"\n"+msgs.SelectPrompt)
		return StateMusicSelection
	default:
		e.report(err)
		e.say(ctx, msgs.TryAgain)
		return StateMusicSelection
	}
}

func (e *Engine) play(ctx context.Context, track types.Track) error {
	audio, err := e.deps.Fetcher.Fetch(ctx, track)
	if err != nil {
		return err
	}
	if err := e.deps.Sink.Play(ctx, audio); err != nil {
		if ctx.Err() == nil && !core.IsErrorType(err, core.ErrPlayback) {
			err = core.NewPlaybackError(err)
		}
		e.metrics.RecordPlayback("error")
		return err
	}
	e.metrics.RecordPlayback("ok")
	return nil
}

func (e *Engine) say(ctx context.Context, text string) {
	e.deps.Speaker.Speak(ctx, text)
}

// report logs a recovered failure and counts it by type.
func (e *Engine) report(err error) {
	kind := "unclassified"
	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		kind = string(coreErr.Type)
	}
	e.logger.Warn("turn failed", "error_type", kind, "error", err)
	e.metrics.RecordError(kind)
}
