package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vango-go/vai-assistant/pkg/config"
	"github.com/vango-go/vai-assistant/pkg/core/audio"
	"github.com/vango-go/vai-assistant/pkg/core/chat"
	"github.com/vango-go/vai-assistant/pkg/core/music"
	"github.com/vango-go/vai-assistant/pkg/core/music/ytdlp"
	"github.com/vango-go/vai-assistant/pkg/core/providers/gemini"
	"github.com/vango-go/vai-assistant/pkg/core/providers/genai"
	"github.com/vango-go/vai-assistant/pkg/core/session"
	"github.com/vango-go/vai-assistant/pkg/core/voice"
	"github.com/vango-go/vai-assistant/pkg/core/voice/device"
	"github.com/vango-go/vai-assistant/pkg/core/voice/stt"
	"github.com/vango-go/vai-assistant/pkg/core/voice/tts"
	"github.com/vango-go/vai-assistant/pkg/metrics"
)

func buildEngine(ctx context.Context, cfg config.Config, console io.Writer, logger *slog.Logger, m *metrics.Metrics) (*session.Engine, error) {
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	bridge := chat.NewBridge(backend, chat.Options{
		BaseDelay:      cfg.ChatRetryBase,
		MaxDelay:       cfg.ChatRetryCap,
		AttemptTimeout: cfg.ChatTimeout,
		Logger:         logger,
		Metrics:        m,
	})

	sink := newSink(cfg)
	speaker := newSpeaker(cfg, sink, console, logger)

	listener := voice.NewListener(&device.Microphone{}, stt.NewCartesia(cfg.CartesiaAPIKey), voice.ListenerOptions{
		Endpoint: voice.EndpointConfig{
			EnergyThreshold: cfg.EnergyThreshold,
			PauseThreshold:  cfg.PauseThreshold,
		},
		PhraseTimeout: cfg.PhraseTimeout,
		Language:      cfg.STTLanguage,
		Console:       console,
		Logger:        logger,
		Metrics:       m,
	})

	retriever := audio.NewRetriever(audio.NewHTTPProviders(cfg.DownloadProviders), audio.Options{
		AttemptTimeout: cfg.DownloadTimeout,
		Logger:         logger,
		Metrics:        m,
	})
	logger.Debug("download chain", "providers", retriever.Providers())

	return session.New(session.Deps{
		Listener: listener,
		Speaker:  speaker,
		Chat:     bridge,
		Catalog:  newCatalog(cfg.YTDLPPath, cfg.SearchTimeout, cfg.Phrases, logger, m),
		Fetcher:  retriever,
		Sink:     sink,
	}, session.Options{
		Phrases:       cfg.Phrases,
		SystemPrompt:  cfg.SystemPrompt,
		MaxHistory:    cfg.MaxHistory,
		MaxResults:    cfg.YTMaxResults,
		AssistantName: cfg.AssistantName,
		UserName:      cfg.UserName,
		Logger:        logger,
		Metrics:       m,
	}), nil
}

func newBackend(ctx context.Context, cfg config.Config) (chat.Backend, error) {
	switch cfg.ChatBackend {
	case config.ChatBackendGenAI:
		p, err := genai.New(ctx, genai.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.Model})
		if err != nil {
			return nil, fmt.Errorf("genai backend: %w", err)
		}
		return p, nil
	case config.ChatBackendGemini, "":
		return gemini.New(cfg.GeminiAPIKey,
			gemini.WithModel(cfg.Model),
			gemini.WithBaseURL(cfg.GeminiBaseURL),
		), nil
	default:
		return nil, fmt.Errorf("unknown chat backend %q", cfg.ChatBackend)
	}
}

func newSink(cfg config.Config) voice.Sink {
	if cfg.PlaybackBackend == config.PlaybackFFplay {
		return device.NewFFplaySink(cfg.FFplayPath)
	}
	return device.NewOtoSink()
}

func newSynthesizer(cfg config.Config) tts.Synthesizer {
	if cfg.TTSProvider == config.TTSSpeechify {
		return tts.NewSpeechify(cfg.SpeechifyAPIKey)
	}
	return tts.NewCartesia(cfg.CartesiaAPIKey)
}

func newSpeaker(cfg config.Config, sink voice.Sink, console io.Writer, logger *slog.Logger) *voice.Speaker {
	return voice.NewSpeaker(newSynthesizer(cfg), sink, voice.SpeakerOptions{
		EnableAudio: cfg.EnableAudio,
		Voice:       cfg.TTSVoice,
		Language:    cfg.STTLanguage,
		Label:       cfg.AssistantName,
		Console:     console,
		Logger:      logger,
	})
}

func newCatalog(ytdlpPath string, timeout time.Duration, phrases session.Phrases, logger *slog.Logger, m *metrics.Metrics) *music.Catalog {
	return music.NewCatalog(ytdlp.New(ytdlpPath), phrases.Selection.Resolver(), music.Options{
		Timeout: timeout,
		Logger:  logger,
		Metrics: m,
	})
}
