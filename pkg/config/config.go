// Package config reads the assistant's startup configuration from the
// environment. Configuration is read once and never changes afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vango-go/vai-assistant/pkg/core/audio"
	"github.com/vango-go/vai-assistant/pkg/core/music"
	"github.com/vango-go/vai-assistant/pkg/core/session"
)

type ChatBackend string

const (
	ChatBackendGemini ChatBackend = "gemini"
	ChatBackendGenAI  ChatBackend = "genai"
)

type TTSProvider string

const (
	TTSCartesia  TTSProvider = "cartesia"
	TTSSpeechify TTSProvider = "speechify"
)

type PlaybackBackend string

const (
	PlaybackOto    PlaybackBackend = "oto"
	PlaybackFFplay PlaybackBackend = "ffplay"
)

// DefaultDownloadProviders is the fallback chain used when
// ASSISTANT_DOWNLOAD_PROVIDERS is unset.
var DefaultDownloadProviders = []string{
	"json:https://kaiz-apis.gleeze.com/api/ytdown-mp3?url={url}",
	"json:https://kaiz-apis.gleeze.com/api/ytmp3?url={url}",
	"raw:https://mypyapi.up.railway.app/yt?url={url}",
}

type Config struct {
	AssistantName string
	UserName      string
	SystemPrompt  string

	// Completion backend.
	ChatBackend   ChatBackend
	GeminiAPIKey  string
	Model         string
	GeminiBaseURL string
	ChatTimeout   time.Duration
	// Exponential backoff between chat attempts.
	ChatRetryBase time.Duration
	ChatRetryCap  time.Duration
	MaxHistory    int

	// Listening.
	CartesiaAPIKey  string
	STTLanguage     string
	PhraseTimeout   time.Duration
	PauseThreshold  time.Duration
	EnergyThreshold float64

	// Speaking.
	EnableAudio     bool
	TTSProvider     TTSProvider
	TTSVoice        string
	SpeechifyAPIKey string

	// Music.
	YTMaxResults      int
	YTDLPPath         string
	SearchTimeout     time.Duration
	DownloadProviders []audio.Endpoint
	DownloadTimeout   time.Duration
	PlaybackBackend   PlaybackBackend
	FFplayPath        string

	MetricsAddr string

	PhrasesFile string
	Phrases     session.Phrases
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		AssistantName: envOr("ASSISTANT_NAME", "Kristy"),
		UserName:      envOr("ASSISTANT_USER_NAME", ""),

		ChatBackend:   ChatBackend(strings.ToLower(envOr("ASSISTANT_CHAT_BACKEND", string(ChatBackendGemini)))),
		GeminiAPIKey:  envOr("GEMINI_API_KEY", envOr("GOOGLE_API_KEY", "")),
		Model:         envOr("ASSISTANT_MODEL", "gemini-2.0-flash"),
		GeminiBaseURL: envOr("ASSISTANT_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		ChatTimeout:   envDurationOr("ASSISTANT_CHAT_TIMEOUT", 30*time.Second),
		ChatRetryBase: envDurationOr("ASSISTANT_CHAT_RETRY_BASE", 500*time.Millisecond),
		ChatRetryCap:  envDurationOr("ASSISTANT_CHAT_RETRY_CAP", 4*time.Second),
		MaxHistory:    envIntOr("ASSISTANT_MAX_HISTORY", 20),

		CartesiaAPIKey:  envOr("CARTESIA_API_KEY", ""),
		STTLanguage:     envOr("ASSISTANT_STT_LANGUAGE", "en"),
		PhraseTimeout:   envDurationOr("ASSISTANT_PHRASE_TIMEOUT", 8*time.Second),
		PauseThreshold:  envDurationOr("ASSISTANT_PAUSE_THRESHOLD", time.Second),
		EnergyThreshold: envFloat64Or("ASSISTANT_ENERGY_THRESHOLD", 300),

		EnableAudio:     envBoolOr("ASSISTANT_ENABLE_AUDIO", true),
		TTSProvider:     TTSProvider(strings.ToLower(envOr("ASSISTANT_TTS_PROVIDER", string(TTSCartesia)))),
		TTSVoice:        envOr("ASSISTANT_TTS_VOICE", ""),
		SpeechifyAPIKey: envOr("SPEECHIFY_API_KEY", ""),

		YTMaxResults:    envIntOr("ASSISTANT_YT_MAX_RESULTS", music.MaxPosition),
		YTDLPPath:       envOr("ASSISTANT_YTDLP_PATH", "yt-dlp"),
		SearchTimeout:   envDurationOr("ASSISTANT_SEARCH_TIMEOUT", 20*time.Second),
		DownloadTimeout: envDurationOr("ASSISTANT_DOWNLOAD_TIMEOUT", 20*time.Second),
		PlaybackBackend: PlaybackBackend(strings.ToLower(envOr("ASSISTANT_PLAYBACK_BACKEND", string(PlaybackOto)))),
		FFplayPath:      envOr("ASSISTANT_FFPLAY_PATH", "ffplay"),

		MetricsAddr: envOr("ASSISTANT_METRICS_ADDR", ""),
		PhrasesFile: envOr("ASSISTANT_PHRASES_FILE", ""),
	}
	cfg.SystemPrompt = envOr("ASSISTANT_SYSTEM_PROMPT", DefaultSystemPrompt(cfg.AssistantName, cfg.UserName))

	switch cfg.ChatBackend {
	case ChatBackendGemini, ChatBackendGenAI:
	default:
		return Config{}, fmt.Errorf("ASSISTANT_CHAT_BACKEND must be one of gemini|genai")
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY (or GOOGLE_API_KEY) must be set")
	}
	if cfg.ChatTimeout <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_CHAT_TIMEOUT must be > 0")
	}
	if cfg.ChatRetryBase <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_CHAT_RETRY_BASE must be > 0")
	}
	// Three attempts back off by base then 2*base; the cap must not cut
	// the doubling short.
	if cfg.ChatRetryCap < 4*cfg.ChatRetryBase {
		return Config{}, fmt.Errorf("ASSISTANT_CHAT_RETRY_CAP must be >= 4x ASSISTANT_CHAT_RETRY_BASE")
	}
	if cfg.MaxHistory <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_MAX_HISTORY must be > 0")
	}

	if cfg.CartesiaAPIKey == "" {
		return Config{}, fmt.Errorf("CARTESIA_API_KEY must be set")
	}
	if cfg.PhraseTimeout <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_PHRASE_TIMEOUT must be > 0")
	}
	if cfg.PauseThreshold <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_PAUSE_THRESHOLD must be > 0")
	}
	if cfg.EnergyThreshold <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_ENERGY_THRESHOLD must be > 0")
	}

	if err := validateSpeech(cfg); err != nil {
		return Config{}, err
	}

	if cfg.YTMaxResults < 1 || cfg.YTMaxResults > music.MaxPosition {
		return Config{}, fmt.Errorf("ASSISTANT_YT_MAX_RESULTS must be between 1 and %d", music.MaxPosition)
	}
	if cfg.SearchTimeout <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_SEARCH_TIMEOUT must be > 0")
	}
	if cfg.DownloadTimeout <= 0 {
		return Config{}, fmt.Errorf("ASSISTANT_DOWNLOAD_TIMEOUT must be > 0")
	}
	specs := splitCSV(os.Getenv("ASSISTANT_DOWNLOAD_PROVIDERS"))
	if len(specs) == 0 {
		specs = DefaultDownloadProviders
	}
	endpoints, err := audio.ParseEndpoints(specs)
	if err != nil {
		return Config{}, fmt.Errorf("ASSISTANT_DOWNLOAD_PROVIDERS: %w", err)
	}
	cfg.DownloadProviders = endpoints

	phrases, err := LoadPhrases(cfg.PhrasesFile)
	if err != nil {
		return Config{}, fmt.Errorf("ASSISTANT_PHRASES_FILE: %w", err)
	}
	cfg.Phrases = phrases

	return cfg, nil
}

// LoadSpeechFromEnv reads only what speaking needs: the voice, its
// provider key and the playback backend. Audio is always enabled.
func LoadSpeechFromEnv() (Config, error) {
	cfg := Config{
		AssistantName:   envOr("ASSISTANT_NAME", "Kristy"),
		CartesiaAPIKey:  envOr("CARTESIA_API_KEY", ""),
		STTLanguage:     envOr("ASSISTANT_STT_LANGUAGE", "en"),
		EnableAudio:     true,
		TTSProvider:     TTSProvider(strings.ToLower(envOr("ASSISTANT_TTS_PROVIDER", string(TTSCartesia)))),
		TTSVoice:        envOr("ASSISTANT_TTS_VOICE", ""),
		SpeechifyAPIKey: envOr("SPEECHIFY_API_KEY", ""),
		PlaybackBackend: PlaybackBackend(strings.ToLower(envOr("ASSISTANT_PLAYBACK_BACKEND", string(PlaybackOto)))),
		FFplayPath:      envOr("ASSISTANT_FFPLAY_PATH", "ffplay"),
	}
	if err := validateSpeech(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateSpeech(cfg Config) error {
	switch cfg.TTSProvider {
	case TTSCartesia:
		if cfg.CartesiaAPIKey == "" && cfg.EnableAudio {
			return fmt.Errorf("CARTESIA_API_KEY must be set when ASSISTANT_TTS_PROVIDER=cartesia")
		}
	case TTSSpeechify:
		if cfg.SpeechifyAPIKey == "" && cfg.EnableAudio {
			return fmt.Errorf("SPEECHIFY_API_KEY must be set when ASSISTANT_TTS_PROVIDER=speechify")
		}
	default:
		return fmt.Errorf("ASSISTANT_TTS_PROVIDER must be one of cartesia|speechify")
	}
	switch cfg.PlaybackBackend {
	case PlaybackOto, PlaybackFFplay:
	default:
		return fmt.Errorf("ASSISTANT_PLAYBACK_BACKEND must be one of oto|ffplay")
	}
	return nil
}

// DefaultSystemPrompt describes the assistant persona to the completion
// backend.
func DefaultSystemPrompt(name, user string) string {
	prompt := fmt.Sprintf("You are %s, a voice assistant. Respond clearly, helpfully, and professionally. "+
		"Be concise: every reply is read aloud, so avoid markdown, lists, and code blocks.", name)
	if user = strings.TrimSpace(user); user != "" {
		prompt += fmt.Sprintf(" You are assisting %s.", user)
	}
	return prompt
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func envFloat64Or(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return n
}

func envBoolOr(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

func splitCSV(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
