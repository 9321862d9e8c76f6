package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-go/vai-assistant/pkg/core/audio"
)

var assistantEnvKeys = []string{
	"ASSISTANT_NAME",
	"ASSISTANT_USER_NAME",
	"ASSISTANT_SYSTEM_PROMPT",
	"ASSISTANT_CHAT_BACKEND",
	"GEMINI_API_KEY",
	"GOOGLE_API_KEY",
	"ASSISTANT_MODEL",
	"ASSISTANT_GEMINI_BASE_URL",
	"ASSISTANT_CHAT_TIMEOUT",
	"ASSISTANT_CHAT_RETRY_BASE",
	"ASSISTANT_CHAT_RETRY_CAP",
	"ASSISTANT_MAX_HISTORY",
	"CARTESIA_API_KEY",
	"ASSISTANT_STT_LANGUAGE",
	"ASSISTANT_PHRASE_TIMEOUT",
	"ASSISTANT_PAUSE_THRESHOLD",
	"ASSISTANT_ENERGY_THRESHOLD",
	"ASSISTANT_ENABLE_AUDIO",
	"ASSISTANT_TTS_PROVIDER",
	"ASSISTANT_TTS_VOICE",
	"SPEECHIFY_API_KEY",
	"ASSISTANT_YT_MAX_RESULTS",
	"ASSISTANT_YTDLP_PATH",
	"ASSISTANT_SEARCH_TIMEOUT",
	"ASSISTANT_DOWNLOAD_PROVIDERS",
	"ASSISTANT_DOWNLOAD_TIMEOUT",
	"ASSISTANT_PLAYBACK_BACKEND",
	"ASSISTANT_FFPLAY_PATH",
	"ASSISTANT_METRICS_ADDR",
	"ASSISTANT_PHRASES_FILE",
}

func clearAssistantEnv(t *testing.T) {
	t.Helper()
	for _, key := range assistantEnvKeys {
		t.Setenv(key, "")
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	clearAssistantEnv(t)
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("CARTESIA_API_KEY", "ct-test")
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.AssistantName != "Kristy" {
		t.Fatalf("AssistantName = %q, want Kristy", cfg.AssistantName)
	}
	if cfg.ChatBackend != ChatBackendGemini {
		t.Fatalf("ChatBackend = %q", cfg.ChatBackend)
	}
	if cfg.Model != "gemini-2.0-flash" {
		t.Fatalf("Model = %q", cfg.Model)
	}
	if cfg.ChatTimeout != 30*time.Second {
		t.Fatalf("ChatTimeout = %v, want 30s", cfg.ChatTimeout)
	}
	if cfg.ChatRetryBase != 500*time.Millisecond || cfg.ChatRetryCap != 4*time.Second {
		t.Fatalf("retry = %v/%v, want 500ms/4s", cfg.ChatRetryBase, cfg.ChatRetryCap)
	}
	if cfg.MaxHistory != 20 {
		t.Fatalf("MaxHistory = %d, want 20", cfg.MaxHistory)
	}
	if cfg.PhraseTimeout != 8*time.Second {
		t.Fatalf("PhraseTimeout = %v, want 8s", cfg.PhraseTimeout)
	}
	if cfg.PauseThreshold != time.Second {
		t.Fatalf("PauseThreshold = %v, want 1s", cfg.PauseThreshold)
	}
	if cfg.EnergyThreshold != 300 {
		t.Fatalf("EnergyThreshold = %v, want 300", cfg.EnergyThreshold)
	}
	if !cfg.EnableAudio {
		t.Fatal("EnableAudio = false, want true")
	}
	if cfg.TTSProvider != TTSCartesia {
		t.Fatalf("TTSProvider = %q", cfg.TTSProvider)
	}
	if cfg.YTMaxResults != 5 {
		t.Fatalf("YTMaxResults = %d, want 5", cfg.YTMaxResults)
	}
	if cfg.PlaybackBackend != PlaybackOto {
		t.Fatalf("PlaybackBackend = %q", cfg.PlaybackBackend)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("MetricsAddr = %q, want disabled", cfg.MetricsAddr)
	}

	if len(cfg.DownloadProviders) != 3 {
		t.Fatalf("DownloadProviders = %+v, want 3 defaults", cfg.DownloadProviders)
	}
	wantKinds := []audio.Kind{audio.KindJSON, audio.KindJSON, audio.KindRaw}
	for i, e := range cfg.DownloadProviders {
		if e.Kind != wantKinds[i] {
			t.Fatalf("provider %d kind = %q, want %q", i, e.Kind, wantKinds[i])
		}
	}
	if cfg.DownloadProviders[0].Name != "kaiz-apis.gleeze.com/api/ytdown-mp3" {
		t.Fatalf("first provider = %q", cfg.DownloadProviders[0].Name)
	}

	if !strings.Contains(cfg.SystemPrompt, "You are Kristy") {
		t.Fatalf("SystemPrompt = %q", cfg.SystemPrompt)
	}
	if len(cfg.Phrases.Triggers) == 0 || cfg.Phrases.Messages.Farewell == "" {
		t.Fatal("expected default phrases")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	t.Setenv("ASSISTANT_NAME", "Nova")
	t.Setenv("ASSISTANT_USER_NAME", "Satz")
	t.Setenv("ASSISTANT_CHAT_BACKEND", "GenAI")
	t.Setenv("ASSISTANT_MAX_HISTORY", "6")
	t.Setenv("ASSISTANT_ENABLE_AUDIO", "off")
	t.Setenv("ASSISTANT_TTS_PROVIDER", "speechify")
	t.Setenv("ASSISTANT_YT_MAX_RESULTS", "3")
	t.Setenv("ASSISTANT_DOWNLOAD_PROVIDERS", "raw:https://dl.example.com/a?u={url}, json:https://api.example.com/v/{id}")
	t.Setenv("ASSISTANT_PLAYBACK_BACKEND", "ffplay")
	t.Setenv("ASSISTANT_CHAT_RETRY_BASE", "250ms")
	t.Setenv("ASSISTANT_CHAT_RETRY_CAP", "1s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.GeminiAPIKey != "google-key" {
		t.Fatalf("GeminiAPIKey = %q, want GOOGLE_API_KEY fallback", cfg.GeminiAPIKey)
	}
	if cfg.ChatBackend != ChatBackendGenAI {
		t.Fatalf("ChatBackend = %q", cfg.ChatBackend)
	}
	if cfg.MaxHistory != 6 || cfg.YTMaxResults != 3 {
		t.Fatalf("MaxHistory/YTMaxResults = %d/%d", cfg.MaxHistory, cfg.YTMaxResults)
	}
	if cfg.EnableAudio {
		t.Fatal("EnableAudio = true, want false")
	}
	if cfg.PlaybackBackend != PlaybackFFplay {
		t.Fatalf("PlaybackBackend = %q", cfg.PlaybackBackend)
	}
	if len(cfg.DownloadProviders) != 2 || cfg.DownloadProviders[1].Name != "api.example.com/v/{id}" {
		t.Fatalf("DownloadProviders = %+v", cfg.DownloadProviders)
	}
	if !strings.Contains(cfg.SystemPrompt, "You are Nova") || !strings.Contains(cfg.SystemPrompt, "assisting Satz") {
		t.Fatalf("SystemPrompt = %q", cfg.SystemPrompt)
	}
}

func TestLoadFromEnv_ExplicitSystemPrompt(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ASSISTANT_SYSTEM_PROMPT", "Answer in Indonesian.")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.SystemPrompt != "Answer in Indonesian." {
		t.Fatalf("SystemPrompt = %q", cfg.SystemPrompt)
	}
}

func TestLoadFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"missing gemini key", map[string]string{"GEMINI_API_KEY": ""}, "GEMINI_API_KEY"},
		{"missing cartesia key", map[string]string{"CARTESIA_API_KEY": ""}, "CARTESIA_API_KEY"},
		{"unknown backend", map[string]string{"ASSISTANT_CHAT_BACKEND": "openai"}, "ASSISTANT_CHAT_BACKEND"},
		{"zero results", map[string]string{"ASSISTANT_YT_MAX_RESULTS": "0"}, "ASSISTANT_YT_MAX_RESULTS"},
		{"too many results", map[string]string{"ASSISTANT_YT_MAX_RESULTS": "6"}, "ASSISTANT_YT_MAX_RESULTS"},
		{"short retry cap", map[string]string{"ASSISTANT_CHAT_RETRY_BASE": "1s", "ASSISTANT_CHAT_RETRY_CAP": "2s"}, "ASSISTANT_CHAT_RETRY_CAP"},
		{"zero history", map[string]string{"ASSISTANT_MAX_HISTORY": "0"}, "ASSISTANT_MAX_HISTORY"},
		{"speechify without key", map[string]string{"ASSISTANT_TTS_PROVIDER": "speechify"}, "SPEECHIFY_API_KEY"},
		{"unknown tts", map[string]string{"ASSISTANT_TTS_PROVIDER": "polly"}, "ASSISTANT_TTS_PROVIDER"},
		{"unknown playback", map[string]string{"ASSISTANT_PLAYBACK_BACKEND": "vlc"}, "ASSISTANT_PLAYBACK_BACKEND"},
		{"bad provider", map[string]string{"ASSISTANT_DOWNLOAD_PROVIDERS": "ftp:ftp://x/{url}"}, "ASSISTANT_DOWNLOAD_PROVIDERS"},
		{"missing phrases file", map[string]string{"ASSISTANT_PHRASES_FILE": "/nonexistent/phrases.yaml"}, "ASSISTANT_PHRASES_FILE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFromEnv()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %q, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSpeechFromEnv(t *testing.T) {
	clearAssistantEnv(t)
	t.Setenv("ASSISTANT_TTS_PROVIDER", "speechify")
	t.Setenv("SPEECHIFY_API_KEY", "sp-test")
	t.Setenv("ASSISTANT_PLAYBACK_BACKEND", "ffplay")

	cfg, err := LoadSpeechFromEnv()
	if err != nil {
		t.Fatalf("LoadSpeechFromEnv() error = %v", err)
	}
	if cfg.TTSProvider != TTSSpeechify || cfg.SpeechifyAPIKey != "sp-test" {
		t.Fatalf("tts = %q key %q", cfg.TTSProvider, cfg.SpeechifyAPIKey)
	}
	if !cfg.EnableAudio {
		t.Fatal("EnableAudio should be forced on")
	}
	if cfg.PlaybackBackend != PlaybackFFplay || cfg.FFplayPath != "ffplay" {
		t.Fatalf("playback = %q path %q", cfg.PlaybackBackend, cfg.FFplayPath)
	}
}

func TestLoadSpeechFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"cartesia without key", map[string]string{}, "CARTESIA_API_KEY"},
		{"speechify without key", map[string]string{"ASSISTANT_TTS_PROVIDER": "speechify"}, "SPEECHIFY_API_KEY"},
		{"unknown playback", map[string]string{"CARTESIA_API_KEY": "ct-test", "ASSISTANT_PLAYBACK_BACKEND": "vlc"}, "ASSISTANT_PLAYBACK_BACKEND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAssistantEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadSpeechFromEnv()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadPhrases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "phrases.yaml")
	body := `
exit: ["stop assistant"]
triggers: ["mainkan", "play"]
selection:
  ordinals:
    keenam: 6
    kesatu: 1
messages:
  farewell: "Dadah!"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPhrases(path)
	if err != nil {
		t.Fatalf("LoadPhrases() error = %v", err)
	}
	if len(p.Exit) != 1 || p.Exit[0] != "stop assistant" {
		t.Fatalf("Exit = %v, want replaced list", p.Exit)
	}
	if len(p.Triggers) != 2 || p.Triggers[0] != "mainkan" {
		t.Fatalf("Triggers = %v", p.Triggers)
	}
	if p.Messages.Farewell != "Dadah!" {
		t.Fatalf("Farewell = %q", p.Messages.Farewell)
	}
	if p.Messages.AskTitle == "" {
		t.Fatal("omitted messages should keep defaults")
	}
	if len(p.Cancel) == 0 {
		t.Fatal("omitted lists should keep defaults")
	}
	if p.Selection.Ordinals["first"] != 1 || p.Selection.Ordinals["kesatu"] != 1 {
		t.Fatalf("Ordinals = %v, want merged map", p.Selection.Ordinals)
	}

	resolver := p.Selection.Resolver()
	if idx, ok := resolver.Resolve("yang kesatu"); !ok || idx != 0 {
		t.Fatalf("Resolve(kesatu) = %d, %v", idx, ok)
	}
	if _, ok := resolver.Resolve("yang keenam"); ok {
		t.Fatal("positions past five must not resolve")
	}
}

func TestLoadPhrases_Errors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("greetings: [hi]\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPhrases(unknown); err == nil {
		t.Fatal("expected error for unknown field")
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("triggers: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPhrases(empty); err == nil {
		t.Fatal("expected error for empty trigger list")
	}

	if p, err := LoadPhrases(""); err != nil || len(p.Exit) == 0 {
		t.Fatalf("LoadPhrases(\"\") = %v, %v", p.Exit, err)
	}
}
