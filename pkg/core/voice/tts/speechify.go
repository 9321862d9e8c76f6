package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const speechifyBaseURL = "https://api.sws.speechify.com"

const defaultSpeechifyVoice = "kristy"

// SpeechifyProvider synthesizes speech with Speechify's streaming endpoint.
type SpeechifyProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSpeechify creates a new Speechify TTS provider.
func NewSpeechify(apiKey string, opts ...Option) *SpeechifyProvider {
	o := buildOptions(speechifyBaseURL, opts)
	return &SpeechifyProvider{
		apiKey:     apiKey,
		baseURL:    o.baseURL,
		httpClient: o.httpClient,
	}
}

// Name returns the provider identifier.
func (s *SpeechifyProvider) Name() string {
	return "speechify"
}

type speechifyRequest struct {
	Input    string `json:"input"`
	VoiceID  string `json:"voice_id"`
	Language string `json:"language,omitempty"`
}

// Synthesize converts text to mp3 audio.
func (s *SpeechifyProvider) Synthesize(ctx context.Context, text string, opts SynthesizeOptions) (*Synthesis, error) {
	voice := opts.Voice
	if voice == "" {
		voice = defaultSpeechifyVoice
	}

	body, err := json.Marshal(speechifyRequest{
		Input:    text,
		VoiceID:  voice,
		Language: opts.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/audio/stream", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speechify request: %w", err)
	}
	defer resp.Body.Close()

	audio, err := readAudio("speechify", resp)
	if err != nil {
		return nil, err
	}
	return &Synthesis{Audio: audio, Format: "mp3"}, nil
}

var _ Synthesizer = (*SpeechifyProvider)(nil)
