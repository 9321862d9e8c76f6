// Package genai adapts the official Google Gen AI SDK as a chat backend.
package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/vango-go/vai-assistant/pkg/core"
	"github.com/vango-go/vai-assistant/pkg/core/chat"
	"github.com/vango-go/vai-assistant/pkg/core/types"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// Provider implements chat.Backend using google.golang.org/genai.
type Provider struct {
	client    *genai.Client
	model     string
	maxTokens int32
}

// Config configures the SDK client.
type Config struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// New creates a GenAI-backed provider.
func New(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Provider{
		client:    client,
		model:     stripModelPrefix(model),
		maxTokens: int32(max(cfg.MaxTokens, 0)),
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "genai"
}

// Generate sends the turns through Models.GenerateContent.
func (p *Provider) Generate(ctx context.Context, turns []types.Turn) (types.Reply, error) {
	contents, system := buildContents(turns)
	if len(contents) == 0 {
		return types.Reply{}, core.NewInvalidRequestError("genai: at least one user or assistant turn is required")
	}

	config := &genai.GenerateContentConfig{}
	if system != nil {
		config.SystemInstruction = system
	}
	if p.maxTokens > 0 {
		config.MaxOutputTokens = p.maxTokens
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return types.Reply{}, classifyError(err)
	}
	return replyFromResponse(resp)
}

// buildContents splits system turns into a single instruction and maps the
// remaining turns onto SDK contents.
func buildContents(turns []types.Turn) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   []string
	)
	for _, turn := range turns {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		switch turn.Role {
		case types.RoleSystem:
			system = append(system, text)
		case types.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: text}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  string(genai.RoleUser),
				Parts: []*genai.Part{{Text: text}},
			})
		}
	}

	if len(system) == 0 {
		return contents, nil
	}
	return contents, &genai.Content{
		Parts: []*genai.Part{{Text: strings.Join(system, "\n\n")}},
	}
}

// replyFromResponse reads the first candidate strictly.
func replyFromResponse(resp *genai.GenerateContentResponse) (types.Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return types.Reply{}, core.NewInvalidResponseError("genai: no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate == nil || candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return types.Reply{}, core.NewInvalidResponseError("genai: candidate has no content")
	}

	var (
		reply types.Reply
		text  strings.Builder
	)
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		text.WriteString(part.Text)
		if part.InlineData != nil && strings.HasPrefix(part.InlineData.MIMEType, "audio/") && !reply.HasAudio() {
			reply.Audio = part.InlineData.Data
			reply.AudioMIMEType = part.InlineData.MIMEType
		}
	}
	reply.Text = strings.TrimSpace(text.String())
	if reply.Text == "" && !reply.HasAudio() {
		return types.Reply{}, core.NewInvalidResponseError("genai: candidate has no text")
	}
	return reply, nil
}

// classifyError maps SDK API errors onto core error types. Transport errors
// pass through unchanged so the bridge treats them as transient.
func classifyError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	errType := core.ErrInvalidRequest
	switch {
	case apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED":
		errType = core.ErrRateLimit
	case apiErr.Code == http.StatusServiceUnavailable || apiErr.Status == "UNAVAILABLE":
		errType = core.ErrOverloaded
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden ||
		apiErr.Status == "UNAUTHENTICATED" || apiErr.Status == "PERMISSION_DENIED":
		errType = core.ErrAuthentication
	case apiErr.Code >= 500:
		errType = core.ErrAPI
	}

	return &core.Error{
		Type:     errType,
		Message:  apiErr.Message,
		Code:     apiErr.Status,
		Provider: "genai",
		Cause:    err,
	}
}

func stripModelPrefix(model string) string {
	if idx := strings.Index(model, "/"); idx != -1 {
		return model[idx+1:]
	}
	return model
}

var _ chat.Backend = (*Provider)(nil)
