// Package gemini implements the Google Gemini generateContent API as a chat
// backend.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vango-go/vai-assistant/pkg/core/chat"
	"github.com/vango-go/vai-assistant/pkg/core/types"
)

const (
	// DefaultBaseURL is the default Gemini API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gemini-2.0-flash"

	// DefaultMaxTokens is the default max output tokens.
	DefaultMaxTokens = 1024
)

// Provider implements chat.Backend against the Gemini REST API.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// New creates a new Gemini provider.
func New(apiKey string, opts ...Option) *Provider {
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		maxTokens:  DefaultMaxTokens,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return "gemini"
}

// Model returns the configured model name.
func (p *Provider) Model() string {
	return p.model
}

// Generate sends one non-streaming generateContent request.
func (p *Provider) Generate(ctx context.Context, turns []types.Turn) (types.Reply, error) {
	req, err := p.buildRequest(turns)
	if err != nil {
		return types.Reply{}, err
	}

	respBody, err := p.doRequest(ctx, req)
	if err != nil {
		return types.Reply{}, err
	}

	return parseResponse(respBody)
}

func (p *Provider) doRequest(ctx context.Context, req *geminiRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, stripModelPrefix(p.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, p.parseError(resp)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return respBody, nil
}

var _ chat.Backend = (*Provider)(nil)
