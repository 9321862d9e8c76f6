package audio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core/types"
)

// DefaultMaxBytes caps a downloaded audio body.
const DefaultMaxBytes = 64 << 20

// HTTPProvider fetches audio from a templated HTTP endpoint.
type HTTPProvider struct {
	endpoint Endpoint
	client   *http.Client
	maxBytes int64
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		if client != nil {
			p.client = client
		}
	}
}

// WithMaxBytes overrides the body size cap.
func WithMaxBytes(n int64) HTTPOption {
	return func(p *HTTPProvider) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// NewHTTPProvider creates a provider for endpoint.
func NewHTTPProvider(endpoint Endpoint, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		endpoint: endpoint,
		client:   http.DefaultClient,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewHTTPProviders builds one provider per endpoint, preserving order.
func NewHTTPProviders(endpoints []Endpoint, opts ...HTTPOption) []Provider {
	out := make([]Provider, 0, len(endpoints))
	for _, e := range endpoints {
		out = append(out, NewHTTPProvider(e, opts...))
	}
	return out
}

// Name returns the endpoint name.
func (p *HTTPProvider) Name() string {
	return p.endpoint.Name
}

// Fetch downloads audio for track. JSON endpoints are followed to the audio
// URL they return.
func (p *HTTPProvider) Fetch(ctx context.Context, track types.Track) ([]byte, error) {
	target, err := p.endpoint.URL(track)
	if err != nil {
		return nil, err
	}

	if p.endpoint.Kind == KindJSON {
		target, err = p.resolve(ctx, target)
		if err != nil {
			return nil, err
		}
	}
	return p.get(ctx, target)
}

type downloadPayload struct {
	DownloadURL      string `json:"download_url"`
	DownloadURLCamel string `json:"downloadUrl"`
	URL              string `json:"url"`
	Link             string `json:"link"`
}

func (d downloadPayload) audioURL() string {
	for _, u := range []string{d.DownloadURL, d.DownloadURLCamel, d.URL, d.Link} {
		if u = strings.TrimSpace(u); u != "" {
			return u
		}
	}
	return ""
}

func (p *HTTPProvider) resolve(ctx context.Context, target string) (string, error) {
	body, err := p.get(ctx, target)
	if err != nil {
		return "", err
	}
	var payload downloadPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", p.Name(), err)
	}
	audioURL := payload.audioURL()
	if audioURL == "" {
		return "", fmt.Errorf("%s: response has no download URL", p.Name())
	}
	return audioURL, nil
}

func (p *HTTPProvider) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", p.Name(), err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", p.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%s: status %d: %s", p.Name(), resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: read body: %w", p.Name(), err)
	}
	if int64(len(body)) > p.maxBytes {
		return nil, fmt.Errorf("%s: body exceeds %d bytes", p.Name(), p.maxBytes)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s: %w", p.Name(), errEmptyBody)
	}
	return body, nil
}

var _ Provider = (*HTTPProvider)(nil)
