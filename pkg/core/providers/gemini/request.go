package gemini

import (
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core/types"
)

// geminiRequest is the Gemini API request format.
// Note: Gemini API uses camelCase for JSON field names.
type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

// geminiContent represents a content object in Gemini format.
type geminiContent struct {
	Role  string       `json:"role,omitempty"` // "user" or "model"
	Parts []geminiPart `json:"parts"`
}

// geminiPart represents a single part within content.
type geminiPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *geminiBlob `json:"inlineData,omitempty"`
}

// geminiBlob represents inline binary data.
type geminiBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

// geminiGenConfig contains generation configuration.
type geminiGenConfig struct {
	MaxOutputTokens *int `json:"maxOutputTokens,omitempty"`
}

// buildRequest folds system turns into systemInstruction and maps the rest
// onto contents, merging consecutive turns of the same role.
func (p *Provider) buildRequest(turns []types.Turn) (*geminiRequest, error) {
	req := &geminiRequest{}

	var system []string
	for _, turn := range turns {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		if turn.Role == types.RoleSystem {
			system = append(system, text)
			continue
		}

		role := mapRole(turn.Role)
		if n := len(req.Contents); n > 0 && req.Contents[n-1].Role == role {
			req.Contents[n-1].Parts = append(req.Contents[n-1].Parts, geminiPart{Text: text})
			continue
		}
		req.Contents = append(req.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: text}},
		})
	}

	if len(req.Contents) == 0 {
		return nil, errNoTurns
	}

	if len(system) > 0 {
		req.SystemInstruction = &geminiContent{
			Parts: []geminiPart{{Text: strings.Join(system, "\n\n")}},
		}
	}

	if p.maxTokens > 0 {
		maxTokens := p.maxTokens
		req.GenerationConfig = &geminiGenConfig{MaxOutputTokens: &maxTokens}
	}

	return req, nil
}

// mapRole converts a turn role to a Gemini content role.
func mapRole(role types.Role) string {
	if role == types.RoleAssistant {
		return "model"
	}
	return "user"
}

// stripModelPrefix removes an optional "provider/" prefix.
func stripModelPrefix(model string) string {
	if idx := strings.Index(model, "/"); idx != -1 {
		return model[idx+1:]
	}
	return model
}
