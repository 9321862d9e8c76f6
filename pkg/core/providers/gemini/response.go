package gemini

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core"
	"github.com/vango-go/vai-assistant/pkg/core/types"
)

// geminiResponse is the Gemini API response format.
type geminiResponse struct {
	Candidates     []geminiCandidate `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback,omitempty"`
}

// geminiCandidate represents a single candidate response.
type geminiCandidate struct {
	Content      *geminiContent `json:"content"`
	FinishReason string         `json:"finishReason"`
}

// parseResponse extracts the first candidate's text and any inline audio.
// Missing candidates or content are reported as invalid responses.
func parseResponse(body []byte) (types.Reply, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return types.Reply{}, core.NewInvalidResponseError(fmt.Sprintf("gemini: unmarshal response: %v", err))
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return types.Reply{}, core.NewInvalidResponseError("gemini: prompt blocked: " + resp.PromptFeedback.BlockReason)
		}
		return types.Reply{}, core.NewInvalidResponseError("gemini: no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return types.Reply{}, core.NewInvalidResponseError(fmt.Sprintf("gemini: candidate has no content (finish reason %q)", candidate.FinishReason))
	}

	var (
		reply types.Reply
		text  strings.Builder
	)
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
		if part.InlineData != nil && strings.HasPrefix(part.InlineData.MIMEType, "audio/") && !reply.HasAudio() {
			audio, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return types.Reply{}, core.NewInvalidResponseError(fmt.Sprintf("gemini: decode inline audio: %v", err))
			}
			reply.Audio = audio
			reply.AudioMIMEType = part.InlineData.MIMEType
		}
	}
	reply.Text = strings.TrimSpace(text.String())

	if reply.Text == "" && !reply.HasAudio() {
		return types.Reply{}, core.NewInvalidResponseError("gemini: candidate has no text")
	}
	return reply, nil
}
