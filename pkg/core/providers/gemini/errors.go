package gemini

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vango-go/vai-assistant/pkg/core"
)

// errNoTurns is returned when a request would carry no contents.
var errNoTurns = core.NewInvalidRequestError("gemini: at least one user or assistant turn is required")

// geminiError represents an error response from Gemini API.
type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// parseError maps an HTTP error response onto a core error type.
func (p *Provider) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var geminiErr geminiError
	if err := json.Unmarshal(body, &geminiErr); err != nil || geminiErr.Error.Message == "" {
		message := strings.TrimSpace(string(body))
		if message == "" {
			message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return &core.Error{
			Type:     typeForStatus(resp.StatusCode, ""),
			Message:  message,
			Provider: p.Name(),
		}
	}

	return &core.Error{
		Type:     typeForStatus(resp.StatusCode, geminiErr.Error.Status),
		Message:  geminiErr.Error.Message,
		Code:     geminiErr.Error.Status,
		Provider: p.Name(),
	}
}

// typeForStatus maps Gemini status strings and HTTP codes to error types.
// HTTP codes win when both are present.
func typeForStatus(httpStatus int, status string) core.ErrorType {
	switch httpStatus {
	case http.StatusTooManyRequests:
		return core.ErrRateLimit
	case http.StatusServiceUnavailable:
		return core.ErrOverloaded
	case http.StatusUnauthorized, http.StatusForbidden:
		return core.ErrAuthentication
	}

	switch status {
	case "INVALID_ARGUMENT", "FAILED_PRECONDITION", "NOT_FOUND":
		return core.ErrInvalidRequest
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return core.ErrAuthentication
	case "RESOURCE_EXHAUSTED":
		return core.ErrRateLimit
	case "UNAVAILABLE":
		return core.ErrOverloaded
	}

	if httpStatus >= 500 {
		return core.ErrAPI
	}
	return core.ErrInvalidRequest
}
