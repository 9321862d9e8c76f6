package core

import (
	"errors"
	"fmt"
)

// Error represents a recoverable failure inside a session turn.
type Error struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	Code     string    `json:"code,omitempty"`
	Provider string    `json:"provider,omitempty"`
	Cause    error     `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (code: %s)", e.Type, msg, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// ErrorType categorizes errors.
type ErrorType string

const (
	// Session-level taxonomy. Every one of these is recovered by the engine.
	ErrSearch   ErrorType = "search_error"
	ErrDownload ErrorType = "download_error"
	ErrPlayback ErrorType = "playback_error"
	ErrAPI      ErrorType = "api_error"

	// Backend classification used to decide whether a chat attempt is retried.
	ErrInvalidRequest  ErrorType = "invalid_request_error"
	ErrAuthentication  ErrorType = "authentication_error"
	ErrRateLimit       ErrorType = "rate_limit_error"
	ErrOverloaded      ErrorType = "overloaded_error"
	ErrInvalidResponse ErrorType = "invalid_response_error"
)

// NewSearchError creates a search provider error.
func NewSearchError(provider string, underlying error) *Error {
	return &Error{
		Type:     ErrSearch,
		Message:  messageOf(underlying, "search failed"),
		Provider: provider,
		Cause:    underlying,
	}
}

// NewDownloadError creates an error reporting that every download provider failed.
func NewDownloadError(message string, underlying error) *Error {
	return &Error{
		Type:    ErrDownload,
		Message: message,
		Cause:   underlying,
	}
}

// NewPlaybackError creates a decode or output device error.
func NewPlaybackError(underlying error) *Error {
	return &Error{
		Type:    ErrPlayback,
		Message: messageOf(underlying, "playback failed"),
		Cause:   underlying,
	}
}

// NewAPIError creates a generic completion backend error.
func NewAPIError(message string) *Error {
	return &Error{
		Type:    ErrAPI,
		Message: message,
	}
}

// NewInvalidRequestError creates an invalid request error.
func NewInvalidRequestError(message string) *Error {
	return &Error{
		Type:    ErrInvalidRequest,
		Message: message,
	}
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(message string) *Error {
	return &Error{
		Type:    ErrAuthentication,
		Message: message,
	}
}

// NewRateLimitError creates a rate limit error.
func NewRateLimitError(message string) *Error {
	return &Error{
		Type:    ErrRateLimit,
		Message: message,
	}
}

// NewOverloadedError creates an overloaded error.
func NewOverloadedError(message string) *Error {
	return &Error{
		Type:    ErrOverloaded,
		Message: message,
	}
}

// NewInvalidResponseError reports a backend reply that is missing required fields.
func NewInvalidResponseError(message string) *Error {
	return &Error{
		Type:    ErrInvalidResponse,
		Message: message,
	}
}

// IsRetryable returns true if the error is retryable.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrRateLimit, ErrOverloaded, ErrAPI:
		return true
	default:
		return false
	}
}

// Unwrap returns the underlying error for error wrapping.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsErrorType reports whether err is, or wraps, a *Error of type t.
func IsErrorType(err error, t ErrorType) bool {
	var coreErr *Error
	if !errors.As(err, &coreErr) {
		return false
	}
	return coreErr.Type == t
}

// AsAPIError converts any chat failure into an ErrAPI error, keeping the
// original classification in Code.
func AsAPIError(err error) *Error {
	if err == nil {
		return nil
	}
	var coreErr *Error
	if errors.As(err, &coreErr) {
		if coreErr.Type == ErrAPI {
			return coreErr
		}
		return &Error{
			Type:     ErrAPI,
			Message:  coreErr.Message,
			Code:     string(coreErr.Type),
			Provider: coreErr.Provider,
			Cause:    coreErr,
		}
	}
	return &Error{
		Type:    ErrAPI,
		Message: err.Error(),
		Cause:   err,
	}
}

func messageOf(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return err.Error()
}
