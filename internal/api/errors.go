// errors.go - Structured error responses for the fleet API
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freight-sim/backend/internal/journal"
)

// Error codes returned in APIError.Code
const (
	CodeInvalidParameter = "INVALID_PARAMETER"
	CodeCargoNotFound    = "CARGO_NOT_FOUND"
	CodeJournalDisabled  = "JOURNAL_DISABLED"
	CodeJournalClosed    = "JOURNAL_CLOSED"
	CodeJournalFailure   = "JOURNAL_ERROR"
	CodeEncodingFailure  = "ENCODING_ERROR"
	CodeHTTP             = "HTTP_ERROR"
	CodeInternal         = "INTERNAL_ERROR"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

func newAPIError(status int, code, message string, cause error) *APIError {
	err := &APIError{Status: status, Code: code, Message: message, cause: cause}
	// server-side causes stay out of responses unless details are enabled
	if cause != nil && (status < http.StatusInternalServerError || ShowErrorDetails) {
		err.Details = cause.Error()
	}
	return err
}

// NewInvalidParameterError rejects a path or query parameter.
func NewInvalidParameterError(param, reason string, cause error) *APIError {
	return newAPIError(http.StatusBadRequest, CodeInvalidParameter,
		fmt.Sprintf("invalid %s: %s", param, reason), cause)
}

// NewCargoNotFoundError reports an airway bill that is neither riding a
// train nor journaled.
func NewCargoNotFoundError(id string) *APIError {
	return newAPIError(http.StatusNotFound, CodeCargoNotFound,
		fmt.Sprintf("cargo not found: %s", id), nil)
}

// NewJournalDisabledError is returned by endpoints that need the journal
// when it was turned off in config.
func NewJournalDisabledError() *APIError {
	return newAPIError(http.StatusServiceUnavailable, CodeJournalDisabled, "cargo journal is disabled", nil)
}

// NewJournalError wraps a failed journal query. A closed journal maps to
// 503 since the server is shutting down.
func NewJournalError(op string, cause error) *APIError {
	if errors.Is(cause, journal.ErrClosed) {
		return newAPIError(http.StatusServiceUnavailable, CodeJournalClosed, "cargo journal is closed", cause)
	}
	return newAPIError(http.StatusInternalServerError, CodeJournalFailure, op+" failed", cause)
}

// NewEncodingError reports a payload that could not be serialised.
func NewEncodingError(format string, cause error) *APIError {
	return newAPIError(http.StatusInternalServerError, CodeEncodingFailure,
		fmt.Sprintf("failed to encode %s payload", format), cause)
}

// ShowErrorDetails includes the underlying error text in responses for
// unexpected errors. Enabled at debug log level.
var ShowErrorDetails = false

// ErrorHandler renders every handler error as an APIError body.
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	// client went away
	if errors.Is(err, context.Canceled) {
		return
	}

	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &httpErr):
		apiErr = newAPIError(httpErr.Code, CodeHTTP, fmt.Sprintf("%v", httpErr.Message), nil)
	default:
		apiErr = newAPIError(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred", nil)
		if ShowErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	c.JSON(apiErr.Status, apiErr)
}
