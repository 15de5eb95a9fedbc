package contactapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/hrconnect/hr-directory/pkg/errors"
)

// APIError is a non-2xx or malformed response from the contact API
type APIError struct {
	Operation  string
	StatusCode int
	// Message is the server-provided text, if any
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("contact API %s returned %d: %s", e.Operation, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("contact API %s returned %d: %v", e.Operation, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("contact API %s returned %d", e.Operation, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// UserMessage returns the server's message, or the generic text when there is none
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return apperrors.GenericMessage
}

// Retryable reports whether the status suggests a transient failure
func (e *APIError) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

const maxErrorBody = 64 << 10

// newAPIError builds an APIError from a failed response, reading {"message"} or {"error"}
func newAPIError(operation string, resp *http.Response) *APIError {
	apiErr := &APIError{Operation: operation, StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Message = strings.TrimSpace(body.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(body.Error)
		}
	}
	return apiErr
}
