package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/desertthunder/libcat/internal/shared"
)

// APIError is returned for any non-2xx response. Err is the sentinel from
// [shared] the status maps to, so callers can use [errors.Is].
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%v (status %d)", e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%v: %s (status %d)", e.Err, e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// FieldError is one entry of a server validation response.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for 400 responses that carry per-field errors.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}

func (e *ValidationError) Unwrap() error { return shared.ErrInvalidInput }

// Fields returns the errors keyed by field name.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		out[fe.Field] = fe.Message
	}
	return out
}

type errorBody struct {
	Error   string       `json:"error"`
	Details string       `json:"details"`
	Errors  []FieldError `json:"errors"`
}

// checkResponse maps an error status to a typed error. 2xx responses return nil.
func checkResponse(resp *APIResponse) error {
	if resp.OK() {
		return nil
	}

	var body errorBody
	_ = json.Unmarshal(resp.Body, &body)

	if resp.StatusCode == http.StatusBadRequest && len(body.Errors) > 0 {
		return &ValidationError{Errors: body.Errors}
	}

	apiErr := &APIError{StatusCode: resp.StatusCode, Message: body.Error}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		apiErr.Err = shared.ErrNotAuthenticated
		if apiErr.Message == "" {
			apiErr.Message = "session expired, please login again"
		}
	case resp.StatusCode == http.StatusForbidden:
		apiErr.Err = shared.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Err = shared.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		apiErr.Err = shared.ErrInvalidInput
	case resp.StatusCode == http.StatusConflict:
		apiErr.Err = shared.ErrConflict
	case resp.StatusCode >= 500:
		apiErr.Err = shared.ErrServiceUnavailable
	default:
		apiErr.Err = shared.ErrAPIRequest
	}
	return apiErr
}

// IsUnauthorized reports whether err means the stored session is no longer valid.
func IsUnauthorized(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated)
}
