package err

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ConfigurationError represents errors that are a result of bad flags,
// combinations of flags, configuration settings, environment values, or other
// command usage issues.
type ConfigurationError struct {
	Err error
}

// ExecutionError represents errors that occur after a command has been
// validated and an unsuccessful result occurs. Network errors, panel-side
// errors, invalid credentials or responses are examples.
type ExecutionError struct {
	// friendly error message to display to the user
	Msg string
	// Err is the error that occurred during execution
	Err error
	// Optional attributes that can be used to provide additional context to the error
	Attrs []any
}

func (e *ConfigurationError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Error() string {
	return e.Err.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// APIError is a failure response from the panel API. Detail carries the
// server-provided message used verbatim in user-facing notifications.
type APIError struct {
	StatusCode int
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("panel API returned status %d", e.StatusCode)
}

// UserMessage returns the notification text for a mutation failure: the API
// payload detail when available, otherwise the generic fallback.
func UserMessage(e error, fallback string) string {
	var apiErr *APIError
	if errors.As(e, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	if e != nil && e.Error() != "" {
		return e.Error()
	}
	return fallback
}

// Will try and json unmarshal an error string into a slice of interfaces
// that match the slog algorithm for varadic parameters (alternating key value pairs)
func TryConvertErrorToAttrs(err error) []any {
	var result map[string]any
	umError := json.Unmarshal([]byte(err.Error()), &result)
	if umError != nil {
		return nil
	}
	attrs := make([]any, 0, len(result)*2)
	for k, v := range result {
		attrs = append(attrs, k, v)
	}
	return attrs
}
