package common

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is matched by every *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfiguration is matched by every *ConfigurationError.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrUnreachable is matched by *NetworkError and *HTTPError: the page could not be
	// retrieved, which a check treats as "skip this cycle".
	ErrUnreachable = errors.New("page unreachable")
)

// WrapError adds context to err. A nil error stays nil.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf is WrapError with a formatted message.
func WrapErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return WrapError(err, fmt.Sprintf(format, args...))
}

// ValidationError reports a bad value supplied by the user, outside of the config file.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, fmt.Sprint(e.Value), e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a validation error
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigurationError reports an unusable configuration file or section.
type ConfigurationError struct {
	Section string
	Field   string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	path := strings.Trim(e.Section+"."+e.Field, ".")
	if path == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config %s: %s", path, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// NewConfigurationError creates a configuration error. section and field may be empty.
func NewConfigurationError(section, field, reason string) *ConfigurationError {
	return &ConfigurationError{Section: section, Field: field, Reason: reason}
}

// NetworkError is a transport failure while retrieving URL: DNS, connect, TLS, reset,
// or a browser navigation that never produced a response.
type NetworkError struct {
	URL     string
	Reason  string
	Wrapped error
}

func (e *NetworkError) Error() string {
	if e.Wrapped == nil {
		return fmt.Sprintf("%s: %s", e.URL, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.URL, e.Reason, e.Wrapped)
}

// Unwrap exposes both the cause and ErrUnreachable to errors.Is / errors.As.
func (e *NetworkError) Unwrap() []error {
	if e.Wrapped == nil {
		return []error{ErrUnreachable}
	}
	return []error{e.Wrapped, ErrUnreachable}
}

// NewNetworkError creates a network error
func NewNetworkError(url, reason string, wrapped error) *NetworkError {
	return &NetworkError{URL: url, Reason: reason, Wrapped: wrapped}
}

// HTTPError is a response whose status is outside 2xx.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d: %s", e.URL, e.StatusCode, e.Message)
}

func (e *HTTPError) Unwrap() error { return ErrUnreachable }

// NewHTTPErrorWithURL creates an HTTP status error for url.
func NewHTTPErrorWithURL(statusCode int, message, url string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message, URL: url}
}
