package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aleister1102/pagewatch/internal/common"
)

// FetchErrorKind classifies why a fetch ultimately failed.
type FetchErrorKind string

const (
	KindNetworkUnreachable FetchErrorKind = "network_unreachable"
	KindHTTPError          FetchErrorKind = "http_error"
	KindTimeout            FetchErrorKind = "timeout"
)

// FetchError is returned once every attempt for a URL has failed.
// Kind and StatusCode describe the last attempt.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s failed after %d attempt(s): %s (status %d): %v", e.URL, e.Attempts, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s failed after %d attempt(s): %s: %v", e.URL, e.Attempts, e.Kind, e.Err)
}

// Unwrap exposes the last attempt's error and common.ErrUnreachable.
func (e *FetchError) Unwrap() []error {
	return []error{e.Err, common.ErrUnreachable}
}

// NewFetchError classifies err into a FetchError.
func NewFetchError(url string, attempts int, err error) *FetchError {
	fe := &FetchError{
		Kind:     ClassifyError(err),
		URL:      url,
		Attempts: attempts,
		Err:      err,
	}
	var httpErr *common.HTTPError
	if errors.As(err, &httpErr) {
		fe.StatusCode = httpErr.StatusCode
	}
	return fe
}

// ClassifyError maps an attempt error to a FetchErrorKind.
func ClassifyError(err error) FetchErrorKind {
	var httpErr *common.HTTPError
	if errors.As(err, &httpErr) {
		return KindHTTPError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	return KindNetworkUnreachable
}
