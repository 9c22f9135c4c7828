package httpclient

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// FetchInput describes one fetch of a target page.
type FetchInput struct {
	URL         string
	Headers     map[string]string
	Timeout     time.Duration // per attempt, 0 = no deadline
	MaxAttempts int
	RetryDelay  time.Duration
}

// FetchResult is the payload of a successful fetch.
type FetchResult struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Truncated   bool
	Attempts    int
}

// Fetcher retrieves target pages with bounded retry and optional per-host politeness.
type Fetcher struct {
	client  *HTTPClient
	retrier *Retrier
	logger  zerolog.Logger

	perHostRate rate.Limit
	mu          sync.Mutex
	limiters    map[string]*rate.Limiter
}

// NewFetcher creates a fetcher. requestsPerSecondPerHost <= 0 disables host limiting.
func NewFetcher(client *HTTPClient, requestsPerSecondPerHost float64, logger zerolog.Logger) *Fetcher {
	f := &Fetcher{
		client:   client,
		retrier:  NewRetrier(logger),
		logger:   logger.With().Str("component", "Fetcher").Logger(),
		limiters: make(map[string]*rate.Limiter),
	}
	if requestsPerSecondPerHost > 0 {
		f.perHostRate = rate.Limit(requestsPerSecondPerHost)
	}
	return f
}

// Fetch retrieves in.URL. After the last failed attempt it returns a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, in FetchInput) (*FetchResult, error) {
	var result *FetchResult

	attempts, err := f.retrier.Do(ctx, in.URL, in.MaxAttempts, in.RetryDelay, func(ctx context.Context, attempt int) error {
		if err := f.waitForHost(ctx, in.URL); err != nil {
			return err
		}

		attemptCtx := ctx
		if in.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, in.Timeout)
			defer cancel()
		}

		resp, err := f.client.Get(attemptCtx, in.URL, in.Headers)
		if err != nil {
			return err
		}
		result = &FetchResult{
			URL:         in.URL,
			FinalURL:    resp.FinalURL,
			StatusCode:  resp.StatusCode,
			ContentType: resp.ContentType,
			Body:        resp.Body,
			Truncated:   resp.Truncated,
			Attempts:    attempt,
		}
		return nil
	})
	if err != nil {
		fetchErr := NewFetchError(in.URL, attempts, err)
		f.logger.Warn().
			Str("url", in.URL).
			Str("kind", string(fetchErr.Kind)).
			Int("attempts", attempts).
			Err(err).
			Msg("Fetch failed")
		return nil, fetchErr
	}

	f.logger.Debug().
		Str("url", in.URL).
		Int("status_code", result.StatusCode).
		Int("content_size", len(result.Body)).
		Int("attempts", result.Attempts).
		Msg("Fetched page")
	return result, nil
}

func (f *Fetcher) waitForHost(ctx context.Context, rawURL string) error {
	if f.perHostRate <= 0 {
		return nil
	}
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	f.mu.Lock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(f.perHostRate, 1)
		f.limiters[host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}
