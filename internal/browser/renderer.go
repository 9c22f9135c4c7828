package browser

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/aleister1102/pagewatch/internal/httpclient"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// Renderer fetches pages through a headless Chromium so client-side rendered content
// is part of the snapshot. The browser is launched on first use.
type Renderer struct {
	config    config.BrowserConfig
	userAgent string
	retrier   *httpclient.Retrier
	logger    zerolog.Logger

	mutex    sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
}

// NewRenderer creates a renderer. Nothing is launched until the first Fetch.
func NewRenderer(cfg config.BrowserConfig, userAgent string, logger zerolog.Logger) *Renderer {
	return &Renderer{
		config:    cfg,
		userAgent: userAgent,
		retrier:   httpclient.NewRetrier(logger),
		logger:    logger.With().Str("component", "Renderer").Logger(),
	}
}

// Fetch renders in.URL with the same retry and error semantics as the HTTP fetcher.
func (r *Renderer) Fetch(ctx context.Context, in httpclient.FetchInput) (*httpclient.FetchResult, error) {
	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, httpclient.NewFetchError(in.URL, 0, err)
	}

	var result *httpclient.FetchResult
	attempts, err := r.retrier.Do(ctx, in.URL, in.MaxAttempts, in.RetryDelay, func(ctx context.Context, attempt int) error {
		attemptCtx := ctx
		if in.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, in.Timeout)
			defer cancel()
		}

		res, err := r.renderPage(attemptCtx, browser, in)
		if err != nil {
			return err
		}
		res.Attempts = attempt
		result = res
		return nil
	})
	if err != nil {
		fetchErr := httpclient.NewFetchError(in.URL, attempts, err)
		r.logger.Warn().
			Str("url", in.URL).
			Str("kind", string(fetchErr.Kind)).
			Int("attempts", attempts).
			Err(err).
			Msg("Render failed")
		return nil, fetchErr
	}

	r.logger.Debug().Str("url", in.URL).Int("content_size", len(result.Body)).Msg("Rendered page")
	return result, nil
}

func (r *Renderer) renderPage(ctx context.Context, browser *rod.Browser, in httpclient.FetchInput) (*httpclient.FetchResult, error) {
	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	if r.userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.userAgent}); err != nil {
			r.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}
	if len(in.Headers) > 0 {
		cleanup, err := page.SetExtraHeaders(flattenHeaders(in.Headers))
		if err != nil {
			return nil, fmt.Errorf("failed to set headers: %w", err)
		}
		defer cleanup()
	}

	var response proto.NetworkResponseReceived
	waitResponse := page.WaitEvent(&response)

	if err := page.Navigate(in.URL); err != nil {
		return nil, common.NewNetworkError(in.URL, "navigation failed", err)
	}
	waitResponse()

	status := 0
	if response.Response != nil {
		status = response.Response.Status
		if status < 200 || status >= 300 {
			return nil, common.NewHTTPErrorWithURL(status, response.Response.StatusText, in.URL)
		}
	}

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("page load failed for %s: %w", in.URL, err)
	}
	if r.config.WaitAfterLoadMs > 0 {
		timer := time.NewTimer(time.Duration(r.config.WaitAfterLoadMs) * time.Millisecond)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTML for %s: %w", in.URL, err)
	}

	finalURL := in.URL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	return &httpclient.FetchResult{
		URL:         in.URL,
		FinalURL:    finalURL,
		StatusCode:  status,
		ContentType: "text/html",
		Body:        []byte(html),
	}, nil
}

func (r *Renderer) ensureBrowser() (*rod.Browser, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New().Headless(true)
	if r.config.ChromePath != "" {
		l = l.Bin(r.config.ChromePath)
	}
	l = l.
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync")
	if r.config.DisableImages {
		l = l.Set("blink-settings", "imagesEnabled=false")
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	r.browser = browser
	r.launcher = l
	r.logger.Info().Msg("Headless browser started")
	return browser, nil
}

// Close shuts the browser down if it was launched.
func (r *Renderer) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.launcher.Cleanup()
	r.browser = nil
	r.launcher = nil
	r.logger.Info().Msg("Headless browser stopped")
	return err
}

// flattenHeaders turns a header map into rod's key, value, key, value form,
// sorted by key for a stable request.
func flattenHeaders(headers map[string]string) []string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(headers)*2)
	for _, k := range keys {
		out = append(out, k, headers[k])
	}
	return out
}
