package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
	"golang.org/x/net/http2"
	"golang.org/x/text/encoding"
)

// HTTPClientConfig holds transport-level settings
type HTTPClientConfig struct {
	UserAgent          string
	CustomHeaders      map[string]string
	InsecureSkipVerify bool
	EnableHTTP2        bool
	Proxy              string
	FollowRedirects    bool
	MaxRedirects       int
	MaxContentSize     int // bytes, 0 = unlimited

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
	TLSHandshakeTimeout time.Duration
}

// DefaultHTTPClientConfig returns a config suitable for polling a handful of sites
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		FollowRedirects:     true,
		MaxRedirects:        10,
		EnableHTTP2:         true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		DialTimeout:         10 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// HTTPResponse is a fully read response
type HTTPResponse struct {
	StatusCode  int
	FinalURL    string
	ContentType string
	Body        []byte
	Truncated   bool
}

// HTTPClient wraps net/http.Client with the transport settings above
type HTTPClient struct {
	client *http.Client
	config HTTPClientConfig
	logger zerolog.Logger
}

// NewHTTPClient creates a new HTTP client with the given configuration
func NewHTTPClient(config HTTPClientConfig, logger zerolog.Logger) (*HTTPClient, error) {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		DialContext: (&net.Dialer{
			Timeout:   config.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
	}

	if config.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	if config.Proxy != "" {
		proxyURL, err := url.Parse(config.Proxy)
		if err != nil {
			return nil, common.WrapError(err, "failed to parse proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		logger.Info().Str("proxy", config.Proxy).Msg("HTTP client configured with proxy")
	}

	client := &http.Client{Transport: transport}

	if !config.FollowRedirects {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	} else if config.MaxRedirects > 0 {
		maxRedirects := config.MaxRedirects
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		}
	}

	logger.Debug().
		Bool("insecure_skip_verify", config.InsecureSkipVerify).
		Bool("follow_redirects", config.FollowRedirects).
		Int("max_redirects", config.MaxRedirects).
		Bool("http2_enabled", config.EnableHTTP2).
		Msg("HTTP client created")

	return &HTTPClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Get performs a single GET. Non-2xx responses are returned as *common.HTTPError.
func (c *HTTPClient) Get(ctx context.Context, rawURL string, headers map[string]string) (*HTTPResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, common.WrapError(err, "failed to create HTTP request")
	}

	// Global headers first, per-request headers override them.
	for key, value := range c.config.CustomHeaders {
		req.Header.Set(key, value)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("User-Agent") == "" && c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, common.NewNetworkError(rawURL, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, common.NewHTTPErrorWithURL(resp.StatusCode, string(snippet), rawURL)
	}

	body, truncated, err := c.readBody(resp.Body)
	if err != nil {
		return nil, common.NewNetworkError(rawURL, "failed to read response body", err)
	}
	if truncated {
		c.logger.Warn().
			Str("url", rawURL).
			Int("max_content_size", c.config.MaxContentSize).
			Msg("Content size exceeds limit, truncating")
	}

	contentType := resp.Header.Get("Content-Type")
	decoded, encodingName, err := DecodeBody(body, contentType)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", rawURL).Str("encoding", encodingName).Msg("Failed to decode response body, keeping raw bytes")
		decoded = body
	}

	return &HTTPResponse{
		StatusCode:  resp.StatusCode,
		FinalURL:    resp.Request.URL.String(),
		ContentType: contentType,
		Body:        decoded,
		Truncated:   truncated,
	}, nil
}

func (c *HTTPClient) readBody(r io.Reader) ([]byte, bool, error) {
	if c.config.MaxContentSize <= 0 {
		body, err := io.ReadAll(r)
		return body, false, err
	}
	limit := int64(c.config.MaxContentSize)
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > limit {
		return body[:limit], true, nil
	}
	return body, false, nil
}

// DecodeBody converts body to UTF-8 using the charset declared in contentType, a BOM or a
// <meta> tag. Bodies that are already valid UTF-8 and carry no certain declaration are
// returned unchanged.
func DecodeBody(body []byte, contentType string) ([]byte, string, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == encoding.Nop {
		return body, name, nil
	}
	if !certain && utf8.Valid(body) {
		return body, "utf-8", nil
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return nil, name, err
	}
	return decoded, name, nil
}
