package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_Get_Headers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "global", r.Header.Get("X-Global"))
		assert.Equal(t, "override", r.Header.Get("X-Shared"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<p>ok</p>"))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).
		WithUserAgent("test-agent").
		WithHeaders(map[string]string{"X-Global": "global", "X-Shared": "global"}).
		Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, map[string]string{"X-Shared": "override"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "<p>ok</p>", string(resp.Body))
	assert.Equal(t, "text/html", resp.ContentType)
	assert.False(t, resp.Truncated)
}

func TestHTTPClient_Get_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
	require.NoError(t, err)

	_, err = client.Get(context.Background(), server.URL, nil)
	require.Error(t, err)

	var httpErr *common.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestHTTPClient_Redirects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/redirect":
			http.Redirect(w, r, "/final", http.StatusFound)
		case "/final":
			fmt.Fprint(w, "ok")
		}
	}))
	defer ts.Close()

	clientFollow, err := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(true).Build()
	require.NoError(t, err)
	resp, err := clientFollow.Get(context.Background(), ts.URL+"/redirect", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.True(t, strings.HasSuffix(resp.FinalURL, "/final"))

	clientNoFollow, err := NewHTTPClientBuilder(zerolog.Nop()).WithFollowRedirects(false).Build()
	require.NoError(t, err)
	_, err = clientNoFollow.Get(context.Background(), ts.URL+"/redirect", nil)
	var httpErr *common.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusFound, httpErr.StatusCode)
}

func TestHTTPClient_Get_MaxSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is some very long content"))
	}))
	defer server.Close()

	client, err := NewHTTPClientBuilder(zerolog.Nop()).WithMaxContentSize(10).Build()
	require.NoError(t, err)

	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "this is so", string(resp.Body))
	assert.True(t, resp.Truncated)
}

func TestHTTPClient_Get_DecodesDeclaredCharset(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "header", contentType: "text/html; charset=iso-8859-1", body: "<p>caf\xe9</p>"},
		{name: "meta", contentType: "text/html", body: "<html><head><meta charset=\"iso-8859-1\"></head><body><p>caf\xe9</p></body></html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewHTTPClientBuilder(zerolog.Nop()).Build()
			require.NoError(t, err)

			resp, err := client.Get(context.Background(), server.URL, nil)
			require.NoError(t, err)
			assert.True(t, utf8.Valid(resp.Body))
			assert.Contains(t, string(resp.Body), "<p>café</p>")
		})
	}
}

func TestDecodeBody(t *testing.T) {
	utf8Body := []byte("<p>" + strings.Repeat("a", 2048) + "café</p>")
	out, name, err := DecodeBody(utf8Body, "text/html")
	require.NoError(t, err)
	assert.Equal(t, utf8Body, out, "undeclared UTF-8 past the sniffing window stays untouched")
	assert.Equal(t, "utf-8", name)

	out, name, err = DecodeBody([]byte("caf\xe9"), "text/plain; charset=windows-1252")
	require.NoError(t, err)
	assert.Equal(t, "café", string(out))
	assert.Equal(t, "windows-1252", name)
}

func TestHTTPClient_InvalidProxy(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.Proxy = "://bad"
	_, err := NewHTTPClient(cfg, zerolog.Nop())
	assert.Error(t, err)
}
