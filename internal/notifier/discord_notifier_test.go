package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redirectTransport sends every request to the test server, keeping the path.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = rt.target.Scheme
	req.URL.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestDiscordNotifier(t *testing.T, handler http.HandlerFunc) *DiscordNotifier {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	require.NoError(t, err)

	cfg := config.DiscordConfig{
		WebhookURL:     "https://discord.com/api/webhooks/42/secret-token",
		Username:       "pagewatch",
		MentionRoleIDs: []string{"777"},
	}
	dn, err := NewDiscordNotifier(cfg, NewFormatter(0), &http.Client{Transport: redirectTransport{target: target}}, zerolog.Nop())
	require.NoError(t, err)
	return dn
}

func TestDiscordNotifier_Notify(t *testing.T) {
	var gotPath string
	var payload map[string]any

	dn := newTestDiscordNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, dn.Notify(context.Background(), sampleNotification()))

	assert.Contains(t, gotPath, "/webhooks/42/secret-token")
	assert.Equal(t, "<@&777>", payload["content"])
	assert.Equal(t, "pagewatch", payload["username"])
	embeds, ok := payload["embeds"].([]any)
	require.True(t, ok)
	require.Len(t, embeds, 1)
	embed := embeds[0].(map[string]any)
	assert.Equal(t, "Website changed: Example", embed["title"])
	assert.Contains(t, embed["description"], "+new price")
}

func TestDiscordNotifier_ErrorStatus(t *testing.T) {
	dn := newTestDiscordNotifier(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Unknown Webhook", "code": 10015}`))
	})

	assert.Error(t, dn.Notify(context.Background(), sampleNotification()))
}

func TestParseWebhookURL(t *testing.T) {
	id, token, err := parseWebhookURL("https://discord.com/api/webhooks/123456/tok-en")
	require.NoError(t, err)
	assert.Equal(t, "123456", id)
	assert.Equal(t, "tok-en", token)

	_, _, err = parseWebhookURL("https://discord.com/api/webhooks/123456")
	assert.Error(t, err)
	_, _, err = parseWebhookURL("https://example.com/hook")
	assert.Error(t, err)
}

func TestEmbedBuilder_EnforcesLimits(t *testing.T) {
	long := make([]byte, 5000)
	for i := range long {
		long[i] = 'x'
	}

	b := NewEmbedBuilder().WithTitle(string(long)).WithDescription(string(long)).AddField("", "dropped", false)
	for i := 0; i < 30; i++ {
		b.AddField("f", "v", true)
	}
	embed := b.Build()

	assert.Len(t, embed.Title, maxEmbedTitleLength)
	assert.Len(t, embed.Description, maxEmbedDescriptionLength)
	assert.Len(t, embed.Fields, maxEmbedFields)
}
