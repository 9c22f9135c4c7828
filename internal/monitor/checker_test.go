package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/differ"
	"github.com/aleister1102/pagewatch/internal/extractor"
	"github.com/aleister1102/pagewatch/internal/httpclient"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exampleTarget = models.Target{Name: "Example", URL: "https://example.com", Selector: "main", Active: true}

func TestChecker_ThreeCycles(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fetcher.set(exampleTarget.URL, page("<p>Price: 10</p>"))
	first := env.checker.Check(ctx, exampleTarget, false)
	assert.Equal(t, models.StatusEstablished, first.Status)
	assert.Nil(t, first.Changes)
	assert.Equal(t, 0, env.notifier.count(), "a baseline never notifies")

	second := env.checker.Check(ctx, exampleTarget, false)
	assert.Equal(t, models.StatusUnchanged, second.Status)
	assert.Equal(t, 0, env.notifier.count())

	env.fetcher.set(exampleTarget.URL, page("<p>Price: 12</p>"))
	third := env.checker.Check(ctx, exampleTarget, false)
	require.Equal(t, models.StatusChanged, third.Status)
	assert.Equal(t, []string{"-Price: 10", "+Price: 12"}, third.Changes.Lines())
	require.Equal(t, 1, env.notifier.count())
	assert.Equal(t, "Example", env.notifier.sent[0].TargetName)

	record, err := env.store.Load(exampleTarget)
	require.NoError(t, err)
	assert.Equal(t, "Price: 12", record.Content)
	require.NotNil(t, record.LastDiff)
	assert.Equal(t, third.Changes.Lines(), record.LastDiff.Lines())
}

func TestChecker_UnchangedKeepsLastDiff(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fetcher.set(exampleTarget.URL, page("a"))
	env.checker.Check(ctx, exampleTarget, false)
	env.fetcher.set(exampleTarget.URL, page("b"))
	env.checker.Check(ctx, exampleTarget, false)

	res := env.checker.Check(ctx, exampleTarget, false)
	assert.Equal(t, models.StatusUnchanged, res.Status)

	record, err := env.store.Load(exampleTarget)
	require.NoError(t, err)
	require.NotNil(t, record.LastDiff)
	assert.Equal(t, []string{"-a", "+b"}, record.LastDiff.Lines())
}

func TestChecker_NoiseOnlyChangeIsUnchanged(t *testing.T) {
	env := newTestEnv(t)
	target := exampleTarget
	target.IgnorePatterns = []string{`Updated at \d{2}:\d{2}`}

	env.fetcher.set(target.URL, page("Stock: 5 Updated at 10:00"))
	env.checker.Check(context.Background(), target, false)
	env.fetcher.set(target.URL, page("Stock: 5 Updated at 11:30"))

	res := env.checker.Check(context.Background(), target, false)
	assert.Equal(t, models.StatusUnchanged, res.Status)
	assert.Equal(t, 0, env.notifier.count())
}

func TestChecker_FetchFailureSkipsWithoutWriting(t *testing.T) {
	env := newTestEnv(t)
	env.fetcher.fail(exampleTarget.URL, errUnreachable)

	res := env.checker.Check(context.Background(), exampleTarget, false)
	assert.Equal(t, models.StatusSkipped, res.Status)

	var fetchErr *httpclient.FetchError
	require.True(t, errors.As(res.Err, &fetchErr))
	assert.Equal(t, httpclient.KindNetworkUnreachable, fetchErr.Kind)

	_, err := env.store.Load(exampleTarget)
	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestChecker_NotifyFailureStillStores(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.err = errors.New("webhook down")
	ctx := context.Background()

	env.fetcher.set(exampleTarget.URL, page("v1"))
	env.checker.Check(ctx, exampleTarget, false)
	env.fetcher.set(exampleTarget.URL, page("v2"))

	res := env.checker.Check(ctx, exampleTarget, false)
	assert.Equal(t, models.StatusChanged, res.Status)
	assert.Error(t, res.NotifyErr)
	assert.Contains(t, res.Reason(), "notification failed")

	record, err := env.store.Load(exampleTarget)
	require.NoError(t, err)
	assert.Equal(t, "v2", record.Content)

	again := env.checker.Check(ctx, exampleTarget, false)
	assert.Equal(t, models.StatusUnchanged, again.Status, "the failed delivery is not retried")
}

func TestChecker_ForceBaseline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fetcher.set(exampleTarget.URL, page("a"))
	env.checker.Check(ctx, exampleTarget, false)
	env.fetcher.set(exampleTarget.URL, page("b"))
	changed := env.checker.Check(ctx, exampleTarget, false)
	require.Equal(t, models.StatusChanged, changed.Status)
	require.Equal(t, 1, env.notifier.count())

	env.fetcher.set(exampleTarget.URL, page("new"))
	res := env.checker.Check(ctx, exampleTarget, true)
	assert.Equal(t, models.StatusEstablished, res.Status)
	assert.Equal(t, 1, env.notifier.count(), "a forced baseline never notifies")

	record, err := env.store.Load(exampleTarget)
	require.NoError(t, err)
	assert.Equal(t, "new", record.Content)
	require.NotNil(t, record.LastDiff, "resetting the baseline keeps the last change set")
	assert.Equal(t, []string{"-a", "+b"}, record.LastDiff.Lines())
}

func TestChecker_ForceBaselineWithoutRecord(t *testing.T) {
	env := newTestEnv(t)

	env.fetcher.set(exampleTarget.URL, page("first"))
	res := env.checker.Check(context.Background(), exampleTarget, true)
	assert.Equal(t, models.StatusEstablished, res.Status)

	record, err := env.store.Load(exampleTarget)
	require.NoError(t, err)
	assert.Equal(t, "first", record.Content)
	assert.Nil(t, record.LastDiff)
}

func TestChecker_CorruptRecordFailsUntilReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.fetcher.set(exampleTarget.URL, page("v1"))
	env.checker.Check(ctx, exampleTarget, false)
	require.NoError(t, os.WriteFile(env.store.RecordPath(exampleTarget), []byte("garbage"), 0644))

	failed := env.checker.Check(ctx, exampleTarget, false)
	assert.Equal(t, models.StatusFailed, failed.Status)
	require.ErrorIs(t, failed.Err, datastore.ErrCorruptSnapshot)
	assert.Contains(t, failed.Err.Error(), env.store.RecordPath(exampleTarget))
	assert.Contains(t, failed.Err.Error(), "pagewatch reset")

	reset := env.checker.Check(ctx, exampleTarget, true)
	assert.Equal(t, models.StatusEstablished, reset.Status)
	assert.Equal(t, models.StatusUnchanged, env.checker.Check(ctx, exampleTarget, false).Status)
	assert.Equal(t, 0, env.notifier.count())
}

func TestChecker_Latin1PageIsStableAcrossCycles(t *testing.T) {
	body := "<html><head><meta charset=\"iso-8859-1\"></head><body><main><p>caf\xe9</p></main></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	logger := zerolog.Nop()
	client, err := httpclient.NewHTTPClientBuilder(logger).Build()
	require.NoError(t, err)
	store, err := datastore.NewFileSnapshotStore(t.TempDir(), logger)
	require.NoError(t, err)
	notify := &recordingNotifier{}
	checker := NewChecker(
		httpclient.NewFetcher(client, 0, logger),
		nil,
		extractor.New(logger),
		differ.NewLineDiffer(),
		store,
		notify,
		FetchSettings{Timeout: 5 * time.Second, MaxAttempts: 1},
		logger,
	)

	target := models.Target{Name: "Latin1", URL: server.URL, Selector: "main", Active: true}
	ctx := context.Background()
	want := []models.CheckStatus{models.StatusEstablished, models.StatusUnchanged, models.StatusUnchanged}
	for i, status := range want {
		res := checker.Check(ctx, target, false)
		require.NoError(t, res.Err)
		assert.Equal(t, status, res.Status, "cycle %d", i+1)
	}
	assert.Equal(t, 0, notify.count(), "identical content never notifies")

	record, err := store.Load(target)
	require.NoError(t, err)
	assert.Equal(t, "café", record.Content)
}

func TestChecker_SelectorMissIsDegraded(t *testing.T) {
	env := newTestEnv(t)
	target := exampleTarget
	target.Selector = "#missing"
	env.fetcher.set(target.URL, page("whole document"))

	res := env.checker.Check(context.Background(), target, false)
	assert.Equal(t, models.StatusEstablished, res.Status)
	require.NotEmpty(t, res.Degradations)
	assert.Contains(t, res.Degradations[0], "selector_miss")
}

type brokenStore struct{ err error }

func (b brokenStore) Load(models.Target) (*models.SnapshotRecord, error) { return nil, b.err }
func (b brokenStore) Save(models.Target, models.SnapshotRecord) error { return b.err }

func TestChecker_StoreLoadErrorFails(t *testing.T) {
	fetcher := newFakeFetcher()
	fetcher.set(exampleTarget.URL, page("x"))
	storeErr := &datastore.StoreIOError{Op: "load", Key: "k", Err: errors.New("permission denied")}
	notify := &recordingNotifier{}

	checker := NewChecker(fetcher, nil, extractor.New(zerolog.Nop()), differ.NewLineDiffer(), brokenStore{err: storeErr}, notify, FetchSettings{MaxAttempts: 1}, zerolog.Nop())
	res := checker.Check(context.Background(), exampleTarget, false)

	assert.Equal(t, models.StatusFailed, res.Status)
	var ioErr *datastore.StoreIOError
	assert.True(t, errors.As(res.Err, &ioErr))
	assert.Equal(t, 0, notify.count())
}

type headerCapturingFetcher struct {
	got httpclient.FetchInput
}

func (h *headerCapturingFetcher) Fetch(_ context.Context, in httpclient.FetchInput) (*httpclient.FetchResult, error) {
	h.got = in
	return &httpclient.FetchResult{Body: []byte("ok")}, nil
}

func TestChecker_RenderTargetsUseRenderer(t *testing.T) {
	store, err := datastore.NewFileSnapshotStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	plain := &headerCapturingFetcher{}
	rendered := &headerCapturingFetcher{}

	checker := NewChecker(plain, rendered, extractor.New(zerolog.Nop()), differ.NewLineDiffer(), store, &recordingNotifier{},
		FetchSettings{MaxAttempts: 2, Headers: map[string]string{"X-Global": "g", "X-Both": "global"}}, zerolog.Nop())

	target := exampleTarget
	target.Render = true
	target.Headers = map[string]string{"X-Both": "target"}
	checker.Check(context.Background(), target, false)

	assert.Empty(t, plain.got.URL)
	assert.Equal(t, target.URL, rendered.got.URL)
	assert.Equal(t, 2, rendered.got.MaxAttempts)
	assert.Equal(t, map[string]string{"X-Global": "g", "X-Both": "target"}, rendered.got.Headers)
}
