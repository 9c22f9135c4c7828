package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/differ"
	"github.com/aleister1102/pagewatch/internal/extractor"
	"github.com/aleister1102/pagewatch/internal/httpclient"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/notifier"
	"github.com/aleister1102/pagewatch/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves a fixed body per URL; set or fail change it between cycles.
type fakeFetcher struct {
	mu      sync.Mutex
	bodies  map[string]string
	failing map[string]error
	calls   map[string]int
	block   chan struct{}
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies:  map[string]string{},
		failing: map[string]error{},
		calls:   map[string]int{},
	}
}

func (f *fakeFetcher) set(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = body
	delete(f.failing, url)
}

func (f *fakeFetcher) fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[url] = err
}

func (f *fakeFetcher) callCount(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func (f *fakeFetcher) Fetch(ctx context.Context, in httpclient.FetchInput) (*httpclient.FetchResult, error) {
	f.mu.Lock()
	f.calls[in.URL]++
	block := f.block
	err := f.failing[in.URL]
	body := f.bodies[in.URL]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, httpclient.NewFetchError(in.URL, in.MaxAttempts, err)
	}
	return &httpclient.FetchResult{URL: in.URL, FinalURL: in.URL, StatusCode: 200, Body: []byte(body), Attempts: 1}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifier.ChangeNotification
	err  error
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Notify(_ context.Context, cn notifier.ChangeNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, cn)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type memoryRecorder struct {
	mu      sync.Mutex
	entries map[string][]models.CheckResult
}

func (r *memoryRecorder) Record(_ context.Context, cycleID string, result models.CheckResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = map[string][]models.CheckResult{}
	}
	r.entries[cycleID] = append(r.entries[cycleID], result)
	return nil
}

type testEnv struct {
	fetcher  *fakeFetcher
	notifier *recordingNotifier
	store    *datastore.FileSnapshotStore
	checker  *Checker
	service  *MonitoringService
	recorder *memoryRecorder
}

func newTestEnv(t *testing.T, targets ...models.Target) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	store, err := datastore.NewFileSnapshotStore(t.TempDir(), logger)
	require.NoError(t, err)

	env := &testEnv{
		fetcher:  newFakeFetcher(),
		notifier: &recordingNotifier{},
		store:    store,
		recorder: &memoryRecorder{},
	}
	env.checker = NewChecker(
		env.fetcher,
		nil,
		extractor.New(logger),
		differ.NewLineDiffer(),
		store,
		env.notifier,
		FetchSettings{Timeout: time.Second, MaxAttempts: 1},
		logger,
	)
	sched := scheduler.New(targets, time.Hour, store, logger)
	env.service = NewMonitoringService(ServiceConfig{MaxConcurrentChecks: 4, PollInterval: 10 * time.Millisecond}, env.checker, sched, env.recorder, logger)
	return env
}

func page(body string) string {
	return "<html><body><main>" + body + "</main><script>var t = 1;</script></body></html>"
}

var errUnreachable = common.NewNetworkError("https://down.example", "connection refused", nil)
