package datastore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileSnapshotStore {
	t.Helper()
	store, err := NewFileSnapshotStore(filepath.Join(t.TempDir(), "data"), zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestFileSnapshotStore_LoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(models.Target{URL: "https://never.example"})

	assert.ErrorIs(t, err, models.ErrRecordNotFound)
}

func TestFileSnapshotStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	target := models.Target{Name: "Docs", URL: "https://docs.example"}
	checked := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	record := models.SnapshotRecord{
		RawPayload: "<p>line one</p>\n<p>line two</p>\r\n\ttabbed",
		Content:    "line one\nline two",
		LastDiff: &models.ChangeSet{
			Changes:    []models.LineChange{{Op: models.ChangeAdded, Line: "line two"}},
			DetectedAt: checked,
		},
		LastCheck: checked,
	}

	require.NoError(t, store.Save(target, record))
	got, err := store.Load(target)
	require.NoError(t, err)

	assert.Equal(t, record.RawPayload, got.RawPayload)
	assert.Equal(t, record.Content, got.Content)
	assert.True(t, record.LastCheck.Equal(got.LastCheck))
	require.NotNil(t, got.LastDiff)
	assert.Equal(t, record.LastDiff.Changes, got.LastDiff.Changes)
	assert.Equal(t, "Docs", got.TargetName)
	assert.Equal(t, "https://docs.example", got.TargetURL)
}

func TestFileSnapshotStore_EmptyContentIsNotMissing(t *testing.T) {
	store := newTestStore(t)
	target := models.Target{URL: "https://empty.example"}

	require.NoError(t, store.Save(target, models.SnapshotRecord{Content: "", LastCheck: time.Now()}))

	got, err := store.Load(target)
	require.NoError(t, err)
	assert.Equal(t, "", got.Content)
	assert.Nil(t, got.LastDiff)
}

func TestFileSnapshotStore_KeyIndependentOfName(t *testing.T) {
	store := newTestStore(t)
	before := models.Target{Name: "Old name", URL: "https://same.example"}
	after := models.Target{Name: "New name", URL: "https://same.example"}

	require.NoError(t, store.Save(before, models.SnapshotRecord{Content: "x"}))

	got, err := store.Load(after)
	require.NoError(t, err)
	assert.Equal(t, "x", got.Content)
	assert.Equal(t, store.RecordPath(before), store.RecordPath(after))
}

func TestFileSnapshotStore_LastCheck(t *testing.T) {
	store := newTestStore(t)
	target := models.Target{URL: "https://t.example"}

	_, ok, err := store.LastCheck(target)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.Save(target, models.SnapshotRecord{LastCheck: at}))

	got, ok, err := store.LastCheck(target)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got))
}

func TestFileSnapshotStore_SaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	target := models.Target{URL: "https://clean.example"}

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(target, models.SnapshotRecord{Content: strings.Repeat("x", i)}))
	}

	entries, err := os.ReadDir(filepath.Dir(store.RecordPath(target)))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshot.json", entries[0].Name())
}

func TestFileSnapshotStore_ConcurrentLoadSeesWholeRecords(t *testing.T) {
	store := newTestStore(t)
	target := models.Target{URL: "https://atomic.example"}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// Every saved record pairs its content with a timestamp derived from the same index.
	recordFor := func(i int) models.SnapshotRecord {
		return models.SnapshotRecord{
			Content:   fmt.Sprintf("%03d:%s", i, strings.Repeat(string(rune('a'+i%26)), 64*1024)),
			LastCheck: base.Add(time.Duration(i) * time.Minute),
		}
	}
	require.NoError(t, store.Save(target, recordFor(0)))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 50; i++ {
			assert.NoError(t, store.Save(target, recordFor(i)))
		}
		close(stop)
	}()

	for {
		select {
		case <-stop:
			wg.Wait()
			return
		default:
		}
		got, err := store.Load(target)
		require.NoError(t, err)

		var i int
		_, err = fmt.Sscanf(got.Content, "%3d:", &i)
		require.NoError(t, err, "observed a partial record")
		want := recordFor(i)
		assert.Equal(t, want.Content, got.Content, "observed a partial record")
		assert.True(t, want.LastCheck.Equal(got.LastCheck), "content of save %d came with timestamp %s", i, got.LastCheck)
	}
}

func TestFileSnapshotStore_CorruptRecordNamesPathAndReset(t *testing.T) {
	store := newTestStore(t)
	target := models.Target{Name: "Docs", URL: "https://corrupt.example"}
	require.NoError(t, store.Save(target, models.SnapshotRecord{Content: "ok"}))
	require.NoError(t, os.WriteFile(store.RecordPath(target), []byte("{not json"), 0644))

	_, err := store.Load(target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorruptSnapshot)
	assert.Contains(t, err.Error(), store.RecordPath(target))
	assert.Contains(t, err.Error(), "pagewatch reset \"Docs\"")

	assert.False(t, errors.Is(err, models.ErrRecordNotFound))

	var ioErr *StoreIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "decode", ioErr.Op)

	// Saving a fresh record recovers the target.
	require.NoError(t, store.Save(target, models.SnapshotRecord{Content: "rebuilt"}))
	got, err := store.Load(target)
	require.NoError(t, err)
	assert.Equal(t, "rebuilt", got.Content)
}

func TestFileSnapshotStore_WriteFailure(t *testing.T) {
	store := newTestStore(t)
	target := models.Target{URL: "https://blocked.example"}
	// A regular file where the key directory should be makes every write fail.
	require.NoError(t, os.WriteFile(filepath.Join(store.DataDir(), StorageKey(target.URL)), []byte("x"), 0644))

	err := store.Save(target, models.SnapshotRecord{Content: "c"})

	var ioErr *StoreIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, StorageKey(target.URL), ioErr.Key)
}
