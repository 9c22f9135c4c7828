package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

const snapshotFileName = "snapshot.json"

// FileSnapshotStore keeps one JSON document per target under <dataDir>/<storage key>/.
// Writes replace the document atomically, so readers never observe a partial record.
type FileSnapshotStore struct {
	dataDir string
	logger  zerolog.Logger
}

var _ models.SnapshotStore = (*FileSnapshotStore)(nil)

// NewFileSnapshotStore creates the data directory if needed.
func NewFileSnapshotStore(dataDir string, logger zerolog.Logger) (*FileSnapshotStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, newStoreIOError("mkdir", "", dataDir, err)
	}
	return &FileSnapshotStore{
		dataDir: dataDir,
		logger:  logger.With().Str("component", "SnapshotStore").Logger(),
	}, nil
}

// DataDir returns the root directory of the store.
func (s *FileSnapshotStore) DataDir() string {
	return s.dataDir
}

// RecordPath returns where the record of target lives.
func (s *FileSnapshotStore) RecordPath(target models.Target) string {
	return filepath.Join(s.dataDir, StorageKey(target.URL), snapshotFileName)
}

// Load returns the stored record or models.ErrRecordNotFound if the target was never checked.
func (s *FileSnapshotStore) Load(target models.Target) (*models.SnapshotRecord, error) {
	key := StorageKey(target.URL)
	path := s.RecordPath(target)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ErrRecordNotFound
		}
		return nil, newStoreIOError("read", key, path, err)
	}

	var record models.SnapshotRecord
	if err := json.Unmarshal(data, &record); err != nil {
		ioErr := newStoreIOError("decode", key, path, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err))
		ioErr.Hint = fmt.Sprintf("run `pagewatch reset %s` to rebuild it", resetRef(target))
		return nil, ioErr
	}
	return &record, nil
}

func resetRef(target models.Target) string {
	if target.Name != "" {
		return strconv.Quote(target.Name)
	}
	return target.URL
}

// Save atomically replaces the record of target.
func (s *FileSnapshotStore) Save(target models.Target, record models.SnapshotRecord) error {
	key := StorageKey(target.URL)
	dir := filepath.Join(s.dataDir, key)
	path := filepath.Join(dir, snapshotFileName)

	if record.TargetURL == "" {
		record.TargetURL = target.URL
	}
	if record.TargetName == "" {
		record.TargetName = target.Name
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return newStoreIOError("encode", key, path, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return newStoreIOError("mkdir", key, dir, err)
	}

	if err := writeFileAtomic(dir, path, data); err != nil {
		return newStoreIOError("write", key, path, err)
	}

	s.logger.Debug().
		Str("key", key).
		Str("url", target.URL).
		Int("content_length", len(record.Content)).
		Msg("Snapshot saved")
	return nil
}

// LastCheck reports when target was last checked. ok is false for targets never checked.
func (s *FileSnapshotStore) LastCheck(target models.Target) (time.Time, bool, error) {
	record, err := s.Load(target)
	if err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return record.LastCheck, true, nil
}

// writeFileAtomic writes data to a temp file in dir, syncs it and renames it over path.
func writeFileAtomic(dir, path string, data []byte) (err error) {
	tmp, err := os.CreateTemp(dir, ".snapshot-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
