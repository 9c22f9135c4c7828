package models

import (
	"errors"
	"time"
)

// ErrRecordNotFound is returned when no snapshot has been stored for a target yet.
var ErrRecordNotFound = errors.New("record not found")

// SnapshotRecord is the persisted state of one target.
// A stored record with an empty Content is "checked with empty content", which is
// distinct from a missing record ("never checked").
type SnapshotRecord struct {
	TargetName string     `json:"target_name"`
	TargetURL  string     `json:"target_url"`
	RawPayload string     `json:"raw_payload"`
	Content    string     `json:"content"`   // Normalized comparison baseline
	LastDiff   *ChangeSet `json:"last_diff"` // nil until a change has been detected
	LastCheck  time.Time  `json:"last_check"`
}

// SnapshotStore persists snapshot records keyed by the target's storage key.
type SnapshotStore interface {
	// Load returns ErrRecordNotFound when the target has never been checked.
	Load(target Target) (*SnapshotRecord, error)
	// Save atomically replaces the record for the target.
	Save(target Target, record SnapshotRecord) error
}
