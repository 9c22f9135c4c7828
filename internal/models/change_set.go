package models

import (
	"strings"
	"time"
)

// ChangeOp defines the type of a line-level change.
type ChangeOp string

const (
	// ChangeAdded marks a line present only in the current snapshot.
	ChangeAdded ChangeOp = "added"
	// ChangeRemoved marks a line present only in the previous snapshot.
	ChangeRemoved ChangeOp = "removed"
)

// Marker returns the single character prefix used when rendering the change.
func (op ChangeOp) Marker() string {
	if op == ChangeAdded {
		return "+"
	}
	return "-"
}

// LineChange is a single addition or removal.
type LineChange struct {
	Op   ChangeOp `json:"op"`
	Line string   `json:"line"`
}

// ChangeSet is the ordered, line-level result of comparing two normalized snapshots.
// An empty change set means "no meaningful change".
type ChangeSet struct {
	Changes    []LineChange `json:"changes"`
	DetectedAt time.Time    `json:"detected_at"`
}

// IsMeaningful reports whether the change set contains at least one marker.
func (cs *ChangeSet) IsMeaningful() bool {
	return cs != nil && len(cs.Changes) > 0
}

// Added returns the number of added lines.
func (cs *ChangeSet) Added() int {
	return cs.count(ChangeAdded)
}

// Removed returns the number of removed lines.
func (cs *ChangeSet) Removed() int {
	return cs.count(ChangeRemoved)
}

func (cs *ChangeSet) count(op ChangeOp) int {
	if cs == nil {
		return 0
	}
	n := 0
	for _, c := range cs.Changes {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Lines renders every change as "+line" or "-line".
func (cs *ChangeSet) Lines() []string {
	if cs == nil {
		return nil
	}
	lines := make([]string, 0, len(cs.Changes))
	for _, c := range cs.Changes {
		lines = append(lines, c.Op.Marker()+c.Line)
	}
	return lines
}

// String renders the change set one marker per line.
func (cs *ChangeSet) String() string {
	return strings.Join(cs.Lines(), "\n")
}
