package models

import "time"

// CheckStatus is the terminal state of a single target cycle.
type CheckStatus string

const (
	StatusSkipped     CheckStatus = "skipped"     // Fetch failed or target busy; nothing written
	StatusEstablished CheckStatus = "established" // First check; baseline written
	StatusUnchanged   CheckStatus = "unchanged"
	StatusChanged     CheckStatus = "changed"
	StatusFailed      CheckStatus = "failed" // Snapshot store I/O error
)

// CheckResult describes the outcome of one fetch -> extract -> diff -> store pass.
type CheckResult struct {
	Target       Target
	Status       CheckStatus
	Changes      *ChangeSet
	Err          error    // Cause for skipped/failed results
	NotifyErr    error    // Delivery failure; never prevents the store update
	Degradations []string // Extraction warnings (selector miss, bad pattern, ...)
	CheckedAt    time.Time
	Duration     time.Duration
}

// Reason returns a short human readable explanation of the outcome.
func (r CheckResult) Reason() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.NotifyErr != nil:
		return "notification failed: " + r.NotifyErr.Error()
	case len(r.Degradations) > 0:
		return "degraded: " + r.Degradations[0]
	}
	return ""
}

// CycleSummary holds per-status counts for a pass over the due targets.
type CycleSummary struct {
	Total       int `json:"total"`
	Established int `json:"established"`
	Unchanged   int `json:"unchanged"`
	Changed     int `json:"changed"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	Degraded    int `json:"degraded"`
}

// CycleReport is the result of one pass over all due targets.
type CycleReport struct {
	CycleID    string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []CheckResult // In target configuration order
}

// Summary counts results by status.
func (cr CycleReport) Summary() CycleSummary {
	s := CycleSummary{Total: len(cr.Results)}
	for _, r := range cr.Results {
		switch r.Status {
		case StatusEstablished:
			s.Established++
		case StatusUnchanged:
			s.Unchanged++
		case StatusChanged:
			s.Changed++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
		if len(r.Degradations) > 0 {
			s.Degraded++
		}
	}
	return s
}

// ChangedTargets returns the results whose status is StatusChanged.
func (cr CycleReport) ChangedTargets() []CheckResult {
	var changed []CheckResult
	for _, r := range cr.Results {
		if r.Status == StatusChanged {
			changed = append(changed, r)
		}
	}
	return changed
}
