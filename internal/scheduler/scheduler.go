package scheduler

import (
	"sync"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

// LastCheckSource reports when a target was last checked.
// ok is false for a target that has never been checked.
type LastCheckSource interface {
	LastCheck(target models.Target) (last time.Time, ok bool, err error)
}

// TargetStatus is the scheduling view of one target at a point in time.
type TargetStatus struct {
	Target    models.Target
	Interval  time.Duration
	Checked   bool
	LastCheck time.Time
	NextDue   time.Time
	Due       bool
	Err       error
}

// TargetScheduler decides which targets are due for a check.
// The target list may be swapped at any time with SetTargets.
type TargetScheduler struct {
	mu              sync.RWMutex
	targets         []models.Target
	defaultInterval time.Duration

	lastChecks LastCheckSource
	logger     zerolog.Logger
}

// New creates a scheduler over targets, in configuration order.
func New(targets []models.Target, defaultInterval time.Duration, lastChecks LastCheckSource, logger zerolog.Logger) *TargetScheduler {
	s := &TargetScheduler{
		defaultInterval: defaultInterval,
		lastChecks:      lastChecks,
		logger:          logger.With().Str("component", "Scheduler").Logger(),
	}
	s.SetTargets(targets)
	return s
}

// SetTargets replaces the target list.
func (s *TargetScheduler) SetTargets(targets []models.Target) {
	cp := make([]models.Target, len(targets))
	copy(cp, targets)

	s.mu.Lock()
	s.targets = cp
	s.mu.Unlock()

	s.logger.Debug().Int("targets", len(cp)).Msg("Target list updated")
}

// SetDefaultInterval changes the interval used by targets without an override.
func (s *TargetScheduler) SetDefaultInterval(d time.Duration) {
	s.mu.Lock()
	s.defaultInterval = d
	s.mu.Unlock()
}

// Targets returns a copy of the current target list.
func (s *TargetScheduler) Targets() []models.Target {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make([]models.Target, len(s.targets))
	copy(cp, s.targets)
	return cp
}

// DueTargets returns the active targets due at now, in configuration order.
func (s *TargetScheduler) DueTargets(now time.Time) []models.Target {
	var due []models.Target
	for _, st := range s.Status(now) {
		if st.Due {
			due = append(due, st.Target)
		}
	}
	return due
}

// Status evaluates every target, inactive ones included, at now.
func (s *TargetScheduler) Status(now time.Time) []TargetStatus {
	s.mu.RLock()
	targets := s.targets
	defaultInterval := s.defaultInterval
	s.mu.RUnlock()

	statuses := make([]TargetStatus, 0, len(targets))
	for _, t := range targets {
		statuses = append(statuses, s.evaluate(t, defaultInterval, now))
	}
	return statuses
}

// NextDue reports when target will next be due. A never checked target is due now.
func (s *TargetScheduler) NextDue(target models.Target, now time.Time) time.Time {
	s.mu.RLock()
	defaultInterval := s.defaultInterval
	s.mu.RUnlock()
	return s.evaluate(target, defaultInterval, now).NextDue
}

func (s *TargetScheduler) evaluate(t models.Target, defaultInterval time.Duration, now time.Time) TargetStatus {
	st := TargetStatus{
		Target:   t,
		Interval: t.EffectiveInterval(defaultInterval),
		NextDue:  now,
	}

	last, ok, err := s.lastChecks.LastCheck(t)
	switch {
	case err != nil:
		// The check itself will surface the store failure.
		s.logger.Warn().Err(err).Str("url", t.URL).Msg("Failed to read last check time, treating target as due")
		st.Err = err
	case ok:
		st.Checked = true
		st.LastCheck = last
		st.NextDue = last.Add(st.Interval)
	}

	st.Due = t.Active && (!st.Checked || !now.Before(st.NextDue))
	return st
}
