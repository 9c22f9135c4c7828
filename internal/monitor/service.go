package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/scheduler"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ErrCheckInProgress is the skip reason for a target whose previous check is still running.
var ErrCheckInProgress = errors.New("check already in progress")

// CheckRecorder persists per-target outcomes. The check journal implements it.
type CheckRecorder interface {
	Record(ctx context.Context, cycleID string, result models.CheckResult) error
}

// ServiceConfig holds the loop parameters of the monitoring service.
type ServiceConfig struct {
	MaxConcurrentChecks int
	PollInterval        time.Duration
}

// MonitoringService drives checks of due targets, once or continuously.
type MonitoringService struct {
	checker   *Checker
	scheduler *scheduler.TargetScheduler
	recorder  CheckRecorder
	guard     *URLMutexManager
	logger    zerolog.Logger

	mu         sync.RWMutex
	cfg        ServiceConfig
	lastReport *models.CycleReport
}

// NewMonitoringService creates the service. recorder may be nil.
func NewMonitoringService(cfg ServiceConfig, checker *Checker, sched *scheduler.TargetScheduler, recorder CheckRecorder, logger zerolog.Logger) *MonitoringService {
	return &MonitoringService{
		checker:   checker,
		scheduler: sched,
		recorder:  recorder,
		guard:     NewURLMutexManager(logger),
		cfg:       cfg,
		logger:    logger.With().Str("component", "MonitoringService").Logger(),
	}
}

// Scheduler returns the target scheduler owned by the service.
func (s *MonitoringService) Scheduler() *scheduler.TargetScheduler {
	return s.scheduler
}

// UpdateConfig applies new loop parameters. The poll interval takes effect on the next tick.
func (s *MonitoringService) UpdateConfig(cfg ServiceConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
}

// SetTargets swaps the monitored targets between cycles.
func (s *MonitoringService) SetTargets(targets []models.Target) {
	s.scheduler.SetTargets(targets)

	keys := make([]string, 0, len(targets))
	for _, t := range targets {
		keys = append(keys, datastore.StorageKey(t.URL))
	}
	s.guard.CleanupUnusedMutexes(keys)
}

// LastReport returns the report of the most recent completed cycle.
func (s *MonitoringService) LastReport() (models.CycleReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastReport == nil {
		return models.CycleReport{}, false
	}
	return *s.lastReport, true
}

// RunOnce checks every target that is due now.
func (s *MonitoringService) RunOnce(ctx context.Context) models.CycleReport {
	return s.CheckTargets(ctx, s.scheduler.DueTargets(time.Now()))
}

// CheckTargets checks targets with bounded concurrency. Results keep the order of targets.
// Once ctx is cancelled no further target is started; checks already running finish.
func (s *MonitoringService) CheckTargets(ctx context.Context, targets []models.Target) models.CycleReport {
	report := models.CycleReport{
		CycleID:   uuid.NewString(),
		StartedAt: time.Now(),
	}
	s.logger.Info().Str("cycle_id", report.CycleID).Int("targets", len(targets)).Msg("Starting check cycle")

	s.mu.RLock()
	limit := s.cfg.MaxConcurrentChecks
	s.mu.RUnlock()
	if limit < 1 {
		limit = 1
	}

	results := make([]*models.CheckResult, len(targets))
	g := new(errgroup.Group)
	g.SetLimit(limit)

	for i, target := range targets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			res := s.checkTarget(context.WithoutCancel(ctx), report.CycleID, target, false)
			results[i] = &res
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r != nil {
			report.Results = append(report.Results, *r)
		}
	}
	report.FinishedAt = time.Now()

	s.logReport(report, len(targets))

	s.mu.Lock()
	s.lastReport = &report
	s.mu.Unlock()
	return report
}

// Run checks due targets immediately and then on every poll tick until ctx is cancelled.
func (s *MonitoringService) Run(ctx context.Context) error {
	s.logger.Info().Msg("Monitoring service started")

	for {
		s.RunOnce(ctx)

		s.mu.RLock()
		poll := s.cfg.PollInterval
		s.mu.RUnlock()
		if poll <= 0 {
			poll = time.Minute
		}

		timer := time.NewTimer(poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info().Msg("Monitoring service stopped")
			return nil
		case <-timer.C:
		}
	}
}

// Reset forces a new baseline for target without comparing or notifying.
func (s *MonitoringService) Reset(ctx context.Context, target models.Target) models.CheckResult {
	return s.checkTarget(ctx, "reset-"+uuid.NewString(), target, true)
}

func (s *MonitoringService) checkTarget(ctx context.Context, cycleID string, target models.Target, forceBaseline bool) models.CheckResult {
	unlock, ok := s.guard.TryLock(datastore.StorageKey(target.URL))
	if !ok {
		s.logger.Warn().Str("url", target.URL).Msg("Previous check still running, skipping")
		return models.CheckResult{
			Target:    target,
			Status:    models.StatusSkipped,
			Err:       ErrCheckInProgress,
			CheckedAt: time.Now(),
		}
	}
	defer unlock()

	result := s.checker.Check(ctx, target, forceBaseline)

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, cycleID, result); err != nil {
			s.logger.Error().Err(err).Str("url", target.URL).Msg("Failed to record check in journal")
		}
	}
	return result
}

func (s *MonitoringService) logReport(report models.CycleReport, planned int) {
	for _, r := range report.Results {
		if reason := r.Reason(); reason != "" {
			s.logger.Warn().
				Str("cycle_id", report.CycleID).
				Str("target", r.Target.String()).
				Str("status", string(r.Status)).
				Str("reason", reason).
				Msg("Target needs attention")
		}
	}

	summary := report.Summary()
	event := s.logger.Info()
	if planned > summary.Total {
		event = s.logger.Warn().Int("not_started", planned-summary.Total)
	}
	event.
		Str("cycle_id", report.CycleID).
		Int("total", summary.Total).
		Int("established", summary.Established).
		Int("unchanged", summary.Unchanged).
		Int("changed", summary.Changed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("degraded", summary.Degraded).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("Check cycle completed")
}
