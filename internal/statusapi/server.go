package statusapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aleister1102/pagewatch/internal/datastore"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/aleister1102/pagewatch/internal/scheduler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// TargetStatusSource reports the scheduling state of every target.
type TargetStatusSource interface {
	Status(now time.Time) []scheduler.TargetStatus
}

// HistorySource reads journal rows.
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]datastore.JournalEntry, error)
	RecentForTarget(ctx context.Context, url string, limit int) ([]datastore.JournalEntry, error)
}

// ReportSource returns the last completed cycle.
type ReportSource interface {
	LastReport() (models.CycleReport, bool)
}

// Server exposes a read-only JSON view of the daemon.
type Server struct {
	addr    string
	targets TargetStatusSource
	history HistorySource
	reports ReportSource
	router  *chi.Mux
	logger  zerolog.Logger
}

// NewServer creates the status server. history may be nil when no journal is configured.
func NewServer(addr string, targets TargetStatusSource, history HistorySource, reports ReportSource, logger zerolog.Logger) *Server {
	s := &Server{
		addr:    addr,
		targets: targets,
		history: history,
		reports: reports,
		logger:  logger.With().Str("component", "StatusAPI").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/targets", s.handleTargets)
	r.Get("/history", s.handleHistory)

	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("Status API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("status API failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status API shutdown failed: %w", err)
		}
		s.logger.Info().Msg("Status API stopped")
		return nil
	}
}

type healthResponse struct {
	Status    string         `json:"status"`
	LastCycle *cycleResponse `json:"last_cycle,omitempty"`
	Time      time.Time      `json:"time"`
}

type cycleResponse struct {
	CycleID    string              `json:"cycle_id"`
	StartedAt  time.Time           `json:"started_at"`
	FinishedAt time.Time           `json:"finished_at"`
	Summary    models.CycleSummary `json:"summary"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Time: time.Now().UTC()}
	if s.reports != nil {
		if report, ok := s.reports.LastReport(); ok {
			resp.LastCycle = &cycleResponse{
				CycleID:    report.CycleID,
				StartedAt:  report.StartedAt,
				FinishedAt: report.FinishedAt,
				Summary:    report.Summary(),
			}
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

type targetResponse struct {
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	Active          bool       `json:"active"`
	IntervalSeconds int64      `json:"interval_seconds"`
	LastCheck       *time.Time `json:"last_check"`
	NextDue         *time.Time `json:"next_due"`
	Due             bool       `json:"due"`
	Error           string     `json:"error,omitempty"`
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	statuses := s.targets.Status(time.Now())
	resp := make([]targetResponse, 0, len(statuses))
	for _, st := range statuses {
		tr := targetResponse{
			Name:            st.Target.Name,
			URL:             st.Target.URL,
			Active:          st.Target.Active,
			IntervalSeconds: int64(st.Interval / time.Second),
			Due:             st.Due,
		}
		if st.Checked {
			last := st.LastCheck
			tr.LastCheck = &last
		}
		if st.Target.Active {
			next := st.NextDue
			tr.NextDue = &next
		}
		if st.Err != nil {
			tr.Error = st.Err.Error()
		}
		resp = append(resp, tr)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeError(w, http.StatusNotFound, "check journal is disabled")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	var (
		entries []datastore.JournalEntry
		err     error
	)
	if url := r.URL.Query().Get("url"); url != "" {
		entries, err = s.history.RecentForTarget(r.Context(), url, limit)
	} else {
		entries, err = s.history.Recent(r.Context(), limit)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read check journal")
		s.writeError(w, http.StatusInternalServerError, "failed to read check journal")
		return
	}
	if entries == nil {
		entries = []datastore.JournalEntry{}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request served")
	})
}
