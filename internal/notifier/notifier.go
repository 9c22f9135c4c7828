package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/rs/zerolog"
)

// ChangeNotification is what a notifier receives when a target changed.
type ChangeNotification struct {
	TargetName string
	TargetURL  string
	Changes    *models.ChangeSet
	DetectedAt time.Time
}

// Notifier delivers change notifications. Implementations report success or failure only.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n ChangeNotification) error
}

// Multi fans a notification out to several notifiers.
type Multi struct {
	notifiers []Notifier
	logger    zerolog.Logger
}

// NewMulti creates a fan-out notifier over notifiers.
func NewMulti(logger zerolog.Logger, notifiers ...Notifier) *Multi {
	return &Multi{
		notifiers: notifiers,
		logger:    logger.With().Str("component", "MultiNotifier").Logger(),
	}
}

// Name returns the name of the notifier.
func (m *Multi) Name() string { return "multi" }

// Notifiers returns the wrapped notifiers.
func (m *Multi) Notifiers() []Notifier { return m.notifiers }

// Notify delivers n through every wrapped notifier. It succeeds if at least one delivery
// succeeds; otherwise all delivery errors are returned joined.
func (m *Multi) Notify(ctx context.Context, n ChangeNotification) error {
	if len(m.notifiers) == 0 {
		return nil
	}

	var errs []error
	delivered := 0
	for _, nt := range m.notifiers {
		if err := nt.Notify(ctx, n); err != nil {
			m.logger.Error().Err(err).Str("notifier", nt.Name()).Str("url", n.TargetURL).Msg("Notification delivery failed")
			errs = append(errs, fmt.Errorf("%s: %w", nt.Name(), err))
			continue
		}
		delivered++
	}

	if delivered > 0 {
		return nil
	}
	return errors.Join(errs...)
}
