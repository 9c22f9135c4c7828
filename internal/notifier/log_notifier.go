package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes change notifications to the log. It never fails.
type LogNotifier struct {
	formatter Formatter
	logger    zerolog.Logger
}

// NewLogNotifier creates a notifier backed by logger.
func NewLogNotifier(formatter Formatter, logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		formatter: formatter,
		logger:    logger.With().Str("component", "LogNotifier").Logger(),
	}
}

// Name returns the name of the notifier.
func (ln *LogNotifier) Name() string { return "log" }

// Notify logs the change summary.
func (ln *LogNotifier) Notify(_ context.Context, n ChangeNotification) error {
	ln.logger.Info().
		Str("target", displayName(n)).
		Str("url", n.TargetURL).
		Int("added", n.Changes.Added()).
		Int("removed", n.Changes.Removed()).
		Time("detected_at", n.DetectedAt).
		Msg(ln.formatter.Title(n) + "\n" + ln.formatter.Summary(n))
	return nil
}
