package notifier

import (
	"context"
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"
)

type desktopSendFunc func(title, message string) error

func beeepNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// DesktopNotifier shows a desktop notification for each change.
type DesktopNotifier struct {
	formatter Formatter
	send      desktopSendFunc
	logger    zerolog.Logger
}

// NewDesktopNotifier creates a desktop notifier.
func NewDesktopNotifier(formatter Formatter, logger zerolog.Logger) *DesktopNotifier {
	return &DesktopNotifier{
		formatter: formatter,
		send:      beeepNotify,
		logger:    logger.With().Str("component", "DesktopNotifier").Logger(),
	}
}

// Name returns the name of the notifier.
func (dn *DesktopNotifier) Name() string { return "desktop" }

// Notify shows the notification. The context is not used by the platform backends.
func (dn *DesktopNotifier) Notify(_ context.Context, n ChangeNotification) error {
	message := fmt.Sprintf("Content changed on %s (%s)", n.TargetURL, dn.formatter.Counts(n))
	if err := dn.send(dn.formatter.Title(n), message); err != nil {
		return fmt.Errorf("failed to show desktop notification: %w", err)
	}
	dn.logger.Debug().Str("url", n.TargetURL).Msg("Desktop notification shown")
	return nil
}
