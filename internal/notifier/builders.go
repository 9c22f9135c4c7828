package notifier

import (
	"net/http"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/rs/zerolog"
)

// NotifierBuilder selects notifier variants from configuration once at start-up.
type NotifierBuilder struct {
	cfg        config.NotificationConfig
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewNotifierBuilder creates a new builder
func NewNotifierBuilder(logger zerolog.Logger) *NotifierBuilder {
	return &NotifierBuilder{
		cfg:    config.NewDefaultNotificationConfig(),
		logger: logger,
	}
}

// WithConfig sets the notification configuration
func (b *NotifierBuilder) WithConfig(cfg config.NotificationConfig) *NotifierBuilder {
	b.cfg = cfg
	return b
}

// WithHTTPClient sets the client used for webhook delivery
func (b *NotifierBuilder) WithHTTPClient(client *http.Client) *NotifierBuilder {
	b.httpClient = client
	return b
}

// Build returns a Multi over every enabled variant. A variant that cannot be created is
// logged and left out; the log notifier is used when nothing else is enabled.
func (b *NotifierBuilder) Build() *Multi {
	formatter := NewFormatter(b.cfg.SummaryMaxLength)
	var notifiers []Notifier

	if b.cfg.Discord.WebhookURL != "" {
		dn, err := NewDiscordNotifier(b.cfg.Discord, formatter, b.httpClient, b.logger)
		if err != nil {
			b.logger.Error().Err(err).Msg("Discord notifier disabled")
		} else {
			notifiers = append(notifiers, dn)
		}
	}

	if b.cfg.Email.Enabled {
		en, err := NewEmailNotifier(b.cfg.Email, formatter, b.logger)
		if err != nil {
			b.logger.Error().Err(err).Msg("Email notifier disabled")
		} else {
			notifiers = append(notifiers, en)
		}
	}

	if b.cfg.Desktop.Enabled {
		notifiers = append(notifiers, NewDesktopNotifier(formatter, b.logger))
	}

	if len(notifiers) == 0 {
		notifiers = append(notifiers, NewLogNotifier(formatter, b.logger))
	}

	names := make([]string, 0, len(notifiers))
	for _, n := range notifiers {
		names = append(names, n.Name())
	}
	b.logger.Info().Strs("notifiers", names).Msg("Notifiers configured")

	return NewMulti(b.logger, notifiers...)
}
