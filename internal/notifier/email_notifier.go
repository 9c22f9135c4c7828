package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"
)

type mailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailNotifier sends a plain-text summary over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg       config.EmailConfig
	formatter Formatter
	client    mailSender
	logger    zerolog.Logger
}

// NewEmailNotifier creates an SMTP notifier from cfg.
func NewEmailNotifier(cfg config.EmailConfig, formatter Formatter, logger zerolog.Logger) (*EmailNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(defaultSendTimeout),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.SMTPServer, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client for %s: %w", cfg.SMTPServer, err)
	}
	return newEmailNotifier(cfg, formatter, client, logger), nil
}

func newEmailNotifier(cfg config.EmailConfig, formatter Formatter, client mailSender, logger zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg:       cfg,
		formatter: formatter,
		client:    client,
		logger:    logger.With().Str("component", "EmailNotifier").Logger(),
	}
}

// Name returns the name of the notifier.
func (en *EmailNotifier) Name() string { return "email" }

// Notify sends one message to every configured recipient.
func (en *EmailNotifier) Notify(ctx context.Context, n ChangeNotification) error {
	msg, err := en.buildMessage(n)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, defaultSendTimeout)
	defer cancel()

	if err := en.client.DialAndSendWithContext(sendCtx, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", en.cfg.SMTPServer, err)
	}
	en.logger.Info().Strs("to", en.cfg.ToAddrs).Str("url", n.TargetURL).Msg("Email notification sent")
	return nil
}

func (en *EmailNotifier) buildMessage(n ChangeNotification) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(en.cfg.FromAddr); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", en.cfg.FromAddr, err)
	}
	if err := msg.To(en.cfg.ToAddrs...); err != nil {
		return nil, fmt.Errorf("invalid recipient list: %w", err)
	}
	msg.Subject(en.formatter.Title(n))
	msg.SetDate()
	if n.DetectedAt.IsZero() {
		n.DetectedAt = time.Now()
	}
	msg.SetBodyString(mail.TypeTextPlain, en.formatter.PlainText(n))
	return msg, nil
}
