package config

// NotificationConfig defines configuration for notifications
type NotificationConfig struct {
	SummaryMaxLength int           `json:"summary_max_length,omitempty" yaml:"summary_max_length,omitempty" validate:"min=0"`
	Discord          DiscordConfig `json:"discord" yaml:"discord"`
	Email            EmailConfig   `json:"email" yaml:"email"`
	Desktop          DesktopConfig `json:"desktop" yaml:"desktop"`
}

// DiscordConfig configures the Discord webhook notifier
type DiscordConfig struct {
	WebhookURL     string   `json:"webhook_url,omitempty" yaml:"webhook_url,omitempty" validate:"omitempty,url"`
	Username       string   `json:"username,omitempty" yaml:"username,omitempty"`
	MentionRoleIDs []string `json:"mention_role_ids,omitempty" yaml:"mention_role_ids,omitempty"`
}

// EmailConfig configures the SMTP notifier
type EmailConfig struct {
	Enabled    bool     `json:"enabled" yaml:"enabled"`
	SMTPServer string   `json:"smtp_server,omitempty" yaml:"smtp_server,omitempty" validate:"required_if=Enabled true"`
	SMTPPort   int      `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty" validate:"omitempty,min=1,max=65535"`
	Username   string   `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string   `json:"password,omitempty" yaml:"password,omitempty"`
	FromAddr   string   `json:"from_addr,omitempty" yaml:"from_addr,omitempty" validate:"omitempty,email"`
	ToAddrs    []string `json:"to_addr,omitempty" yaml:"to_addr,omitempty" validate:"dive,email"`
}

// DesktopConfig configures desktop notifications
type DesktopConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		SummaryMaxLength: DefaultSummaryMaxLength,
		Discord: DiscordConfig{
			Username:       DefaultDiscordUsername,
			MentionRoleIDs: []string{},
		},
		Email: EmailConfig{
			Enabled:  false,
			SMTPPort: DefaultSMTPPort,
			ToAddrs:  []string{},
		},
		Desktop: DesktopConfig{Enabled: true},
	}
}
