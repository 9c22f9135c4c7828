package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/config"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// DiscordNotifier posts an embed to a Discord webhook.
type DiscordNotifier struct {
	session      *discordgo.Session
	webhookID    string
	webhookToken string
	username     string
	roleIDs      []string
	formatter    Formatter
	logger       zerolog.Logger
}

// NewDiscordNotifier creates a notifier for cfg.WebhookURL. A nil httpClient gets a
// client with a 20s timeout.
func NewDiscordNotifier(cfg config.DiscordConfig, formatter Formatter, httpClient *http.Client, logger zerolog.Logger) (*DiscordNotifier, error) {
	id, token, err := parseWebhookURL(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}

	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	session.Client = httpClient

	return &DiscordNotifier{
		session:      session,
		webhookID:    id,
		webhookToken: token,
		username:     cfg.Username,
		roleIDs:      cfg.MentionRoleIDs,
		formatter:    formatter,
		logger:       logger.With().Str("component", "DiscordNotifier").Logger(),
	}, nil
}

// Name returns the name of the notifier.
func (dn *DiscordNotifier) Name() string { return "discord" }

// Notify executes the webhook with a change embed.
func (dn *DiscordNotifier) Notify(ctx context.Context, n ChangeNotification) error {
	params := &discordgo.WebhookParams{
		Content:  buildMentions(dn.roleIDs),
		Username: dn.username,
		Embeds:   []*discordgo.MessageEmbed{dn.buildEmbed(n)},
	}
	if len(dn.roleIDs) > 0 {
		params.AllowedMentions = &discordgo.MessageAllowedMentions{Roles: dn.roleIDs}
	}

	if _, err := dn.session.WebhookExecute(dn.webhookID, dn.webhookToken, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord webhook execute failed: %w", err)
	}
	dn.logger.Info().Str("url", n.TargetURL).Msg("Discord notification sent successfully")
	return nil
}

func (dn *DiscordNotifier) buildEmbed(n ChangeNotification) *discordgo.MessageEmbed {
	detectedAt := n.DetectedAt
	if detectedAt.IsZero() {
		detectedAt = time.Now()
	}
	summary := dn.formatter.Summary(n)

	return NewEmbedBuilder().
		WithTitle(dn.formatter.Title(n)).
		WithURL(n.TargetURL).
		WithDescription("```diff\n" + summary + "\n```").
		WithColor(ChangeEmbedColor).
		WithTimestamp(detectedAt).
		AddField("URL", n.TargetURL, false).
		AddField("Changes", dn.formatter.Counts(n), true).
		WithFooter("pagewatch").
		Build()
}

// parseWebhookURL extracts the id and token from
// https://discord.com/api/webhooks/<id>/<token>.
func parseWebhookURL(raw string) (id, token string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", common.NewValidationError("webhook_url", raw, "invalid URL")
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "webhooks" && i+2 < len(parts) && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", common.NewValidationError("webhook_url", raw, "expected .../webhooks/<id>/<token>")
}
