package notifier

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// EmbedBuilder helps in constructing discordgo embeds within Discord's size limits.
type EmbedBuilder struct {
	embed discordgo.MessageEmbed
}

// NewEmbedBuilder creates a new embed builder
func NewEmbedBuilder() *EmbedBuilder {
	return &EmbedBuilder{}
}

// WithTitle sets the embed title
func (b *EmbedBuilder) WithTitle(title string) *EmbedBuilder {
	b.embed.Title = truncateString(title, maxEmbedTitleLength)
	return b
}

// WithDescription sets the embed description
func (b *EmbedBuilder) WithDescription(description string) *EmbedBuilder {
	b.embed.Description = truncateString(description, maxEmbedDescriptionLength)
	return b
}

// WithURL sets the embed link
func (b *EmbedBuilder) WithURL(url string) *EmbedBuilder {
	b.embed.URL = url
	return b
}

// WithTimestamp sets the embed timestamp
func (b *EmbedBuilder) WithTimestamp(timestamp time.Time) *EmbedBuilder {
	b.embed.Timestamp = timestamp.Format(time.RFC3339)
	return b
}

// WithColor sets the embed color
func (b *EmbedBuilder) WithColor(color int) *EmbedBuilder {
	b.embed.Color = color
	return b
}

// WithFooter sets the embed footer
func (b *EmbedBuilder) WithFooter(text string) *EmbedBuilder {
	b.embed.Footer = &discordgo.MessageEmbedFooter{Text: text}
	return b
}

// AddField adds a field. Empty fields and fields beyond the limit are dropped.
func (b *EmbedBuilder) AddField(name, value string, inline bool) *EmbedBuilder {
	if name == "" || value == "" || len(b.embed.Fields) >= maxEmbedFields {
		return b
	}
	b.embed.Fields = append(b.embed.Fields, &discordgo.MessageEmbedField{
		Name:   truncateString(name, maxEmbedTitleLength),
		Value:  truncateString(value, maxEmbedFieldValueLength),
		Inline: inline,
	})
	return b
}

// Build returns the embed
func (b *EmbedBuilder) Build() *discordgo.MessageEmbed {
	embed := b.embed
	return &embed
}
