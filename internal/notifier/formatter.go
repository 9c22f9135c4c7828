package notifier

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Formatter renders change notifications as plain text.
type Formatter struct {
	summaryMaxLength int
}

// NewFormatter creates a formatter. maxLength <= 0 uses the default of 500 characters.
func NewFormatter(maxLength int) Formatter {
	if maxLength <= 0 {
		maxLength = defaultSummaryMaxLength
	}
	return Formatter{summaryMaxLength: maxLength}
}

// Title returns the short headline of a notification.
func (f Formatter) Title(n ChangeNotification) string {
	return "Website changed: " + displayName(n)
}

// Summary renders the change markers, truncated to the configured length.
func (f Formatter) Summary(n ChangeNotification) string {
	return truncateString(n.Changes.String(), f.summaryMaxLength)
}

// Counts renders "+A / -R lines".
func (f Formatter) Counts(n ChangeNotification) string {
	return fmt.Sprintf("+%d / -%d lines", n.Changes.Added(), n.Changes.Removed())
}

// PlainText renders the full plain-text body used by email.
func (f Formatter) PlainText(n ChangeNotification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "A content change was detected on %s (%s).\n\n", displayName(n), n.TargetURL)
	fmt.Fprintf(&sb, "Detected at: %s\n", n.DetectedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Changes: %s\n\n", f.Counts(n))
	sb.WriteString("Summary:\n")
	sb.WriteString(f.Summary(n))
	sb.WriteString("\n\nThis message was sent automatically by pagewatch.\n")
	return sb.String()
}

func displayName(n ChangeNotification) string {
	if n.TargetName != "" {
		return n.TargetName
	}
	return n.TargetURL
}

// truncateString truncates s to maxLength characters with an ellipsis.
func truncateString(s string, maxLength int) string {
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	if maxLength <= 3 {
		return string([]rune(s)[:maxLength])
	}
	return string([]rune(s)[:maxLength-3]) + "..."
}

// buildMentions creates mention strings for Discord role IDs
func buildMentions(roleIDs []string) string {
	if len(roleIDs) == 0 {
		return ""
	}
	mentions := make([]string, 0, len(roleIDs))
	for _, roleID := range roleIDs {
		mentions = append(mentions, fmt.Sprintf("<@&%s>", roleID))
	}
	return strings.Join(mentions, " ")
}
