package notifier

import "time"

// Discord formatting constants
const (
	ChangeEmbedColor = 0x6F42C1 // Purple for monitoring
	TestEmbedColor   = 0x5BC0DE // Info blue
)

// Discord embed limits
const (
	maxEmbedTitleLength       = 256
	maxEmbedDescriptionLength = 4096
	maxEmbedFields            = 25
	maxEmbedFieldValueLength  = 1024
)

const (
	defaultSummaryMaxLength = 500
	defaultSendTimeout      = 30 * time.Second
)
