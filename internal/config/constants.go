package config

const (
	// Monitor Defaults
	DefaultCheckIntervalSeconds = 3600 // 1 hour
	DefaultPollIntervalSeconds  = 60   // Daemon re-evaluates due targets once per minute
	DefaultMaxConcurrentChecks  = 4

	// Fetch Defaults
	DefaultUserAgent          = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultHTTPTimeoutSeconds = 30
	DefaultRetryCount         = 3
	DefaultRetryDelaySeconds  = 5
	DefaultMaxContentSize     = 10 * 1024 * 1024 // 10MB
	DefaultMaxRedirects       = 10

	// Browser Defaults
	DefaultBrowserWaitAfterLoadMs = 500

	// Storage Defaults
	DefaultDataDir     = "monitor_data"
	DefaultJournalPath = "monitor_data/history.db"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Notification Defaults
	DefaultSummaryMaxLength = 500
	DefaultDiscordUsername  = "pagewatch"
	DefaultSMTPPort         = 587

	// Status Server Defaults
	DefaultStatusListenAddr = "127.0.0.1:8089"

	// ConfigPathEnv overrides the configuration file location.
	ConfigPathEnv = "PAGEWATCH_CONFIG"
)
