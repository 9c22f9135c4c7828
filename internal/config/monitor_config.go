package config

import "time"

// MonitorConfig defines configuration for the monitor loop and scheduler
type MonitorConfig struct {
	CheckIntervalSeconds     int     `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"min=1"`
	PollIntervalSeconds      int     `json:"poll_interval_seconds,omitempty" yaml:"poll_interval_seconds,omitempty" validate:"min=1"`
	MaxConcurrentChecks      int     `json:"max_concurrent_checks,omitempty" yaml:"max_concurrent_checks,omitempty" validate:"min=1"`
	RequestsPerSecondPerHost float64 `json:"requests_per_second_per_host,omitempty" yaml:"requests_per_second_per_host,omitempty" validate:"min=0"` // 0 disables the per-host limit
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CheckIntervalSeconds:     DefaultCheckIntervalSeconds,
		PollIntervalSeconds:      DefaultPollIntervalSeconds,
		MaxConcurrentChecks:      DefaultMaxConcurrentChecks,
		RequestsPerSecondPerHost: 0,
	}
}

// CheckInterval is the global default interval between two checks of a target.
func (c MonitorConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// PollInterval is the continuous-mode tick.
func (c MonitorConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// FetchConfig defines configuration for fetching target pages
type FetchConfig struct {
	UserAgent          string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Headers            map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	HTTPTimeoutSeconds int               `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"min=1"`
	RetryCount         int               `json:"retry_count,omitempty" yaml:"retry_count,omitempty" validate:"min=1"` // Total attempts per fetch
	RetryDelaySeconds  int               `json:"retry_delay_seconds,omitempty" yaml:"retry_delay_seconds,omitempty" validate:"min=0"`
	MaxContentSize     int               `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"min=0"` // Bytes; 0 disables the cap
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	EnableHTTP2        bool              `json:"enable_http2" yaml:"enable_http2"`
	Proxy              string            `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	FollowRedirects    bool              `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int               `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"min=0"`
}

// NewDefaultFetchConfig creates default fetch configuration
func NewDefaultFetchConfig() FetchConfig {
	return FetchConfig{
		UserAgent:          DefaultUserAgent,
		Headers:            map[string]string{},
		HTTPTimeoutSeconds: DefaultHTTPTimeoutSeconds,
		RetryCount:         DefaultRetryCount,
		RetryDelaySeconds:  DefaultRetryDelaySeconds,
		MaxContentSize:     DefaultMaxContentSize,
		InsecureSkipVerify: false,
		EnableHTTP2:        true,
		FollowRedirects:    true,
		MaxRedirects:       DefaultMaxRedirects,
	}
}

// Timeout bounds a single fetch attempt.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// RetryDelay is the fixed wait between two attempts.
func (c FetchConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySeconds) * time.Second
}

// BrowserConfig defines configuration for the headless renderer used by targets with render: true
type BrowserConfig struct {
	ChromePath      string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	WaitAfterLoadMs int    `json:"wait_after_load_ms,omitempty" yaml:"wait_after_load_ms,omitempty" validate:"min=0"`
	DisableImages   bool   `json:"disable_images" yaml:"disable_images"`
}

// NewDefaultBrowserConfig creates default browser configuration
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		WaitAfterLoadMs: DefaultBrowserWaitAfterLoadMs,
		DisableImages:   true,
	}
}

// StorageConfig defines where snapshots and the check journal live
type StorageConfig struct {
	DataDir     string `json:"data_dir,omitempty" yaml:"data_dir,omitempty" validate:"required"`
	JournalPath string `json:"journal_path,omitempty" yaml:"journal_path,omitempty"` // Empty disables the journal
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:     DefaultDataDir,
		JournalPath: DefaultJournalPath,
	}
}

// StatusServerConfig defines the optional read-only status endpoint of the daemon
type StatusServerConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty" validate:"required_if=Enabled true"`
}

// NewDefaultStatusServerConfig creates default status server configuration
func NewDefaultStatusServerConfig() StatusServerConfig {
	return StatusServerConfig{
		Enabled:    false,
		ListenAddr: DefaultStatusListenAddr,
	}
}
