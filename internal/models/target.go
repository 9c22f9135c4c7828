package models

import "time"

// Target is a single monitored URL plus the rules used to extract its content.
// Targets are owned by the configuration layer; the engine only reads them.
type Target struct {
	Name           string
	URL            string
	Selector       string            // CSS selector; empty means the whole document
	IgnorePatterns []string          // Noise filters applied in order before comparison
	Interval       time.Duration     // Zero means "use the global default"
	Active         bool              // Inactive targets are never scheduled
	Headers        map[string]string // Static request headers for this target
	Render         bool              // Fetch through the headless browser
}

// EffectiveInterval returns the target's own interval, or defaultInterval when the
// target has no override.
func (t Target) EffectiveInterval(defaultInterval time.Duration) time.Duration {
	if t.Interval > 0 {
		return t.Interval
	}
	return defaultInterval
}

// String returns a short human readable identity used in logs and reports.
func (t Target) String() string {
	if t.Name == "" {
		return t.URL
	}
	return t.Name + " (" + t.URL + ")"
}
