package config

import (
	"strings"
	"time"

	"github.com/aleister1102/pagewatch/internal/models"
)

// TargetConfig describes one monitored site as written in the configuration file
type TargetConfig struct {
	Name                 string            `json:"name" yaml:"name" validate:"required"`
	URL                  string            `json:"url" yaml:"url" validate:"required,http_url"`
	Selector             string            `json:"selector,omitempty" yaml:"selector,omitempty"`
	IgnorePatterns       []string          `json:"ignore_patterns,omitempty" yaml:"ignore_patterns,omitempty"`
	CheckIntervalSeconds *int              `json:"check_interval,omitempty" yaml:"check_interval,omitempty" validate:"omitempty,min=1"` // nil uses the global interval
	Active               *bool             `json:"active,omitempty" yaml:"active,omitempty"`                                          // nil means active
	Headers              map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Render               bool              `json:"render,omitempty" yaml:"render,omitempty"`
}

// IsActive reports whether the target participates in scheduling.
func (tc TargetConfig) IsActive() bool {
	return tc.Active == nil || *tc.Active
}

// ToTarget converts the configuration entry to the engine's read-only view.
func (tc TargetConfig) ToTarget() models.Target {
	target := models.Target{
		Name:           strings.TrimSpace(tc.Name),
		URL:            strings.TrimSpace(tc.URL),
		Selector:       strings.TrimSpace(tc.Selector),
		IgnorePatterns: append([]string(nil), tc.IgnorePatterns...),
		Active:         tc.IsActive(),
		Render:         tc.Render,
	}
	if tc.CheckIntervalSeconds != nil {
		target.Interval = time.Duration(*tc.CheckIntervalSeconds) * time.Second
	}
	if len(tc.Headers) > 0 {
		target.Headers = make(map[string]string, len(tc.Headers))
		for k, v := range tc.Headers {
			target.Headers[k] = v
		}
	}
	return target
}

// MonitorTargets returns every configured target in configuration order.
func (gc *GlobalConfig) MonitorTargets() []models.Target {
	targets := make([]models.Target, 0, len(gc.Targets))
	for _, tc := range gc.Targets {
		targets = append(targets, tc.ToTarget())
	}
	return targets
}

// FindTarget looks a target up by name or URL, case-insensitively.
func FindTarget(targets []models.Target, nameOrURL string) (models.Target, bool) {
	needle := strings.TrimSpace(nameOrURL)
	for _, t := range targets {
		if strings.EqualFold(t.Name, needle) || strings.EqualFold(t.URL, needle) {
			return t, true
		}
	}
	return models.Target{}, false
}
