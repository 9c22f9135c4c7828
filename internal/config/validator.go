package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with the configuration-specific rules registered.
func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		level := strings.ToLower(fl.Field().String())
		switch level {
		case "", "debug", "info", "warn", "error", "fatal", "panic": // Allow empty for omitempty
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		format := strings.ToLower(fl.Field().String())
		switch format {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	return validate
}

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}

	var messages []string

	err := newValidator().Struct(cfg)
	if err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("configuration validation error: %w", err)
		}
		for _, e := range errs {
			messages = append(messages, formatFieldError(e))
		}
	}

	messages = append(messages, validateTargets(cfg.Targets)...)
	messages = append(messages, validateEmail(cfg.NotificationConfig.Email)...)

	if len(messages) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
	}
	return nil
}

func formatFieldError(e validator.FieldError) string {
	fieldName := strings.TrimPrefix(e.StructNamespace(), "GlobalConfig.")
	msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
	if e.Param() != "" {
		msg += fmt.Sprintf(" (expected: %s)", e.Param())
	}
	if e.Value() != nil && e.Value() != "" {
		msg += fmt.Sprintf(", actual: '%v'", e.Value())
	}
	return msg
}

// validateTargets enforces rules that span several targets.
func validateTargets(targets []TargetConfig) []string {
	var messages []string
	seenNames := make(map[string]int, len(targets))
	seenURLs := make(map[string]int, len(targets))

	for i, tc := range targets {
		name := strings.ToLower(strings.TrimSpace(tc.Name))
		url := strings.ToLower(strings.TrimSpace(tc.URL))

		if name != "" {
			if first, ok := seenNames[name]; ok {
				messages = append(messages, fmt.Sprintf("Targets[%d]: duplicate name '%s' (first used by Targets[%d])", i, tc.Name, first))
			} else {
				seenNames[name] = i
			}
		}
		if url != "" {
			if first, ok := seenURLs[url]; ok {
				messages = append(messages, fmt.Sprintf("Targets[%d]: duplicate url '%s' (first used by Targets[%d])", i, tc.URL, first))
			} else {
				seenURLs[url] = i
			}
		}
	}
	return messages
}

func validateEmail(cfg EmailConfig) []string {
	if !cfg.Enabled {
		return nil
	}
	var messages []string
	if strings.TrimSpace(cfg.FromAddr) == "" {
		messages = append(messages, "NotificationConfig.Email.FromAddr: required when email notifications are enabled")
	}
	if len(cfg.ToAddrs) == 0 {
		messages = append(messages, "NotificationConfig.Email.ToAddrs: at least one recipient is required when email notifications are enabled")
	}
	return messages
}
