package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aleister1102/pagewatch/internal/common"
	"gopkg.in/yaml.v3"
)

// GlobalConfig is the root of the configuration file
type GlobalConfig struct {
	MonitorConfig      MonitorConfig      `json:"monitor_config" yaml:"monitor_config"`
	FetchConfig        FetchConfig        `json:"fetch_config" yaml:"fetch_config"`
	BrowserConfig      BrowserConfig      `json:"browser_config" yaml:"browser_config"`
	StorageConfig      StorageConfig      `json:"storage_config" yaml:"storage_config"`
	LogConfig          LogConfig          `json:"log_config" yaml:"log_config"`
	NotificationConfig NotificationConfig `json:"notification_config" yaml:"notification_config"`
	StatusServerConfig StatusServerConfig `json:"status_server_config" yaml:"status_server_config"`
	Targets            []TargetConfig     `json:"targets" yaml:"targets" validate:"dive"`
}

// NewDefaultGlobalConfig creates a configuration populated with defaults
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		MonitorConfig:      NewDefaultMonitorConfig(),
		FetchConfig:        NewDefaultFetchConfig(),
		BrowserConfig:      NewDefaultBrowserConfig(),
		StorageConfig:      NewDefaultStorageConfig(),
		LogConfig:          NewDefaultLogConfig(),
		NotificationConfig: NewDefaultNotificationConfig(),
		StatusServerConfig: NewDefaultStatusServerConfig(),
		Targets:            []TargetConfig{},
	}
}

// LoadGlobalConfig loads the configuration file at providedPath, falling back to the
// default search locations when providedPath is empty. Values missing from the file
// keep their defaults.
func LoadGlobalConfig(providedPath string) (*GlobalConfig, error) {
	filePath := GetConfigPath(providedPath)
	if filePath == "" {
		if providedPath != "" {
			return nil, fmt.Errorf("config file does not exist: %s", providedPath)
		}
		return nil, common.NewConfigurationError("", "", "no configuration file found")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, common.WrapErrorf(err, "failed to read config file %s", filePath)
	}

	cfg := NewDefaultGlobalConfig()
	if err := parseConfigContent(data, filePath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := strings.ToLower(filepath.Ext(filePath))
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return common.WrapErrorf(err, "failed to parse YAML config %s", filePath)
	}
	return nil
}

func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return common.WrapErrorf(err, "failed to parse JSON config %s", filePath)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (gc *GlobalConfig) Clone() *GlobalConfig {
	dst := *gc

	dst.FetchConfig.Headers = cloneStringMap(gc.FetchConfig.Headers)
	dst.NotificationConfig.Discord.MentionRoleIDs = append([]string(nil), gc.NotificationConfig.Discord.MentionRoleIDs...)
	dst.NotificationConfig.Email.ToAddrs = append([]string(nil), gc.NotificationConfig.Email.ToAddrs...)

	dst.Targets = make([]TargetConfig, len(gc.Targets))
	for i, tc := range gc.Targets {
		cp := tc
		cp.IgnorePatterns = append([]string(nil), tc.IgnorePatterns...)
		cp.Headers = cloneStringMap(tc.Headers)
		if tc.CheckIntervalSeconds != nil {
			v := *tc.CheckIntervalSeconds
			cp.CheckIntervalSeconds = &v
		}
		if tc.Active != nil {
			v := *tc.Active
			cp.Active = &v
		}
		dst.Targets[i] = cp
	}
	return &dst
}

func cloneStringMap(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
