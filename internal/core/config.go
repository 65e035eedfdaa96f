// Package core loads and validates evtrace configuration.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/evtrace/pkg/models"
)

// ConfigFileName is the base name of the YAML configuration file looked up
// in the base path.
const ConfigFileName = ".evtrace"

// EnvPrefix prefixes environment overrides, e.g. EVTRACE_SINK.
const EnvPrefix = "EVTRACE"

// ConfigurationManager loads and validates recorder configuration.
type ConfigurationManager interface {
	LoadRecorderConfig() (*models.RecorderConfig, error)
	ValidateConfig(cfg *models.RecorderConfig) error
	ConfigFileUsed() string
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading .evtrace.yaml and EVTRACE_* environment variables.
type viperConfigManager struct {
	basePath string
	used     string
}

// NewConfigurationManager creates a ConfigurationManager that reads the
// configuration file relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// LoadRecorderConfig reads .evtrace.yaml from the base path. Environment
// variables take precedence over the file, and the file over defaults. A
// missing file is not an error.
func (cm *viperConfigManager) LoadRecorderConfig() (*models.RecorderConfig, error) {
	def := models.DefaultRecorderConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("sink", def.Sink)
	v.SetDefault("channel", def.Channel)
	v.SetDefault("file_lock", def.FileLock)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("metrics_namespace", def.MetricsNamespace)
	v.SetDefault("metrics_file", def.MetricsFile)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}
	cm.used = v.ConfigFileUsed()

	cfg := &models.RecorderConfig{
		Sink:             v.GetString("sink"),
		Channel:          v.GetString("channel"),
		FileLock:         v.GetBool("file_lock"),
		LogLevel:         strings.ToLower(v.GetString("log_level")),
		MetricsNamespace: v.GetString("metrics_namespace"),
		MetricsFile:      v.GetString("metrics_file"),
	}
	return cfg, nil
}

// ConfigFileUsed returns the path of the file read by the last load, or ""
// when only defaults and environment applied.
func (cm *viperConfigManager) ConfigFileUsed() string {
	return cm.used
}

// validLogLevels is the set of accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks cfg for invalid values and reports every problem
// found in one error.
func (cm *viperConfigManager) ValidateConfig(cfg *models.RecorderConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if strings.TrimSpace(cfg.Sink) == "" {
		errs = append(errs, "sink must not be empty")
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		errs = append(errs, "channel must not be empty")
	}
	if cfg.LogLevel != "" && !validLogLevels[cfg.LogLevel] {
		errs = append(errs, fmt.Sprintf(
			"log_level %q is invalid, must be one of: debug, info, warn, error",
			cfg.LogLevel,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
