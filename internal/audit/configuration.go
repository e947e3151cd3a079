package audit

import (
	"strings"
	"time"
)

// Configuration defaults.
const (
	DefaultDelayConstant            = 10 * time.Second
	DefaultLogFileConstant          = "experiment_log.jsonl"
	DefaultModelConstant            = "llama-3.3-70b-versatile"
	DefaultBaseURLConstant          = "https://api.groq.com/openai/v1"
	DefaultRequestTimeoutConstant   = 60 * time.Second
	DefaultMinimumIntervalConstant  = time.Second
	defaultReportFormatNameConstant = string(ReportFormatText)
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Delay                  time.Duration `mapstructure:"delay"`
	LogFile                string        `mapstructure:"log_file"`
	Format                 string        `mapstructure:"format"`
	Model                  string        `mapstructure:"model"`
	ReportsDirectory       string        `mapstructure:"reports_dir"`
	BaseURL                string        `mapstructure:"base_url"`
	APIKey                 string        `mapstructure:"api_key"`
	RequestTimeout         time.Duration `mapstructure:"request_timeout"`
	MinimumRequestInterval time.Duration `mapstructure:"minimum_request_interval"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Delay:                  DefaultDelayConstant,
		LogFile:                DefaultLogFileConstant,
		Format:                 defaultReportFormatNameConstant,
		Model:                  DefaultModelConstant,
		ReportsDirectory:       "",
		BaseURL:                DefaultBaseURLConstant,
		APIKey:                 "",
		RequestTimeout:         DefaultRequestTimeoutConstant,
		MinimumRequestInterval: DefaultMinimumIntervalConstant,
	}
}

// DefaultConfigurationValues exposes the audit defaults keyed for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKeyPrefix + ".delay":                    defaults.Delay.String(),
		configurationKeyPrefix + ".log_file":                 defaults.LogFile,
		configurationKeyPrefix + ".format":                   defaults.Format,
		configurationKeyPrefix + ".model":                    defaults.Model,
		configurationKeyPrefix + ".reports_dir":              defaults.ReportsDirectory,
		configurationKeyPrefix + ".base_url":                 defaults.BaseURL,
		configurationKeyPrefix + ".api_key":                  defaults.APIKey,
		configurationKeyPrefix + ".request_timeout":          defaults.RequestTimeout.String(),
		configurationKeyPrefix + ".minimum_request_interval": defaults.MinimumRequestInterval.String(),
	}
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.LogFile = defaultIfBlank(configuration.LogFile, DefaultLogFileConstant)
	sanitized.Format = defaultIfBlank(configuration.Format, defaultReportFormatNameConstant)
	sanitized.Model = defaultIfBlank(configuration.Model, DefaultModelConstant)
	sanitized.BaseURL = defaultIfBlank(configuration.BaseURL, DefaultBaseURLConstant)
	sanitized.ReportsDirectory = strings.TrimSpace(configuration.ReportsDirectory)
	sanitized.APIKey = strings.TrimSpace(configuration.APIKey)

	if sanitized.Delay < 0 {
		sanitized.Delay = DefaultDelayConstant
	}
	if sanitized.RequestTimeout <= 0 {
		sanitized.RequestTimeout = DefaultRequestTimeoutConstant
	}
	if sanitized.MinimumRequestInterval <= 0 {
		sanitized.MinimumRequestInterval = DefaultMinimumIntervalConstant
	}

	return sanitized
}

func defaultIfBlank(rawValue string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
