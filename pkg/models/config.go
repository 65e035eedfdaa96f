package models

// Default recorder settings used when neither configuration nor options
// override them.
const (
	DefaultSink             = "events.log"
	DefaultChannel          = "event_logger"
	DefaultLogLevel         = "info"
	DefaultMetricsNamespace = "evtrace"
)

// RecorderConfig holds recorder settings read from .evtrace.yaml via Viper.
type RecorderConfig struct {
	Sink             string `yaml:"sink" mapstructure:"sink"`
	Channel          string `yaml:"channel" mapstructure:"channel"`
	FileLock         bool   `yaml:"file_lock" mapstructure:"file_lock"`
	LogLevel         string `yaml:"log_level" mapstructure:"log_level"`
	MetricsNamespace string `yaml:"metrics_namespace" mapstructure:"metrics_namespace"`
	// MetricsFile, when set, receives the recorder's Prometheus metrics in
	// text exposition format after each command (node_exporter textfile
	// collector layout).
	MetricsFile string `yaml:"metrics_file" mapstructure:"metrics_file"`
}

// DefaultRecorderConfig returns a RecorderConfig populated with defaults.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Sink:             DefaultSink,
		Channel:          DefaultChannel,
		LogLevel:         DefaultLogLevel,
		MetricsNamespace: DefaultMetricsNamespace,
	}
}
