// Package internal provides the App struct that wires configuration,
// logging, metrics, and the event recorder into the CLI layer.
package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/valter-silva-au/evtrace/internal/cli"
	"github.com/valter-silva-au/evtrace/internal/core"
	"github.com/valter-silva-au/evtrace/internal/logging"
	"github.com/valter-silva-au/evtrace/internal/observability"
	"github.com/valter-silva-au/evtrace/pkg/models"
)

// App holds all service dependencies for evtrace.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.RecorderConfig

	// Observability
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *observability.PromObserver
}

// NewApp loads configuration from basePath and wires the CLI. The recorder
// itself is opened lazily by the first command that emits a record.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadRecorderConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Observability ---
	app.Logger = logging.New(cfg.LogLevel)
	app.Registry = prometheus.NewRegistry()
	app.Metrics, err = observability.NewPromObserver(app.Registry, cfg.MetricsNamespace)
	if err != nil {
		return nil, err
	}

	// --- CLI wiring ---
	cli.Config = app.Config
	cli.ConfigSource = app.ConfigMgr.ConfigFileUsed()
	cli.Logger = app.Logger
	cli.OpenRecorder = app.OpenRecorder

	return app, nil
}

// RecorderOptions translates the loaded configuration into recorder options.
// A relative configured sink resolves against the base path; a relative
// override resolves against the working directory, like any CLI path.
func (a *App) RecorderOptions(sink, channel string) []observability.Option {
	if sink == "" {
		sink = a.resolve(a.Config.Sink)
	} else if abs, err := filepath.Abs(sink); err == nil {
		sink = abs
	}
	if channel == "" {
		channel = a.Config.Channel
	}
	return []observability.Option{
		observability.WithSink(sink),
		observability.WithChannel(channel),
		observability.WithFileLock(a.Config.FileLock),
		observability.WithLogger(a.Logger),
		observability.WithObserver(a.Metrics),
	}
}

// OpenRecorder returns the process-wide recorder, creating it from the
// configuration on first use. Overrides replace any existing recorder.
func (a *App) OpenRecorder(sink, channel string) (*observability.Recorder, error) {
	opts := a.RecorderOptions(sink, channel)
	if sink != "" || channel != "" {
		return observability.InitEventRecorder(opts...)
	}
	return observability.GetEventRecorder(opts...)
}

// FlushMetrics writes the metrics registry to the configured metrics_file in
// Prometheus text format. It is a no-op when no file is configured.
func (a *App) FlushMetrics() error {
	if a.Config.MetricsFile == "" {
		return nil
	}
	path := a.resolve(a.Config.MetricsFile)
	if err := prometheus.WriteToTextfile(path, a.Registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}

// resolve joins a relative configured path onto the base path.
func (a *App) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(a.BasePath, path)
}

// ResolveBasePath returns EVTRACE_HOME if set, otherwise the nearest
// directory containing .evtrace.yaml, otherwise the current directory.
func ResolveBasePath() string {
	if home := os.Getenv("EVTRACE_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName+".yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
