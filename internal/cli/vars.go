package cli

import (
	"log/slog"

	"github.com/valter-silva-au/evtrace/internal/observability"
	"github.com/valter-silva-au/evtrace/pkg/models"
)

// RecorderOpener returns the recorder commands emit through. Non-empty
// sink or channel arguments override the configured values.
type RecorderOpener func(sink, channel string) (*observability.Recorder, error)

// Service instances, set during app initialization in app.go.
var (
	Config       *models.RecorderConfig
	ConfigSource string
	Logger       *slog.Logger
	OpenRecorder RecorderOpener
)

// openRecorder applies the --sink and --channel flags.
func openRecorder() (*observability.Recorder, error) {
	if OpenRecorder == nil {
		return nil, errNotInitialized
	}
	return OpenRecorder(sinkOverride, channelOverride)
}
