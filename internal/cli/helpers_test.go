package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/valter-silva-au/evtrace/internal/logging"
	"github.com/valter-silva-au/evtrace/internal/observability"
	"github.com/valter-silva-au/evtrace/pkg/models"
)

var testChannelSeq atomic.Int64

// useTestRecorder points OpenRecorder at a fresh sink for the duration of
// the test and returns the sink path.
func useTestRecorder(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.log")
	channel := fmt.Sprintf("cli-%s-%d", t.Name(), testChannelSeq.Add(1))

	var opened *observability.Recorder
	origOpen, origCfg := OpenRecorder, Config
	OpenRecorder = func(sink, ch string) (*observability.Recorder, error) {
		if sink == "" {
			sink = path
		}
		if ch == "" {
			ch = channel
		}
		r, err := observability.NewRecorder(
			observability.WithSink(sink),
			observability.WithChannel(ch),
			observability.WithLogger(logging.NewNop()),
		)
		opened = r
		return r, err
	}
	cfg := models.DefaultRecorderConfig()
	cfg.Sink, cfg.Channel = path, channel
	Config = &cfg

	t.Cleanup(func() {
		if opened != nil {
			_ = opened.Close()
		}
		OpenRecorder, Config = origOpen, origCfg
		resetFlags()
	})
	resetFlags()
	return path
}

func resetFlags() {
	markFlags.reset()
	rangeFlags.reset()
	sinkOverride = ""
	channelOverride = ""
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), err
}

func readSink(t *testing.T, path string) []models.EventRecord {
	t.Helper()
	recs, err := observability.ReadRecords(path)
	if err != nil {
		t.Fatalf("reading sink: %v", err)
	}
	return recs
}
