package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/valter-silva-au/evtrace/internal/logging"
	"github.com/valter-silva-au/evtrace/pkg/models"
)

var channelSeq atomic.Int64

// uniqueChannel returns a channel name no other test uses, since the channel
// registry is process-wide.
func uniqueChannel(t *testing.T) string {
	return fmt.Sprintf("%s-%d", t.Name(), channelSeq.Add(1))
}

// newTestRecorder creates a recorder on a fresh sink and channel and unbinds
// the channel when the test ends.
func newTestRecorder(t *testing.T, opts ...Option) (*Recorder, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.log")
	base := []Option{
		WithSink(path),
		WithChannel(uniqueChannel(t)),
		WithLogger(logging.NewNop()),
	}
	r, err := NewRecorder(append(base, opts...)...)
	if err != nil {
		t.Fatalf("creating recorder: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, path
}

// readRaw decodes each line of path into a generic map so that key presence
// can be checked.
func readRaw(t *testing.T, path string) []map[string]json.RawMessage {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening sink: %v", err)
	}
	defer f.Close()

	var out []map[string]json.RawMessage
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(scanner.Bytes(), &m); err != nil {
			t.Fatalf("line %q is not a JSON object: %v", scanner.Text(), err)
		}
		out = append(out, m)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scanning sink: %v", err)
	}
	return out
}

func readRecords(t *testing.T, path string) []models.EventRecord {
	t.Helper()
	recs, err := ReadRecords(path)
	if err != nil {
		t.Fatalf("reading records: %v", err)
	}
	return recs
}

// stepClock returns a clock that yields base, base+step, base+2*step, ...
func stepClock(base time.Time, step time.Duration) func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		i := n.Add(1) - 1
		return base.Add(time.Duration(i) * step)
	}
}
