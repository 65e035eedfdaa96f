package observability

import (
	"errors"
	"path/filepath"
	"testing"

	"pgregory.net/rapid"

	"github.com/valter-silva-au/evtrace/internal/logging"
	"github.com/valter-silva-au/evtrace/pkg/models"
)

func newPropertyRecorder(t *testing.T) (*Recorder, string) {
	path := filepath.Join(t.TempDir(), "events.log")
	r, err := NewRecorder(WithSink(path), WithChannel(uniqueChannel(t)), WithLogger(logging.NewNop()))
	if err != nil {
		t.Fatalf("creating recorder: %v", err)
	}
	return r, path
}

// =============================================================================
// Property 1: Range Start/End Pairing
// =============================================================================

// *For any* request id and event name, a successful Range SHALL append
// exactly a start line followed by an end line sharing both, with
// duration_ms equal to the rounded timestamp difference in milliseconds.
func TestProperty1_RangeStartEndPairing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r, path := newPropertyRecorder(t)
		defer r.Close()

		rid := rapid.String().Draw(rt, "requestID")
		name := rapid.StringMatching(`[a-z_]{1,16}`).Draw(rt, "eventName")

		if err := r.Range(rid, name, nil, func() error { return nil }); err != nil {
			rt.Fatalf("Range: %v", err)
		}

		recs, err := ReadRecords(path)
		if err != nil {
			rt.Fatalf("reading records: %v", err)
		}
		if len(recs) != 2 {
			rt.Fatalf("expected 2 records, got %d", len(recs))
		}
		start, end := recs[0], recs[1]
		if start.EventType != models.EventStart || end.EventType != models.EventEnd {
			rt.Fatalf("types = %s, %s", start.EventType, end.EventType)
		}
		if start.RequestID != rid || end.RequestID != rid || start.EventName != name || end.EventName != name {
			rt.Errorf("identity mismatch: %+v / %+v", start, end)
		}
		if end.DurationMS == nil || *end.DurationMS != models.DurationMillis(start.Timestamp, end.Timestamp) {
			rt.Errorf("duration_ms = %v, timestamps %v..%v", end.DurationMS, start.Timestamp, end.Timestamp)
		}
	})
}

// =============================================================================
// Property 2: Range Error Ordering
// =============================================================================

// *For any* error message, a failing Range SHALL append start, error, end in
// order, the error line SHALL carry the message, and the returned error
// SHALL be the value the block returned.
func TestProperty2_RangeErrorOrdering(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r, path := newPropertyRecorder(t)
		defer r.Close()

		msg := rapid.String().Draw(rt, "message")
		cause := errors.New(msg)

		if err := r.Range("req", "op", nil, func() error { return cause }); err != cause {
			rt.Fatalf("Range returned %v, want the block's error", err)
		}

		recs, err := ReadRecords(path)
		if err != nil {
			rt.Fatalf("reading records: %v", err)
		}
		if len(recs) != 3 {
			rt.Fatalf("expected 3 records, got %d", len(recs))
		}
		want := []models.EventType{models.EventStart, models.EventError, models.EventEnd}
		for i := range want {
			if recs[i].EventType != want[i] {
				rt.Errorf("record %d = %s, want %s", i, recs[i].EventType, want[i])
			}
		}
		if got, _ := recs[1].ExtraData["error"].AsString(); got != msg {
			rt.Errorf("error = %q, want %q", got, msg)
		}
	})
}

// =============================================================================
// Property 3: Extra Data Presence Follows Input
// =============================================================================

// *For any* sequence of marks with or without extra data, the extra_data key
// SHALL be present exactly when non-empty extra data was supplied, and
// duration_ms SHALL never be a number.
func TestProperty3_MarkExtraDataPresence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r, path := newPropertyRecorder(t)
		defer r.Close()

		n := rapid.IntRange(1, 10).Draw(rt, "n")
		withExtra := make([]bool, n)
		for i := 0; i < n; i++ {
			withExtra[i] = rapid.Bool().Draw(rt, "withExtra")
			var extra models.ExtraData
			if withExtra[i] {
				extra = models.ExtraData{"i": models.Int(int64(i))}
			}
			if err := r.Mark("req", "m", extra); err != nil {
				rt.Fatalf("Mark: %v", err)
			}
		}

		raw := readRaw(t, path)
		if len(raw) != n {
			rt.Fatalf("expected %d lines, got %d", n, len(raw))
		}
		for i, line := range raw {
			_, has := line["extra_data"]
			if has != withExtra[i] {
				rt.Errorf("line %d: extra_data present = %v, want %v", i, has, withExtra[i])
			}
			if got := string(line["duration_ms"]); got != "null" {
				rt.Errorf("line %d: duration_ms = %s", i, got)
			}
		}
	})
}
