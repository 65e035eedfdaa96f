package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/evtrace/pkg/models"
)

func TestMarkCmd_WritesInstant(t *testing.T) {
	path := useTestRecorder(t)

	if _, err := execute(t, "mark", "-r", "req-1", "-e", "room=3", "kv_queued"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}

	recs := readSink(t, path)
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	rec := recs[0]
	if rec.EventType != models.EventInstant || rec.RequestID != "req-1" || rec.EventName != "kv_queued" {
		t.Errorf("unexpected record %+v", rec)
	}
	if n, _ := rec.ExtraData["room"].AsNumber(); n != 3 {
		t.Errorf("extra_data.room = %v, want 3", rec.ExtraData["room"])
	}
}

func TestMarkCmd_PrintsGeneratedID(t *testing.T) {
	path := useTestRecorder(t)

	out, err := execute(t, "mark", "--print-id", "received")
	if err != nil {
		t.Fatal(err)
	}

	id := strings.TrimSpace(out)
	if len(id) != 36 {
		t.Fatalf("expected a UUID on stdout, got %q", out)
	}
	recs := readSink(t, path)
	if len(recs) != 1 || recs[0].RequestID != id {
		t.Errorf("record request id does not match printed id %q", id)
	}
}

func TestMarkCmd_SinkOverride(t *testing.T) {
	useTestRecorder(t)
	other := filepath.Join(t.TempDir(), "other.log")

	if _, err := execute(t, "--sink", other, "--channel", "cli-override-"+t.Name(), "mark", "-r", "r", "e"); err != nil {
		t.Fatal(err)
	}
	if n := len(readSink(t, other)); n != 1 {
		t.Errorf("expected 1 record in override sink, got %d", n)
	}
}

func TestMarkCmd_RequiresName(t *testing.T) {
	useTestRecorder(t)
	if _, err := execute(t, "mark"); err == nil {
		t.Error("expected error without event name")
	}
}

func TestMarkCmd_InvalidExtra(t *testing.T) {
	path := useTestRecorder(t)
	if _, err := execute(t, "mark", "-e", "broken", "e"); err == nil {
		t.Error("expected error for malformed --extra")
	}
	if n := len(readSink(t, path)); n != 0 {
		t.Errorf("expected no records, got %d", n)
	}
}

func TestMarkCmd_NotInitialized(t *testing.T) {
	orig := OpenRecorder
	defer func() { OpenRecorder = orig }()
	OpenRecorder = nil

	err := markCmd.RunE(markCmd, []string{"e"})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("expected not initialized error, got %v", err)
	}
}
