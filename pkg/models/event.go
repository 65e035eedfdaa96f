package models

import (
	"math"
	"time"
)

// EventType classifies a single trace record.
type EventType string

const (
	EventStart   EventType = "start"
	EventEnd     EventType = "end"
	EventError   EventType = "error"
	EventInstant EventType = "instant"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventStart, EventEnd, EventError, EventInstant:
		return true
	}
	return false
}

// ISOLayout renders timestamps like Python's datetime.isoformat() for naive
// local times with a non-zero microsecond component.
const ISOLayout = "2006-01-02T15:04:05.000000"

// EventRecord is one JSON line written to a trace sink. DurationMS is set
// only on end records and serializes as null otherwise; ExtraData is
// omitted entirely when empty.
type EventRecord struct {
	RequestID    string    `json:"request_id"`
	EventName    string    `json:"event_name"`
	EventType    EventType `json:"event_type"`
	Timestamp    float64   `json:"timestamp"`
	TimestampISO string    `json:"timestamp_iso"`
	DurationMS   *float64  `json:"duration_ms"`
	ExtraData    ExtraData `json:"extra_data,omitempty"`
}

// UnixSeconds converts t to fractional seconds since the epoch.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// FormatISO renders t in local time rounded to the nearest microsecond
// (ties to even), dropping the fractional part when the microsecond
// component is zero.
func FormatISO(t time.Time) string {
	t = roundMicro(t.Local())
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05")
	}
	return t.Format(ISOLayout)
}

// roundMicro rounds t to a whole microsecond, resolving a remainder of
// exactly 500ns towards the even microsecond.
func roundMicro(t time.Time) time.Time {
	base := t.Truncate(time.Microsecond)
	rem := t.Sub(base)
	odd := (base.Nanosecond()/1000)%2 == 1
	if rem > 500*time.Nanosecond || (rem == 500*time.Nanosecond && odd) {
		base = base.Add(time.Microsecond)
	}
	return base
}

// DurationMillis converts the span between two epoch-second timestamps into
// milliseconds rounded to three decimal places.
func DurationMillis(start, end float64) float64 {
	return math.Round((end-start)*1000*1000) / 1000
}
