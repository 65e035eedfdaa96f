package observability

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/evtrace/pkg/models"
)

// Scope is an open range returned by Recorder.Begin. It is not safe for
// concurrent use.
//
//	scope, err := rec.Begin(reqID, "prefill", nil)
//	if err != nil {
//		return err
//	}
//	defer scope.Finish(&err)
type Scope struct {
	rec       *Recorder
	requestID string
	eventName string
	extra     models.ExtraData
	start     time.Time

	failed bool
	ended  bool
}

// Fail emits the error record for cause. Only the first call writes; the
// returned error is a sink failure, never cause itself.
func (s *Scope) Fail(cause error) error {
	if cause == nil {
		return nil
	}
	return s.fail(cause.Error())
}

func (s *Scope) fail(desc string) error {
	if s.failed || s.ended {
		return nil
	}
	s.failed = true
	extra := s.extra.With("error", models.String(desc))
	return s.rec.logEvent(s.requestID, s.eventName, models.EventError, s.rec.now(), nil, extra)
}

// End emits the end record with the elapsed duration. Only the first call
// writes.
func (s *Scope) End() error {
	if s.ended {
		return nil
	}
	s.ended = true
	end := s.rec.now()
	d := models.DurationMillis(models.UnixSeconds(s.start), models.UnixSeconds(end))
	return s.rec.logEvent(s.requestID, s.eventName, models.EventEnd, end, &d, s.extra)
}

// Finish closes the scope and must be deferred directly. A non-nil *errp
// or a panic is recorded as an error record before the end record; the
// panic is then re-raised with its original value and *errp is left as is.
// When the block succeeded, a failure to write the end record is stored in
// *errp, or logged if errp is nil.
func (s *Scope) Finish(errp *error) {
	if p := recover(); p != nil {
		s.report(s.fail(fmt.Sprint(p)))
		s.report(s.End())
		panic(p)
	}

	var cause error
	if errp != nil {
		cause = *errp
	}
	if cause != nil {
		s.report(s.Fail(cause))
		s.report(s.End())
		return
	}

	if err := s.End(); err != nil {
		if errp == nil {
			s.report(err)
			return
		}
		*errp = err
	}
}

// report logs sink failures that cannot be returned without masking the
// caller's own error.
func (s *Scope) report(err error) {
	if err == nil {
		return
	}
	s.rec.logger.Error("recording event failed",
		"request_id", s.requestID, "event_name", s.eventName, "error", err)
}
