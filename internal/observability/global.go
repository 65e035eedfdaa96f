package observability

import (
	"context"
	"sync/atomic"
)

// current is the process-wide recorder. Hosts that can thread a *Recorder
// explicitly (or through WithRecorder) should prefer that; the accessors
// below exist for instrumentation points that have no such handle.
var current atomic.Pointer[Recorder]

// GetEventRecorder returns the process-wide recorder, creating it with opts
// on first use. Once a recorder exists, opts are ignored.
func GetEventRecorder(opts ...Option) (*Recorder, error) {
	if r := current.Load(); r != nil {
		return r, nil
	}
	r, err := NewRecorder(opts...)
	if err != nil {
		return nil, err
	}
	if !current.CompareAndSwap(nil, r) {
		return current.Load(), nil
	}
	return r, nil
}

// InitEventRecorder creates a new recorder with opts and installs it as the
// process-wide recorder. The previous recorder is not closed.
func InitEventRecorder(opts ...Option) (*Recorder, error) {
	r, err := NewRecorder(opts...)
	if err != nil {
		return nil, err
	}
	current.Store(r)
	return r, nil
}

type recorderKey struct{}

// WithRecorder returns a copy of ctx carrying r.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// FromContext returns the recorder stored by WithRecorder, or nil.
func FromContext(ctx context.Context) *Recorder {
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}
