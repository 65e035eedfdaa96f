package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valter-silva-au/evtrace/pkg/models"
)

// Observer is notified of every record after it has been written.
type Observer interface {
	Observe(rec models.EventRecord)
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSink sets the file records are appended to.
func WithSink(path string) Option {
	return func(r *Recorder) {
		if path != "" {
			r.sink = path
		}
	}
}

// WithChannel sets the channel name the sink is bound under.
func WithChannel(name string) Option {
	return func(r *Recorder) {
		if name != "" {
			r.channel = name
		}
	}
}

// WithFileLock makes every write hold an exclusive flock on the sink, for
// sinks shared between processes.
func WithFileLock(enabled bool) Option {
	return func(r *Recorder) {
		r.fileLock = enabled
	}
}

// WithObserver registers an observer for written records.
func WithObserver(o Observer) Option {
	return func(r *Recorder) {
		r.observer = o
	}
}

// WithLogger sets the logger used for the recorder's own diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// Recorder emits request-scoped trace records to a channel-bound sink.
// It is safe for concurrent use; lines from concurrent calls are serialized
// per write but their relative order is unspecified.
type Recorder struct {
	mu       sync.RWMutex
	sink     string
	channel  string
	fileLock bool

	observer Observer
	logger   *slog.Logger
	now      func() time.Time
}

// NewRecorder creates a Recorder and binds its sink to its channel. Defaults
// are models.DefaultSink and models.DefaultChannel.
func NewRecorder(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		sink:    models.DefaultSink,
		channel: models.DefaultChannel,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.setup(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recorder) setup() error {
	r.mu.RLock()
	channel, sink, fileLock := r.channel, r.sink, r.fileLock
	r.mu.RUnlock()

	h, err := bindChannel(channel, sink, fileLock)
	if err != nil {
		return err
	}
	if h.path != sink {
		r.logger.Debug("channel already bound, keeping existing sink",
			"channel", channel, "sink", h.path, "requested", sink)
	}
	return nil
}

// Sink returns the configured sink path.
func (r *Recorder) Sink() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sink
}

// Channel returns the configured channel name.
func (r *Recorder) Channel() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// Reconfigure detaches every handler bound to the current channel and binds
// again with the new sink and channel. Empty arguments keep the current
// value. The Recorder keeps its identity.
func (r *Recorder) Reconfigure(sink, channel string) error {
	r.mu.Lock()
	old := r.channel
	if sink != "" {
		r.sink = sink
	}
	if channel != "" {
		r.channel = channel
	}
	r.mu.Unlock()

	if err := unbindChannel(old); err != nil {
		return fmt.Errorf("reconfiguring recorder: %w", err)
	}
	return r.setup()
}

// Close detaches and closes the sink bound to the recorder's channel.
// Other recorders sharing the channel lose their binding too.
func (r *Recorder) Close() error {
	return unbindChannel(r.Channel())
}

// Mark emits a single instant record.
func (r *Recorder) Mark(requestID, eventName string, extra models.ExtraData) error {
	return r.logEvent(requestID, eventName, models.EventInstant, r.now(), nil, extra)
}

// Range emits a start record, runs fn, and emits an end record on every
// exit path. If fn returns an error or panics, an error record carrying its
// description is emitted before the end record, and the same error (or
// panic value) is handed back to the caller. If the start record cannot be
// written, fn is not run.
func (r *Recorder) Range(requestID, eventName string, extra models.ExtraData, fn func() error) (err error) {
	scope, err := r.Begin(requestID, eventName, extra)
	if err != nil {
		return err
	}
	defer scope.Finish(&err)

	if fn == nil {
		return nil
	}
	return fn()
}

// Begin emits a start record and returns the Scope that closes it.
func (r *Recorder) Begin(requestID, eventName string, extra models.ExtraData) (*Scope, error) {
	start := r.now()
	if err := r.logEvent(requestID, eventName, models.EventStart, start, nil, extra); err != nil {
		return nil, err
	}
	return &Scope{
		rec:       r,
		requestID: requestID,
		eventName: eventName,
		extra:     extra,
		start:     start,
	}, nil
}

// logEvent builds one record and writes it as a single JSON line.
func (r *Recorder) logEvent(requestID, eventName string, typ models.EventType, at time.Time, durationMS *float64, extra models.ExtraData) error {
	rec := models.EventRecord{
		RequestID:    requestID,
		EventName:    eventName,
		EventType:    typ,
		Timestamp:    models.UnixSeconds(at),
		TimestampISO: models.FormatISO(at),
		DurationMS:   durationMS,
		ExtraData:    extra,
	}

	line, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	h, err := channelHandler(r.Channel())
	if err != nil {
		return err
	}
	if err := h.Handle(context.Background(), slog.NewRecord(at, slog.LevelInfo, line, 0)); err != nil {
		return err
	}

	if r.observer != nil {
		r.observer.Observe(rec)
	}
	return nil
}

// encodeRecord renders rec as one compact JSON line with caller text kept
// literal.
func encodeRecord(rec models.EventRecord) (string, error) {
	data, err := models.MarshalLiteral(rec)
	if err != nil {
		return "", fmt.Errorf("marshalling event: %w", err)
	}
	return string(data), nil
}
