package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// ErrChannelUnbound is returned when a record is emitted on a channel that
// currently has no sink bound to it.
var ErrChannelUnbound = errors.New("channel has no bound sink")

// payloadHandler is a slog.Handler that writes the record message verbatim,
// one line per record, with no level, time, or attribute decoration. The
// recorder calls Handle directly so write errors reach the caller; a
// *slog.Logger built over it (ChannelLogger) drops them like any slog sink.
type payloadHandler struct {
	path     string
	file     *os.File
	fileLock bool
	mu       sync.Mutex
}

var _ slog.Handler = (*payloadHandler)(nil)

func (h *payloadHandler) Enabled(context.Context, slog.Level) bool { return true }

// Handle writes the message and a trailing newline in a single Write call.
func (h *payloadHandler) Handle(_ context.Context, r slog.Record) error {
	line := make([]byte, 0, len(r.Message)+1)
	line = append(line, r.Message...)
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.fileLock {
		unlock, err := lockFile(h.file)
		if err != nil {
			return err
		}
		defer func() { _ = unlock() }()
	}

	if _, err := h.file.Write(line); err != nil {
		return fmt.Errorf("writing event to %s: %w", h.path, err)
	}
	return nil
}

// Attributes and groups carry no payload, so they are dropped.
func (h *payloadHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *payloadHandler) WithGroup(string) slog.Handler { return h }

func (h *payloadHandler) close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.file.Close(); err != nil {
		return fmt.Errorf("closing event sink %s: %w", h.path, err)
	}
	return nil
}

// channels maps a channel name to its single bound handler. Records emitted
// on one channel never reach another channel's sink or the default logger.
var channels = struct {
	mu       sync.Mutex
	handlers map[string]*payloadHandler
}{handlers: make(map[string]*payloadHandler)}

// bindChannel attaches a sink to channel. If the channel already has a
// handler, it is kept and no second handler is added.
func bindChannel(channel, sink string, fileLock bool) (*payloadHandler, error) {
	channels.mu.Lock()
	defer channels.mu.Unlock()

	if h, ok := channels.handlers[channel]; ok {
		return h, nil
	}

	f, err := os.OpenFile(sink, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event sink: %w", err)
	}
	h := &payloadHandler{path: sink, file: f, fileLock: fileLock}
	channels.handlers[channel] = h
	return h, nil
}

// unbindChannel detaches and closes whatever handler is bound to channel.
func unbindChannel(channel string) error {
	channels.mu.Lock()
	h, ok := channels.handlers[channel]
	delete(channels.handlers, channel)
	channels.mu.Unlock()

	if !ok {
		return nil
	}
	return h.close()
}

// channelHandler returns the handler bound to channel.
func channelHandler(channel string) (*payloadHandler, error) {
	channels.mu.Lock()
	defer channels.mu.Unlock()

	h, ok := channels.handlers[channel]
	if !ok {
		return nil, fmt.Errorf("emitting on %q: %w", channel, ErrChannelUnbound)
	}
	return h, nil
}

// ChannelSink returns the path of the sink bound to channel, or "" when the
// channel is unbound.
func ChannelSink(channel string) string {
	channels.mu.Lock()
	defer channels.mu.Unlock()

	if h, ok := channels.handlers[channel]; ok {
		return h.path
	}
	return ""
}

// ChannelLogger returns a logger that writes payload-only lines to the sink
// bound to channel, or ErrChannelUnbound. Messages logged through it bypass
// record encoding and write errors are discarded, as with any slog.Logger.
func ChannelLogger(channel string) (*slog.Logger, error) {
	h, err := channelHandler(channel)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}
