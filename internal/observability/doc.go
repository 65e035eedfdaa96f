// Package observability records request-scoped trace events. A Recorder
// writes start, end, error, and instant records as JSON Lines to an
// append-only sink bound to a named channel, for later latency breakdowns
// of multi-stage request pipelines.
package observability
