package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/valter-silva-au/evtrace/pkg/models"
)

// PromObserver counts written records and tracks range durations in
// Prometheus collectors. It exposes nothing over the network; the host
// decides how the registry is served.
type PromObserver struct {
	events    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewPromObserver creates the collectors under namespace and registers them
// with reg.
func NewPromObserver(reg prometheus.Registerer, namespace string) (*PromObserver, error) {
	o := &PromObserver{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Trace records written, by event name and type.",
			},
			[]string{"event_name", "event_type"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "range_duration_seconds",
				Help:      "Duration of completed ranges.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
			},
			[]string{"event_name"},
		),
	}

	for _, c := range []prometheus.Collector{o.events, o.durations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering event collectors: %w", err)
		}
	}
	return o, nil
}

// Observe implements Observer.
func (o *PromObserver) Observe(rec models.EventRecord) {
	o.events.WithLabelValues(rec.EventName, string(rec.EventType)).Inc()
	if rec.EventType == models.EventEnd && rec.DurationMS != nil {
		o.durations.WithLabelValues(rec.EventName).Observe(*rec.DurationMS / 1000)
	}
}
