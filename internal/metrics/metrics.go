// Package metrics provides the observability surface layered on top of
// the matching core (spec §4.6 "Report counters", §9 request-latency
// histogram). Nothing in the matching core depends on this package; it
// only reads counters and latencies the pipeline already maintains and
// republishes them as Prometheus metrics plus an HdrHistogram.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every counter/gauge/histogram the pipeline reports.
type Registry struct {
	MessagesProcessed prometheus.Counter
	EventsPublished   prometheus.Counter
	InQueueDrops      prometheus.Counter
	OutQueueDrops     prometheus.Counter
	MalformedRecords  prometheus.Counter

	latencyMu sync.Mutex
	latency   *hdrhistogram.Histogram

	messagesProcessed uint64
	eventsPublished   uint64
}

// NewRegistry builds a Registry and registers its collectors with reg.
// Pass prometheus.NewRegistry() in production, or nil to skip
// registration entirely (useful in tests that only care about the
// in-process counters).
func NewRegistry(reg *prometheus.Registry) *Registry {
	r := &Registry{
		MessagesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchd_messages_processed_total",
			Help: "Total requests dispatched by the matcher.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchd_events_published_total",
			Help: "Total events written by the egress formatter.",
		}),
		InQueueDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchd_in_queue_drops_total",
			Help: "Ingress records dropped because InQ stayed full past the retry budget.",
		}),
		OutQueueDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchd_out_queue_drops_total",
			Help: "Matcher events dropped because OutQ stayed full past the retry budget.",
		}),
		MalformedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matchd_malformed_records_total",
			Help: "Ingress records skipped for failing to parse.",
		}),
		latency: hdrhistogram.New(1, int64(10*time.Second/time.Nanosecond), 3),
	}

	if reg != nil {
		reg.MustRegister(r.MessagesProcessed, r.EventsPublished, r.InQueueDrops, r.OutQueueDrops, r.MalformedRecords)
	}
	return r
}

// ObserveLatency records one request's enqueue-to-publish latency.
func (r *Registry) ObserveLatency(d time.Duration) {
	r.latencyMu.Lock()
	_ = r.latency.RecordValue(int64(d))
	r.latencyMu.Unlock()
}

// LatencySnapshot returns p50/p99/p99.9 of recorded latencies.
func (r *Registry) LatencySnapshot() (p50, p99, p999 time.Duration) {
	r.latencyMu.Lock()
	defer r.latencyMu.Unlock()
	return time.Duration(r.latency.ValueAtQuantile(50)),
		time.Duration(r.latency.ValueAtQuantile(99)),
		time.Duration(r.latency.ValueAtQuantile(99.9))
}

// IncMessagesProcessed bumps both the Prometheus counter and the
// in-process tally the controller reports on shutdown (spec §4.6).
func (r *Registry) IncMessagesProcessed() {
	r.MessagesProcessed.Inc()
	atomic.AddUint64(&r.messagesProcessed, 1)
}

// IncEventsPublished mirrors IncMessagesProcessed for published events.
func (r *Registry) IncEventsPublished(n int) {
	if n <= 0 {
		return
	}
	r.EventsPublished.Add(float64(n))
	atomic.AddUint64(&r.eventsPublished, uint64(n))
}

// Counters returns the plain in-process totals, independent of whether a
// Prometheus registry was attached.
func (r *Registry) Counters() (messagesProcessed, eventsPublished uint64) {
	return atomic.LoadUint64(&r.messagesProcessed), atomic.LoadUint64(&r.eventsPublished)
}
