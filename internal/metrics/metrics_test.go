package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCountersAccumulate(t *testing.T) {
	r := NewRegistry(nil)
	r.IncMessagesProcessed()
	r.IncMessagesProcessed()
	r.IncEventsPublished(3)

	processed, published := r.Counters()
	require.EqualValues(t, 2, processed)
	require.EqualValues(t, 3, published)
}

func TestLatencySnapshot(t *testing.T) {
	r := NewRegistry(nil)
	for _, d := range []time.Duration{10 * time.Microsecond, 20 * time.Microsecond, 30 * time.Microsecond} {
		r.ObserveLatency(d)
	}
	p50, p99, _ := r.LatencySnapshot()
	require.Greater(t, p50, time.Duration(0))
	require.GreaterOrEqual(t, p99, p50)
}
