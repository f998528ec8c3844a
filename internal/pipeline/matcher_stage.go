package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ejyy/matchd/internal/book"
	"github.com/ejyy/matchd/internal/engine"
	"github.com/ejyy/matchd/internal/metrics"
	"github.com/ejyy/matchd/internal/spsc"
)

const (
	// matcherBatchSize is the target number of requests drained from inQ
	// per loop iteration before the matcher checks its stop flag again
	// (spec §4.3).
	matcherBatchSize = 32

	// outQueuePushAttempts bounds the matcher's retry budget for
	// publishing a single event; the matcher is itself the consumer of
	// inQ, so it can afford to spend more effort here than ingress can
	// (spec §5).
	outQueuePushAttempts = 1000

	// Idle backoff tiers: sleep idleShortSleep for the first
	// idleSpinThreshold empty iterations, then fall back to the coarser
	// idleLongSleep once the queue has stayed empty for a while, to
	// avoid burning a full core on an idle exchange (spec §5).
	idleSpinThreshold = 100
	idleShortSleep    = time.Microsecond
	idleLongSleep     = 100 * time.Microsecond
)

// matcherStage drains inQ, dispatches each request to the matching
// engine, and publishes the resulting events onto outQ.
type matcherStage struct {
	inQ  *spsc.Queue[engine.Request]
	outQ *spsc.Queue[book.Event]
	eng  *engine.MatchingEngine
	log  zerolog.Logger
	mx   *metrics.Registry

	stopCh chan struct{}
	done   chan struct{}
}

func newMatcherStage(inQ *spsc.Queue[engine.Request], outQ *spsc.Queue[book.Event], eng *engine.MatchingEngine, log zerolog.Logger, mx *metrics.Registry) *matcherStage {
	return &matcherStage{
		inQ: inQ, outQ: outQ, eng: eng, log: log, mx: mx,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (s *matcherStage) start() {
	go s.run()
}

func (s *matcherStage) run() {
	defer close(s.done)
	scratch := make([]book.Event, 0, matcherBatchSize*2)
	idleIterations := 0

	for {
		select {
		case <-s.stopCh:
			s.drainFully(scratch)
			return
		default:
		}

		processed := s.drainBatch(scratch)
		if processed == 0 {
			idleIterations++
			if idleIterations <= idleSpinThreshold {
				time.Sleep(idleShortSleep)
			} else {
				time.Sleep(idleLongSleep)
			}
			continue
		}
		idleIterations = 0
	}
}

// drainBatch pops up to matcherBatchSize requests, dispatches each, and
// publishes the resulting events. Returns the number of requests
// processed.
func (s *matcherStage) drainBatch(scratch []book.Event) int {
	n := 0
	for ; n < matcherBatchSize; n++ {
		req, ok := s.inQ.Pop()
		if !ok {
			break
		}
		s.dispatch(req, scratch)
	}
	return n
}

// drainFully empties whatever remains in inQ before the matcher exits,
// per the shutdown-drain contract in spec §4.6.
func (s *matcherStage) drainFully(scratch []book.Event) {
	for {
		req, ok := s.inQ.Pop()
		if !ok {
			return
		}
		s.dispatch(req, scratch)
	}
}

func (s *matcherStage) dispatch(req engine.Request, scratch []book.Event) {
	events := scratch[:0]
	switch req.Kind {
	case engine.RequestNewOrder:
		events = s.eng.ProcessNewOrder(req, events)
	case engine.RequestCancel:
		events = s.eng.ProcessCancel(req.Key, events)
	case engine.RequestFlush:
		s.eng.ProcessFlush()
	}
	s.mx.IncMessagesProcessed()

	for _, ev := range events {
		if !retryPush(s.outQ.Push, ev, outQueuePushAttempts) {
			s.mx.OutQueueDrops.Inc()
			s.log.Warn().Msg("dropping event: out-queue full past retry budget")
			continue
		}
		s.mx.IncEventsPublished(1)
	}

	// A Flush produces no events, so there is no OutQ-publish instant to
	// measure against; every New Order and Cancel produces at least one
	// (spec §4.3, §9).
	if len(events) > 0 {
		s.mx.ObserveLatency(time.Since(req.EnqueuedAt))
	}
}

// stop signals the run loop to drain inQ one last time and exit, then
// blocks until it has done so.
func (s *matcherStage) stop() {
	close(s.stopCh)
	<-s.done
}
