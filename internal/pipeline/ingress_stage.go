package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ejyy/matchd/internal/engine"
	"github.com/ejyy/matchd/internal/ingress"
	"github.com/ejyy/matchd/internal/metrics"
	"github.com/ejyy/matchd/internal/spsc"
	"github.com/ejyy/matchd/internal/wire"
)

// inQueuePushAttempts bounds how many times the ingress stage spins
// trying to enqueue a single parsed request before dropping it (spec §5
// "Backpressure": ingress is the producer that may legitimately shed
// load rather than block the network read loop).
const inQueuePushAttempts = 100

// ingressStage reads datagrams off the wire, splits them into records,
// parses each into an engine.Request, and pushes the result onto inQ.
// Malformed records and blank/comment lines are skipped per spec §4.2.
type ingressStage struct {
	socket *ingress.Socket
	inQ    *spsc.Queue[engine.Request]
	log    zerolog.Logger
	mx     *metrics.Registry

	done chan struct{}
}

func newIngressStage(socket *ingress.Socket, inQ *spsc.Queue[engine.Request], log zerolog.Logger, mx *metrics.Registry) *ingressStage {
	return &ingressStage{socket: socket, inQ: inQ, log: log, mx: mx, done: make(chan struct{})}
}

// start launches the blocking Serve loop in its own goroutine.
func (s *ingressStage) start() {
	go func() {
		defer close(s.done)
		if err := s.socket.Serve(s.onPayload); err != nil {
			s.log.Error().Err(err).Msg("ingress socket serve failed")
		}
	}()
}

func (s *ingressStage) onPayload(payload []byte) {
	for _, record := range wire.SplitRecords(payload) {
		req, ok, err := wire.ParseRecord(record)
		if err != nil {
			s.mx.MalformedRecords.Inc()
			s.log.Warn().Err(err).Msg("skipping malformed record")
			continue
		}
		if !ok {
			continue
		}
		req.EnqueuedAt = time.Now()
		if !retryPush(s.inQ.Push, req, inQueuePushAttempts) {
			s.mx.InQueueDrops.Inc()
			s.log.Warn().Msg("dropping request: in-queue full past retry budget")
		}
	}
}

// stop closes the listening socket, which unblocks Serve, then waits for
// the goroutine to actually exit (spec §4.6 shutdown sequence: the
// controller must know ingress has fully stopped before it sleeps and
// tells the matcher to drain).
func (s *ingressStage) stop() {
	if err := s.socket.Close(); err != nil {
		s.log.Warn().Err(err).Msg("closing ingress socket")
	}
	<-s.done
}
