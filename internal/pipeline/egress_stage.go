package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ejyy/matchd/internal/book"
	"github.com/ejyy/matchd/internal/egress"
	"github.com/ejyy/matchd/internal/spsc"
	"github.com/ejyy/matchd/internal/wire"
)

// egressIdleSleep is the formatter's single idle backoff tier; it sits
// downstream of the matcher and is expected to be the least contended
// stage, so one tier is enough (spec §4.5).
const egressIdleSleep = 10 * time.Microsecond

// egressStage drains outQ, formats each event, and writes it out. A
// write failure is fatal (spec §7) and is surfaced to the controller via
// firstErr.
type egressStage struct {
	outQ *spsc.Queue[book.Event]
	w    *egress.Writer
	log  zerolog.Logger

	stopCh   chan struct{}
	done     chan struct{}
	errCh    chan error // buffered 1; fatal write error, if any
	firstErr error
}

func newEgressStage(outQ *spsc.Queue[book.Event], w *egress.Writer, log zerolog.Logger) *egressStage {
	return &egressStage{
		outQ:   outQ,
		w:      w,
		log:    log,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		errCh:  make(chan error, 1),
	}
}

func (s *egressStage) start() {
	go s.run()
}

func (s *egressStage) run() {
	defer close(s.done)

	for {
		select {
		case <-s.stopCh:
			s.drainFully()
			return
		default:
		}

		ev, ok := s.outQ.Pop()
		if !ok {
			time.Sleep(egressIdleSleep)
			continue
		}
		if !s.write(ev) {
			return
		}
	}
}

func (s *egressStage) drainFully() {
	for {
		ev, ok := s.outQ.Pop()
		if !ok {
			return
		}
		if !s.write(ev) {
			return
		}
	}
}

// write formats and writes one event, recording the first fatal error
// encountered. Returns false once a write has failed, so the caller
// stops pulling further events off a pipe that can no longer accept them.
func (s *egressStage) write(ev book.Event) bool {
	if s.firstErr != nil {
		return false
	}
	if err := s.w.WriteLine(wire.FormatEvent(ev)); err != nil {
		s.log.Error().Err(err).Msg("egress write failed, stopping formatter")
		s.firstErr = err
		s.errCh <- err
		return false
	}
	return true
}

// stop signals the run loop to drain outQ one last time and exit, then
// blocks until it has done so. Returns the first fatal write error, if any.
func (s *egressStage) stop() error {
	close(s.stopCh)
	<-s.done
	return s.firstErr
}
