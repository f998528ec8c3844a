// Package pipeline wires the three concurrent stages (ingress parser,
// matcher, egress formatter) together with the bounded SPSC queues
// between them, and implements the startup/shutdown sequencing described
// in spec §4.6.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ejyy/matchd/internal/book"
	"github.com/ejyy/matchd/internal/egress"
	"github.com/ejyy/matchd/internal/engine"
	"github.com/ejyy/matchd/internal/ingress"
	"github.com/ejyy/matchd/internal/logging"
	"github.com/ejyy/matchd/internal/metrics"
	"github.com/ejyy/matchd/internal/spsc"
)

// shutdownSettleDelay is how long the controller waits after stopping
// one stage before stopping the next, giving the downstream stage a
// window to observe and drain whatever the upstream stage already
// enqueued (spec §4.6).
const shutdownSettleDelay = 200 * time.Millisecond

// Config bundles everything the controller needs to assemble a pipeline.
type Config struct {
	Socket      *ingress.Socket
	Writer      *egress.Writer
	Engine      *engine.MatchingEngine
	Metrics     *metrics.Registry
	Logger      zerolog.Logger
	InCapacity  int
	OutCapacity int
}

// Controller owns the three stages and the queues between them.
type Controller struct {
	ingress *ingressStage
	matcher *matcherStage
	egress  *egressStage
	log     zerolog.Logger
}

// New assembles a Controller from cfg. Queues are sized per cfg's
// capacities (rounded up to a power of two by spsc.NewQueue).
func New(cfg Config) *Controller {
	inQ := spsc.NewQueue[engine.Request](cfg.InCapacity)
	outQ := spsc.NewQueue[book.Event](cfg.OutCapacity)

	return &Controller{
		ingress: newIngressStage(cfg.Socket, inQ, logging.Stage(cfg.Logger, "ingress"), cfg.Metrics),
		matcher: newMatcherStage(inQ, outQ, cfg.Engine, logging.Stage(cfg.Logger, "matcher"), cfg.Metrics),
		egress:  newEgressStage(outQ, cfg.Writer, logging.Stage(cfg.Logger, "egress")),
		log:     logging.Stage(cfg.Logger, "controller"),
	}
}

// Run starts all three stages and blocks until either ctx is cancelled
// (e.g. by a signal handler upstream) or the egress stage hits a fatal
// write error, whichever comes first, then runs the shutdown-drain
// sequence. The egress error, if that's what triggered shutdown, is
// returned so the caller can exit non-zero (spec §7).
func (c *Controller) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	// Consumers start before producers: egress before matcher before
	// ingress, so nothing is ever dropped for want of a downstream reader
	// (spec §4.6).
	c.egress.start()
	c.matcher.start()
	c.ingress.start()

	g.Go(func() error {
		select {
		case err := <-c.egress.errCh:
			return err
		case <-gctx.Done():
			return nil
		}
	})

	<-gctx.Done()
	c.log.Info().Msg("shutdown signal received, draining pipeline")

	c.ingress.stop()
	time.Sleep(shutdownSettleDelay)
	c.matcher.stop()
	time.Sleep(shutdownSettleDelay)
	egressErr := c.egress.stop()

	c.log.Info().Msg("pipeline stopped")

	if err := g.Wait(); err != nil {
		return err
	}
	return egressErr
}
