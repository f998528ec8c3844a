// Command matchd runs the matching engine as a standalone process: it
// binds a UDP socket for order-entry CSV records, runs the three-stage
// pipeline over them, and writes formatted events to a file or stdout.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ejyy/matchd/internal/config"
	"github.com/ejyy/matchd/internal/egress"
	"github.com/ejyy/matchd/internal/engine"
	"github.com/ejyy/matchd/internal/ingress"
	"github.com/ejyy/matchd/internal/logging"
	"github.com/ejyy/matchd/internal/metrics"
	"github.com/ejyy/matchd/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "matchd:", err)
		return 2
	}

	log := logging.New(os.Stderr, cfg.LogLevel)

	sock, err := ingress.Listen(cfg.ListenAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.ListenAddr).Msg("bind ingress socket")
		return 1
	}
	defer sock.Close()

	writer, err := egress.Open(cfg.OutputPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.OutputPath).Msg("open egress output")
		return 1
	}
	defer writer.Close()

	promReg := prometheus.NewRegistry()
	mx := metrics.NewRegistry(promReg)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = startMetricsServer(cfg.MetricsAddr, promReg, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	ctrl := pipeline.New(pipeline.Config{
		Socket:      sock,
		Writer:      writer,
		Engine:      engine.NewMatchingEngine(),
		Metrics:     mx,
		Logger:      log,
		InCapacity:  cfg.InQueueCapacity,
		OutCapacity: cfg.OutQueueCapacity,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("listen", cfg.ListenAddr).Str("output", cfg.OutputPath).Msg("matchd starting")
	if err := ctrl.Run(ctx); err != nil {
		log.Error().Err(err).Msg("pipeline exited with error")
		return 1
	}

	processed, published := mx.Counters()
	p50, p99, p999 := mx.LatencySnapshot()
	log.Info().
		Uint64("messages_processed", processed).
		Uint64("events_published", published).
		Dur("latency_p50", p50).
		Dur("latency_p99", p99).
		Dur("latency_p999", p999).
		Msg("matchd stopped")
	return 0
}

// startMetricsServer serves /metrics (Prometheus) and /healthz (liveness)
// on addr, logging any unexpected listen/serve failure in the background
// (spec §4.6 "Report counters").
func startMetricsServer(addr string, reg *prometheus.Registry, log zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	return srv
}
