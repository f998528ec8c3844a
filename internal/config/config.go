// Package config parses process configuration from CLI flags. It is the
// concrete implementation of the out-of-scope "CLI argument parsing"
// collaborator named in spec §1.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
)

// Config holds every knob the matchd process accepts.
type Config struct {
	// ListenAddr is the UDP address the ingress socket binds to.
	ListenAddr string
	// OutputPath is where egress writes formatted events; "-" means stdout.
	OutputPath string
	// MetricsAddr serves /metrics and /healthz; empty disables it.
	MetricsAddr string
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string
	// InQueueCapacity is the ingress->matcher queue capacity (rounded up
	// to a power of two).
	InQueueCapacity int
	// OutQueueCapacity is the matcher->egress queue capacity.
	OutQueueCapacity int
}

// Default returns the out-of-the-box configuration (spec §4.1 baseline
// capacity of 16384 for both queues).
func Default() Config {
	return Config{
		ListenAddr:       ":9000",
		OutputPath:       "-",
		MetricsAddr:      ":9100",
		LogLevel:         "info",
		InQueueCapacity:  16384,
		OutQueueCapacity: 16384,
	}
}

// Parse builds a Config from the given argument list (pass os.Args[1:] in
// production; a literal slice in tests), starting from Default().
func Parse(args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet("matchd", flag.ContinueOnError)
	fs.StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "UDP address to receive order-entry datagrams on")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "output file path, or - for stdout")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "address to serve /metrics and /healthz on; empty disables it")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.IntVar(&cfg.InQueueCapacity, "in-queue-capacity", cfg.InQueueCapacity, "ingress->matcher queue capacity (rounded up to a power of two)")
	fs.IntVar(&cfg.OutQueueCapacity, "out-queue-capacity", cfg.OutQueueCapacity, "matcher->egress queue capacity (rounded up to a power of two)")

	if err := fs.Parse(args); err != nil {
		return Config{}, errors.Wrap(err, "parse flags")
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address must not be empty")
	}
	if c.OutputPath == "" {
		return errors.New("output path must not be empty")
	}
	if c.InQueueCapacity < 2 {
		return fmt.Errorf("in-queue-capacity must be >= 2, got %d", c.InQueueCapacity)
	}
	if c.OutQueueCapacity < 2 {
		return fmt.Errorf("out-queue-capacity must be >= 2, got %d", c.OutQueueCapacity)
	}
	return nil
}
