// Package logging builds the structured loggers used by every pipeline
// stage. Each stage gets its own child logger (tagged with a "stage"
// field) so warnings about dropped records or queue-full events can be
// attributed at a glance.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// New builds a root zerolog.Logger writing to w at the given level. An
// unrecognized level string falls back to "info".
func New(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Stage returns a child logger tagged with the owning stage's name, e.g.
// "ingress", "matcher", "egress", "controller".
func Stage(root zerolog.Logger, name string) zerolog.Logger {
	return root.With().Str("stage", name).Logger()
}

// Default returns a logger writing to stderr at info level, used when the
// caller hasn't configured one explicitly (e.g. in tests).
func Default() zerolog.Logger {
	return New(os.Stderr, "info")
}
