// Package errs provides the small set of sentinel errors and wrapping
// helpers used across stage boundaries (spec §7). No stage lets an error
// propagate as a panic across a goroutine boundary; each wraps, logs, and
// either continues (malformed record, unknown cancel target) or, for a
// fatal condition (egress write failure), signals the pipeline controller
// to stop.
package errs

import "github.com/pkg/errors"

// Sentinel causes, inspected with errors.Is after unwrapping.
var (
	// ErrMalformedRecord marks an ingress record that failed to parse.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrOversizeSymbol marks a symbol longer than domain.MaxSymbolLen.
	ErrOversizeSymbol = errors.New("oversize symbol")
	// ErrZeroQuantity marks a new-order record with quantity == 0.
	ErrZeroQuantity = errors.New("zero quantity")
)

// Wrap annotates err with a message, preserving the original cause for
// errors.Is/As and for logging both the proximate cause and the site.
func Wrap(err error, msg string) error {
	return errors.Wrap(err, msg)
}
