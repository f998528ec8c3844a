// Package engine routes parsed requests to per-symbol order books: the
// Matching Engine of spec §3, §4.3, a symbol -> OrderBook map plus a
// global participant key -> symbol map for cancel routing.
package engine

import (
	"time"

	"github.com/ejyy/matchd/internal/domain"
)

// RequestKind discriminates the closed set of requests the ingress parser
// can produce (spec §9).
type RequestKind uint8

const (
	// RequestNewOrder is a new-order entry ("N" record).
	RequestNewOrder RequestKind = iota
	// RequestCancel is a cancel ("C" record).
	RequestCancel
	// RequestFlush clears all state ("F" record).
	RequestFlush
)

// Request is a fixed-size tagged union of the three request kinds,
// produced by the ingress parser and consumed by the matcher.
type Request struct {
	Kind RequestKind

	// New order fields
	Key    domain.Key
	Symbol domain.Symbol
	Price  uint32
	Qty    uint32
	Side   domain.Side

	// Cancel reuses Key; it carries no symbol (spec §3).

	// EnqueuedAt is stamped by the ingress parser the moment a request is
	// accepted onto InQ, and read back by the matcher to record
	// end-to-end enqueue-to-OutQ-publish latency (spec §4.3, §9).
	EnqueuedAt time.Time
}
