// Package domain defines the wire-independent value types shared by the
// book, engine, and wire packages: symbols, sides, order types, and the
// participant key orders are addressed by.
package domain

import "fmt"

// MaxSymbolLen is the longest symbol accepted by the engine. Symbols are
// stored inline so an Order never triggers a heap allocation for its
// symbol field.
const MaxSymbolLen = 16

// Symbol is a short ASCII ticker stored inline, e.g. "IBM" or "AAPL".
type Symbol struct {
	buf [MaxSymbolLen]byte
	n   uint8
}

// NewSymbol builds a Symbol from a string, rejecting anything longer than
// MaxSymbolLen (spec: "Oversize symbol (>16 bytes)" is a malformed record).
func NewSymbol(s string) (Symbol, bool) {
	var sym Symbol
	if len(s) == 0 || len(s) > MaxSymbolLen {
		return sym, false
	}
	copy(sym.buf[:], s)
	sym.n = uint8(len(s))
	return sym, true
}

// String returns the symbol text.
func (s Symbol) String() string {
	return string(s.buf[:s.n])
}

// Side is the resting/aggressing direction of an order.
type Side uint8

const (
	// Buy is the bid side.
	Buy Side = iota
	// Sell is the ask side.
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "B"
	}
	return "S"
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderType distinguishes resting Limit orders from Market orders, which
// never rest (spec §3, §4.4).
type OrderType uint8

const (
	// Limit orders carry a non-zero price and may rest in the book.
	Limit OrderType = iota
	// Market orders carry price == 0 and match at any available price.
	Market
)

// Key identifies a participant's order: (user_id, user_order_id). Cancel
// requests are addressed by Key alone; they do not carry a symbol (spec §3).
type Key struct {
	UserID      uint32
	UserOrderID uint32
}

func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.UserID, k.UserOrderID)
}
