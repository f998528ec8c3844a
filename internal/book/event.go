package book

import "github.com/ejyy/matchd/internal/domain"

// EventKind discriminates the closed set of response events a book
// operation can emit (spec §9 "Tagged variants vs runtime polymorphism").
type EventKind uint8

const (
	// EventAck acknowledges a new order was accepted.
	EventAck EventKind = iota
	// EventTrade reports a single matched fill.
	EventTrade
	// EventTopOfBook reports a change (or elimination) of a side's best
	// price/quantity.
	EventTopOfBook
	// EventCancelAck acknowledges a cancel request, successful or not.
	EventCancelAck
)

// Event is a fixed-size tagged union carrying every field any variant
// needs, a flat struct rather than an interface per kind: the set of
// kinds is closed and fixed (spec §9).
type Event struct {
	Kind   EventKind
	Symbol domain.Symbol

	// Ack / CancelAck
	UserID      uint32
	UserOrderID uint32

	// Trade
	BuyUserID       uint32
	BuyUserOrderID  uint32
	SellUserID      uint32
	SellUserOrderID uint32
	Price           uint32
	Qty             uint32

	// TopOfBook
	Side       domain.Side
	Eliminated bool
}
