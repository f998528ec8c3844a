// Package book implements a single-symbol limit order book: price-time
// matching, cancellation, and top-of-book change detection (spec §3, §4.4).
//
// An OrderBook is owned exclusively by the matcher goroutine; it performs
// no internal locking (spec §5 "Shared resources").
package book

import "github.com/ejyy/matchd/internal/domain"

// Order is a single order as tracked by the book: either actively matching
// (transient, never stored) or resting (linked into a PriceLevel).
type Order struct {
	Key          domain.Key
	Symbol       domain.Symbol
	Price        uint32 // 0 means Market
	OrigQty      uint32
	RemainingQty uint32
	Side         domain.Side
	Type         domain.OrderType
	Seq          uint64 // monotonic arrival sequence number, assigned by the engine
}

// restingOrder is the intrusive doubly-linked-list node a resting order
// occupies inside its PriceLevel. The order index holds a pointer to this
// node directly, giving O(1) cancel-by-key (spec §4.4 "Cancel" complexity
// note) without invalidating on removal: unlink then drop the index entry,
// in one step, as spec §9 "Ownership of per-level order nodes" requires.
type restingOrder struct {
	order Order
	prev  *restingOrder
	next  *restingOrder
	level *PriceLevel
}

// PriceLevel is a FIFO queue of resting orders sharing one price on one
// side. A level exists iff its list is non-empty (spec §3).
type PriceLevel struct {
	Price    uint32
	head     *restingOrder
	tail     *restingOrder
	count    int
	TotalQty uint64
}

// Empty reports whether the level has no resting orders.
func (l *PriceLevel) Empty() bool {
	return l.count == 0
}

func (l *PriceLevel) pushBack(n *restingOrder) {
	n.level = l
	n.prev = l.tail
	n.next = nil
	if l.tail != nil {
		l.tail.next = n
	} else {
		l.head = n
	}
	l.tail = n
	l.count++
	l.TotalQty += uint64(n.order.RemainingQty)
}

func (l *PriceLevel) unlink(n *restingOrder) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next, n.level = nil, nil, nil
	l.count--
	l.TotalQty -= uint64(n.order.RemainingQty)
}
