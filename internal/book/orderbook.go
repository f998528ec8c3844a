package book

import "github.com/ejyy/matchd/internal/domain"

// topSnapshot is the last emitted (price, total quantity) for one side of
// one book, used for top-of-book change detection (spec §4.4).
type topSnapshot struct {
	present bool
	price   uint32
	qty     uint64
}

// indexEntry is what the order index stores per resting order: which side
// it rests on (needed because cancel requests carry no side) and a direct
// handle to its list node.
type indexEntry struct {
	side domain.Side
	node *restingOrder
}

// OrderBook is a single symbol's limit order book: two side ladders, an
// order index for O(1) cancel-by-key, and the previous-top-of-book
// snapshot used for change detection (spec §3).
type OrderBook struct {
	Symbol domain.Symbol

	bids *ladder
	asks *ladder

	index map[domain.Key]indexEntry

	prevTop [2]topSnapshot // indexed by domain.Side
}

// NewOrderBook returns an empty order book for the given symbol.
func NewOrderBook(symbol domain.Symbol) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		bids:   newLadder(domain.Buy),
		asks:   newLadder(domain.Sell),
		index:  make(map[domain.Key]indexEntry),
	}
}

func (b *OrderBook) ladderFor(side domain.Side) *ladder {
	if side == domain.Buy {
		return b.bids
	}
	return b.asks
}

// AddOrder processes a new order: emits an ACK, matches it against the
// opposite side, then rests any Limit residual. Events are appended to
// out (a caller-owned scratch buffer, reused across calls to avoid
// per-request allocation) in emission order: ACK, then zero or more
// Trades, then top-of-book updates (spec §4.4).
func (b *OrderBook) AddOrder(o Order, out []Event) []Event {
	out = append(out, Event{
		Kind:        EventAck,
		Symbol:      o.Symbol,
		UserID:      o.Key.UserID,
		UserOrderID: o.Key.UserOrderID,
	})

	out = b.match(&o, out)

	if o.RemainingQty > 0 && o.Type == domain.Limit {
		b.rest(o)
	}
	// Market-order residuals are discarded, never rested (spec §4.4, §9).

	out = b.checkTopOfBook(out)
	return out
}

// match walks the opposite-side ladder from best price, filling the
// incoming order until it is exhausted, the book no longer crosses, or
// liquidity runs out.
func (b *OrderBook) match(o *Order, out []Event) []Event {
	opp := b.ladderFor(o.Side.Opposite())

	for o.RemainingQty > 0 {
		level := opp.best()
		if level == nil {
			break
		}
		if !canCross(o, level.Price) {
			break
		}

		out = b.matchLevel(o, level, out)

		if level.Empty() {
			opp.removeIfEmpty(level.Price)
		}
	}
	return out
}

func canCross(o *Order, oppositePrice uint32) bool {
	if o.Type == domain.Market {
		return true
	}
	if o.Side == domain.Buy {
		return o.Price >= oppositePrice
	}
	return o.Price <= oppositePrice
}

// matchLevel executes trades between the incoming order and resting
// orders at one price level, walking from the head (oldest, highest
// priority) until the incoming order is filled or the level is exhausted.
func (b *OrderBook) matchLevel(o *Order, level *PriceLevel, out []Event) []Event {
	n := level.head
	for n != nil && o.RemainingQty > 0 {
		resting := &n.order
		qty := min32(o.RemainingQty, resting.RemainingQty)

		out = append(out, tradeEvent(o, resting, level.Price, qty))

		o.RemainingQty -= qty
		resting.RemainingQty -= qty
		level.TotalQty -= uint64(qty)

		next := n.next
		if resting.RemainingQty == 0 {
			level.unlink(n)
			delete(b.index, resting.Key)
		}
		n = next
	}
	return out
}

func tradeEvent(aggressor, passive *Order, price uint32, qty uint32) Event {
	ev := Event{
		Kind:   EventTrade,
		Symbol: aggressor.Symbol,
		Price:  price,
		Qty:    qty,
	}
	buy, sell := aggressor, passive
	if aggressor.Side == domain.Sell {
		buy, sell = passive, aggressor
	}
	ev.BuyUserID, ev.BuyUserOrderID = buy.Key.UserID, buy.Key.UserOrderID
	ev.SellUserID, ev.SellUserOrderID = sell.Key.UserID, sell.Key.UserOrderID
	return ev
}

// rest appends the order's residual to the tail of its own-side price
// level (creating the level if necessary) and registers it in the index.
func (b *OrderBook) rest(o Order) {
	ld := b.ladderFor(o.Side)
	level := ld.getOrCreate(o.Price)

	n := &restingOrder{order: o}
	level.pushBack(n)

	b.index[o.Key] = indexEntry{side: o.Side, node: n}
}

// Cancel removes a resting order by key, emitting a Cancel-Ack regardless
// of whether the order existed (spec §4.3, client-observability guarantee)
// followed by a top-of-book check.
func (b *OrderBook) Cancel(key domain.Key, out []Event) []Event {
	entry, ok := b.index[key]
	if !ok {
		out = append(out, Event{Kind: EventCancelAck, Symbol: b.Symbol, UserID: key.UserID, UserOrderID: key.UserOrderID})
		return b.checkTopOfBook(out)
	}

	ld := b.ladderFor(entry.side)
	level := entry.node.level
	price := level.Price

	level.unlink(entry.node)
	delete(b.index, key)
	ld.removeIfEmpty(price)

	out = append(out, Event{Kind: EventCancelAck, Symbol: b.Symbol, UserID: key.UserID, UserOrderID: key.UserOrderID})
	return b.checkTopOfBook(out)
}

// checkTopOfBook compares the current best (price, total quantity) on
// each side against the stored snapshot, emitting a change (or
// elimination) event when it differs, Buy before Sell (spec §4.4).
func (b *OrderBook) checkTopOfBook(out []Event) []Event {
	out = b.checkSide(domain.Buy, b.bids, out)
	out = b.checkSide(domain.Sell, b.asks, out)
	return out
}

func (b *OrderBook) checkSide(side domain.Side, ld *ladder, out []Event) []Event {
	cur := topSnapshot{}
	if level := ld.best(); level != nil {
		cur = topSnapshot{present: true, price: level.Price, qty: level.TotalQty}
	}

	prev := b.prevTop[side]
	if cur == prev {
		return out
	}
	b.prevTop[side] = cur

	ev := Event{Kind: EventTopOfBook, Symbol: b.Symbol, Side: side}
	if cur.present {
		ev.Price = cur.price
		ev.Qty = uint32(cur.qty)
	} else {
		ev.Eliminated = true
	}
	return append(out, ev)
}

// IsEmpty reports whether the book has no resting orders on either side.
func (b *OrderBook) IsEmpty() bool {
	return b.bids.isEmpty() && b.asks.isEmpty()
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
