package engine

import (
	"github.com/ejyy/matchd/internal/book"
	"github.com/ejyy/matchd/internal/domain"
)

// MatchingEngine owns every symbol's order book plus the global
// participant-key -> symbol map cancel requests are routed through (cancel
// requests carry no symbol, spec §3). It is mutated exclusively by the
// matcher goroutine; no internal locking is required (spec §5).
type MatchingEngine struct {
	books     map[domain.Symbol]*book.OrderBook
	keySymbol map[domain.Key]domain.Symbol
	nextSeq   uint64
}

// NewMatchingEngine returns an empty engine. Order books are created
// lazily on first use (spec §3).
func NewMatchingEngine() *MatchingEngine {
	return &MatchingEngine{
		books:     make(map[domain.Symbol]*book.OrderBook),
		keySymbol: make(map[domain.Key]domain.Symbol),
	}
}

func (e *MatchingEngine) bookFor(symbol domain.Symbol) *book.OrderBook {
	b, ok := e.books[symbol]
	if !ok {
		b = book.NewOrderBook(symbol)
		e.books[symbol] = b
	}
	return b
}

// ProcessNewOrder routes a new-order request to its symbol's book,
// registering the participant key for later cancel routing and assigning
// the order its monotonic arrival sequence number (spec §4.3, §4.4
// "Time priority determinism").
//
// A duplicate (user_id, user_order_id) key that already maps to a symbol
// retains its existing mapping rather than being overwritten, the
// conservative resolution of spec §9's open question on duplicate
// new-order keys, recorded in DESIGN.md.
func (e *MatchingEngine) ProcessNewOrder(req Request, out []book.Event) []book.Event {
	if _, exists := e.keySymbol[req.Key]; !exists {
		e.keySymbol[req.Key] = req.Symbol
	}

	orderType := domain.Limit
	if req.Price == 0 {
		orderType = domain.Market
	}

	e.nextSeq++
	o := book.Order{
		Key:          req.Key,
		Symbol:       req.Symbol,
		Price:        req.Price,
		OrigQty:      req.Qty,
		RemainingQty: req.Qty,
		Side:         req.Side,
		Type:         orderType,
		Seq:          e.nextSeq,
	}

	b := e.bookFor(req.Symbol)
	return b.AddOrder(o, out)
}

// ProcessCancel routes a cancel request to the book of the symbol the key
// was first registered under, if any, then removes the routing entry. A Cancel-Ack
// is emitted unconditionally, even when the key is unknown, for client
// observability (spec §4.3).
func (e *MatchingEngine) ProcessCancel(key domain.Key, out []book.Event) []book.Event {
	symbol, ok := e.keySymbol[key]
	if !ok {
		return append(out, book.Event{Kind: book.EventCancelAck, UserID: key.UserID, UserOrderID: key.UserOrderID})
	}

	b := e.bookFor(symbol)
	out = b.Cancel(key, out)
	delete(e.keySymbol, key)
	return out
}

// ProcessFlush destroys every order book and clears both maps. No events
// are emitted (spec §4.3).
func (e *MatchingEngine) ProcessFlush() {
	e.books = make(map[domain.Symbol]*book.OrderBook)
	e.keySymbol = make(map[domain.Key]domain.Symbol)
}

// SymbolCount reports how many order books currently exist, for tests and
// diagnostics.
func (e *MatchingEngine) SymbolCount() int {
	return len(e.books)
}
