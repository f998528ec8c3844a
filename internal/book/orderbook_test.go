package book

import (
	"testing"

	"github.com/ejyy/matchd/internal/domain"
	"github.com/stretchr/testify/require"
)

func sym(t *testing.T, s string) domain.Symbol {
	t.Helper()
	symbol, ok := domain.NewSymbol(s)
	require.True(t, ok, "symbol %q should be valid", s)
	return symbol
}

func key(user, order uint32) domain.Key {
	return domain.Key{UserID: user, UserOrderID: order}
}

func limit(k domain.Key, s domain.Symbol, side domain.Side, price, qty uint32) Order {
	return Order{Key: k, Symbol: s, Side: side, Price: price, OrigQty: qty, RemainingQty: qty, Type: domain.Limit}
}

func market(k domain.Key, s domain.Symbol, side domain.Side, qty uint32) Order {
	return Order{Key: k, Symbol: s, Side: side, Price: 0, OrigQty: qty, RemainingQty: qty, Type: domain.Market}
}

// Scenario 1 (spec §8): simple cross, aggressor fully consumed.
func TestSimpleCross(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.AddOrder(limit(key(1, 1), s, domain.Sell, 100, 50), events)
	events = b.AddOrder(limit(key(2, 2), s, domain.Buy, 100, 50), events)

	require.Len(t, events, 5)
	require.Equal(t, EventAck, events[0].Kind)
	require.Equal(t, EventTopOfBook, events[1].Kind)
	require.Equal(t, domain.Sell, events[1].Side)
	require.EqualValues(t, 100, events[1].Price)
	require.EqualValues(t, 50, events[1].Qty)

	require.Equal(t, EventAck, events[2].Kind)

	require.Equal(t, EventTrade, events[3].Kind)
	require.EqualValues(t, 2, events[3].BuyUserID)
	require.EqualValues(t, 1, events[3].SellUserID)
	require.EqualValues(t, 100, events[3].Price)
	require.EqualValues(t, 50, events[3].Qty)

	require.Equal(t, EventTopOfBook, events[4].Kind)
	require.Equal(t, domain.Sell, events[4].Side)
	require.True(t, events[4].Eliminated)

	require.True(t, b.IsEmpty())
}

// Scenario 2 (spec §8): partial fill leaves a resting residual.
func TestPartialFillLeavesResidual(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.AddOrder(limit(key(1, 1), s, domain.Sell, 100, 50), events)
	events = b.AddOrder(limit(key(2, 2), s, domain.Buy, 100, 30), events)

	last := events[len(events)-1]
	require.Equal(t, EventTopOfBook, last.Kind)
	require.Equal(t, domain.Sell, last.Side)
	require.False(t, last.Eliminated)
	require.EqualValues(t, 100, last.Price)
	require.EqualValues(t, 20, last.Qty)

	level, ok := b.asks.find(100)
	require.True(t, ok)
	require.EqualValues(t, 20, b.asks.levels[level].TotalQty)
}

// Scenario 3 (spec §8): time priority, earliest resting orders fill first.
func TestTimePriorityAtSamePrice(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.AddOrder(limit(key(1, 1), s, domain.Sell, 100, 10), events)
	events = b.AddOrder(limit(key(2, 2), s, domain.Sell, 100, 20), events)
	events = b.AddOrder(limit(key(3, 3), s, domain.Sell, 100, 30), events)
	events = events[:0]

	events = b.AddOrder(market(key(9, 10), s, domain.Buy, 25), events)

	var trades []Event
	for _, ev := range events {
		if ev.Kind == EventTrade {
			trades = append(trades, ev)
		}
	}
	require.Len(t, trades, 2)
	require.EqualValues(t, 1, trades[0].SellUserID)
	require.EqualValues(t, 10, trades[0].Qty)
	require.EqualValues(t, 2, trades[1].SellUserID)
	require.EqualValues(t, 15, trades[1].Qty)

	idx, ok := b.asks.find(100)
	require.True(t, ok)
	require.EqualValues(t, 35, b.asks.levels[idx].TotalQty)
}

// Scenario 4 (spec §8): cancelling the sole order empties and elides TOB.
func TestCancelSoleOrderElidesTopOfBook(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.AddOrder(limit(key(1, 1), s, domain.Buy, 100, 50), events)
	require.Len(t, events, 2)
	require.Equal(t, EventAck, events[0].Kind)
	require.Equal(t, EventTopOfBook, events[1].Kind)

	events = events[:0]
	events = b.Cancel(key(1, 1), events)
	require.Len(t, events, 2)
	require.Equal(t, EventCancelAck, events[0].Kind)
	require.Equal(t, EventTopOfBook, events[1].Kind)
	require.True(t, events[1].Eliminated)
	require.True(t, b.IsEmpty())
}

func TestCancelUnknownOrderStillEmitsAck(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.Cancel(key(7, 7), events)
	require.Len(t, events, 1)
	require.Equal(t, EventCancelAck, events[0].Kind)
}

func TestMarketBuyAgainstEmptyBookNoTrade(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.AddOrder(market(key(1, 1), s, domain.Buy, 10), events)

	require.Len(t, events, 1)
	require.Equal(t, EventAck, events[0].Kind)
	require.True(t, b.IsEmpty())
}

func TestMarketOrderResidualIsDiscardedNotRested(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.AddOrder(limit(key(1, 1), s, domain.Sell, 100, 10), events)
	events = events[:0]
	events = b.AddOrder(market(key(2, 2), s, domain.Buy, 50), events)

	var trades int
	for _, ev := range events {
		if ev.Kind == EventTrade {
			trades++
		}
	}
	require.Equal(t, 1, trades)
	require.True(t, b.asks.isEmpty(), "market residual must not rest")
}

func TestCrossedBookNeverOccurs(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.AddOrder(limit(key(1, 1), s, domain.Sell, 105, 10), events)
	events = b.AddOrder(limit(key(2, 2), s, domain.Buy, 110, 20), events)

	bestBid := b.bids.best()
	bestAsk := b.asks.best()
	require.NotNil(t, bestBid)
	require.Nil(t, bestAsk) // fully consumed, ask side empty
	require.EqualValues(t, 110, bestBid.Price)
	require.EqualValues(t, 10, bestBid.TotalQty)
}

func TestMultiLevelSweepOrdersTradesByPriceThenFIFO(t *testing.T) {
	s := sym(t, "IBM")
	b := NewOrderBook(s)

	var events []Event
	events = b.AddOrder(limit(key(1, 1), s, domain.Sell, 100, 10), events)
	events = b.AddOrder(limit(key(2, 2), s, domain.Sell, 101, 10), events)
	events = b.AddOrder(limit(key(3, 3), s, domain.Sell, 102, 10), events)
	events = events[:0]

	events = b.AddOrder(limit(key(9, 9), s, domain.Buy, 102, 30), events)

	var trades []Event
	for _, ev := range events {
		if ev.Kind == EventTrade {
			trades = append(trades, ev)
		}
	}
	require.Len(t, trades, 3)
	require.EqualValues(t, 100, trades[0].Price)
	require.EqualValues(t, 101, trades[1].Price)
	require.EqualValues(t, 102, trades[2].Price)
}
