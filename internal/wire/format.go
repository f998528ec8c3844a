package wire

import (
	"strconv"
	"strings"

	"github.com/ejyy/matchd/internal/book"
)

// FormatEvent renders one book.Event as a single LF-terminated CSV line
// per spec §6.2. A single space follows each comma.
func FormatEvent(ev book.Event) string {
	var b strings.Builder
	switch ev.Kind {
	case book.EventAck:
		b.WriteString("A, ")
		writeUint(&b, ev.UserID)
		b.WriteString(", ")
		writeUint(&b, ev.UserOrderID)
		b.WriteString(", ")
		b.WriteString(ev.Symbol.String())

	case book.EventTrade:
		b.WriteString("T, ")
		writeUint(&b, ev.BuyUserID)
		b.WriteString(", ")
		writeUint(&b, ev.BuyUserOrderID)
		b.WriteString(", ")
		writeUint(&b, ev.SellUserID)
		b.WriteString(", ")
		writeUint(&b, ev.SellUserOrderID)
		b.WriteString(", ")
		writeUint(&b, ev.Price)
		b.WriteString(", ")
		writeUint(&b, ev.Qty)
		b.WriteString(", ")
		b.WriteString(ev.Symbol.String())

	case book.EventTopOfBook:
		b.WriteString("B, ")
		b.WriteString(ev.Side.String())
		b.WriteString(", ")
		if ev.Eliminated {
			b.WriteString("-, -")
		} else {
			writeUint(&b, ev.Price)
			b.WriteString(", ")
			writeUint(&b, ev.Qty)
		}
		b.WriteString(", ")
		b.WriteString(ev.Symbol.String())

	case book.EventCancelAck:
		b.WriteString("C, ")
		writeUint(&b, ev.UserID)
		b.WriteString(", ")
		writeUint(&b, ev.UserOrderID)
		b.WriteString(", ")
		b.WriteString(ev.Symbol.String())
	}

	b.WriteByte('\n')
	return b.String()
}

func writeUint(b *strings.Builder, v uint32) {
	b.WriteString(strconv.FormatUint(uint64(v), 10))
}
