// Package wire implements the CSV wire protocol: splitting datagram
// payloads into records and parsing each into an engine.Request (spec
// §4.2, §6.1), and formatting engine/book events back into output lines
// (spec §4.5, §6.2).
package wire

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/ejyy/matchd/internal/domain"
	"github.com/ejyy/matchd/internal/engine"
	"github.com/ejyy/matchd/internal/errs"
)

// SplitRecords splits a datagram payload into individual records on LF
// boundaries. The CR of a CRLF terminator stays on the end of its record
// and is stripped later by ParseRecord. No empty record is produced after
// a final LF. A trailing partial line with no terminator is still
// returned as a record (the sender is expected to terminate every line;
// if it doesn't, ParseRecord will simply fail it as malformed or succeed
// if it happens to be complete).
func SplitRecords(payload []byte) [][]byte {
	var records [][]byte
	for len(payload) > 0 {
		idx := bytes.IndexByte(payload, '\n')
		if idx < 0 {
			records = append(records, payload)
			break
		}
		records = append(records, payload[:idx])
		payload = payload[idx+1:]
	}
	return records
}

// ParseRecord parses one trimmed CSV record into a Request. It returns
// (zero, false, nil) for blank lines and comments, which are silently
// skipped per spec §4.2, and (zero, false, err) for malformed records,
// which the caller should log and skip.
func ParseRecord(record []byte) (engine.Request, bool, error) {
	line := strings.TrimRight(strings.TrimSpace(string(record)), "\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return engine.Request{}, false, nil
	}

	fields := splitFields(line)
	if len(fields) == 0 {
		return engine.Request{}, false, nil
	}

	switch strings.TrimSpace(fields[0]) {
	case "N":
		req, err := parseNewOrder(fields)
		return req, err == nil, err
	case "C":
		req, err := parseCancel(fields)
		return req, err == nil, err
	case "F":
		return engine.Request{Kind: engine.RequestFlush}, true, nil
	default:
		return engine.Request{}, false, errs.Wrap(errs.ErrMalformedRecord, "unknown record type "+fields[0])
	}
}

func splitFields(line string) []string {
	parts := strings.Split(line, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseNewOrder parses "N, user_id, symbol, price, quantity, side, user_order_id".
func parseNewOrder(fields []string) (engine.Request, error) {
	if len(fields) != 7 {
		return engine.Request{}, errs.Wrap(errs.ErrMalformedRecord, "new order: expected 7 fields")
	}

	userID, err := parseUint32(fields[1])
	if err != nil {
		return engine.Request{}, errs.Wrap(err, "new order: user_id")
	}
	symbol, ok := domain.NewSymbol(fields[2])
	if !ok {
		return engine.Request{}, errs.Wrap(errs.ErrOversizeSymbol, "new order: symbol "+fields[2])
	}
	price, err := parseUint32(fields[3])
	if err != nil {
		return engine.Request{}, errs.Wrap(err, "new order: price")
	}
	qty, err := parseUint32(fields[4])
	if err != nil {
		return engine.Request{}, errs.Wrap(err, "new order: quantity")
	}
	if qty == 0 {
		return engine.Request{}, errs.Wrap(errs.ErrZeroQuantity, "new order: quantity must be > 0")
	}
	side, err := parseSide(fields[5])
	if err != nil {
		return engine.Request{}, err
	}
	userOrderID, err := parseUint32(fields[6])
	if err != nil {
		return engine.Request{}, errs.Wrap(err, "new order: user_order_id")
	}

	return engine.Request{
		Kind:   engine.RequestNewOrder,
		Key:    domain.Key{UserID: userID, UserOrderID: userOrderID},
		Symbol: symbol,
		Price:  price,
		Qty:    qty,
		Side:   side,
	}, nil
}

// parseCancel parses "C, user_id, user_order_id".
func parseCancel(fields []string) (engine.Request, error) {
	if len(fields) != 3 {
		return engine.Request{}, errs.Wrap(errs.ErrMalformedRecord, "cancel: expected 3 fields")
	}
	userID, err := parseUint32(fields[1])
	if err != nil {
		return engine.Request{}, errs.Wrap(err, "cancel: user_id")
	}
	userOrderID, err := parseUint32(fields[2])
	if err != nil {
		return engine.Request{}, errs.Wrap(err, "cancel: user_order_id")
	}
	return engine.Request{
		Kind: engine.RequestCancel,
		Key:  domain.Key{UserID: userID, UserOrderID: userOrderID},
	}, nil
}

func parseSide(s string) (domain.Side, error) {
	switch s {
	case "B":
		return domain.Buy, nil
	case "S":
		return domain.Sell, nil
	default:
		return 0, errs.Wrap(errs.ErrMalformedRecord, "side must be B or S, got "+s)
	}
}

func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, errs.Wrap(errs.ErrMalformedRecord, err.Error())
	}
	return uint32(v), nil
}
