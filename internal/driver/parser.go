// Package driver implements a line-oriented text protocol: a thin
// external collaborator that turns whitespace-separated event lines
// into engine.Engine calls and checks a terminal result line against
// the book's final state. It exists so the engine can be driven from
// a file for interop testing, independent of the matching core itself.
package driver

import (
	"strconv"
	"strings"

	"orderbook/internal/domain"
)

// commandKind distinguishes the four line prefixes the format defines.
type commandKind int

const (
	cmdAdd commandKind = iota
	cmdModify
	cmdCancel
	cmdResult
)

// command is a single parsed line.
type command struct {
	kind commandKind

	orderID domain.OrderID
	side    domain.Side
	typ     domain.OrderType
	price   domain.Price
	qty     domain.Quantity

	// result fields, only set when kind == cmdResult.
	total int
	bids  int
	asks  int
}

// parseLine parses one non-empty line of the input format. Negative
// numerics and unrecognized tokens are returned as the bare sentinels
// domain.ErrNegativeNumeric / domain.ErrMalformedLine /
// domain.ErrUnknownSide / domain.ErrUnknownOrderType; Run wraps them
// with the offending line.
func parseLine(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, domain.ErrMalformedLine
	}

	switch fields[0] {
	case "A":
		return parseAdd(fields)
	case "M":
		return parseModify(fields)
	case "C":
		return parseCancel(fields)
	case "R":
		return parseResult(fields)
	default:
		return command{}, domain.ErrMalformedLine
	}
}

// parseAdd parses "A <side> <type> <price> <qty> <id>".
func parseAdd(fields []string) (command, error) {
	if len(fields) != 6 {
		return command{}, domain.ErrMalformedLine
	}

	side, err := parseSide(fields[1])
	if err != nil {
		return command{}, err
	}
	typ, err := parseOrderType(fields[2])
	if err != nil {
		return command{}, err
	}
	price, err := parseNonNegativeInt32(fields[3])
	if err != nil {
		return command{}, err
	}
	qty, err := parseNonNegativeUint32(fields[4])
	if err != nil {
		return command{}, err
	}
	id, err := parseNonNegativeUint64(fields[5])
	if err != nil {
		return command{}, err
	}

	return command{
		kind:    cmdAdd,
		side:    side,
		typ:     typ,
		price:   domain.Price(price),
		qty:     domain.Quantity(qty),
		orderID: domain.OrderID(id),
	}, nil
}

// parseModify parses "M <id> <side> <price> <qty>".
func parseModify(fields []string) (command, error) {
	if len(fields) != 5 {
		return command{}, domain.ErrMalformedLine
	}

	id, err := parseNonNegativeUint64(fields[1])
	if err != nil {
		return command{}, err
	}
	side, err := parseSide(fields[2])
	if err != nil {
		return command{}, err
	}
	price, err := parseNonNegativeInt32(fields[3])
	if err != nil {
		return command{}, err
	}
	qty, err := parseNonNegativeUint32(fields[4])
	if err != nil {
		return command{}, err
	}

	return command{
		kind:    cmdModify,
		orderID: domain.OrderID(id),
		side:    side,
		price:   domain.Price(price),
		qty:     domain.Quantity(qty),
	}, nil
}

// parseCancel parses "C <id>".
func parseCancel(fields []string) (command, error) {
	if len(fields) != 2 {
		return command{}, domain.ErrMalformedLine
	}
	id, err := parseNonNegativeUint64(fields[1])
	if err != nil {
		return command{}, err
	}
	return command{kind: cmdCancel, orderID: domain.OrderID(id)}, nil
}

// parseResult parses "R <total> <bids> <asks>".
func parseResult(fields []string) (command, error) {
	if len(fields) != 4 {
		return command{}, domain.ErrMalformedLine
	}
	total, err := parseNonNegativeInt(fields[1])
	if err != nil {
		return command{}, err
	}
	bids, err := parseNonNegativeInt(fields[2])
	if err != nil {
		return command{}, err
	}
	asks, err := parseNonNegativeInt(fields[3])
	if err != nil {
		return command{}, err
	}
	return command{kind: cmdResult, total: total, bids: bids, asks: asks}, nil
}

func parseSide(tok string) (domain.Side, error) {
	switch tok {
	case "B":
		return domain.Buy, nil
	case "S":
		return domain.Sell, nil
	default:
		return 0, domain.ErrUnknownSide
	}
}

func parseOrderType(tok string) (domain.OrderType, error) {
	switch tok {
	case "GoodTillCancel":
		return domain.GoodTillCancel, nil
	case "FillAndKill":
		return domain.FillAndKill, nil
	case "FillOrKill":
		return domain.FillOrKill, nil
	case "Market":
		return domain.Market, nil
	default:
		return 0, domain.ErrUnknownOrderType
	}
}

func parseNonNegativeInt(tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, domain.ErrMalformedLine
	}
	if n < 0 {
		return 0, domain.ErrNegativeNumeric
	}
	return n, nil
}

func parseNonNegativeInt32(tok string) (int32, error) {
	n, err := strconv.ParseInt(tok, 10, 32)
	if err != nil {
		return 0, domain.ErrMalformedLine
	}
	if n < 0 {
		return 0, domain.ErrNegativeNumeric
	}
	return int32(n), nil
}

func parseNonNegativeUint32(tok string) (uint32, error) {
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, domain.ErrMalformedLine
	}
	if n < 0 {
		return 0, domain.ErrNegativeNumeric
	}
	return uint32(n), nil
}

func parseNonNegativeUint64(tok string) (uint64, error) {
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, domain.ErrMalformedLine
	}
	if n < 0 {
		return 0, domain.ErrNegativeNumeric
	}
	return uint64(n), nil
}
