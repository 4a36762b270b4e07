package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxItemQuantity bounds the quantity of a single cart item.
const MaxItemQuantity = 10_000

// ErrInvalidQuantity is returned when a quantity is not an integral JSON number.
var ErrInvalidQuantity = errors.New("quantity must be a number")

// CoerceQuantity converts a loosely typed add-to-cart quantity into an item
// count. Numbers and numeric strings are accepted and truncated toward zero;
// anything missing, malformed, written with an out-of-range exponent or below
// 1 becomes 1. Values above
// MaxItemQuantity come back as MaxItemQuantity+1 so the caller rejects them.
func CoerceQuantity(raw json.RawMessage) int {
	d, ok := decodeLooseNumber(raw)
	if !ok {
		return 1
	}
	n := d.Truncate(0)
	if n.LessThan(decimal.NewFromInt(1)) {
		return 1
	}
	if n.GreaterThan(decimal.NewFromInt(MaxItemQuantity)) {
		return MaxItemQuantity + 1
	}
	return int(n.IntPart())
}

// ParseQuantity decodes a set-quantity value. Only JSON numbers with an
// integral value and an exponent within ±64 are accepted; zero and negative
// values are allowed and mean "remove the item".
func ParseQuantity(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' || bytes.Equal(raw, []byte("null")) {
		return 0, ErrInvalidQuantity
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, ErrInvalidQuantity
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil || !withinExponent(d) || !d.IsInteger() {
		return 0, ErrInvalidQuantity
	}
	if d.Abs().GreaterThan(decimal.NewFromInt(MaxItemQuantity)) {
		if d.IsNegative() {
			return 0, nil
		}
		return MaxItemQuantity + 1, nil
	}
	return int(d.IntPart()), nil
}

func decodeLooseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return decimal.Zero, false
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Zero, false
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return decimal.Zero, false
		}
		text = n.String()
	}

	d, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil || !withinExponent(d) {
		return decimal.Zero, false
	}
	return d, true
}
