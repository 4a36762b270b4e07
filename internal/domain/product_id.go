package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyProductID is returned when a product identifier is missing or blank.
var ErrEmptyProductID = errors.New("product id is empty")

// ProductID is the canonical form of a product identifier and the only key
// used to match cart items. Numeric identifiers are stored in their shortest
// decimal form, so 5, "5", "5.0" and " 05 " are the same ProductID.
type ProductID string

// ParseProductID canonicalizes a raw identifier. Numeric text is normalized
// exactly with decimal arithmetic; anything else is kept verbatim after
// trimming surrounding whitespace.
func ParseProductID(raw string) (ProductID, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyProductID
	}
	if d, err := decimal.NewFromString(s); err == nil && withinExponent(d) {
		return ProductID(d.String()), nil
	}
	return ProductID(s), nil
}

// maxDecimalExponent bounds the scientific notation accepted from clients so
// an input such as "1e999999" cannot inflate into a huge key or make decimal
// rounding walk millions of digits.
const maxDecimalExponent = 64

func withinExponent(d decimal.Decimal) bool {
	exp := d.Exponent()
	return exp <= maxDecimalExponent && exp >= -maxDecimalExponent
}

// MustParseProductID is like ParseProductID but panics on an empty identifier.
func MustParseProductID(raw string) ProductID {
	id, err := ParseProductID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero reports whether the identifier is unset.
func (id ProductID) IsZero() bool {
	return id == ""
}

// IsNumeric reports whether the canonical form is a number.
func (id ProductID) IsNumeric() bool {
	if id == "" {
		return false
	}
	d, err := decimal.NewFromString(string(id))
	return err == nil && withinExponent(d) && d.String() == string(id)
}

func (id ProductID) String() string {
	return string(id)
}

// MarshalJSON writes numeric identifiers as JSON numbers and all others as strings.
func (id ProductID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts either a JSON number or a JSON string and stores the
// canonical form. JSON null leaves the identifier unset.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var raw string
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode product id: %w", err)
		}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("product id must be a string or number: %w", err)
		}
		raw = n.String()
	}

	if strings.TrimSpace(raw) == "" {
		*id = ""
		return nil
	}
	parsed, err := ParseProductID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
