package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the persisted cart document. There is at most one per user ID.
// Version starts at 1 and grows by one on every committed item rewrite.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// CartItem is one product line in a cart. Quantity is at least 1 for every
// item that is present. Price is stored exactly as the client sent it.
type CartItem struct {
	ProductID ProductID       `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Price     json.RawMessage `json:"price"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// ItemAttributes are the descriptive fields of a cart item. The cart logic
// never inspects them.
type ItemAttributes struct {
	Name  string
	Price json.RawMessage
	Image string
}

// NewCart creates a cart holding a single item.
func NewCart(userID string, item CartItem, now time.Time) *Cart {
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{item},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewCartItem builds an item from its key, attributes and quantity.
func NewCartItem(id ProductID, attrs ItemAttributes, quantity int) CartItem {
	return CartItem{
		ProductID: id,
		Name:      attrs.Name,
		Price:     attrs.Price,
		Image:     attrs.Image,
		Quantity:  quantity,
	}
}

// FindItemIndex returns the index of the item keyed by id, or -1.
func (c *Cart) FindItemIndex(id ProductID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == id {
			return i
		}
	}
	return -1
}

// ItemCount returns the total number of units in the cart.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Subtotal sums price times quantity over all items whose price reads as a
// number, either a JSON number or a numeric string. Other prices are skipped.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		unit, ok := NumericPrice(item.Price)
		if !ok {
			continue
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// NumericPrice reads raw as a decimal amount. It reports false for null,
// non-numeric text and values with an out-of-range exponent.
func NumericPrice(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Zero, false
	}
	text := string(raw)
	var s string
	if json.Unmarshal(raw, &s) == nil {
		text = s
	}
	d, err := decimal.NewFromString(text)
	if err != nil || !withinExponent(d) {
		return decimal.Zero, false
	}
	return d, true
}

// Normalize rewrites the item list so it satisfies the cart invariants:
// duplicate product IDs are merged into the first occurrence and items with a
// quantity below 1 or an empty product ID are dropped. Order is preserved.
func (c *Cart) Normalize() {
	items := make([]CartItem, 0, len(c.Items))
	index := make(map[ProductID]int, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID.IsZero() || item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ProductID]; ok {
			items[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(items)
		items = append(items, item)
	}
	c.Items = items
}

// CloneItems returns a copy of the item slice that is never nil.
func (c *Cart) CloneItems() []CartItem {
	out := make([]CartItem, len(c.Items))
	copy(out, c.Items)
	return out
}
