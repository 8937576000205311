// Package cart holds the session-scoped cart/booking aggregate shared by the
// booking and shop services: line item mutations, pricing and checkout.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("item not found")
	ErrEmpty             = errors.New("cart is empty")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// CatalogItem is the read-only projection of a room or product.
type CatalogItem struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Capacity  int             `json:"capacity,omitempty"`
	Stock     int             `json:"stock,omitempty"`
	ImageURL  string          `json:"image_url,omitempty"`
}

// Catalog resolves catalog items. Implementations return an error wrapping
// ErrNotFound when the id does not exist.
type Catalog interface {
	FindItem(ctx context.Context, id uint) (*CatalogItem, error)
}

// Stay is the date range of a booking line. Dates are ISO (YYYY-MM-DD) once
// normalized; anything else is kept verbatim and priced as a single night.
type Stay struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
	Guests   int    `json:"guests"`
}

func (s *Stay) sameRange(o *Stay) bool {
	return s.CheckIn == o.CheckIn && s.CheckOut == o.CheckOut
}

// LineItem is one entry of a visitor's cart. UnitPrice is captured when the
// line is added and is never refreshed from the catalog.
type LineItem struct {
	ItemID    uint            `json:"item_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	Stay      *Stay           `json:"stay,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Dated reports whether the line is priced per night.
func (l LineItem) Dated() bool { return l.Stay != nil }

// Cart is the ordered list of line items kept in a session.
type Cart struct {
	Items []LineItem `json:"items"`
}

// MaxQuantity bounds a single line. Larger requests are clamped.
const MaxQuantity = 10_000

// addCapped returns a+b clamped to [0, MaxQuantity] without overflowing.
func addCapped(a, b int) int {
	switch {
	case b > 0 && a > MaxQuantity-b:
		return MaxQuantity
	case b < 0 && a+b < 0:
		return 0
	}
	return a + b
}

// Len returns the number of lines.
func (c *Cart) Len() int { return len(c.Items) }

// Add looks the item up in the catalog and appends a line for it, or bumps the
// quantity of an equivalent line (same item, and for stays the same dates).
// A quantity below 1 is coerced to 1 and the merged quantity never exceeds
// MaxQuantity.
func (c *Cart) Add(ctx context.Context, catalog Catalog, itemID uint, quantity int, stay *Stay) (*LineItem, error) {
	item, err := catalog.FindItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("add item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, fmt.Errorf("add item %d: %w", itemID, ErrNotFound)
	}
	if quantity < 1 {
		quantity = 1
	}
	if quantity > MaxQuantity {
		quantity = MaxQuantity
	}

	if stay != nil {
		normalized := &Stay{
			CheckIn:  NormalizeDate(stay.CheckIn),
			CheckOut: NormalizeDate(stay.CheckOut),
			Guests:   stay.Guests,
		}
		if normalized.Guests < 1 {
			normalized.Guests = 1
		}
		stay = normalized
	}

	for i := range c.Items {
		existing := &c.Items[i]
		if existing.ItemID != itemID {
			continue
		}
		if (existing.Stay == nil) != (stay == nil) {
			continue
		}
		if stay != nil && !existing.Stay.sameRange(stay) {
			continue
		}
		existing.Quantity = addCapped(existing.Quantity, quantity)
		return existing, nil
	}

	c.Items = append(c.Items, LineItem{
		ItemID:    item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Quantity:  quantity,
		Stay:      stay,
		UnitPrice: item.UnitPrice,
	})
	return &c.Items[len(c.Items)-1], nil
}

// Remove drops every line for itemID. Missing items are ignored.
func (c *Cart) Remove(itemID uint) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ItemID != itemID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
}

// RemoveAt drops the line at index and reports whether anything was removed.
func (c *Cart) RemoveAt(index int) bool {
	if index < 0 || index >= len(c.Items) {
		return false
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	return true
}

// AdjustQuantity adds delta to the first unit-quantity line for itemID. Lines
// that drop to zero are removed, the result is clamped at MaxQuantity and
// unknown items are a no-op.
func (c *Cart) AdjustQuantity(itemID uint, delta int) {
	for i := range c.Items {
		if c.Items[i].ItemID != itemID || c.Items[i].Dated() {
			continue
		}
		c.Items[i].Quantity = addCapped(c.Items[i].Quantity, delta)
		if c.Items[i].Quantity == 0 {
			c.RemoveAt(i)
		}
		return
	}
}

// Held returns the units of itemID across all lines.
func (c *Cart) Held(itemID uint) int {
	held := 0
	for _, l := range c.Items {
		if l.ItemID == itemID {
			held = addCapped(held, l.Quantity)
		}
	}
	return held
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Items = nil
}

// Sanitize drops lines that cannot be priced. It runs whenever a cart is
// loaded back out of a session payload.
func (c *Cart) Sanitize() {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ItemID == 0 || it.Quantity < 1 || it.Quantity > MaxQuantity || it.UnitPrice.IsNegative() {
			continue
		}
		kept = append(kept, it)
	}
	c.Items = kept
}
