package cart

import (
	"errors"
	"fmt"

	"github.com/RicardoFlores201/appUni-sub000/internal/service/models/menuitem"
	"github.com/shopspring/decimal"
)

const (
	// MinQuantity is the smallest quantity a line can hold.
	MinQuantity = 1
	// MaxQuantity is the largest quantity a line can hold.
	MaxQuantity = 10
)

// ErrCrossRestaurantConflict is returned when an item from another restaurant is added to a
// non-empty cart.
var ErrCrossRestaurantConflict = errors.New("cart holds items from another restaurant")

// ConflictError carries both restaurants involved in a cross-restaurant add.
type ConflictError struct {
	CartRestaurantID string
	ItemRestaurantID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf(
		"%s: cart restaurant %q, item restaurant %q",
		ErrCrossRestaurantConflict, e.CartRestaurantID, e.ItemRestaurantID,
	)
}

func (e *ConflictError) Unwrap() error {
	return ErrCrossRestaurantConflict
}

// Line is a menu item together with its quantity.
type Line struct {
	Item     menuitem.MenuItem `json:"item"`
	Quantity int               `json:"quantity"`
}

// Total returns price times quantity.
func (l Line) Total() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered set of lines, unique by menu item id, all from one restaurant.
// A Cart is not safe for concurrent use.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem adds qty units of item. Quantities below the minimum count as one and the line is
// capped at MaxQuantity. The cart is left unchanged on conflict.
func (c *Cart) AddItem(item menuitem.MenuItem, qty int) error {
	if rid, ok := c.RestaurantID(); ok && rid != item.RestaurantID {
		return &ConflictError{CartRestaurantID: rid, ItemRestaurantID: item.RestaurantID}
	}

	qty = clamp(qty)

	if i := c.indexOf(item.ID); i >= 0 {
		c.lines[i].Quantity = clamp(c.lines[i].Quantity + qty)

		return nil
	}

	c.lines = append(c.lines, Line{Item: item, Quantity: qty})

	return nil
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it; unknown ids are ignored.
func (c *Cart) UpdateQuantity(itemID string, qty int) {
	i := c.indexOf(itemID)
	if i < 0 {
		return
	}
	if qty <= 0 {
		c.removeAt(i)

		return
	}
	c.lines[i].Quantity = clamp(qty)
}

// Increment adds one unit to a line, up to MaxQuantity.
func (c *Cart) Increment(itemID string) {
	if i := c.indexOf(itemID); i >= 0 {
		c.lines[i].Quantity = clamp(c.lines[i].Quantity + 1)
	}
}

// Decrement removes one unit from a line. A line at the minimum is removed.
func (c *Cart) Decrement(itemID string) {
	i := c.indexOf(itemID)
	if i < 0 {
		return
	}
	if c.lines[i].Quantity <= MinQuantity {
		c.removeAt(i)

		return
	}
	c.lines[i].Quantity--
}

// Remove drops a line.
func (c *Cart) Remove(itemID string) {
	if i := c.indexOf(itemID); i >= 0 {
		c.removeAt(i)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// ItemCount is the sum of all line quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}

	return n
}

// Total is the sum of all line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}

	return total
}

// RestaurantID returns the restaurant of the first line.
func (c *Cart) RestaurantID() (string, bool) {
	if len(c.lines) == 0 {
		return "", false
	}

	return c.lines[0].Item.RestaurantID, true
}

// RestaurantName returns the restaurant name of the first line, or "".
func (c *Cart) RestaurantName() string {
	if len(c.lines) == 0 {
		return ""
	}

	return c.lines[0].Item.RestaurantName
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)

	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) indexOf(itemID string) int {
	for i, l := range c.lines {
		if l.Item.ID == itemID {
			return i
		}
	}

	return -1
}

func (c *Cart) removeAt(i int) {
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

func clamp(qty int) int {
	return max(MinQuantity, min(qty, MaxQuantity))
}
