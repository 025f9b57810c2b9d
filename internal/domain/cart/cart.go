// Package cart implements the in-progress order held by a session.
//
// Every operation returns a new Cart and leaves its receiver untouched, so a
// Cart value can be shared freely between readers.
package cart

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/xenking/anomie-storefront/internal/domain/product"
)

// Line is one product-plus-quantity entry. Quantity is always at least 1 and
// saturates at math.MaxInt instead of wrapping.
type Line struct {
	product.Product
	Quantity int
}

// Total returns price * quantity for the line.
func (l Line) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered list of lines with at most one line per product key.
type Cart []Line

// Add returns a cart with p added. If a line for p's key already exists its
// quantity is incremented; otherwise a new line with quantity 1 is appended.
func (c Cart) Add(p product.Product) Cart {
	next := c.clone()
	for i := range next {
		if next[i].Key() == p.Key() {
			next[i].Quantity = addSat(next[i].Quantity, 1)
			return next
		}
	}
	return append(next, Line{Product: p, Quantity: 1})
}

// ChangeQuantity returns a cart where the line at index has its quantity
// moved by delta, never below 1. An out-of-range index is a no-op.
func (c Cart) ChangeQuantity(index, delta int) Cart {
	next := c.clone()
	if index < 0 || index >= len(next) {
		return next
	}
	next[index].Quantity = max(1, addSat(next[index].Quantity, delta))
	return next
}

// Remove returns a cart without the line at index. An out-of-range index is
// a no-op.
func (c Cart) Remove(index int) Cart {
	if index < 0 || index >= len(c) {
		return c.clone()
	}
	next := make(Cart, 0, len(c)-1)
	next = append(next, c[:index]...)
	return append(next, c[index+1:]...)
}

// Subtotal returns the sum of price * quantity over all lines. Taxes and
// shipping are left to checkout.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c {
		sum = sum.Add(l.Total())
	}
	return sum
}

// Count returns the total number of units in the cart, capped at math.MaxInt.
func (c Cart) Count() int {
	n := 0
	for _, l := range c {
		n = addSat(n, l.Quantity)
	}
	return n
}

// Len returns the number of distinct lines.
func (c Cart) Len() int {
	return len(c)
}

// CanCheckout reports whether the cart holds anything to check out.
func (c Cart) CanCheckout() bool {
	return len(c) > 0
}

func (c Cart) clone() Cart {
	next := make(Cart, len(c), len(c)+1)
	copy(next, c)
	return next
}

// addSat returns a+b clamped to the int range.
func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}
