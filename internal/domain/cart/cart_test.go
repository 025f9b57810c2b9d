package cart

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/anomie-storefront/internal/domain/product"
)

func newTestProduct(title string, price int64) product.Product {
	return product.Product{
		Title:    title,
		Price:    decimal.NewFromInt(price),
		Category: "test",
	}
}

func TestAdd_NewLine(t *testing.T) {
	tee := newTestProduct("Tee", 38)

	c := Cart(nil).Add(tee)

	require.Len(t, c, 1)
	assert.Equal(t, "Tee", c[0].Title)
	assert.Equal(t, 1, c[0].Quantity)
}

func TestAdd_MergesSameKey(t *testing.T) {
	tee := newTestProduct("Tee", 38)
	tote := newTestProduct("Tote", 24)

	c := Cart(nil).Add(tee).Add(tote).Add(tee)

	require.Len(t, c, 2)
	assert.Equal(t, "Tee", c[0].Title)
	assert.Equal(t, 2, c[0].Quantity)
	assert.Equal(t, "Tote", c[1].Title)
	assert.Equal(t, 1, c[1].Quantity)
}

func TestAdd_Twice(t *testing.T) {
	tee := newTestProduct("Tee", 38)
	start := Cart{{Product: tee, Quantity: 3}}

	c := start.Add(tee).Add(tee)

	require.Len(t, c, 1)
	assert.Equal(t, 5, c[0].Quantity)
}

func TestAdd_DistinctIDsSameTitle(t *testing.T) {
	products := []product.Product{newTestProduct("Tee", 38), newTestProduct("Tee", 40)}
	product.AssignIDs(products)

	c := Cart(nil).Add(products[0]).Add(products[1])

	assert.Len(t, c, 2)
}

func TestAdd_DoesNotMutateReceiver(t *testing.T) {
	tee := newTestProduct("Tee", 38)
	start := Cart{{Product: tee, Quantity: 1}}

	_ = start.Add(tee)

	assert.Equal(t, 1, start[0].Quantity)
}

func TestChangeQuantity(t *testing.T) {
	tee := newTestProduct("Tee", 38)

	tests := []struct {
		name  string
		start int
		index int
		delta int
		want  int
	}{
		{name: "increment", start: 1, index: 0, delta: 1, want: 2},
		{name: "decrement", start: 3, index: 0, delta: -1, want: 2},
		{name: "floor at one", start: 1, index: 0, delta: -1, want: 1},
		{name: "large negative delta", start: 4, index: 0, delta: -1000, want: 1},
		{name: "index out of range", start: 2, index: 5, delta: 1, want: 2},
		{name: "negative index", start: 2, index: -1, delta: 1, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := Cart{{Product: tee, Quantity: tt.start}}

			c := start.ChangeQuantity(tt.index, tt.delta)

			require.Len(t, c, 1)
			assert.Equal(t, tt.want, c[0].Quantity)
			assert.Equal(t, tt.start, start[0].Quantity)
		})
	}
}

func TestRemove(t *testing.T) {
	start := Cart{
		{Product: newTestProduct("A", 1), Quantity: 1},
		{Product: newTestProduct("B", 2), Quantity: 1},
		{Product: newTestProduct("C", 3), Quantity: 1},
	}

	c := start.Remove(1)
	require.Len(t, c, 2)
	assert.Equal(t, "A", c[0].Title)
	assert.Equal(t, "C", c[1].Title)
	assert.Len(t, start, 3)
	assert.Equal(t, "B", start[1].Title)

	assert.Len(t, start.Remove(3), 3)
	assert.Len(t, start.Remove(-1), 3)
	assert.Empty(t, Cart(nil).Remove(0))
}

func TestSubtotal(t *testing.T) {
	c := Cart{
		{Product: newTestProduct("Tee", 38), Quantity: 1},
		{Product: newTestProduct("Tote", 24), Quantity: 2},
	}

	assert.Equal(t, "86.00", c.Subtotal().StringFixed(2))
	assert.True(t, decimal.Zero.Equal(Cart(nil).Subtotal()))
}

func TestSubtotal_Fractional(t *testing.T) {
	c := Cart{
		{Product: product.Product{Title: "A", Price: decimal.RequireFromString("0.10")}, Quantity: 3},
		{Product: product.Product{Title: "B", Price: decimal.RequireFromString("0.20")}, Quantity: 1},
	}

	assert.True(t, decimal.RequireFromString("0.50").Equal(c.Subtotal()))
}

func TestCountAndLen(t *testing.T) {
	c := Cart{
		{Product: newTestProduct("A", 1), Quantity: 2},
		{Product: newTestProduct("B", 1), Quantity: 1},
		{Product: newTestProduct("C", 1), Quantity: 3},
	}

	assert.Equal(t, 6, c.Count())
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.CanCheckout())
	assert.False(t, Cart(nil).CanCheckout())
}

func TestChangeQuantity_Saturates(t *testing.T) {
	tee := newTestProduct("Tee", 38)

	c := Cart(nil).Add(tee).ChangeQuantity(0, math.MaxInt)
	assert.Equal(t, math.MaxInt, c[0].Quantity)

	c = c.ChangeQuantity(0, math.MaxInt)
	assert.Equal(t, math.MaxInt, c[0].Quantity, "large delta must not wrap")

	c = c.ChangeQuantity(0, math.MinInt)
	assert.Equal(t, 1, c[0].Quantity)
}

func TestAdd_AtMaxQuantity(t *testing.T) {
	tee := newTestProduct("Tee", 38)

	c := Cart(nil).Add(tee).ChangeQuantity(0, math.MaxInt-1)
	require.Equal(t, math.MaxInt, c[0].Quantity)

	c = c.Add(tee)
	assert.Equal(t, math.MaxInt, c[0].Quantity)
	assert.True(t, c.Subtotal().IsPositive())
}

func TestCount_Saturates(t *testing.T) {
	c := Cart(nil).
		Add(newTestProduct("Tee", 38)).
		Add(newTestProduct("Tote", 24)).
		ChangeQuantity(0, math.MaxInt).
		ChangeQuantity(1, math.MaxInt)

	assert.Equal(t, math.MaxInt, c.Count())
	assert.Equal(t, 2, c.Len())
}
