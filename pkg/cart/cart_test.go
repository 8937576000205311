package cart_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/stayshop/pkg/cart"
)

// --- Mock Catalog ---

type mockCatalog struct {
	items map[uint]*cart.CatalogItem
}

func (m *mockCatalog) FindItem(_ context.Context, id uint) (*cart.CatalogItem, error) {
	it, ok := m.items[id]
	if !ok {
		return nil, cart.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

func newCatalog() *mockCatalog {
	return &mockCatalog{items: map[uint]*cart.CatalogItem{
		1: {ID: 1, Name: "Deluxe Room", Category: "Deluxe", UnitPrice: decimal.NewFromInt(2500), Capacity: 2},
		2: {ID: 2, Name: "Suite Room", Category: "Suite", UnitPrice: decimal.NewFromInt(4500), Capacity: 4},
		3: {ID: 3, Name: "Standard Room", Category: "Standard", UnitPrice: decimal.NewFromInt(1500), Capacity: 2},
		9: {ID: 9, Name: "Mug", Category: "Kitchen", UnitPrice: decimal.RequireFromString("12.50"), Stock: 10},
	}}
}

func stay(in, out string) *cart.Stay {
	return &cart.Stay{CheckIn: in, CheckOut: out, Guests: 2}
}

// --- Tests ---

func TestAdd_UnknownItem(t *testing.T) {
	var c cart.Cart
	_, err := c.Add(context.Background(), newCatalog(), 42, 1, nil)
	assert.True(t, errors.Is(err, cart.ErrNotFound))
	assert.Equal(t, 0, c.Len())
}

func TestAdd_NormalizesDates(t *testing.T) {
	var c cart.Cart
	line, err := c.Add(context.Background(), newCatalog(), 1, 1, stay("05/03/2025", "07-03-2025"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", line.Stay.CheckIn)
	assert.Equal(t, "2025-03-07", line.Stay.CheckOut)
}

func TestAdd_SameItemSameRangeMerges(t *testing.T) {
	var c cart.Cart
	cat := newCatalog()
	_, err := c.Add(context.Background(), cat, 1, 1, stay("2025-03-05", "2025-03-07"))
	require.NoError(t, err)
	_, err = c.Add(context.Background(), cat, 1, 1, stay("05/03/2025", "2025-03-07"))
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAdd_SameItemDifferentRangeAppends(t *testing.T) {
	var c cart.Cart
	cat := newCatalog()
	_, _ = c.Add(context.Background(), cat, 1, 1, stay("2025-03-05", "2025-03-07"))
	_, _ = c.Add(context.Background(), cat, 1, 1, stay("2025-03-08", "2025-03-09"))
	assert.Equal(t, 2, c.Len())
}

func TestAdd_UnitQuantityMergesAndCoerces(t *testing.T) {
	var c cart.Cart
	cat := newCatalog()
	_, _ = c.Add(context.Background(), cat, 9, 0, nil)
	_, _ = c.Add(context.Background(), cat, 9, 3, nil)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 4, c.Items[0].Quantity)
}

func TestAdd_HugeQuantityClamps(t *testing.T) {
	var c cart.Cart
	cat := newCatalog()
	_, _ = c.Add(context.Background(), cat, 9, 1, nil)
	_, err := c.Add(context.Background(), cat, 9, math.MaxInt, nil)
	require.NoError(t, err)
	assert.Equal(t, cart.MaxQuantity, c.Items[0].Quantity)
	assert.Equal(t, cart.MaxQuantity, c.Held(9))

	c.Sanitize()
	assert.Equal(t, 1, c.Len())
}

func TestAdd_CapturesPrice(t *testing.T) {
	var c cart.Cart
	cat := newCatalog()
	_, _ = c.Add(context.Background(), cat, 9, 1, nil)

	cat.items[9].UnitPrice = decimal.NewFromInt(99)
	_, _ = c.Add(context.Background(), cat, 9, 1, nil)

	assert.True(t, decimal.RequireFromString("12.50").Equal(c.Items[0].UnitPrice))
}

func TestAddThenRemove_Empty(t *testing.T) {
	var c cart.Cart
	_, err := c.Add(context.Background(), newCatalog(), 2, 1, stay("2025-01-01", "2025-01-03"))
	require.NoError(t, err)
	c.Remove(2)
	assert.Equal(t, 0, c.Len())
}

func TestRemove_MissingIsNoop(t *testing.T) {
	var c cart.Cart
	_, _ = c.Add(context.Background(), newCatalog(), 9, 1, nil)
	c.Remove(7)
	assert.Equal(t, 1, c.Len())
}

func TestRemoveAt(t *testing.T) {
	var c cart.Cart
	cat := newCatalog()
	_, _ = c.Add(context.Background(), cat, 1, 1, stay("2025-01-01", "2025-01-02"))
	_, _ = c.Add(context.Background(), cat, 2, 1, stay("2025-01-01", "2025-01-02"))

	assert.False(t, c.RemoveAt(5))
	assert.False(t, c.RemoveAt(-1))
	assert.True(t, c.RemoveAt(0))
	require.Equal(t, 1, c.Len())
	assert.Equal(t, uint(2), c.Items[0].ItemID)
}

func TestAdjustQuantity(t *testing.T) {
	var c cart.Cart
	_, _ = c.Add(context.Background(), newCatalog(), 9, 1, nil)

	c.AdjustQuantity(9, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)

	c.AdjustQuantity(9, -1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestAdjustQuantity_BelowOneRemoves(t *testing.T) {
	var c cart.Cart
	_, _ = c.Add(context.Background(), newCatalog(), 9, 1, nil)
	c.AdjustQuantity(9, -1)
	assert.Equal(t, 0, c.Len())
}

func TestAdjustQuantity_ExtremeDeltas(t *testing.T) {
	var c cart.Cart
	_, _ = c.Add(context.Background(), newCatalog(), 9, 2, nil)

	c.AdjustQuantity(9, math.MaxInt)
	assert.Equal(t, cart.MaxQuantity, c.Items[0].Quantity)

	c.AdjustQuantity(9, math.MinInt)
	assert.Equal(t, 0, c.Len())
}

func TestAdjustQuantity_MissingIsNoop(t *testing.T) {
	var c cart.Cart
	assert.NotPanics(t, func() { c.AdjustQuantity(9, -1) })
	assert.Equal(t, 0, c.Len())
}

func TestClear_Idempotent(t *testing.T) {
	var c cart.Cart
	_, _ = c.Add(context.Background(), newCatalog(), 9, 1, nil)
	c.Clear()
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestSanitize(t *testing.T) {
	c := cart.Cart{Items: []cart.LineItem{
		{ItemID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		{ItemID: 2, Quantity: 0, UnitPrice: decimal.NewFromInt(10)},
		{ItemID: 0, Quantity: 1, UnitPrice: decimal.NewFromInt(10)},
		{ItemID: 3, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)},
	}}
	c.Sanitize()
	require.Equal(t, 1, c.Len())
	assert.Equal(t, uint(1), c.Items[0].ItemID)
}
