package cart_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/stayshop/pkg/cart"
)

func TestNights(t *testing.T) {
	cases := []struct {
		name     string
		in, out  string
		expected int
	}{
		{"two nights", "2025-03-05", "2025-03-07", 2},
		{"same day", "2025-03-05", "2025-03-05", 1},
		{"inverted", "2025-03-07", "2025-03-05", 1},
		{"month boundary", "2025-01-30", "2025-02-02", 3},
		{"unparsable", "soon", "2025-03-05", 1},
		{"beyond duration range", "0001-01-01", "9999-12-31", 3652058},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, cart.Nights(tc.in, tc.out))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "2025-03-05", cart.NormalizeDate("2025-03-05"))
	assert.Equal(t, "2025-03-05", cart.NormalizeDate("05/03/2025"))
	assert.Equal(t, "2025-03-05", cart.NormalizeDate("05-03-2025"))
	assert.Equal(t, "next tuesday", cart.NormalizeDate("next tuesday"))
	assert.Equal(t, "", cart.NormalizeDate(""))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/03/2025", cart.FormatDate("2025-03-05", ""))
	assert.Equal(t, "2025.03.05", cart.FormatDate("05-03-2025", "2006.01.02"))
	assert.Equal(t, "garbage", cart.FormatDate("garbage", ""))
	assert.Equal(t, "", cart.FormatDate("", ""))
}

func TestComputeTotals_Scenario(t *testing.T) {
	var c cart.Cart
	cat := newCatalog()
	_, err := c.Add(context.Background(), cat, 1, 1, stay("2025-03-05", "2025-03-07"))
	require.NoError(t, err)

	s := cart.ComputeTotals(c.Items)
	assert.True(t, decimal.NewFromInt(5000).Equal(s.Lines[0].Total))

	_, err = c.Add(context.Background(), cat, 3, 1, stay("2025-03-05", "2025-03-06"))
	require.NoError(t, err)

	s = cart.ComputeTotals(c.Items)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 1, s.Lines[1].Nights)
	assert.True(t, decimal.NewFromInt(6500).Equal(s.Total), "got %s", s.Total)
}

func TestComputeTotals_Pure(t *testing.T) {
	lines := []cart.LineItem{
		{ItemID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(2500), Stay: stay("2025-03-05", "2025-03-07")},
		{ItemID: 9, Quantity: 3, UnitPrice: decimal.RequireFromString("12.50")},
	}
	first := cart.ComputeTotals(lines)
	second := cart.ComputeTotals(lines)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, lines[0].Quantity)
	assert.True(t, decimal.RequireFromString("5037.50").Equal(first.Total))
}

func TestComputeTotals_Empty(t *testing.T) {
	s := cart.ComputeTotals(nil)
	assert.Equal(t, 0, s.Count)
	assert.True(t, s.Total.IsZero())
	assert.NotNil(t, s.Lines)
}

func TestComputeTotals_MergedStayMultipliesRooms(t *testing.T) {
	lines := []cart.LineItem{
		{ItemID: 1, Quantity: 2, UnitPrice: decimal.NewFromInt(2500), Stay: stay("2025-03-05", "2025-03-07")},
	}
	s := cart.ComputeTotals(lines)
	assert.True(t, decimal.NewFromInt(10000).Equal(s.Total))
}
