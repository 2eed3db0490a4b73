package models

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IICPAS/IICPAS-sub003/internal/app_errors"
)

func TestQuoteKitOrderDiscountSteps(t *testing.T) {
	cases := []struct {
		qty     int
		percent float64
		payable float64
		gross   float64
	}{
		{qty: 4, percent: 0, gross: 40, payable: 40},
		{qty: 5, percent: 5, gross: 50, payable: 47.5},
		{qty: 9, percent: 5, gross: 90, payable: 85.5},
		{qty: 10, percent: 10, gross: 100, payable: 90},
	}
	for _, tc := range cases {
		q, err := QuoteKitOrder([]KitLine{{KitID: uuid.New(), Quantity: tc.qty, Price: 10}})
		require.NoError(t, err)
		assert.Equal(t, tc.qty, q.TotalQuantity)
		assert.Equal(t, tc.percent, q.BulkDiscountPercent, "qty %d", tc.qty)
		assert.Equal(t, tc.gross, q.GrossTotal, "qty %d", tc.qty)
		assert.Equal(t, tc.payable, q.DiscountedPrice, "qty %d", tc.qty)
		assert.Equal(t, tc.payable, q.Payable, "qty %d", tc.qty)
		assert.Zero(t, q.CombinationDiscount)
	}
}

func TestQuoteKitOrderSumsLines(t *testing.T) {
	q, err := QuoteKitOrder([]KitLine{
		{KitID: uuid.New(), Quantity: 2, Price: 199.99},
		{KitID: uuid.New(), Quantity: 3, Price: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, q.TotalQuantity)
	assert.Equal(t, 549.98, q.GrossTotal)
	assert.Equal(t, 522.48, q.Payable)
}

func TestQuoteKitOrderQuantityBounds(t *testing.T) {
	cases := []struct {
		name  string
		lines []KitLine
		ok    bool
	}{
		{name: "at cap", lines: []KitLine{{Quantity: MaxQuantity - 10, Price: 1}, {Quantity: 10, Price: 1}}, ok: true},
		{name: "over cap across lines", lines: []KitLine{{Quantity: MaxQuantity, Price: 1}, {Quantity: 1, Price: 1}}},
		{name: "huge line", lines: []KitLine{{Quantity: math.MaxInt, Price: 1}, {Quantity: 10, Price: 1}}},
		{name: "zero", lines: []KitLine{{Quantity: 0, Price: 1}}},
		{name: "negative", lines: []KitLine{{Quantity: -5, Price: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := QuoteKitOrder(tc.lines)
			if !tc.ok {
				assert.ErrorIs(t, err, app_errors.ErrInvalidQuantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, MaxQuantity, q.TotalQuantity)
			assert.Equal(t, 10.0, q.BulkDiscountPercent)
			assert.Equal(t, 9000.0, q.Payable)
		})
	}
}

func TestCartAddQuantityCap(t *testing.T) {
	c := &Cart{StudentID: "s1"}
	require.NoError(t, c.Add(CartItem{CourseID: "a", SessionType: SessionLive, Quantity: MaxQuantity - 1, UnitPrice: 1}))
	require.NoError(t, c.Add(CartItem{CourseID: "a", SessionType: SessionLive, Quantity: 1, UnitPrice: 1}))
	assert.ErrorIs(t, c.Add(CartItem{CourseID: "a", SessionType: SessionLive, Quantity: 1, UnitPrice: 1}), app_errors.ErrInvalidQuantity)
	assert.ErrorIs(t, c.Add(CartItem{CourseID: "b", SessionType: SessionLive, Quantity: math.MaxInt, UnitPrice: 1}), app_errors.ErrInvalidQuantity)
	assert.Equal(t, MaxQuantity, c.Items[0].Quantity)
	assert.Len(t, c.Items, 1)
}

func TestEffectivePrice(t *testing.T) {
	assert.Equal(t, 850.0, Course{Price: 1000, Discount: 15}.EffectivePrice())
	assert.Equal(t, 899.99, Course{Price: 999.99, Discount: 10}.EffectivePrice())
	assert.Equal(t, 0.0, Course{Price: 500, Discount: 100}.EffectivePrice())
	assert.Equal(t, 500.0, Course{Price: 500}.EffectivePrice())
}

func TestCartTotals(t *testing.T) {
	c := &Cart{StudentID: "s1"}
	require.NoError(t, c.Add(CartItem{CourseID: "a", SessionType: SessionRecorded, Quantity: 1, UnitPrice: 100}))
	require.NoError(t, c.Add(CartItem{CourseID: "a", SessionType: SessionRecorded, Quantity: 2, UnitPrice: 100}))
	assert.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, 300.0, c.TotalPrice)

	require.NoError(t, c.Add(CartItem{CourseID: "a", SessionType: SessionLive, Quantity: 1, UnitPrice: 50.5}))
	assert.Len(t, c.Items, 2)
	assert.Equal(t, 350.5, c.TotalPrice)

	assert.True(t, c.SetQuantity("a", SessionLive, 2))
	assert.Equal(t, 401.0, c.TotalPrice)
	assert.False(t, c.SetQuantity("b", SessionLive, 2))

	assert.True(t, c.Remove("a", SessionRecorded))
	assert.Equal(t, 101.0, c.TotalPrice)
	assert.True(t, c.Remove("a", ""))
	assert.Empty(t, c.Items)
	assert.Zero(t, c.TotalPrice)
	assert.False(t, c.Remove("a", ""))
}
