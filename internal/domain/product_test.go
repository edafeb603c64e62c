package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStockStatus(t *testing.T) {
	assert.Equal(t, StockStatusOutOfStock, ComputeStockStatus(0, 5))
	assert.Equal(t, StockStatusLowStock, ComputeStockStatus(3, 5))
	assert.Equal(t, StockStatusLowStock, ComputeStockStatus(5, 5))
	assert.Equal(t, StockStatusInStock, ComputeStockStatus(6, 5))
	assert.Equal(t, StockStatusOutOfStock, ComputeStockStatus(-2, 5))
}

func TestValidateProduct(t *testing.T) {
	p := &Product{SKU: "SKU_001-A", CostPrice: 5, SellingPrice: 10}
	assert.NoError(t, ValidateProduct(p))

	assert.ErrorIs(t, ValidateProduct(&Product{SKU: "bad sku!"}), ErrInvalidSKU)
	assert.ErrorIs(t, ValidateProduct(&Product{SKU: "OK", SellingPrice: -1}), ErrInvalidPrice)
}

func TestProductApplyStockDelta_Events(t *testing.T) {
	now := time.Now().UTC()
	p := &Product{ID: "prod-1", SKU: "SKU-1", CurrentStock: 10, MinimumStock: 5, StockStatus: StockStatusInStock}

	// Still in stock: no events
	events := p.ApplyStockDelta(-2, now)
	assert.Empty(t, events)
	assert.Equal(t, 8, p.CurrentStock)

	// Crossing into low stock raises an alert
	events = p.ApplyStockDelta(-4, now)
	require.Len(t, events, 1)
	low, ok := events[0].(*LowStockEvent)
	require.True(t, ok)
	assert.Equal(t, 4, low.CurrentStock)
	assert.Equal(t, 5, low.MinimumStock)

	// Hitting zero raises out-of-stock
	events = p.ApplyStockDelta(-4, now)
	require.Len(t, events, 1)
	_, ok = events[0].(*OutOfStockEvent)
	assert.True(t, ok)
	assert.Equal(t, StockStatusOutOfStock, p.StockStatus)

	// Replenishing above minimum returns to in_stock without an alert
	events = p.ApplyStockDelta(20, now)
	assert.Empty(t, events)
	assert.Equal(t, StockStatusInStock, p.StockStatus)
}

func TestProductApplyReceivedCost_WeightedAverage(t *testing.T) {
	p := &Product{CurrentStock: 10, AverageCost: 4.0}

	// 10 @ 4.00 + 10 @ 6.00 = 20 @ 5.00
	p.ApplyReceivedCost(10, 6.0)
	assert.InDelta(t, 5.0, p.AverageCost, 0.001)

	// Ignores non-positive inputs
	p.ApplyReceivedCost(0, 10)
	p.ApplyReceivedCost(5, 0)
	assert.InDelta(t, 5.0, p.AverageCost, 0.001)
}
