package domain

import (
	"regexp"
	"time"
)

// StockStatus is derived from currentStock and minimumStock, never stored
// as an input
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

var skuPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Product is a catalog reference plus the derived aggregate stock fields
// the inventory core maintains. Catalog attributes are immutable from the
// core's point of view.
type Product struct {
	ID           string      `bson:"_id" json:"id"`
	SKU          string      `bson:"sku" json:"sku"`
	Barcode      string      `bson:"barcode,omitempty" json:"barcode,omitempty"`
	Name         string      `bson:"name" json:"name"`
	Brand        string      `bson:"brand,omitempty" json:"brand,omitempty"`
	Unit         string      `bson:"unit" json:"unit"`
	CostPrice    float64     `bson:"costPrice" json:"costPrice"`
	SellingPrice float64     `bson:"sellingPrice" json:"sellingPrice"`
	TaxRate      float64     `bson:"taxRate" json:"taxRate"`
	MinimumStock int         `bson:"minimumStock" json:"minimumStock"`
	CurrentStock int         `bson:"currentStock" json:"currentStock"`
	AverageCost  float64     `bson:"averageCost" json:"averageCost"`
	StockStatus  StockStatus `bson:"stockStatus" json:"stockStatus"`
	IsPerishable bool        `bson:"isPerishable" json:"isPerishable"`
	ExpiryDate   *time.Time  `bson:"expiryDate,omitempty" json:"expiryDate,omitempty"`
	CategoryID   string      `bson:"categoryId,omitempty" json:"categoryId,omitempty"`
	SupplierID   string      `bson:"supplierId,omitempty" json:"supplierId,omitempty"`
	IsActive     bool        `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// ValidateProduct checks the catalog invariants the core depends on
func ValidateProduct(p *Product) error {
	if !skuPattern.MatchString(p.SKU) {
		return ErrInvalidSKU
	}
	if p.CostPrice < 0 || p.SellingPrice < 0 {
		return ErrInvalidPrice
	}
	return nil
}

// ComputeStockStatus derives the stock status from the aggregate quantity
func ComputeStockStatus(currentStock, minimumStock int) StockStatus {
	switch {
	case currentStock <= 0:
		return StockStatusOutOfStock
	case currentStock <= minimumStock:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// ApplyStockDelta moves the aggregate stock and rederives the status.
// Returns the events the change raises, if any.
func (p *Product) ApplyStockDelta(delta int, now time.Time) []DomainEvent {
	previous := p.StockStatus
	p.CurrentStock += delta
	p.StockStatus = ComputeStockStatus(p.CurrentStock, p.MinimumStock)
	p.UpdatedAt = now

	if p.StockStatus == previous {
		return nil
	}

	switch p.StockStatus {
	case StockStatusOutOfStock:
		return []DomainEvent{&OutOfStockEvent{
			ProductID:  p.ID,
			SKU:        p.SKU,
			DetectedAt: now,
		}}
	case StockStatusLowStock:
		return []DomainEvent{&LowStockEvent{
			ProductID:    p.ID,
			SKU:          p.SKU,
			CurrentStock: p.CurrentStock,
			MinimumStock: p.MinimumStock,
			DetectedAt:   now,
		}}
	default:
		return nil
	}
}

// ApplyReceivedCost folds a received quantity into the weighted-average
// cost. Reporting only; it never participates in stock invariants.
func (p *Product) ApplyReceivedCost(quantity int, unitCost float64) {
	if quantity <= 0 || unitCost <= 0 {
		return
	}

	previousStock := p.CurrentStock
	if previousStock < 0 {
		previousStock = 0
	}

	totalQty := previousStock + quantity
	if totalQty == 0 {
		return
	}

	p.AverageCost = (p.AverageCost*float64(previousStock) + unitCost*float64(quantity)) / float64(totalQty)
}
