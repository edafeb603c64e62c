package domain

import "time"

// StockLevel is one entry of the per-location stock index: the materialized
// on-hand quantity for a (product, location) pair. It is derived from the
// ledger and mutated only alongside ledger appends.
type StockLevel struct {
	ProductID  string    `bson:"productId" json:"productId"`
	LocationID string    `bson:"locationId" json:"locationId"`
	Quantity   int       `bson:"quantity" json:"quantity"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// LocationStockRow is a product's on-hand quantity at one location,
// joined with the product's minimum for low-stock views
type LocationStockRow struct {
	ProductID    string `bson:"productId" json:"productId"`
	SKU          string `bson:"sku" json:"sku"`
	ProductName  string `bson:"productName" json:"productName"`
	Quantity     int    `bson:"quantity" json:"quantity"`
	MinimumStock int    `bson:"minimumStock" json:"minimumStock"`
}

// ProductLocationRow is one location's share of a product's stock
type ProductLocationRow struct {
	LocationID   string `bson:"locationId" json:"locationId"`
	LocationCode string `bson:"locationCode" json:"locationCode"`
	LocationName string `bson:"locationName" json:"locationName"`
	Quantity     int    `bson:"quantity" json:"quantity"`
}
