package domain

import (
	"context"
	"time"
)

// MovementRepository persists the append-only stock ledger
type MovementRepository interface {
	// Append inserts a ledger entry; entries are never updated or deleted
	Append(ctx context.Context, movement *StockMovement) error

	// FindByID retrieves a ledger entry
	FindByID(ctx context.Context, id string) (*StockMovement, error)

	// List retrieves entries matching the filter, newest sequence first
	List(ctx context.Context, filter MovementFilter) ([]*StockMovement, error)

	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter MovementFilter) (int64, error)

	// Summary aggregates quantities per type and reason over a date range
	Summary(ctx context.Context, from, to *time.Time) ([]MovementSummaryRow, error)

	// ListAllOrdered streams the full ledger in ascending sequence order,
	// in batches, for replay
	ListAllOrdered(ctx context.Context, afterSequence int64, limit int64) ([]*StockMovement, error)
}

// StockIndexRepository persists the per-location stock index
type StockIndexRepository interface {
	// ApplyDelta adds delta to the (product, location) entry, creating it
	// at zero if absent, and returns the resulting quantity
	ApplyDelta(ctx context.Context, productID, locationID string, delta int) (int, error)

	// Quantity returns the on-hand quantity for a (product, location) pair
	Quantity(ctx context.Context, productID, locationID string) (int, error)

	// ByLocation lists products with stock at a location
	ByLocation(ctx context.Context, locationID string) ([]*StockLevel, error)

	// ByProduct lists a product's stock across locations
	ByProduct(ctx context.Context, productID string) ([]*StockLevel, error)

	// Reset removes all index entries (replay only)
	Reset(ctx context.Context) error
}

// ProductRepository provides the narrow product lookups the core needs
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// Save upserts the product's derived fields
	Save(ctx context.Context, product *Product) error

	// UpdateStock persists the derived aggregate fields only
	UpdateStock(ctx context.Context, id string, currentStock int, status StockStatus, averageCost float64) error
}

// LocationRepository provides the narrow location lookups the core needs
type LocationRepository interface {
	FindByID(ctx context.Context, id string) (*Location, error)
	FindByCode(ctx context.Context, code string) (*Location, error)
	Save(ctx context.Context, location *Location) error

	// UpdateUtilization adds delta to the location's current utilization
	UpdateUtilization(ctx context.Context, id string, delta int) error
}

// CustomerRepository provides customer lookups and balance bookkeeping
type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error

	// ApplyBalanceDelta adds delta to the customer's current balance
	ApplyBalanceDelta(ctx context.Context, id string, delta float64) error

	// RecordSale bumps the derived totalOrders / totalSalesAmount aggregates
	RecordSale(ctx context.Context, id string, amount float64) error
}

// PurchaseRepository persists purchase orders
type PurchaseRepository interface {
	Save(ctx context.Context, purchase *Purchase) error
	FindByID(ctx context.Context, id string) (*Purchase, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Purchase, error)
	List(ctx context.Context, filter PurchaseFilter) ([]*Purchase, error)
	Delete(ctx context.Context, id string) error
}

// PurchaseFilter narrows purchase listings
type PurchaseFilter struct {
	SupplierID string
	Status     PurchaseStatus
	Pagination Pagination
}

// SaleRepository persists sales
type SaleRepository interface {
	Save(ctx context.Context, sale *Sale) error
	FindByID(ctx context.Context, id string) (*Sale, error)
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*Sale, error)

	// FindDueForOverdue retrieves posted sales past their due date that are
	// still unpaid or partially paid
	FindDueForOverdue(ctx context.Context, now time.Time, limit int64) ([]*Sale, error)
}

// SaleFilter narrows sale listings
type SaleFilter struct {
	CustomerID    string
	Status        SaleStatus
	PaymentStatus PaymentStatus
	Pagination    Pagination
}

// CounterRepository hands out crash-safe monotonic document numbers
type CounterRepository interface {
	// Next advances the named counter and returns the new value. The
	// counter is persisted before the caller sees the number.
	Next(ctx context.Context, name string) (int64, error)
}

// AuditRepository persists the append-only audit log
type AuditRepository interface {
	Append(ctx context.Context, entry *AuditEntry) error
	List(ctx context.Context, resource string, resourceID string, pagination Pagination) ([]*AuditEntry, error)
}

// OperatorRepository persists operators
type OperatorRepository interface {
	FindByUsername(ctx context.Context, username string) (*Operator, error)
	FindByID(ctx context.Context, id string) (*Operator, error)
	Save(ctx context.Context, operator *Operator) error
	Count(ctx context.Context) (int64, error)
}

// SettingsRepository persists the inventory settings document
type SettingsRepository interface {
	Load(ctx context.Context) (*InventorySettings, error)
	Save(ctx context.Context, settings *InventorySettings) error
}

// TransferRepository persists transfer records
type TransferRepository interface {
	Save(ctx context.Context, transfer *Transfer) error
	FindByID(ctx context.Context, id string) (*Transfer, error)
}

// Pagination represents pagination options
type Pagination struct {
	Page     int64
	PageSize int64
}

// DefaultPagination returns default pagination options
func DefaultPagination() Pagination {
	return Pagination{
		Page:     1,
		PageSize: 20,
	}
}

// Skip returns the number of documents to skip
func (p Pagination) Skip() int64 {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Limit returns the maximum number of documents to return
func (p Pagination) Limit() int64 {
	if p.PageSize < 1 {
		return DefaultPagination().PageSize
	}
	return p.PageSize
}
