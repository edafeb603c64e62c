package domain

import "time"

// DomainEvent represents a domain event interface
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// MovementRecordedEvent is emitted when a ledger entry is appended
type MovementRecordedEvent struct {
	MovementID   string    `json:"movementId"`
	Sequence     int64     `json:"sequence"`
	ProductID    string    `json:"productId"`
	Type         string    `json:"type"`
	Reason       string    `json:"reason"`
	Quantity     int       `json:"quantity"`
	LocationFrom string    `json:"locationFrom,omitempty"`
	LocationTo   string    `json:"locationTo,omitempty"`
	SourceRef    string    `json:"sourceRef,omitempty"`
	OperatorID   string    `json:"operatorId"`
	RecordedAt   time.Time `json:"recordedAt"`
}

func (e *MovementRecordedEvent) EventType() string     { return "stock.movement.recorded" }
func (e *MovementRecordedEvent) AggregateID() string   { return e.ProductID }
func (e *MovementRecordedEvent) OccurredAt() time.Time { return e.RecordedAt }

// LowStockEvent is emitted when a product's aggregate stock drops to or below its minimum
type LowStockEvent struct {
	ProductID    string    `json:"productId"`
	SKU          string    `json:"sku"`
	CurrentStock int       `json:"currentStock"`
	MinimumStock int       `json:"minimumStock"`
	DetectedAt   time.Time `json:"detectedAt"`
}

func (e *LowStockEvent) EventType() string     { return "stock.alert.low" }
func (e *LowStockEvent) AggregateID() string   { return e.ProductID }
func (e *LowStockEvent) OccurredAt() time.Time { return e.DetectedAt }

// OutOfStockEvent is emitted when a product's aggregate stock reaches zero
type OutOfStockEvent struct {
	ProductID  string    `json:"productId"`
	SKU        string    `json:"sku"`
	DetectedAt time.Time `json:"detectedAt"`
}

func (e *OutOfStockEvent) EventType() string     { return "stock.alert.out" }
func (e *OutOfStockEvent) AggregateID() string   { return e.ProductID }
func (e *OutOfStockEvent) OccurredAt() time.Time { return e.DetectedAt }

// SaleConfirmedEvent is emitted when a sale moves out of draft
type SaleConfirmedEvent struct {
	SaleID        string    `json:"saleId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CustomerID    string    `json:"customerId"`
	GrandTotal    float64   `json:"grandTotal"`
	ItemCount     int       `json:"itemCount"`
	ConfirmedAt   time.Time `json:"confirmedAt"`
}

func (e *SaleConfirmedEvent) EventType() string     { return "sales.sale.confirmed" }
func (e *SaleConfirmedEvent) AggregateID() string   { return e.SaleID }
func (e *SaleConfirmedEvent) OccurredAt() time.Time { return e.ConfirmedAt }

// PurchaseReceivedEvent is emitted on every receive operation
type PurchaseReceivedEvent struct {
	PurchaseID          string    `json:"purchaseId"`
	PurchaseOrderNumber string    `json:"purchaseOrderNumber"`
	SupplierID          string    `json:"supplierId"`
	Status              string    `json:"status"`
	ReceivedAt          time.Time `json:"receivedAt"`
}

func (e *PurchaseReceivedEvent) EventType() string     { return "purchases.purchase.received" }
func (e *PurchaseReceivedEvent) AggregateID() string   { return e.PurchaseID }
func (e *PurchaseReceivedEvent) OccurredAt() time.Time { return e.ReceivedAt }

// TransferExecutedEvent is emitted when an inter-location transfer commits
type TransferExecutedEvent struct {
	TransferID   string    `json:"transferId"`
	ProductID    string    `json:"productId"`
	FromLocation string    `json:"fromLocation"`
	ToLocation   string    `json:"toLocation"`
	Quantity     int       `json:"quantity"`
	ExecutedAt   time.Time `json:"executedAt"`
}

func (e *TransferExecutedEvent) EventType() string     { return "stock.transfer.executed" }
func (e *TransferExecutedEvent) AggregateID() string   { return e.ProductID }
func (e *TransferExecutedEvent) OccurredAt() time.Time { return e.ExecutedAt }
