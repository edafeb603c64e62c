package application

import "time"

// AppendMovementCommand appends one ledger entry
type AppendMovementCommand struct {
	ProductID    string
	Type         string
	Reason       string
	Quantity     int
	LocationFrom string
	LocationTo   string
	SourceRef    string
	UnitCost     float64
	Notes        string
	OperatorID   string
}

// ListMovementsQuery filters the ledger listing
type ListMovementsQuery struct {
	ProductID  string
	LocationID string
	Type       string
	Reason     string
	OperatorID string
	SourceRef  string
	From       *time.Time
	To         *time.Time
	Page       int64
	PageSize   int64
}

// MovementSummaryQuery bounds the summary aggregation
type MovementSummaryQuery struct {
	From *time.Time
	To   *time.Time
}

// TransferCommand executes an atomic two-leg movement
type TransferCommand struct {
	ProductID    string
	FromLocation string
	ToLocation   string
	Quantity     int
	Notes        string
	OperatorID   string
}

// PurchaseItemInput is one requested purchase line
type PurchaseItemInput struct {
	ProductID  string
	OrderedQty int
	UnitPrice  float64
	Discount   float64
	Tax        float64
}

// CreatePurchaseCommand creates a draft purchase order
type CreatePurchaseCommand struct {
	SupplierID          string
	Items               []PurchaseItemInput
	ShippingCost        float64
	ReceivingLocationID string
	ExpectedDate        *time.Time
	Notes               string
	OperatorID          string
}

// UpdatePurchaseCommand replaces the lines of an editable purchase
type UpdatePurchaseCommand struct {
	PurchaseID   string
	Items        []PurchaseItemInput
	ShippingCost float64
	OperatorID   string
}

// PurchaseStatusCommand drives the purchase state machine
type PurchaseStatusCommand struct {
	PurchaseID string
	Status     string
	OperatorID string
}

// ReceiptLineInput is one received quantity against a purchase line
type ReceiptLineInput struct {
	ItemID   string
	Quantity int
}

// ReceivePurchaseCommand posts a receipt against an ordered purchase
type ReceivePurchaseCommand struct {
	PurchaseID string
	Lines      []ReceiptLineInput
	LocationID string // overrides the purchase receiving location
	OperatorID string
}

// PurchasePaymentCommand updates purchase payment bookkeeping
type PurchasePaymentCommand struct {
	PurchaseID    string
	PaymentStatus string
	PaymentMethod string
	OperatorID    string
}

// DeletePurchaseCommand hard-deletes a draft purchase
type DeletePurchaseCommand struct {
	PurchaseID string
	OperatorID string
}

// SaleItemInput is one requested invoice line
type SaleItemInput struct {
	ProductID string
	Quantity  int
	UnitPrice float64
	Discount  float64
	Tax       float64
}

// CreateSaleCommand creates a draft sale
type CreateSaleCommand struct {
	CustomerID         string
	Items              []SaleItemInput
	ShippingCost       float64
	ShippingLocationID string
	SalesPersonID      string
	Notes              string
	OperatorID         string
}

// UpdateSaleCommand replaces the lines of a draft sale
type UpdateSaleCommand struct {
	SaleID       string
	Items        []SaleItemInput
	ShippingCost float64
	OperatorID   string
}

// SaleStatusCommand drives the sale state machine
type SaleStatusCommand struct {
	SaleID string
	Status string
	// CreditOverride skips the credit limit check on confirm
	CreditOverride bool
	OperatorID     string
}

// SalePaymentCommand updates sale payment bookkeeping
type SalePaymentCommand struct {
	SaleID        string
	PaymentStatus string
	PaymentMethod string
	PaidAmount    float64
	OperatorID    string
}

// ListPurchasesQuery filters purchase listings
type ListPurchasesQuery struct {
	SupplierID string
	Status     string
	Page       int64
	PageSize   int64
}

// ListSalesQuery filters sale listings
type ListSalesQuery struct {
	CustomerID    string
	Status        string
	PaymentStatus string
	Page          int64
	PageSize      int64
}

// LoginCommand authenticates an operator
type LoginCommand struct {
	Username string
	Password string
}
