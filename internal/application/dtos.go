package application

import "time"

// MovementDTO is the ledger entry representation returned to the API layer
type MovementDTO struct {
	ID           string    `json:"id"`
	Sequence     int64     `json:"sequence"`
	ProductID    string    `json:"productId"`
	Type         string    `json:"type"`
	Reason       string    `json:"reason"`
	Quantity     int       `json:"quantity"`
	LocationFrom string    `json:"locationFrom,omitempty"`
	LocationTo   string    `json:"locationTo,omitempty"`
	SourceRef    string    `json:"sourceRef,omitempty"`
	UnitCost     float64   `json:"unitCost,omitempty"`
	OperatorID   string    `json:"operatorId"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MovementListDTO pairs a page of entries with the total match count
type MovementListDTO struct {
	Movements []MovementDTO `json:"movements"`
	Total     int64         `json:"total"`
	Page      int64         `json:"page"`
	PageSize  int64         `json:"pageSize"`
}

// MovementSummaryDTO aggregates ledger quantities per type and reason
type MovementSummaryDTO struct {
	Rows     []MovementSummaryRowDTO `json:"rows"`
	TotalIn  int64                   `json:"totalIn"`
	TotalOut int64                   `json:"totalOut"`
}

// MovementSummaryRowDTO is one (type, reason) aggregation bucket
type MovementSummaryRowDTO struct {
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	Count    int64  `json:"count"`
	Quantity int64  `json:"quantity"`
}

// TransferDTO is the result of an executed transfer
type TransferDTO struct {
	ID           string    `json:"id"`
	ProductID    string    `json:"productId"`
	FromLocation string    `json:"fromLocation"`
	ToLocation   string    `json:"toLocation"`
	Quantity     int       `json:"quantity"`
	MovementID   string    `json:"movementId"`
	OperatorID   string    `json:"operatorId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProductLocationsDTO breaks a product's stock down across locations
type ProductLocationsDTO struct {
	ProductID    string             `json:"productId"`
	CurrentStock int                `json:"currentStock"`
	StockStatus  string             `json:"stockStatus"`
	Locations    []LocationStockDTO `json:"locations"`
}

// LocationStockDTO is one location's on-hand quantity
type LocationStockDTO struct {
	LocationID string `json:"locationId"`
	ProductID  string `json:"productId,omitempty"`
	Quantity   int    `json:"quantity"`
}

// LocationInventoryDTO lists the stock held at one location
type LocationInventoryDTO struct {
	LocationID  string             `json:"locationId"`
	Utilization int                `json:"utilization"`
	Capacity    int                `json:"capacity,omitempty"`
	Stock       []LocationStockDTO `json:"stock"`
}

// PurchaseItemDTO is one purchase order line
type PurchaseItemDTO struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"productId"`
	OrderedQty  int     `json:"orderedQty"`
	ReceivedQty int     `json:"receivedQty"`
	UnitPrice   float64 `json:"unitPrice"`
	Discount    float64 `json:"discount"`
	Tax         float64 `json:"tax"`
}

// PurchaseDTO is the purchase order representation returned to the API layer
type PurchaseDTO struct {
	ID                  string            `json:"id"`
	PurchaseOrderNumber string            `json:"purchaseOrderNumber,omitempty"`
	SupplierID          string            `json:"supplierId"`
	Items               []PurchaseItemDTO `json:"items"`
	Status              string            `json:"status"`
	PaymentStatus       string            `json:"paymentStatus"`
	PaymentMethod       string            `json:"paymentMethod,omitempty"`
	ShippingCost        float64           `json:"shippingCost"`
	Subtotal            float64           `json:"subtotal"`
	TaxTotal            float64           `json:"taxTotal"`
	GrandTotal          float64           `json:"grandTotal"`
	ReceivingLocationID string            `json:"receivingLocationId,omitempty"`
	OrderDate           time.Time         `json:"orderDate"`
	ExpectedDate        *time.Time        `json:"expectedDate,omitempty"`
	ReceivedDate        *time.Time        `json:"receivedDate,omitempty"`
	OperatorID          string            `json:"operatorId"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// SaleItemDTO is one invoice line
type SaleItemDTO struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Discount  float64 `json:"discount"`
	Tax       float64 `json:"tax"`
}

// SaleDTO is the sale representation returned to the API layer
type SaleDTO struct {
	ID                 string        `json:"id"`
	InvoiceNumber      string        `json:"invoiceNumber,omitempty"`
	CustomerID         string        `json:"customerId"`
	Items              []SaleItemDTO `json:"items"`
	Status             string        `json:"status"`
	PaymentStatus      string        `json:"paymentStatus"`
	PaymentMethod      string        `json:"paymentMethod,omitempty"`
	ShippingCost       float64       `json:"shippingCost"`
	Subtotal           float64       `json:"subtotal"`
	TaxTotal           float64       `json:"taxTotal"`
	DiscountTotal      float64       `json:"discountTotal"`
	GrandTotal         float64       `json:"grandTotal"`
	PaidAmount         float64       `json:"paidAmount"`
	ShippingLocationID string        `json:"shippingLocationId,omitempty"`
	SaleDate           time.Time     `json:"saleDate"`
	DueDate            *time.Time    `json:"dueDate,omitempty"`
	OperatorID         string        `json:"operatorId"`
	SalesPersonID      string        `json:"salesPersonId,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// OverdueSweepDTO reports one run of the overdue sweep
type OverdueSweepDTO struct {
	Scanned       int       `json:"scanned"`
	MarkedOverdue int       `json:"markedOverdue"`
	RanAt         time.Time `json:"ranAt"`
}

// LoginResultDTO carries the minted access token
type LoginResultDTO struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	OperatorID  string    `json:"operatorId"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}
