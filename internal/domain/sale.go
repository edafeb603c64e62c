package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaleStatus represents the state of a sale
type SaleStatus string

const (
	SaleStatusDraft     SaleStatus = "draft"
	SaleStatusConfirmed SaleStatus = "confirmed"
	SaleStatusShipped   SaleStatus = "shipped"
	SaleStatusDelivered SaleStatus = "delivered"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusReturned  SaleStatus = "returned"
)

// IsValid checks if the sale status is valid
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusDraft, SaleStatusConfirmed, SaleStatusShipped,
		SaleStatusDelivered, SaleStatusCancelled, SaleStatusReturned:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the status can transition to another status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	validTransitions := map[SaleStatus][]SaleStatus{
		SaleStatusDraft:     {SaleStatusConfirmed, SaleStatusCancelled},
		SaleStatusConfirmed: {SaleStatusShipped, SaleStatusCancelled},
		SaleStatusShipped:   {SaleStatusDelivered, SaleStatusCancelled, SaleStatusReturned},
		SaleStatusDelivered: {SaleStatusReturned},
		SaleStatusCancelled: {},
		SaleStatusReturned:  {},
	}

	allowedTargets, exists := validTransitions[s]
	if !exists {
		return false
	}

	for _, allowed := range allowedTargets {
		if target == allowed {
			return true
		}
	}
	return false
}

// HasPostedStock reports whether the status implies ledger entries exist
func (s SaleStatus) HasPostedStock() bool {
	switch s {
	case SaleStatusConfirmed, SaleStatusShipped, SaleStatusDelivered:
		return true
	default:
		return false
	}
}

// SaleItem is one invoice line
type SaleItem struct {
	ID        string  `bson:"id" json:"id"`
	ProductID string  `bson:"productId" json:"productId"`
	Quantity  int     `bson:"quantity" json:"quantity"`
	UnitPrice float64 `bson:"unitPrice" json:"unitPrice"`
	Discount  float64 `bson:"discount" json:"discount"`
	Tax       float64 `bson:"tax" json:"tax"`
}

// LineTotal returns the line amount after discount, before tax
func (i *SaleItem) LineTotal() float64 {
	return float64(i.Quantity)*i.UnitPrice - i.Discount
}

// Sale is the aggregate root of the sales order engine
type Sale struct {
	ID                 string        `bson:"_id" json:"id"`
	InvoiceNumber      string        `bson:"invoiceNumber,omitempty" json:"invoiceNumber,omitempty"`
	CustomerID         string        `bson:"customerId" json:"customerId"`
	Items              []SaleItem    `bson:"items" json:"items"`
	Status             SaleStatus    `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod      string        `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	ShippingCost       float64       `bson:"shippingCost" json:"shippingCost"`
	Subtotal           float64       `bson:"subtotal" json:"subtotal"`
	TaxTotal           float64       `bson:"taxTotal" json:"taxTotal"`
	DiscountTotal      float64       `bson:"discountTotal" json:"discountTotal"`
	GrandTotal         float64       `bson:"grandTotal" json:"grandTotal"`
	PaidAmount         float64       `bson:"paidAmount" json:"paidAmount"`
	ShippingLocationID string        `bson:"shippingLocationId,omitempty" json:"shippingLocationId,omitempty"`
	SaleDate           time.Time     `bson:"saleDate" json:"saleDate"`
	DueDate            *time.Time    `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	OperatorID         string        `bson:"operatorId" json:"operatorId"`
	SalesPersonID      string        `bson:"salesPersonId,omitempty" json:"salesPersonId,omitempty"`
	Notes              string        `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
	DomainEvents       []DomainEvent `bson:"-" json:"-"`
}

// NewSale creates a draft sale with recomputed totals. The customer and
// products are validated by the engine; the aggregate validates shape.
func NewSale(customerID string, items []SaleItem, shippingCost float64, shippingLocationID, operatorID, salesPersonID string) (*Sale, error) {
	if customerID == "" {
		return nil, ErrUnknownCustomer
	}
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	for idx := range items {
		if items[idx].ProductID == "" {
			return nil, ErrUnknownProduct
		}
		if items[idx].Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		if items[idx].ID == "" {
			items[idx].ID = primitive.NewObjectID().Hex()
		}
	}

	now := time.Now().UTC()
	s := &Sale{
		ID:                 primitive.NewObjectID().Hex(),
		CustomerID:         customerID,
		Items:              items,
		Status:             SaleStatusDraft,
		PaymentStatus:      PaymentStatusUnpaid,
		ShippingCost:       shippingCost,
		ShippingLocationID: shippingLocationID,
		SaleDate:           now,
		OperatorID:         operatorID,
		SalesPersonID:      salesPersonID,
		CreatedAt:          now,
		UpdatedAt:          now,
		DomainEvents:       make([]DomainEvent, 0),
	}
	s.RecomputeTotals()

	return s, nil
}

// RecomputeTotals rederives subtotal, discount, tax and grand total
func (s *Sale) RecomputeTotals() {
	subtotal := 0.0
	taxTotal := 0.0
	discountTotal := 0.0
	for _, item := range s.Items {
		subtotal += float64(item.Quantity) * item.UnitPrice
		discountTotal += item.Discount
		taxTotal += item.Tax
	}
	s.Subtotal = subtotal
	s.DiscountTotal = discountTotal
	s.TaxTotal = taxTotal
	s.GrandTotal = subtotal - discountTotal + taxTotal + s.ShippingCost
}

// UpdateItems replaces the lines of a draft sale
func (s *Sale) UpdateItems(items []SaleItem, shippingCost float64) error {
	if s.Status != SaleStatusDraft {
		return ErrSaleNotDraft
	}
	if len(items) == 0 {
		return ErrNoItems
	}

	for idx := range items {
		if items[idx].ProductID == "" {
			return ErrUnknownProduct
		}
		if items[idx].Quantity < 1 {
			return ErrInvalidQuantity
		}
		if items[idx].ID == "" {
			items[idx].ID = primitive.NewObjectID().Hex()
		}
	}

	s.Items = items
	s.ShippingCost = shippingCost
	s.RecomputeTotals()
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// RequiredQuantities sums the demanded quantity per product. The stock
// check uses the sum when several lines draw the same product.
func (s *Sale) RequiredQuantities() map[string]int {
	required := make(map[string]int)
	for _, item := range s.Items {
		required[item.ProductID] += item.Quantity
	}
	return required
}

// Confirm moves the sale out of draft. The invoice number and due date are
// supplied by the engine, which has already checked stock and credit.
func (s *Sale) Confirm(invoiceNumber string, dueDate time.Time) error {
	if !s.Status.CanTransitionTo(SaleStatusConfirmed) {
		return ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	s.Status = SaleStatusConfirmed
	if s.InvoiceNumber == "" {
		s.InvoiceNumber = invoiceNumber
	}
	s.DueDate = &dueDate
	s.UpdatedAt = now

	s.addDomainEvent(&SaleConfirmedEvent{
		SaleID:        s.ID,
		InvoiceNumber: s.InvoiceNumber,
		CustomerID:    s.CustomerID,
		GrandTotal:    s.GrandTotal,
		ItemCount:     len(s.Items),
		ConfirmedAt:   now,
	})

	return nil
}

// Ship moves confirmed to shipped; status only
func (s *Sale) Ship() error {
	if s.Status != SaleStatusConfirmed {
		return ErrInvalidStatusTransition
	}
	s.Status = SaleStatusShipped
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// Deliver moves shipped to delivered; status only
func (s *Sale) Deliver() error {
	if s.Status != SaleStatusShipped {
		return ErrInvalidStatusTransition
	}
	s.Status = SaleStatusDelivered
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// CompensationLine is a previously posted out quantity that a cancel or
// return reverses with an in/return ledger entry
type CompensationLine struct {
	ProductID string
	Quantity  int
}

// Cancel terminates the sale. From draft it is free; from a posted status
// it returns the compensation lines and the unpaid portion to release
// from the customer balance.
func (s *Sale) Cancel() ([]CompensationLine, float64, error) {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return nil, 0, ErrInvalidStatusTransition
	}

	posted := s.Status.HasPostedStock()
	s.Status = SaleStatusCancelled
	s.UpdatedAt = time.Now().UTC()

	if !posted {
		return nil, 0, nil
	}
	return s.compensationLines(), s.UnpaidPortion(), nil
}

// Return reverses a shipped or delivered sale; same compensation as cancel
func (s *Sale) Return() ([]CompensationLine, float64, error) {
	if !s.Status.CanTransitionTo(SaleStatusReturned) {
		return nil, 0, ErrInvalidStatusTransition
	}

	s.Status = SaleStatusReturned
	s.UpdatedAt = time.Now().UTC()

	return s.compensationLines(), s.UnpaidPortion(), nil
}

// UnpaidPortion returns the amount still owed on this sale
func (s *Sale) UnpaidPortion() float64 {
	unpaid := s.GrandTotal - s.PaidAmount
	if unpaid < 0 {
		return 0
	}
	return unpaid
}

// UpdatePayment moves the payment bookkeeping and returns the delta to
// apply to the customer balance (positive increases the balance). The
// overdue status is owned by the overdue sweep and cannot be set here.
func (s *Sale) UpdatePayment(status PaymentStatus, method string, paidAmount float64) (float64, error) {
	if !status.IsValid() || status == PaymentStatusOverdue {
		return 0, ErrInvalidPaymentStatus
	}

	previousUnpaid := s.UnpaidPortion()

	switch status {
	case PaymentStatusPaid:
		s.PaidAmount = s.GrandTotal
	case PaymentStatusUnpaid:
		s.PaidAmount = 0
	case PaymentStatusPartiallyPaid:
		if paidAmount < 0 || paidAmount > s.GrandTotal {
			return 0, ErrInvalidPaymentStatus
		}
		s.PaidAmount = paidAmount
	}

	s.PaymentStatus = status
	if method != "" {
		s.PaymentMethod = method
	}
	s.UpdatedAt = time.Now().UTC()

	// Balance tracks the unpaid portion of posted, non-terminal sales
	if !s.Status.HasPostedStock() {
		return 0, nil
	}
	return s.UnpaidPortion() - previousUnpaid, nil
}

// MarkOverdue is invoked by the overdue sweep only
func (s *Sale) MarkOverdue(now time.Time) bool {
	if s.PaymentStatus != PaymentStatusUnpaid && s.PaymentStatus != PaymentStatusPartiallyPaid {
		return false
	}
	if s.DueDate == nil || !s.DueDate.Before(now) {
		return false
	}
	s.PaymentStatus = PaymentStatusOverdue
	s.UpdatedAt = now
	return true
}

func (s *Sale) compensationLines() []CompensationLine {
	lines := make([]CompensationLine, 0, len(s.Items))
	for _, item := range s.Items {
		lines = append(lines, CompensationLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// PullEvents returns and clears pending domain events
func (s *Sale) PullEvents() []DomainEvent {
	events := s.DomainEvents
	s.DomainEvents = nil
	return events
}

func (s *Sale) addDomainEvent(event DomainEvent) {
	s.DomainEvents = append(s.DomainEvents, event)
}
