package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseStatus represents the state of a purchase order
type PurchaseStatus string

const (
	PurchaseStatusDraft             PurchaseStatus = "draft"
	PurchaseStatusPending           PurchaseStatus = "pending"
	PurchaseStatusApproved          PurchaseStatus = "approved"
	PurchaseStatusOrdered           PurchaseStatus = "ordered"
	PurchaseStatusPartiallyReceived PurchaseStatus = "partially_received"
	PurchaseStatusReceived          PurchaseStatus = "received"
	PurchaseStatusCancelled         PurchaseStatus = "cancelled"
)

// IsValid checks if the purchase status is valid
func (s PurchaseStatus) IsValid() bool {
	switch s {
	case PurchaseStatusDraft, PurchaseStatusPending, PurchaseStatusApproved,
		PurchaseStatusOrdered, PurchaseStatusPartiallyReceived,
		PurchaseStatusReceived, PurchaseStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the status can transition to another status.
// Receiving transitions (ordered/partially_received → partially_received/
// received) are driven by Receive, not by direct status changes, but are
// listed so the table is the single source of truth.
func (s PurchaseStatus) CanTransitionTo(target PurchaseStatus) bool {
	validTransitions := map[PurchaseStatus][]PurchaseStatus{
		PurchaseStatusDraft:             {PurchaseStatusPending, PurchaseStatusCancelled},
		PurchaseStatusPending:           {PurchaseStatusApproved, PurchaseStatusCancelled},
		PurchaseStatusApproved:          {PurchaseStatusOrdered, PurchaseStatusCancelled},
		PurchaseStatusOrdered:           {PurchaseStatusPartiallyReceived, PurchaseStatusReceived, PurchaseStatusCancelled},
		PurchaseStatusPartiallyReceived: {PurchaseStatusPartiallyReceived, PurchaseStatusReceived},
		PurchaseStatusReceived:          {},
		PurchaseStatusCancelled:         {},
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

// PaymentStatus tracks how much of an order has been paid. The overdue
// value applies to sales only and is set by the overdue sweep.
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusOverdue       PaymentStatus = "overdue"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	default:
		return false
	}
}

// IsValidForPurchase rejects the sale-only overdue value
func (s PaymentStatus) IsValidForPurchase() bool {
	return s.IsValid() && s != PaymentStatusOverdue
}

// PurchaseItem is one order line. ReceivedQty never exceeds OrderedQty.
type PurchaseItem struct {
	ID          string  `bson:"id" json:"id"`
	ProductID   string  `bson:"productId" json:"productId"`
	OrderedQty  int     `bson:"orderedQty" json:"orderedQty"`
	ReceivedQty int     `bson:"receivedQty" json:"receivedQty"`
	UnitPrice   float64 `bson:"unitPrice" json:"unitPrice"`
	Discount    float64 `bson:"discount" json:"discount"`
	Tax         float64 `bson:"tax" json:"tax"`
}

// RemainingQty returns the quantity still to be received
func (i *PurchaseItem) RemainingQty() int {
	return i.OrderedQty - i.ReceivedQty
}

// IsFullyReceived returns true if the line is fully received
func (i *PurchaseItem) IsFullyReceived() bool {
	return i.ReceivedQty >= i.OrderedQty
}

// LineTotal returns the line amount after discount, before tax
func (i *PurchaseItem) LineTotal() float64 {
	return float64(i.OrderedQty)*i.UnitPrice - i.Discount
}

// Purchase is the aggregate root of the purchase order engine
type Purchase struct {
	ID                  string         `bson:"_id" json:"id"`
	PurchaseOrderNumber string         `bson:"purchaseOrderNumber,omitempty" json:"purchaseOrderNumber,omitempty"`
	SupplierID          string         `bson:"supplierId" json:"supplierId"`
	Items               []PurchaseItem `bson:"items" json:"items"`
	Status              PurchaseStatus `bson:"status" json:"status"`
	PaymentStatus       PaymentStatus  `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod       string         `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	ShippingCost        float64        `bson:"shippingCost" json:"shippingCost"`
	Subtotal            float64        `bson:"subtotal" json:"subtotal"`
	TaxTotal            float64        `bson:"taxTotal" json:"taxTotal"`
	GrandTotal          float64        `bson:"grandTotal" json:"grandTotal"`
	ReceivingLocationID string         `bson:"receivingLocationId,omitempty" json:"receivingLocationId,omitempty"`
	OrderDate           time.Time      `bson:"orderDate" json:"orderDate"`
	ExpectedDate        *time.Time     `bson:"expectedDate,omitempty" json:"expectedDate,omitempty"`
	ReceivedDate        *time.Time     `bson:"receivedDate,omitempty" json:"receivedDate,omitempty"`
	OperatorID          string         `bson:"operatorId" json:"operatorId"`
	Notes               string         `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt           time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time      `bson:"updatedAt" json:"updatedAt"`
	DomainEvents        []DomainEvent  `bson:"-" json:"-"`
}

// NewPurchase creates a draft purchase order with recomputed totals
func NewPurchase(supplierID string, items []PurchaseItem, shippingCost float64, receivingLocationID, operatorID string, expectedDate *time.Time) (*Purchase, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	for idx := range items {
		if items[idx].ProductID == "" {
			return nil, ErrUnknownProduct
		}
		if items[idx].OrderedQty < 1 {
			return nil, ErrInvalidQuantity
		}
		if items[idx].ID == "" {
			items[idx].ID = primitive.NewObjectID().Hex()
		}
		items[idx].ReceivedQty = 0
	}

	now := time.Now().UTC()
	p := &Purchase{
		ID:                  primitive.NewObjectID().Hex(),
		SupplierID:          supplierID,
		Items:               items,
		Status:              PurchaseStatusDraft,
		PaymentStatus:       PaymentStatusUnpaid,
		ShippingCost:        shippingCost,
		ReceivingLocationID: receivingLocationID,
		OrderDate:           now,
		ExpectedDate:        expectedDate,
		OperatorID:          operatorID,
		CreatedAt:           now,
		UpdatedAt:           now,
		DomainEvents:        make([]DomainEvent, 0),
	}
	p.RecomputeTotals()

	return p, nil
}

// RecomputeTotals rederives subtotal, tax total and grand total from the
// lines and shipping cost
func (p *Purchase) RecomputeTotals() {
	subtotal := 0.0
	taxTotal := 0.0
	for _, item := range p.Items {
		subtotal += item.LineTotal()
		taxTotal += item.Tax
	}
	p.Subtotal = subtotal
	p.TaxTotal = taxTotal
	p.GrandTotal = subtotal + taxTotal + p.ShippingCost
}

// IsEditable reports whether update is still allowed
func (p *Purchase) IsEditable() bool {
	return p.Status == PurchaseStatusDraft || p.Status == PurchaseStatusPending
}

// HasLedgerFootprint reports whether any line has been received
func (p *Purchase) HasLedgerFootprint() bool {
	for _, item := range p.Items {
		if item.ReceivedQty > 0 {
			return true
		}
	}
	return false
}

// UpdateItems replaces the lines of an editable purchase and recomputes
// totals
func (p *Purchase) UpdateItems(items []PurchaseItem, shippingCost float64) error {
	if !p.IsEditable() {
		return ErrPurchaseNotEditable
	}
	if len(items) == 0 {
		return ErrNoItems
	}

	for idx := range items {
		if items[idx].ProductID == "" {
			return ErrUnknownProduct
		}
		if items[idx].OrderedQty < 1 {
			return ErrInvalidQuantity
		}
		if items[idx].ID == "" {
			items[idx].ID = primitive.NewObjectID().Hex()
		}
		items[idx].ReceivedQty = 0
	}

	p.Items = items
	p.ShippingCost = shippingCost
	p.RecomputeTotals()
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Submit moves a draft to pending
func (p *Purchase) Submit() error {
	return p.transition(PurchaseStatusPending)
}

// Approve is permitted from pending
func (p *Purchase) Approve() error {
	if p.Status != PurchaseStatusPending {
		return ErrInvalidStatusTransition
	}
	return p.transition(PurchaseStatusApproved)
}

// MarkOrdered is permitted from approved. The purchase order number is
// assigned by the caller before the enclosing transaction commits.
func (p *Purchase) MarkOrdered(orderNumber string) error {
	if p.Status != PurchaseStatusApproved {
		return ErrInvalidStatusTransition
	}
	if err := p.transition(PurchaseStatusOrdered); err != nil {
		return err
	}
	if p.PurchaseOrderNumber == "" {
		p.PurchaseOrderNumber = orderNumber
	}
	return nil
}

// ReceiptLine pairs a purchase item with a quantity received now
type ReceiptLine struct {
	ItemID   string
	Quantity int
}

// ReceivedLine describes a receipt applied to one line, for ledger posting
type ReceivedLine struct {
	ProductID string
	Quantity  int
	UnitPrice float64
}

// Receive applies receipt quantities to the order lines. Valid from
// ordered or partially_received. Every applied line must satisfy
// receivedQty + qty <= orderedQty; the whole receipt is rejected
// otherwise. Returns the lines actually received for ledger posting.
func (p *Purchase) Receive(lines []ReceiptLine) ([]ReceivedLine, error) {
	if p.Status != PurchaseStatusOrdered && p.Status != PurchaseStatusPartiallyReceived {
		return nil, ErrPurchaseNotReceivable
	}
	if len(lines) == 0 {
		return nil, ErrNoItems
	}

	itemsByID := make(map[string]*PurchaseItem, len(p.Items))
	for idx := range p.Items {
		itemsByID[p.Items[idx].ID] = &p.Items[idx]
	}

	// Validate the whole receipt before mutating anything
	pending := make(map[string]int, len(lines))
	for _, line := range lines {
		item, ok := itemsByID[line.ItemID]
		if !ok {
			return nil, ErrPurchaseItemNotFound
		}
		if line.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
		pending[line.ItemID] += line.Quantity
		if item.ReceivedQty+pending[line.ItemID] > item.OrderedQty {
			return nil, ErrReceiveExceedsOrdered
		}
	}

	now := time.Now().UTC()
	received := make([]ReceivedLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity == 0 {
			continue
		}
		item := itemsByID[line.ItemID]
		item.ReceivedQty += line.Quantity
		received = append(received, ReceivedLine{
			ProductID: item.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if p.isFullyReceived() {
		p.Status = PurchaseStatusReceived
		p.ReceivedDate = &now
	} else {
		p.Status = PurchaseStatusPartiallyReceived
	}
	p.UpdatedAt = now

	p.addDomainEvent(&PurchaseReceivedEvent{
		PurchaseID:          p.ID,
		PurchaseOrderNumber: p.PurchaseOrderNumber,
		SupplierID:          p.SupplierID,
		Status:              string(p.Status),
		ReceivedAt:          now,
	})

	return received, nil
}

// Cancel is permitted only before any ledger entries exist
func (p *Purchase) Cancel() error {
	if p.HasLedgerFootprint() {
		return ErrPurchaseHasLedgerEntries
	}
	if !p.Status.CanTransitionTo(PurchaseStatusCancelled) {
		return ErrInvalidStatusTransition
	}
	p.Status = PurchaseStatusCancelled
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// CanDelete reports whether hard deletion is allowed
func (p *Purchase) CanDelete() bool {
	return p.Status == PurchaseStatusDraft
}

// UpdatePayment changes the bookkeeping fields only; no stock effect
func (p *Purchase) UpdatePayment(status PaymentStatus, method string) error {
	if !status.IsValidForPurchase() {
		return ErrInvalidPaymentStatus
	}
	p.PaymentStatus = status
	if method != "" {
		p.PaymentMethod = method
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Purchase) isFullyReceived() bool {
	for _, item := range p.Items {
		if !item.IsFullyReceived() {
			return false
		}
	}
	return true
}

func (p *Purchase) transition(target PurchaseStatus) error {
	if !p.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	p.Status = target
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// PullEvents returns and clears pending domain events
func (p *Purchase) PullEvents() []DomainEvent {
	events := p.DomainEvents
	p.DomainEvents = nil
	return events
}

func (p *Purchase) addDomainEvent(event DomainEvent) {
	p.DomainEvents = append(p.DomainEvents, event)
}
