package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MovementType classifies the direction of a stock movement
type MovementType string

const (
	MovementTypeIn         MovementType = "in"
	MovementTypeOut        MovementType = "out"
	MovementTypeTransfer   MovementType = "transfer"
	MovementTypeAdjustment MovementType = "adjustment"
)

// IsValid checks if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeTransfer, MovementTypeAdjustment:
		return true
	default:
		return false
	}
}

// MovementReason records why stock changed
type MovementReason string

const (
	ReasonPurchase      MovementReason = "purchase"
	ReasonSale          MovementReason = "sale"
	ReasonReturn        MovementReason = "return"
	ReasonDamage        MovementReason = "damage"
	ReasonLoss          MovementReason = "loss"
	ReasonTheft         MovementReason = "theft"
	ReasonTransfer      MovementReason = "transfer"
	ReasonAdjustment    MovementReason = "adjustment"
	ReasonOpeningStock  MovementReason = "opening_stock"
	ReasonManufacturing MovementReason = "manufacturing"
)

// IsValid checks if the movement reason is valid
func (r MovementReason) IsValid() bool {
	switch r {
	case ReasonPurchase, ReasonSale, ReasonReturn, ReasonDamage, ReasonLoss,
		ReasonTheft, ReasonTransfer, ReasonAdjustment, ReasonOpeningStock,
		ReasonManufacturing:
		return true
	default:
		return false
	}
}

// StockMovement is an immutable ledger entry. Every quantity change in the
// system is recorded here; the per-location index and the product aggregate
// are derived from these entries and never edited directly.
type StockMovement struct {
	ID           string         `bson:"_id" json:"id"`
	Sequence     int64          `bson:"sequence" json:"sequence"`
	ProductID    string         `bson:"productId" json:"productId"`
	Type         MovementType   `bson:"type" json:"type"`
	Reason       MovementReason `bson:"reason" json:"reason"`
	Quantity     int            `bson:"quantity" json:"quantity"`
	LocationFrom string         `bson:"locationFrom,omitempty" json:"locationFrom,omitempty"`
	LocationTo   string         `bson:"locationTo,omitempty" json:"locationTo,omitempty"`
	SourceRef    string         `bson:"sourceRef,omitempty" json:"sourceRef,omitempty"`
	UnitCost     float64        `bson:"unitCost,omitempty" json:"unitCost,omitempty"`
	OperatorID   string         `bson:"operatorId" json:"operatorId"`
	Notes        string         `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
}

// NewStockMovement creates a validated ledger entry. The sequence number is
// zero until the ledger assigns one at append time.
func NewStockMovement(productID string, movementType MovementType, reason MovementReason, quantity int, locationFrom, locationTo, sourceRef, operatorID, notes string) (*StockMovement, error) {
	if productID == "" {
		return nil, ErrUnknownProduct
	}
	if !movementType.IsValid() {
		return nil, ErrInvalidMovementType
	}
	if !reason.IsValid() {
		return nil, ErrInvalidMovementReason
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	m := &StockMovement{
		ID:           primitive.NewObjectID().Hex(),
		ProductID:    productID,
		Type:         movementType,
		Reason:       reason,
		Quantity:     quantity,
		LocationFrom: locationFrom,
		LocationTo:   locationTo,
		SourceRef:    sourceRef,
		OperatorID:   operatorID,
		Notes:        notes,
		CreatedAt:    time.Now().UTC(),
	}

	if err := m.validateShape(); err != nil {
		return nil, err
	}

	return m, nil
}

// validateShape enforces the location rules for each movement type:
// in requires only a destination, out only a source, transfer both
// (distinct), adjustment exactly one leg.
func (m *StockMovement) validateShape() error {
	switch m.Type {
	case MovementTypeIn:
		if m.LocationTo == "" || m.LocationFrom != "" {
			return ErrInvalidMovementShape
		}
	case MovementTypeOut:
		if m.LocationFrom == "" || m.LocationTo != "" {
			return ErrInvalidMovementShape
		}
	case MovementTypeTransfer:
		if m.LocationFrom == "" || m.LocationTo == "" {
			return ErrInvalidMovementShape
		}
		if m.LocationFrom == m.LocationTo {
			return ErrSameLocation
		}
	case MovementTypeAdjustment:
		if (m.LocationFrom == "") == (m.LocationTo == "") {
			return ErrInvalidMovementShape
		}
	default:
		return ErrInvalidMovementType
	}
	return nil
}

// StockDelta is a signed quantity change for one (product, location) pair
type StockDelta struct {
	ProductID  string
	LocationID string
	Delta      int
}

// Deltas returns the index mutations this movement implies. A transfer
// yields two deltas that must be applied in the same atomic step.
func (m *StockMovement) Deltas() []StockDelta {
	switch m.Type {
	case MovementTypeIn:
		return []StockDelta{{ProductID: m.ProductID, LocationID: m.LocationTo, Delta: m.Quantity}}
	case MovementTypeOut:
		return []StockDelta{{ProductID: m.ProductID, LocationID: m.LocationFrom, Delta: -m.Quantity}}
	case MovementTypeTransfer:
		return []StockDelta{
			{ProductID: m.ProductID, LocationID: m.LocationFrom, Delta: -m.Quantity},
			{ProductID: m.ProductID, LocationID: m.LocationTo, Delta: m.Quantity},
		}
	case MovementTypeAdjustment:
		if m.LocationTo != "" {
			return []StockDelta{{ProductID: m.ProductID, LocationID: m.LocationTo, Delta: m.Quantity}}
		}
		return []StockDelta{{ProductID: m.ProductID, LocationID: m.LocationFrom, Delta: -m.Quantity}}
	default:
		return nil
	}
}

// NetChange returns the movement's effect on the product's total stock.
// Transfers are net zero; the stock just changes location.
func (m *StockMovement) NetChange() int {
	total := 0
	for _, d := range m.Deltas() {
		total += d.Delta
	}
	return total
}

// MovementFilter narrows ledger listings
type MovementFilter struct {
	ProductID  string
	LocationID string
	Type       MovementType
	Reason     MovementReason
	OperatorID string
	SourceRef  string
	From       *time.Time
	To         *time.Time
	Limit      int64
	Offset     int64
}

// MovementSummaryRow aggregates ledger quantities per type and reason
type MovementSummaryRow struct {
	Type     MovementType   `bson:"type" json:"type"`
	Reason   MovementReason `bson:"reason" json:"reason"`
	Count    int64          `bson:"count" json:"count"`
	Quantity int64          `bson:"quantity" json:"quantity"`
}
