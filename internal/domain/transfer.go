package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transfer records an atomic two-leg movement between locations. It
// produces exactly one transfer-typed ledger entry.
type Transfer struct {
	ID           string    `bson:"_id" json:"id"`
	ProductID    string    `bson:"productId" json:"productId"`
	FromLocation string    `bson:"fromLocation" json:"fromLocation"`
	ToLocation   string    `bson:"toLocation" json:"toLocation"`
	Quantity     int       `bson:"quantity" json:"quantity"`
	MovementID   string    `bson:"movementId" json:"movementId"`
	OperatorID   string    `bson:"operatorId" json:"operatorId"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
}

// NewTransfer validates and creates a transfer record
func NewTransfer(productID, fromLocation, toLocation string, quantity int, operatorID, notes string) (*Transfer, error) {
	if productID == "" {
		return nil, ErrUnknownProduct
	}
	if fromLocation == "" || toLocation == "" {
		return nil, ErrUnknownLocation
	}
	if fromLocation == toLocation {
		return nil, ErrSameLocation
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	return &Transfer{
		ID:           primitive.NewObjectID().Hex(),
		ProductID:    productID,
		FromLocation: fromLocation,
		ToLocation:   toLocation,
		Quantity:     quantity,
		OperatorID:   operatorID,
		Notes:        notes,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
