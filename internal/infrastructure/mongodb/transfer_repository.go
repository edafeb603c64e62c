package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
)

// TransferRepository implements domain.TransferRepository using MongoDB
type TransferRepository struct {
	collection *mongo.Collection
}

// NewTransferRepository creates a new TransferRepository
func NewTransferRepository(db *mongo.Database) *TransferRepository {
	collection := db.Collection("transfers")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "productId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &TransferRepository{collection: collection}
}

func (r *TransferRepository) Save(ctx context.Context, transfer *domain.Transfer) error {
	if _, err := r.collection.InsertOne(ctx, transfer); err != nil {
		return fmt.Errorf("failed to save transfer: %w", err)
	}
	return nil
}

func (r *TransferRepository) FindByID(ctx context.Context, id string) (*domain.Transfer, error) {
	var transfer domain.Transfer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&transfer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find transfer: %w", err)
	}
	return &transfer, nil
}
