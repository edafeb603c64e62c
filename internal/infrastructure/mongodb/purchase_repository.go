package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/mongodb"
)

// PurchaseRepository implements domain.PurchaseRepository using MongoDB
type PurchaseRepository struct {
	collection *mongo.Collection
}

// NewPurchaseRepository creates a new PurchaseRepository
func NewPurchaseRepository(db *mongo.Database) *PurchaseRepository {
	collection := db.Collection("purchases")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "purchaseOrderNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{
				{Key: "supplierId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &PurchaseRepository{collection: collection}
}

func (r *PurchaseRepository) Save(ctx context.Context, purchase *domain.Purchase) error {
	purchase.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": purchase.ID}, purchase, opts); err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id string) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&purchase)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}
	return &purchase, nil
}

func (r *PurchaseRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*domain.Purchase, error) {
	var purchase domain.Purchase
	err := r.collection.FindOne(ctx, bson.M{"purchaseOrderNumber": orderNumber}).Decode(&purchase)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find purchase by order number: %w", err)
	}
	return &purchase, nil
}

func (r *PurchaseRepository) List(ctx context.Context, f domain.PurchaseFilter) ([]*domain.Purchase, error) {
	filter := bson.M{}
	if f.SupplierID != "" {
		filter["supplierId"] = f.SupplierID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	opts := options.Find().
		SetSort(mongodb.SortDescending("createdAt")).
		SetSkip(f.Pagination.Skip()).
		SetLimit(f.Pagination.Limit())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer cursor.Close(ctx)

	var purchases []*domain.Purchase
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, fmt.Errorf("failed to decode purchases: %w", err)
	}
	return purchases, nil
}

func (r *PurchaseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("purchase %s not found", id)
	}
	return nil
}
