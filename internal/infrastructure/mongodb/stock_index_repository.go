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

// StockIndexRepository implements domain.StockIndexRepository using
// MongoDB. Entries are keyed by (productId, locationId).
type StockIndexRepository struct {
	collection *mongo.Collection
}

// NewStockIndexRepository creates a new StockIndexRepository
func NewStockIndexRepository(db *mongo.Database) *StockIndexRepository {
	collection := db.Collection("stock_levels")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "productId", Value: 1},
				{Key: "locationId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "locationId", Value: 1}},
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &StockIndexRepository{collection: collection}
}

func (r *StockIndexRepository) ApplyDelta(ctx context.Context, productID, locationID string, delta int) (int, error) {
	filter := bson.M{"productId": productID, "locationId": locationID}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
		"$setOnInsert": bson.M{
			"productId":  productID,
			"locationId": locationID,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var level domain.StockLevel
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&level); err != nil {
		return 0, fmt.Errorf("failed to apply stock delta: %w", err)
	}
	return level.Quantity, nil
}

func (r *StockIndexRepository) Quantity(ctx context.Context, productID, locationID string) (int, error) {
	var level domain.StockLevel
	err := r.collection.FindOne(ctx, bson.M{"productId": productID, "locationId": locationID}).Decode(&level)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read stock level: %w", err)
	}
	return level.Quantity, nil
}

func (r *StockIndexRepository) ByLocation(ctx context.Context, locationID string) ([]*domain.StockLevel, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"locationId": locationID},
		options.Find().SetSort(mongodb.SortAscending("productId")))
	if err != nil {
		return nil, fmt.Errorf("failed to list stock by location: %w", err)
	}
	defer cursor.Close(ctx)

	var levels []*domain.StockLevel
	if err := cursor.All(ctx, &levels); err != nil {
		return nil, fmt.Errorf("failed to decode stock levels: %w", err)
	}
	return levels, nil
}

func (r *StockIndexRepository) ByProduct(ctx context.Context, productID string) ([]*domain.StockLevel, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"productId": productID},
		options.Find().SetSort(mongodb.SortAscending("locationId")))
	if err != nil {
		return nil, fmt.Errorf("failed to list stock by product: %w", err)
	}
	defer cursor.Close(ctx)

	var levels []*domain.StockLevel
	if err := cursor.All(ctx, &levels); err != nil {
		return nil, fmt.Errorf("failed to decode stock levels: %w", err)
	}
	return levels, nil
}

func (r *StockIndexRepository) Reset(ctx context.Context) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to reset stock index: %w", err)
	}
	return nil
}
