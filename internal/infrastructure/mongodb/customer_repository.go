package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/peterkyalo/stock-inventory-sub002/internal/domain"
)

// CustomerRepository implements domain.CustomerRepository using MongoDB
type CustomerRepository struct {
	collection *mongo.Collection
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	collection := db.Collection("customers")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &CustomerRepository{collection: collection}
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}
	return &customer, nil
}

func (r *CustomerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	customer.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": customer.ID}, customer, opts); err != nil {
		return fmt.Errorf("failed to save customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) ApplyBalanceDelta(ctx context.Context, id string, delta float64) error {
	update := bson.M{
		"$inc": bson.M{"currentBalance": delta},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to apply balance delta: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("customer %s not found", id)
	}
	return nil
}

func (r *CustomerRepository) RecordSale(ctx context.Context, id string, amount float64) error {
	update := bson.M{
		"$inc": bson.M{
			"totalOrders":      1,
			"totalSalesAmount": amount,
		},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record sale on customer: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("customer %s not found", id)
	}
	return nil
}
