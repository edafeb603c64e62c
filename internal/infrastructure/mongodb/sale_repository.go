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

// SaleRepository implements domain.SaleRepository using MongoDB
type SaleRepository struct {
	collection *mongo.Collection
}

// NewSaleRepository creates a new SaleRepository
func NewSaleRepository(db *mongo.Database) *SaleRepository {
	collection := db.Collection("sales")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "invoiceNumber", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{
				{Key: "customerId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "createdAt", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "paymentStatus", Value: 1},
				{Key: "dueDate", Value: 1},
			},
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &SaleRepository{collection: collection}
}

func (r *SaleRepository) Save(ctx context.Context, sale *domain.Sale) error {
	sale.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": sale.ID}, sale, opts); err != nil {
		return fmt.Errorf("failed to save sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sale)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}
	return &sale, nil
}

func (r *SaleRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.collection.FindOne(ctx, bson.M{"invoiceNumber": invoiceNumber}).Decode(&sale)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale by invoice number: %w", err)
	}
	return &sale, nil
}

func (r *SaleRepository) List(ctx context.Context, f domain.SaleFilter) ([]*domain.Sale, error) {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customerId"] = f.CustomerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		filter["paymentStatus"] = f.PaymentStatus
	}

	opts := options.Find().
		SetSort(mongodb.SortDescending("createdAt")).
		SetSkip(f.Pagination.Skip()).
		SetLimit(f.Pagination.Limit())

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer cursor.Close(ctx)

	var sales []*domain.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}
	return sales, nil
}

func (r *SaleRepository) FindDueForOverdue(ctx context.Context, now time.Time, limit int64) ([]*domain.Sale, error) {
	filter := bson.M{
		"status":        bson.M{"$in": []domain.SaleStatus{domain.SaleStatusConfirmed, domain.SaleStatusShipped, domain.SaleStatusDelivered}},
		"paymentStatus": bson.M{"$in": []domain.PaymentStatus{domain.PaymentStatusUnpaid, domain.PaymentStatusPartiallyPaid}},
		"dueDate":       bson.M{"$lt": now},
	}

	opts := options.Find().SetSort(mongodb.SortAscending("dueDate"))
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue candidates: %w", err)
	}
	defer cursor.Close(ctx)

	var sales []*domain.Sale
	if err := cursor.All(ctx, &sales); err != nil {
		return nil, fmt.Errorf("failed to decode sales: %w", err)
	}
	return sales, nil
}
