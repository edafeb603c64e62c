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

// MovementRepository implements domain.MovementRepository using MongoDB.
// The collection is append-only.
type MovementRepository struct {
	collection *mongo.Collection
}

// NewMovementRepository creates a new MovementRepository
func NewMovementRepository(db *mongo.Database) *MovementRepository {
	collection := db.Collection("stock_movements")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sequence", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "productId", Value: 1},
				{Key: "sequence", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "sourceRef", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, indexes)

	return &MovementRepository{collection: collection}
}

func (r *MovementRepository) Append(ctx context.Context, movement *domain.StockMovement) error {
	if _, err := r.collection.InsertOne(ctx, movement); err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

func (r *MovementRepository) FindByID(ctx context.Context, id string) (*domain.StockMovement, error) {
	var movement domain.StockMovement
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&movement)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find movement: %w", err)
	}
	return &movement, nil
}

func buildMovementFilter(f domain.MovementFilter) bson.M {
	filter := bson.M{}
	if f.ProductID != "" {
		filter["productId"] = f.ProductID
	}
	if f.LocationID != "" {
		filter["$or"] = []bson.M{
			{"locationFrom": f.LocationID},
			{"locationTo": f.LocationID},
		}
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Reason != "" {
		filter["reason"] = f.Reason
	}
	if f.OperatorID != "" {
		filter["operatorId"] = f.OperatorID
	}
	if f.SourceRef != "" {
		filter["sourceRef"] = f.SourceRef
	}
	if f.From != nil || f.To != nil {
		dateRange := bson.M{}
		if f.From != nil {
			dateRange["$gte"] = *f.From
		}
		if f.To != nil {
			dateRange["$lte"] = *f.To
		}
		filter["createdAt"] = dateRange
	}
	return filter
}

func (r *MovementRepository) List(ctx context.Context, f domain.MovementFilter) ([]*domain.StockMovement, error) {
	opts := options.Find().SetSort(mongodb.SortDescending("sequence"))
	if f.Offset > 0 {
		opts.SetSkip(f.Offset)
	}
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cursor, err := r.collection.Find(ctx, buildMovementFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer cursor.Close(ctx)

	var movements []*domain.StockMovement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, fmt.Errorf("failed to decode movements: %w", err)
	}
	return movements, nil
}

func (r *MovementRepository) Count(ctx context.Context, f domain.MovementFilter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, buildMovementFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count movements: %w", err)
	}
	return count, nil
}

func (r *MovementRepository) Summary(ctx context.Context, from, to *time.Time) ([]domain.MovementSummaryRow, error) {
	match := bson.M{}
	if from != nil || to != nil {
		dateRange := bson.M{}
		if from != nil {
			dateRange["$gte"] = *from
		}
		if to != nil {
			dateRange["$lte"] = *to
		}
		match["createdAt"] = dateRange
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"type": "$type", "reason": "$reason"},
			"count":    bson.M{"$sum": 1},
			"quantity": bson.M{"$sum": "$quantity"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":      0,
			"type":     "$_id.type",
			"reason":   "$_id.reason",
			"count":    1,
			"quantity": 1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "type", Value: 1}, {Key: "reason", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate movements: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []domain.MovementSummaryRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode summary rows: %w", err)
	}
	return rows, nil
}

func (r *MovementRepository) ListAllOrdered(ctx context.Context, afterSequence int64, limit int64) ([]*domain.StockMovement, error) {
	opts := options.Find().SetSort(mongodb.SortAscending("sequence"))
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"sequence": bson.M{"$gt": afterSequence}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements for replay: %w", err)
	}
	defer cursor.Close(ctx)

	var movements []*domain.StockMovement
	if err := cursor.All(ctx, &movements); err != nil {
		return nil, fmt.Errorf("failed to decode movements: %w", err)
	}
	return movements, nil
}
