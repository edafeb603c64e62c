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

const settingsDocID = "inventory"

// SettingsRepository implements domain.SettingsRepository using MongoDB.
// The settings live in a single well-known document.
type SettingsRepository struct {
	collection *mongo.Collection
}

type settingsDoc struct {
	ID        string                   `bson:"_id"`
	Settings  domain.InventorySettings `bson:"settings"`
	UpdatedAt time.Time                `bson:"updatedAt"`
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{collection: db.Collection("settings")}
}

func (r *SettingsRepository) Load(ctx context.Context) (*domain.InventorySettings, error) {
	var doc settingsDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			defaults := domain.DefaultInventorySettings()
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &doc.Settings, nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings *domain.InventorySettings) error {
	doc := settingsDoc{
		ID:        settingsDocID,
		Settings:  *settings,
		UpdatedAt: time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": settingsDocID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
