package main

import (
	"context"
	"os"
	"time"

	mongoRepo "github.com/peterkyalo/stock-inventory-sub002/internal/infrastructure/mongodb"
	"github.com/peterkyalo/stock-inventory-sub002/internal/infrastructure/projections"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/logging"
	"github.com/peterkyalo/stock-inventory-sub002/pkg/mongodb"
)

// Rebuilds the stock index, product aggregates and location utilization
// from the movement ledger. Safe to run repeatedly; each run starts from
// an empty index and replays the full ledger in sequence order.
func main() {
	logConfig := logging.DefaultConfig("stockflow-replay")
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	ctx := context.Background()

	mongoClient, err := mongodb.NewClient(ctx, &mongodb.Config{
		URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database:       getEnv("MONGODB_DATABASE", "stockflow"),
		ConnectTimeout: 10 * time.Second,
		MaxPoolSize:    10,
		MinPoolSize:    1,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)

	db := mongoClient.Database()
	projector := projections.NewStockProjector(
		mongoRepo.NewMovementRepository(db),
		mongoRepo.NewStockIndexRepository(db),
		mongoRepo.NewProductRepository(db),
		mongoRepo.NewLocationRepository(db),
		logger,
	)

	started := time.Now()
	result, err := projector.Rebuild(ctx)
	if err != nil {
		logger.WithError(err).Error("Replay failed")
		os.Exit(1)
	}

	logger.Info("Replay complete",
		"movementsReplayed", result.MovementsReplayed,
		"productsRebuilt", result.ProductsRebuilt,
		"locationsRebuilt", result.LocationsRebuilt,
		"took", time.Since(started).String(),
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
