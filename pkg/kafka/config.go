package kafka

import (
	"time"
)

// Config holds Kafka configuration
type Config struct {
	Brokers  []string
	ClientID string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack

	// SASL settings
	SASLEnabled   bool
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:  []string{"localhost:9092"},
		ClientID: "stockflow-api",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1, // All replicas

		SASLEnabled: false,
	}
}

// Topics contains all StockFlow Kafka topic names
var Topics = struct {
	StockEvents    string
	PurchaseEvents string
	SalesEvents    string
	AlertEvents    string
}{
	StockEvents:    "stockflow.stock.events",
	PurchaseEvents: "stockflow.purchases.events",
	SalesEvents:    "stockflow.sales.events",
	AlertEvents:    "stockflow.alerts.events",
}
