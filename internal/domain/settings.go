package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CostingMethod selects how cost reporting values stock. It never changes
// stock invariants.
type CostingMethod string

const (
	CostingFIFO            CostingMethod = "fifo"
	CostingLIFO            CostingMethod = "lifo"
	CostingWeightedAverage CostingMethod = "weighted_average"
)

// IsValid checks if the costing method is valid
func (m CostingMethod) IsValid() bool {
	switch m {
	case CostingFIFO, CostingLIFO, CostingWeightedAverage:
		return true
	default:
		return false
	}
}

// InventorySettings are the admin-configured switches that influence the
// core. Default locations apply when a purchase or sale does not carry
// its own.
type InventorySettings struct {
	NegativeStock            bool          `bson:"negativeStock" json:"negativeStock" yaml:"negativeStock"`
	CostingMethod            CostingMethod `bson:"costingMethod" json:"costingMethod" yaml:"costingMethod"`
	LowStockAlert            bool          `bson:"lowStockAlert" json:"lowStockAlert" yaml:"lowStockAlert"`
	DefaultReceivingLocation string        `bson:"defaultReceivingLocation" json:"defaultReceivingLocation" yaml:"defaultReceivingLocation"`
	DefaultShippingLocation  string        `bson:"defaultShippingLocation" json:"defaultShippingLocation" yaml:"defaultShippingLocation"`
}

// DefaultInventorySettings returns the settings used when none are configured
func DefaultInventorySettings() InventorySettings {
	return InventorySettings{
		NegativeStock: false,
		CostingMethod: CostingWeightedAverage,
		LowStockAlert: true,
	}
}

// LoadInventorySettings reads settings from a YAML file, filling omitted
// fields from the defaults.
func LoadInventorySettings(path string) (*InventorySettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings file: %w", err)
	}

	settings := DefaultInventorySettings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings file: %w", err)
	}
	if settings.CostingMethod != "" && !settings.CostingMethod.IsValid() {
		return nil, fmt.Errorf("invalid costing method %q", settings.CostingMethod)
	}
	return &settings, nil
}
