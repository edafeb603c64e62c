package domain

import (
	"regexp"
	"time"
)

// LocationType classifies a physical stock location
type LocationType string

const (
	LocationTypeWarehouse LocationType = "warehouse"
	LocationTypeStore     LocationType = "store"
	LocationTypeOutlet    LocationType = "outlet"
	LocationTypeFactory   LocationType = "factory"
	LocationTypeOffice    LocationType = "office"
)

// IsValid checks if the location type is valid
func (t LocationType) IsValid() bool {
	switch t {
	case LocationTypeWarehouse, LocationTypeStore, LocationTypeOutlet,
		LocationTypeFactory, LocationTypeOffice:
		return true
	default:
		return false
	}
}

var locationCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]*$`)

// Location is a place stock can sit. CurrentUtilization is the sum of
// on-hand quantities at the location, maintained alongside the index.
type Location struct {
	ID                 string       `bson:"_id" json:"id"`
	Code               string       `bson:"code" json:"code"`
	Name               string       `bson:"name" json:"name"`
	Type               LocationType `bson:"type" json:"type"`
	Capacity           int          `bson:"capacity,omitempty" json:"capacity,omitempty"`
	CurrentUtilization int          `bson:"currentUtilization" json:"currentUtilization"`
	IsActive           bool         `bson:"isActive" json:"isActive"`
	CreatedAt          time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// ValidateLocation checks the invariants the core depends on
func ValidateLocation(l *Location) error {
	if !locationCodePattern.MatchString(l.Code) {
		return ErrInvalidLocationCode
	}
	if !l.Type.IsValid() {
		return ErrInvalidLocationType
	}
	return nil
}

// HasCapacityFor reports whether adding quantity units would stay within
// the location's capacity. Zero capacity means unbounded.
func (l *Location) HasCapacityFor(quantity int) bool {
	if l.Capacity <= 0 {
		return true
	}
	return l.CurrentUtilization+quantity <= l.Capacity
}
