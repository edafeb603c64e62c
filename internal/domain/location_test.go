package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLocation(t *testing.T) {
	ok := &Location{Code: "WH-01", Type: LocationTypeWarehouse}
	assert.NoError(t, ValidateLocation(ok))

	assert.ErrorIs(t, ValidateLocation(&Location{Code: "wh-01", Type: LocationTypeWarehouse}), ErrInvalidLocationCode)
	assert.ErrorIs(t, ValidateLocation(&Location{Code: "WH-01", Type: "garage"}), ErrInvalidLocationType)
}

func TestLocationHasCapacityFor(t *testing.T) {
	l := &Location{Capacity: 100, CurrentUtilization: 90}
	assert.True(t, l.HasCapacityFor(10))
	assert.False(t, l.HasCapacityFor(11))

	// Zero capacity means unbounded
	unbounded := &Location{Capacity: 0, CurrentUtilization: 1 << 30}
	assert.True(t, unbounded.HasCapacityFor(1<<30))
}
