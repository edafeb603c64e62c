package domain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInventorySettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "negativeStock: true\ndefaultReceivingLocation: loc-main\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	settings, err := LoadInventorySettings(path)
	require.NoError(t, err)

	assert.True(t, settings.NegativeStock)
	assert.Equal(t, "loc-main", settings.DefaultReceivingLocation)
	// omitted fields keep their defaults
	assert.Equal(t, CostingWeightedAverage, settings.CostingMethod)
	assert.True(t, settings.LowStockAlert)
}

func TestLoadInventorySettingsInvalidCosting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("costingMethod: guesswork\n"), 0o600))

	_, err := LoadInventorySettings(path)
	assert.Error(t, err)
}

func TestLoadInventorySettingsMissingFile(t *testing.T) {
	_, err := LoadInventorySettings(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
