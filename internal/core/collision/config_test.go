package collision

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
index:
  cell_size: 32
grid:
  enabled: true
  cells_wide: 8
  cells_high: 4
mask:
  alpha_threshold: 0
log:
  level: debug
  encoding: json
capabilities: [solid, hurt, pickup]
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Index.CellSize)
	assert.True(t, cfg.Grid.Enabled)
	assert.Equal(t, 8, cfg.Grid.CellsWide)
	assert.Equal(t, 4, cfg.Grid.CellsHigh)
	assert.Equal(t, 64, cfg.Grid.CellSize, "default fills the gap")
	require.NotNil(t, cfg.Mask.AlphaThreshold)
	assert.Zero(t, *cfg.Mask.AlphaThreshold, "explicit zero is kept")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"solid", "hurt", "pickup"}, cfg.Capabilities)
}

func TestLoadConfig_EmptyUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_Rejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field":   "index:\n  cellsize: 3\n",
		"negative cells":  "index:\n  cell_size: -4\n",
		"bad grid":        "grid:\n  enabled: true\n  cells_wide: -1\n",
		"bad level":       "log:\n  level: loud\n",
		"bad encoding":    "log:\n  encoding: xml\n",
		"threshold range": "mask:\n  alpha_threshold: 300\n",
		"empty cap":       "capabilities: ['']\n",
		"not yaml":        "index: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hitbox.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Index.CellSize)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
