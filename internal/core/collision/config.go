package collision

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zeusync/hitbox/internal/core/collision/mask"
	"github.com/zeusync/hitbox/internal/core/collision/spatial"
	"github.com/zeusync/hitbox/internal/core/observability/log"
)

// Config describes a World. Zero fields fall back to DefaultConfig values.
type Config struct {
	Index IndexConfig `yaml:"index"`
	Grid  GridConfig  `yaml:"grid"`
	Mask  MaskConfig  `yaml:"mask"`
	Log   log.Config  `yaml:"log"`
	// Capabilities are registered in order, so the first name gets ID 0.
	Capabilities []string `yaml:"capabilities"`
}

type IndexConfig struct {
	CellSize int `yaml:"cell_size"`
}

// GridConfig enables the loose/tight grid mirror of collider bounds.
type GridConfig struct {
	Enabled   bool `yaml:"enabled"`
	CellsWide int  `yaml:"cells_wide"`
	CellsHigh int  `yaml:"cells_high"`
	CellSize  int  `yaml:"cell_size"`
}

type MaskConfig struct {
	AlphaThreshold *uint8 `yaml:"alpha_threshold"`
}

func DefaultConfig() Config {
	threshold := mask.DefaultAlphaThreshold
	return Config{
		Index: IndexConfig{CellSize: spatial.DefaultCellSize},
		Grid: GridConfig{
			CellsWide: 32,
			CellsHigh: 32,
			CellSize:  64,
		},
		Mask: MaskConfig{AlphaThreshold: &threshold},
		Log:  log.Config{Level: "info", Encoding: "console"},
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Index.CellSize == 0 {
		c.Index.CellSize = d.Index.CellSize
	}
	if c.Grid.CellsWide == 0 {
		c.Grid.CellsWide = d.Grid.CellsWide
	}
	if c.Grid.CellsHigh == 0 {
		c.Grid.CellsHigh = d.Grid.CellsHigh
	}
	if c.Grid.CellSize == 0 {
		c.Grid.CellSize = d.Grid.CellSize
	}
	if c.Mask.AlphaThreshold == nil {
		c.Mask.AlphaThreshold = d.Mask.AlphaThreshold
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = d.Log.Encoding
	}
	return c
}

// Validate reports the first problem found, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Index.CellSize < 0 {
		return fmt.Errorf("%w: index.cell_size must be positive, got %d", ErrInvalidConfig, c.Index.CellSize)
	}
	if c.Grid.Enabled {
		if c.Grid.CellsWide <= 0 || c.Grid.CellsHigh <= 0 || c.Grid.CellSize <= 0 {
			return fmt.Errorf("%w: grid dimensions must be positive, got %dx%d cells of %d",
				ErrInvalidConfig, c.Grid.CellsWide, c.Grid.CellsHigh, c.Grid.CellSize)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch c.Log.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("%w: log.encoding must be json or console, got %q", ErrInvalidConfig, c.Log.Encoding)
	}
	if len(c.Capabilities) > 64 {
		return fmt.Errorf("%w: at most 64 capabilities, got %d", ErrInvalidConfig, len(c.Capabilities))
	}
	seen := make(map[string]struct{}, len(c.Capabilities))
	for _, name := range c.Capabilities {
		if name == "" {
			return fmt.Errorf("%w: empty capability name", ErrInvalidConfig)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate capability %q", ErrInvalidConfig, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// LoadConfig decodes YAML from r, applies defaults and validates.
func LoadConfig(r io.Reader) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	c = c.withDefaults()
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = f.Close() }()
	return LoadConfig(f)
}
