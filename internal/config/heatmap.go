package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
)

// DefaultConfigPath is the path to the canonical heatmap defaults file.
const DefaultConfigPath = "config/heatmap.defaults.json"

// Strategy selector values accepted in the config on top of the names
// understood by heatmap.NewStrategy.
const StrategyBoth = "both"

// Output formats understood by the renderers.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatHTML = "html"
)

// HeatmapConfig is the root configuration for a heatmap run. Fields are
// pointers so a partial JSON file only overrides what it names; the Get*
// methods supply defaults for the rest.
type HeatmapConfig struct {
	// Canvas
	Width    *int `json:"width,omitempty"`
	Height   *int `json:"height,omitempty"`
	GridSize *int `json:"grid_size,omitempty"`
	// Columns derives grid_size as width/columns when grid_size is unset.
	Columns *int `json:"columns,omitempty"`

	// Estimation
	Strategy      *string  `json:"strategy,omitempty"` // "kde", "direct" or "both"
	Bandwidth     *float64 `json:"bandwidth,omitempty"`
	BandwidthMode *string  `json:"bandwidth_mode,omitempty"` // "fixed" or "silverman"
	PaletteSize   *int     `json:"palette_size,omitempty"`
	Workers       *int     `json:"workers,omitempty"`
	UseLineLayout *bool    `json:"use_line_layout,omitempty"`

	// Input
	Source         *string `json:"source,omitempty"`
	SyntheticCount *int    `json:"synthetic_count,omitempty"`
	Seed           *int64  `json:"seed,omitempty"`

	// Output
	OutputDir *string  `json:"output_dir,omitempty"`
	Formats   []string `json:"formats,omitempty"`
}

// EmptyHeatmapConfig returns a HeatmapConfig with every field unset.
func EmptyHeatmapConfig() *HeatmapConfig {
	return &HeatmapConfig{}
}

// LoadHeatmapConfig loads a HeatmapConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their defaults.
func LoadHeatmapConfig(path string) (*HeatmapConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyHeatmapConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root. It returns the path
// it loaded, or an empty config and "" when no defaults file is found.
func LoadDefaultConfig() (*HeatmapConfig, string, error) {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/<tool>/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadHeatmapConfig(path)
		if err != nil {
			return nil, path, err
		}
		return cfg, path, nil
	}
	return EmptyHeatmapConfig(), "", nil
}

func positive(field string, v int) error {
	if v <= 0 {
		return &heatmap.InvalidConfigurationError{Field: field, Value: float64(v)}
	}
	return nil
}

// Validate checks the values that are set.
func (c *HeatmapConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"width", c.Width},
		{"height", c.Height},
		{"grid_size", c.GridSize},
		{"columns", c.Columns},
	} {
		if f.v != nil {
			if err := positive(f.name, *f.v); err != nil {
				return err
			}
		}
	}

	if c.Bandwidth != nil && !(*c.Bandwidth > 0) {
		return &heatmap.InvalidConfigurationError{Field: "bandwidth", Value: *c.Bandwidth}
	}

	if c.BandwidthMode != nil {
		switch heatmap.BandwidthMode(*c.BandwidthMode) {
		case heatmap.BandwidthFixed, heatmap.BandwidthSilverman:
		default:
			return fmt.Errorf("bandwidth_mode must be %q or %q, got %q", heatmap.BandwidthFixed, heatmap.BandwidthSilverman, *c.BandwidthMode)
		}
	}

	if c.PaletteSize != nil {
		if err := positive("palette_size", *c.PaletteSize); err != nil {
			return err
		}
		if *c.PaletteSize > len(heatmap.DefaultPalette) {
			return fmt.Errorf("palette_size must be at most %d, got %d", len(heatmap.DefaultPalette), *c.PaletteSize)
		}
	}

	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}

	if c.SyntheticCount != nil && *c.SyntheticCount < 0 {
		return fmt.Errorf("synthetic_count must be non-negative, got %d", *c.SyntheticCount)
	}

	if c.Strategy != nil {
		switch *c.Strategy {
		case heatmap.StrategyKDE, heatmap.StrategyDirect, StrategyBoth:
		default:
			return fmt.Errorf("strategy must be one of kde, direct, both; got %q", *c.Strategy)
		}
	}

	for _, f := range c.Formats {
		switch f {
		case FormatSVG, FormatPNG, FormatHTML:
		default:
			return fmt.Errorf("unknown output format %q", f)
		}
	}

	// A derived grid size must still be positive.
	if c.GridSize == nil && c.Columns != nil && c.GetGridSize() <= 0 {
		return &heatmap.InvalidConfigurationError{Field: "grid_size", Value: float64(c.GetGridSize())}
	}

	return nil
}

// GetWidth returns the canvas width or the default.
func (c *HeatmapConfig) GetWidth() int {
	if c.Width == nil {
		return 640
	}
	return *c.Width
}

// GetHeight returns the canvas height or the default.
func (c *HeatmapConfig) GetHeight() int {
	if c.Height == nil {
		return 1080
	}
	return *c.Height
}

// GetColumns returns the configured column count or the default.
func (c *HeatmapConfig) GetColumns() int {
	if c.Columns == nil {
		return 32
	}
	return *c.Columns
}

// GetGridSize returns grid_size, falling back to width/columns.
func (c *HeatmapConfig) GetGridSize() int {
	if c.GridSize != nil {
		return *c.GridSize
	}
	return c.GetWidth() / c.GetColumns()
}

// GetStrategy returns the strategy selector or the default.
func (c *HeatmapConfig) GetStrategy() string {
	if c.Strategy == nil {
		return heatmap.StrategyKDE
	}
	return *c.Strategy
}

// GetBandwidth returns the fixed kernel bandwidth or the default.
func (c *HeatmapConfig) GetBandwidth() float64 {
	if c.Bandwidth == nil {
		return heatmap.DefaultBandwidth
	}
	return *c.Bandwidth
}

// GetBandwidthMode returns the bandwidth mode or the default (fixed).
func (c *HeatmapConfig) GetBandwidthMode() heatmap.BandwidthMode {
	if c.BandwidthMode == nil {
		return heatmap.BandwidthFixed
	}
	return heatmap.BandwidthMode(*c.BandwidthMode)
}

// GetPaletteSize returns the palette size or the default.
func (c *HeatmapConfig) GetPaletteSize() int {
	if c.PaletteSize == nil {
		return heatmap.DefaultPaletteSize
	}
	return *c.PaletteSize
}

// GetWorkers returns the KDE worker count or the default (serial).
func (c *HeatmapConfig) GetWorkers() int {
	if c.Workers == nil {
		return 1
	}
	return *c.Workers
}

// GetUseLineLayout returns the use_line_layout value or the default.
func (c *HeatmapConfig) GetUseLineLayout() bool {
	if c.UseLineLayout == nil {
		return false
	}
	return *c.UseLineLayout
}

// GetSource returns the observation source path or the default.
func (c *HeatmapConfig) GetSource() string {
	if c.Source == nil {
		return "source.json"
	}
	return *c.Source
}

// GetSyntheticCount returns the number of generated observations used when
// the source is missing.
func (c *HeatmapConfig) GetSyntheticCount() int {
	if c.SyntheticCount == nil {
		return 720
	}
	return *c.SyntheticCount
}

// GetSeed returns the synthetic generator seed or the default.
func (c *HeatmapConfig) GetSeed() int64 {
	if c.Seed == nil {
		return 1
	}
	return *c.Seed
}

// GetOutputDir returns the output directory or the default.
func (c *HeatmapConfig) GetOutputDir() string {
	if c.OutputDir == nil {
		return "."
	}
	return *c.OutputDir
}

// GetFormats returns the output formats or the default (svg only).
func (c *HeatmapConfig) GetFormats() []string {
	if len(c.Formats) == 0 {
		return []string{FormatSVG}
	}
	return c.Formats
}

// Canvas returns the canvas geometry.
func (c *HeatmapConfig) Canvas() heatmap.Canvas {
	return heatmap.Canvas{
		Width:    c.GetWidth(),
		Height:   c.GetHeight(),
		GridSize: c.GetGridSize(),
	}
}

// StrategyNames expands the strategy selector into the strategies to run,
// in the order they should be rendered.
func (c *HeatmapConfig) StrategyNames() []string {
	if c.GetStrategy() == StrategyBoth {
		return []string{heatmap.StrategyDirect, heatmap.StrategyKDE}
	}
	return []string{c.GetStrategy()}
}

// StrategyOptions returns the options for the named strategy.
func (c *HeatmapConfig) StrategyOptions(name string) heatmap.Options {
	return heatmap.Options{
		Canvas:        c.Canvas(),
		Strategy:      name,
		Bandwidth:     c.GetBandwidth(),
		BandwidthMode: c.GetBandwidthMode(),
		PaletteSize:   c.GetPaletteSize(),
		Workers:       c.GetWorkers(),
		UseLineLayout: c.GetUseLineLayout(),
	}
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }
