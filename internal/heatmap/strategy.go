package heatmap

import (
	"fmt"
	"strconv"

	"github.com/banshee-data/heatmap.report/internal/monitoring"
)

// Strategy names accepted by NewStrategy.
const (
	StrategyDirect = "direct"
	StrategyKDE    = "kde"
)

// Strategy turns observations into coloured squares.
type Strategy interface {
	// Name identifies the strategy in logs and output file names.
	Name() string
	// PaletteSize is the number of buckets the strategy emits.
	PaletteSize() int
	// ComputeColorBuckets returns one placement per square to draw.
	ComputeColorBuckets(obs []Observation) ([]Placement, error)
}

// Options configures NewStrategy.
type Options struct {
	Canvas        Canvas
	Strategy      string
	Bandwidth     float64
	BandwidthMode BandwidthMode
	PaletteSize   int
	Workers       int
	UseLineLayout bool
}

// NewStrategy builds the strategy named by o.Strategy.
func NewStrategy(o Options) (Strategy, error) {
	switch o.Strategy {
	case StrategyDirect:
		if err := o.Canvas.Validate(); err != nil {
			return nil, err
		}
		return &DirectStrategy{Canvas: o.Canvas, UseLineLayout: o.UseLineLayout}, nil
	case StrategyKDE, "":
		return NewKDEStrategy(o)
	default:
		return nil, fmt.Errorf("unknown strategy %q", o.Strategy)
	}
}

// KDEStrategy colours every grid cell from a Gaussian kernel density
// estimate of the observations. The grid is built once and reused for every
// computation on the same canvas.
type KDEStrategy struct {
	canvas        Canvas
	grid          []GridCell
	bandwidth     float64
	bandwidthMode BandwidthMode
	paletteSize   int
	workers       int
}

// NewKDEStrategy validates o and precomputes the grid.
func NewKDEStrategy(o Options) (*KDEStrategy, error) {
	grid, err := BuildGrid(o.Canvas)
	if err != nil {
		return nil, err
	}

	mode := o.BandwidthMode
	if mode == "" {
		mode = BandwidthFixed
	}
	switch mode {
	case BandwidthFixed:
		if _, err := NewBandwidth(o.Bandwidth); err != nil {
			return nil, err
		}
	case BandwidthSilverman:
	default:
		return nil, fmt.Errorf("unknown bandwidth mode %q", mode)
	}

	if o.PaletteSize <= 0 {
		return nil, &InvalidConfigurationError{Field: "palette_size", Value: float64(o.PaletteSize)}
	}

	return &KDEStrategy{
		canvas:        o.Canvas,
		grid:          grid,
		bandwidth:     o.Bandwidth,
		bandwidthMode: mode,
		paletteSize:   o.PaletteSize,
		workers:       o.Workers,
	}, nil
}

// Name implements Strategy.
func (s *KDEStrategy) Name() string { return StrategyKDE }

// PaletteSize implements Strategy.
func (s *KDEStrategy) PaletteSize() int { return s.paletteSize }

// Grid returns the cell centres the density is evaluated at.
func (s *KDEStrategy) Grid() []GridCell { return s.grid }

// KDEResult carries the intermediate values of one KDE computation.
type KDEResult struct {
	Bandwidth Bandwidth
	Density   DensityField
	Buckets   []ColorBucket
}

// Estimate runs bandwidth selection, density estimation and colour mapping
// over the strategy's grid.
func (s *KDEStrategy) Estimate(obs []Observation) (*KDEResult, error) {
	if len(obs) == 0 {
		return nil, ErrEmptyObservationSet
	}

	bw, err := s.resolveBandwidth(obs)
	if err != nil {
		return nil, err
	}

	density, err := EstimateDensityParallel(s.grid, obs, s.canvas.GridSize, bw, s.workers)
	if err != nil {
		return nil, fmt.Errorf("estimate density: %w", err)
	}

	buckets, err := MapToColors(density, s.paletteSize)
	if err != nil {
		return nil, fmt.Errorf("map density to colours: %w", err)
	}

	return &KDEResult{Bandwidth: bw, Density: density, Buckets: buckets}, nil
}

func (s *KDEStrategy) resolveBandwidth(obs []Observation) (Bandwidth, error) {
	if s.bandwidthMode != BandwidthSilverman {
		return NewBandwidth(s.bandwidth)
	}
	bw, err := EstimateBandwidth(ObservationXs(obs, s.canvas.GridSize))
	if err != nil {
		return Bandwidth{}, fmt.Errorf("estimate bandwidth: %w", err)
	}
	monitoring.Logf("bw: h=%g, h2=%g", bw.H, bw.H2)
	return bw, nil
}

// ComputeColorBuckets implements Strategy. Squares are anchored at the
// top-left corner of each grid cell.
func (s *KDEStrategy) ComputeColorBuckets(obs []Observation) ([]Placement, error) {
	res, err := s.Estimate(obs)
	if err != nil {
		return nil, err
	}
	return s.Placements(res), nil
}

// Placements converts an estimate into renderer input.
func (s *KDEStrategy) Placements(res *KDEResult) []Placement {
	g := float64(s.canvas.GridSize)
	half := g / 2
	out := make([]Placement, len(s.grid))
	for i, cell := range s.grid {
		out[i] = Placement{
			X:      cell.CX - half,
			Y:      cell.CY - half,
			Size:   g,
			Bucket: res.Buckets[i],
			Title:  strconv.FormatFloat(res.Density[i]*10, 'g', -1, 64),
		}
	}
	return out
}
