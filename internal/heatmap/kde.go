package heatmap

import (
	"math"

	"golang.org/x/sync/errgroup"
)

// sqrt2Pi is the normalising constant of the standard normal density.
const sqrt2Pi = math.Sqrt2 * math.SqrtPi

// GaussianKernel is the standard normal density at u.
func GaussianKernel(u float64) float64 {
	return math.Exp(-u*u/2) / sqrt2Pi
}

// Norm is the Euclidean distance between (ax, ay) and (bx, by).
func Norm(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return math.Sqrt(dx*dx + dy*dy)
}

// samplePoint is an observation moved into canvas pixel space.
type samplePoint struct {
	x, y float64
}

// scaleObservations converts grid-cell coordinates to pixel coordinates so
// they share units with GridCell centres.
func scaleObservations(obs []Observation, gridSize int) []samplePoint {
	g := float64(gridSize)
	pts := make([]samplePoint, len(obs))
	for i, o := range obs {
		pts[i] = samplePoint{x: float64(o.X) * g, y: float64(o.Y) * g}
	}
	return pts
}

// densityAt is the kernel density estimate at cell. The kernel sum runs in
// observation order so results are reproducible bit for bit.
func densityAt(cell GridCell, pts []samplePoint, bw Bandwidth) float64 {
	var sum float64
	for _, p := range pts {
		sum += GaussianKernel(Norm(p.x, p.y, cell.CX, cell.CY) / bw.H)
	}
	return sum / float64(len(pts)) / bw.H2
}

func checkDensityInputs(obs []Observation, gridSize int, bw Bandwidth) error {
	if gridSize <= 0 {
		return &InvalidConfigurationError{Field: "grid_size", Value: float64(gridSize)}
	}
	if !(bw.H > 0) {
		return &InvalidConfigurationError{Field: "bandwidth", Value: bw.H}
	}
	if len(obs) == 0 {
		return ErrEmptyObservationSet
	}
	return nil
}

// EstimateDensity evaluates the Gaussian KDE of obs at every cell of grid.
// Observation coordinates are in grid-cell units and are scaled by gridSize
// before distances are taken. The returned field is index-aligned with grid.
func EstimateDensity(grid []GridCell, obs []Observation, gridSize int, bw Bandwidth) (DensityField, error) {
	if err := checkDensityInputs(obs, gridSize, bw); err != nil {
		return nil, err
	}

	pts := scaleObservations(obs, gridSize)
	field := make(DensityField, len(grid))
	for i, cell := range grid {
		field[i] = densityAt(cell, pts, bw)
	}
	return field, nil
}

// EstimateDensityParallel is EstimateDensity with the grid split into
// contiguous chunks evaluated by up to workers goroutines. Each cell is
// still summed sequentially, so the output is identical to the serial path.
func EstimateDensityParallel(grid []GridCell, obs []Observation, gridSize int, bw Bandwidth, workers int) (DensityField, error) {
	if workers <= 1 || len(grid) < 2 {
		return EstimateDensity(grid, obs, gridSize, bw)
	}
	if err := checkDensityInputs(obs, gridSize, bw); err != nil {
		return nil, err
	}
	if workers > len(grid) {
		workers = len(grid)
	}

	pts := scaleObservations(obs, gridSize)
	field := make(DensityField, len(grid))
	chunk := (len(grid) + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < len(grid); start += chunk {
		end := min(start+chunk, len(grid))
		g.Go(func() error {
			for i := start; i < end; i++ {
				field[i] = densityAt(grid[i], pts, bw)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return field, nil
}
