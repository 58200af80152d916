// Package heatmap turns a set of discrete observations into colour buckets
// over a regular canvas grid.
//
// Two strategies are provided. The direct strategy colours one square per
// observation from its precomputed relative intensity. The KDE strategy
// smooths all observations with a Gaussian kernel, evaluates the density at
// every grid cell centre and quantises the result onto the palette.
//
// Nothing in this package performs I/O; observation sources live in
// internal/observations and renderers in internal/render.
package heatmap

// Observation is a single input point in grid-cell units.
//
// UsersRelative is only consulted by the direct strategy. Zero means the
// observation carries no intensity.
type Observation struct {
	X             int `json:"x"`
	Y             int `json:"y"`
	UsersRelative int `json:"users_relative,omitempty"`
}

// GridCell is a sample location in canvas pixel coordinates: the centre of a
// gridSize square.
type GridCell struct {
	CX float64
	CY float64
}

// DensityField holds one non-negative density value per grid cell,
// index-aligned with the grid it was computed over.
type DensityField []float64

// ColorBucket indexes the palette. Bucket 0 is the faint end.
type ColorBucket int

// Placement is a coloured square handed to a renderer. X and Y are the
// top-left pixel corner.
type Placement struct {
	X      float64
	Y      float64
	Size   float64
	Bucket ColorBucket
	// Title is the hover text attached to the square.
	Title string
}

// Canvas describes the pixel geometry shared by grid construction and
// placement.
type Canvas struct {
	Width    int
	Height   int
	GridSize int
}

// Validate reports an InvalidConfigurationError for non-positive dimensions.
func (c Canvas) Validate() error {
	if c.Width <= 0 {
		return &InvalidConfigurationError{Field: "width", Value: float64(c.Width)}
	}
	if c.Height <= 0 {
		return &InvalidConfigurationError{Field: "height", Value: float64(c.Height)}
	}
	if c.GridSize <= 0 {
		return &InvalidConfigurationError{Field: "grid_size", Value: float64(c.GridSize)}
	}
	return nil
}

// Rows returns the number of whole grid rows that fit on the canvas.
func (c Canvas) Rows() int { return c.Height / c.GridSize }

// Cols returns the number of whole grid columns that fit on the canvas.
func (c Canvas) Cols() int { return c.Width / c.GridSize }
