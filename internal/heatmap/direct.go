package heatmap

import "fmt"

// Bounds of the precomputed intensity carried by observations on the
// direct path.
const (
	MinIntensity = 1
	MaxIntensity = 10
)

// DirectBucket maps a users_relative intensity straight onto a bucket.
func DirectBucket(usersRelative int) (ColorBucket, error) {
	if usersRelative < MinIntensity || usersRelative > MaxIntensity {
		return 0, &InvalidIntensityError{Value: usersRelative}
	}
	return ColorBucket(usersRelative - MinIntensity), nil
}

// DirectStrategy colours one square per observation from its intensity.
// Observations sharing a cell are not aggregated; each produces its own
// translucent square and overlap does the rest.
type DirectStrategy struct {
	Canvas Canvas
	// UseLineLayout pins every square to x = 0.
	UseLineLayout bool
}

// Name implements Strategy.
func (s *DirectStrategy) Name() string { return StrategyDirect }

// PaletteSize implements Strategy. Intensities span the full ten-band scale.
func (s *DirectStrategy) PaletteSize() int { return MaxIntensity - MinIntensity + 1 }

// ComputeColorBuckets implements Strategy. Every intensity is checked before
// any placement is produced.
func (s *DirectStrategy) ComputeColorBuckets(obs []Observation) ([]Placement, error) {
	if err := s.Canvas.Validate(); err != nil {
		return nil, err
	}

	buckets := make([]ColorBucket, len(obs))
	for i, o := range obs {
		b, err := DirectBucket(o.UsersRelative)
		if err != nil {
			return nil, &InvalidIntensityError{Index: i, Value: o.UsersRelative}
		}
		buckets[i] = b
	}

	g := float64(s.Canvas.GridSize)
	out := make([]Placement, len(obs))
	for i, o := range obs {
		x := g * float64(o.X)
		if s.UseLineLayout {
			x = 0
		}
		out[i] = Placement{
			X:      x,
			Y:      g * float64(o.Y),
			Size:   g,
			Bucket: buckets[i],
			Title:  fmt.Sprintf("%d%%", o.UsersRelative*10),
		}
	}
	return out, nil
}
