package heatmap

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DensityExponent compresses the density range before quantisation so a
// few hotspots do not flatten the rest of the scale.
const DensityExponent = 0.4

// DefaultPaletteSize is the number of colour buckets in the default palette.
const DefaultPaletteSize = 10

// CompressDensity returns v^DensityExponent for every value of field.
func CompressDensity(field DensityField) []float64 {
	out := make([]float64, len(field))
	for i, v := range field {
		out[i] = math.Pow(v, DensityExponent)
	}
	return out
}

// OuterScale quantises value against domainMax onto paletteSize buckets.
// The exact maximum lands in the last bucket rather than one past it, and a
// non-positive domainMax maps everything to bucket 0.
func OuterScale(value, domainMax float64, paletteSize int) ColorBucket {
	if !(domainMax > 0) {
		return 0
	}
	d := int(math.Floor(value / domainMax * float64(paletteSize)))
	if d >= paletteSize {
		return ColorBucket(paletteSize - 1)
	}
	if d < 0 {
		return 0
	}
	return ColorBucket(d)
}

// MapToColors assigns every density value a bucket in [0, paletteSize-1],
// relative to the largest compressed density in the field.
func MapToColors(density DensityField, paletteSize int) ([]ColorBucket, error) {
	if paletteSize <= 0 {
		return nil, &InvalidConfigurationError{Field: "palette_size", Value: float64(paletteSize)}
	}

	buckets := make([]ColorBucket, len(density))
	if len(density) == 0 {
		return buckets, nil
	}

	compressed := CompressDensity(density)
	domainMax := floats.Max(compressed)
	for i, v := range compressed {
		buckets[i] = OuterScale(v, domainMax, paletteSize)
	}
	return buckets, nil
}
