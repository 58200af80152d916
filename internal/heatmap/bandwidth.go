package heatmap

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultBandwidth is the fixed kernel bandwidth used when estimation is
// not requested.
const DefaultBandwidth = 0.389

// BandwidthMode selects how the kernel bandwidth is obtained.
type BandwidthMode string

const (
	// BandwidthFixed uses the configured constant.
	BandwidthFixed BandwidthMode = "fixed"
	// BandwidthSilverman estimates the bandwidth from the x-coordinates of
	// the observations.
	BandwidthSilverman BandwidthMode = "silverman"
)

// Bandwidth is the kernel smoothing parameter and its square.
type Bandwidth struct {
	H  float64
	H2 float64
}

// NewBandwidth validates h and precomputes its square.
func NewBandwidth(h float64) (Bandwidth, error) {
	if !(h > 0) || math.IsInf(h, 0) {
		return Bandwidth{}, &InvalidConfigurationError{Field: "bandwidth", Value: h}
	}
	return Bandwidth{H: h, H2: h * h}, nil
}

// EstimateBandwidth applies Silverman's rule of thumb to xs:
//
//	h = 1.06 * min(stddev, iqr/1.34) * n^(-1/5)
//
// where iqr is the pseudo interquartile range taken from the medians of the
// sorted halves. xs is not modified.
//
// Constant input has no spread and fails with ErrDegenerateBandwidth.
func EstimateBandwidth(xs []float64) (Bandwidth, error) {
	n := len(xs)
	if n < 2 {
		return Bandwidth{}, ErrInsufficientData
	}

	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	sd := stat.StdDev(sorted, nil)
	spread := sd
	// A collapsed IQR (heavy ties around the quartiles) falls back to the
	// standard deviation alone.
	if iqr := pseudoIQR(sorted); iqr > 0 {
		spread = math.Min(sd, iqr/1.34)
	}
	if !(spread > 0) {
		return Bandwidth{}, ErrDegenerateBandwidth
	}

	h := 1.06 * spread * math.Pow(float64(n), -0.2)
	return Bandwidth{H: h, H2: h * h}, nil
}

// pseudoIQR returns lowMedian(upper half) - highMedian(lower half) of a
// sorted slice with at least two elements. For odd lengths the middle
// element belongs to the upper half.
func pseudoIQR(sorted []float64) float64 {
	mid := len(sorted) / 2
	return lowMedian(sorted[mid:]) - highMedian(sorted[:mid])
}

// lowMedian returns the smaller of the two middle values for even lengths.
func lowMedian(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1]
}

// highMedian returns the larger of the two middle values for even lengths.
func highMedian(sorted []float64) float64 {
	return sorted[len(sorted)/2]
}

// ObservationXs extracts the pixel-space x-coordinates of obs, the sample
// the bandwidth estimate is taken over. The kernel is evaluated in pixel
// space, so the bandwidth has to be measured there too.
func ObservationXs(obs []Observation, gridSize int) []float64 {
	xs := make([]float64, len(obs))
	for i, o := range obs {
		xs[i] = float64(o.X) * float64(gridSize)
	}
	return xs
}
