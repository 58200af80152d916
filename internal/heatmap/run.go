package heatmap

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/heatmap.report/internal/monitoring"
)

// Result is the outcome of one strategy run over an observation set.
type Result struct {
	RunID       string
	Strategy    string
	PaletteSize int
	Placements  []Placement
	// Histogram counts placements per bucket.
	Histogram []int
	Elapsed   time.Duration
	// KDE holds the bandwidth and density field for KDE runs, nil otherwise.
	KDE *KDEResult
}

// Run executes s over obs and tags the output with a fresh run identifier.
func Run(s Strategy, obs []Observation) (*Result, error) {
	runID := uuid.NewString()
	start := time.Now()

	var (
		placements []Placement
		kde        *KDEResult
		err        error
	)
	if k, ok := s.(*KDEStrategy); ok {
		if kde, err = k.Estimate(obs); err == nil {
			placements = k.Placements(kde)
		}
	} else {
		placements, err = s.ComputeColorBuckets(obs)
	}
	if err != nil {
		return nil, fmt.Errorf("%s run %s: %w", s.Name(), runID, err)
	}

	res := &Result{
		RunID:       runID,
		Strategy:    s.Name(),
		PaletteSize: s.PaletteSize(),
		Placements:  placements,
		Histogram:   BucketHistogram(placements, s.PaletteSize()),
		Elapsed:     time.Since(start),
		KDE:         kde,
	}
	monitoring.Logf("[%s] %s: %d observations -> %d squares in %v, buckets=%v",
		runID, res.Strategy, len(obs), len(placements), res.Elapsed, res.Histogram)
	return res, nil
}

// BucketHistogram counts placements per bucket. Buckets outside
// [0, paletteSize) are ignored.
func BucketHistogram(placements []Placement, paletteSize int) []int {
	if paletteSize <= 0 {
		return nil
	}
	hist := make([]int, paletteSize)
	for _, p := range placements {
		if b := int(p.Bucket); b >= 0 && b < paletteSize {
			hist[b]++
		}
	}
	return hist
}
