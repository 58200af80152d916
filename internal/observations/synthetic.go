package observations

import (
	"math/rand"

	"github.com/banshee-data/heatmap.report/internal/heatmap"
)

// Generator produces random interaction observations for demos and tests.
type Generator struct {
	// Configuration
	Count   int // observations per call to Generate
	Columns int // x is drawn from [0, Columns-1]
	MaxY    int // y is drawn from [0, MaxY]

	rng *rand.Rand
}

// NewGenerator returns a Generator matching the default 640px canvas split
// into 32 columns. The same seed always yields the same observations.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Count:   720,
		Columns: 32,
		MaxY:    100,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Generate returns Count observations with users_relative in [1, 10].
func (g *Generator) Generate() []heatmap.Observation {
	if g.Count <= 0 || g.Columns <= 0 || g.MaxY < 0 {
		return nil
	}
	obs := make([]heatmap.Observation, g.Count)
	for i := range obs {
		obs[i] = heatmap.Observation{
			X:             g.rng.Intn(g.Columns),
			Y:             g.rng.Intn(g.MaxY + 1),
			UsersRelative: heatmap.MinIntensity + g.rng.Intn(heatmap.MaxIntensity-heatmap.MinIntensity+1),
		}
	}
	return obs
}
