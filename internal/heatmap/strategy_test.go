package heatmap

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heatmap.report/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func kdeOptions() Options {
	return Options{
		Canvas:        Canvas{Width: 20, Height: 20, GridSize: 10},
		Strategy:      StrategyKDE,
		Bandwidth:     DefaultBandwidth,
		BandwidthMode: BandwidthFixed,
		PaletteSize:   DefaultPaletteSize,
	}
}

func TestNewStrategy_Dispatch(t *testing.T) {
	o := kdeOptions()

	s, err := NewStrategy(o)
	require.NoError(t, err)
	assert.IsType(t, &KDEStrategy{}, s)
	assert.Equal(t, StrategyKDE, s.Name())

	o.Strategy = ""
	s, err = NewStrategy(o)
	require.NoError(t, err)
	assert.Equal(t, StrategyKDE, s.Name())

	o.Strategy = StrategyDirect
	s, err = NewStrategy(o)
	require.NoError(t, err)
	assert.IsType(t, &DirectStrategy{}, s)
	assert.Equal(t, 10, s.PaletteSize())

	o.Strategy = "contour"
	_, err = NewStrategy(o)
	assert.Error(t, err)
}

func TestNewKDEStrategy_Validation(t *testing.T) {
	var cfgErr *InvalidConfigurationError

	o := kdeOptions()
	o.Bandwidth = 0
	_, err := NewKDEStrategy(o)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "bandwidth", cfgErr.Field)

	// Estimated bandwidth ignores the fixed value.
	o.BandwidthMode = BandwidthSilverman
	_, err = NewKDEStrategy(o)
	assert.NoError(t, err)

	o = kdeOptions()
	o.PaletteSize = 0
	_, err = NewKDEStrategy(o)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "palette_size", cfgErr.Field)

	o = kdeOptions()
	o.Canvas.Height = 0
	_, err = NewKDEStrategy(o)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "height", cfgErr.Field)

	o = kdeOptions()
	o.BandwidthMode = "adaptive"
	_, err = NewKDEStrategy(o)
	assert.Error(t, err)
}

func TestKDEStrategy_EndToEnd(t *testing.T) {
	s, err := NewKDEStrategy(kdeOptions())
	require.NoError(t, err)
	require.Len(t, s.Grid(), 4)

	placements, err := s.ComputeColorBuckets([]Observation{{X: 0, Y: 0}})
	require.NoError(t, err)
	require.Len(t, placements, 4)

	// Squares are anchored at the cell's top-left corner.
	assert.Equal(t, 0.0, placements[0].X)
	assert.Equal(t, 0.0, placements[0].Y)
	assert.Equal(t, 10.0, placements[3].X)
	assert.Equal(t, 10.0, placements[3].Y)
	for _, p := range placements {
		assert.Equal(t, 10.0, p.Size)
	}

	// The observation sits at pixel (0, 0): the first cell is closest.
	assert.Equal(t, ColorBucket(9), placements[0].Bucket)
	assert.GreaterOrEqual(t, placements[0].Bucket, placements[3].Bucket)
}

func TestKDEStrategy_EmptyObservations(t *testing.T) {
	s, err := NewKDEStrategy(kdeOptions())
	require.NoError(t, err)

	_, err = s.ComputeColorBuckets(nil)
	assert.ErrorIs(t, err, ErrEmptyObservationSet)
}

func TestKDEStrategy_SilvermanBandwidth(t *testing.T) {
	o := kdeOptions()
	o.Canvas = Canvas{Width: 200, Height: 200, GridSize: 10}
	o.BandwidthMode = BandwidthSilverman
	s, err := NewKDEStrategy(o)
	require.NoError(t, err)

	obs := []Observation{{X: 1, Y: 2}, {X: 4, Y: 9}, {X: 7, Y: 3}, {X: 12, Y: 15}, {X: 18, Y: 1}}
	res, err := s.Estimate(obs)
	require.NoError(t, err)

	want, err := EstimateBandwidth(ObservationXs(obs, 10))
	require.NoError(t, err)
	assert.Equal(t, want, res.Bandwidth)
	assert.Len(t, res.Density, 400)
	assert.Len(t, res.Buckets, 400)

	// Constant x-coordinates cannot produce a bandwidth.
	_, err = s.Estimate([]Observation{{X: 3, Y: 1}, {X: 3, Y: 5}, {X: 3, Y: 9}})
	assert.ErrorIs(t, err, ErrDegenerateBandwidth)

	_, err = s.Estimate([]Observation{{X: 3, Y: 1}})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestKDEStrategy_FixedBandwidthIsNotEstimated(t *testing.T) {
	s, err := NewKDEStrategy(kdeOptions())
	require.NoError(t, err)

	// A single observation would fail estimation; the fixed mode never tries.
	res, err := s.Estimate([]Observation{{X: 1, Y: 1}})
	require.NoError(t, err)
	assert.Equal(t, DefaultBandwidth, res.Bandwidth.H)
}

func TestKDEStrategy_WorkersMatchSerial(t *testing.T) {
	o := kdeOptions()
	o.Canvas = Canvas{Width: 160, Height: 120, GridSize: 8}
	o.Bandwidth = 9
	serial, err := NewKDEStrategy(o)
	require.NoError(t, err)

	o.Workers = 4
	parallel, err := NewKDEStrategy(o)
	require.NoError(t, err)

	obs := []Observation{{X: 2, Y: 3}, {X: 10, Y: 10}, {X: 19, Y: 14}, {X: 5, Y: 12}}
	a, err := serial.ComputeColorBuckets(obs)
	require.NoError(t, err)
	b, err := parallel.ComputeColorBuckets(obs)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun(t *testing.T) {
	s, err := NewStrategy(Options{
		Canvas:   Canvas{Width: 100, Height: 100, GridSize: 10},
		Strategy: StrategyDirect,
	})
	require.NoError(t, err)

	obs := []Observation{
		{X: 1, Y: 1, UsersRelative: 1},
		{X: 2, Y: 2, UsersRelative: 10},
		{X: 3, Y: 3, UsersRelative: 10},
	}
	res, err := Run(s, obs)
	require.NoError(t, err)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err, "RunID should be a UUID")
	assert.Equal(t, StrategyDirect, res.Strategy)
	assert.Equal(t, 10, res.PaletteSize)
	assert.Len(t, res.Placements, 3)
	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 0, 0, 0, 2}, res.Histogram)

	assert.Nil(t, res.KDE, "direct runs carry no density field")

	_, err = Run(s, []Observation{{X: 1, Y: 1, UsersRelative: 0}})
	var intErr *InvalidIntensityError
	assert.ErrorAs(t, err, &intErr)
}

func TestRun_KDEKeepsDensityField(t *testing.T) {
	var logged []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		logged = append(logged, fmt.Sprintf(format, v...))
	})
	defer monitoring.SetLogger(nil)

	opts := kdeOptions()
	opts.BandwidthMode = BandwidthSilverman
	s, err := NewStrategy(opts)
	require.NoError(t, err)

	obs := []Observation{{X: 1, Y: 1}, {X: 2, Y: 3}, {X: 4, Y: 2}}
	res, err := Run(s, obs)
	require.NoError(t, err)
	require.NotNil(t, res.KDE)

	kde := s.(*KDEStrategy)
	assert.Len(t, res.KDE.Density, len(kde.Grid()))
	assert.Equal(t, res.KDE.Buckets, bucketsOf(res.Placements))

	// The bandwidth is estimated once per run.
	bwLines := 0
	for _, l := range logged {
		if strings.HasPrefix(l, "bw:") {
			bwLines++
		}
	}
	assert.Equal(t, 1, bwLines)
}

func bucketsOf(placements []Placement) []ColorBucket {
	out := make([]ColorBucket, len(placements))
	for i, p := range placements {
		out[i] = p.Bucket
	}
	return out
}

func TestBucketHistogram(t *testing.T) {
	placements := []Placement{{Bucket: 0}, {Bucket: 2}, {Bucket: 2}, {Bucket: 5}, {Bucket: -1}}
	assert.Equal(t, []int{1, 0, 2}, BucketHistogram(placements, 3))
	assert.Nil(t, BucketHistogram(placements, 0))
}
