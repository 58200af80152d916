package render

import (
	"bytes"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/heatmap.report/internal/fsutil"
	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	os.Exit(m.Run())
}

func directScene(t *testing.T) Scene {
	t.Helper()
	s, err := heatmap.NewStrategy(heatmap.Options{
		Canvas:   heatmap.Canvas{Width: 100, Height: 60, GridSize: 20},
		Strategy: heatmap.StrategyDirect,
	})
	require.NoError(t, err)
	res, err := heatmap.Run(s, []heatmap.Observation{
		{X: 3, Y: 1, UsersRelative: 7},
		{X: 3, Y: 1, UsersRelative: 2},
		{X: 0, Y: 0, UsersRelative: 10},
		{X: 9, Y: 9, UsersRelative: 5}, // off canvas
	})
	require.NoError(t, err)
	return NewScene(heatmap.Canvas{Width: 100, Height: 60, GridSize: 20}, res)
}

func kdeScene(t *testing.T) Scene {
	t.Helper()
	canvas := heatmap.Canvas{Width: 80, Height: 60, GridSize: 20}
	s, err := heatmap.NewStrategy(heatmap.Options{
		Canvas:        canvas,
		Strategy:      heatmap.StrategyKDE,
		Bandwidth:     15,
		BandwidthMode: heatmap.BandwidthFixed,
		PaletteSize:   5,
	})
	require.NoError(t, err)
	res, err := heatmap.Run(s, []heatmap.Observation{{X: 1, Y: 1}, {X: 2, Y: 1}})
	require.NoError(t, err)
	return NewScene(canvas, res)
}

func TestNewScene(t *testing.T) {
	s := kdeScene(t)
	assert.Equal(t, heatmap.StrategyKDE, s.Strategy)
	assert.NotEmpty(t, s.RunID)
	assert.Len(t, s.Palette, 5)
	assert.Len(t, s.Placements, 12)
}

func TestBucketGrid(t *testing.T) {
	g := directScene(t).BucketGrid()
	require.Equal(t, 5, g.Cols)
	require.Equal(t, 3, g.Rows)

	// Overlapping placements keep the highest bucket.
	assert.Equal(t, 6.0, g.At(3, 1))
	assert.Equal(t, 9.0, g.At(0, 0))
	assert.True(t, math.IsNaN(g.At(1, 1)))

	empty := Scene{Canvas: heatmap.Canvas{Width: 10, Height: 10}}.BucketGrid()
	assert.Zero(t, empty.Cols)
	assert.Empty(t, empty.Buckets)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "heatmap.svg", FileName(heatmap.StrategyDirect, "svg", ""))
	assert.Equal(t, "heatmap_kde.svg", FileName(heatmap.StrategyKDE, "svg", ""))
	assert.Equal(t, "heatmap_kde-abc.html", FileName(heatmap.StrategyKDE, "html", "abc"))
}

func TestForFormat(t *testing.T) {
	for _, f := range []string{"svg", "png", "html"} {
		r, err := ForFormat(f)
		require.NoError(t, err)
		assert.Equal(t, f, r.Format())
	}
	_, err := ForFormat("gif")
	assert.Error(t, err)
}

func TestSVGRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSVGRenderer().Render(&buf, directScene(t)))
	out := buf.String()

	assert.Contains(t, out, `width="100" height="60"`)
	assert.Contains(t, out, `class="ap-Heatmap_Grid"`)
	assert.Contains(t, out, `style="background: black;"`)
	assert.Equal(t, 4, strings.Count(out, "<rect "))
	assert.Contains(t, out, `<rect x="60" y="20" width="20" height="20" opacity="0.4" fill="#f29e2e" stroke="white"`)
	assert.Contains(t, out, "<title>70%</title>")
	assert.Contains(t, out, "<title>100%</title>")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

func TestSVGRenderer_KDE(t *testing.T) {
	s := kdeScene(t)
	var buf bytes.Buffer
	require.NoError(t, NewSVGRenderer().Render(&buf, s))
	out := buf.String()

	assert.Equal(t, len(s.Placements), strings.Count(out, "<rect "))
	// Only sampled palette colours are used.
	for _, p := range s.Placements {
		assert.Contains(t, out, `fill="`+s.Palette.Hex(p.Bucket)+`"`)
	}
	assert.Contains(t, out, `fill="#ff0000"`, "the densest cell takes the top colour")
}

func TestSVGRenderer_EmptyPalette(t *testing.T) {
	s := directScene(t)
	s.Palette = nil
	assert.Error(t, NewSVGRenderer().Render(&bytes.Buffer{}, s))
}

func TestChartRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewChartRenderer().Render(&buf, kdeScene(t)))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	b := img.Bounds()
	assert.Greater(t, b.Dx(), 80)
	assert.Greater(t, b.Dy(), 60)
}

func TestChartRenderer_SinglePaletteEntry(t *testing.T) {
	s := kdeScene(t)
	s.Palette = s.Palette.Sample(1)
	for i := range s.Placements {
		s.Placements[i].Bucket = 0
	}
	var buf bytes.Buffer
	assert.NoError(t, NewChartRenderer().Render(&buf, s))
}

func TestChartRenderer_NoCells(t *testing.T) {
	s := kdeScene(t)
	s.Canvas = heatmap.Canvas{Width: 10, Height: 10, GridSize: 20}
	assert.Error(t, NewChartRenderer().Render(&bytes.Buffer{}, s))
}

func TestChartGrid(t *testing.T) {
	g := chartGrid{directScene(t).BucketGrid()}
	c, r := g.Dims()
	assert.Equal(t, 5, c)
	assert.Equal(t, 3, r)

	// Plot row 0 is the bottom canvas row.
	assert.Equal(t, -50.0, g.Y(0))
	assert.Equal(t, -10.0, g.Y(2))
	assert.Equal(t, 70.0, g.X(3))
	assert.Equal(t, 9.0, g.Z(0, 2))
	assert.Equal(t, 6.0, g.Z(3, 1))
}

func TestHTMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	s := directScene(t)
	require.NoError(t, NewHTMLRenderer().Render(&buf, s))
	out := buf.String()

	assert.Contains(t, out, "<html")
	assert.Contains(t, out, `"heatmap"`)
	assert.Contains(t, out, "piecewise")
	for _, hex := range heatmap.DefaultPalette {
		assert.Contains(t, out, hex)
	}
	assert.Contains(t, out, "run="+s.RunID)
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s := directScene(t)

	path, err := WriteFile(dir, NewSVGRenderer(), s, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "heatmap.svg"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	path, err = WriteFile(dir, NewHTMLRenderer(), s, true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "heatmap-"+s.RunID+".html"), path)

	s.Palette = nil
	_, err = WriteFile(dir, NewChartRenderer(), s, false)
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "heatmap.png"))
	assert.True(t, os.IsNotExist(statErr), "failed renders must not leave files")
}

func TestWriteFileFS(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	s := kdeScene(t)

	for _, r := range []Renderer{NewSVGRenderer(), NewChartRenderer(), NewHTMLRenderer()} {
		_, err := WriteFileFS(mfs, "/out", r, s, false)
		require.NoError(t, err, r.Format())
	}
	assert.Equal(t, []string{"/out/heatmap_kde.html", "/out/heatmap_kde.png", "/out/heatmap_kde.svg"}, mfs.Files())

	mfs.FailRename = true
	_, err := WriteFileFS(mfs, "/out", NewSVGRenderer(), s, true)
	assert.Error(t, err)
	assert.Len(t, mfs.Files(), 3)
}
