// Package render draws heatmap placements as SVG documents, PNG charts and
// interactive HTML pages.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"path/filepath"

	"github.com/banshee-data/heatmap.report/internal/fsutil"
	"github.com/banshee-data/heatmap.report/internal/heatmap"
	"github.com/banshee-data/heatmap.report/internal/monitoring"
)

// Scene is everything a renderer needs to draw one heatmap run.
type Scene struct {
	Canvas     heatmap.Canvas
	Strategy   string
	RunID      string
	Palette    heatmap.Palette
	Placements []heatmap.Placement
}

// NewScene builds a Scene for a completed run, sampling the default palette
// down to the strategy's palette size.
func NewScene(canvas heatmap.Canvas, res *heatmap.Result) Scene {
	return Scene{
		Canvas:     canvas,
		Strategy:   res.Strategy,
		RunID:      res.RunID,
		Palette:    heatmap.DefaultPalette.Sample(res.PaletteSize),
		Placements: res.Placements,
	}
}

// Renderer writes a Scene in one output format.
type Renderer interface {
	Format() string
	Render(w io.Writer, s Scene) error
}

// ForFormat returns the renderer for an output format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "svg":
		return NewSVGRenderer(), nil
	case "png":
		return NewChartRenderer(), nil
	case "html":
		return NewHTMLRenderer(), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// FileName returns the output file name for a strategy and format:
// heatmap.<ext> for the direct strategy, heatmap_kde.<ext> for KDE.
// A non-empty runID is appended to the stem.
func FileName(strategy, format, runID string) string {
	stem := "heatmap"
	if strategy != heatmap.StrategyDirect {
		stem += "_" + strategy
	}
	if runID != "" {
		stem += "-" + runID
	}
	return stem + "." + format
}

// WriteFile renders s into dir on the local filesystem and returns the
// written path. Nothing is written if rendering fails.
func WriteFile(dir string, r Renderer, s Scene, withRunID bool) (string, error) {
	return WriteFileFS(fsutil.OSFileSystem{}, dir, r, s, withRunID)
}

// WriteFileFS is WriteFile against an arbitrary filesystem.
func WriteFileFS(fsys fsutil.FileSystem, dir string, r Renderer, s Scene, withRunID bool) (string, error) {
	defer monitoring.Stage("render " + s.Strategy + " " + r.Format())()

	var buf bytes.Buffer
	if err := r.Render(&buf, s); err != nil {
		return "", fmt.Errorf("render %s: %w", r.Format(), err)
	}

	runID := ""
	if withRunID {
		runID = s.RunID
	}
	path := filepath.Join(dir, FileName(s.Strategy, r.Format(), runID))
	if err := fsutil.WriteAtomic(fsys, path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// BucketGrid rasterises placements onto the canvas grid. Cells no
// placement lands on hold NaN; where placements overlap the highest bucket
// wins.
type BucketGrid struct {
	Cols, Rows int
	GridSize   int
	Buckets    []float64 // row-major
}

// BucketGrid rasterises the scene's placements.
func (s Scene) BucketGrid() BucketGrid {
	if s.Canvas.Validate() != nil {
		return BucketGrid{GridSize: s.Canvas.GridSize}
	}
	g := BucketGrid{
		Cols:     s.Canvas.Cols(),
		Rows:     s.Canvas.Rows(),
		GridSize: s.Canvas.GridSize,
	}
	if g.Cols == 0 || g.Rows == 0 {
		g.Cols, g.Rows = 0, 0
		return g
	}
	g.Buckets = make([]float64, g.Cols*g.Rows)
	for i := range g.Buckets {
		g.Buckets[i] = math.NaN()
	}

	size := float64(s.Canvas.GridSize)
	for _, p := range s.Placements {
		col := int(math.Floor(p.X / size))
		row := int(math.Floor(p.Y / size))
		if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
			continue
		}
		idx := row*g.Cols + col
		if b := float64(p.Bucket); math.IsNaN(g.Buckets[idx]) || b > g.Buckets[idx] {
			g.Buckets[idx] = b
		}
	}
	return g
}

// At returns the bucket at (col, row) with row 0 at the top of the canvas.
func (g BucketGrid) At(col, row int) float64 {
	return g.Buckets[row*g.Cols+col]
}
