package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ChartRenderer draws the bucket grid as a gonum/plot heat map with pixel
// axes. Cells without a placement are drawn in Empty.
type ChartRenderer struct {
	ImageFormat string // any format plot.WriterTo accepts; "png" by default
	Empty       color.Color
	Margin      vg.Length
}

// NewChartRenderer returns a PNG ChartRenderer.
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{
		ImageFormat: "png",
		Empty:       color.Black,
		Margin:      80,
	}
}

func (r *ChartRenderer) Format() string { return r.ImageFormat }

func (r *ChartRenderer) Render(w io.Writer, s Scene) error {
	if len(s.Palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	grid := s.BucketGrid()
	if grid.Cols == 0 || grid.Rows == 0 {
		return fmt.Errorf("canvas %dx%d has no cells at grid size %d", s.Canvas.Width, s.Canvas.Height, s.Canvas.GridSize)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s heatmap", s.Strategy)
	if s.RunID != "" {
		p.Title.Text += " (" + s.RunID + ")"
	}
	p.X.Label.Text = "x (px)"
	p.Y.Label.Text = "y (px)"
	p.Y.Tick.Marker = flippedTicks{}

	hm := plotter.NewHeatMap(chartGrid{grid}, s.Palette)
	// Buckets map one-to-one onto palette entries.
	hm.Min = 0
	hm.Max = float64(len(s.Palette) - 1)
	if hm.Max == 0 {
		hm.Max = 1
	}
	hm.NaN = r.Empty
	p.Add(hm)

	width := vg.Length(s.Canvas.Width) + r.Margin
	height := vg.Length(s.Canvas.Height) + r.Margin
	wt, err := p.WriterTo(width, height, r.ImageFormat)
	if err != nil {
		return fmt.Errorf("failed to create %s canvas: %w", r.ImageFormat, err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// chartGrid adapts a BucketGrid to plotter.GridXYZ. Plot rows run bottom
// up, so row r is canvas row Rows-1-r and Y is the negated pixel centre.
type chartGrid struct {
	g BucketGrid
}

func (c chartGrid) Dims() (int, int) { return c.g.Cols, c.g.Rows }

func (c chartGrid) Z(col, row int) float64 {
	return c.g.At(col, c.g.Rows-1-row)
}

func (c chartGrid) X(col int) float64 {
	return float64(col*c.g.GridSize) + float64(c.g.GridSize)/2
}

func (c chartGrid) Y(row int) float64 {
	return -(float64((c.g.Rows-1-row)*c.g.GridSize) + float64(c.g.GridSize)/2)
}

// flippedTicks labels the negated Y axis with canvas pixel rows.
type flippedTicks struct{}

func (flippedTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			v := -ticks[i].Value
			if v == 0 {
				v = 0
			}
			ticks[i].Label = strconv.FormatFloat(v, 'g', -1, 64)
		}
	}
	return ticks
}
