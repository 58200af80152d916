package render

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLRenderer writes an interactive go-echarts heatmap page. Each palette
// entry becomes one piece of a piecewise visual map.
type HTMLRenderer struct {
	Theme      string
	AssetsHost string // empty uses the go-echarts default CDN
}

// NewHTMLRenderer returns an HTMLRenderer using the dark theme.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{Theme: "dark"}
}

func (r *HTMLRenderer) Format() string { return "html" }

func (r *HTMLRenderer) Render(w io.Writer, s Scene) error {
	if len(s.Palette) == 0 {
		return fmt.Errorf("empty palette")
	}
	grid := s.BucketGrid()

	cols := make([]string, grid.Cols)
	for c := range cols {
		cols[c] = strconv.Itoa(c * grid.GridSize)
	}
	rows := make([]string, grid.Rows)
	for i := range rows {
		rows[i] = strconv.Itoa(i * grid.GridSize)
	}

	data := make([]opts.HeatMapData, 0, len(grid.Buckets))
	for row := 0; row < grid.Rows; row++ {
		for col := 0; col < grid.Cols; col++ {
			b := grid.At(col, row)
			if math.IsNaN(b) {
				continue
			}
			data = append(data, opts.HeatMapData{Value: []interface{}{col, row, int(b)}})
		}
	}

	// Buckets are integers; half-open pieces keep every bound non-zero.
	pieces := make([]opts.Piece, len(s.Palette))
	for i, hex := range s.Palette {
		pieces[i] = opts.Piece{Gte: float32(i) - 0.5, Lt: float32(i) + 0.5, Color: hex}
	}

	subtitle := fmt.Sprintf("strategy=%s cells=%d", s.Strategy, len(data))
	if s.RunID != "" {
		subtitle += " run=" + s.RunID
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "Heatmap",
			Theme:           r.Theme,
			Width:           fmt.Sprintf("%dpx", s.Canvas.Width+160),
			Height:          fmt.Sprintf("%dpx", s.Canvas.Height+120),
			BackgroundColor: "#000000",
			AssetsHost:      r.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Heatmap", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "x (px)", SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "y (px)", Data: rows, Inverse: opts.Bool(true), SplitArea: &opts.SplitArea{Show: opts.Bool(true)}}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Type:   "piecewise",
			Show:   opts.Bool(true),
			Orient: "vertical",
			Right:  "10",
			Top:    "center",
			Pieces: pieces,
		}),
	)
	hm.SetXAxis(cols).AddSeries(s.Strategy, data)

	return hm.Render(w)
}
