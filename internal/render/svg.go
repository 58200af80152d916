package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	svg "github.com/ajstarks/svgo/float"
)

// SVGRenderer draws one translucent square per placement on a black
// document, each carrying its title as a tooltip.
type SVGRenderer struct {
	Opacity    float64
	Stroke     string
	Background string
	Class      string
}

// NewSVGRenderer returns an SVGRenderer with the standard heatmap style.
func NewSVGRenderer() *SVGRenderer {
	return &SVGRenderer{
		Opacity:    0.4,
		Stroke:     "white",
		Background: "black",
		Class:      "ap-Heatmap_Grid",
	}
}

func (r *SVGRenderer) Format() string { return "svg" }

func (r *SVGRenderer) Render(w io.Writer, s Scene) error {
	if len(s.Palette) == 0 {
		return fmt.Errorf("empty palette")
	}

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Decimals = 0

	canvas.Start(float64(s.Canvas.Width), float64(s.Canvas.Height),
		fmt.Sprintf(`class="%s"`, r.Class),
		fmt.Sprintf(`style="background: %s;"`, r.Background),
	)
	canvas.Group(`id="cells"`)

	opacity := fmt.Sprintf(`opacity="%s"`, strconv.FormatFloat(r.Opacity, 'g', -1, 64))
	stroke := fmt.Sprintf(`stroke="%s"`, r.Stroke)
	for _, p := range s.Placements {
		canvas.Group()
		canvas.Title(p.Title)
		canvas.Rect(p.X, p.Y, p.Size, p.Size,
			opacity,
			fmt.Sprintf(`fill="%s"`, s.Palette.Hex(p.Bucket)),
			stroke,
		)
		canvas.Gend()
	}

	canvas.Gend()
	canvas.End()

	_, err := buf.WriteTo(w)
	return err
}
