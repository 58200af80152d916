package heatmap

import (
	"fmt"
	"image/color"
)

// Palette is an ordered list of hex colours, coolest first. It satisfies
// gonum's palette.Palette via Colors.
type Palette []string

// DefaultPalette is the ten-band heat scale.
var DefaultPalette = Palette{
	"#ddffff", // blue    1% -  9%
	"#afffff", // blue   10% - 19%
	"#aaf191", // green  20% - 29%
	"#80d385", // green  30% - 39%
	"#ffff8c", // yellow 40% - 49%
	"#f9d057", // yellow 50% - 59%
	"#f29e2e", // orange 60% - 69%
	"#e76818", // orange 70% - 79%
	"#ff6161", // red    80% - 89%
	"#ff0000", // red    90% - 100%
}

// Hex returns the colour string for bucket b, clamping out-of-range buckets
// to the nearest end of the palette.
func (p Palette) Hex(b ColorBucket) string {
	i := int(b)
	if i < 0 {
		i = 0
	}
	if i >= len(p) {
		i = len(p) - 1
	}
	return p[i]
}

// Color returns bucket b as an opaque RGBA colour.
func (p Palette) Color(b ColorBucket) color.RGBA {
	c, err := ParseHexColor(p.Hex(b))
	if err != nil {
		// Palettes are compile-time constants; a bad entry is a programming error.
		panic(err)
	}
	return c
}

// Colors returns every palette entry as a color.Color.
func (p Palette) Colors() []color.Color {
	out := make([]color.Color, len(p))
	for i := range p {
		out[i] = p.Color(ColorBucket(i))
	}
	return out
}

// Sample picks n entries spread evenly across p, always keeping both ends.
// It is used when fewer buckets than palette entries are configured.
func (p Palette) Sample(n int) Palette {
	if n <= 0 {
		return nil
	}
	if n >= len(p) {
		return p
	}
	if n == 1 {
		return Palette{p[len(p)-1]}
	}
	out := make(Palette, n)
	for i := 0; i < n; i++ {
		out[i] = p[i*(len(p)-1)/(n-1)]
	}
	return out
}

// ParseHexColor parses "#rrggbb" into an opaque colour.
func ParseHexColor(s string) (color.RGBA, error) {
	c := color.RGBA{A: 0xff}
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid hex colour %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	return c, nil
}
