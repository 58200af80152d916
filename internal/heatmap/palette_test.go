package heatmap

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#e76818")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xe7, G: 0x68, B: 0x18, A: 0xff}, c)

	for _, bad := range []string{"", "e76818", "#e7681", "#zzzzzz", "#e7681800"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

func TestDefaultPalette(t *testing.T) {
	require.Len(t, DefaultPalette, DefaultPaletteSize)
	assert.Equal(t, "#ddffff", DefaultPalette.Hex(0))
	assert.Equal(t, "#ff0000", DefaultPalette.Hex(9))

	// Out-of-range buckets clamp to the ends.
	assert.Equal(t, "#ddffff", DefaultPalette.Hex(-4))
	assert.Equal(t, "#ff0000", DefaultPalette.Hex(12))

	colors := DefaultPalette.Colors()
	require.Len(t, colors, 10)
	assert.Equal(t, color.RGBA{R: 0xff, A: 0xff}, colors[9])
}

func TestPaletteSample(t *testing.T) {
	assert.Equal(t, DefaultPalette, DefaultPalette.Sample(10))
	assert.Equal(t, DefaultPalette, DefaultPalette.Sample(25))
	assert.Nil(t, DefaultPalette.Sample(0))
	assert.Equal(t, Palette{"#ff0000"}, DefaultPalette.Sample(1))

	three := DefaultPalette.Sample(3)
	assert.Equal(t, Palette{"#ddffff", "#ffff8c", "#ff0000"}, three)
}
