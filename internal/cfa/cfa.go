// Package cfa describes a camera's color filter array pattern: a small
// repeating tile of color indices (0=R, 1=G, 2=B, 3=E/second-green or
// emerald depending on sensor) that the demosaic and scale stages consult
// pixel-by-pixel.
package cfa

import "gopkg.in/yaml.v3"

// Pattern is a parsed CFA tile. Color indices are in {0,1,2,3}; width and
// height give the tile's repeat period.
type Pattern struct {
	width, height int
	colors        []int
}

// New parses a CFA pattern string. The accepted vocabulary mirrors the
// common Bayer/X-Trans names: "RGGB", "BGGR", "GRBG", "GBRG" (2x2), "XTRANS"
// (6x6), and "" for a non-CFA (already demosaiced or raster) source, which
// yields a degenerate 1x1 pattern always reporting color 0.
func New(name string) Pattern {
	switch name {
	case "RGGB":
		return tile2x2(0, 1, 1, 2)
	case "BGGR":
		return tile2x2(2, 1, 1, 0)
	case "GRBG":
		return tile2x2(1, 0, 2, 1)
	case "GBRG":
		return tile2x2(1, 2, 0, 1)
	case "XTRANS":
		return xtrans()
	default:
		return Pattern{width: 1, height: 1, colors: []int{0}}
	}
}

func tile2x2(a, b, c, d int) Pattern {
	return Pattern{width: 2, height: 2, colors: []int{a, b, c, d}}
}

// xtrans builds the canonical 6x6 Fujifilm X-Trans tile.
func xtrans() Pattern {
	// G B G G R G
	// R G R B G B
	// G B G G R G
	// G R G G B G
	// B G B R G R
	// G R G G B G
	rows := [6][6]int{
		{1, 2, 1, 1, 0, 1},
		{0, 1, 0, 2, 1, 2},
		{1, 2, 1, 1, 0, 1},
		{1, 0, 1, 1, 2, 1},
		{2, 1, 2, 0, 1, 0},
		{1, 0, 1, 1, 2, 1},
	}
	colors := make([]int, 0, 36)
	for _, row := range rows {
		colors = append(colors, row[:]...)
	}
	return Pattern{width: 6, height: 6, colors: colors}
}

// Width reports the tile's repeat width, used by the demosaic stage to pick
// its minimum useful downscale factor.
func (p Pattern) Width() int { return p.width }

// Height reports the tile's repeat height.
func (p Pattern) Height() int { return p.height }

// ColorAt returns the color index at the given (row, col), wrapping into
// the tile. Negative coordinates wrap correctly (Go's % can be negative).
func (p Pattern) ColorAt(row, col int) int {
	r := row % p.height
	if r < 0 {
		r += p.height
	}
	c := col % p.width
	if c < 0 {
		c += p.width
	}
	return p.colors[r*p.width+c]
}

// Empty reports whether this is the degenerate non-CFA pattern.
func (p Pattern) Empty() bool { return p.width == 1 && p.height == 1 }

// String reconstructs a name good enough for logging: "" for the empty
// pattern, "XTRANS" for any 6-wide tile, and otherwise one of the four
// Bayer names chosen from the first cells, whatever the tile's size.
func (p Pattern) String() string {
	if p.Empty() {
		return ""
	}
	if p.width == 6 {
		return "XTRANS"
	}
	switch {
	case p.colors[0] == 0:
		return "RGGB"
	case p.colors[0] == 2:
		return "BGGR"
	case p.colors[1] == 0:
		return "GRBG"
	default:
		return "GBRG"
	}
}

// yamlPattern is Pattern's exported wire shape; width/height/colors stay
// unexported on Pattern itself so ColorAt's bounds stay consistent with
// the slice length, the way rawDetails.cfaPattern keeps its raw tile
// bytes private to the decoder that fills them.
type yamlPattern struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Colors []int `yaml:"colors,flow"`
}

// MarshalYAML encodes the full tile, not just a name, so patterns with no
// matching Bayer/X-Trans name (the wide CFAs minScaleFor anticipates) still
// round-trip.
func (p Pattern) MarshalYAML() (interface{}, error) {
	return yamlPattern{Width: p.width, Height: p.height, Colors: p.colors}, nil
}

// UnmarshalYAML restores a Pattern written by MarshalYAML.
func (p *Pattern) UnmarshalYAML(value *yaml.Node) error {
	var y yamlPattern
	if err := value.Decode(&y); err != nil {
		return err
	}
	p.width, p.height, p.colors = y.Width, y.Height, y.Colors
	return nil
}
