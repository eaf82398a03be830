package ops

import (
	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/cfa"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
	"github.com/AnyUserName/imagepipe/internal/scale"
)

// Demosaic reconstructs 4 color channels per pixel from CFA data,
// optionally fusing the reconstruction with the run's downscale (§4.6.2).
// CFA carries the decoder's pattern struct directly rather than its short
// name, since width-8/width-12 CFAs (§4.6.2) have no name minScaleFor could
// round-trip through.
type Demosaic struct {
	CFA cfa.Pattern `yaml:"cfa"`
}

// NewDemosaic copies the CFA pattern from the source; raster and
// already-demosaiced raw sources get the empty pattern.
func NewDemosaic(src imgsrc.ImageSource) *Demosaic {
	if src.Kind == imgsrc.KindRaw {
		return &Demosaic{CFA: src.Raw.CroppedCFA()}
	}
	return &Demosaic{}
}

func (op *Demosaic) Name() string { return "demosaic" }

func minScaleFor(pattern cfa.Pattern) float64 {
	switch pattern.Width() {
	case 2:
		return 2.0
	case 6:
		return 3.0
	case 8:
		return 2.0
	case 12:
		return 12.0
	default:
		return 2.0
	}
}

func (op *Demosaic) Run(g *Globals, input *floatbuf.FloatBuffer) *floatbuf.FloatBuffer {
	nwidth := g.Settings.DemosaicWidth
	nheight := g.Settings.DemosaicHeight
	scaleFactor, _, _ := scale.CalculateScale(input.Width, input.Height, nwidth, nheight)

	pattern := op.CFA

	switch {
	case input.Colors == 4 && scaleFactor <= 1.0:
		return input
	case input.Colors == 4:
		tl, tr, bl := scale.AxisAligned(input.Width, input.Height)
		return input.Transform(tl, tr, bl, nwidth, nheight, cfa.Pattern{})
	case scaleFactor >= minScaleFor(pattern):
		tl, tr, bl := scale.AxisAligned(input.Width, input.Height)
		return input.Transform(tl, tr, bl, nwidth, nheight, pattern)
	default:
		data := scale.FullDemosaic(input.Data, input.Width, input.Height, pattern)
		full := &floatbuf.FloatBuffer{Width: input.Width, Height: input.Height, Colors: 4, Monochrome: input.Monochrome, Data: data}
		if scaleFactor > 1.0 {
			tl, tr, bl := scale.AxisAligned(full.Width, full.Height)
			return full.Transform(tl, tr, bl, nwidth, nheight, cfa.Pattern{})
		}
		return full
	}
}

func (op *Demosaic) ToSettings() string     { return marshalSettings(op) }
func (op *Demosaic) Hash(h *bufhash.Hasher) { hashNamed(h, op.Name(), op) }

func (op *Demosaic) TransformForward(w, h int) (int, int) { return identitySize(w, h) }
func (op *Demosaic) TransformReverse(w, h int) (int, int) { return identitySize(w, h) }
