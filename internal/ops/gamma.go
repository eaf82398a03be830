package ops

import (
	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/colorimetry"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
)

// Gamma applies the forward sRGB transfer function, or passes through when
// the run requested linear output (§4.6.6).
type Gamma struct{}

func NewGamma() *Gamma { return &Gamma{} }

func (op *Gamma) Name() string { return "gamma" }

func (op *Gamma) Run(g *Globals, input *floatbuf.FloatBuffer) *floatbuf.FloatBuffer {
	if g.Settings.Linear {
		return input
	}
	return input.MapCopyingLines(func(line []float32, _ int) {
		for i := range line {
			line[i] = colorimetry.SRGBGammaFwd(colorimetry.Clamp01(line[i]))
		}
	})
}

func (op *Gamma) ToSettings() string     { return marshalSettings(op) }
func (op *Gamma) Hash(h *bufhash.Hasher) { hashNamed(h, op.Name(), op) }

func (op *Gamma) TransformForward(w, h int) (int, int) { return identitySize(w, h) }
func (op *Gamma) TransformReverse(w, h int) (int, int) { return identitySize(w, h) }
