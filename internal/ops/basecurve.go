package ops

import (
	"sort"

	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/colorimetry"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
)

// CurvePoint is one control point of a monotonic tone curve, in [0,1]x[0,1].
type CurvePoint struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
}

// BaseCurve applies a monotonic tone curve to the L channel only; a/b pass
// through unchanged (§4.6.4). The default curve is the identity (0,0)-(1,1).
type BaseCurve struct {
	Points []CurvePoint `yaml:"points"`
}

// NewBaseCurve returns the identity curve; every ImageSource gets the same
// default, the curve itself carries no source-derived defaults.
func NewBaseCurve() *BaseCurve {
	return &BaseCurve{Points: []CurvePoint{{X: 0, Y: 0}, {X: 1, Y: 1}}}
}

func (op *BaseCurve) Name() string { return "base_curve" }

// eval piecewise-linearly interpolates the curve at l, clamping outside the
// control points' span.
func (op *BaseCurve) eval(l float32) float32 {
	pts := op.Points
	if len(pts) == 0 {
		return l
	}
	if l <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if l >= last.X {
		return last.Y
	}
	idx := sort.Search(len(pts), func(i int) bool { return pts[i].X >= l })
	a, b := pts[idx-1], pts[idx]
	if b.X == a.X {
		return a.Y
	}
	t := (l - a.X) / (b.X - a.X)
	return a.Y + t*(b.Y-a.Y)
}

func (op *BaseCurve) Run(_ *Globals, input *floatbuf.FloatBuffer) *floatbuf.FloatBuffer {
	return input.MapCopyingLines(func(line []float32, _ int) {
		for pix := 0; pix+3 <= len(line); pix += 3 {
			line[pix] = colorimetry.Clamp01(op.eval(line[pix]))
		}
	})
}

func (op *BaseCurve) ToSettings() string     { return marshalSettings(op) }
func (op *BaseCurve) Hash(h *bufhash.Hasher) { hashNamed(h, op.Name(), op) }

func (op *BaseCurve) TransformForward(w, h int) (int, int) { return identitySize(w, h) }
func (op *BaseCurve) TransformReverse(w, h int) (int, int) { return identitySize(w, h) }
