package ops

import (
	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/colorimetry"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
)

// FromLab inverts ToLab: Lab -> XYZ -> linear sRGB (rec.709), via the
// analytically-inverted D65 sRGB matrix (§4.6.5).
type FromLab struct{}

func NewFromLab() *FromLab { return &FromLab{} }

func (op *FromLab) Name() string { return "from_lab" }

func (op *FromLab) Run(_ *Globals, input *floatbuf.FloatBuffer) *floatbuf.FloatBuffer {
	return input.MapCopyingLines(func(line []float32, _ int) {
		for pix := 0; pix+3 <= len(line); pix += 3 {
			l, a, b := line[pix], line[pix+1], line[pix+2]
			x, y, z := colorimetry.LabToXYZ(l, a, b)
			r, g, bb := colorimetry.Apply3x3(colorimetry.XYZToSRGBD65, x, y, z)
			line[pix], line[pix+1], line[pix+2] = r, g, bb
		}
	})
}

func (op *FromLab) ToSettings() string     { return marshalSettings(op) }
func (op *FromLab) Hash(h *bufhash.Hasher) { hashNamed(h, op.Name(), op) }

func (op *FromLab) TransformForward(w, h int) (int, int) { return identitySize(w, h) }
func (op *FromLab) TransformReverse(w, h int) (int, int) { return identitySize(w, h) }
