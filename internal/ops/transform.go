package ops

import (
	"math"

	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/cfa"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
	"github.com/AnyUserName/imagepipe/internal/scale"
)

// Rotation is the discrete, EXIF-derived quarter-turn component of
// Transform; it combines with FlipH/FlipV to reproduce any of the 8 EXIF
// orientations, and with the continuous rotation/crop fields for the
// affine part (§4.6.7).
type Rotation int

const (
	RotationNormal Rotation = iota
	Rotation90
	Rotation180
	Rotation270
)

// transformEpsilon treats crops/rotation smaller than one part in a
// million as a no-op, matching the affine-crop no-op threshold.
const transformEpsilon = 1.0 / 1000000.0

// Transform composes a discrete orientation fixup (transpose + axis flips,
// derived from EXIF orientation and the Rotation/FlipH/FlipV fields) with
// a continuous affine rotate-and-crop pass driven by the §4.5 resampler.
type Transform struct {
	Rotation Rotation `yaml:"rotation"`
	FlipH    bool     `yaml:"fliph"`
	FlipV    bool     `yaml:"flipv"`

	CropTop    float32 `yaml:"crop_top"`
	CropRight  float32 `yaml:"crop_right"`
	CropBottom float32 `yaml:"crop_bottom"`
	CropLeft   float32 `yaml:"crop_left"`
	RotationFrac float32 `yaml:"rotation_frac"`

	inputRatio float32
	committed  bool
	outW, outH int
}

// NewTransform derives the discrete orientation fields from the source's
// EXIF orientation; the continuous rotate/crop fields default to identity.
func NewTransform(src imgsrc.ImageSource) *Transform {
	t := &Transform{inputRatio: 1.0}
	if src.Kind != imgsrc.KindRaw {
		return t
	}
	switch src.Raw.Orientation() {
	case imgsrc.OrientationNormal, imgsrc.OrientationUnknown:
		t.Rotation, t.FlipH, t.FlipV = RotationNormal, false, false
	case imgsrc.OrientationVerticalFlip:
		t.Rotation, t.FlipH, t.FlipV = RotationNormal, false, true
	case imgsrc.OrientationHorizontalFlip:
		t.Rotation, t.FlipH, t.FlipV = RotationNormal, true, false
	case imgsrc.OrientationRotate180:
		t.Rotation, t.FlipH, t.FlipV = Rotation180, false, false
	case imgsrc.OrientationTranspose:
		t.Rotation, t.FlipH, t.FlipV = Rotation90, false, true
	case imgsrc.OrientationRotate90:
		t.Rotation, t.FlipH, t.FlipV = Rotation90, false, false
	case imgsrc.OrientationRotate270:
		t.Rotation, t.FlipH, t.FlipV = Rotation270, false, false
	case imgsrc.OrientationTransverse:
		t.Rotation, t.FlipH, t.FlipV = Rotation270, true, false
	}
	return t
}

func (op *Transform) Name() string { return "transform" }

// flips derives (transpose, flipX, flipY) from the discrete rotation enum
// and the fliph/flipv xor, the same composition the original uses to fold
// a base quarter-turn orientation together with a user-requested mirror.
func (op *Transform) flips() (transpose, flipX, flipY bool) {
	var baseX, baseY bool
	switch op.Rotation {
	case RotationNormal:
		transpose, baseX, baseY = false, false, false
	case Rotation90:
		transpose, baseX, baseY = true, true, false
	case Rotation180:
		transpose, baseX, baseY = false, true, true
	case Rotation270:
		transpose, baseX, baseY = true, false, true
	}
	return transpose, baseX != op.FlipH, baseY != op.FlipV
}

func (op *Transform) noopCrop() bool {
	return absf32(op.RotationFrac) < transformEpsilon &&
		absf32(op.CropTop) < transformEpsilon &&
		absf32(op.CropRight) < transformEpsilon &&
		absf32(op.CropBottom) < transformEpsilon &&
		absf32(op.CropLeft) < transformEpsilon
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func (op *Transform) Run(_ *Globals, input *floatbuf.FloatBuffer) *floatbuf.FloatBuffer {
	transpose, flipX, flipY := op.flips()

	buf := input
	if transpose || flipX || flipY {
		buf = discreteTransform(buf, transpose, flipX, flipY)
	}

	if op.noopCrop() {
		return buf
	}

	ow, oh := op.calcSize(buf.Width, buf.Height, false)
	if ow == buf.Width && oh == buf.Height && op.RotationFrac < transformEpsilon {
		return buf
	}

	tl, tr, bl := rotateCropParallelogram(buf.Width, buf.Height, ow, oh, op.RotationFrac, op.CropTop, op.CropRight, op.CropBottom, op.CropLeft)
	return buf.Transform(tl, tr, bl, ow, oh, cfa.Pattern{})
}

// rotateCropParallelogram derives the source-space destination
// parallelogram for a rotate-then-crop: a sub-rectangle of the rotated
// canvas (cropped from each edge by the given fractions), expressed back
// in the unrotated source buffer's coordinates.
func rotateCropParallelogram(srcW, srcH, outW, outH int, rotationFrac, cropTop, cropRight, cropBottom, cropLeft float32) (tl, tr, bl scale.Corner) {
	angle := (math.Pi / 2) * float64(minf32(rotationFrac, 1.0))
	sin, cos := math.Sin(angle), math.Cos(angle)

	cx := float64(srcW-1) / 2.0
	cy := float64(srcH-1) / 2.0

	rw := float64(srcW)*cos + float64(srcH)*sin
	rh := float64(srcW)*sin + float64(srcH)*cos

	xmin := -rw/2.0 + float64(cropLeft)*rw
	xmax := rw/2.0 - float64(cropRight)*rw
	ymin := -rh/2.0 + float64(cropTop)*rh
	ymax := rh/2.0 - float64(cropBottom)*rh

	toSource := func(px, py float64) scale.Corner {
		return scale.Corner{
			X: px*cos - py*sin + cx,
			Y: px*sin + py*cos + cy,
		}
	}

	tl = toSource(xmin, ymin)
	tr = toSource(xmax, ymin)
	bl = toSource(xmin, ymax)
	return
}

// discreteTransform applies the orientation-driven transpose/flip reindex
// to a 3-channel buffer, grounded on the teacher pack's row-strip
// iteration idiom: each output row is filled by walking a constant stride
// through the source, with sign and origin chosen from flipX/flipY and
// (if transpose) the dimensions swapped ahead of iteration.
func discreteTransform(buf *floatbuf.FloatBuffer, transpose, flipX, flipY bool) *floatbuf.FloatBuffer {
	colors := buf.Colors
	width, height := buf.Width, buf.Height

	baseOffset := 0
	xStep := colors
	yStep := width * colors

	if flipX {
		xStep = -xStep
		baseOffset += (width - 1) * colors
	}
	if flipY {
		yStep = -yStep
		baseOffset += width * (height - 1) * colors
	}

	outW, outH := width, height
	if transpose {
		outW, outH = height, width
		xStep, yStep = yStep, xStep
	}

	out := floatbuf.New(outW, outH, colors, buf.Monochrome)
	out.ForEachLineMut(func(line []float32, row int) {
		lineOffset := baseOffset + yStep*row
		for col := 0; col < outW; col++ {
			offset := lineOffset + xStep*col
			for c := 0; c < colors; c++ {
				line[col*colors+c] = buf.Data[offset+c]
			}
		}
	})
	return out
}

// calcSize ports the rotate-crop size math: forward expands the bounding
// box for rotation then shrinks by the crop ratios; reverse grows by the
// crop ratios then un-expands using the committed input aspect ratio, so
// that reverse-then-forward round-trips on integer dimensions (§8).
func (op *Transform) calcSize(ow, oh int, reverse bool) (int, int) {
	if op.noopCrop() {
		return ow, oh
	}

	w, h := float32(ow), float32(oh)

	if !reverse && op.RotationFrac >= transformEpsilon {
		angle := float64(math.Pi / 2 * minf32(op.RotationFrac, 1.0))
		s, c := float32(math.Sin(angle)), float32(math.Cos(angle))
		w, h = w*c+h*s, w*s+h*c
	}

	widthRatio := 1.0 - op.CropLeft - op.CropRight
	var nwidth float32
	if reverse {
		nwidth = roundf32(w / widthRatio)
	} else {
		nwidth = roundf32(w * widthRatio)
	}
	if widthRatio < transformEpsilon || nwidth < 1.0 {
		return ow, oh
	}

	heightRatio := 1.0 - op.CropTop - op.CropBottom
	var nheight float32
	if reverse {
		nheight = roundf32(h / heightRatio)
	} else {
		nheight = roundf32(h * heightRatio)
	}
	if heightRatio < transformEpsilon || nheight < 1.0 {
		return ow, oh
	}

	if reverse && op.RotationFrac >= transformEpsilon {
		angle := float64(math.Pi / 2 * minf32(op.RotationFrac, 1.0))
		s, c := float32(math.Sin(angle)), float32(math.Cos(angle))
		width := roundf32(nheight / (s + c/op.inputRatio))
		height := roundf32(width / op.inputRatio)
		nwidth, nheight = width, height
	}

	return int(nwidth), int(nheight)
}

func roundf32(v float32) float32 { return float32(math.Round(float64(v))) }

func (op *Transform) TransformForward(w, h int) (int, int) {
	if op.committed {
		return op.outW, op.outH
	}
	transpose, _, _ := op.flips()
	tw, th := w, h
	if transpose {
		tw, th = th, tw
	}
	if th != 0 {
		op.inputRatio = float32(tw) / float32(th)
	}
	return op.calcSize(tw, th, false)
}

func (op *Transform) TransformReverse(w, h int) (int, int) {
	op.committed = true
	op.outW, op.outH = w, h

	cw, ch := op.calcSize(w, h, true)
	transpose, _, _ := op.flips()
	if transpose {
		cw, ch = ch, cw
	}
	return cw, ch
}

func (op *Transform) ToSettings() string     { return marshalSettings(op) }
func (op *Transform) Hash(h *bufhash.Hasher) { hashNamed(h, op.Name(), op) }
