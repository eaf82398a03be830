package ops

import (
	"testing"

	"github.com/AnyUserName/imagepipe/internal/floatbuf"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
)

// TestTransformSizeFixedPoint covers §8/§9's size round-trip invariant:
// transform_reverse followed by transform_forward is the identity on
// integer dimensions, for arbitrary crops and rotations in [0,1].
func TestTransformSizeFixedPoint(t *testing.T) {
	cases := []struct {
		name               string
		rotation           Rotation
		fliph, flipv       bool
		rotationFrac       float32
		top, right, bottom, left float32
	}{
		{name: "identity", rotation: RotationNormal},
		{name: "rotate90", rotation: Rotation90},
		{name: "rotate180", rotation: Rotation180},
		{name: "rotate270", rotation: Rotation270},
		{name: "flips", rotation: RotationNormal, fliph: true, flipv: true},
		{name: "crop", rotation: RotationNormal, top: 0.1, right: 0.05, bottom: 0.1, left: 0.05},
		{name: "rotation_frac", rotation: RotationNormal, rotationFrac: 0.1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			op := NewTransform(imgsrc.ImageSource{Kind: imgsrc.KindRaster})
			op.Rotation = c.rotation
			op.FlipH = c.fliph
			op.FlipV = c.flipv
			op.RotationFrac = c.rotationFrac
			op.CropTop = c.top
			op.CropRight = c.right
			op.CropBottom = c.bottom
			op.CropLeft = c.left

			const w, h = 128, 64
			ow, oh := op.TransformForward(w, h)

			reverseOp := NewTransform(imgsrc.ImageSource{Kind: imgsrc.KindRaster})
			reverseOp.Rotation = c.rotation
			reverseOp.FlipH = c.fliph
			reverseOp.FlipV = c.flipv
			reverseOp.RotationFrac = c.rotationFrac
			reverseOp.CropTop = c.top
			reverseOp.CropRight = c.right
			reverseOp.CropBottom = c.bottom
			reverseOp.CropLeft = c.left

			cw, ch := reverseOp.TransformReverse(ow, oh)
			gotW, gotH := reverseOp.TransformForward(cw, ch)
			if gotW != ow || gotH != oh {
				t.Fatalf("forward(reverse(forward(%d,%d))) = (%d,%d), want (%d,%d)", w, h, gotW, gotH, ow, oh)
			}
		})
	}
}

func TestTransformRotationSizing(t *testing.T) {
	// §8 scenario 5 in isolation: Rotate90's transpose alone turns a 128x64
	// input into a 64x128 forward size, which maxwidth=64 then leaves
	// unscaled.
	op := NewTransform(imgsrc.ImageSource{Kind: imgsrc.KindRaster})
	op.Rotation = Rotation90

	w, h := op.TransformForward(128, 64)
	if w != 64 || h != 128 {
		t.Fatalf("forward(128,64) with Rotate90 = (%d,%d), want (64,128)", w, h)
	}
}

// TestTransformRotationFracNearQuarterTurn guards against the resampler
// collapsing every weight to zero as a rotated destination parallelogram's
// step vectors swing toward the other axis: a near-90-degree RotationFrac
// must still produce a buffer with some nonzero pixels, not an all-black one.
func TestTransformRotationFracNearQuarterTurn(t *testing.T) {
	op := NewTransform(imgsrc.ImageSource{Kind: imgsrc.KindRaster})
	op.RotationFrac = 0.99

	const w, h = 16, 16
	buf := floatbuf.New(w, h, 3, false)
	for i := range buf.Data {
		buf.Data[i] = 1
	}

	out := op.Run(mockGlobals(), buf)

	nonzero := 0
	for _, v := range out.Data {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Fatalf("rotation_frac near 1.0 produced an all-black buffer (%d bytes)", len(out.Data))
	}
}

// TestTransformDiscreteFlipH covers Run's discrete-orientation path: a
// horizontal flip reverses column order without touching pixel values.
func TestTransformDiscreteFlipH(t *testing.T) {
	op := NewTransform(imgsrc.ImageSource{Kind: imgsrc.KindRaster})
	op.FlipH = true

	buf := floatbuf.New(2, 1, 3, false)
	copy(buf.Data, []float32{0, 0, 0, 1, 1, 1})

	out := op.Run(mockGlobals(), buf)
	want := []float32{1, 1, 1, 0, 0, 0}
	for i := range want {
		if out.Data[i] != want[i] {
			t.Fatalf("flipH output = %v, want %v", out.Data, want)
		}
	}
}
