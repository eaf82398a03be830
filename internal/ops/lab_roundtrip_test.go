package ops

import (
	"testing"

	"github.com/AnyUserName/imagepipe/internal/colorimetry"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
)

// TestToLabFromLabRoundTrip8Bit covers §8's identity-white-balance,
// D65-matrix round trip through ToLab then FromLab, quantized to 8 bits.
func TestToLabFromLabRoundTrip8Bit(t *testing.T) {
	toLab := NewToLab(imgsrc.ImageSource{Kind: imgsrc.KindRaster})
	fromLab := NewFromLab()

	samples := [][3]uint8{
		{0, 0, 0}, {255, 255, 255}, {128, 64, 200}, {10, 200, 30}, {255, 0, 0}, {0, 255, 0}, {0, 0, 255},
	}

	for _, s := range samples {
		buf := floatbuf.New(1, 1, 4, false)
		buf.Data[0] = colorimetry.Input8Bit(s[0])
		buf.Data[1] = colorimetry.Input8Bit(s[1])
		buf.Data[2] = colorimetry.Input8Bit(s[2])
		buf.Data[3] = 0

		lab := toLab.Run(&Globals{}, buf)
		rgb := fromLab.Run(&Globals{}, lab)

		got := [3]uint8{
			colorimetry.Output8Bit(rgb.Data[0]),
			colorimetry.Output8Bit(rgb.Data[1]),
			colorimetry.Output8Bit(rgb.Data[2]),
		}
		for i := range got {
			if diff := int(got[i]) - int(s[i]); diff < -1 || diff > 1 {
				t.Fatalf("sample %v: channel %d got %d, want within 1 of %d", s, i, got[i], s[i])
			}
		}
	}
}
