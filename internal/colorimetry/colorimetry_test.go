package colorimetry

import "testing"

func TestOutput8BitRoundTrip(t *testing.T) {
	for v := 0; v <= 255; v++ {
		got := Output8Bit(Input8Bit(uint8(v)))
		if int(got) != v {
			t.Fatalf("output8bit(input8bit(%d)) = %d", v, got)
		}
	}
}

func TestOutput16BitRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 255, 256, 1000, 32768, 65534, 65535} {
		got := Output16Bit(Input16Bit(uint16(v)))
		if int(got) != v {
			t.Fatalf("output16bit(input16bit(%d)) = %d", v, got)
		}
	}
}

func TestOutput8BitFromInput16BitIsHighByte(t *testing.T) {
	for _, v := range []int{0, 1, 255, 256, 1000, 32768, 65534, 65535} {
		got := Output8Bit(Input16Bit(uint16(v)))
		want := byte(v >> 8)
		if got != want {
			t.Fatalf("output8bit(input16bit(%d)) = %d, want %d", v, got, want)
		}
	}
}

func TestSRGBGammaRoundTrip8Bit(t *testing.T) {
	for v := 0; v <= 255; v++ {
		in := Input8Bit(uint8(v))
		got := Output8Bit(SRGBGammaFwd(SRGBGammaInv(in)))
		if int(got) != v {
			t.Fatalf("gamma round trip at %d = %d", v, got)
		}
	}
}

func TestSRGBGammaRoundTrip16Bit(t *testing.T) {
	for _, v := range []int{0, 1, 1000, 32768, 65535} {
		in := Input16Bit(uint16(v))
		got := Output16Bit(SRGBGammaFwd(SRGBGammaInv(in)))
		if diff := int(got) - v; diff < -1 || diff > 1 {
			t.Fatalf("gamma round trip at %d = %d, want within +-1", v, got)
		}
	}
}

func TestLabRoundTripWithinTolerance(t *testing.T) {
	samples := []struct{ x, y, z float32 }{
		{0, 0, 0}, {1, 1, 1}, {0.5, 0.5, 0.5}, {0.2, 0.8, 0.1}, {0.95047, 1.0, 1.08883},
	}
	for _, s := range samples {
		l, a, b := XYZToLab(s.x, s.y, s.z)
		x, y, z := LabToXYZ(l, a, b)
		for i, pair := range [][2]float32{{x, s.x}, {y, s.y}, {z, s.z}} {
			if diff := pair[0] - pair[1]; diff > 1e-3 || diff < -1e-3 {
				t.Fatalf("component %d: got %v want %v for input %+v", i, pair[0], pair[1], s)
			}
		}
	}
}

func TestXYZToTempBisectsWithin1K(t *testing.T) {
	for _, k := range []float32{3000, 5500, 6500, 10000} {
		xyz := TempToXYZ(k)
		got, _ := XYZToTemp(xyz)
		if diff := got - k; diff > 1 || diff < -1 {
			t.Fatalf("xyz_to_temp(temp_to_xyz(%v)) = %v, want within 1K", k, got)
		}
	}
}

func TestClamp01(t *testing.T) {
	cases := map[float32]float32{-1: 0, 0: 0, 0.5: 0.5, 1: 1, 2: 1}
	for in, want := range cases {
		if got := Clamp01(in); got != want {
			t.Fatalf("Clamp01(%v) = %v, want %v", in, got, want)
		}
	}
}
