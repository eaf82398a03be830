// Package colorimetry implements the D65 sRGB <-> XYZ <-> Lab math the
// pipeline needs to go from camera-native color to a gamma-encoded sRGB
// raster, plus the blackbody temperature helpers used by white-balance.
//
// All math is 32-bit float, matching the camera pipeline it feeds; the two
// hot transforms (sRGB gamma, Lab cube root) are backed by lookup tables
// built once at package init, the same build-once table idiom the teacher CLI
// uses for its YCbCr->RGB conversion tables in internal/thumbhash.
package colorimetry

import "math"

// D65White is the CIE D65 standard illuminant white point in XYZ.
var D65White = [3]float32{0.95047, 1.000, 1.08883}

// lutBits sets the lookup table resolution; 2^13 entries per §4.4.
const lutBits = 13
const lutSize = 1 << lutBits

// lut is a linearly-interpolated table over [0,1] built once at init time.
// Values outside [0,1] fall back to the analytic function.
type lut struct {
	table [lutSize + 1]float32
	fn    func(float32) float32
}

func newLUT(fn func(float32) float32) *lut {
	l := &lut{fn: fn}
	for i := 0; i <= lutSize; i++ {
		v := float32(i) / float32(lutSize)
		l.table[i] = fn(v)
	}
	return l
}

func (l *lut) at(v float32) float32 {
	if v < 0 || v > 1 {
		return l.fn(v)
	}
	pos := v * float32(lutSize)
	key := int(pos)
	if key >= lutSize {
		return l.table[lutSize]
	}
	frac := pos - float32(key)
	a, b := l.table[key], l.table[key+1]
	return a + frac*(b-a)
}

var (
	srgbGammaFwdLUT *lut
	srgbGammaInvLUT *lut
	labCbrtLUT      *lut
)

func init() {
	srgbGammaFwdLUT = newLUT(srgbGammaFwdAnalytic)
	srgbGammaInvLUT = newLUT(srgbGammaInvAnalytic)
	labCbrtLUT = newLUT(labFAnalytic)
}

func srgbGammaFwdAnalytic(v float32) float32 {
	if v < 0.0031308 {
		return v * 12.92
	}
	return 1.055*float32(math.Pow(float64(v), 1.0/2.4)) - 0.055
}

func srgbGammaInvAnalytic(v float32) float32 {
	if v < 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64((v+0.055)/1.055), 2.4))
}

const labEpsilon = 216.0 / 24389.0
const labKappa = 24389.0 / 27.0

func labFAnalytic(t float32) float32 {
	if t > labEpsilon {
		return float32(math.Cbrt(float64(t)))
	}
	return float32((labKappa*float64(t) + 16.0) / 116.0)
}

// SRGBGammaFwd applies the forward sRGB transfer function (linear -> encoded).
func SRGBGammaFwd(v float32) float32 { return srgbGammaFwdLUT.at(v) }

// SRGBGammaInv applies the inverse sRGB transfer function (encoded -> linear).
func SRGBGammaInv(v float32) float32 { return srgbGammaInvLUT.at(v) }

// XYZToLab converts XYZ (D65-relative) to the pipeline's normalized Lab
// encoding: L,a,b all in [0,1] (not the classical L in [0,100], a/b in
// [-128,127] ranges).
func XYZToLab(x, y, z float32) (l, a, b float32) {
	xr := x / D65White[0]
	yr := y / D65White[1]
	zr := z / D65White[2]

	fx := labCbrtLUT.at(xr)
	fy := labCbrtLUT.at(yr)
	fz := labCbrtLUT.at(zr)

	ll := 116.0*fy - 16.0
	aa := 500.0 * (fx - fy)
	bb := 200.0 * (fy - fz)

	return ll / 100.0, (aa + 127.0) / 255.0, (bb + 127.0) / 255.0
}

// LabToXYZ is the mathematical inverse of XYZToLab.
func LabToXYZ(l, a, b float32) (x, y, z float32) {
	cl := l * 100.0
	ca := a*255.0 - 127.0
	cb := b*255.0 - 127.0

	fy := (cl + 16.0) / 116.0
	fx := ca/500.0 + fy
	fz := fy - cb/200.0

	fx3 := fx * fx * fx
	xr := fx3
	if fx3 <= labEpsilon {
		xr = (116.0*fx - 16.0) / labKappa
	}

	var yr float32
	if cl > labKappa*labEpsilon {
		yr = fy * fy * fy
	} else {
		yr = cl / labKappa
	}

	fz3 := fz * fz * fz
	zr := fz3
	if fz3 <= labEpsilon {
		zr = (116.0*fz - 16.0) / labKappa
	}

	return xr * D65White[0], yr * D65White[1], zr * D65White[2]
}

// cieObserver is one 5nm row of the CIE 1931 2-degree standard observer.
type cieObserver struct {
	wavelengthNM float64
	xBar, yBar, zBar float64
}

var cieObservers = buildCIEObservers()

// TempToXYZ integrates Planck's law against the CIE 1931 2-degree observer
// table (380-780nm, 5nm steps) for a blackbody at the given temperature in
// kelvin, normalized so max(X,Y,Z) == 1.
func TempToXYZ(tempK float32) [3]float32 {
	const c1 = 3.7417717905326694e-16
	const c2 = 0.014387773457709927

	var xyz [3]float64
	t := float64(tempK)
	for _, o := range cieObservers {
		wavelength := o.wavelengthNM / 1.0e9
		power := c1 / (math.Pow(wavelength, 5) * (math.Exp(c2/(t*wavelength)) - 1.0))
		xyz[0] += power * o.xBar
		xyz[1] += power * o.yBar
		xyz[2] += power * o.zBar
	}
	max := xyz[0]
	if xyz[1] > max {
		max = xyz[1]
	}
	if xyz[2] > max {
		max = xyz[2]
	}
	return [3]float32{float32(xyz[0] / max), float32(xyz[1] / max), float32(xyz[2] / max)}
}

// XYZToTemp bisects 1000K-40000K on the sign of (Z/X observed - Z/X target)
// until the bracket is <=1K wide, returning the estimated correlated color
// temperature and the tint (ratio of Y/X at the observed point relative to
// the target point).
func XYZToTemp(xyz [3]float32) (tempK, tint float32) {
	min, max := float32(1000.0), float32(40000.0)
	var mid float32
	var probe [3]float32
	for max-min > 1.0 {
		mid = (max + min) / 2.0
		probe = TempToXYZ(mid)
		if probe[2]/probe[0] > xyz[2]/xyz[0] {
			max = mid
		} else {
			min = mid
		}
	}
	tint = (probe[1] / probe[0]) / (xyz[1] / xyz[0])
	return mid, tint
}

// Input8Bit normalizes an 8-bit sample to [0,1].
func Input8Bit(v uint8) float32 { return float32(v) / 255.0 }

// Input16Bit normalizes a 16-bit sample to [0,1].
func Input16Bit(v uint16) float32 { return float32(v) / 65535.0 }

// Output8Bit quantizes a [0,1]-nominal float to an 8-bit sample. This uses
// floor(v*256), not round, and is required for the 8<->16 bit round-trip
// properties in §8 to hold exactly.
func Output8Bit(v float32) uint8 {
	s := v * 256.0
	if s < 0 {
		return 0
	}
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// Output16Bit quantizes a [0,1]-nominal float to a 16-bit sample, rounding
// to nearest.
func Output16Bit(v float32) uint16 {
	s := float32(math.Round(float64(v) * 65535.0))
	if s < 0 {
		return 0
	}
	if s > 65535 {
		return 65535
	}
	return uint16(s)
}

// Clamp01 restricts v to [0,1].
func Clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
