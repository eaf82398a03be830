package ops

import (
	"math"

	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/colorimetry"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
)

// ToLab converts a white-balanced, camera-matrixed 4-channel buffer into
// the pipeline's normalized Lab encoding (§4.6.3).
type ToLab struct {
	CamToXYZ           [3][4]float32 `yaml:"cam_to_xyz"`
	CamToXYZNormalized [3][4]float32 `yaml:"cam_to_xyz_normalized"`
	XYZToCam           [4][3]float32 `yaml:"xyz_to_cam"`
	WBCoeffs           [4]float32    `yaml:"wb_coeffs"`
}

// NewToLab derives default camera matrices and white balance from the
// source; non-raw sources get the neutral D65 sRGB matrices.
func NewToLab(src imgsrc.ImageSource) *ToLab {
	if src.Kind == imgsrc.KindRaw {
		d := src.Raw
		wb := d.WBCoeffs()
		coeffs := normalizeWB(toFloat32x4(wb))
		if !isNormal(wb[0]) || !isNormal(wb[1]) || !isNormal(wb[2]) {
			coeffs = normalizeWB(toFloat32x4(d.NeutralWB()))
		}
		return &ToLab{
			CamToXYZ:           d.CamToXYZ(),
			CamToXYZNormalized: d.CamToXYZNormalized(),
			XYZToCam:           d.XYZToCam(),
			WBCoeffs:           coeffs,
		}
	}
	return &ToLab{
		CamToXYZ:           colorimetry.SRGBD65_43,
		CamToXYZNormalized: colorimetry.SRGBD65_43,
		XYZToCam:           widen3x4To4x3(colorimetry.XYZD65_34),
		WBCoeffs:           [4]float32{1, 1, 1, 0},
	}
}

func toFloat32x4(v [4]float64) [4]float32 {
	return [4]float32{float32(v[0]), float32(v[1]), float32(v[2]), float32(v[3])}
}

func widen3x4To4x3(m [3][4]float32) [4][3]float32 {
	var out [4][3]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[j][i] = m[i][j]
		}
	}
	return out
}

func isNormal(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v != 0
}

// normalizeWB sets the green multiplier to 1.0, replacing any non-finite
// or zero entry with 1.0 instead of dividing it, per §4.6.3. Negative
// entries are divided like any other.
func normalizeWB(vals [4]float32) [4]float32 {
	unity := vals[1]
	norm := func(v float32) float32 {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) || v == 0 {
			return 1.0
		}
		return v / unity
	}
	return [4]float32{norm(vals[0]), norm(vals[1]), norm(vals[2]), norm(vals[3])}
}

func (op *ToLab) Name() string { return "to_lab" }

func (op *ToLab) Run(_ *Globals, input *floatbuf.FloatBuffer) *floatbuf.FloatBuffer {
	cmatrix := op.CamToXYZNormalized
	mul := normalizeWB(op.WBCoeffs)
	if input.Monochrome {
		cmatrix = colorimetry.SRGBD65_43
		mul = [4]float32{1, 1, 1, 1}
	}

	return input.MapIntoNew(3, func(outLine []float32, in []float32) {
		numCols := len(outLine) / 3
		for col := 0; col < numCols; col++ {
			pixin := in[col*4 : col*4+4]
			r := minf32(pixin[0]*mul[0], 1.0)
			g := minf32(pixin[1]*mul[1], 1.0)
			b := minf32(pixin[2]*mul[2], 1.0)
			e := minf32(pixin[3]*mul[3], 1.0)

			x, y, z := colorimetry.ApplyCam3x4(cmatrix, r, g, b, e)
			l, a, bb := colorimetry.XYZToLab(x, y, z)

			out := outLine[col*3 : col*3+3]
			out[0], out[1], out[2] = l, a, bb
		}
	})
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

// SetTemp recomputes wb_coeffs for the given correlated color temperature
// (kelvin) and tint (tint*10000), per §4.6.3.
func (op *ToLab) SetTemp(tempK float32, tintTimes10000 float32) {
	tint := tintTimes10000 / 10000.0
	xyz := colorimetry.TempToXYZ(tempK)
	xyz[1] /= tint

	var coeffs [4]float32
	for i := 0; i < 4; i++ {
		v := colorimetry.ApplyXYZToCam4x3(op.XYZToCam, xyz[0], xyz[1], xyz[2])[i]
		coeffs[i] = 1.0 / v
	}
	op.WBCoeffs = normalizeWB(coeffs)
}

// GetTemp inverts SetTemp, recovering (K, tint*10000) from the current
// wb_coeffs.
func (op *ToLab) GetTemp() (tempK, tintTimes10000 float32) {
	var xyz [3]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			mul := op.WBCoeffs[j]
			if mul > 0 {
				xyz[i] += op.CamToXYZ[i][j] / mul
			}
		}
	}
	k, tint := colorimetry.XYZToTemp(xyz)
	return k, tint * 10000.0
}

func (op *ToLab) ToSettings() string     { return marshalSettings(op) }
func (op *ToLab) Hash(h *bufhash.Hasher) { hashNamed(h, op.Name(), op) }

func (op *ToLab) TransformForward(w, h int) (int, int) { return identitySize(w, h) }
func (op *ToLab) TransformReverse(w, h int) (int, int) { return identitySize(w, h) }
