package colorimetry

// SRGBToXYZD65 is the standard D65 sRGB primaries -> XYZ matrix.
var SRGBToXYZD65 = [3][3]float32{
	{0.4124564, 0.3575761, 0.1804375},
	{0.2126729, 0.7151522, 0.0721750},
	{0.0193339, 0.1191920, 0.9503041},
}

// XYZToSRGBD65 is the analytical 3x3 inverse of SRGBToXYZD65, computed once
// at package init rather than hand-transcribed, so it always matches the
// forward matrix above exactly.
var XYZToSRGBD65 = Invert3x3(SRGBToXYZD65)

// Invert3x3 computes the inverse of a 3x3 matrix via the adjugate /
// determinant method. Used for FromLab's XYZ->linear-sRGB step (§4.6.5)
// instead of hand-coding a second constant matrix that could drift from
// SRGBToXYZD65.
func Invert3x3(m [3][3]float32) [3][3]float32 {
	invDet := 1.0 / (
		m[0][0]*(m[1][1]*m[2][2]-m[2][1]*m[1][2]) -
			m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
			m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0]))

	var out [3][3]float32
	out[0][0] = (m[1][1]*m[2][2] - m[2][1]*m[1][2]) * invDet
	out[0][1] = -(m[0][1]*m[2][2] - m[0][2]*m[2][1]) * invDet
	out[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) * invDet
	out[1][0] = -(m[1][0]*m[2][2] - m[1][2]*m[2][0]) * invDet
	out[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) * invDet
	out[1][2] = -(m[0][0]*m[1][2] - m[1][0]*m[0][2]) * invDet
	out[2][0] = (m[1][0]*m[2][1] - m[2][0]*m[1][1]) * invDet
	out[2][1] = -(m[0][0]*m[2][1] - m[2][0]*m[0][1]) * invDet
	out[2][2] = (m[0][0]*m[1][1] - m[1][0]*m[0][1]) * invDet
	return out
}

// SRGBD65_43 is SRGBToXYZD65 widened into a 3x4 camera matrix (4th column
// zero), used as the neutral "camera" matrix for non-raw (already sRGB)
// sources going through ToLab.
var SRGBD65_43 = [3][4]float32{
	{SRGBToXYZD65[0][0], SRGBToXYZD65[0][1], SRGBToXYZD65[0][2], 0.0},
	{SRGBToXYZD65[1][0], SRGBToXYZD65[1][1], SRGBToXYZD65[1][2], 0.0},
	{SRGBToXYZD65[2][0], SRGBToXYZD65[2][1], SRGBToXYZD65[2][2], 0.0},
}

// XYZD65_34 is XYZToSRGBD65 widened into a 4x3-transposed 3x4 shape used
// where a 3x4 xyz_to_cam fallback is needed for non-raw sources.
var XYZD65_34 = [3][4]float32{
	{XYZToSRGBD65[0][0], XYZToSRGBD65[0][1], XYZToSRGBD65[0][2], 0.0},
	{XYZToSRGBD65[1][0], XYZToSRGBD65[1][1], XYZToSRGBD65[1][2], 0.0},
	{XYZToSRGBD65[2][0], XYZToSRGBD65[2][1], XYZToSRGBD65[2][2], 0.0},
}

// ApplyCam3x4 applies a 3x4 camera-to-XYZ matrix to a 4-channel pixel.
func ApplyCam3x4(m [3][4]float32, r, g, b, e float32) (x, y, z float32) {
	x = r*m[0][0] + g*m[0][1] + b*m[0][2] + e*m[0][3]
	y = r*m[1][0] + g*m[1][1] + b*m[1][2] + e*m[1][3]
	z = r*m[2][0] + g*m[2][1] + b*m[2][2] + e*m[2][3]
	return
}

// ApplyXYZToCam4x3 applies a 4x3 xyz-to-camera matrix to an XYZ triple,
// producing 4 camera-channel responses.
func ApplyXYZToCam4x3(m [4][3]float32, x, y, z float32) [4]float32 {
	var out [4]float32
	for i := 0; i < 4; i++ {
		out[i] = m[i][0]*x + m[i][1]*y + m[i][2]*z
	}
	return out
}

// Apply3x3 applies a 3x3 matrix to an (x,y,z) triple.
func Apply3x3(m [3][3]float32, x, y, z float32) (a, b, c float32) {
	a = x*m[0][0] + y*m[0][1] + z*m[0][2]
	b = x*m[1][0] + y*m[1][1] + z*m[1][2]
	c = x*m[2][0] + y*m[2][1] + z*m[2][2]
	return
}
