// Package imgsrc defines ImageSource, the tagged union of decoded inputs
// the pipeline can build an op chain from, and the two external decoder
// collaborator interfaces (§6) that supply raw and raster image data.
// Decoding itself (raw-file parsing, general-purpose raster decode) is out
// of scope here; this package only defines the shapes those decoders must
// produce.
package imgsrc

import "github.com/AnyUserName/imagepipe/internal/cfa"

// Orientation is the EXIF-style orientation tag carried by a raw decoder.
type Orientation int

const (
	OrientationNormal Orientation = iota
	OrientationVerticalFlip
	OrientationHorizontalFlip
	OrientationRotate180
	OrientationTranspose
	OrientationRotate90
	OrientationRotate270
	OrientationTransverse
	OrientationUnknown
)

// PixelPayload tags whether a raw decoder's samples are 16-bit integer or
// 32-bit float, per §6.
type PixelPayload int

const (
	PayloadInteger16 PixelPayload = iota
	PayloadFloat32
)

// Crop holds pixel insets in (top, right, bottom, left) order.
type Crop struct {
	Top, Right, Bottom, Left int
}

// RawDecoder is the external collaborator interface a raw-file parser
// implements to hand a decoded sensor capture to the pipeline.
type RawDecoder interface {
	Width() int
	Height() int
	ChannelsPerPixel() int
	Payload() PixelPayload
	IntegerData() []uint16
	FloatData() []float32
	BlackLevels() [4]float64
	WhiteLevels() [4]float64
	WBCoeffs() [4]float64
	CamToXYZ() [3][4]float32
	CamToXYZNormalized() [3][4]float32
	XYZToCam() [4][3]float32
	NeutralWB() [4]float64
	CFA() cfa.Pattern
	CroppedCFA() cfa.Pattern
	Orientation() Orientation
	Crops() Crop
}

// IsCFA reports whether a RawDecoder's pixel data is still mosaiced
// (single channel-per-pixel over a nontrivial CFA), derived rather than
// stored directly per §6.
func IsCFA(d RawDecoder) bool {
	return d.ChannelsPerPixel() == 1 && !d.CFA().Empty()
}

// RasterDecoder is the external collaborator interface a general-purpose
// image decoder implements for already-demosaiced sRGB input.
type RasterDecoder interface {
	Width() int
	Height() int
	BitDepth() int // 8 or 16
	RGB8() []byte  // valid when BitDepth()==8, length w*h*3
	RGB16() []uint16
}

// Kind tags which variant an ImageSource holds.
type Kind int

const (
	KindRaw Kind = iota
	KindRaster
)

// ImageSource is the tagged union ops build their size/default-parameter
// descriptors from.
type ImageSource struct {
	Kind   Kind
	Raw    RawDecoder
	Raster RasterDecoder
}

// FromRaw wraps a RawDecoder as an ImageSource.
func FromRaw(d RawDecoder) ImageSource { return ImageSource{Kind: KindRaw, Raw: d} }

// FromRaster wraps a RasterDecoder as an ImageSource.
func FromRaster(d RasterDecoder) ImageSource { return ImageSource{Kind: KindRaster, Raster: d} }

// Dimensions returns the source's native width and height before any
// op-chain crop.
func (s ImageSource) Dimensions() (width, height int) {
	switch s.Kind {
	case KindRaw:
		return s.Raw.Width(), s.Raw.Height()
	default:
		return s.Raster.Width(), s.Raster.Height()
	}
}
