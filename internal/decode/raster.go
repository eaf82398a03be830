// Package decode implements the concrete collaborators behind the §6
// external decoder interfaces. Only the raster side has a real
// implementation here (backed by image.Decode plus the teacher's
// registered-format blank imports); raw sensor decoding has no Go
// library anywhere in the available dependency surface, so
// imgsrc.RawDecoder stays a pluggable interface with no bundled
// implementation (see DESIGN.md).
package decode

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/AnyUserName/imagepipe/internal/imgsrc"
)

// Raster implements imgsrc.RasterDecoder over a decoded image.Image,
// always reporting 8-bit depth: FromImage keeps only the high byte of each
// sample, so 16-bit images are reduced to 8 bits.
type Raster struct {
	width, height int
	rgb8          []byte
}

// OpenRaster decodes path with the standard library plus the teacher's
// registered bmp/tiff/webp formats (golang.org/x/image).
func OpenRaster(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage flattens an already-decoded image.Image into row-major RGB8.
func FromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rgb8 := make([]byte, w*h*3)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rgb8[i+0] = byte(r >> 8)
			rgb8[i+1] = byte(g >> 8)
			rgb8[i+2] = byte(b >> 8)
			i += 3
		}
	}
	return &Raster{width: w, height: h, rgb8: rgb8}
}

func (r *Raster) Width() int     { return r.width }
func (r *Raster) Height() int    { return r.height }
func (r *Raster) BitDepth() int  { return 8 }
func (r *Raster) RGB8() []byte   { return r.rgb8 }
func (r *Raster) RGB16() []uint16 {
	return nil
}

var _ imgsrc.RasterDecoder = (*Raster)(nil)
