package ops

import (
	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/colorimetry"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
)

// GoFloat is the first op: it ignores its input buffer entirely and builds
// a fresh FloatBuffer straight from the ImageSource, applying the crop and
// black/white normalization in the same pass (§4.6.1).
type GoFloat struct {
	Width          int        `yaml:"width"`
	Height         int        `yaml:"height"`
	X              int        `yaml:"x"`
	Y              int        `yaml:"y"`
	CPP            int        `yaml:"cpp"`
	IsCFA          bool       `yaml:"is_cfa"`
	BlackLevels    [4]float64 `yaml:"black_levels"`
	WhiteLevels    [4]float64 `yaml:"white_levels"`
	RasterBitDepth int        `yaml:"raster_bit_depth"`
}

const minCropDimension = 10

// NewGoFloat derives default crop/level parameters from the source.
func NewGoFloat(src imgsrc.ImageSource) *GoFloat {
	if src.Kind == imgsrc.KindRaster {
		w, h := src.Raster.Width(), src.Raster.Height()
		return &GoFloat{
			Width: w, Height: h,
			CPP:            3,
			RasterBitDepth: src.Raster.BitDepth(),
		}
	}

	d := src.Raw
	crop := d.Crops()
	w := d.Width() - crop.Right - crop.Left
	h := d.Height() - crop.Top - crop.Bottom
	w, h, x, y := clampCrop(d.Width(), d.Height(), crop, w, h)

	return &GoFloat{
		Width: w, Height: h, X: x, Y: y,
		CPP:         d.ChannelsPerPixel(),
		IsCFA:       imgsrc.IsCFA(d),
		BlackLevels: d.BlackLevels(),
		WhiteLevels: d.WhiteLevels(),
	}
}

// clampCrop keeps the cropped output at least minCropDimension on each
// side, per the crop-safety rule in §4.6.1.
func clampCrop(srcW, srcH int, crop imgsrc.Crop, w, h int) (outW, outH, x, y int) {
	x, y = crop.Left, crop.Top
	outW, outH = w, h
	if outW < minCropDimension {
		outW = minCropDimension
		if x+outW > srcW {
			x = srcW - outW
		}
		if x < 0 {
			x = 0
		}
	}
	if outH < minCropDimension {
		outH = minCropDimension
		if y+outH > srcH {
			y = srcH - outH
		}
		if y < 0 {
			y = 0
		}
	}
	return
}

func (op *GoFloat) Name() string { return "gofloat" }

func (op *GoFloat) Run(g *Globals, _ *floatbuf.FloatBuffer) *floatbuf.FloatBuffer {
	if g.Source.Kind == imgsrc.KindRaster {
		return op.runRaster(g)
	}
	return op.runRaw(g)
}

func (op *GoFloat) runRaster(g *Globals) *floatbuf.FloatBuffer {
	d := g.Source.Raster
	out := floatbuf.New(op.Width, op.Height, 4, false)

	if d.BitDepth() == 8 {
		src := d.RGB8()
		out.ForEachLineMut(func(line []float32, row int) {
			base := row * op.Width * 3
			for col := 0; col < op.Width; col++ {
				si := base + col*3
				for c := 0; c < 3; c++ {
					line[col*4+c] = colorimetry.SRGBGammaInv(colorimetry.Input8Bit(src[si+c]))
				}
				line[col*4+3] = 0
			}
		})
	} else {
		src := d.RGB16()
		out.ForEachLineMut(func(line []float32, row int) {
			base := row * op.Width * 3
			for col := 0; col < op.Width; col++ {
				si := base + col*3
				for c := 0; c < 3; c++ {
					line[col*4+c] = colorimetry.Input16Bit(src[si+c])
				}
				line[col*4+3] = 0
			}
		})
	}
	return out
}

func (op *GoFloat) runRaw(g *Globals) *floatbuf.FloatBuffer {
	d := g.Source.Raw
	srcW := d.Width()

	mins := op.BlackLevels
	ranges := [4]float64{}
	for i := range ranges {
		ranges[i] = op.WhiteLevels[i] - mins[i]
	}

	normalize := func(v float64, c int) float32 {
		n := (v - mins[c]) / ranges[c]
		return colorimetry.Clamp01(float32(n))
	}

	switch {
	case op.CPP == 1 && !op.IsCFA:
		out := floatbuf.New(op.Width, op.Height, 4, true)
		readRawSamples(d, op.X, op.Y, srcW, out, func(line []float32, col int, vals []float64) {
			v := normalize(vals[0], 0)
			line[col*4+0] = v
			line[col*4+1] = v
			line[col*4+2] = v
			line[col*4+3] = 0
		}, 1)
		return out
	case op.CPP == 3:
		out := floatbuf.New(op.Width, op.Height, 4, false)
		readRawSamples(d, op.X, op.Y, srcW, out, func(line []float32, col int, vals []float64) {
			line[col*4+0] = normalize(vals[0], 0)
			line[col*4+1] = normalize(vals[1], 1)
			line[col*4+2] = normalize(vals[2], 2)
			line[col*4+3] = 0
		}, 3)
		return out
	default:
		out := floatbuf.New(op.Width, op.Height, 1, false)
		readRawSamples(d, op.X, op.Y, srcW, out, func(line []float32, col int, vals []float64) {
			line[col] = normalize(vals[0], 0)
		}, 1)
		return out
	}
}

// readRawSamples fans a row-strip copy of d's pixel payload into out,
// dispatching to the integer or float accessor depending on the source's
// tagged payload kind.
func readRawSamples(d imgsrc.RawDecoder, x, y, srcW int, out *floatbuf.FloatBuffer, write func(line []float32, col int, vals []float64), cpp int) {
	if d.Payload() == imgsrc.PayloadFloat32 {
		data := d.FloatData()
		out.ForEachLineMut(func(line []float32, row int) {
			base := (srcW*(row+y) + x) * cpp
			vals := make([]float64, cpp)
			for col := 0; col < out.Width; col++ {
				for c := 0; c < cpp; c++ {
					vals[c] = float64(data[base+col*cpp+c])
				}
				write(line, col, vals)
			}
		})
		return
	}
	data := d.IntegerData()
	out.ForEachLineMut(func(line []float32, row int) {
		base := (srcW*(row+y) + x) * cpp
		vals := make([]float64, cpp)
		for col := 0; col < out.Width; col++ {
			for c := 0; c < cpp; c++ {
				vals[c] = float64(data[base+col*cpp+c])
			}
			write(line, col, vals)
		}
	})
}

func (op *GoFloat) ToSettings() string         { return marshalSettings(op) }
func (op *GoFloat) Hash(h *bufhash.Hasher)     { hashNamed(h, op.Name(), op) }

// TransformForward returns the cropped size; GoFloat is where cropping
// actually happens so every later op's sizing is measured from here.
func (op *GoFloat) TransformForward(w, h int) (int, int) { return op.Width, op.Height }

// TransformReverse is the identity: later ops' reverse sizing terminates
// at the cropped dimensions, not the pre-crop source dimensions.
func (op *GoFloat) TransformReverse(w, h int) (int, int) { return w, h }
