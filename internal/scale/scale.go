// Package scale implements the single weighted-window resampler that backs
// both the Demosaic and Transform ops (§4.5): a destination parallelogram
// described by its three non-bottom-right corners in source pixel
// coordinates, scanned in parallel per output row.
package scale

import (
	"math"
	"runtime"
	"sync"

	"github.com/AnyUserName/imagepipe/internal/cfa"
)

// Corner is a source-pixel-space coordinate; it may be fractional-free
// (integer) per §4.5 but is carried as float64 so rotated parallelograms
// can be expressed exactly.
type Corner struct{ X, Y float64 }

func forEachRow(height int, fn func(row int)) {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	var wg sync.WaitGroup
	sem := make(chan struct{}, n)
	for row := 0; row < height; row++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fn(r)
		}(row)
	}
	wg.Wait()
}

// CalculateScale computes the downscale factor and the effective target
// dimensions honoring a "zero means unbounded" maxwidth/maxheight, using
// the integer-truncating math the original ports its exact off-by-one
// avoidance from.
func CalculateScale(width, height, maxwidth, maxheight int) (scale float64, nwidth, nheight int) {
	if maxwidth == 0 && maxheight == 0 {
		return 1.0, width, height
	}
	xscale := 1.0
	if maxwidth != 0 {
		xscale = float64(width) / float64(maxwidth)
	}
	yscale := 1.0
	if maxheight != 0 {
		yscale = float64(height) / float64(maxheight)
	}
	if xscale <= 1 && yscale <= 1 {
		return 1.0, width, height
	}
	if yscale > xscale {
		return yscale, int(float64(width) / yscale), maxheight
	}
	return xscale, maxwidth, int(float64(height) / xscale)
}

// TransformBuffer implements the §4.5 resampler. data is the source buffer
// (width*height*colors, row-major interleaved); the destination
// parallelogram is given by its topleft/topright/bottomleft corners in
// source pixel coordinates (the bottom-right corner is implied by the
// parallelogram law). outColors is the output channel count; when pattern
// is non-empty the source is treated as 1-channel-per-pixel CFA data and
// each source sample is routed to channel pattern.ColorAt(y,x) instead of
// being split across outColors channels directly.
func TransformBuffer(data []float32, width, height int, topleft, topright, bottomleft Corner, outWidth, outHeight, colors int, pattern cfa.Pattern) []float32 {
	out := make([]float32, outWidth*outHeight*colors)

	// Row and column step vectors of the destination parallelogram, in
	// source pixel units per destination pixel.
	var colStep, rowStep Corner
	if outWidth > 1 {
		colStep = Corner{
			X: (topright.X - topleft.X) / float64(outWidth-1),
			Y: (topright.Y - topleft.Y) / float64(outWidth-1),
		}
	}
	if outHeight > 1 {
		rowStep = Corner{
			X: (bottomleft.X - topleft.X) / float64(outHeight-1),
			Y: (bottomleft.Y - topleft.Y) / float64(outHeight-1),
		}
	}

	useCFA := !pattern.Empty()

	// Per-axis extent of the destination parallelogram, used to normalize
	// dx/dy below; a plain component (colStep.X alone) is only correct when
	// the parallelogram is axis-aligned, so rotated crops need the full
	// step-vector magnitude instead.
	colExtent := math.Hypot(colStep.X, colStep.Y) + 1e-9
	rowExtent := math.Hypot(rowStep.X, rowStep.Y) + 1e-9

	forEachRow(outHeight, func(row int) {
		outLine := out[row*outWidth*colors : (row+1)*outWidth*colors]
		for col := 0; col < outWidth; col++ {
			// Center of this output pixel in source coordinates.
			cx := topleft.X + colStep.X*float64(col) + rowStep.X*float64(row)
			cy := topleft.Y + colStep.Y*float64(col) + rowStep.Y*float64(row)

			// Half-extent of the source rectangle covered by one output
			// pixel, from the magnitude of the step vectors.
			hx := (absf(colStep.X) + absf(rowStep.X))/2.0 + 0.5
			hy := (absf(colStep.Y) + absf(rowStep.Y))/2.0 + 0.5

			fromX := clampInt(int(cx-hx), 0, width-1)
			toX := clampInt(int(cx+hx)+1, 0, width-1)
			fromY := clampInt(int(cy-hy), 0, height-1)
			toY := clampInt(int(cy+hy)+1, 0, height-1)

			var sums [4]float32
			var weights [4]float32

			for y := fromY; y <= toY; y++ {
				for x := fromX; x <= toX; x++ {
					dx := (float64(x) - cx) / colExtent
					dy := (float64(y) - cy) / rowExtent
					w := 1.0 - (dx*dx + dy*dy)
					if w < 0 {
						continue
					}
					weight := float32(w)

					if useCFA {
						c := pattern.ColorAt(y, x)
						sums[c] += data[y*width+x] * weight
						weights[c] += weight
					} else {
						for c := 0; c < colors; c++ {
							sums[c] += data[(y*width+x)*colors+c] * weight
							weights[c] += weight
						}
					}
				}
			}

			for c := 0; c < colors; c++ {
				if weights[c] > 0 {
					outLine[col*colors+c] = sums[c] / weights[c]
				}
			}
		}
	})

	return out
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AxisAligned builds the degenerate parallelogram for a plain axis-aligned
// scale (no rotation): ((0,0), (w-1,0), (0,h-1)).
func AxisAligned(width, height int) (topleft, topright, bottomleft Corner) {
	return Corner{0, 0}, Corner{float64(width - 1), 0}, Corner{0, float64(height - 1)}
}
