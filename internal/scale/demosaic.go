package scale

import (
	"fmt"
	"sync"

	"github.com/AnyUserName/imagepipe/internal/cfa"
)

const demosaicLUTSize = 48

// identityColor marks a 3x3 neighbor that shares the center pixel's color
// and is not the center itself; such neighbors contribute nothing (the
// center's own sample is the sole contributor to its own channel).
const identityColor = 4

var offsets3x3 = [9][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 0}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

type demosaicLUT = [demosaicLUTSize][demosaicLUTSize][9]int

var (
	lutCache   = map[string]*demosaicLUT{}
	lutCacheMu sync.Mutex
)

func buildLUT(pattern cfa.Pattern) *demosaicLUT {
	if demosaicLUTSize%pattern.Width() != 0 || demosaicLUTSize%pattern.Height() != 0 {
		panic(fmt.Sprintf("scale: CFA tile %dx%d does not divide %d", pattern.Width(), pattern.Height(), demosaicLUTSize))
	}
	var lut demosaicLUT
	for row := 0; row < demosaicLUTSize; row++ {
		for col := 0; col < demosaicLUTSize; col++ {
			center := pattern.ColorAt(row, col)
			for i, o := range offsets3x3 {
				nr := demosaicLUTSize + o[0] + row
				nc := demosaicLUTSize + o[1] + col
				ocolor := pattern.ColorAt(nr, nc)
				if ocolor != center || (o[0] == 0 && o[1] == 0) {
					lut[row][col][i] = ocolor
				} else {
					lut[row][col][i] = identityColor
				}
			}
		}
	}
	return &lut
}

func lutFor(pattern cfa.Pattern) *demosaicLUT {
	key := pattern.String()
	lutCacheMu.Lock()
	defer lutCacheMu.Unlock()
	if l, ok := lutCache[key]; ok {
		return l
	}
	l := buildLUT(pattern)
	lutCache[key] = l
	return l
}

// FullDemosaic reconstructs a 4-channel buffer from a 1-channel CFA buffer
// by averaging, per output pixel, the 3x3-neighborhood samples that share
// each of the four color indices (the center contributes only to its own
// channel; same-colored non-center neighbors are excluded so a flat-color
// patch doesn't double-count the center).
func FullDemosaic(data []float32, width, height int, pattern cfa.Pattern) []float32 {
	lut := lutFor(pattern)
	out := make([]float32, width*height*4)

	forEachRow(height, func(row int) {
		outLine := out[row*width*4 : (row+1)*width*4]
		for col := 0; col < width; col++ {
			colors := lut[row%demosaicLUTSize][col%demosaicLUTSize]
			var sums, counts [5]float32

			for i, o := range offsets3x3 {
				y := row + o[0]
				x := col + o[1]
				if y < 0 || y >= height || x < 0 || x >= width {
					continue
				}
				c := colors[i]
				sums[c] += data[y*width+x]
				counts[c]++
			}

			pix := outLine[col*4 : col*4+4]
			for c := 0; c < 4; c++ {
				if counts[c] > 0 {
					pix[c] = sums[c] / counts[c]
				}
			}
		}
	})

	return out
}
