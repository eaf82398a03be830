// Package floatbuf implements FloatBuffer, the per-channel float32 image
// buffer every pipeline stage reads and writes. Parallel row iteration uses
// a bounded worker pool (semaphore + sync.WaitGroup), the same shape the
// build pipeline uses to fan work out across images; here it fans out
// across row strips of a single buffer instead.
package floatbuf

import (
	"runtime"
	"sync"

	"github.com/AnyUserName/imagepipe/internal/cfa"
	"github.com/AnyUserName/imagepipe/internal/scale"
)

// FloatBuffer is a width*height*colors float32 image, row-major, channels
// interleaved within each row.
type FloatBuffer struct {
	Width, Height, Colors int
	Monochrome            bool
	Data                  []float32
}

// New allocates a zero-filled buffer.
func New(width, height, colors int, monochrome bool) *FloatBuffer {
	return &FloatBuffer{
		Width:      width,
		Height:     height,
		Colors:     colors,
		Monochrome: monochrome,
		Data:       make([]float32, width*height*colors),
	}
}

// Clone returns a deep copy.
func (b *FloatBuffer) Clone() *FloatBuffer {
	out := &FloatBuffer{
		Width:      b.Width,
		Height:     b.Height,
		Colors:     b.Colors,
		Monochrome: b.Monochrome,
		Data:       make([]float32, len(b.Data)),
	}
	copy(out.Data, b.Data)
	return out
}

// Line returns the row slice for the given row index.
func (b *FloatBuffer) Line(row int) []float32 {
	stride := b.Width * b.Colors
	return b.Data[row*stride : (row+1)*stride]
}

func workers() int {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return n
}

// forEachRow runs fn(row) for every row in [0,height) using a bounded
// worker pool, blocking until all rows complete.
func forEachRow(height int, fn func(row int)) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, workers())
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

// ForEachLineMut mutates each row of the buffer in place, in parallel.
// The closure receives the row's sample slice and its row index.
func (b *FloatBuffer) ForEachLineMut(fn func(line []float32, row int)) {
	forEachRow(b.Height, func(row int) {
		fn(b.Line(row), row)
	})
}

// MapCopyingLines returns a clone of the buffer with fn applied to each row
// of the copy, in parallel. The source buffer is left untouched.
func (b *FloatBuffer) MapCopyingLines(fn func(line []float32, row int)) *FloatBuffer {
	out := b.Clone()
	out.ForEachLineMut(fn)
	return out
}

// MapIntoNew builds a new buffer with a (possibly) different channel count,
// filling each output row from the corresponding input row via fn. fn
// receives the output row slice and the full remaining input data starting
// at that row, mirroring the source buffer's row-start-relative addressing.
func (b *FloatBuffer) MapIntoNew(colors int, fn func(outLine []float32, in []float32)) *FloatBuffer {
	out := New(b.Width, b.Height, colors, b.Monochrome)
	inStride := b.Width * b.Colors
	forEachRow(b.Height, func(row int) {
		fn(out.Line(row), b.Data[row*inStride:])
	})
	return out
}

// Transform resamples the buffer into a (w,h) buffer covering the
// destination parallelogram described by topleft/topright/bottomleft, in
// source pixel coordinates. pattern is the empty cfa.Pattern for ordinary
// multi-channel resampling, or a populated one when the source is
// single-channel CFA data being demosaiced and scaled in the same pass.
func (b *FloatBuffer) Transform(topleft, topright, bottomleft scale.Corner, w, h int, pattern cfa.Pattern) *FloatBuffer {
	colors := b.Colors
	if !pattern.Empty() {
		colors = 4
	}
	data := scale.TransformBuffer(b.Data, b.Width, b.Height, topleft, topright, bottomleft, w, h, colors, pattern)
	return &FloatBuffer{
		Width:      w,
		Height:     h,
		Colors:     colors,
		Monochrome: b.Monochrome,
		Data:       data,
	}
}
