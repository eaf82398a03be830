package pipeline

import (
	"testing"

	"github.com/AnyUserName/imagepipe/internal/imgsrc"
)

// mockRaster is a minimal imgsrc.RasterDecoder backed by an in-memory RGB8
// buffer, standing in for a real decoded image file in pipeline tests.
type mockRaster struct {
	width, height int
	rgb8          []byte
}

func newMockRaster(w, h int, fill func(x, y int) [3]byte) *mockRaster {
	data := make([]byte, w*h*3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := fill(x, y)
			i := (y*w + x) * 3
			data[i], data[i+1], data[i+2] = px[0], px[1], px[2]
		}
	}
	return &mockRaster{width: w, height: h, rgb8: data}
}

func (m *mockRaster) Width() int      { return m.width }
func (m *mockRaster) Height() int     { return m.height }
func (m *mockRaster) BitDepth() int   { return 8 }
func (m *mockRaster) RGB8() []byte    { return m.rgb8 }
func (m *mockRaster) RGB16() []uint16 { return nil }

var _ imgsrc.RasterDecoder = (*mockRaster)(nil)

func gradient(w, h int) *mockRaster {
	return newMockRaster(w, h, func(x, y int) [3]byte {
		return [3]byte{byte(x * 255 / (w - 1)), byte(y * 255 / (h - 1)), 128}
	})
}

// TestDownscaleKeepsRatio covers §8 scenario 3.
func TestDownscaleKeepsRatio(t *testing.T) {
	for _, fastpath := range []bool{true, false} {
		src := imgsrc.FromRaster(gradient(128, 64))
		p := New(src)
		out := p.Output8Bit(64, 0, fastpath, nil)
		if out.Width != 64 || out.Height != 32 {
			t.Fatalf("fastpath=%v: got %dx%d, want 64x32", fastpath, out.Width, out.Height)
		}
	}
}

// TestNoUpscaling covers §8 scenario 4.
func TestNoUpscaling(t *testing.T) {
	for _, fastpath := range []bool{true, false} {
		src := imgsrc.FromRaster(gradient(128, 64))
		p := New(src)
		out := p.Output8Bit(256, 0, fastpath, nil)
		if out.Width != 128 || out.Height != 64 {
			t.Fatalf("fastpath=%v: got %dx%d, want 128x64 (no upscale)", fastpath, out.Width, out.Height)
		}
		if len(out.Data) != 128*64*3 {
			t.Fatalf("fastpath=%v: got %d data bytes, want %d", fastpath, len(out.Data), 128*64*3)
		}
	}
}

// TestRotationSizing covers §8 scenario 5.
func TestRotationSizing(t *testing.T) {
	src := imgsrc.FromRaster(gradient(128, 64))
	p := New(src)
	p.Transform().Rotation = 1 // Rotation90
	out := p.Output8Bit(64, 0, false, nil)
	if out.Width != 64 || out.Height != 128 {
		t.Fatalf("got %dx%d, want 64x128 after Rotate90", out.Width, out.Height)
	}
}

// TestIdentityRasterFastpath covers §8 scenario 1: an 8-bit fastpath run at
// native size with default ops reproduces the raster exactly.
func TestIdentityRasterFastpath(t *testing.T) {
	mock := gradient(17, 13)
	src := imgsrc.FromRaster(mock)
	p := New(src)
	out := p.Output8Bit(0, 0, true, nil)
	if out.Width != mock.width || out.Height != mock.height {
		t.Fatalf("got %dx%d, want %dx%d", out.Width, out.Height, mock.width, mock.height)
	}
	for i, v := range mock.rgb8 {
		if out.Data[i] != v {
			t.Fatalf("byte %d: got %d want %d", i, out.Data[i], v)
		}
	}
}

// TestIdentityRasterSlowpath covers §8 scenario 2: the full Lab pipeline at
// native size with default ops reproduces the raster within +-1 per channel.
func TestIdentityRasterSlowpath(t *testing.T) {
	mock := gradient(17, 13)
	src := imgsrc.FromRaster(mock)
	p := New(src)
	out := p.Output8Bit(0, 0, false, nil)
	if out.Width != mock.width || out.Height != mock.height {
		t.Fatalf("got %dx%d, want %dx%d", out.Width, out.Height, mock.width, mock.height)
	}
	for i, v := range mock.rgb8 {
		diff := int(out.Data[i]) - int(v)
		if diff < -1 || diff > 1 {
			t.Fatalf("byte %d: got %d want within 1 of %d", i, out.Data[i], v)
		}
	}
}

func TestStageCacheKeysAreDistinct(t *testing.T) {
	src := imgsrc.FromRaster(gradient(32, 32))
	p := New(src)
	p.planSize(0, 0)

	seed := p.settingsHasher()
	keys := stageKeys(seed, p.Stages)
	if keys[0] == keys[numStages-1] {
		t.Fatal("expected distinct cache keys across stages")
	}
}
