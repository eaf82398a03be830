// Package pipeline assembles the seven ops packages into a single run:
// size planning, hash-keyed cache-aware execution, and the 8/16-bit
// output adapters (§4.7).
package pipeline

import (
	"errors"

	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/cache"
	"github.com/AnyUserName/imagepipe/internal/cfa"
	"github.com/AnyUserName/imagepipe/internal/colorimetry"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
	"github.com/AnyUserName/imagepipe/internal/logging"
	"github.com/AnyUserName/imagepipe/internal/ops"
	"github.com/AnyUserName/imagepipe/internal/scale"
)

// Error taxonomy surfaced by pipeline construction and serialization (§7).
var (
	ErrUnknownSource  = errors.New("pipeline: no decoder accepted the input")
	ErrDecodeError    = errors.New("pipeline: decoder error")
	ErrSerializeError = errors.New("pipeline: malformed serialized pipeline")
)

// numStages is the fixed op count: gofloat, demosaic, tolab, basecurve,
// from_lab, gamma, transform.
const numStages = 7

// Pipeline holds an ImageSource's default op chain plus the run-wide
// settings every op.Run sees.
type Pipeline struct {
	Source   imgsrc.ImageSource
	Stages   [numStages]ops.Op
	Settings ops.Settings
}

// New builds a Pipeline with default op descriptors derived from src,
// and maxwidth/maxheight 0 (no scaling).
func New(src imgsrc.ImageSource) *Pipeline {
	return &Pipeline{
		Source: src,
		Stages: [numStages]ops.Op{
			ops.NewGoFloat(src),
			ops.NewDemosaic(src),
			ops.NewToLab(src),
			ops.NewBaseCurve(),
			ops.NewFromLab(),
			ops.NewGamma(),
			ops.NewTransform(src),
		},
	}
}

// GoFloat, Demosaic, ToLab, BaseCurve, FromLab, Gamma and Transform give
// typed access to the fixed-index stages for callers that need to tweak
// white balance or crop/rotation before a run (e.g. SetTemp).
func (p *Pipeline) GoFloat() *ops.GoFloat     { return p.Stages[0].(*ops.GoFloat) }
func (p *Pipeline) Demosaic() *ops.Demosaic   { return p.Stages[1].(*ops.Demosaic) }
func (p *Pipeline) ToLab() *ops.ToLab         { return p.Stages[2].(*ops.ToLab) }
func (p *Pipeline) BaseCurve() *ops.BaseCurve { return p.Stages[3].(*ops.BaseCurve) }
func (p *Pipeline) FromLab() *ops.FromLab     { return p.Stages[4].(*ops.FromLab) }
func (p *Pipeline) Gamma() *ops.Gamma         { return p.Stages[5].(*ops.Gamma) }
func (p *Pipeline) Transform() *ops.Transform { return p.Stages[6].(*ops.Transform) }

// planSize runs the §4.7 size-planning pass: forward through every stage,
// scale-to-fit against maxwidth/maxheight, then back through every stage
// in reverse. The result lands in Settings.DemosaicWidth/Height.
func (p *Pipeline) planSize(maxwidth, maxheight int) {
	w, h := p.Source.Dimensions()
	for _, op := range p.Stages {
		w, h = op.TransformForward(w, h)
	}

	_, w, h = scale.CalculateScale(w, h, maxwidth, maxheight)

	for i := len(p.Stages) - 1; i >= 0; i-- {
		w, h = p.Stages[i].TransformReverse(w, h)
	}

	p.Settings.MaxWidth = maxwidth
	p.Settings.MaxHeight = maxheight
	p.Settings.DemosaicWidth = w
	p.Settings.DemosaicHeight = h
}

// stageKeys clones h after each appended stage's hash contribution,
// returning one cache key per stage in run order.
func stageKeys(h *bufhash.Hasher, stages [numStages]ops.Op) [numStages]bufhash.Digest {
	var keys [numStages]bufhash.Digest
	running := h
	for i, op := range stages {
		running = running.Clone()
		op.Hash(running)
		keys[i] = running.Result()
	}
	return keys
}

// settingsHasher seeds a fresh hasher with the run's settings, the basis
// every stage's cache key is built from (§4.7 execution step 1).
func (p *Pipeline) settingsHasher() *bufhash.Hasher {
	h := bufhash.New()
	h.WriteInt(p.Settings.MaxWidth)
	h.WriteInt(p.Settings.MaxHeight)
	h.WriteBool(p.Settings.Linear)
	h.WriteBool(p.Settings.UseFastpath)
	h.WriteInt(p.Settings.DemosaicWidth)
	h.WriteInt(p.Settings.DemosaicHeight)
	return h
}

// run executes the op chain honoring an optional cache, per §4.7's
// execution steps 2-4.
func (p *Pipeline) run(c *cache.Cache) *floatbuf.FloatBuffer {
	seed := p.settingsHasher()
	keys := stageKeys(seed, p.Stages)

	var current *floatbuf.FloatBuffer
	startIndex := 0

	if c != nil {
		for i := numStages - 1; i >= 0; i-- {
			if buf, ok := c.Get(keys[i]); ok {
				current = buf
				startIndex = i + 1
				break
			}
		}
	}

	if c != nil {
		logging.Default.Debugf("pipeline: resuming from stage %d/%d", startIndex, numStages)
	}

	g := &ops.Globals{Source: p.Source, Settings: p.Settings}
	for i := startIndex; i < numStages; i++ {
		current = p.Stages[i].Run(g, current)
		if c != nil {
			c.Put(keys[i], current, cache.BufferWeight(current))
		}
	}
	return current
}

// Run plans sizes for maxwidth/maxheight then executes the full chain,
// using c (which may be nil) as the buffer cache.
func (p *Pipeline) Run(maxwidth, maxheight int, linear bool, c *cache.Cache) *floatbuf.FloatBuffer {
	p.Settings.Linear = linear
	p.Settings.UseFastpath = false
	p.planSize(maxwidth, maxheight)
	return p.run(c)
}

// PlanSize runs the size-planning pass without executing any op: it fills
// Settings' max and demosaic sizes and commits Transform's output size.
// None of these are part of ToSerial's output.
func (p *Pipeline) PlanSize(maxwidth, maxheight int) {
	p.planSize(maxwidth, maxheight)
}

// atDefaults reports whether every stage equals the source's derived
// default, the condition output_8bit/output_16bit require before taking
// the raster fastpath.
func (p *Pipeline) atDefaults() bool {
	defaults := New(p.Source)
	for i := range p.Stages {
		if p.Stages[i].ToSettings() != defaults.Stages[i].ToSettings() {
			return false
		}
	}
	return true
}

// fastpathRaster produces a directly-scaled raster copy, bypassing the
// Lab color pipeline entirely, when the source is already sRGB raster
// data and every op is at its default (§4.7 output adapters).
func (p *Pipeline) fastpathRaster(maxwidth, maxheight int) (width, height int, rgb8 []byte, rgb16 []uint16, is16 bool) {
	d := p.Source.Raster
	srcW, srcH := d.Width(), d.Height()
	_, nw, nh := scale.CalculateScale(srcW, srcH, maxwidth, maxheight)
	tl, tr, bl := scale.AxisAligned(srcW, srcH)

	if d.BitDepth() == 8 {
		src := d.RGB8()
		data := make([]float32, srcW*srcH*3)
		for i, v := range src {
			data[i] = colorimetry.Input8Bit(v)
		}
		out := scale.TransformBuffer(data, srcW, srcH, tl, tr, bl, nw, nh, 3, cfa.Pattern{})
		rgb8 = make([]byte, len(out))
		for i, v := range out {
			rgb8[i] = colorimetry.Output8Bit(v)
		}
		return nw, nh, rgb8, nil, false
	}

	src := d.RGB16()
	data := make([]float32, srcW*srcH*3)
	for i, v := range src {
		data[i] = colorimetry.Input16Bit(v)
	}
	out := scale.TransformBuffer(data, srcW, srcH, tl, tr, bl, nw, nh, 3, cfa.Pattern{})
	rgb16 = make([]uint16, len(out))
	for i, v := range out {
		rgb16[i] = colorimetry.Output16Bit(v)
	}
	return nw, nh, nil, rgb16, true
}

// SRGBImage is the 8-bit-per-channel output raster (§6).
type SRGBImage struct {
	Width, Height int
	Data          []byte
}

// SRGBImage16 is the 16-bit-per-channel output raster (§6).
type SRGBImage16 struct {
	Width, Height int
	Data          []uint16
}

// Output8Bit implements the output_8bit adapter: a raster fastpath when
// the caller opts in and all ops are at defaults, otherwise a full
// linear=false run quantized to 8 bits.
func (p *Pipeline) Output8Bit(maxwidth, maxheight int, useFastpath bool, c *cache.Cache) SRGBImage {
	if useFastpath && p.Source.Kind == imgsrc.KindRaster && p.atDefaults() {
		w, h, rgb8, _, _ := p.fastpathRaster(maxwidth, maxheight)
		return SRGBImage{Width: w, Height: h, Data: rgb8}
	}
	buf := p.Run(maxwidth, maxheight, false, c)
	data := make([]byte, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = colorimetry.Output8Bit(v)
	}
	return SRGBImage{Width: buf.Width, Height: buf.Height, Data: data}
}

// Output16Bit implements the output_16bit adapter: a raster fastpath when
// the caller opts in and all ops are at defaults, otherwise a full
// linear=true run quantized to 16 bits.
func (p *Pipeline) Output16Bit(maxwidth, maxheight int, useFastpath bool, c *cache.Cache) SRGBImage16 {
	if useFastpath && p.Source.Kind == imgsrc.KindRaster && p.atDefaults() {
		w, h, _, rgb16, _ := p.fastpathRaster(maxwidth, maxheight)
		return SRGBImage16{Width: w, Height: h, Data: rgb16}
	}
	buf := p.Run(maxwidth, maxheight, true, c)
	data := make([]uint16, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = colorimetry.Output16Bit(v)
	}
	return SRGBImage16{Width: buf.Width, Height: buf.Height, Data: data}
}
