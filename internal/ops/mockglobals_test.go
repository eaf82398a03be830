package ops

import "github.com/AnyUserName/imagepipe/internal/imgsrc"

// mockGlobals builds a Globals against a bare raster ImageSource, the same
// role original_source's PipelineGlobals::mock plays in its rotatecrop.rs
// tests: letting an op's Run be exercised without constructing a full
// decoded source.
func mockGlobals() *Globals {
	return &Globals{Source: imgsrc.ImageSource{Kind: imgsrc.KindRaster}}
}
