// Package ops implements the pipeline's seven fixed-order processing
// stages (GoFloat, Demosaic, ToLab, BaseCurve, FromLab, Gamma, Transform),
// each conforming to a common protocol: a name, a run step, a stable
// settings serialization, a hash contribution, and a pair of pure size
// predictors used by the pipeline's forward/reverse sizing pass.
package ops

import (
	"gopkg.in/yaml.v3"

	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
	"github.com/AnyUserName/imagepipe/internal/imgsrc"
)

// Settings carries the run-wide parameters every op's Run can see, mirroring
// the per-run knobs the pipeline computes during size planning.
type Settings struct {
	MaxWidth, MaxHeight           int
	Linear                        bool
	UseFastpath                   bool
	DemosaicWidth, DemosaicHeight int
}

// Globals bundles the decoded source and the current run's settings, the
// read-only context every op's Run receives.
type Globals struct {
	Source   imgsrc.ImageSource
	Settings Settings
}

// Op is the protocol every pipeline stage implements.
type Op interface {
	Name() string
	Run(g *Globals, input *floatbuf.FloatBuffer) *floatbuf.FloatBuffer
	ToSettings() string
	Hash(h *bufhash.Hasher)
	TransformForward(w, h int) (int, int)
	TransformReverse(w, h int) (int, int)
}

// marshalSettings renders v as the stable YAML-like text every op uses for
// ToSettings, via the same library the pipeline uses for its own
// serialization (gopkg.in/yaml.v3).
func marshalSettings(v any) string {
	out, err := yaml.Marshal(v)
	if err != nil {
		panic("ops: marshal settings: " + err.Error())
	}
	return string(out)
}

// hashNamed writes an op's name followed by its stable settings encoding,
// the "writes the name bytes then the serialized form" contract every op's
// Hash implements identically.
func hashNamed(h *bufhash.Hasher, name string, v any) {
	h.WriteString(name)
	h.WriteString(marshalSettings(v))
}

// identitySize backs the "identity by default" forward and reverse size
// predictors most ops use.
func identitySize(w, h int) (int, int) { return w, h }
