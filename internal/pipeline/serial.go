package pipeline

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/AnyUserName/imagepipe/internal/imgsrc"
	"github.com/AnyUserName/imagepipe/internal/ops"
)

// PipelineSerialization is the envelope half of the serialized pipeline
// tuple (§6). FileHash is carried as a string for forward compatibility
// with content hashes wider than an int64, even though the core always
// writes "0".
type PipelineSerialization struct {
	Version  int    `yaml:"version"`
	FileHash string `yaml:"filehash"`
}

// PipelineOps is the op-descriptor half of the serialized pipeline tuple,
// one field per fixed stage, field names matching §4.6 exactly.
type PipelineOps struct {
	GoFloat   ops.GoFloat   `yaml:"gofloat"`
	Demosaic  ops.Demosaic  `yaml:"demosaic"`
	ToLab     ops.ToLab     `yaml:"tolab"`
	BaseCurve ops.BaseCurve `yaml:"basecurve"`
	FromLab   ops.FromLab   `yaml:"fromlab"`
	Gamma     ops.Gamma     `yaml:"gamma"`
	Transform ops.Transform `yaml:"transform"`
}

// serialDoc is the on-the-wire tuple, encoded as a two-element YAML
// sequence rather than a map so field order is fixed.
type serialDoc struct {
	Envelope PipelineSerialization
	Ops      PipelineOps
}

func (d serialDoc) MarshalYAML() (any, error) {
	return []any{d.Envelope, d.Ops}, nil
}

func (d *serialDoc) UnmarshalYAML(value *yaml.Node) error {
	var tuple [2]yaml.Node
	if err := value.Decode(&tuple); err != nil {
		return err
	}
	if err := tuple[0].Decode(&d.Envelope); err != nil {
		return err
	}
	return tuple[1].Decode(&d.Ops)
}

// ToSerial renders the pipeline's current op descriptors as the stable
// tuple format §6 specifies.
func (p *Pipeline) ToSerial() (string, error) {
	doc := serialDoc{
		Envelope: PipelineSerialization{Version: 0, FileHash: "0"},
		Ops: PipelineOps{
			GoFloat:   *p.GoFloat(),
			Demosaic:  *p.Demosaic(),
			ToLab:     *p.ToLab(),
			BaseCurve: *p.BaseCurve(),
			FromLab:   *p.FromLab(),
			Gamma:     *p.Gamma(),
			Transform: *p.Transform(),
		},
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSerializeError, err)
	}
	return string(out), nil
}

// NewFromSerial rebuilds a Pipeline's op descriptors from a ToSerial
// string, pairing them with src as the run's ImageSource.
func NewFromSerial(src imgsrc.ImageSource, text string) (*Pipeline, error) {
	var doc serialDoc
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSerializeError, err)
	}
	if doc.Envelope.Version != 0 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSerializeError, doc.Envelope.Version)
	}

	p := &Pipeline{Source: src}
	goFloat := doc.Ops.GoFloat
	demosaic := doc.Ops.Demosaic
	toLab := doc.Ops.ToLab
	baseCurve := doc.Ops.BaseCurve
	fromLab := doc.Ops.FromLab
	gammaOp := doc.Ops.Gamma
	transform := doc.Ops.Transform
	p.Stages = [numStages]ops.Op{&goFloat, &demosaic, &toLab, &baseCurve, &fromLab, &gammaOp, &transform}
	return p, nil
}
