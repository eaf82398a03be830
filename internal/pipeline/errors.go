package pipeline

import (
	"fmt"

	"github.com/AnyUserName/imagepipe/internal/imgsrc"
)

// DecoderProbe is a single candidate decoder a construction path tries in
// order; the first one that accepts the input wins.
type DecoderProbe struct {
	Name      string
	TryRaw    func() (imgsrc.RawDecoder, error)
	TryRaster func() (imgsrc.RasterDecoder, error)
}

// FromProbes builds a Pipeline from the first probe whose decoder returns
// no error, and returns ErrUnknownSource if none do. The probes' own errors
// are discarded; ErrDecodeError is never returned here.
func FromProbes(probes []DecoderProbe) (*Pipeline, error) {
	for _, probe := range probes {
		switch {
		case probe.TryRaw != nil:
			d, err := probe.TryRaw()
			if err == nil {
				return New(imgsrc.FromRaw(d)), nil
			}
		case probe.TryRaster != nil:
			d, err := probe.TryRaster()
			if err == nil {
				return New(imgsrc.FromRaster(d)), nil
			}
		}
	}
	return nil, ErrUnknownSource
}

// wrapDecodeError wraps err in ErrDecodeError, naming the probe that
// failed. Neither FromProbes nor the CLI calls it.
func wrapDecodeError(name string, err error) error {
	return fmt.Errorf("%w: %s: %s", ErrDecodeError, name, err)
}
