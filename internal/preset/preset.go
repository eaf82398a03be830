// Package preset defines named pipeline run parameters, selected by the
// CLI's --preset flag and overridable by explicit --maxwidth/--maxheight/
// --linear flags exactly as the teacher CLI overrides a profile's widths
// and quality from flags.
package preset

// Preset bundles the run-wide knobs a Pipeline.Run call needs.
type Preset struct {
	Name        string
	MaxWidth    int
	MaxHeight   int
	Linear      bool
	UseFastpath bool
}

// Built-in presets.
var presets = map[string]Preset{
	"preview": {
		Name:        "preview",
		MaxWidth:    1280,
		MaxHeight:   0,
		Linear:      false,
		UseFastpath: true,
	},
	"full": {
		Name:        "full",
		MaxWidth:    0,
		MaxHeight:   0,
		Linear:      false,
		UseFastpath: false,
	},
	"full-linear": {
		Name:        "full-linear",
		MaxWidth:    0,
		MaxHeight:   0,
		Linear:      true,
		UseFastpath: false,
	},
	"thumbnail": {
		Name:        "thumbnail",
		MaxWidth:    320,
		MaxHeight:   320,
		Linear:      false,
		UseFastpath: true,
	},
}

// Get returns a preset by name. Falls back to "full" if unknown, keeping
// the requested name so callers can still report what was asked for.
func Get(name string) Preset {
	if p, ok := presets[name]; ok {
		return p
	}
	p := presets["full"]
	p.Name = name
	return p
}

// Names lists the built-in preset names, sorted for stable CLI help text.
func Names() []string {
	return []string{"full", "full-linear", "preview", "thumbnail"}
}

// WithOverrides returns a copy of p with every non-nil override applied,
// mirroring the teacher CLI's flag-overrides-profile behavior
// (cmd/build.go's handling of --widths/--quality).
func (p Preset) WithOverrides(maxwidth, maxheight *int, linear *bool) Preset {
	out := p
	if maxwidth != nil {
		out.MaxWidth = *maxwidth
	}
	if maxheight != nil {
		out.MaxHeight = *maxheight
	}
	if linear != nil {
		out.Linear = *linear
	}
	return out
}
