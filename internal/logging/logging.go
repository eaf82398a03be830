// Package logging provides the small, dependency-free logger shared by the
// pipeline and the CLI. It mirrors the teacher CLI's verbose-gated
// fmt.Fprintf-to-stderr style rather than pulling in a structured logging
// framework the corpus never imports.
package logging

import (
	"fmt"
	"os"
	"sync/atomic"
)

// Logger writes prefixed lines to stderr, gated by a verbosity flag.
// The zero value is usable (with an empty prefix): Debugf stays silent
// until SetVerbose(true), while Warnf always writes.
type Logger struct {
	prefix  string
	verbose atomic.Bool
}

// New returns a Logger using the given line prefix (without brackets).
func New(prefix string) *Logger {
	return &Logger{prefix: prefix}
}

// SetVerbose toggles whether Debugf output is emitted.
func (l *Logger) SetVerbose(v bool) {
	if l == nil {
		return
	}
	l.verbose.Store(v)
}

// Debugf logs a message only when verbose output is enabled.
func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || !l.verbose.Load() {
		return
	}
	fmt.Fprintf(os.Stderr, "["+l.prefix+"] "+format+"\n", args...)
}

// Warnf always logs a message, whatever the verbosity setting. Nothing in
// the pipeline or the ops calls it.
func (l *Logger) Warnf(format string, args ...any) {
	if l == nil {
		fmt.Fprintf(os.Stderr, "[imagepipe] "+format+"\n", args...)
		return
	}
	fmt.Fprintf(os.Stderr, "["+l.prefix+"] "+format+"\n", args...)
}

// Default is the package-wide logger used by components that don't carry
// their own Logger reference (op descriptors, which are plain data and are
// cloned/serialized, use this rather than holding a *Logger field).
var Default = New("imagepipe")
