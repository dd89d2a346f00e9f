package pipeline

import (
	"errors"

	"sable/internal/diag"
	"sable/internal/source"
)

var (
	// ErrHalted is returned by Run when a pass produced error diagnostics.
	ErrHalted = errors.New("pipeline halted")
	// ErrBadCutoff marks a malformed or out-of-range stop-after directive.
	ErrBadCutoff = errors.New("bad pass cutoff")
	// ErrBadConfig marks any other invalid pipeline configuration.
	ErrBadConfig = errors.New("bad pipeline configuration")
)

// ConfigError carries the configuration diagnostic that made a pipeline
// unusable. Configuration errors are fatal: nothing runs after one.
type ConfigError struct {
	Diagnostic diag.Diagnostic
	sentinel   error
}

func newConfigError(code diag.Code, args ...string) *ConfigError {
	sentinel := ErrBadConfig
	if code == diag.CfgBadCutoff || code == diag.CfgCutoffRange {
		sentinel = ErrBadCutoff
	}
	return &ConfigError{Diagnostic: diag.NewError(code, source.Span{}, args...), sentinel: sentinel}
}

func (e *ConfigError) Error() string {
	return e.Diagnostic.Code.ID() + ": " + e.Diagnostic.Message
}

func (e *ConfigError) Unwrap() error { return e.sentinel }

// Report forwards the diagnostic to r.
func (e *ConfigError) Report(r diag.Reporter) {
	if r != nil {
		r.Report(e.Diagnostic)
	}
}
