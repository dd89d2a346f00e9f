package diag

import (
	"strings"

	"sable/internal/source"
)

// Severity orders diagnostics from informational to fatal.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityLabels = [...]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

// Label is the lower-case form used by the short and json formats.
func (s Severity) Label() string {
	if int(s) < len(severityLabels) {
		return severityLabels[s]
	}
	return "info"
}

// String is the upper-case form pretty output prints.
func (s Severity) String() string {
	if int(s) < len(severityLabels) {
		return strings.ToUpper(severityLabels[s])
	}
	return "UNKNOWN"
}

type Note struct {
	Span source.Span
	Msg  string
}

// Suggestion is an optional hint with its own template arguments.
type Suggestion struct {
	Code SuggestionCode
	Args []string
}

func (s *Suggestion) Text() string {
	if s == nil {
		return ""
	}
	return FormatSuggestion(s.Code, s.Args)
}

// Diagnostic is inert data: a code, a location, template arguments and an
// optional suggestion. Message is the rendered template.
type Diagnostic struct {
	Severity   Severity
	Code       Code
	Args       []string
	Message    string
	Primary    source.Span
	Notes      []Note
	Suggestion *Suggestion
}

func New(sev Severity, code Code, primary source.Span, args ...string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Args:     args,
		Message:  Format(code, args),
		Primary:  primary,
	}
}

func NewError(code Code, primary source.Span, args ...string) Diagnostic {
	return New(SevError, code, primary, args...)
}

func NewWarning(code Code, primary source.Span, args ...string) Diagnostic {
	return New(SevWarning, code, primary, args...)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

func (d Diagnostic) WithSuggestion(code SuggestionCode, args ...string) Diagnostic {
	d.Suggestion = &Suggestion{Code: code, Args: args}
	return d
}

// Raised carries a diagnostic out of an interactive submission.
type Raised struct {
	Diagnostic Diagnostic
}

func (r *Raised) Error() string {
	return r.Diagnostic.Code.ID() + ": " + r.Diagnostic.Message
}
