package diagfmt

import (
	"encoding/json"
	"io"

	"sable/internal/diag"
	"sable/internal/source"
)

// JSONOpts tune the machine-readable renderer.
type JSONOpts struct {
	PathMode     PathMode
	Max          int // режет только вывод, Bag не трогает
	IncludeNotes bool
	IncludeFixes bool
}

// LocationJSON is a span; zero positions are omitted.
type LocationJSON struct {
	File      string `json:"file"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Args     []string     `json:"args,omitempty"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fix      string       `json:"fix,omitempty"`
}

// DiagnosticsOutput is the document `check --format json` embeds per program.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	// Dropped counts what the bag refused once full.
	Dropped int `json:"dropped,omitempty"`
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (jb jsonBuilder) location(sp source.Span) LocationJSON {
	loc := LocationJSON{
		StartLine: sp.Start.Line,
		StartCol:  sp.Start.Col,
		EndLine:   sp.End.Line,
		EndCol:    sp.End.Col,
	}
	if sp.File.IsValid() {
		loc.File = formatPath(jb.fs, sp.File, jb.opts.PathMode)
	}
	return loc
}

func (jb jsonBuilder) diagnostic(d *diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.Label(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
		Args:     d.Args,
		Location: jb.location(d.Primary),
	}
	if jb.opts.IncludeNotes {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: jb.location(n.Span)})
		}
	}
	if jb.opts.IncludeFixes {
		out.Fix = d.Suggestion.Text()
	}
	return out
}

// BuildDiagnosticsOutput converts bag without serialising it, so callers can
// nest the result in a larger document.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	jb := jsonBuilder{fs: fs, opts: opts}
	items := bag.Items()
	if opts.Max > 0 {
		items = items[:min(opts.Max, len(items))]
	}
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, len(items)),
		Count:       len(items),
		Dropped:     bag.Dropped(),
	}
	for i := range items {
		out.Diagnostics[i] = jb.diagnostic(&items[i])
	}
	return out
}

// JSON writes bag as one indented document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
