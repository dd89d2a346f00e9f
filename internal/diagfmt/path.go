package diagfmt

import (
	"fmt"
	"path"

	"sable/internal/source"
)

// PathMode picks how a file is named in output.
type PathMode uint8

const (
	PathModeAuto     PathMode = iota // relative to the file set's base dir when possible
	PathModeAbsolute                 // the path the unit was registered under
	PathModeBasename
)

func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	if fs == nil {
		return fmt.Sprintf("file%d", id)
	}
	f := fs.Get(id)
	if f == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		return f.Path
	case PathModeBasename:
		return path.Base(f.Path)
	default:
		return fs.Display(id)
	}
}

// formatSpan renders the start of sp as path:line:col; a span without a
// file renders as "-".
func formatSpan(fs *source.FileSet, sp source.Span, mode PathMode) string {
	if !sp.File.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%s:%d:%d", formatPath(fs, sp.File, mode), sp.Start.Line, sp.Start.Col)
}
