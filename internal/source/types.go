package source

type (
	// FileID uniquely identifies a compilation unit within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a unit.
	FileFlags uint8
)

const (
	// NoFileID marks the absence of a file.
	NoFileID FileID = 0
)

const (
	// FileVirtual indicates the unit was built in memory (tests, repl).
	FileVirtual FileFlags = 1 << iota
	// FileImported marks a unit that was pulled in by an import declaration.
	FileImported
)

// IsValid reports whether id refers to a registered file.
func (id FileID) IsValid() bool { return id != NoFileID }

// File captures metadata for a single parsed unit. The analysis core never
// touches file contents; the path exists for rendering only.
type File struct {
	ID    FileID
	Path  string
	Flags FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
