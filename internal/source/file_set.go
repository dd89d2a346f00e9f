package source

import (
	"fmt"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet registers the units taking part in one analysis run. Slot 0 is
// NoFileID and never handed out.
type FileSet struct {
	files []File
	ids   map[string]FileID
	base  string
}

func NewFileSet() *FileSet {
	return &FileSet{files: []File{{}}, ids: map[string]FileID{}}
}

// unitPath is the key a unit is registered under: cleaned, forward slashes.
func unitPath(p string) string { return filepath.ToSlash(filepath.Clean(p)) }

// SetBaseDir makes Display render absolute paths below dir relative to it.
func (fs *FileSet) SetBaseDir(dir string) { fs.base = dir }

// Add registers path once; the flags of a repeated Add are ignored.
func (fs *FileSet) Add(path string, flags FileFlags) FileID {
	key := unitPath(path)
	if id, dup := fs.ids[key]; dup {
		return id
	}
	next, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("file set: too many units: %w", err))
	}
	id := FileID(next)
	fs.files = append(fs.files, File{ID: id, Path: key, Flags: flags})
	fs.ids[key] = id
	return id
}

func (fs *FileSet) Get(id FileID) *File {
	if id == NoFileID || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.ids[unitPath(path)]
	return id, ok
}

// Len does not count the reserved slot.
func (fs *FileSet) Len() int { return len(fs.files) - 1 }

// Display is the path diagnostics show for id.
func (fs *FileSet) Display(id FileID) string {
	f := fs.Get(id)
	switch {
	case f == nil:
		return "<unknown>"
	case fs.base == "" || !filepath.IsAbs(f.Path):
		return f.Path
	}
	rel, err := filepath.Rel(fs.base, f.Path)
	if err != nil {
		return f.Path
	}
	return filepath.ToSlash(rel)
}
