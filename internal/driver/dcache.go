package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"sable/internal/diag"
	"sable/internal/source"
)

// Current schema version - increment when DiskPayload format changes
const diskCacheSchemaVersion uint16 = 1

// DiskCache keeps the outcome of a check keyed by the digest of its inputs.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is what a cached check replays: the passes that ran and the
// diagnostics they delivered.
type DiskPayload struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Ran         []string
	Errors      int
	Warns       int
	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic with its file IDs replaced by paths.
type CachedDiagnostic struct {
	Severity uint8
	Code     uint16
	Args     []string
	Message  string
	Primary  CachedSpan
	Notes    []CachedNote
	Fix      *diag.Suggestion
}

type CachedSpan struct {
	Path                       string
	Line, Col, EndLine, EndCol uint32
}

type CachedNote struct {
	Span CachedSpan
	Msg  string
}

// OpenDiskCache opens (creating if needed) the cache under dir, or under the
// user cache directory for app when dir is empty.
func OpenDiskCache(dir, app string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// подкаталог "checks", чтобы кэш было проще чистить
	return filepath.Join(c.dir, "checks", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry, or one written by another schema
// version, is a miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

func toCachedSpan(fs *source.FileSet, sp source.Span) CachedSpan {
	out := CachedSpan{Line: sp.Start.Line, Col: sp.Start.Col, EndLine: sp.End.Line, EndCol: sp.End.Col}
	if f := fs.Get(sp.File); f != nil {
		out.Path = f.Path
	}
	return out
}

func fromCachedSpan(fs *source.FileSet, sp CachedSpan) source.Span {
	if sp.Path == "" {
		return source.Span{}
	}
	id, ok := fs.Lookup(sp.Path)
	if !ok {
		id = fs.Add(sp.Path, source.FileImported)
	}
	return source.Span{
		File:  id,
		Start: source.LineCol{Line: sp.Line, Col: sp.Col},
		End:   source.LineCol{Line: sp.EndLine, Col: sp.EndCol},
	}
}

func toPayload(fs *source.FileSet, items []diag.Diagnostic) []CachedDiagnostic {
	out := make([]CachedDiagnostic, len(items))
	for i, d := range items {
		cd := CachedDiagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Args:     d.Args,
			Message:  d.Message,
			Primary:  toCachedSpan(fs, d.Primary),
			Fix:      d.Suggestion,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, CachedNote{Span: toCachedSpan(fs, n.Span), Msg: n.Msg})
		}
		out[i] = cd
	}
	return out
}

func fromPayload(fs *source.FileSet, items []CachedDiagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(items))
	for i, cd := range items {
		d := diag.Diagnostic{
			Severity:   diag.Severity(cd.Severity),
			Code:       diag.Code(cd.Code),
			Args:       cd.Args,
			Message:    cd.Message,
			Primary:    fromCachedSpan(fs, cd.Primary),
			Suggestion: cd.Fix,
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: fromCachedSpan(fs, n.Span), Msg: n.Msg})
		}
		out[i] = d
	}
	return out
}
