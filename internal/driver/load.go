package driver

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sable/internal/astio"
)

// Digest identifies the content of every document a check read.
type Digest [sha256.Size]byte

// readDocument reads and decodes one tree file, feeding its bytes to h.
func readDocument(path string, h *hasher) (*astio.Document, error) {
	format, err := astio.FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	h.add(path, data)
	doc, err := astio.Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// hasher accumulates the files a check depends on, in the order they were
// read. Loading is sequential, so the order is deterministic.
type hasher struct {
	parts [][]byte
}

func (h *hasher) add(path string, data []byte) {
	sum := sha256.Sum256(data)
	h.parts = append(h.parts, []byte(filepath.ToSlash(path)), sum[:])
}

func (h *hasher) sum(extra ...string) Digest {
	d := sha256.New()
	for _, p := range h.parts {
		_, _ = d.Write(p)
		_, _ = d.Write([]byte{0})
	}
	for _, s := range extra {
		_, _ = d.Write([]byte(s))
		_, _ = d.Write([]byte{0})
	}
	var out Digest
	copy(out[:], d.Sum(nil))
	return out
}

// siblingExts are the tree file extensions tried for an import path.
var siblingExts = []string{".json", ".sbt"}

// siblingCandidates lists the files an import may live in: the path itself
// when it names a tree file, otherwise the path with a tree extension
// appended or substituted for its own ("lib.sbl" tries lib.sbl.json and
// lib.json).
func siblingCandidates(dir, imp string) []string {
	base := filepath.Join(dir, filepath.FromSlash(imp))
	if _, err := astio.FormatOf(imp); err == nil {
		return []string{base}
	}
	out := make([]string, 0, 2*len(siblingExts))
	for _, ext := range siblingExts {
		out = append(out, base+ext)
	}
	if ext := filepath.Ext(base); ext != "" {
		for _, e := range siblingExts {
			out = append(out, strings.TrimSuffix(base, ext)+e)
		}
	}
	return out
}

// siblingResolver finds imported units next to the root document. A missing
// file is not an error: the import stays dangling and resolution reports it.
func siblingResolver(dir string, h *hasher) func(string) (*astio.Unit, error) {
	return func(imp string) (*astio.Unit, error) {
		candidates := siblingCandidates(dir, imp)
		for _, path := range candidates {
			if _, err := os.Stat(path); err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return nil, err
			}
			doc, err := readDocument(path, h)
			if err != nil {
				return nil, err
			}
			u := doc.Units[0]
			// the import path is the unit's identity inside this program
			u.Path = imp
			return u, nil
		}
		return nil, nil
	}
}
