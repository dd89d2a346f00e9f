package astio

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is a wire form of a Document.
type Format uint8

const (
	FormatJSON    Format = iota + 1 // .json
	FormatMsgpack                   // .sbt
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	default:
		return "unknown"
	}
}

var (
	// ErrUnknownFormat is returned for paths without a known extension.
	ErrUnknownFormat = errors.New("unknown tree format")
	// ErrVersion is returned for documents of another schema version.
	ErrVersion = errors.New("unsupported tree schema version")
)

// FormatOf picks the wire form from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".sbt":
		return FormatMsgpack, nil
	default:
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Decode reads one Document.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	if err := decodeValue(r, format, &doc); err != nil {
		return nil, err
	}
	if doc.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrVersion, doc.Version, SchemaVersion)
	}
	if len(doc.Units) == 0 || doc.Units[0] == nil {
		return nil, fmt.Errorf("%w: document has no root unit", ErrMalformed)
	}
	return &doc, nil
}

// DecodeTopLevel reads a single top-level declaration.
func DecodeTopLevel(r io.Reader, format Format) (*TopLevel, error) {
	var top TopLevel
	if err := decodeValue(r, format, &top); err != nil {
		return nil, err
	}
	return &top, nil
}

func decodeValue(r io.Reader, format Format, v any) error {
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode json: %w", err)
		}
	case FormatMsgpack:
		dec := msgpack.NewDecoder(r)
		dec.DisallowUnknownFields(true)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("decode msgpack: %w", err)
		}
	default:
		return ErrUnknownFormat
	}
	return nil
}

// Encode writes doc in the given form.
func Encode(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetOmitEmpty(true)
		return enc.Encode(doc)
	default:
		return ErrUnknownFormat
	}
}

// ReadFile decodes the document at path, choosing the form by extension.
func ReadFile(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Decode(bufio.NewReader(f), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteFile encodes doc to path, choosing the form by extension.
func WriteFile(path string, doc *Document) (err error) {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	w := bufio.NewWriter(f)
	if err := Encode(w, doc, format); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return w.Flush()
}
