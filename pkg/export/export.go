// Package export writes generated models to disk: mesh buffers as JSON,
// MessagePack or CBOR documents, or triangles as binary STL.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/lathe/pkg/bottle"
	"github.com/chazu/lathe/pkg/kernel"
	"github.com/chazu/lathe/pkg/kernel/sdfx"
	"github.com/ugorji/go/codec"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
	FormatCBOR    Format = "cbor"
	FormatSTL     Format = "stl"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatMsgpack, FormatCBOR, FormatSTL}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mp":
		return FormatMsgpack, nil
	case ".cbor":
		return FormatCBOR, nil
	case ".stl":
		return FormatSTL, nil
	}
	return "", fmt.Errorf("export: cannot infer format from %q", path)
}

// Document is the serialized form of a model.
type Document struct {
	Params bottle.Params  `json:"params"`
	Parts  []*kernel.Mesh `json:"parts"`
}

// NewDocument collects the assembled meshes of m.
func NewDocument(m *bottle.Model) *Document {
	doc := &Document{Params: m.Params}
	for _, p := range m.Parts() {
		doc.Parts = append(doc.Parts, p.Mesh)
	}
	return doc
}

func handle(f Format) (codec.Handle, error) {
	switch f {
	case FormatJSON:
		return &codec.JsonHandle{}, nil
	case FormatMsgpack:
		return &codec.MsgpackHandle{}, nil
	case FormatCBOR:
		return &codec.CborHandle{}, nil
	}
	return nil, fmt.Errorf("export: %s is not a document format", f)
}

// Encode writes doc to w in a document format.
func Encode(w io.Writer, f Format, doc *Document) error {
	h, err := handle(f)
	if err != nil {
		return err
	}
	if err := codec.NewEncoder(w, h).Encode(doc); err != nil {
		return fmt.Errorf("export: encode %s: %w", f, err)
	}
	return nil
}

// Decode reads a document written by Encode.
func Decode(r io.Reader, f Format) (*Document, error) {
	h, err := handle(f)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := codec.NewDecoder(r, h).Decode(&doc); err != nil {
		return nil, fmt.Errorf("export: decode %s: %w", f, err)
	}
	return &doc, nil
}

// Save writes doc to path. STL output keeps only the triangles.
func Save(path string, f Format, doc *Document) (err error) {
	if f == FormatSTL {
		return sdfx.SaveSTL(path, doc.Parts...)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("export: close %s: %w", path, cerr)
		}
	}()
	return Encode(file, f, doc)
}
