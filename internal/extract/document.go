// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns source files into RawSegments.
//
// Two input shapes are supported. Markup files are TEI-like XML with nested
// div elements; every paragraph of a leaf division becomes one segment.
// Flat files are JSON objects mapping "<work-id>:<dotted-section>" keys to
// text; every well-formed key becomes one segment, in file order.
package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/pdiddy/canon-engine/internal/variant"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// ErrUnsupportedFormat is returned for files that are neither XML nor JSON.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Entry is one key/value pair of a flat source, in file order.
type Entry struct {
	Key  string
	Text string
}

// SourceDocument is one parsed input file.
type SourceDocument struct {
	Path   string
	Format types.SourceFormat
	Source variant.Source

	// Root is the parsed tree of a markup source.
	Root *xmlquery.Node

	// Entries are the key/value pairs of a flat source.
	Entries []Entry
}

// Options controls segment extraction.
type Options struct {
	// Canonical enables canonical numbering for markup sources.
	Canonical bool
}

// Stats counts entries that did not become segments.
type Stats struct {
	// Malformed counts flat keys that do not match the segment key shape,
	// and values that are not strings.
	Malformed int

	// Empty counts paragraphs or values with no text.
	Empty int
}

// Load reads and parses the file at path.
func Load(path string) (*SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes data according to the extension of path. The path is also
// used to infer the textual layer.
func Parse(path string, data []byte) (*SourceDocument, error) {
	doc := &SourceDocument{
		Path:   path,
		Source: variant.Infer(path),
	}

	data, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("detecting encoding: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		doc.Format = types.FormatMarkup
		doc.Root, err = xmlquery.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}
	case ".json":
		doc.Format = types.FormatFlat
		doc.Entries, err = parseEntries(data)
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return doc, nil
}

// Segments extracts the document's RawSegments in document order.
func (d *SourceDocument) Segments(opts Options) ([]types.RawSegment, Stats) {
	if d.Format == types.FormatMarkup {
		return d.markupSegments(opts)
	}
	return d.flatSegments()
}

// parseEntries reads a top-level JSON object preserving key order. Values
// that are not strings are kept with an empty key so that they are counted
// as malformed during extraction.
func parseEntries(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("reading value of %q: %w", key, err)
		}
		text, ok := value.(string)
		if !ok {
			key = ""
		}
		entries = append(entries, Entry{Key: key, Text: text})
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, err
	}
	return entries, nil
}
