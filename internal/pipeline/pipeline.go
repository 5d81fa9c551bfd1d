// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one batch of source files through extraction,
// verse tracking and merging.
//
// Processing order is part of the contract: stanza and line numbers depend
// on the order in which files are added, and on segment order within each
// file. Callers that need reproducible numbers across runs should either
// add files in a fixed order or set Config.SortInputs.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/pdiddy/canon-engine/internal/extract"
	"github.com/pdiddy/canon-engine/internal/logging"
	"github.com/pdiddy/canon-engine/internal/merge"
	"github.com/pdiddy/canon-engine/internal/verse"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// Config controls a batch.
type Config struct {
	// Canonical enables canonical numbering for markup sources.
	Canonical bool

	// SortInputs sorts paths before processing so that stanza counters do
	// not depend on discovery order.
	SortInputs bool

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// ConfigFrom builds a Config from the index settings.
func ConfigFrom(cfg types.IndexConfig, logger *slog.Logger) Config {
	return Config{Canonical: cfg.Canonical, SortInputs: cfg.SortInputs, Logger: logger}
}

// FileError reports a source file that was excluded from the batch.
type FileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// BatchResult holds counts from one batch.
type BatchResult struct {
	Files         int
	Failed        int
	RawSegments   int
	MalformedKeys int
	EmptySegments int
	Works         int
	Segments      int

	// Errors lists the excluded files in processing order.
	Errors []*FileError
}

// Total returns the number of files processed.
func (r BatchResult) Total() int {
	return r.Files + r.Failed
}

// HasFailures reports whether any file was excluded.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Batch owns the per-work contexts and the merger for one run. It is not
// safe for concurrent use.
type Batch struct {
	cfg     Config
	log     *slog.Logger
	tracker *verse.Tracker
	merger  *merge.Merger
	result  BatchResult
}

// NewBatch returns an empty Batch.
func NewBatch(cfg Config) *Batch {
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Batch{
		cfg:     cfg,
		log:     log,
		tracker: verse.NewTracker(),
		merger:  merge.New(),
	}
}

// AddFile loads and processes one file. A file that cannot be decoded or
// parsed is recorded in the result and returned as a *FileError; the batch
// remains usable.
func (b *Batch) AddFile(path string) error {
	doc, err := extract.Load(path)
	if err != nil {
		reason := "parsing source"
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			reason = "unsupported format"
		}
		fe := &FileError{Path: path, Reason: reason, Err: err}
		b.result.Failed++
		b.result.Errors = append(b.result.Errors, fe)
		b.log.Warn("file excluded", "path", path, "reason", reason, "error", err)
		return fe
	}
	b.AddDocument(doc)
	return nil
}

// AddDocument extracts segments from doc and merges them in order.
func (b *Batch) AddDocument(doc *extract.SourceDocument) {
	segs, stats := doc.Segments(extract.Options{Canonical: b.cfg.Canonical})
	for _, seg := range segs {
		b.merger.Add(seg, b.tracker.Observe(seg))
	}

	b.result.Files++
	b.result.RawSegments += len(segs)
	b.result.MalformedKeys += stats.Malformed
	b.result.EmptySegments += stats.Empty

	if stats.Malformed > 0 {
		b.log.Warn("skipped malformed keys", "path", doc.Path, "count", stats.Malformed)
	}
	b.log.Debug("file processed",
		"path", doc.Path,
		"format", doc.Format,
		"layer", doc.Source.Layer,
		"segments", len(segs))
}

// Result returns the batch counts so far.
func (b *Batch) Result() BatchResult {
	r := b.result
	r.Errors = slices.Clone(b.result.Errors)
	r.Works = b.tracker.Len()
	r.Segments = b.merger.Len()
	return r
}

// Segments returns the finalized CanonicalSegments in first-seen order.
func (b *Batch) Segments() []types.CanonicalSegment {
	return b.merger.Finalize()
}

// Run processes paths in order (sorted first when cfg.SortInputs is set),
// writing one progress line per excluded file to w. Cancellation is checked
// between files.
func Run(ctx context.Context, paths []string, cfg Config, w io.Writer) ([]types.CanonicalSegment, BatchResult, error) {
	if cfg.SortInputs {
		paths = slices.Clone(paths)
		slices.Sort(paths)
	}

	b := NewBatch(cfg)
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, b.Result(), err
		}
		if err := b.AddFile(path); err != nil {
			fmt.Fprintf(w, "failed  %v\n", err)
		}
	}
	return b.Segments(), b.Result(), nil
}
