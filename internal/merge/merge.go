// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge folds RawSegments from many files and layers into one
// CanonicalSegment per segment id.
//
// Fill policy: the primary lang, translator and text are taken only from
// translation-layer segments while merging; every other nullable field is
// filled from the first segment that has a value. Verse metadata and the
// title snapshot are refreshed on every merge. Finalize then falls back to
// the first variant with a value for any primary field still empty.
package merge

import (
	"strings"

	"github.com/pdiddy/canon-engine/internal/fold"
	"github.com/pdiddy/canon-engine/internal/verse"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// vaggaSlots are the title sections that may name the enclosing division.
var vaggaSlots = []string{"0.2", "0.3", "0.4"}

// vaggaMarkers are folded words that identify a division title.
var vaggaMarkers = []string{"vagga", "chapter", "nipata", "samyutta", "pannasa"}

// Merger accumulates CanonicalSegments keyed by segment id. It preserves the
// order in which ids were first seen. A Merger is not safe for concurrent
// use.
type Merger struct {
	segments map[string]*types.CanonicalSegment
	order    []string
}

// New returns an empty Merger.
func New() *Merger {
	return &Merger{segments: make(map[string]*types.CanonicalSegment)}
}

// Len returns the number of distinct segment ids.
func (m *Merger) Len() int {
	return len(m.order)
}

// Add merges raw, positioned at pos, into its CanonicalSegment.
func (m *Merger) Add(raw types.RawSegment, pos verse.Position) {
	doc, ok := m.segments[raw.SegmentID]
	if !ok {
		doc = seed(raw)
		m.segments[raw.SegmentID] = doc
		m.order = append(m.order, raw.SegmentID)
	} else {
		fill(doc, raw)
	}

	doc.IsVerse = pos.IsVerse
	doc.StanzaNo = pos.Stanza
	doc.LineNo = pos.Line
	doc.Titles = pos.Titles
	if doc.Vagga == nil {
		doc.Vagga = vaggaFromTitles(pos.Titles)
	}

	doc.Variants = append(doc.Variants, types.Variant{
		Layer:      raw.Layer,
		Lang:       raw.Lang,
		Translator: raw.Translator,
		Text:       raw.Text,
		SourceFile: raw.SourceFile,
	})
}

// Finalize returns the merged segments in first-seen order, with primary
// fields still empty filled from the first variant that has a value. The
// Merger is not modified, so Finalize may be called more than once.
func (m *Merger) Finalize() []types.CanonicalSegment {
	out := make([]types.CanonicalSegment, 0, len(m.order))
	for _, id := range m.order {
		doc := *m.segments[id]
		doc.Variants = append([]types.Variant(nil), doc.Variants...)
		for _, v := range doc.Variants {
			if doc.Translator == nil && v.Translator != nil {
				doc.Translator = v.Translator
			}
			if doc.Lang == nil && v.Lang != nil {
				doc.Lang = v.Lang
			}
			if doc.Text == nil && v.Text != "" {
				doc.Text = types.StringPtr(v.Text)
			}
		}
		out = append(out, doc)
	}
	return out
}

func seed(raw types.RawSegment) *types.CanonicalSegment {
	doc := &types.CanonicalSegment{
		SegmentID:       raw.SegmentID,
		Section:         raw.Section,
		Seq:             raw.Seq,
		IsTitle:         raw.IsTitle,
		Basket:          raw.Basket,
		Collection:      raw.Collection,
		WorkID:          raw.WorkID,
		Sutta:           raw.SuttaID,
		SuttaNum:        raw.SuttaNum,
		DivisionCode:    raw.DivisionCode,
		DivisionNum:     raw.DivisionNum,
		CanonicalScheme: raw.CanonicalScheme,
		CanonicalRef:    raw.CanonicalRef,
		Hierarchy:       raw.Hierarchy,
		Book:            raw.Book,
		Chapter:         raw.Chapter,
		Title:           raw.Title,
		Subhead:         raw.Subhead,
		ParaNo:          raw.ParaNo,
		EditionPages:    raw.Pages,
	}
	fillPrimary(doc, raw)
	return doc
}

func fillPrimary(doc *types.CanonicalSegment, raw types.RawSegment) {
	if !raw.Layer.IsTranslation() {
		return
	}
	if doc.Translator == nil {
		doc.Translator = raw.Translator
	}
	if doc.Lang == nil {
		doc.Lang = raw.Lang
	}
	if doc.Text == nil {
		doc.Text = types.StringPtr(raw.Text)
	}
}

func fill(doc *types.CanonicalSegment, raw types.RawSegment) {
	fillPrimary(doc, raw)

	if doc.Basket == "" || doc.Basket == types.BasketExtracanonical {
		if raw.Basket != "" {
			doc.Basket = raw.Basket
		}
	}
	fillNil(&doc.Collection, raw.Collection)
	fillNil(&doc.Sutta, raw.SuttaID)
	fillNil(&doc.SuttaNum, raw.SuttaNum)
	fillNil(&doc.DivisionCode, raw.DivisionCode)
	fillNil(&doc.DivisionNum, raw.DivisionNum)
	fillNil(&doc.CanonicalScheme, raw.CanonicalScheme)
	fillNil(&doc.CanonicalRef, raw.CanonicalRef)
	fillNil(&doc.Book, raw.Book)
	fillNil(&doc.Chapter, raw.Chapter)
	fillNil(&doc.Title, raw.Title)
	fillNil(&doc.Subhead, raw.Subhead)
	fillNil(&doc.ParaNo, raw.ParaNo)
	if len(doc.Hierarchy) == 0 {
		doc.Hierarchy = raw.Hierarchy
	}
	if len(doc.EditionPages) == 0 {
		doc.EditionPages = raw.Pages
	}
}

func fillNil[T any](dst **T, src *T) {
	if *dst == nil {
		*dst = src
	}
}

// vaggaFromTitles returns the first of the division title slots whose text
// carries a division marker.
func vaggaFromTitles(titles []types.TitleEntry) *string {
	for _, slot := range vaggaSlots {
		for _, t := range titles {
			if t.Section != slot {
				continue
			}
			key := fold.Key(t.Text)
			for _, marker := range vaggaMarkers {
				if strings.Contains(key, marker) {
					return types.StringPtr(strings.TrimSpace(t.Text))
				}
			}
		}
	}
	return nil
}
