// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verse tracks stanza and line positions per work.
//
// Positions depend on the order in which segments are observed: the caller
// must feed segments in document order, file by file, in a fixed file
// order. A Tracker is not safe for concurrent use.
package verse

import (
	"maps"
	"slices"

	"github.com/pdiddy/canon-engine/internal/workid"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// likelyVersePrefixes are work-id prefixes of collections written mostly in
// verse.
var likelyVersePrefixes = map[string]bool{
	"snp":  true,
	"thag": true,
	"thig": true,
	"vv":   true,
	"pv":   true,
	"dhp":  true,
}

// Position is the verse metadata assigned to one segment, together with the
// title snapshot of its work at the time it was observed.
type Position struct {
	IsVerse bool
	Stanza  *int
	Line    *int
	Titles  []types.TitleEntry
}

// WorkContext is the mutable per-work state. It is created on the first
// segment seen for a work id and lives for the whole batch.
type WorkContext struct {
	WorkID      string
	LikelyVerse bool

	// Titles maps title sections ("0.1", "0.2") to their latest text.
	Titles map[string]string

	// Stanza and Line are the running counters. Stanza is 0 until the first
	// boundary is seen.
	Stanza int
	Line   int

	// positioned remembers the position given to each segment id, so a
	// second layer of the same segment does not advance the counters.
	positioned map[string]Position
}

func newWorkContext(workID string) *WorkContext {
	return &WorkContext{
		WorkID:      workID,
		LikelyVerse: likelyVersePrefixes[workid.Prefix(workID)],
		Titles:      make(map[string]string),
		positioned:  make(map[string]Position),
	}
}

// TitleSnapshot returns the title slots sorted by dotted-section order.
func (c *WorkContext) TitleSnapshot() []types.TitleEntry {
	sections := slices.SortedFunc(maps.Keys(c.Titles), workid.CompareSections)
	out := make([]types.TitleEntry, len(sections))
	for i, s := range sections {
		out[i] = types.TitleEntry{Section: s, Text: c.Titles[s]}
	}
	return out
}

// Tracker owns the WorkContexts of one batch.
type Tracker struct {
	works map[string]*WorkContext
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{works: make(map[string]*WorkContext)}
}

// Context returns the WorkContext for workID, creating it if needed.
func (t *Tracker) Context(workID string) *WorkContext {
	c, ok := t.works[workID]
	if !ok {
		c = newWorkContext(workID)
		t.works[workID] = c
	}
	return c
}

// Len returns the number of works seen.
func (t *Tracker) Len() int {
	return len(t.works)
}

// Observe advances the work's state for seg and returns the segment's
// position.
//
// Title sections update the title map. A stanza boundary increments the
// stanza counter and resets the line to 1; any other verse line inside a
// stanza increments the line. A segment id already observed for the work
// keeps its first position; only the title snapshot is refreshed.
func (t *Tracker) Observe(seg types.RawSegment) Position {
	c := t.Context(seg.WorkID)

	if seg.IsTitle && workid.IsTitleSection(seg.Section) {
		c.Titles[seg.Section] = seg.Text
	}

	pos, seen := c.positioned[seg.SegmentID]
	if !seen {
		switch {
		case seg.IsStanzaBoundary:
			c.Stanza++
			c.Line = 1
		case seg.IsVerseLine && !seg.IsTitle && c.Stanza > 0:
			c.Line++
		}
		pos = Position{IsVerse: c.LikelyVerse || c.Stanza > 0}
		if c.Stanza > 0 {
			pos.Stanza = types.IntPtr(c.Stanza)
			pos.Line = types.IntPtr(c.Line)
		}
		c.positioned[seg.SegmentID] = pos
	}

	pos.Titles = c.TitleSnapshot()
	return pos
}
