// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"path/filepath"
	"strings"

	"github.com/pdiddy/canon-engine/internal/classify"
	"github.com/pdiddy/canon-engine/internal/workid"
	"github.com/pdiddy/canon-engine/pkg/types"
)

func (d *SourceDocument) flatSegments() ([]types.RawSegment, Stats) {
	var (
		segs  []types.RawSegment
		stats Stats

		// per-work template, rebuilt when the key's work id changes
		lastWork string
		lastSeg  types.RawSegment
	)

	for i, e := range d.Entries {
		workID, section, ok := workid.ParseKey(e.Key)
		if !ok {
			stats.Malformed++
			continue
		}
		if strings.TrimSpace(e.Text) == "" {
			stats.Empty++
			continue
		}

		if workID != lastWork {
			lastWork = workID
			lastSeg = d.flatWork(workID)
		}

		seg := lastSeg
		seg.Section = section
		seg.SegmentID = e.Key
		seg.Seq = workid.Seq(section)
		seg.Order = i + 1
		seg.Text = e.Text
		seg.IsTitle = workid.IsTitleSection(section)
		seg.IsStanzaBoundary = workid.IsStanzaBoundary(section)
		seg.IsVerseLine = !seg.IsTitle
		segs = append(segs, seg)
	}
	return segs, stats
}

// flatWork returns a RawSegment template carrying every field derived
// from the file and the work id.
func (d *SourceDocument) flatWork(workID string) types.RawSegment {
	seg := types.RawSegment{
		SourceFile: filepath.Base(d.Path),
		SourcePath: d.Path,
		Format:     types.FormatFlat,
		Layer:      d.Source.Layer,
		Lang:       d.Source.Lang,
		Translator: d.Source.Translator,
		WorkID:     workID,
	}
	seg.Scheme, seg.WorkNumber = workid.Split(workID)

	class := classify.Classify(classify.Evidence{IDs: []string{workID}, Filename: d.Path})
	seg.Basket = class.Basket
	seg.Collection = class.Collection

	seg.SuttaID = classify.SuttaID(workID)
	if seg.SuttaID != nil {
		seg.SuttaNum = workid.LastNumber(*seg.SuttaID)
	}
	seg.DivisionCode, seg.DivisionNum = workid.Division(workID)
	return seg
}
