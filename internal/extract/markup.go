// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/pdiddy/canon-engine/internal/canonical"
	"github.com/pdiddy/canon-engine/internal/classify"
	"github.com/pdiddy/canon-engine/internal/hierarchy"
	"github.com/pdiddy/canon-engine/internal/workid"
	"github.com/pdiddy/canon-engine/pkg/types"
)

var (
	bannerParas  = xpath.MustCompile(`//p[@rend='nikaya']`)
	bookHeads    = xpath.MustCompile(`//head[@rend='book']`)
	bookParas    = xpath.MustCompile(`//p[@rend='book']`)
	leafParas    = xpath.MustCompile(`.//p`)
	leafTitle    = xpath.MustCompile(`.//p[@rend='title']`)
	leafSubhead  = xpath.MustCompile(`.//p[@rend='subhead']`)
	chapterHead  = xpath.MustCompile(`head[@rend='chapter']`)
	paranumMarks = xpath.MustCompile(`.//hi[@rend='paranum']`)
)

// titleRends are paragraph renderings that mark headings rather than body.
var titleRends = map[string]bool{
	"nikaya":  true,
	"book":    true,
	"chapter": true,
	"title":   true,
	"subhead": true,
}

const (
	stanzaOpenRend = "gatha1"
	verseRendStem  = "gatha"

	// leafSeqScale spaces leaves in the markup sequence so that a leaf may
	// hold up to a million paragraphs.
	leafSeqScale = 1_000_000

	// paraSeparators may follow a paragraph number before the text.
	paraSeparators = ".·•:"
)

// layerExts are the layer suffixes that precede ".xml" in markup filenames.
var layerExts = map[string]bool{".mul": true, ".att": true, ".tik": true}

// markupDoc holds values shared by every leaf of one document.
type markupDoc struct {
	banner string
	book   *string
	stem   string
}

func (d *SourceDocument) markupSegments(opts Options) ([]types.RawSegment, Stats) {
	var (
		segs  []types.RawSegment
		stats Stats
	)
	md := markupDoc{
		banner: joinText(xmlquery.QuerySelectorAll(d.Root, bannerParas)),
		stem:   fileStem(d.Path),
	}
	book := firstText(d.Root, bookHeads)
	if book == "" {
		book = firstText(d.Root, bookParas)
	}
	md.book = types.StringPtr(classify.BookCode(book))

	for li, leaf := range hierarchy.Leaves(d.Root) {
		base := d.leafTemplate(leaf, md, opts)
		leafID := hierarchy.ID(leaf)
		if leafID == "" {
			leafID = fmt.Sprintf("%s.div%d", md.stem, li+1)
		}

		for order, p := range xmlquery.QuerySelectorAll(leaf, leafParas) {
			paraNo, text := cleanParagraph(p)
			if text == "" {
				stats.Empty++
				continue
			}

			suffix := paraNo
			if suffix == "" {
				suffix = fmt.Sprintf("%04d", order+1)
			}
			rend := p.SelectAttr("rend")

			seg := base
			seg.Section = suffix
			seg.SegmentID = leafID + ".p." + suffix
			seg.Seq = markupSeq(li+1, order+1)
			seg.Order = order + 1
			seg.ParaNo = types.StringPtr(paraNo)
			seg.Text = text
			seg.Rend = types.StringPtr(rend)
			seg.Pages = pageBreaks(p)
			seg.IsTitle = titleRends[rend]
			seg.IsStanzaBoundary = rend == stanzaOpenRend
			seg.IsVerseLine = strings.HasPrefix(rend, verseRendStem)
			segs = append(segs, seg)
		}
	}
	return segs, stats
}

// leafTemplate classifies one leaf and fills the fields its paragraphs share.
func (d *SourceDocument) leafTemplate(leaf *xmlquery.Node, md markupDoc, opts Options) types.RawSegment {
	chain := hierarchy.Chain(leaf)
	ids := make([]string, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		if id := types.Deref(chain[i].ID); id != "" {
			ids = append(ids, id)
		}
	}

	seg := types.RawSegment{
		SourceFile: filepath.Base(d.Path),
		SourcePath: d.Path,
		Format:     types.FormatMarkup,
		Layer:      d.Source.Layer,
		Lang:       d.Source.Lang,
		Translator: d.Source.Translator,
		WorkID:     markupWorkID(ids, md.stem),
		Hierarchy:  chain,
		Book:       md.book,
	}
	seg.Scheme, seg.WorkNumber = workid.Split(seg.WorkID)

	class := classify.Classify(classify.Evidence{Banner: md.banner, IDs: ids, Filename: d.Path})
	seg.Basket = class.Basket
	seg.Collection = class.Collection

	seg.Title = types.StringPtr(firstText(leaf, leafTitle))
	if seg.Title == nil {
		seg.Title = hierarchy.Heading(leaf)
	}
	seg.Subhead = types.StringPtr(firstText(leaf, leafSubhead))
	seg.Chapter = chapterOf(leaf)

	if opts.Canonical && seg.Collection != nil {
		var own string
		if len(chain) > 0 {
			own = types.Deref(chain[len(chain)-1].Heading)
		}
		hint := canonical.Hint(types.Deref(seg.Subhead), own)
		if ref := canonical.Resolve(*seg.Collection, chain, hint); ref != nil {
			seg.CanonicalScheme = types.StringPtr(ref.Scheme)
			seg.CanonicalRef = types.StringPtr(ref.Ref)
			seg.SuttaID = types.StringPtr(strings.ToLower(strings.ReplaceAll(ref.Ref, " ", "")))
		}
	}
	if seg.SuttaID == nil {
		seg.SuttaID = classify.SuttaID(seg.WorkID)
	}
	if seg.SuttaID != nil {
		seg.SuttaNum = workid.LastNumber(*seg.SuttaID)
	}
	return seg
}

// markupWorkID picks the nearest division id that names a known work,
// falling back to a work id in the filename and then the file stem.
func markupWorkID(ids []string, stem string) string {
	for _, id := range ids {
		if _, ok := classify.FromIdentifier(id); ok {
			return strings.ToLower(id)
		}
	}
	if id := workid.FromFilename(stem); id != "" {
		return id
	}
	return stem
}

// fileStem strips the directory, the .xml extension and a layer suffix:
// "romn/s0101m.mul.xml" -> "s0101m".
func fileStem(path string) string {
	name := strings.ToLower(filepath.Base(path))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if ext := filepath.Ext(name); layerExts[ext] {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// chapterOf returns the nearest chapter-rendered heading on the path from
// leaf to the root.
func chapterOf(leaf *xmlquery.Node) *string {
	for n := leaf; n != nil && n.Type == xmlquery.ElementNode; n = n.Parent {
		if t := firstText(n, chapterHead); t != "" {
			return &t
		}
	}
	return nil
}

func firstText(n *xmlquery.Node, expr *xpath.Expr) string {
	for _, m := range xmlquery.QuerySelectorAll(n, expr) {
		if t := strings.TrimSpace(m.InnerText()); t != "" {
			return t
		}
	}
	return ""
}

func joinText(nodes []*xmlquery.Node) string {
	parts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if t := strings.TrimSpace(n.InnerText()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// markupSeq orders markup paragraphs by leaf, then by position in the leaf.
func markupSeq(leaf, order int) int64 {
	return int64(leaf)*leafSeqScale + int64(order)
}

// cleanParagraph returns the paragraph number (from the n attribute or the
// first paranum marker) and the paragraph text with one leading occurrence
// of that number removed.
func cleanParagraph(p *xmlquery.Node) (paraNo, text string) {
	paraNo = strings.TrimSpace(p.SelectAttr("n"))
	if paraNo == "" {
		paraNo = firstText(p, paranumMarks)
	}
	text = strings.TrimSpace(p.InnerText())
	if paraNo == "" {
		return "", text
	}
	return paraNo, stripParaNo(text, paraNo)
}

// stripParaNo removes a leading "N", "N." or "N :" style number from text.
// The number must be followed by whitespace, after the optional separator,
// so "323" does not eat the head of "3234 ...".
func stripParaNo(text, paraNo string) string {
	rest, ok := strings.CutPrefix(strings.TrimLeftFunc(text, unicode.IsSpace), paraNo)
	if !ok {
		return text
	}
	after := strings.TrimLeftFunc(rest, unicode.IsSpace)
	if r, size := utf8.DecodeRuneInString(after); size > 0 && strings.ContainsRune(paraSeparators, r) {
		if body, cut := trimSpaceLeft(after[size:]); cut {
			return body
		}
	}
	if body, cut := trimSpaceLeft(rest); cut {
		return body
	}
	return text
}

// trimSpaceLeft trims s and reports whether s began with whitespace.
func trimSpaceLeft(s string) (string, bool) {
	t := strings.TrimLeftFunc(s, unicode.IsSpace)
	return strings.TrimSpace(t), len(t) < len(s)
}

// pageBreaks collects the pb siblings between p and the previous paragraph,
// in document order.
func pageBreaks(p *xmlquery.Node) []types.PageBreak {
	var pages []types.PageBreak
	for s := p.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type != xmlquery.ElementNode {
			continue
		}
		if s.Data == "p" {
			break
		}
		if s.Data == "pb" {
			pages = append(pages, types.PageBreak{
				Edition: types.StringPtr(s.SelectAttr("ed")),
				Number:  types.StringPtr(s.SelectAttr("n")),
			})
		}
	}
	for i, j := 0, len(pages)-1; i < j; i, j = i+1, j-1 {
		pages[i], pages[j] = pages[j], pages[i]
	}
	return pages
}
