// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the canon-engine pipeline.
//
// Source files are turned into RawSegments, which the merge stage folds into
// one CanonicalSegment per segment identifier. CanonicalSegment is the record
// shape handed to every sink; its nullable fields are pointers so that the
// serialized shape is stable (absent values encode as null).
package types

// Layer identifies which textual layer a source file carries.
type Layer string

const (
	LayerRoot        Layer = "root"
	LayerTranslation Layer = "translation"
	LayerAtthakatha  Layer = "atthakatha"
	LayerTika        Layer = "tika"
	LayerUnknown     Layer = "unknown"
)

// IsTranslation reports whether text from this layer is preferred for the
// denormalized primary fields of a CanonicalSegment.
func (l Layer) IsTranslation() bool {
	return l == LayerTranslation
}

// Basket is the top-level category of canonical text.
type Basket string

const (
	BasketSutta          Basket = "sutta"
	BasketVinaya         Basket = "vinaya"
	BasketAbhidhamma     Basket = "abhidhamma"
	BasketExtracanonical Basket = "extracanonical"
)

// SourceFormat distinguishes the two supported input shapes.
type SourceFormat string

const (
	FormatMarkup SourceFormat = "markup"
	FormatFlat   SourceFormat = "flat"
)

// HierarchyNode is one division on the path from the document root to a
// leaf division.
type HierarchyNode struct {
	Type    *string `json:"type" yaml:"type"`
	ID      *string `json:"id" yaml:"id"`
	Heading *string `json:"head" yaml:"head"`
}

// PageBreak is an edition page marker that precedes a paragraph.
type PageBreak struct {
	Edition *string `json:"ed" yaml:"ed"`
	Number  *string `json:"n" yaml:"n"`
}

// TitleEntry is one title slot ("0.x" section) seen for a work.
type TitleEntry struct {
	Section string `json:"section" yaml:"section"`
	Text    string `json:"text" yaml:"text"`
}

// Variant is one version of a segment's text from one source file.
type Variant struct {
	Layer      Layer   `json:"layer" yaml:"layer"`
	Lang       *string `json:"lang" yaml:"lang"`
	Translator *string `json:"translator" yaml:"translator"`
	Text       string  `json:"text" yaml:"text"`
	SourceFile string  `json:"source_file" yaml:"source_file"`
}

// RawSegment is one extracted unit of text before merge. It is produced
// fresh per file and not mutated after the verse stage has positioned it.
type RawSegment struct {
	SourceFile string
	SourcePath string
	Format     SourceFormat

	Layer      Layer
	Lang       *string
	Translator *string

	WorkID     string
	Scheme     *string
	WorkNumber *string

	Section   string
	SegmentID string
	Seq       int64
	ParaNo    *string
	Order     int
	Text      string
	Rend      *string

	Hierarchy []HierarchyNode
	Pages     []PageBreak

	IsTitle          bool
	IsStanzaBoundary bool
	IsVerseLine      bool

	Basket          Basket
	Collection      *string
	CanonicalScheme *string
	CanonicalRef    *string
	SuttaID         *string
	SuttaNum        *int
	DivisionCode    *string
	DivisionNum     *int

	Book    *string
	Chapter *string
	Title   *string
	Subhead *string
}

// CanonicalSegment is the unit of output: one record per segment identifier.
type CanonicalSegment struct {
	SegmentID string `json:"segment_id" yaml:"segment_id"`
	Section   string `json:"segment_num" yaml:"segment_num"`
	Seq       int64  `json:"seq" yaml:"seq"`
	IsTitle   bool   `json:"is_title" yaml:"is_title"`

	Basket     Basket  `json:"basket" yaml:"basket"`
	Collection *string `json:"collection" yaml:"collection"`

	WorkID   string  `json:"work_id" yaml:"work_id"`
	Sutta    *string `json:"sutta" yaml:"sutta"`
	SuttaNum *int    `json:"sutta_num" yaml:"sutta_num"`
	Vagga    *string `json:"vagga" yaml:"vagga"`

	DivisionCode *string `json:"division_code" yaml:"division_code"`
	DivisionNum  *int    `json:"division_num" yaml:"division_num"`

	CanonicalScheme *string `json:"canonical_scheme" yaml:"canonical_scheme"`
	CanonicalRef    *string `json:"canonical_ref" yaml:"canonical_ref"`

	Hierarchy []HierarchyNode `json:"hierarchy" yaml:"hierarchy"`
	Titles    []TitleEntry    `json:"titles" yaml:"titles"`

	Book         *string     `json:"book" yaml:"book"`
	Chapter      *string     `json:"chapter" yaml:"chapter"`
	Title        *string     `json:"title" yaml:"title"`
	Subhead      *string     `json:"subhead" yaml:"subhead"`
	ParaNo       *string     `json:"para_no" yaml:"para_no"`
	EditionPages []PageBreak `json:"edition_pages" yaml:"edition_pages"`

	IsVerse  bool `json:"is_gatha" yaml:"is_gatha"`
	StanzaNo *int `json:"gatha_no" yaml:"gatha_no"`
	LineNo   *int `json:"gatha_line" yaml:"gatha_line"`

	Lang       *string `json:"lang" yaml:"lang"`
	Translator *string `json:"translator" yaml:"translator"`
	Text       *string `json:"text" yaml:"text"`

	Variants []Variant `json:"variants" yaml:"variants"`
}

// UpsertSummary holds counts from delivering records to a sink.
type UpsertSummary struct {
	// RunID identifies the ingest run when the sink records one.
	RunID string

	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of records processed.
func (s UpsertSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// HasFailures reports whether any record failed delivery.
func (s UpsertSummary) HasFailures() bool {
	return s.Failed > 0
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
