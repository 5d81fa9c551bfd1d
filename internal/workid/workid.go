// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workid resolves work identifiers and dotted section keys.
//
// A work identifier is a collection code followed by a numeric or dotted
// number ("mn10", "sn22.59", "pli-tv-kd10"). Flat sources key every segment
// as "<work-id>:<dotted-section>"; the work id embedded in the key is
// authoritative over the one parsed from the filename.
package workid

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/canon-engine/pkg/types"
)

var (
	// segmentKeyPattern matches "mn10:1.2", "sn22.59:3.1", "pli-tv-kd10:1.2.3".
	segmentKeyPattern = regexp.MustCompile(`^([a-z\-]+[\d.]+):([0-9][0-9a-z.\-]*)$`)

	filenamePattern = regexp.MustCompile(`([a-z\-]+\d[\d.]*)_?`)
	schemePattern   = regexp.MustCompile(`(?i)^([a-z\-]+?)([\d.]+)$`)
	prefixPattern   = regexp.MustCompile(`^[a-z]+`)
	divisionPattern = regexp.MustCompile(`^pli-tv-([a-z]+)(\d+)`)
	leadingDigits   = regexp.MustCompile(`^\d+`)
)

// ParseKey splits a flat segment key into its work id and dotted section.
// Keys that do not match the expected shape return ok=false.
func ParseKey(key string) (workID, section string, ok bool) {
	m := segmentKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// FromFilename extracts a work id from a source filename, e.g.
// "mn10_root-pli-ms.json" -> "mn10". It returns "" when none is found.
func FromFilename(path string) string {
	base := strings.ToLower(filepath.Base(path))
	m := filenamePattern.FindStringSubmatch(base)
	if m == nil {
		return ""
	}
	return strings.TrimRight(m[1], ".")
}

// Split separates a work id into an upper-case scheme and its number:
// "mn10" -> ("MN", "10"), "pli-tv-kd10" -> ("PLI-TV-KD", "10").
func Split(workID string) (scheme, number *string) {
	m := schemePattern.FindStringSubmatch(workID)
	if m == nil {
		return nil, nil
	}
	return types.StringPtr(strings.ToUpper(m[1])), types.StringPtr(m[2])
}

// Prefix returns the leading lower-case letters of id ("thag1.1" -> "thag").
func Prefix(id string) string {
	return prefixPattern.FindString(strings.ToLower(id))
}

// Division parses vinaya-style ids such as "pli-tv-kd10" into a division
// code and chapter number. Other ids return nils.
func Division(workID string) (code *string, num *int) {
	m := divisionPattern.FindStringSubmatch(strings.ToLower(workID))
	if m == nil {
		return nil, nil
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, nil
	}
	return types.StringPtr(strings.ToUpper(m[1])), types.IntPtr(n)
}

// LastNumber returns the final integer component of a dotted id
// ("sn22.59" -> 59, "mn10" -> 10).
func LastNumber(id string) *int {
	i := strings.LastIndexFunc(id, func(r rune) bool { return r < '0' || r > '9' })
	tail := id[i+1:]
	if tail == "" {
		return nil
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return nil
	}
	return &n
}

// IsTitleSection reports whether section is a heading slot ("0.x").
func IsTitleSection(section string) bool {
	return strings.HasPrefix(section, "0.")
}

// IsStanzaBoundary reports whether section opens a stanza: a non-title
// section whose last dotted component is "1".
func IsStanzaBoundary(section string) bool {
	if IsTitleSection(section) {
		return false
	}
	return section[strings.LastIndexByte(section, '.')+1:] == "1"
}

const (
	seqLevels    = 4
	seqComponent = 1000
	seqMax       = seqComponent - 1
)

// Seq maps a dotted section to a sortable integer. Each of the first four
// components contributes its leading integer, clamped to 0..999, packed as
// a·10⁹ + b·10⁶ + c·10³ + d. Components without leading digits count as 0,
// so "1.1-10" packs like "1.1".
func Seq(section string) int64 {
	parts := strings.Split(section, ".")
	var total int64
	for i := 0; i < seqLevels; i++ {
		total *= seqComponent
		if i < len(parts) {
			total += int64(component(parts[i]))
		}
	}
	return total
}

func component(s string) int {
	d := leadingDigits.FindString(s)
	if d == "" {
		return 0
	}
	if len(d) > 6 {
		return seqMax
	}
	n, _ := strconv.Atoi(d)
	return min(n, seqMax)
}

// CompareSections orders dotted sections by packed sequence, falling back to
// string order for keys that pack identically.
func CompareSections(a, b string) int {
	sa, sb := Seq(a), Seq(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	}
	return strings.Compare(a, b)
}
