// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package canonical computes cross-edition references such as "DN 5" or
// "SN 22.59" from a division chain and a local numeric hint.
//
// Each collection has its own arithmetic, registered in a strategy table.
// A strategy that cannot find every value it needs reports no match; the
// resolver never guesses a default.
package canonical

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/canon-engine/internal/classify"
	"github.com/pdiddy/canon-engine/internal/fold"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// Reference is a resolved canonical reference.
type Reference struct {
	Scheme string
	Ref    string
}

// Strategy computes the number part of a reference ("5", "22.59") from the
// chain and a positive hint.
type Strategy func(chain []types.HierarchyNode, hint int) (string, bool)

// Strategies maps collection codes to their numbering strategy.
var Strategies = map[string]Strategy{
	classify.DN: dnNumber,
	classify.MN: mnNumber,
	classify.SN: snNumber,
	classify.AN: anNumber,
}

// Resolve returns the canonical reference for a leaf in collection, or nil
// when the collection has no strategy or any input is missing.
func Resolve(collection string, chain []types.HierarchyNode, hint *int) *Reference {
	strategy, ok := Strategies[collection]
	if !ok || hint == nil || *hint < 1 {
		return nil
	}
	n, ok := strategy(chain, *hint)
	if !ok {
		return nil
	}
	return &Reference{Scheme: collection, Ref: collection + " " + n}
}

var leadingInt = regexp.MustCompile(`^\s*(\d+)`)

// Hint returns the leading integer of the first candidate that has one,
// e.g. "5. Kūṭadantasuttaṃ" -> 5.
func Hint(candidates ...string) *int {
	for _, c := range candidates {
		m := leadingInt.FindStringSubmatch(fold.ASCII(c))
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return &n
	}
	return nil
}

func nodeID(n types.HierarchyNode) string {
	return strings.ToLower(types.Deref(n.ID))
}

// DN is divided into three parts of fixed size.
var (
	dnPartSizes   = []int{13, 10, 11}
	dnPartPattern = regexp.MustCompile(`^dn([123])$`)
)

func dnNumber(chain []types.HierarchyNode, hint int) (string, bool) {
	for _, n := range chain {
		m := dnPartPattern.FindStringSubmatch(nodeID(n))
		if m == nil {
			continue
		}
		part, _ := strconv.Atoi(m[1])
		if hint > dnPartSizes[part-1] {
			return "", false
		}
		offset := 0
		for _, size := range dnPartSizes[:part-1] {
			offset += size
		}
		return strconv.Itoa(offset + hint), true
	}
	return "", false
}

// MN books hold five chapters of ten discourses each.
const (
	mnBookSize    = 50
	mnChapterSize = 10
)

var (
	mnBookPattern    = regexp.MustCompile(`^mn([123])$`)
	mnChapterPattern = regexp.MustCompile(`^mn(\d+)_(\d+)$`)
)

func mnNumber(chain []types.HierarchyNode, hint int) (string, bool) {
	var book, chapter int
	for _, n := range chain {
		id := nodeID(n)
		if m := mnBookPattern.FindStringSubmatch(id); m != nil {
			book, _ = strconv.Atoi(m[1])
		}
		if m := mnChapterPattern.FindStringSubmatch(id); m != nil {
			book, _ = strconv.Atoi(m[1])
			chapter, _ = strconv.Atoi(m[2])
		}
	}
	if book < 1 || chapter < 1 {
		return "", false
	}
	return strconv.Itoa((book-1)*mnBookSize + (chapter-1)*mnChapterSize + hint), true
}

const snMarker = "samyutta"

func snNumber(chain []types.HierarchyNode, hint int) (string, bool) {
	for _, n := range chain {
		heading := types.Deref(n.Heading)
		if !strings.Contains(strings.ToLower(types.Deref(n.Type)), snMarker) &&
			!strings.Contains(fold.Key(heading), snMarker) {
			continue
		}
		if no, ok := samyuttaNumbers[GroupKey(heading)]; ok {
			return fmt.Sprintf("%d.%d", no, hint), true
		}
	}
	return "", false
}

var anIDPattern = regexp.MustCompile(`^an(\d+)$`)

func anNumber(chain []types.HierarchyNode, hint int) (string, bool) {
	for _, n := range chain {
		if m := anIDPattern.FindStringSubmatch(nodeID(n)); m != nil {
			nip, _ := strconv.Atoi(m[1])
			return fmt.Sprintf("%d.%d", nip, hint), true
		}
	}
	for _, n := range chain {
		key := GroupKey(types.Deref(n.Heading))
		if key == "" {
			continue
		}
		for _, s := range nipataStems {
			if strings.HasPrefix(key, s.stem) {
				return fmt.Sprintf("%d.%d", s.number, hint), true
			}
		}
	}
	return "", false
}

var groupStopwords = regexp.MustCompile(`samyuttam?|nipatam?`)

// GroupKey normalizes a group heading for table lookup: folded, lower-case,
// digits and punctuation removed, and the words "saṃyutta" and "nipāta"
// stripped. "1. Devatāsaṃyuttaṃ" -> "devata".
func GroupKey(heading string) string {
	return groupStopwords.ReplaceAllString(fold.Letters(heading), "")
}
