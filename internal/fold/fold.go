// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fold reduces romanized Pāli text to plain ASCII for heuristic
// matching. Folded strings are only ever used as lookup keys; source text
// is stored unmodified.
package fold

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonDecomposing covers letters that NFD leaves intact.
var nonDecomposing = strings.NewReplacer(
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ł", "l", "Ł", "L",
	"ß", "ss",
	"æ", "ae", "Æ", "AE",
)

// ASCII strips combining marks after canonical decomposition, so "Dīghanikāyo"
// becomes "Dighanikayo" and both "ṃ" and "ṁ" become "m".
func ASCII(s string) string {
	if s == "" {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return nonDecomposing.Replace(s)
	}
	return nonDecomposing.Replace(out)
}

// Key returns the lower-cased ASCII fold of s with surrounding space trimmed.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(ASCII(s)))
}

// Letters returns Key(s) with every byte outside a-z removed.
func Letters(s string) string {
	k := Key(s)
	var b strings.Builder
	b.Grow(len(k))
	for i := 0; i < len(k); i++ {
		if c := k[i]; c >= 'a' && c <= 'z' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
