// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"regexp"
	"strings"

	"github.com/pdiddy/canon-engine/internal/fold"
)

// bookAliases map folded book headings to short book codes. Patterns run
// against fold.Key output, so they are written in plain ASCII.
var bookAliases = []struct {
	pattern *regexp.Regexp
	code    string
}{
	{regexp.MustCompile(`\bmajjhima\b|majjhima-?nikay`), "MN"},
	{regexp.MustCompile(`\bsamyutta\b|samyutta-?nikay`), "SN"},
	{regexp.MustCompile(`\bdigha\b|digha-?nikay`), "DN"},
	{regexp.MustCompile(`\banguttara\b|anguttara-?nikay`), "AN"},
	{regexp.MustCompile(`\bvinaya\b`), "VIN"},
	{regexp.MustCompile(`\babhidhamma\b`), "ABH"},
	{regexp.MustCompile(`buddhavamsa`), "Bv"},
	{regexp.MustCompile(`cariyapitaka|cariya.*pitaka`), "Cp"},
	{regexp.MustCompile(`khuddakapatha`), "Khp"},
	{regexp.MustCompile(`dhammapada`), "Dhp"},
	{regexp.MustCompile(`udana`), "Ud"},
	{regexp.MustCompile(`itivuttaka`), "It"},
	{regexp.MustCompile(`suttanipata`), "Snp"},
	{regexp.MustCompile(`vimanavatthu`), "Vv"},
	{regexp.MustCompile(`petavatthu`), "Pv"},
	{regexp.MustCompile(`theragatha`), "Thag"},
	{regexp.MustCompile(`therigatha`), "Thig"},
}

// BookCode normalizes a book heading such as "Dhammapadapāḷi" to a short
// code. Unrecognized headings are returned trimmed; empty input returns "".
func BookCode(heading string) string {
	raw := strings.TrimSpace(heading)
	if raw == "" {
		return ""
	}
	key := fold.Key(raw)
	for _, a := range bookAliases {
		if a.pattern.MatchString(key) {
			return a.code
		}
	}
	return raw
}
