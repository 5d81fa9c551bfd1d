// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify infers the basket and collection of a text.
//
// Classification is a cascade of strategies. Each strategy tries one fixed
// table against one kind of evidence (banner text, division or work id,
// filename) and either resolves or reports no match. The first strategy that
// resolves wins; when none does the text is extracanonical with no collection.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/pdiddy/canon-engine/internal/fold"
	"github.com/pdiddy/canon-engine/internal/workid"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// Collection codes for the discourse basket.
const (
	DN = "DN"
	MN = "MN"
	SN = "SN"
	AN = "AN"
	KN = "KN"
)

// Result is the outcome of classification. Collection is nil when only the
// basket is known.
type Result struct {
	Basket     types.Basket
	Collection *string
}

// Evidence is everything a caller knows about a text. Empty fields are
// skipped by the strategies that read them.
type Evidence struct {
	// Banner is free-form heading text such as "Dīghanikāyo".
	Banner string

	// IDs are division or work identifiers, nearest first.
	IDs []string

	// Filename is the source file path or base name.
	Filename string
}

// Strategy resolves a Result from Evidence or reports no match.
type Strategy struct {
	Name    string
	Resolve func(Evidence) (Result, bool)
}

// DefaultStrategies is the cascade used by Classify: banner, identifiers,
// then filename.
var DefaultStrategies = []Strategy{
	{Name: "banner", Resolve: func(e Evidence) (Result, bool) { return FromBanner(e.Banner) }},
	{Name: "identifier", Resolve: func(e Evidence) (Result, bool) { return fromIDs(e.IDs) }},
	{Name: "filename", Resolve: func(e Evidence) (Result, bool) { return FromIdentifier(filepath.Base(e.Filename)) }},
}

// Classify runs the default cascade.
func Classify(e Evidence) Result {
	return Run(DefaultStrategies, e)
}

// Run tries each strategy in order and stops at the first match.
func Run(strategies []Strategy, e Evidence) Result {
	for _, s := range strategies {
		if r, ok := s.Resolve(e); ok {
			return r
		}
	}
	return Result{Basket: types.BasketExtracanonical}
}

// bannerEntry maps a folded banner phrase to its classification.
type bannerEntry struct {
	phrase     string
	basket     types.Basket
	collection string
}

// bannerTable is matched by substring against the folded, lower-cased banner.
var bannerTable = []bannerEntry{
	{"dighanikay", types.BasketSutta, DN},
	{"majjhimanikay", types.BasketSutta, MN},
	{"samyuttanikay", types.BasketSutta, SN},
	{"anguttaranikay", types.BasketSutta, AN},
	{"khuddakanikay", types.BasketSutta, KN},
	{"vinayapitak", types.BasketVinaya, ""},
	{"abhidhammapitak", types.BasketAbhidhamma, ""},
}

// FromBanner matches banner text such as "Dīghanikāyo" or "Saṃyuttanikāye".
func FromBanner(banner string) (Result, bool) {
	key := fold.Key(banner)
	if key == "" {
		return Result{}, false
	}
	key = strings.ReplaceAll(key, " ", "")
	for _, b := range bannerTable {
		if strings.Contains(key, b.phrase) {
			return Result{Basket: b.basket, Collection: types.StringPtr(b.collection)}, true
		}
	}
	return Result{}, false
}

// collectionPrefixes map an identifier prefix to a discourse collection.
// Order matters: longer prefixes that share a head with shorter ones come
// first.
var collectionPrefixes = []struct {
	prefix     string
	collection string
}{
	{"dn", DN},
	{"mn", MN},
	{"sn", SN},
	{"an", AN},
}

// MinorWorkPrefixes are the works grouped under the Khuddaka collection.
var MinorWorkPrefixes = map[string]bool{
	"kp": true, "dhp": true, "ud": true, "iti": true, "snp": true,
	"vv": true, "pv": true, "thag": true, "thig": true, "ja": true,
	"ap": true, "bv": true, "cp": true, "mil": true, "ne": true,
	"pe": true, "ps": true, "mnd": true, "cnd": true,
}

// basketPrefixes carry a basket but no specific collection.
var basketPrefixes = []struct {
	prefix string
	basket types.Basket
}{
	{"pli-tv", types.BasketVinaya},
	{"vin", types.BasketVinaya},
	{"bd", types.BasketVinaya},
	{"abh", types.BasketAbhidhamma},
	{"dhs", types.BasketAbhidhamma},
	{"ds", types.BasketAbhidhamma},
	{"vibh", types.BasketAbhidhamma},
	{"vb", types.BasketAbhidhamma},
	{"dt", types.BasketAbhidhamma},
	{"pug", types.BasketAbhidhamma},
	{"pp", types.BasketAbhidhamma},
	{"kvu", types.BasketAbhidhamma},
	{"kv", types.BasketAbhidhamma},
	{"yam", types.BasketAbhidhamma},
	{"ya", types.BasketAbhidhamma},
	{"yp", types.BasketAbhidhamma},
	{"patthana", types.BasketAbhidhamma},
	{"patn", types.BasketAbhidhamma},
}

// FromIdentifier classifies a single work or division identifier by its
// alphabetic prefix ("mn3_4" -> MN, "thag1.1" -> KN, "pli-tv-kd10" -> vinaya).
func FromIdentifier(id string) (Result, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return Result{}, false
	}
	prefix := workid.Prefix(id)

	for _, c := range collectionPrefixes {
		if prefix == c.prefix {
			return Result{Basket: types.BasketSutta, Collection: types.StringPtr(c.collection)}, true
		}
	}
	if MinorWorkPrefixes[prefix] {
		return Result{Basket: types.BasketSutta, Collection: types.StringPtr(KN)}, true
	}
	for _, b := range basketPrefixes {
		if strings.HasPrefix(id, b.prefix) && prefixBoundary(id, len(b.prefix)) {
			return Result{Basket: b.basket}, true
		}
	}
	return Result{}, false
}

// prefixBoundary reports whether the prefix of length n ends the alphabetic
// run of id, so "vb" does not claim "vbx" style ids by accident.
func prefixBoundary(id string, n int) bool {
	if n >= len(id) {
		return true
	}
	c := id[n]
	return c < 'a' || c > 'z'
}

func fromIDs(ids []string) (Result, bool) {
	for _, id := range ids {
		if r, ok := FromIdentifier(id); ok {
			return r, true
		}
	}
	return Result{}, false
}

// SuttaID returns the lower-cased work id when it names a discourse
// ("mn10", "sn22.59", "thag1.1"). Vinaya and abhidhamma ids return nil.
func SuttaID(id string) *string {
	id = strings.ToLower(id)
	scheme, number := workid.Split(id)
	if scheme == nil || number == nil {
		return nil
	}
	r, ok := FromIdentifier(id)
	if !ok || r.Basket != types.BasketSutta {
		return nil
	}
	return &id
}
