// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canon-engine/pkg/types"
)

func TestFromBanner(t *testing.T) {
	tests := []struct {
		banner     string
		basket     types.Basket
		collection string
		ok         bool
	}{
		{"Dīghanikāyo", types.BasketSutta, DN, true},
		{"Majjhimanikāye", types.BasketSutta, MN, true},
		{"Saṃyuttanikāye", types.BasketSutta, SN, true},
		{"Saṁyuttanikāye", types.BasketSutta, SN, true},
		{"Aṅguttaranikāye", types.BasketSutta, AN, true},
		{"Khuddakanikāye", types.BasketSutta, KN, true},
		{"Vinayapiṭake", types.BasketVinaya, "", true},
		{"Abhidhammapiṭake", types.BasketAbhidhamma, "", true},
		{"Dīgha nikāyo", types.BasketSutta, DN, true},
		{"Visuddhimagga", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.banner, func(t *testing.T) {
			r, ok := FromBanner(tt.banner)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.basket, r.Basket)
			assert.Equal(t, tt.collection, types.Deref(r.Collection))
		})
	}
}

func TestFromIdentifier(t *testing.T) {
	tests := []struct {
		id         string
		basket     types.Basket
		collection string
		ok         bool
	}{
		{"mn10", types.BasketSutta, MN, true},
		{"dn1", types.BasketSutta, DN, true},
		{"sn22.59", types.BasketSutta, SN, true},
		{"an4.10", types.BasketSutta, AN, true},
		{"mn3_4", types.BasketSutta, MN, true},
		{"thag1.1", types.BasketSutta, KN, true},
		{"DHP1", types.BasketSutta, KN, true},
		{"pli-tv-kd10", types.BasketVinaya, "", true},
		{"vin1", types.BasketVinaya, "", true},
		{"dhs1", types.BasketAbhidhamma, "", true},
		{"kvu2", types.BasketAbhidhamma, "", true},
		{"yam10", types.BasketAbhidhamma, "", true},
		{"yp3", types.BasketAbhidhamma, "", true},
		{"vism1", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, ok := FromIdentifier(tt.id)
			require.Equal(t, tt.ok, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.basket, r.Basket)
			assert.Equal(t, tt.collection, types.Deref(r.Collection))
		})
	}
}

func TestClassifyCascade(t *testing.T) {
	tests := []struct {
		name       string
		ev         Evidence
		basket     types.Basket
		collection string
	}{
		{
			name:       "banner wins over ids",
			ev:         Evidence{Banner: "Majjhimanikāye", IDs: []string{"dn1"}, Filename: "an1.json"},
			basket:     types.BasketSutta,
			collection: MN,
		},
		{
			name:       "first matching id",
			ev:         Evidence{IDs: []string{"", "x", "sn1", "mn1"}},
			basket:     types.BasketSutta,
			collection: SN,
		},
		{
			name:       "filename fallback",
			ev:         Evidence{IDs: []string{"vism"}, Filename: "/data/root/pli/ms/sutta/snp/snp1.1_root-pli-ms.json"},
			basket:     types.BasketSutta,
			collection: KN,
		},
		{
			name:   "extracanonical default",
			ev:     Evidence{Banner: "Visuddhimaggo", Filename: "e0101n.mul.xml"},
			basket: types.BasketExtracanonical,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.ev)
			assert.Equal(t, tt.basket, r.Basket)
			assert.Equal(t, tt.collection, types.Deref(r.Collection))
		})
	}
}

func TestRunCustomStrategies(t *testing.T) {
	called := []string{}
	strategies := []Strategy{
		{Name: "never", Resolve: func(Evidence) (Result, bool) {
			called = append(called, "never")
			return Result{}, false
		}},
		{Name: "always", Resolve: func(Evidence) (Result, bool) {
			called = append(called, "always")
			return Result{Basket: types.BasketVinaya}, true
		}},
		{Name: "unreached", Resolve: func(Evidence) (Result, bool) {
			called = append(called, "unreached")
			return Result{}, true
		}},
	}
	r := Run(strategies, Evidence{})
	assert.Equal(t, types.BasketVinaya, r.Basket)
	assert.Equal(t, []string{"never", "always"}, called)
}

func TestSuttaID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"mn10", "mn10"},
		{"SN22.59", "sn22.59"},
		{"thag1.1", "thag1.1"},
		{"pli-tv-kd10", ""},
		{"dhs1", ""},
		{"mn", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, types.Deref(SuttaID(tt.id)))
		})
	}
}

func TestBookCode(t *testing.T) {
	tests := []struct {
		heading string
		want    string
	}{
		{"Dhammapadapāḷi", "Dhp"},
		{"Theragāthāpāḷi", "Thag"},
		{"Therīgāthāpāḷi", "Thig"},
		{"Dīghanikāyo", "DN"},
		{"Saṃyutta", "SN"},
		{"Suttanipātapāḷi", "Snp"},
		{"  Milindapañhapāḷi ", "Milindapañhapāḷi"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			assert.Equal(t, tt.want, BookCode(tt.heading))
		})
	}
}
