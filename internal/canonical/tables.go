// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package canonical

// samyuttaNumbers maps GroupKey(heading) to the saṃyutta number. Some
// saṃyuttas appear under more than one name across editions.
var samyuttaNumbers = map[string]int{
	"devata":        1,
	"devaputta":     2,
	"kosala":        3,
	"mara":          4,
	"bhikkhuni":     5,
	"brahma":        6,
	"brahmana":      7,
	"vangisa":       8,
	"vana":          9,
	"yakkha":        10,
	"sakka":         11,
	"nidana":        12,
	"abhisamaya":    13,
	"dhatu":         14,
	"anamatagga":    15,
	"kassapa":       16,
	"labhasakkara":  17,
	"rahula":        18,
	"lakkhana":      19,
	"opamma":        20,
	"bhikkhu":       21,
	"khandha":       22,
	"radha":         23,
	"ditthi":        24,
	"okkanti":       25,
	"okkanta":       25,
	"uppada":        26,
	"kilesa":        27,
	"sariputta":     28,
	"naga":          29,
	"supanna":       30,
	"gandhabba":     31,
	"gandhabbakaya": 31,
	"valahaka":      32,
	"vacchagotta":   33,
	"samadhi":       34,
	"salayatana":    35,
	"vedana":        36,
	"matugama":      37,
	"jambukhadaka":  38,
	"samandaka":     39,
	"moggallana":    40,
	"citta":         41,
	"gamani":        42,
	"asankhata":     43,
	"abyakata":      44,
	"magga":         45,
	"bojjhanga":     46,
	"satipatthana":  47,
	"indriya":       48,
	"sammappadhana": 49,
	"bala":          50,
	"iddhipada":     51,
	"anuruddha":     52,
	"jhana":         53,
	"anapana":       54,
	"sotapatti":     55,
	"sacca":         56,
}

// nipataStems are matched as prefixes of GroupKey(heading), longest first
// so that "ekadasaka" is not taken for "eka".
var nipataStems = []struct {
	stem   string
	number int
}{
	{"ekadasaka", 11},
	{"catukka", 4},
	{"pancaka", 5},
	{"sattaka", 7},
	{"atthaka", 8},
	{"chakka", 6},
	{"navaka", 9},
	{"dasaka", 10},
	{"duka", 2},
	{"tika", 3},
	{"eka", 1},
}
