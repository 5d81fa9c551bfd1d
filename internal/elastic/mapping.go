// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package elastic

// indexMapping stores identifiers and facets as keywords and analyzes text
// fields with a lowercase, ASCII-folding analyzer. Variants are nested so a
// query can match the layer and text of the same variant.
var indexMapping = map[string]any{
	"settings": map[string]any{
		"analysis": map[string]any{
			"analyzer": map[string]any{
				"folded": map[string]any{
					"type":      "custom",
					"tokenizer": "standard",
					"filter":    []string{"lowercase", "asciifolding"},
				},
			},
		},
	},
	"mappings": map[string]any{
		"dynamic": false,
		"properties": map[string]any{
			"segment_id":       keyword,
			"segment_num":      keyword,
			"seq":              map[string]any{"type": "long"},
			"is_title":         boolean,
			"basket":           keyword,
			"collection":       keyword,
			"work_id":          keyword,
			"sutta":            keyword,
			"sutta_num":        integer,
			"vagga":            text,
			"division_code":    keyword,
			"division_num":     integer,
			"canonical_scheme": keyword,
			"canonical_ref":    keyword,
			"book":             text,
			"chapter":          text,
			"title":            text,
			"subhead":          text,
			"para_no":          keyword,
			"is_gatha":         boolean,
			"gatha_no":         integer,
			"gatha_line":       integer,
			"lang":             keyword,
			"translator":       keyword,
			"text":             text,
			"titles": map[string]any{
				"properties": map[string]any{
					"section": keyword,
					"text":    text,
				},
			},
			"variants": map[string]any{
				"type": "nested",
				"properties": map[string]any{
					"layer":       keyword,
					"lang":        keyword,
					"translator":  keyword,
					"text":        text,
					"source_file": keyword,
				},
			},
		},
	},
}

var (
	keyword = map[string]any{"type": "keyword"}
	boolean = map[string]any{"type": "boolean"}
	integer = map[string]any{"type": "integer"}
	text    = map[string]any{"type": "text", "analyzer": "folded"}
)
