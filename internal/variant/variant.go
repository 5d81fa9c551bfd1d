// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package variant infers which textual layer a source file carries from its
// location on disk.
//
// Flat sources follow the bilara-data layout:
//
//	root/pli/ms/sutta/mn/mn10_root-pli-ms.json
//	translation/en/sujato/sutta/mn/mn10_translation-en-sujato.json
//
// Markup sources carry the layer in the filename suffix (.mul.xml, .att.xml,
// .tik.xml).
package variant

import (
	"strings"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// rootLang is the language of origin-layer text.
const rootLang = "pli"

// Source describes the layer, language and translator of one file.
type Source struct {
	Layer      types.Layer
	Lang       *string
	Translator *string
}

var markupSuffixes = []struct {
	suffix string
	layer  types.Layer
}{
	{".mul.xml", types.LayerRoot},
	{".att.xml", types.LayerAtthakatha},
	{".tik.xml", types.LayerTika},
}

// Infer returns the Source for path. The directory marker nearest the file
// wins, and any marker wins over filename suffixes; a path matching neither
// yields LayerUnknown with no language.
func Infer(path string) Source {
	parts := strings.Split(strings.ReplaceAll(path, `\`, "/"), "/")
	last := len(parts) - 1

	for i := last - 1; i >= 0; i-- {
		switch parts[i] {
		case "root":
			return Source{Layer: types.LayerRoot, Lang: types.StringPtr(rootLang)}
		case "translation":
			src := Source{Layer: types.LayerTranslation}
			if i+1 < last {
				src.Lang = types.StringPtr(parts[i+1])
			}
			if i+2 < last {
				src.Translator = types.StringPtr(parts[i+2])
			}
			return src
		}
	}

	name := strings.ToLower(parts[last])
	for _, m := range markupSuffixes {
		if strings.HasSuffix(name, m.suffix) {
			return Source{Layer: m.layer, Lang: types.StringPtr(rootLang)}
		}
	}
	return Source{Layer: types.LayerUnknown}
}
