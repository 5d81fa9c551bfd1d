// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"regexp"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	// declEncoding matches the encoding pseudo-attribute of an XML declaration.
	declEncoding = regexp.MustCompile(`^(\s*<\?xml[^>]*?\bencoding\s*=\s*["'])[^"']*(["'])`)
)

// Decode returns data as UTF-8. A byte-order mark selects UTF-8 or UTF-16;
// without one, UTF-16 is recognized from the NUL byte pattern of its first
// characters. Transcoded XML has its declaration rewritten to UTF-8. Input
// that is neither is returned unchanged so that a declared legacy charset
// can still be honoured by the XML parser.
func Decode(data []byte) ([]byte, error) {
	var enc encoding.Encoding
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	default:
		enc = sniffUTF16(data)
	}
	if enc == nil {
		return data, nil
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("transcoding UTF-16: %w", err)
	}
	return declEncoding.ReplaceAll(out, []byte("${1}UTF-8${2}")), nil
}

// sniffUTF16 recognizes BOM-less UTF-16 whose first two characters are
// ASCII, as in "<?" or "{\n".
func sniffUTF16(data []byte) encoding.Encoding {
	if len(data) < 4 {
		return nil
	}
	switch {
	case data[0] == 0 && data[1] != 0 && data[2] == 0 && data[3] != 0:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case data[0] != 0 && data[1] == 0 && data[2] != 0 && data[3] == 0:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	}
	return nil
}
