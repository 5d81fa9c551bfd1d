// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func encodeUTF16(t *testing.T, s string, endian unicode.Endianness, bom unicode.BOMPolicy) []byte {
	t.Helper()
	out, err := unicode.UTF16(endian, bom).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return out
}

func TestDecode(t *testing.T) {
	const xmlDoc = `<?xml version="1.0" encoding="UTF-16"?><p>Dīghanikāyo</p>`
	const want = `<?xml version="1.0" encoding="UTF-8"?><p>Dīghanikāyo</p>`

	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"plain UTF-8", []byte(`<p>Dīgha</p>`), `<p>Dīgha</p>`},
		{"UTF-8 BOM", append([]byte{0xEF, 0xBB, 0xBF}, []byte(`{"a":"b"}`)...), `{"a":"b"}`},
		{"UTF-16LE BOM", encodeUTF16(t, xmlDoc, unicode.LittleEndian, unicode.UseBOM), want},
		{"UTF-16BE BOM", encodeUTF16(t, xmlDoc, unicode.BigEndian, unicode.UseBOM), want},
		{"UTF-16LE no BOM", encodeUTF16(t, xmlDoc, unicode.LittleEndian, unicode.IgnoreBOM), want},
		{"UTF-16BE no BOM", encodeUTF16(t, xmlDoc, unicode.BigEndian, unicode.IgnoreBOM), want},
		{"legacy charset untouched", []byte(`<?xml version="1.0" encoding="ISO-8859-1"?><p/>`), `<?xml version="1.0" encoding="ISO-8859-1"?><p/>`},
		{"short input", []byte("ab"), "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}
