// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canon-engine/pkg/types"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"mn10:1.1", 22, "mn10:1.1"},
		{"Evaṁ me sutaṁ ekaṁ samayaṁ", 10, "Evaṁ me..."},
		{"abcdef", 6, "abcdef"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.n))
	}
}

func TestFormatSegments(t *testing.T) {
	segs := []types.CanonicalSegment{
		{
			SegmentID: "snp1.1:1.1", IsVerse: true,
			StanzaNo: types.IntPtr(1), LineNo: types.IntPtr(2),
			Variants: []types.Variant{{Text: "Yo uppatitaṁ vineti kodhaṁ,"}},
		},
		{SegmentID: "dn1_5.p.0001", CanonicalRef: types.StringPtr("DN 5"), Text: types.StringPtr("Evaṁ me sutaṁ.")},
	}

	var buf bytes.Buffer
	require.NoError(t, formatSegments(&buf, segs, false))
	out := buf.String()
	assert.Contains(t, out, "1.2")
	assert.Contains(t, out, "Yo uppatitaṁ")
	assert.Contains(t, out, "DN 5")
	assert.Contains(t, out, "2 results")

	buf.Reset()
	require.NoError(t, formatSegments(&buf, nil, true))
	assert.JSONEq(t, "[]", buf.String())

	buf.Reset()
	require.NoError(t, formatSegments(&buf, nil, false))
	assert.Contains(t, buf.String(), "No results found.")
}

func TestQueryOptsFromFlags(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "test"}
		addFilterFlags(cmd)
		return cmd
	}

	cmd := newCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--collection", "mn", "--work", "MN10", "--verse=false"}))
	opts := queryOptsFromFlags(cmd, []string{"satipatthana", "kaya"})

	assert.Equal(t, "satipatthana kaya", opts.Query)
	assert.Equal(t, "MN", opts.Collection)
	assert.Equal(t, "mn10", opts.WorkID)
	require.NotNil(t, opts.Verse)
	assert.False(t, *opts.Verse)

	cmd = newCmd()
	require.NoError(t, cmd.Flags().Parse(nil))
	assert.True(t, queryOptsFromFlags(cmd, nil).IsEmpty())
}
