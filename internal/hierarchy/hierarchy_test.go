// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hierarchy

import (
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canon-engine/pkg/types"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<TEI.2><text><body>
  <p rend="nikaya">Dīghanikāyo</p>
  <div id="dn1" n="dn1" type="book">
    <head rend="book">Sīlakkhandhavaggapāḷi</head>
    <div id="dn1_1" n="dn1_1" type="sutta">
      <head rend="chapter">1. Brahmajālasuttaṃ</head>
      <p rend="bodytext" n="1">1. Evaṃ me sutaṃ.</p>
    </div>
    <div id="dn1_2" type="sutta">
      <head>2. Sāmaññaphalasuttaṃ</head>
      <head rend="title">Rājāmaccakathā</head>
      <div type="empty"><head>No text here</head></div>
      <p rend="bodytext">150. Tena samayena.</p>
    </div>
    <div n="dn1_3" type="sutta">
      <p rend="bodytext">Untitled.</p>
    </div>
  </div>
  <div id="outer">
    <p>Outer text.</p>
    <div id="inner"><p>Inner text.</p></div>
  </div>
</body></text></TEI.2>`

func parse(t *testing.T, doc string) *xmlquery.Node {
	t.Helper()
	root, err := xmlquery.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return root
}

func leafIDs(leaves []*xmlquery.Node) []string {
	ids := make([]string, len(leaves))
	for i, l := range leaves {
		ids[i] = ID(l)
	}
	return ids
}

func TestLeavesDocumentOrder(t *testing.T) {
	root := parse(t, sampleDoc)
	leaves := Leaves(root)
	// "outer" has a child division with text, so only "inner" is a leaf.
	assert.Equal(t, []string{"dn1_1", "dn1_2", "dn1_3", "inner"}, leafIDs(leaves))
}

func TestLeavesNoParagraphs(t *testing.T) {
	root := parse(t, `<body><div id="a"><head>x</head></div></body>`)
	assert.Empty(t, Leaves(root))
}

func TestChain(t *testing.T) {
	root := parse(t, sampleDoc)
	leaves := Leaves(root)
	require.Len(t, leaves, 4)

	chain := Chain(leaves[0])
	require.Len(t, chain, 2)
	assert.Equal(t, "book", types.Deref(chain[0].Type))
	assert.Equal(t, "dn1", types.Deref(chain[0].ID))
	assert.Equal(t, "Sīlakkhandhavaggapāḷi", types.Deref(chain[0].Heading))
	assert.Equal(t, "sutta", types.Deref(chain[1].Type))
	assert.Equal(t, "dn1_1", types.Deref(chain[1].ID))
	assert.Equal(t, "1. Brahmajālasuttaṃ", types.Deref(chain[1].Heading))

	// id falls back to n; heading falls back to the nearest ancestor.
	chain = Chain(leaves[2])
	require.Len(t, chain, 2)
	assert.Equal(t, "dn1_3", types.Deref(chain[1].ID))
	assert.Equal(t, "Sīlakkhandhavaggapāḷi", types.Deref(chain[1].Heading))

	chain = Chain(leaves[3])
	require.Len(t, chain, 2)
	assert.Equal(t, "outer", types.Deref(chain[0].ID))
	assert.Nil(t, chain[0].Type)
	assert.Nil(t, chain[1].Heading)
}

func TestHeadingPreference(t *testing.T) {
	root := parse(t, sampleDoc)
	leaves := Leaves(root)
	require.Len(t, leaves, 4)

	// A title-rendered head wins over an earlier plain head.
	assert.Equal(t, "Rājāmaccakathā", types.Deref(Heading(leaves[1])))
}

func TestHeadingRendOrder(t *testing.T) {
	root := parse(t, `<body><div id="x">
		<head rend="book">Book</head>
		<head rend="chapter">Chapter</head>
		<head rend="other">Other</head>
		<p>t</p>
	</div></body>`)
	leaves := Leaves(root)
	require.Len(t, leaves, 1)
	assert.Equal(t, "Chapter", types.Deref(Heading(leaves[0])))
}

func TestHeadingSkipsBlank(t *testing.T) {
	root := parse(t, `<body><div id="x"><head rend="title">  </head><head>Plain</head><p>t</p></div></body>`)
	leaves := Leaves(root)
	require.Len(t, leaves, 1)
	assert.Equal(t, "Plain", types.Deref(Heading(leaves[0])))
}
