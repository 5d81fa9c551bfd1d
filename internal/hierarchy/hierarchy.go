// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hierarchy walks the nested division structure of a markup
// document. It finds leaf divisions (the deepest divisions that carry
// paragraphs) and builds the root-to-leaf chain of division nodes used for
// classification and canonical numbering.
package hierarchy

import (
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/pdiddy/canon-engine/pkg/types"
)

const (
	divElement  = "div"
	headElement = "head"
)

var (
	textDivs      = xpath.MustCompile("//div[.//p]")
	textChildDivs = xpath.MustCompile("div[.//p]")
)

// headingRends is the preference order for a division's own headings.
// A head with any other (or no) rend is used after these.
var headingRends = []string{"title", "chapter", "book"}

// Leaves returns the leaf divisions under root in document order. A leaf
// contains at least one paragraph and has no child division that
// (transitively) contains a paragraph.
func Leaves(root *xmlquery.Node) []*xmlquery.Node {
	var leaves []*xmlquery.Node
	for _, d := range xmlquery.QuerySelectorAll(root, textDivs) {
		if xmlquery.QuerySelector(d, textChildDivs) == nil {
			leaves = append(leaves, d)
		}
	}
	return leaves
}

// Chain returns the division path from the outermost division down to leaf.
// The walk stops at the first ancestor that is not a division.
func Chain(leaf *xmlquery.Node) []types.HierarchyNode {
	var chain []types.HierarchyNode
	for n := leaf; isDiv(n); n = n.Parent {
		chain = append(chain, types.HierarchyNode{
			Type:    types.StringPtr(n.SelectAttr("type")),
			ID:      types.StringPtr(ID(n)),
			Heading: Heading(n),
		})
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// ID returns a division's identifier: its id attribute, else its n attribute.
func ID(div *xmlquery.Node) string {
	if id := div.SelectAttr("id"); id != "" {
		return id
	}
	return div.SelectAttr("n")
}

// Heading resolves the heading for div from its own head elements, falling
// back to the nearest ancestor division that has one. It returns nil when
// no division on the path carries a heading.
func Heading(div *xmlquery.Node) *string {
	for n := div; isDiv(n); n = n.Parent {
		if h := ownHeading(n); h != "" {
			return &h
		}
	}
	return nil
}

// ownHeading looks only at direct head children of div.
func ownHeading(div *xmlquery.Node) string {
	var heads []*xmlquery.Node
	for c := div.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == headElement {
			heads = append(heads, c)
		}
	}
	for _, rend := range headingRends {
		for _, h := range heads {
			if h.SelectAttr("rend") != rend {
				continue
			}
			if t := strings.TrimSpace(h.InnerText()); t != "" {
				return t
			}
		}
	}
	for _, h := range heads {
		if t := strings.TrimSpace(h.InnerText()); t != "" {
			return t
		}
	}
	return ""
}

func isDiv(n *xmlquery.Node) bool {
	return n != nil && n.Type == xmlquery.ElementNode && n.Data == divElement
}
