package simpledom

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of the tree rooted at n (or the document
// if n is nil) to w, primarily for the example command and debugging tests.
func (tr *Tree) Dump(w io.Writer, n *Node) {
	if n == nil {
		n = tr.Document
	}
	dump(w, n, 0)
}

func dump(w io.Writer, n *Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n.Type {
	case DocumentNode:
		fmt.Fprintln(w, indent+"#document")
	case DoctypeNode:
		fmt.Fprintf(w, "%s<!DOCTYPE %s>\n", indent, n.Data)
	case CommentNode:
		fmt.Fprintf(w, "%s<!-- %s -->\n", indent, n.Data)
	case TextNode:
		fmt.Fprintf(w, "%s%q\n", indent, n.Data)
	case ElementNode:
		var b strings.Builder
		b.WriteString(n.Data)
		for _, a := range n.Attr {
			fmt.Fprintf(&b, " %s=%q", a.Name, a.Value)
		}
		fmt.Fprintf(w, "%s<%s>\n", indent, b.String())
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		dump(w, c, depth+1)
	}
}
