// Package simpledom is a minimal, reference treebuilder.Handler
// implementation used by tests and the example command. It is not part of
// the public API: embedders are expected to wire the treebuilder.Handler
// interface onto their own DOM, but something has to exercise that
// interface end to end.
//
// Its Node type uses first-child/next-sibling linkage, the same layout
// golang.org/x/net/html uses for its own node type.
package simpledom

import "github.com/gohubbub/hubbub/elementtype"

// NodeType distinguishes the kinds of node simpledom creates.
type NodeType int

const (
	DocumentNode NodeType = iota
	DoctypeNode
	ElementNode
	TextNode
	CommentNode
)

// Attribute is a resolved (namespace, name, value) triple.
type Attribute struct {
	Namespace string
	Name      string
	Value     string
}

// Node is a concrete tree node using first-child/next-sibling linkage.
type Node struct {
	Type NodeType

	Namespace string
	ElemType  elementtype.Type
	Data      string // tag name for ElementNode/DoctypeNode, text for Text/Comment
	Attr      []Attribute

	PublicID, SystemID string

	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node

	// refs mirrors the ref-count the treebuilder.Handler contract requires
	// via RefNode/UnrefNode; simpledom does not actually free anything on
	// UnrefNode reaching zero since Go is garbage collected, but it tracks
	// the count so tests can assert ref/unref balance.
	refs int
}

// appendChild appends n as parent's last child. n must already be
// detached; appendChild panics otherwise.
func (parent *Node) appendChild(n *Node) {
	if n.Parent != nil || n.PrevSibling != nil || n.NextSibling != nil {
		panic("simpledom: appendChild called for an attached node")
	}
	last := parent.LastChild
	if last != nil {
		last.NextSibling = n
	} else {
		parent.FirstChild = n
	}
	parent.LastChild = n
	n.Parent = parent
	n.PrevSibling = last
}

// insertBefore inserts n as a child of parent immediately before ref. If
// ref is nil it behaves as appendChild.
func (parent *Node) insertBefore(n, ref *Node) {
	if ref == nil {
		parent.appendChild(n)
		return
	}
	if ref.Parent != parent {
		panic("simpledom: insertBefore with a ref that is not parent's child")
	}
	prev := ref.PrevSibling
	n.Parent = parent
	n.PrevSibling = prev
	n.NextSibling = ref
	ref.PrevSibling = n
	if prev != nil {
		prev.NextSibling = n
	} else {
		parent.FirstChild = n
	}
}

// removeChild detaches n from parent.
func (parent *Node) removeChild(n *Node) {
	if n.Parent != parent {
		panic("simpledom: removeChild with a node that is not parent's child")
	}
	if parent.FirstChild == n {
		parent.FirstChild = n.NextSibling
	}
	if n.NextSibling != nil {
		n.NextSibling.PrevSibling = n.PrevSibling
	}
	if parent.LastChild == n {
		parent.LastChild = n.PrevSibling
	}
	if n.PrevSibling != nil {
		n.PrevSibling.NextSibling = n.NextSibling
	}
	n.Parent, n.PrevSibling, n.NextSibling = nil, nil, nil
}

// clone returns a new node with the same type, data and attributes, with
// no parent, siblings, or children.
func (n *Node) clone() *Node {
	m := &Node{
		Type:      n.Type,
		Namespace: n.Namespace,
		ElemType:  n.ElemType,
		Data:      n.Data,
		Attr:      append([]Attribute{}, n.Attr...),
	}
	return m
}
