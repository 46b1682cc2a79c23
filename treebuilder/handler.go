package treebuilder

import "github.com/gohubbub/hubbub/elementtype"

// Node is an opaque handle to an embedder-owned tree node. The treebuilder
// never dereferences it; it only ever passes it back to the Handler or
// stores it on its own bookkeeping structures.
type Node any

// QuirksMode is the document's quirks-mode classification, set from the
// doctype token per HTML5 §12.2.5.2.
type QuirksMode int

const (
	NoQuirks QuirksMode = iota
	LimitedQuirks
	FullQuirks
)

// ElementSpec is what the driver hands to create_element: the resolved
// namespace, the element type looked up via elementtype.Lookup, the literal
// tag name as written in the source (foreign-content tag-name-case fixups
// may differ from the canonical name), and its attributes.
type ElementSpec struct {
	Namespace string // "", "math", or "svg"
	Type      elementtype.Type
	Name      string
	Attrs     []Attribute
}

// Attribute is the treebuilder's view of a token attribute plus any
// namespace fixup applied by foreign-content processing (HTML5 §12.2.6.5.1
// "adjust foreign attributes").
type Attribute struct {
	Namespace string
	Name      string
	Value     string
}

// DoctypeSpec is what the driver hands to create_doctype.
type DoctypeSpec struct {
	Name     string
	PublicID string
	SystemID string
}

// Handler is the embedder-supplied tree-mutation vtable the driver calls
// into to build the actual DOM. Every operation returns an error. A
// non-nil error from most calls stops the driver: the current token is
// abandoned and no later token is dispatched (see Driver.Err). Errors from
// AddAttributes and ChangeEncoding, and from a few cleanup calls, are
// ignored.
type Handler interface {
	CreateComment(data string) (Node, error)
	CreateDoctype(d DoctypeSpec) (Node, error)
	CreateElement(e ElementSpec) (Node, error)
	CreateText(data string) (Node, error)

	RefNode(n Node) error
	UnrefNode(n Node) error

	AppendChild(parent, child Node) (Node, error)
	InsertBefore(parent, child, ref Node) (Node, error)
	RemoveChild(parent, child Node) (Node, error)
	CloneNode(n Node, deep bool) (Node, error)
	ReparentChildren(from, to Node) error
	GetParent(n Node, elementsOnly bool) (Node, error)
	HasChildren(n Node) (bool, error)

	FormAssociate(form, node Node) error
	AddAttributes(n Node, attrs []Attribute) error
	SetQuirksMode(mode QuirksMode) error
	ChangeEncoding(charset string) error
}
