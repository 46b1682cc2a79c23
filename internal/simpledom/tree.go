package simpledom

import (
	"fmt"

	"github.com/gohubbub/hubbub/treebuilder"
)

// Tree is a reference treebuilder.Handler: it materializes the parse as an
// in-memory Node tree rooted at Document.
type Tree struct {
	Document *Node

	// QuirksMode records the last call to SetQuirksMode.
	QuirksMode treebuilder.QuirksMode

	// Encoding records the last call to ChangeEncoding, or "" if none.
	Encoding string

	forms map[*Node][]*Node
}

// New creates a Tree with a fresh document node, ready to be passed as
// both Config.Document and Config.Handler.
func New() *Tree {
	return &Tree{Document: &Node{Type: DocumentNode}, forms: map[*Node][]*Node{}}
}

func asNode(n treebuilder.Node) *Node {
	if n == nil {
		return nil
	}
	nn, ok := n.(*Node)
	if !ok {
		panic(fmt.Sprintf("simpledom: foreign node handle %T", n))
	}
	return nn
}

func (tr *Tree) CreateComment(data string) (treebuilder.Node, error) {
	return &Node{Type: CommentNode, Data: data}, nil
}

func (tr *Tree) CreateDoctype(d treebuilder.DoctypeSpec) (treebuilder.Node, error) {
	return &Node{Type: DoctypeNode, Data: d.Name, PublicID: d.PublicID, SystemID: d.SystemID}, nil
}

func (tr *Tree) CreateElement(e treebuilder.ElementSpec) (treebuilder.Node, error) {
	n := &Node{Type: ElementNode, Namespace: e.Namespace, ElemType: e.Type, Data: e.Name}
	for _, a := range e.Attrs {
		n.Attr = append(n.Attr, Attribute{Namespace: a.Namespace, Name: a.Name, Value: a.Value})
	}
	return n, nil
}

func (tr *Tree) CreateText(data string) (treebuilder.Node, error) {
	return &Node{Type: TextNode, Data: data}, nil
}

func (tr *Tree) RefNode(n treebuilder.Node) error {
	if nn := asNode(n); nn != nil {
		nn.refs++
	}
	return nil
}

func (tr *Tree) UnrefNode(n treebuilder.Node) error {
	nn := asNode(n)
	if nn == nil {
		return nil
	}
	nn.refs--
	if nn.refs < 0 {
		return fmt.Errorf("simpledom: UnrefNode underflow on %s", describe(nn))
	}
	return nil
}

func (tr *Tree) AppendChild(parent, child treebuilder.Node) (treebuilder.Node, error) {
	p, c := asNode(parent), asNode(child)
	if p == nil {
		p = tr.Document
	}
	// Appending adjacent text nodes merges into a single Text node, the
	// same coalescing x/net/html's parser performs for consecutive
	// character-token-driven inserts.
	if c.Type == TextNode {
		if last := p.LastChild; last != nil && last.Type == TextNode {
			last.Data += c.Data
			return last, nil
		}
	}
	p.appendChild(c)
	return c, nil
}

func (tr *Tree) InsertBefore(parent, child, ref treebuilder.Node) (treebuilder.Node, error) {
	p, c, r := asNode(parent), asNode(child), asNode(ref)
	if p == nil {
		p = tr.Document
	}
	if c.Type == TextNode && r != nil {
		if prev := r.PrevSibling; prev != nil && prev.Type == TextNode {
			prev.Data += c.Data
			return prev, nil
		}
	}
	p.insertBefore(c, r)
	return c, nil
}

func (tr *Tree) RemoveChild(parent, child treebuilder.Node) (treebuilder.Node, error) {
	p, c := asNode(parent), asNode(child)
	if p == nil {
		p = tr.Document
	}
	p.removeChild(c)
	return c, nil
}

func (tr *Tree) CloneNode(n treebuilder.Node, deep bool) (treebuilder.Node, error) {
	nn := asNode(n)
	clone := nn.clone()
	if deep {
		for c := nn.FirstChild; c != nil; c = c.NextSibling {
			cc, err := tr.CloneNode(c, true)
			if err != nil {
				return nil, err
			}
			clone.appendChild(asNode(cc))
		}
	}
	return clone, nil
}

func (tr *Tree) ReparentChildren(from, to treebuilder.Node) error {
	f, t := asNode(from), asNode(to)
	for {
		child := f.FirstChild
		if child == nil {
			break
		}
		f.removeChild(child)
		t.appendChild(child)
	}
	return nil
}

func (tr *Tree) GetParent(n treebuilder.Node, elementsOnly bool) (treebuilder.Node, error) {
	nn := asNode(n)
	p := nn.Parent
	if elementsOnly && p != nil && p.Type != ElementNode {
		return nil, nil
	}
	if p == nil {
		return nil, nil
	}
	return p, nil
}

func (tr *Tree) HasChildren(n treebuilder.Node) (bool, error) {
	nn := asNode(n)
	if nn == nil {
		return tr.Document.FirstChild != nil, nil
	}
	return nn.FirstChild != nil, nil
}

func (tr *Tree) FormAssociate(form, node treebuilder.Node) error {
	f, n := asNode(form), asNode(node)
	tr.forms[f] = append(tr.forms[f], n)
	return nil
}

func (tr *Tree) AddAttributes(n treebuilder.Node, attrs []treebuilder.Attribute) error {
	nn := asNode(n)
	existing := map[string]bool{}
	for _, a := range nn.Attr {
		existing[a.Name] = true
	}
	for _, a := range attrs {
		// Per HTML5 §12.2.6.4.7 (adoption agency's sibling rule about the
		// <html> root picking up attributes only once): a second start tag
		// for an already-open element adds only attributes not already
		// present, never overwriting.
		if existing[a.Name] {
			continue
		}
		nn.Attr = append(nn.Attr, Attribute{Namespace: a.Namespace, Name: a.Name, Value: a.Value})
		existing[a.Name] = true
	}
	return nil
}

func (tr *Tree) SetQuirksMode(mode treebuilder.QuirksMode) error {
	tr.QuirksMode = mode
	return nil
}

func (tr *Tree) ChangeEncoding(charset string) error {
	tr.Encoding = charset
	return nil
}

func describe(n *Node) string {
	switch n.Type {
	case ElementNode:
		return "<" + n.Data + ">"
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	case DoctypeNode:
		return "#doctype"
	default:
		return "#document"
	}
}
