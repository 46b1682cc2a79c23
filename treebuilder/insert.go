package treebuilder

import (
	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
)

// insertionPoint names the parent + "before" sibling a node should be
// inserted at, per HTML5 §12.2.6.1 "appropriate place for inserting a
// node", including the foster-parenting special case for table-context
// misplaced content.
type insertionPoint struct {
	parent Node
	before Node // nil means "append as last child"
}

// currentNode returns the node wrapped by the top of the stack of open
// elements, or nil if the stack is empty (only before the html element
// has been inserted).
func (d *Driver) currentNode() Node {
	if f := d.openElements.top(); f != nil {
		return f.node
	}
	return nil
}

func (d *Driver) currentFrame() *frame {
	return d.openElements.top()
}

// appropriatePlace implements "appropriate place for inserting a node"
// (HTML5 §12.2.6.1), targeting either the given override target or the
// current node, and foster-parenting into the table's parent when the
// target is a table/tbody/tfoot/thead/tr and foster parenting is enabled.
func (d *Driver) appropriatePlace(override Node, fosterParenting bool) (insertionPoint, error) {
	target := override
	var targetFrame *frame
	if target == nil {
		targetFrame = d.currentFrame()
		if targetFrame == nil {
			return insertionPoint{}, nil
		}
		target = targetFrame.node
	} else {
		if i := d.openElements.index(target); i >= 0 {
			targetFrame = &d.openElements[i]
		}
	}

	isTableContext := targetFrame != nil && targetFrame.namespace == "" &&
		(targetFrame.typ == elementtype.TableType || targetFrame.typ == elementtype.TbodyType ||
			targetFrame.typ == elementtype.TfootType || targetFrame.typ == elementtype.TheadType ||
			targetFrame.typ == elementtype.TrType)

	if (fosterParenting || d.fosterParenting) && isTableContext {
		return d.fosterParentTarget()
	}
	return insertionPoint{parent: target}, nil
}

// fosterParentTarget implements the foster-parenting branch of HTML5
// §12.2.6.1: insert before the table if it has a parent, otherwise inside
// the element before the table on the stack.
func (d *Driver) fosterParentTarget() (insertionPoint, error) {
	tableIdx := -1
	for i := len(d.openElements) - 1; i >= 0; i-- {
		if d.openElements[i].namespace == "" && d.openElements[i].typ == elementtype.TableType {
			tableIdx = i
			break
		}
	}
	if tableIdx < 0 {
		// No table on the stack: foster-parent into the bottommost element
		// (HTML5 says "the html element"), i.e. the stack's first frame.
		return insertionPoint{parent: d.openElements[0].node}, nil
	}
	tableNode := d.openElements[tableIdx].node
	parent, err := d.h.GetParent(tableNode, false)
	if err != nil {
		return insertionPoint{}, err
	}
	if parent != nil {
		return insertionPoint{parent: parent, before: tableNode}, nil
	}
	if tableIdx == 0 {
		return insertionPoint{parent: d.openElements[0].node}, nil
	}
	return insertionPoint{parent: d.openElements[tableIdx-1].node}, nil
}

func (d *Driver) insertAt(ip insertionPoint, n Node) (Node, error) {
	if ip.before != nil {
		return d.h.InsertBefore(ip.parent, n, ip.before)
	}
	return d.h.AppendChild(ip.parent, n)
}

// insertHTMLElement creates an element in the HTML namespace, inserts it at
// the appropriate place, pushes it onto the stack of open elements, and
// refs it (HTML5 §12.2.6.1 "insert an HTML element").
func (d *Driver) insertHTMLElement(name string, t elementtype.Type, attrs []Attribute) (Node, error) {
	return d.insertForeignElement("", t, name, attrs, false)
}

// insertForeignElement generalizes "insert a foreign element" (HTML5
// §12.2.6.1) across all three namespaces; fosterParenting enables foster
// parenting for this one insertion, as appropriatePlace's parameter of the
// same name.
func (d *Driver) insertForeignElement(ns string, t elementtype.Type, name string, attrs []Attribute, fosterParenting bool) (Node, error) {
	n, err := d.h.CreateElement(ElementSpec{Namespace: ns, Type: t, Name: name, Attrs: attrs})
	if err != nil {
		return nil, err
	}
	ip, err := d.appropriatePlace(nil, fosterParenting)
	if err != nil {
		return nil, err
	}
	if ip.parent != nil {
		if _, err := d.insertAt(ip, n); err != nil {
			return nil, err
		}
	}
	if err := d.h.RefNode(n); err != nil {
		return nil, err
	}
	d.openElements.push(frame{namespace: ns, typ: t, name: name, node: n})
	return n, nil
}

// insertComment creates a comment node and inserts it at the appropriate
// place relative to override (or the current node if override is nil),
// per HTML5 §12.2.6.3.
func (d *Driver) insertComment(data string, override Node) error {
	n, err := d.h.CreateComment(data)
	if err != nil {
		return err
	}
	ip, err := d.appropriatePlace(override, false)
	if err != nil {
		return err
	}
	if ip.parent == nil {
		return d.h.UnrefNode(n)
	}
	_, err = d.insertAt(ip, n)
	return err
}

// insertCharacter implements HTML5 §12.2.6.4 "insert a character", which
// permits (but does not require) coalescing into an adjacent text node; the
// driver leaves that choice to the embedder, inserting a new text node at
// the appropriate place (AppendChild, or InsertBefore when foster
// parenting) and trusting the handler to coalesce if it wants to.
func (d *Driver) insertCharacter(data string, fosterParenting bool) error {
	ip, err := d.appropriatePlace(nil, fosterParenting)
	if err != nil {
		return err
	}
	if ip.parent == nil {
		return nil
	}
	n, err := d.h.CreateText(data)
	if err != nil {
		return err
	}
	_, err = d.insertAt(ip, n)
	return err
}

// insertDoctype creates and appends the doctype node directly under the
// document, per HTML5 §12.2.6.2.
func (d *Driver) insertDoctype(spec DoctypeSpec) error {
	n, err := d.h.CreateDoctype(spec)
	if err != nil {
		return err
	}
	_, err = d.h.AppendChild(d.document, n)
	return err
}

// generateImpliedEndTags pops elements off the stack while their type is in
// the "implied end tags" set (HTML5 §12.2.4.1), optionally excluding one
// type (the element currently being closed).
func (d *Driver) generateImpliedEndTags(exclude elementtype.Type) error {
	for {
		f := d.openElements.top()
		if f == nil || f.namespace != "" || !impliedEndTag[f.typ] || f.typ == exclude {
			return nil
		}
		if err := d.openElements.pop(d.h); err != nil {
			return err
		}
	}
}

var impliedEndTag = map[elementtype.Type]bool{
	elementtype.DDType: true, elementtype.DTType: true, elementtype.LIType: true,
	elementtype.OptgroupType: true, elementtype.OptionType: true, elementtype.PType: true,
	elementtype.RbType: true, elementtype.RpType: true, elementtype.RtType: true, elementtype.RtcType: true,
}

// closeParagraphIfInButtonScope implements the common "if the stack has a p
// element in button scope, close it" step used by many in-body handlers.
func (d *Driver) closeParagraphIfInButtonScope() error {
	if !elementInButtonScope(d.openElements, elementtype.PType) {
		return nil
	}
	return d.closePElement()
}

// closePElement implements "close a p element" (HTML5 §12.2.6.4.9).
func (d *Driver) closePElement() error {
	if err := d.generateImpliedEndTags(elementtype.PType); err != nil {
		return err
	}
	if f := d.openElements.top(); f == nil || f.namespace != "" || f.typ != elementtype.PType {
		d.parseError(perr.StrayEndTag, "p")
	}
	return d.openElements.popUntil(d.h, elementtype.PType)
}

// parseError reports a tree-construction parse error. The driver does not
// track source position (the tokenizer already reported position for this
// token's own lexical errors); tree-construction errors carry only the tag
// and an optional context string.
func (d *Driver) parseError(tag perr.Tag, context string) {
	if d.errFn == nil {
		return
	}
	d.errFn(&perr.Error{Tag: tag, Context: context})
}
