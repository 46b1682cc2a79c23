package treebuilder

import (
	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/tokenizer"
)

// dispatch routes a single token through the "tree construction dispatcher"
// (HTML5 §12.2.6): foreign content when the adjusted current node is a
// foreign element outside a text-integration point, otherwise the current
// insertion mode. It returns (reprocess, err): reprocess asks process to
// call dispatch again with the same token (a mode handler "reprocesses the
// token" by returning true after changing mode).
func (d *Driver) dispatch(t tokenizer.Token) (bool, error) {
	if d.useForeignContentRules(t) {
		return d.inForeignContent(t)
	}
	switch d.mode {
	case modeInitial:
		return d.inInitial(t)
	case modeBeforeHTML:
		return d.inBeforeHTML(t)
	case modeBeforeHead:
		return d.inBeforeHead(t)
	case modeInHead:
		return d.inHead(t)
	case modeInHeadNoscript:
		return d.inHeadNoscript(t)
	case modeAfterHead:
		return d.inAfterHead(t)
	case modeInBody:
		return d.inBody(t)
	case modeText:
		return d.inText(t)
	case modeInTable:
		return d.inTable(t)
	case modeInTableText:
		return d.inTableText(t)
	case modeInCaption:
		return d.inCaption(t)
	case modeInColumnGroup:
		return d.inColumnGroup(t)
	case modeInTableBody:
		return d.inTableBody(t)
	case modeInRow:
		return d.inRow(t)
	case modeInCell:
		return d.inCell(t)
	case modeInSelect:
		return d.inSelect(t)
	case modeInSelectInTable:
		return d.inSelectInTable(t)
	case modeInTemplate:
		return d.inTemplate(t)
	case modeAfterBody:
		return d.inAfterBody(t)
	case modeInFrameset:
		return d.inFrameset(t)
	case modeAfterFrameset:
		return d.inAfterFrameset(t)
	case modeAfterAfterBody:
		return d.inAfterAfterBody(t)
	case modeAfterAfterFrameset:
		return d.inAfterAfterFrameset(t)
	}
	return false, nil
}

// useForeignContentRules implements the "adjusted current node" test from
// HTML5 §13.2.6: foreign content rules apply unless the stack is empty,
// the adjusted current node is an HTML element, it is a MathML text-
// integration point and the token is a start tag other than mglyph/
// malignmark (or a character token), it is an annotation-xml element and
// the token is a start tag "svg", it is an SVG HTML integration point
// (foreignObject/desc/title) and the token is a start tag or character
// token, or the token is EOF. A MathML annotation-xml element is not
// treated as an HTML integration point here, whatever its encoding
// attribute.
func (d *Driver) useForeignContentRules(t tokenizer.Token) bool {
	f := d.adjustedCurrentNodeFrame()
	if f == nil || f.namespace == "" {
		return false
	}
	if t.Kind == tokenizer.EOFToken {
		return false
	}
	if f.namespace == "math" {
		switch f.typ {
		case elementtype.MiType, elementtype.MoType, elementtype.MnType, elementtype.MsType, elementtype.MtextType:
			if t.Kind == tokenizer.CharacterToken {
				return false
			}
			if t.Kind == tokenizer.StartTagToken && t.Name != "mglyph" && t.Name != "malignmark" {
				return false
			}
		case elementtype.AnnotationXMLType:
			if t.Kind == tokenizer.StartTagToken && t.Name == "svg" {
				return false
			}
		}
	}
	if f.namespace == "svg" {
		switch f.typ {
		case elementtype.ForeignObjectType, elementtype.DescType, elementtype.TitleSVGType:
			if t.Kind == tokenizer.CharacterToken || t.Kind == tokenizer.StartTagToken {
				return false
			}
		}
	}
	return true
}

// adjustedCurrentNodeFrame returns the frame for the "adjusted current
// node" (HTML5 §13.2.6): in the fragment case with a single-element stack
// this is the fragment context element, which is exactly what top()
// already holds since initFragment seeded the stack with it.
func (d *Driver) adjustedCurrentNodeFrame() *frame {
	return d.openElements.top()
}

// resetInsertionMode implements "reset the insertion mode appropriately"
// (HTML5 §12.2.4.1), used after fragment-context setup and a handful of
// table/select algorithms.
func (d *Driver) resetInsertionMode() {
	for i := len(d.openElements) - 1; i >= 0; i-- {
		f := d.openElements[i]
		last := i == 0

		node := f
		if last && d.fragment != nil {
			node = frame{namespace: d.fragment.Namespace, typ: d.fragment.Type, name: d.fragment.Name}
		}

		if node.namespace != "" {
			if last {
				d.mode = modeInBody
				return
			}
			continue
		}

		switch node.typ {
		case elementtype.SelectType:
			if !last {
				for j := i - 1; j >= 0; j-- {
					anc := d.openElements[j]
					if anc.namespace != "" {
						continue
					}
					if anc.typ == elementtype.TemplateType {
						break
					}
					if anc.typ == elementtype.TableType {
						d.mode = modeInSelectInTable
						return
					}
				}
			}
			d.mode = modeInSelect
			return
		case elementtype.TdType, elementtype.ThType:
			if !last {
				d.mode = modeInCell
				return
			}
		case elementtype.TrType:
			d.mode = modeInRow
			return
		case elementtype.TbodyType, elementtype.TheadType, elementtype.TfootType:
			d.mode = modeInTableBody
			return
		case elementtype.CaptionType:
			d.mode = modeInCaption
			return
		case elementtype.ColgroupType:
			d.mode = modeInColumnGroup
			return
		case elementtype.TableType:
			d.mode = modeInTable
			return
		case elementtype.TemplateType:
			if len(d.templateModes) > 0 {
				d.mode = d.templateModes[len(d.templateModes)-1]
			} else {
				d.mode = modeInBody
			}
			return
		case elementtype.HeadType:
			if !last {
				d.mode = modeInHead
				return
			}
		case elementtype.BodyType:
			d.mode = modeInBody
			return
		case elementtype.FramesetType:
			d.mode = modeInFrameset
			return
		case elementtype.HTMLType:
			if !d.hasHead {
				d.mode = modeBeforeHead
			} else {
				d.mode = modeAfterHead
			}
			return
		}
		if last {
			d.mode = modeInBody
			return
		}
	}
	d.mode = modeInBody
}
