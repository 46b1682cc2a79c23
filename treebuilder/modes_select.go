package treebuilder

import (
	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
)

// inSelect implements "in select" (HTML5 §12.2.6.4.17).
func (d *Driver) inSelect(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		if len(t.Data) > 0 {
			return false, d.insertCharacter(t.Data, false)
		}
		return false, nil
	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, nil)
	case tokenizer.DoctypeToken:
		d.parseError(perr.UnexpectedToken, "doctype")
		return false, nil
	case tokenizer.StartTagToken:
		switch t.Name {
		case "html":
			return d.inBody(t)
		case "option":
			if f := d.openElements.top(); f != nil && f.namespace == "" && f.typ == elementtype.OptionType {
				if err := d.openElements.pop(d.h); err != nil {
					return false, err
				}
			}
			_, err := d.insertHTMLElement("option", elementtype.OptionType, tokAttrs(t.Attributes))
			return false, err
		case "optgroup":
			if f := d.openElements.top(); f != nil && f.namespace == "" && f.typ == elementtype.OptionType {
				if err := d.openElements.pop(d.h); err != nil {
					return false, err
				}
			}
			if f := d.openElements.top(); f != nil && f.namespace == "" && f.typ == elementtype.OptgroupType {
				if err := d.openElements.pop(d.h); err != nil {
					return false, err
				}
			}
			_, err := d.insertHTMLElement("optgroup", elementtype.OptgroupType, tokAttrs(t.Attributes))
			return false, err
		case "select":
			d.parseError(perr.MisnestedTag, "select")
			return false, d.closeSelect()
		case "input", "keygen", "textarea":
			d.parseError(perr.StrayStartTag, t.Name)
			if !inSelectScope(d.openElements, elementtype.SelectType) {
				return false, nil
			}
			if err := d.closeSelect(); err != nil {
				return false, err
			}
			return true, nil
		case "script", "template":
			return d.inHead(t)
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "optgroup":
			top := d.openElements.top()
			if top != nil && top.namespace == "" && top.typ == elementtype.OptionType && len(d.openElements) > 1 &&
				d.openElements[len(d.openElements)-2].namespace == "" && d.openElements[len(d.openElements)-2].typ == elementtype.OptgroupType {
				if err := d.openElements.pop(d.h); err != nil {
					return false, err
				}
				top = d.openElements.top()
			}
			if top != nil && top.namespace == "" && top.typ == elementtype.OptgroupType {
				return false, d.openElements.pop(d.h)
			}
			d.parseError(perr.StrayEndTag, "optgroup")
			return false, nil
		case "option":
			if top := d.openElements.top(); top != nil && top.namespace == "" && top.typ == elementtype.OptionType {
				return false, d.openElements.pop(d.h)
			}
			d.parseError(perr.StrayEndTag, "option")
			return false, nil
		case "select":
			if !inSelectScope(d.openElements, elementtype.SelectType) {
				d.parseError(perr.StrayEndTag, "select")
				return false, nil
			}
			return false, d.closeSelect()
		case "template":
			return d.inHead(t)
		}
	case tokenizer.EOFToken:
		return d.inBody(t)
	}
	d.parseError(perr.StrayStartTag, t.Name)
	return false, nil
}

func (d *Driver) closeSelect() error {
	if err := d.openElements.popUntil(d.h, elementtype.SelectType); err != nil {
		return err
	}
	d.resetInsertionMode()
	return nil
}

// inSelectInTable implements "in select in table" (HTML5 §12.2.6.4.18):
// any of the listed table-section start/end tags abandon the select by
// popping back to it and reprocessing in the enclosing mode.
func (d *Driver) inSelectInTable(t tokenizer.Token) (bool, error) {
	if t.Kind == tokenizer.StartTagToken {
		switch t.Name {
		case "caption", "table", "tbody", "tfoot", "thead", "tr", "td", "th":
			d.parseError(perr.MisnestedTag, t.Name)
			if err := d.openElements.popUntil(d.h, elementtype.SelectType); err != nil {
				return false, err
			}
			d.resetInsertionMode()
			return true, nil
		}
	}
	if t.Kind == tokenizer.EndTagToken {
		switch t.Name {
		case "caption", "table", "tbody", "tfoot", "thead", "tr", "td", "th":
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			if !elementInTableScope(d.openElements, et) {
				d.parseError(perr.StrayEndTag, t.Name)
				return false, nil
			}
			if err := d.openElements.popUntil(d.h, elementtype.SelectType); err != nil {
				return false, err
			}
			d.resetInsertionMode()
			return true, nil
		}
	}
	return d.inSelect(t)
}

// inTemplate implements "in template" (HTML5 §12.2.6.4.19).
func (d *Driver) inTemplate(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken, tokenizer.CommentToken, tokenizer.DoctypeToken:
		return d.inBody(t)
	case tokenizer.StartTagToken:
		switch t.Name {
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
			return d.inHead(t)
		case "caption", "colgroup", "tbody", "tfoot", "thead":
			d.templateModes.pop()
			d.templateModes.push(modeInTable)
			d.mode = modeInTable
			return true, nil
		case "col":
			d.templateModes.pop()
			d.templateModes.push(modeInColumnGroup)
			d.mode = modeInColumnGroup
			return true, nil
		case "tr":
			d.templateModes.pop()
			d.templateModes.push(modeInTableBody)
			d.mode = modeInTableBody
			return true, nil
		case "td", "th":
			d.templateModes.pop()
			d.templateModes.push(modeInRow)
			d.mode = modeInRow
			return true, nil
		default:
			d.templateModes.pop()
			d.templateModes.push(modeInBody)
			d.mode = modeInBody
			return true, nil
		}
	case tokenizer.EndTagToken:
		if t.Name == "template" {
			return false, d.endTemplateTag()
		}
		d.parseError(perr.StrayEndTag, t.Name)
		return false, nil
	case tokenizer.EOFToken:
		if !d.openElements.contains(elementtype.TemplateType) {
			return false, nil
		}
		d.parseError(perr.UnclosedElements, "template")
		if err := d.openElements.popUntil(d.h, elementtype.TemplateType); err != nil {
			return false, err
		}
		if err := d.afe.clearToMarker(d.h); err != nil {
			return false, err
		}
		d.templateModes.pop()
		d.resetInsertionMode()
		return true, nil
	}
	return false, nil
}

func (d *Driver) endTemplateTag() error {
	if !d.openElements.contains(elementtype.TemplateType) {
		d.parseError(perr.StrayEndTag, "template")
		return nil
	}
	if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
		return err
	}
	if top := d.openElements.top(); top == nil || top.typ != elementtype.TemplateType {
		d.parseError(perr.MisnestedTag, "template")
	}
	if err := d.openElements.popUntil(d.h, elementtype.TemplateType); err != nil {
		return err
	}
	if err := d.afe.clearToMarker(d.h); err != nil {
		return err
	}
	d.templateModes.pop()
	d.resetInsertionMode()
	return nil
}
