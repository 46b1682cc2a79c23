package treebuilder

import (
	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
)

func (d *Driver) clearStackToContext(types map[elementtype.Type]bool) error {
	for {
		f := d.openElements.top()
		if f == nil || f.namespace != "" || types[f.typ] {
			return nil
		}
		if err := d.openElements.pop(d.h); err != nil {
			return err
		}
	}
}

var tableContextTypes = map[elementtype.Type]bool{elementtype.TableType: true, elementtype.TemplateType: true, elementtype.HTMLType: true}
var tableBodyContextTypes = map[elementtype.Type]bool{elementtype.TbodyType: true, elementtype.TfootType: true, elementtype.TheadType: true, elementtype.TemplateType: true, elementtype.HTMLType: true}
var tableRowContextTypes = map[elementtype.Type]bool{elementtype.TrType: true, elementtype.TemplateType: true, elementtype.HTMLType: true}

// inTable implements "in table" (HTML5 §12.2.6.4.9).
func (d *Driver) inTable(t tokenizer.Token) (bool, error) {
	isTableTextHost := func() bool {
		f := d.openElements.top()
		return f != nil && f.namespace == "" &&
			(f.typ == elementtype.TableType || f.typ == elementtype.TbodyType || f.typ == elementtype.TfootType ||
				f.typ == elementtype.TheadType || f.typ == elementtype.TrType)
	}

	switch t.Kind {
	case tokenizer.CharacterToken:
		if isTableTextHost() {
			d.pendingTableChars = nil
			d.pendingTableHasNonWS = false
			d.originalMode = d.mode
			d.mode = modeInTableText
			return true, nil
		}
	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, nil)
	case tokenizer.DoctypeToken:
		d.parseError(perr.UnexpectedToken, "doctype")
		return false, nil
	case tokenizer.StartTagToken:
		switch t.Name {
		case "caption":
			if err := d.clearStackToContext(tableContextTypes); err != nil {
				return false, err
			}
			d.afe.pushMarker()
			if _, err := d.insertHTMLElement("caption", elementtype.CaptionType, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			d.mode = modeInCaption
			return false, nil
		case "colgroup":
			if err := d.clearStackToContext(tableContextTypes); err != nil {
				return false, err
			}
			if _, err := d.insertHTMLElement("colgroup", elementtype.ColgroupType, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			d.mode = modeInColumnGroup
			return false, nil
		case "col":
			if err := d.clearStackToContext(tableContextTypes); err != nil {
				return false, err
			}
			if _, err := d.insertHTMLElement("colgroup", elementtype.ColgroupType, nil); err != nil {
				return false, err
			}
			d.mode = modeInColumnGroup
			return true, nil
		case "tbody", "tfoot", "thead":
			if err := d.clearStackToContext(tableContextTypes); err != nil {
				return false, err
			}
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			if _, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			d.mode = modeInTableBody
			return false, nil
		case "td", "th", "tr":
			if err := d.clearStackToContext(tableContextTypes); err != nil {
				return false, err
			}
			if _, err := d.insertHTMLElement("tbody", elementtype.TbodyType, nil); err != nil {
				return false, err
			}
			d.mode = modeInTableBody
			return true, nil
		case "table":
			d.parseError(perr.MisnestedTag, "table")
			if !elementInTableScope(d.openElements, elementtype.TableType) {
				return false, nil
			}
			if err := d.openElements.popUntil(d.h, elementtype.TableType); err != nil {
				return false, err
			}
			d.resetInsertionMode()
			return true, nil
		case "style", "script", "template":
			return d.inHead(t)
		case "input":
			if hasAttrValueFold(t.Attributes, "type", "hidden") {
				d.parseError(perr.StrayStartTag, "input")
				if _, err := d.insertHTMLElement("input", elementtype.InputType, tokAttrs(t.Attributes)); err != nil {
					return false, err
				}
				return false, d.openElements.pop(d.h)
			}
		case "form":
			if d.hasForm || d.openElements.contains(elementtype.TemplateType) {
				d.parseError(perr.StrayStartTag, "form")
				return false, nil
			}
			n, err := d.insertHTMLElement("form", elementtype.FormType, tokAttrs(t.Attributes))
			if err != nil {
				return false, err
			}
			d.formPointer = n
			d.hasForm = true
			return false, d.openElements.pop(d.h)
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "table":
			if !elementInTableScope(d.openElements, elementtype.TableType) {
				d.parseError(perr.StrayEndTag, "table")
				return false, nil
			}
			if err := d.openElements.popUntil(d.h, elementtype.TableType); err != nil {
				return false, err
			}
			d.resetInsertionMode()
			return false, nil
		case "body", "caption", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		case "template":
			return d.inHead(t)
		}
	case tokenizer.EOFToken:
		return d.inBody(t)
	}
	d.parseError(perr.FosterParenting, "")
	return d.inBodyFosterParented(t)
}

// inBodyFosterParented runs the in-body algorithm but with foster
// parenting enabled for character/element insertion, the "anything else"
// fallback of "in table" (HTML5 §12.2.6.4.9).
func (d *Driver) inBodyFosterParented(t tokenizer.Token) (bool, error) {
	prev := d.fosterParenting
	d.fosterParenting = true
	defer func() { d.fosterParenting = prev }()
	return d.inBody(t)
}

// inTableText implements "in table text" (HTML5 §12.2.6.4.10): buffer
// character tokens, flush them (foster-parented if any were non-
// whitespace and the table forbids raw text, per spec's simplified model)
// once a non-character token arrives.
func (d *Driver) inTableText(t tokenizer.Token) (bool, error) {
	if t.Kind == tokenizer.CharacterToken {
		for _, r := range t.Data {
			d.pendingTableChars = append(d.pendingTableChars, r)
			if !isWhitespace(r) {
				d.pendingTableHasNonWS = true
			}
		}
		return false, nil
	}
	if err := d.flushPendingTableText(); err != nil {
		return false, err
	}
	d.mode = d.originalMode
	return true, nil
}

func (d *Driver) flushPendingTableText() error {
	if len(d.pendingTableChars) == 0 {
		return nil
	}
	data := string(d.pendingTableChars)
	d.pendingTableChars = nil
	if d.pendingTableHasNonWS {
		d.parseError(perr.FosterParenting, "")
		return d.insertCharacter(data, true)
	}
	return d.insertCharacter(data, false)
}

// inCaption implements "in caption" (HTML5 §12.2.6.4.11).
func (d *Driver) inCaption(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.StartTagToken:
		switch t.Name {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			return d.closeCaptionAndReprocess(t)
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "caption":
			return false, d.closeCaption()
		case "table":
			return d.closeCaptionAndReprocess(t)
		case "body", "col", "colgroup", "html", "tbody", "td", "tfoot", "th", "thead", "tr":
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
	}
	return d.inBody(t)
}

func (d *Driver) closeCaptionAndReprocess(t tokenizer.Token) (bool, error) {
	if !elementInTableScope(d.openElements, elementtype.CaptionType) {
		d.parseError(perr.StrayEndTag, t.Name)
		return false, nil
	}
	if err := d.closeCaption(); err != nil {
		return false, err
	}
	return true, nil
}

func (d *Driver) closeCaption() error {
	if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
		return err
	}
	if top := d.openElements.top(); top == nil || top.typ != elementtype.CaptionType {
		d.parseError(perr.MisnestedTag, "caption")
	}
	if err := d.openElements.popUntil(d.h, elementtype.CaptionType); err != nil {
		return err
	}
	if err := d.afe.clearToMarker(d.h); err != nil {
		return err
	}
	d.mode = modeInTable
	return nil
}

// inColumnGroup implements "in column group" (HTML5 §12.2.6.4.12).
func (d *Driver) inColumnGroup(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		if ws != "" {
			if err := d.insertCharacter(ws, false); err != nil {
				return false, err
			}
		}
		if rest == "" {
			return false, nil
		}
	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, nil)
	case tokenizer.DoctypeToken:
		d.parseError(perr.UnexpectedToken, "doctype")
		return false, nil
	case tokenizer.StartTagToken:
		switch t.Name {
		case "html":
			return d.inBody(t)
		case "col":
			if _, err := d.insertHTMLElement("col", elementtype.ColType, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			return false, d.openElements.pop(d.h)
		case "template":
			return d.inHead(t)
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "colgroup":
			if f := d.openElements.top(); f == nil || f.namespace != "" || f.typ != elementtype.ColgroupType {
				d.parseError(perr.StrayEndTag, "colgroup")
				return false, nil
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInTable
			return false, nil
		case "col":
			d.parseError(perr.StrayEndTag, "col")
			return false, nil
		case "template":
			return d.inHead(t)
		}
	case tokenizer.EOFToken:
		return d.inBody(t)
	}
	if f := d.openElements.top(); f == nil || f.namespace != "" || f.typ != elementtype.ColgroupType {
		return false, nil
	}
	if err := d.openElements.pop(d.h); err != nil {
		return false, err
	}
	d.mode = modeInTable
	return true, nil
}

// inTableBody implements "in table body" (HTML5 §12.2.6.4.13).
func (d *Driver) inTableBody(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.StartTagToken:
		switch t.Name {
		case "tr":
			if err := d.clearStackToContext(tableBodyContextTypes); err != nil {
				return false, err
			}
			if _, err := d.insertHTMLElement("tr", elementtype.TrType, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			d.mode = modeInRow
			return false, nil
		case "th", "td":
			d.parseError(perr.StrayStartTag, t.Name)
			if err := d.clearStackToContext(tableBodyContextTypes); err != nil {
				return false, err
			}
			if _, err := d.insertHTMLElement("tr", elementtype.TrType, nil); err != nil {
				return false, err
			}
			d.mode = modeInRow
			return true, nil
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead":
			if !d.anyTableBodyInScope() {
				d.parseError(perr.StrayStartTag, t.Name)
				return false, nil
			}
			if err := d.clearStackToContext(tableBodyContextTypes); err != nil {
				return false, err
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInTable
			return true, nil
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "tbody", "tfoot", "thead":
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			if !elementInTableScope(d.openElements, et) {
				d.parseError(perr.StrayEndTag, t.Name)
				return false, nil
			}
			if err := d.clearStackToContext(tableBodyContextTypes); err != nil {
				return false, err
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInTable
			return false, nil
		case "table":
			if !d.anyTableBodyInScope() {
				d.parseError(perr.StrayEndTag, "table")
				return false, nil
			}
			if err := d.clearStackToContext(tableBodyContextTypes); err != nil {
				return false, err
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInTable
			return true, nil
		case "body", "caption", "col", "colgroup", "html", "td", "th", "tr":
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
	}
	return d.inTable(t)
}

func (d *Driver) anyTableBodyInScope() bool {
	return anyInTableScope(d.openElements, elementtype.TbodyType, elementtype.TfootType, elementtype.TheadType)
}

// inRow implements "in row" (HTML5 §12.2.6.4.14).
func (d *Driver) inRow(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.StartTagToken:
		switch t.Name {
		case "th", "td":
			if err := d.clearStackToContext(tableRowContextTypes); err != nil {
				return false, err
			}
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			if _, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			d.afe.pushMarker()
			d.mode = modeInCell
			return false, nil
		case "caption", "col", "colgroup", "tbody", "tfoot", "thead", "tr":
			if !elementInTableScope(d.openElements, elementtype.TrType) {
				d.parseError(perr.StrayStartTag, t.Name)
				return false, nil
			}
			if err := d.clearStackToContext(tableRowContextTypes); err != nil {
				return false, err
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInTableBody
			return true, nil
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "tr":
			if !elementInTableScope(d.openElements, elementtype.TrType) {
				d.parseError(perr.StrayEndTag, "tr")
				return false, nil
			}
			if err := d.clearStackToContext(tableRowContextTypes); err != nil {
				return false, err
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInTableBody
			return false, nil
		case "table":
			if !elementInTableScope(d.openElements, elementtype.TrType) {
				d.parseError(perr.StrayEndTag, "table")
				return false, nil
			}
			if err := d.clearStackToContext(tableRowContextTypes); err != nil {
				return false, err
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInTableBody
			return true, nil
		case "tbody", "tfoot", "thead":
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			if !elementInTableScope(d.openElements, et) || !elementInTableScope(d.openElements, elementtype.TrType) {
				d.parseError(perr.StrayEndTag, t.Name)
				return false, nil
			}
			if err := d.clearStackToContext(tableRowContextTypes); err != nil {
				return false, err
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInTableBody
			return true, nil
		case "body", "caption", "col", "colgroup", "html", "td", "th":
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
	}
	return d.inTable(t)
}

// inCell implements "in cell" (HTML5 §12.2.6.4.15).
func (d *Driver) inCell(t tokenizer.Token) (bool, error) {
	closeCell := func() error {
		if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
			return err
		}
		if top := d.openElements.top(); top != nil && top.namespace == "" && (top.typ == elementtype.TdType || top.typ == elementtype.ThType) {
		} else {
			d.parseError(perr.MisnestedTag, "td")
		}
		if err := d.openElements.popUntil(d.h, elementtype.TdType, elementtype.ThType); err != nil {
			return err
		}
		if err := d.afe.clearToMarker(d.h); err != nil {
			return err
		}
		d.mode = modeInRow
		return nil
	}

	switch t.Kind {
	case tokenizer.StartTagToken:
		switch t.Name {
		case "caption", "col", "colgroup", "tbody", "td", "tfoot", "th", "thead", "tr":
			if !elementInTableScope(d.openElements, elementtype.TdType) && !elementInTableScope(d.openElements, elementtype.ThType) {
				d.parseError(perr.StrayStartTag, t.Name)
				return false, nil
			}
			if err := closeCell(); err != nil {
				return false, err
			}
			return true, nil
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "td", "th":
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			if !elementInTableScope(d.openElements, et) {
				d.parseError(perr.StrayEndTag, t.Name)
				return false, nil
			}
			return false, closeCell()
		case "body", "caption", "col", "colgroup", "html":
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		case "table", "tbody", "tfoot", "thead", "tr":
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			if et != elementtype.Unknown && !elementInTableScope(d.openElements, et) {
				d.parseError(perr.StrayEndTag, t.Name)
				return false, nil
			}
			if t.Name == "table" {
				// any enclosing table is necessarily in scope if we get here
			}
			if err := closeCell(); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return d.inBody(t)
}
