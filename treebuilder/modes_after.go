package treebuilder

import (
	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
)

// inAfterBody implements "after body" (HTML5 §12.2.6.4.20).
func (d *Driver) inAfterBody(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		if ws != "" {
			if reprocess, err := d.inBody(tokenizer.Token{Kind: tokenizer.CharacterToken, Data: ws}); err != nil {
				return reprocess, err
			}
		}
		if rest == "" {
			return false, nil
		}
	case tokenizer.CommentToken:
		if f := d.openElements.top(); f != nil {
			return false, d.insertComment(t.Data, d.openElements[0].node)
		}
		return false, d.insertComment(t.Data, nil)
	case tokenizer.DoctypeToken:
		d.parseError(perr.UnexpectedToken, "doctype")
		return false, nil
	case tokenizer.StartTagToken:
		if t.Name == "html" {
			return d.inBody(t)
		}
	case tokenizer.EndTagToken:
		if t.Name == "html" {
			d.mode = modeAfterAfterBody
			return false, nil
		}
	case tokenizer.EOFToken:
		return false, nil
	}
	d.parseError(perr.StrayEndTag, t.Name)
	d.mode = modeInBody
	return true, nil
}

// inFrameset implements "in frameset" (HTML5 §12.2.6.4.21).
func (d *Driver) inFrameset(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		if isAllWhitespace(t.Data) {
			return false, d.insertCharacter(t.Data, false)
		}
		d.parseError(perr.StrayStartTag, "")
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
		case "frameset":
			_, err := d.insertHTMLElement("frameset", elementtype.FramesetType, tokAttrs(t.Attributes))
			return false, err
		case "frame":
			if _, err := d.insertHTMLElement("frame", elementtype.FrameType, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			return false, d.openElements.pop(d.h)
		case "noframes":
			return d.inHead(t)
		default:
			d.parseError(perr.StrayStartTag, t.Name)
			return false, nil
		}
	case tokenizer.EndTagToken:
		if t.Name == "frameset" {
			if len(d.openElements) == 1 {
				d.parseError(perr.StrayEndTag, "frameset")
				return false, nil
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			if len(d.templateModes) == 0 {
				if f := d.openElements.top(); f != nil && f.namespace == "" && f.typ != elementtype.FramesetType {
					d.mode = modeAfterFrameset
				}
			}
			return false, nil
		}
		d.parseError(perr.StrayEndTag, t.Name)
		return false, nil
	case tokenizer.EOFToken:
		if len(d.openElements) != 1 {
			d.parseError(perr.UnclosedElements, "")
		}
		return false, nil
	}
	return false, nil
}

// inAfterFrameset implements "after frameset" (HTML5 §12.2.6.4.22).
func (d *Driver) inAfterFrameset(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		if isAllWhitespace(t.Data) {
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
		case "noframes":
			return d.inHead(t)
		default:
			d.parseError(perr.StrayStartTag, t.Name)
			return false, nil
		}
	case tokenizer.EndTagToken:
		if t.Name == "html" {
			d.mode = modeAfterAfterFrameset
			return false, nil
		}
		d.parseError(perr.StrayEndTag, t.Name)
		return false, nil
	case tokenizer.EOFToken:
		return false, nil
	}
	return false, nil
}

// inAfterAfterBody implements "after after body" (HTML5 §12.2.6.4.23).
func (d *Driver) inAfterAfterBody(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, d.document)
	case tokenizer.DoctypeToken:
		return d.inBody(t)
	case tokenizer.CharacterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		if ws != "" {
			if err := d.inBodyWhitespace(ws); err != nil {
				return false, err
			}
		}
		if rest == "" {
			return false, nil
		}
	case tokenizer.StartTagToken:
		if t.Name == "html" {
			return d.inBody(t)
		}
	case tokenizer.EOFToken:
		return false, nil
	}
	d.parseError(perr.StrayEndTag, t.Name)
	d.mode = modeInBody
	return true, nil
}

// inAfterAfterFrameset implements "after after frameset" (HTML5
// §12.2.6.4.24).
func (d *Driver) inAfterAfterFrameset(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, d.document)
	case tokenizer.DoctypeToken:
		return d.inBody(t)
	case tokenizer.CharacterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		if ws != "" {
			if err := d.inBodyWhitespace(ws); err != nil {
				return false, err
			}
		}
		if rest == "" {
			return false, nil
		}
		return false, nil
	case tokenizer.StartTagToken:
		switch t.Name {
		case "html":
			return d.inBody(t)
		case "noframes":
			return d.inHead(t)
		}
		return false, nil
	case tokenizer.EOFToken:
		return false, nil
	}
	return false, nil
}

func (d *Driver) inBodyWhitespace(ws string) error {
	if err := d.reconstructActiveFormattingElements(); err != nil {
		return err
	}
	return d.insertCharacter(ws, false)
}
