package treebuilder

import (
	"strings"

	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
)

// formattingElementTags is the set of tag names the adoption agency
// algorithm applies to on their end tag (HTML5 §12.2.6.4.7 "any other end
// tag" exclusions), mirrored from the afe push sites below.
var formattingElementTags = map[string]elementtype.Type{
	"a": elementtype.AType, "b": elementtype.BType, "big": elementtype.BigType,
	"code": elementtype.CodeType, "em": elementtype.EmType, "font": elementtype.FontType,
	"i": elementtype.IType, "nobr": elementtype.NobrType, "s": elementtype.SType,
	"small": elementtype.SmallType, "strike": elementtype.StrikeType,
	"strong": elementtype.StrongType, "tt": elementtype.TTType, "u": elementtype.UType,
}

var headingTypes = map[elementtype.Type]bool{
	elementtype.H1Type: true, elementtype.H2Type: true, elementtype.H3Type: true,
	elementtype.H4Type: true, elementtype.H5Type: true, elementtype.H6Type: true,
}

// specialTypes approximates HTML5's "special" category (§12.2.3.2), used by
// the "any other end tag" algorithm to decide when an unmatched end tag
// must be silently ignored rather than closing through arbitrary elements.
var specialTypes = map[elementtype.Type]bool{
	elementtype.AddressType: true, elementtype.AppletType: true, elementtype.AreaType: true,
	elementtype.ArticleType: true, elementtype.AsideType: true, elementtype.BaseType: true,
	elementtype.BlockquoteType: true, elementtype.BodyType: true,
	elementtype.BrType: true, elementtype.ButtonType: true, elementtype.CaptionType: true,
	elementtype.ColType: true, elementtype.ColgroupType: true, elementtype.DDType: true,
	elementtype.DetailsType: true, elementtype.DivType: true,
	elementtype.DLType: true, elementtype.DTType: true, elementtype.EmbedType: true,
	elementtype.FieldsetType: true, elementtype.FigcaptionType: true, elementtype.FigureType: true,
	elementtype.FooterType: true, elementtype.FormType: true, elementtype.FramesetType: true,
	elementtype.FrameType: true, elementtype.H1Type: true, elementtype.H2Type: true,
	elementtype.H3Type: true, elementtype.H4Type: true, elementtype.H5Type: true,
	elementtype.H6Type: true, elementtype.HeadType: true, elementtype.HeaderType: true,
	elementtype.HgroupType: true, elementtype.HRType: true, elementtype.HTMLType: true,
	elementtype.IframeType: true, elementtype.ImgType: true, elementtype.InputType: true,
	elementtype.LIType: true, elementtype.LinkType: true, elementtype.ListingType: true,
	elementtype.MainType: true, elementtype.MarqueeType: true, elementtype.MenuType: true,
	elementtype.MetaType: true, elementtype.NavType: true,
	elementtype.NoframesType: true, elementtype.NoscriptType: true, elementtype.ObjectType: true,
	elementtype.OLType: true, elementtype.PType: true, elementtype.ParamType: true,
	elementtype.PlaintextType: true, elementtype.PreType: true, elementtype.ScriptType: true,
	elementtype.SectionType: true, elementtype.SelectType: true, elementtype.StyleType: true,
	elementtype.SummaryType: true, elementtype.TableType: true, elementtype.TbodyType: true,
	elementtype.TdType: true, elementtype.TemplateType: true, elementtype.TextareaType: true,
	elementtype.TfootType: true, elementtype.ThType: true, elementtype.TheadType: true,
	elementtype.TitleType: true, elementtype.TrType: true, elementtype.UlType: true,
}

// selfClosingVoidStartTags lists the start tags that body mode handles with
// reconstruct+insert+immediate-pop (HTML5 §12.2.6.4.7), the same shape
// regardless of whether they are formally void per elementtype.IsVoid.
var selfClosingVoidStartTags = map[string]bool{
	"area": true, "br": true, "embed": true, "img": true, "keygen": true, "wbr": true,
}

func (d *Driver) reconstructActiveFormattingElements() error {
	if len(d.afe) == 0 {
		return nil
	}
	last := len(d.afe) - 1
	if d.afe[last].marker || d.openElements.index(d.afe[last].frame.node) >= 0 {
		return nil
	}
	i := last
	for i > 0 {
		i--
		if d.afe[i].marker || d.openElements.index(d.afe[i].frame.node) >= 0 {
			i++
			break
		}
	}
	for ; i < len(d.afe); i++ {
		e := d.afe[i]
		n, err := d.insertForeignElement(e.frame.namespace, e.frame.typ, e.frame.name, e.attrs, false)
		if err != nil {
			return err
		}
		d.afe[i] = afeEntry{frame: frame{namespace: e.frame.namespace, typ: e.frame.typ, name: e.frame.name, node: n}, attrs: e.attrs}
	}
	return nil
}

func (d *Driver) pushFormatting(f frame, attrs []Attribute) {
	d.afe.push(f, attrs)
}

// inBody implements "in body" (HTML5 §12.2.6.4.7), the largest insertion
// mode: most start and end tags that are not specific to head/table/select
// content are handled here.
func (d *Driver) inBody(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		if strings.ContainsRune(t.Data, 0) {
			// Outside CDATA sections, NUL characters arrive here already
			// replaced with U+FFFD by the input stream or the tokenizer;
			// nothing further to special-case here.
		}
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		if err := d.insertCharacter(t.Data, false); err != nil {
			return false, err
		}
		if !isAllWhitespace(t.Data) {
			d.framesetOK = false
		}
		return false, nil

	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, nil)

	case tokenizer.DoctypeToken:
		d.parseError(perr.UnexpectedToken, "doctype")
		return false, nil

	case tokenizer.EOFToken:
		if len(d.templateModes) > 0 {
			return d.inTemplate(t)
		}
		if !d.stackAllImplyEOF() {
			d.parseError(perr.UnclosedElements, "")
		}
		return false, nil

	case tokenizer.StartTagToken:
		return d.inBodyStartTag(t)

	case tokenizer.EndTagToken:
		return d.inBodyEndTag(t)
	}
	return false, nil
}

// stackAllImplyEOF reports whether every open element is one that HTML5's
// EOF-in-body step tolerates without a parse error (dd, dt, li, optgroup,
// option, p, rb, rp, rt, rtc, tbody, td, tfoot, th, thead, tr, body, html).
func (d *Driver) stackAllImplyEOF() bool {
	ok := map[elementtype.Type]bool{
		elementtype.DDType: true, elementtype.DTType: true, elementtype.LIType: true,
		elementtype.OptgroupType: true, elementtype.OptionType: true, elementtype.PType: true,
		elementtype.RbType: true, elementtype.RpType: true, elementtype.RtType: true,
		elementtype.RtcType: true, elementtype.TbodyType: true, elementtype.TdType: true,
		elementtype.TfootType: true, elementtype.ThType: true, elementtype.TheadType: true,
		elementtype.TrType: true, elementtype.BodyType: true, elementtype.HTMLType: true,
	}
	for _, f := range d.openElements {
		if f.namespace != "" || !ok[f.typ] {
			return false
		}
	}
	return true
}

func (d *Driver) inBodyStartTag(t tokenizer.Token) (bool, error) {
	switch t.Name {
	case "html":
		d.parseError(perr.StrayStartTag, "html")
		if len(d.templateModes) == 0 {
			if f := d.openElements.top(); f != nil {
				_ = d.h.AddAttributes(f.node, tokAttrs(t.Attributes))
			}
		}
		return false, nil

	case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
		return d.inHead(t)

	case "body":
		d.parseError(perr.StrayStartTag, "body")
		if len(d.openElements) >= 2 {
			if f := &d.openElements[1]; f.typ == elementtype.BodyType {
				d.framesetOK = false
				_ = d.h.AddAttributes(f.node, tokAttrs(t.Attributes))
			}
		}
		return false, nil

	case "frameset":
		if !d.framesetOK || len(d.openElements) < 2 || d.openElements[1].typ != elementtype.BodyType {
			d.parseError(perr.StrayStartTag, "frameset")
			return false, nil
		}
		body := d.openElements[1]
		if parent, err := d.h.GetParent(body.node, false); err == nil && parent != nil {
			_ = d.h.RemoveChild(parent, body.node)
		}
		_ = d.h.UnrefNode(body.node)
		d.openElements = d.openElements[:2]
		if _, err := d.insertHTMLElement("frameset", elementtype.FramesetType, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.mode = modeInFrameset
		return false, nil

	case "address", "article", "aside", "blockquote", "center", "details", "dialog",
		"dir", "div", "dl", "fieldset", "figcaption", "figure", "footer", "header",
		"hgroup", "main", "menu", "nav", "ol", "section", "summary", "ul":
		if err := d.closeParagraphIfInButtonScope(); err != nil {
			return false, err
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
		return false, err

	case "h1", "h2", "h3", "h4", "h5", "h6":
		if err := d.closeParagraphIfInButtonScope(); err != nil {
			return false, err
		}
		if f := d.openElements.top(); f != nil && f.namespace == "" && headingTypes[f.typ] {
			d.parseError(perr.MisnestedTag, t.Name)
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
		return false, err

	case "p":
		if err := d.closeParagraphIfInButtonScope(); err != nil {
			return false, err
		}
		_, err := d.insertHTMLElement("p", elementtype.PType, tokAttrs(t.Attributes))
		return false, err

	case "pre", "listing":
		if err := d.closeParagraphIfInButtonScope(); err != nil {
			return false, err
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		if _, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.framesetOK = false
		return false, nil

	case "form":
		if d.hasForm && !d.openElements.contains(elementtype.TemplateType) {
			d.parseError(perr.StrayStartTag, "form")
			return false, nil
		}
		if err := d.closeParagraphIfInButtonScope(); err != nil {
			return false, err
		}
		n, err := d.insertHTMLElement("form", elementtype.FormType, tokAttrs(t.Attributes))
		if err != nil {
			return false, err
		}
		if !d.openElements.contains(elementtype.TemplateType) {
			d.formPointer = n
			d.hasForm = true
		}
		return false, nil

	case "li":
		return false, d.insertListItem(t, elementtype.LIType, []elementtype.Type{elementtype.LIType})
	case "dd", "dt":
		return false, d.insertListItem(t, elementtype.Lookup(elementtype.HTML, t.Name), []elementtype.Type{elementtype.DDType, elementtype.DTType})

	case "plaintext":
		if err := d.closeParagraphIfInButtonScope(); err != nil {
			return false, err
		}
		if _, err := d.insertHTMLElement("plaintext", elementtype.PlaintextType, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.tok.SetContentModel(tokenizer.Plaintext, "plaintext")
		return false, nil

	case "button":
		if elementInScope(d.openElements, elementtype.ButtonType) {
			d.parseError(perr.MisnestedTag, "button")
			if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
				return false, err
			}
			if err := d.openElements.popUntil(d.h, elementtype.ButtonType); err != nil {
				return false, err
			}
		}
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		if _, err := d.insertHTMLElement("button", elementtype.ButtonType, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.framesetOK = false
		return false, nil

	case "a":
		if i := d.afe.lastMatching(elementtype.AType); i >= 0 {
			d.parseError(perr.MisnestedTag, "a")
			entry := d.afe[i]
			if err := d.runAdoptionAgency("a"); err != nil {
				return false, err
			}
			if j := d.afe.indexOfNode(entry.frame.node); j >= 0 {
				d.afe.remove(j)
			}
			if k := d.openElements.index(entry.frame.node); k >= 0 {
				*(&d.openElements) = append(d.openElements[:k], d.openElements[k+1:]...)
			}
		}
		return false, d.insertAndTrackFormatting(t, elementtype.AType)

	case "b", "big", "code", "em", "font", "i", "s", "small", "strike", "strong", "tt", "u":
		return false, d.insertAndTrackFormatting(t, elementtype.Lookup(elementtype.HTML, t.Name))

	case "nobr":
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		if elementInScope(d.openElements, elementtype.NobrType) {
			d.parseError(perr.MisnestedTag, "nobr")
			if err := d.runAdoptionAgency("nobr"); err != nil {
				return false, err
			}
			if err := d.reconstructActiveFormattingElements(); err != nil {
				return false, err
			}
		}
		return false, d.insertAndTrackFormatting(t, elementtype.NobrType)

	case "applet", "marquee", "object":
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		if _, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.afe.pushMarker()
		d.framesetOK = false
		return false, nil

	case "table":
		if d.quirksSet {
			if err := d.closeParagraphIfInButtonScope(); err != nil {
				return false, err
			}
		}
		if _, err := d.insertHTMLElement("table", elementtype.TableType, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.framesetOK = false
		d.mode = modeInTable
		return false, nil

	case "area", "br", "embed", "img", "keygen", "wbr":
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		if _, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.framesetOK = false
		return false, d.openElements.pop(d.h)

	case "input":
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		if _, err := d.insertHTMLElement("input", elementtype.InputType, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		if !hasAttrValueFold(t.Attributes, "type", "hidden") {
			d.framesetOK = false
		}
		return false, d.openElements.pop(d.h)

	case "param", "source", "track":
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		if _, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		return false, d.openElements.pop(d.h)

	case "hr":
		if err := d.closeParagraphIfInButtonScope(); err != nil {
			return false, err
		}
		if _, err := d.insertHTMLElement("hr", elementtype.HRType, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.framesetOK = false
		return false, d.openElements.pop(d.h)

	case "image":
		d.parseError(perr.UnexpectedToken, "image")
		t.Name = "img"
		return d.inBodyStartTag(t)

	case "textarea":
		if _, err := d.insertHTMLElement("textarea", elementtype.TextareaType, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.tok.SetContentModel(tokenizer.RCDATA, "textarea")
		d.originalMode = d.mode
		d.mode = modeText
		d.framesetOK = false
		return false, nil

	case "xmp":
		if err := d.closeParagraphIfInButtonScope(); err != nil {
			return false, err
		}
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		d.framesetOK = false
		return false, d.parseRAWTEXT(t)

	case "iframe":
		d.framesetOK = false
		return false, d.parseRAWTEXT(t)

	case "noembed":
		return false, d.parseRAWTEXT(t)

	case "noscript":
		if d.scripting {
			return false, d.parseRAWTEXT(t)
		}

	case "select":
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		if _, err := d.insertHTMLElement("select", elementtype.SelectType, tokAttrs(t.Attributes)); err != nil {
			return false, err
		}
		d.framesetOK = false
		switch d.mode {
		case modeInTable, modeInCaption, modeInTableBody, modeInRow, modeInCell:
			d.mode = modeInSelectInTable
		default:
			d.mode = modeInSelect
		}
		return false, nil

	case "optgroup", "option":
		if f := d.openElements.top(); f != nil && f.namespace == "" && f.typ == elementtype.OptionType {
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
		}
		if err := d.reconstructActiveFormattingElements(); err != nil {
			return false, err
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
		return false, err

	case "rb", "rtc":
		if elementInScope(d.openElements, elementtype.RubyType) {
			if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
				return false, err
			}
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
		return false, err

	case "rp", "rt":
		if elementInScope(d.openElements, elementtype.RubyType) {
			if err := d.generateImpliedEndTagsExceptRtc(); err != nil {
				return false, err
			}
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
		return false, err

	case "math":
		return false, d.insertForeignStartTag(t, "math")
	case "svg":
		return false, d.insertForeignStartTag(t, "svg")

	case "caption", "col", "colgroup", "frame", "head", "tbody", "td", "tfoot", "th", "thead", "tr":
		d.parseError(perr.StrayStartTag, t.Name)
		return false, nil
	}

	if err := d.reconstructActiveFormattingElements(); err != nil {
		return false, err
	}
	et := elementtype.Lookup(elementtype.HTML, t.Name)
	_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
	return false, err
}

func (d *Driver) generateImpliedEndTagsExceptRtc() error {
	for {
		f := d.openElements.top()
		if f == nil || f.namespace != "" || f.typ == elementtype.RtcType || !impliedEndTag[f.typ] {
			return nil
		}
		if err := d.openElements.pop(d.h); err != nil {
			return err
		}
	}
}

func (d *Driver) insertAndTrackFormatting(t tokenizer.Token, et elementtype.Type) error {
	if err := d.reconstructActiveFormattingElements(); err != nil {
		return err
	}
	attrs := tokAttrs(t.Attributes)
	n, err := d.insertHTMLElement(t.Name, et, attrs)
	if err != nil {
		return err
	}
	d.pushFormatting(frame{namespace: "", typ: et, name: t.Name, node: n}, attrs)
	return nil
}

func (d *Driver) insertListItem(t tokenizer.Token, et elementtype.Type, stopAt []elementtype.Type) error {
	d.framesetOK = false
loop:
	for i := len(d.openElements) - 1; i >= 0; i-- {
		f := d.openElements[i]
		if f.namespace != "" {
			continue
		}
		for _, s := range stopAt {
			if f.typ == s {
				if err := d.generateImpliedEndTags(s); err != nil {
					return err
				}
				if top := d.openElements.top(); top == nil || top.namespace != "" || top.typ != s {
					d.parseError(perr.MisnestedTag, t.Name)
				}
				if err := d.openElements.popUntil(d.h, s); err != nil {
					return err
				}
				break loop
			}
		}
		if specialTypes[f.typ] && f.typ != elementtype.AddressType && f.typ != elementtype.DivType && f.typ != elementtype.PType {
			break
		}
	}
	if err := d.closeParagraphIfInButtonScope(); err != nil {
		return err
	}
	_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
	return err
}

func hasAttrValueFold(attrs []tokenizer.Attribute, name, value string) bool {
	for _, a := range attrs {
		if a.Name == name {
			return strings.EqualFold(a.Value, value)
		}
	}
	return false
}

func (d *Driver) inBodyEndTag(t tokenizer.Token) (bool, error) {
	switch t.Name {
	case "template":
		return d.inHead(t)

	case "body":
		if !elementInScope(d.openElements, elementtype.BodyType) {
			d.parseError(perr.StrayEndTag, "body")
			return false, nil
		}
		d.mode = modeAfterBody
		return false, nil

	case "html":
		if !elementInScope(d.openElements, elementtype.BodyType) {
			d.parseError(perr.StrayEndTag, "html")
			return false, nil
		}
		d.mode = modeAfterBody
		return true, nil

	case "address", "article", "aside", "blockquote", "button", "center", "details",
		"dialog", "dir", "div", "dl", "fieldset", "figcaption", "figure", "footer",
		"header", "hgroup", "listing", "main", "menu", "nav", "ol", "pre", "section",
		"summary", "ul":
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		if !elementInScope(d.openElements, et) {
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
		if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
			return false, err
		}
		if top := d.openElements.top(); top == nil || top.typ != et {
			d.parseError(perr.MisnestedTag, t.Name)
		}
		return false, d.openElements.popUntil(d.h, et)

	case "form":
		if !d.openElements.contains(elementtype.TemplateType) {
			node := d.formPointer
			d.formPointer = nil
			d.hasForm = false
			if node == nil || d.openElements.index(node) < 0 || !elementInScope(d.openElements, elementtype.FormType) {
				d.parseError(perr.StrayEndTag, "form")
				return false, nil
			}
			if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
				return false, err
			}
			if top := d.openElements.top(); top == nil || top.node != node {
				d.parseError(perr.MisnestedTag, "form")
			}
			if i := d.openElements.index(node); i >= 0 {
				f := d.openElements[i]
				d.openElements = append(d.openElements[:i], d.openElements[i+1:]...)
				return false, d.h.UnrefNode(f.node)
			}
			return false, nil
		}
		if !elementInScope(d.openElements, elementtype.FormType) {
			d.parseError(perr.StrayEndTag, "form")
			return false, nil
		}
		if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
			return false, err
		}
		if top := d.openElements.top(); top == nil || top.typ != elementtype.FormType {
			d.parseError(perr.MisnestedTag, "form")
		}
		return false, d.openElements.popUntil(d.h, elementtype.FormType)

	case "p":
		if !elementInButtonScope(d.openElements, elementtype.PType) {
			d.parseError(perr.StrayEndTag, "p")
			if _, err := d.insertHTMLElement("p", elementtype.PType, nil); err != nil {
				return false, err
			}
		}
		return false, d.closePElement()

	case "li":
		if !elementInListItemScope(d.openElements, elementtype.LIType) {
			d.parseError(perr.StrayEndTag, "li")
			return false, nil
		}
		if err := d.generateImpliedEndTags(elementtype.LIType); err != nil {
			return false, err
		}
		if top := d.openElements.top(); top == nil || top.typ != elementtype.LIType {
			d.parseError(perr.MisnestedTag, "li")
		}
		return false, d.openElements.popUntil(d.h, elementtype.LIType)

	case "dd", "dt":
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		if !elementInScope(d.openElements, et) {
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
		if err := d.generateImpliedEndTags(et); err != nil {
			return false, err
		}
		if top := d.openElements.top(); top == nil || top.typ != et {
			d.parseError(perr.MisnestedTag, t.Name)
		}
		return false, d.openElements.popUntil(d.h, et)

	case "h1", "h2", "h3", "h4", "h5", "h6":
		if !d.anyHeadingInScope() {
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
		if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
			return false, err
		}
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		if top := d.openElements.top(); top == nil || top.typ != et {
			d.parseError(perr.MisnestedTag, t.Name)
		}
		for {
			f := d.openElements.top()
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			if f != nil && f.namespace == "" && headingTypes[f.typ] {
				return false, nil
			}
		}

	case "a", "b", "big", "code", "em", "font", "i", "nobr", "s", "small", "strike", "strong", "tt", "u":
		return false, d.runAdoptionAgency(t.Name)

	case "applet", "marquee", "object":
		et := elementtype.Lookup(elementtype.HTML, t.Name)
		if !elementInScope(d.openElements, et) {
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
		if err := d.generateImpliedEndTags(elementtype.Unknown); err != nil {
			return false, err
		}
		if top := d.openElements.top(); top == nil || top.typ != et {
			d.parseError(perr.MisnestedTag, t.Name)
		}
		if err := d.openElements.popUntil(d.h, et); err != nil {
			return false, err
		}
		return false, d.afe.clearToMarker(d.h)

	case "br":
		d.parseError(perr.StrayEndTag, "br")
		fake := tokenizer.Token{Kind: tokenizer.StartTagToken, Name: "br"}
		_, err := d.inBodyStartTag(fake)
		return false, err
	}

	return false, d.anyOtherEndTag(t.Name)
}

func (d *Driver) anyHeadingInScope() bool {
	for h := range headingTypes {
		if elementInScope(d.openElements, h) {
			return true
		}
	}
	return false
}

// anyOtherEndTag implements HTML5's generic "any other end tag" step
// (§12.2.6.4.7): walk the stack looking for a same-named element, closing
// through it, or bail with a parse error on hitting a special element.
func (d *Driver) anyOtherEndTag(name string) error {
	et := elementtype.Lookup(elementtype.HTML, name)
	for i := len(d.openElements) - 1; i >= 0; i-- {
		f := d.openElements[i]
		if f.namespace == "" && f.typ == et {
			if err := d.generateImpliedEndTags(et); err != nil {
				return err
			}
			if top := d.openElements.top(); top == nil || top.typ != et {
				d.parseError(perr.MisnestedTag, name)
			}
			return d.openElements.popUntil(d.h, et)
		}
		if f.namespace == "" && specialTypes[f.typ] {
			d.parseError(perr.StrayEndTag, name)
			return nil
		}
	}
	d.parseError(perr.StrayEndTag, name)
	return nil
}

func (d *Driver) insertForeignStartTag(t tokenizer.Token, ns string) error {
	if err := d.reconstructActiveFormattingElements(); err != nil {
		return err
	}
	var et elementtype.Type
	if ns == "math" {
		et = elementtype.Lookup(elementtype.MathML, t.Name)
	} else {
		et = elementtype.Lookup(elementtype.SVG, t.Name)
	}
	attrs := adjustForeignAttributes(ns, tokAttrs(t.Attributes))
	_, err := d.insertForeignElement(ns, et, t.Name, attrs, false)
	if err != nil {
		return err
	}
	if t.SelfClosing {
		return d.openElements.pop(d.h)
	}
	return nil
}

// inText implements the "text" insertion mode (HTML5 §12.2.6.4.8): used
// while inside a script/RCDATA/RAWTEXT element's content.
func (d *Driver) inText(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		return false, d.insertCharacter(t.Data, false)
	case tokenizer.EOFToken:
		d.parseError(perr.EOFInTag, "")
		if f := d.openElements.top(); f != nil && f.namespace == "" && f.typ == elementtype.ScriptType {
			// scripting "already started" bookkeeping is an embedder concern.
		}
		if err := d.openElements.pop(d.h); err != nil {
			return false, err
		}
		d.mode = d.originalMode
		return true, nil
	case tokenizer.EndTagToken:
		if err := d.openElements.pop(d.h); err != nil {
			return false, err
		}
		d.mode = d.originalMode
		return false, nil
	}
	return false, nil
}
