package treebuilder

import (
	"strings"

	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
)

func isWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// splitLeadingWhitespace splits s into its leading run of HTML whitespace
// and the remainder, used by every mode that treats whitespace characters
// specially before falling through to the "any other character" branch.
func splitLeadingWhitespace(s string) (ws, rest string) {
	for i, r := range s {
		if !isWhitespace(r) {
			return s[:i], s[i:]
		}
	}
	return s, ""
}

func isAllWhitespace(s string) bool {
	for _, r := range s {
		if !isWhitespace(r) {
			return false
		}
	}
	return true
}

// inInitial implements the "initial" insertion mode (HTML5 §12.2.6.4.1).
func (d *Driver) inInitial(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		ws, rest := splitLeadingWhitespace(t.Data)
		_ = ws
		if rest == "" {
			return false, nil
		}
	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, d.document)
	case tokenizer.DoctypeToken:
		quirks := NoQuirks
		if t.ForceQuirks || !isHTML5Doctype(t) {
			quirks = determineQuirksMode(t)
		}
		d.quirksSet = true
		if err := d.h.SetQuirksMode(quirks); err != nil {
			return false, err
		}
		name := t.Name
		if t.NameMissing {
			name = ""
		}
		pub, sys := "", ""
		if !t.PublicMissing {
			pub = t.PublicID
		}
		if !t.SystemMissing {
			sys = t.SystemID
		}
		if err := d.insertDoctype(DoctypeSpec{Name: name, PublicID: pub, SystemID: sys}); err != nil {
			return false, err
		}
		d.mode = modeBeforeHTML
		return false, nil
	}
	d.mode = modeBeforeHTML
	return true, nil
}

func isHTML5Doctype(t tokenizer.Token) bool {
	return strings.EqualFold(t.Name, "html") && t.PublicMissing && t.SystemMissing
}

// determineQuirksMode implements the quirks-mode table of HTML5 §12.2.5.2,
// given a non-trivial DOCTYPE token.
func determineQuirksMode(t tokenizer.Token) QuirksMode {
	if t.ForceQuirks {
		return FullQuirks
	}
	if !strings.EqualFold(t.Name, "html") {
		return FullQuirks
	}
	pub := strings.ToLower(t.PublicID)
	sys := strings.ToLower(t.SystemID)
	if !t.PublicMissing {
		for _, p := range quirksPublicPrefixes {
			if strings.HasPrefix(pub, p) {
				return FullQuirks
			}
		}
		if pub == "-//w3o//dtd w3 html strict 3.0//en//" || pub == "-/w3d/dtd html 4.0 transitional/en" || pub == "html" {
			return FullQuirks
		}
	}
	if !t.SystemMissing && sys == "http://www.ibm.com/data/dtd/v11/ibmxhtml1-transitional.dtd" {
		return FullQuirks
	}
	if t.SystemMissing {
		for _, p := range limitedQuirksPublicPrefixesNoSystem {
			if strings.HasPrefix(pub, p) {
				return FullQuirks
			}
		}
	}
	for _, p := range limitedQuirksPublicPrefixes {
		if strings.HasPrefix(pub, p) {
			return LimitedQuirks
		}
	}
	return NoQuirks
}

var quirksPublicPrefixes = []string{
	"-//advasoft ltd//dtd html 3.0 aswedit + extensions//", "-//as//dtd html 3.0 aswedit + extensions//",
	"-//ietf//dtd html 2.0//", "-//ietf//dtd html 2.1e//", "-//ietf//dtd html 3.0//",
	"-//ietf//dtd html 3.2 final//", "-//ietf//dtd html 3.2//", "-//ietf//dtd html 3//",
	"-//ietf//dtd html level 0//", "-//ietf//dtd html level 1//", "-//ietf//dtd html level 2//",
	"-//ietf//dtd html level 3//", "-//ietf//dtd html strict level 0//", "-//ietf//dtd html strict level 1//",
	"-//ietf//dtd html strict level 2//", "-//ietf//dtd html strict level 3//", "-//ietf//dtd html strict//",
	"-//ietf//dtd html//", "-//metrius//dtd metrius presentational//",
	"-//microsoft//dtd internet explorer 2.0 html strict//", "-//microsoft//dtd internet explorer 2.0 html//",
	"-//microsoft//dtd internet explorer 2.0 tables//", "-//microsoft//dtd internet explorer 3.0 html strict//",
	"-//microsoft//dtd internet explorer 3.0 html//", "-//microsoft//dtd internet explorer 3.0 tables//",
	"-//netscape comm. corp.//dtd html//", "-//netscape comm. corp.//dtd strict html//",
	"-//o'reilly and associates//dtd html 2.0//", "-//o'reilly and associates//dtd html extended 1.0//",
	"-//o'reilly and associates//dtd html extended relaxed 1.0//",
	"-//sq//dtd html 2.0 hotmetal + extensions//",
	"-//softquad software//dtd hotmetal pro 6.0::19990601::extensions to html 4.0//",
	"-//softquad//dtd hotmetal pro 4.0::19971010::extensions to html 4.0//",
	"-//spyglass//dtd html 2.0 extended//", "-//sun microsystems corp.//dtd hotjava html//",
	"-//sun microsystems corp.//dtd hotjava strict html//", "-//w3c//dtd html 3 1995-03-24//",
	"-//w3c//dtd html 3.2 draft//", "-//w3c//dtd html 3.2 final//", "-//w3c//dtd html 3.2//",
	"-//w3c//dtd html 3.2s draft//", "-//w3c//dtd html 4.0 frameset//", "-//w3c//dtd html 4.0 transitional//",
	"-//w3c//dtd html experimental 19960712//", "-//w3c//dtd html experimental 970421//",
	"-//w3c//dtd w3 html//", "-//w3o//dtd w3 html 3.0//", "-//webtechs//dtd mozilla html 2.0//",
	"-//webtechs//dtd mozilla html//",
}

var limitedQuirksPublicPrefixes = []string{
	"-//w3c//dtd xhtml 1.0 frameset//", "-//w3c//dtd xhtml 1.0 transitional//",
}

var limitedQuirksPublicPrefixesNoSystem = []string{
	"-//w3c//dtd html 4.01 frameset//", "-//w3c//dtd html 4.01 transitional//",
}

// inBeforeHTML implements "before html" (HTML5 §12.2.6.4.2).
func (d *Driver) inBeforeHTML(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.DoctypeToken:
		d.parseError(perr.UnexpectedToken, "doctype")
		return false, nil
	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, d.document)
	case tokenizer.CharacterToken:
		_, rest := splitLeadingWhitespace(t.Data)
		if rest == "" {
			return false, nil
		}
	case tokenizer.StartTagToken:
		if t.Name == "html" {
			n, err := d.insertForeignElement("", elementtype.HTMLType, "html", tokAttrs(t.Attributes), false)
			if err != nil {
				return false, err
			}
			_, err = d.h.AppendChild(d.document, n)
			d.mode = modeBeforeHead
			return false, err
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "head", "body", "html", "br":
		default:
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
	}
	if err := d.createImpliedHTMLElement(); err != nil {
		return false, err
	}
	d.mode = modeBeforeHead
	return true, nil
}

// createImpliedHTMLElement inserts an html element with no attributes, used
// whenever a mode falls through to its "anything else" branch before the
// root element exists.
func (d *Driver) createImpliedHTMLElement() error {
	n, err := d.insertForeignElement("", elementtype.HTMLType, "html", nil, false)
	if err != nil {
		return err
	}
	_, err = d.h.AppendChild(d.document, n)
	return err
}

func tokAttrs(in []tokenizer.Attribute) []Attribute {
	if len(in) == 0 {
		return nil
	}
	out := make([]Attribute, len(in))
	for i, a := range in {
		out[i] = Attribute{Name: a.Name, Value: a.Value}
	}
	return out
}

// inBeforeHead implements "before head" (HTML5 §12.2.6.4.3).
func (d *Driver) inBeforeHead(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		_, rest := splitLeadingWhitespace(t.Data)
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
		case "head":
			n, err := d.insertHTMLElement("head", elementtype.HeadType, tokAttrs(t.Attributes))
			if err != nil {
				return false, err
			}
			d.headPointer = n
			d.hasHead = true
			d.mode = modeInHead
			return false, nil
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "head", "body", "html", "br":
		default:
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
	}
	n, err := d.insertHTMLElement("head", elementtype.HeadType, nil)
	if err != nil {
		return false, err
	}
	d.headPointer = n
	d.hasHead = true
	d.mode = modeInHead
	return true, nil
}

// inHead implements "in head" (HTML5 §12.2.6.4.4).
func (d *Driver) inHead(t tokenizer.Token) (bool, error) {
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
		case "base", "basefont", "bgsound", "link":
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
			if err != nil {
				return false, err
			}
			return false, d.openElements.pop(d.h)
		case "meta":
			et := elementtype.Lookup(elementtype.HTML, t.Name)
			_, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes))
			if err != nil {
				return false, err
			}
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.tryChangeEncodingFromMeta(t.Attributes)
			return false, nil
		case "title":
			return false, d.parseRCDATA(t)
		case "noscript":
			if !d.scripting {
				if _, err := d.insertHTMLElement("noscript", elementtype.NoscriptType, tokAttrs(t.Attributes)); err != nil {
					return false, err
				}
				d.mode = modeInHeadNoscript
				return false, nil
			}
			return false, d.parseRAWTEXT(t)
		case "noframes", "style":
			return false, d.parseRAWTEXT(t)
		case "script":
			return false, d.insertScriptElement(t)
		case "template":
			if _, err := d.insertHTMLElement("template", elementtype.TemplateType, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			d.afe.pushMarker()
			d.framesetOK = false
			d.mode = modeInTemplate
			d.templateModes.push(modeInTemplate)
			return false, nil
		case "head":
			d.parseError(perr.StrayStartTag, "head")
			return false, nil
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "head":
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeAfterHead
			return false, nil
		case "body", "html", "br":
		case "template":
			return false, d.endTemplateTag()
		default:
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
	}
	if err := d.openElements.pop(d.h); err != nil {
		return false, err
	}
	d.mode = modeAfterHead
	return true, nil
}

// parseRCDATA implements "generic raw text element parsing algorithm" with
// the RCDATA content model (HTML5 §12.2.6.2), used by title. The textarea
// start tag and the fragment-context setup set the RCDATA model directly.
func (d *Driver) parseRCDATA(t tokenizer.Token) error {
	et := elementtype.Lookup(elementtype.HTML, t.Name)
	if _, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes)); err != nil {
		return err
	}
	d.tok.SetContentModel(tokenizer.RCDATA, t.Name)
	d.originalMode = d.mode
	d.mode = modeText
	return nil
}

// parseRAWTEXT is the same algorithm with the RAWTEXT content model.
func (d *Driver) parseRAWTEXT(t tokenizer.Token) error {
	et := elementtype.Lookup(elementtype.HTML, t.Name)
	if _, err := d.insertHTMLElement(t.Name, et, tokAttrs(t.Attributes)); err != nil {
		return err
	}
	d.tok.SetContentModel(tokenizer.CDATA, t.Name)
	d.originalMode = d.mode
	d.mode = modeText
	return nil
}

// insertScriptElement implements the (simplified) "script" start tag steps
// of HTML5 §12.2.6.4.4/§12.2.6.4.7: insert the element, switch the
// tokenizer to script-data content, and switch to Text mode. The full
// algorithm's "already started"/execution-nesting bookkeeping is left to
// the embedder; this library does not execute scripts.
func (d *Driver) insertScriptElement(t tokenizer.Token) error {
	if _, err := d.insertHTMLElement("script", elementtype.ScriptType, tokAttrs(t.Attributes)); err != nil {
		return err
	}
	d.tok.SetContentModel(tokenizer.ScriptData, "script")
	d.originalMode = d.mode
	d.mode = modeText
	return nil
}

// inHeadNoscript implements "in head noscript" (HTML5 §12.2.6.4.5).
func (d *Driver) inHeadNoscript(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.DoctypeToken:
		d.parseError(perr.UnexpectedToken, "doctype")
		return false, nil
	case tokenizer.StartTagToken:
		switch t.Name {
		case "html":
			return d.inBody(t)
		case "basefont", "bgsound", "link", "meta", "noframes", "style":
			return d.inHead(t)
		case "head", "noscript":
			d.parseError(perr.StrayStartTag, t.Name)
			return false, nil
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "noscript":
			if err := d.openElements.pop(d.h); err != nil {
				return false, err
			}
			d.mode = modeInHead
			return false, nil
		case "br":
		default:
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
	case tokenizer.CharacterToken:
		if isAllWhitespace(t.Data) {
			return d.inHead(t)
		}
	case tokenizer.CommentToken:
		return d.inHead(t)
	}
	d.parseError(perr.StrayEndTag, "noscript")
	if err := d.openElements.pop(d.h); err != nil {
		return false, err
	}
	d.mode = modeInHead
	return true, nil
}

// inAfterHead implements "after head" (HTML5 §12.2.6.4.6).
func (d *Driver) inAfterHead(t tokenizer.Token) (bool, error) {
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
		case "body":
			if _, err := d.insertHTMLElement("body", elementtype.BodyType, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			d.framesetOK = false
			d.mode = modeInBody
			return false, nil
		case "frameset":
			if _, err := d.insertHTMLElement("frameset", elementtype.FramesetType, tokAttrs(t.Attributes)); err != nil {
				return false, err
			}
			d.mode = modeInFrameset
			return false, nil
		case "base", "basefont", "bgsound", "link", "meta", "noframes", "script", "style", "template", "title":
			d.parseError(perr.StrayStartTag, t.Name)
			if d.hasHead {
				if err := d.h.RefNode(d.headPointer); err != nil {
					return false, err
				}
				d.openElements.push(*d.frameForNode(d.headPointer))
			}
			reprocess, err := d.inHead(t)
			if d.hasHead {
				// The head element need not be the current node here (script,
				// style, title and noframes leave their own element open).
				if i := d.openElements.index(d.headPointer); i >= 0 {
					d.openElements = append(d.openElements[:i], d.openElements[i+1:]...)
					if uerr := d.h.UnrefNode(d.headPointer); uerr != nil && err == nil {
						err = uerr
					}
				}
			}
			return reprocess, err
		case "head":
			d.parseError(perr.StrayStartTag, "head")
			return false, nil
		}
	case tokenizer.EndTagToken:
		switch t.Name {
		case "template":
			return d.inHead(t)
		case "body", "html", "br":
		default:
			d.parseError(perr.StrayEndTag, t.Name)
			return false, nil
		}
	}
	if _, err := d.insertHTMLElement("body", elementtype.BodyType, nil); err != nil {
		return false, err
	}
	d.mode = modeInBody
	return true, nil
}

// frameForNode builds a synthetic frame wrapping an already-created node,
// used by afterHead's "act as if in head" fallback which must temporarily
// push the (already popped) head element back onto the stack.
func (d *Driver) frameForNode(n Node) *frame {
	return &frame{namespace: "", typ: elementtype.HeadType, name: "head", node: n}
}

// tryChangeEncodingFromMeta implements the encoding-relevant half of HTML5
// §12.2.6.4.4's "meta" start tag steps: if a charset attribute or an
// http-equiv="Content-Type"/content="...charset=..." pair names an
// encoding, and the input stream hasn't yet committed non-ASCII content
// under a different guess, re-decode under the newly discovered encoding
// and record it so Parser.ParseChunk can report EncodingChangeRequired.
// Any failure (no candidate found, or the stream already locked) is a
// silent no-op, matching the algorithm's own early-return conditions.
func (d *Driver) tryChangeEncodingFromMeta(attrs []tokenizer.Attribute) {
	name := metaCharset(attrs)
	if name == "" {
		return
	}
	if err := d.tok.ChangeEncoding(name); err != nil {
		return
	}
	if d.h != nil {
		_ = d.h.ChangeEncoding(name)
	}
	d.encodingChange = name
	d.hasEncodingChange = true
}

// metaCharset extracts a candidate character encoding name from a <meta>
// element's attributes, per the WHATWG "extracting a character encoding
// from a meta element" algorithm: a charset attribute wins outright;
// otherwise an http-equiv="Content-Type" meta's content attribute is
// scanned for a charset= parameter.
func metaCharset(attrs []tokenizer.Attribute) string {
	var httpEquiv, content string
	for _, a := range attrs {
		switch strings.ToLower(a.Name) {
		case "charset":
			if a.Value != "" {
				return a.Value
			}
		case "http-equiv":
			httpEquiv = a.Value
		case "content":
			content = a.Value
		}
	}
	if !strings.EqualFold(httpEquiv, "Content-Type") {
		return ""
	}
	return charsetFromContentType(content)
}

// charsetFromContentType scans a Content-Type-shaped string such as
// "text/html; charset=utf-8" (optionally quoted) for its charset
// parameter, case-insensitively.
func charsetFromContentType(s string) string {
	lower := strings.ToLower(s)
	idx := strings.Index(lower, "charset")
	for idx >= 0 {
		rest := s[idx+len("charset"):]
		rest = strings.TrimLeft(rest, " \t\n\f\r")
		if strings.HasPrefix(rest, "=") {
			rest = strings.TrimLeft(rest[1:], " \t\n\f\r")
			rest = strings.Trim(rest, `"'`)
			var end int
			for end = 0; end < len(rest); end++ {
				switch rest[end] {
				case ';', ' ', '\t', '\n', '\f', '\r', '"', '\'':
					goto done
				}
			}
		done:
			if end > 0 {
				return rest[:end]
			}
		}
		next := strings.Index(lower[idx+1:], "charset")
		if next < 0 {
			break
		}
		idx = idx + 1 + next
	}
	return ""
}
