package treebuilder

import (
	"strings"

	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
)

// svgTagNameFixups corrects the case of a handful of SVG tag names the
// tokenizer lower-cases on the way in (HTML5 §13.2 "adjust SVG tag names").
var svgTagNameFixups = map[string]string{
	"altglyph":            "altGlyph",
	"altglyphdef":         "altGlyphDef",
	"altglyphitem":        "altGlyphItem",
	"animatecolor":        "animateColor",
	"animatemotion":       "animateMotion",
	"animatetransform":    "animateTransform",
	"clippath":            "clipPath",
	"feblend":             "feBlend",
	"fecolormatrix":       "feColorMatrix",
	"fecomponenttransfer": "feComponentTransfer",
	"fecomposite":         "feComposite",
	"feconvolvematrix":    "feConvolveMatrix",
	"fediffuselighting":   "feDiffuseLighting",
	"fedisplacementmap":   "feDisplacementMap",
	"fedistantlight":      "feDistantLight",
	"fedropshadow":        "feDropShadow",
	"feflood":             "feFlood",
	"fefunca":             "feFuncA",
	"fefuncb":             "feFuncB",
	"fefuncg":             "feFuncG",
	"fefuncr":             "feFuncR",
	"fegaussianblur":      "feGaussianBlur",
	"feimage":             "feImage",
	"femerge":             "feMerge",
	"femergenode":         "feMergeNode",
	"femorphology":        "feMorphology",
	"feoffset":            "feOffset",
	"fepointlight":        "fePointLight",
	"fespecularlighting":  "feSpecularLighting",
	"fespotlight":         "feSpotLight",
	"fetile":              "feTile",
	"feturbulence":        "feTurbulence",
	"foreignobject":       "foreignObject",
	"glyphref":            "glyphRef",
	"lineargradient":      "linearGradient",
	"radialgradient":      "radialGradient",
	"textpath":            "textPath",
}

// foreignAttrNamespaces handles the "xlink:*"/"xml:*"/plain "xmlns" colon-
// prefixed attribute renames of HTML5 §13.2 "adjust foreign attributes".
var foreignAttrNamespaces = map[string][2]string{
	"xlink:actuate": {"xlink", "actuate"}, "xlink:arcrole": {"xlink", "arcrole"},
	"xlink:href": {"xlink", "href"}, "xlink:role": {"xlink", "role"},
	"xlink:show": {"xlink", "show"}, "xlink:title": {"xlink", "title"},
	"xlink:type": {"xlink", "type"}, "xml:lang": {"xml", "lang"},
	"xml:space": {"xml", "space"}, "xmlns": {"", "xmlns"}, "xmlns:xlink": {"xmlns", "xlink"},
}

func adjustForeignAttributes(ns string, attrs []Attribute) []Attribute {
	out := make([]Attribute, len(attrs))
	for i, a := range attrs {
		if parts, ok := foreignAttrNamespaces[a.Name]; ok {
			out[i] = Attribute{Namespace: parts[0], Name: parts[1], Value: a.Value}
			continue
		}
		out[i] = a
	}
	_ = ns
	return out
}

// inForeignContent implements "parsing tokens in foreign content" (HTML5
// §13.2.6). It handles the small set of tokens with foreign-specific rules
// and otherwise inserts the element into the current foreign namespace,
// closing back to HTML content on a handful of break-out start tags.
func (d *Driver) inForeignContent(t tokenizer.Token) (bool, error) {
	switch t.Kind {
	case tokenizer.CharacterToken:
		if strings.ContainsRune(t.Data, 0) {
			d.parseError(perr.UnexpectedNUL, "")
		}
		if !isAllWhitespace(t.Data) {
			d.framesetOK = false
		}
		return false, d.insertCharacter(t.Data, false)

	case tokenizer.CommentToken:
		return false, d.insertComment(t.Data, nil)

	case tokenizer.DoctypeToken:
		d.parseError(perr.UnexpectedToken, "doctype")
		return false, nil

	case tokenizer.StartTagToken:
		if breakoutStartTags[t.Name] {
			d.parseError(perr.MisnestedTag, t.Name)
			for {
				f := d.openElements.top()
				if f == nil {
					break
				}
				if f.namespace == "" || isHTMLIntegrationPoint(*f) || isMathMLTextIntegrationPoint(*f) {
					break
				}
				if err := d.openElements.pop(d.h); err != nil {
					return false, err
				}
			}
			return true, nil
		}
		return false, d.insertForeignContentElement(t)

	case tokenizer.EndTagToken:
		if strings.EqualFold(t.Name, "script") {
			if f := d.openElements.top(); f != nil && f.namespace == "svg" && f.name == "script" {
				return false, d.openElements.pop(d.h)
			}
		}
		for i := len(d.openElements) - 1; i > 0; i-- {
			f := d.openElements[i]
			if strings.EqualFold(f.name, t.Name) {
				return false, d.openElements.popUntilIndex(d.h, i)
			}
			if d.openElements[i-1].namespace == "" {
				break
			}
		}
		return d.inBody(t)
	}
	return false, nil
}

var breakoutStartTags = map[string]bool{
	"b": true, "big": true, "blockquote": true, "body": true, "br": true, "center": true,
	"code": true, "dd": true, "div": true, "dl": true, "dt": true, "em": true,
	"embed": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "hr": true, "i": true, "img": true, "li": true, "listing": true,
	"menu": true, "meta": true, "nobr": true, "ol": true, "p": true, "pre": true,
	"ruby": true, "s": true, "small": true, "span": true, "strong": true, "strike": true,
	"sub": true, "sup": true, "table": true, "tt": true, "u": true, "ul": true, "var": true,
	"font": true, // only when it carries color/face/size, simplified to unconditional here
}

func isHTMLIntegrationPoint(f frame) bool {
	if f.namespace == "svg" {
		return f.typ == elementtype.ForeignObjectType || f.typ == elementtype.DescType || f.typ == elementtype.TitleSVGType
	}
	if f.namespace == "math" && f.typ == elementtype.AnnotationXMLType {
		return true
	}
	return false
}

func isMathMLTextIntegrationPoint(f frame) bool {
	if f.namespace != "math" {
		return false
	}
	switch f.typ {
	case elementtype.MiType, elementtype.MoType, elementtype.MnType, elementtype.MsType, elementtype.MtextType:
		return true
	}
	return false
}

// insertForeignContentElement inserts a start tag's element under the
// current adjusted namespace, applying SVG tag-name case fixups and
// foreign attribute namespace adjustments (HTML5 §13.2.6 "any other start
// tag").
func (d *Driver) insertForeignContentElement(t tokenizer.Token) error {
	f := d.adjustedCurrentNodeFrame()
	ns := "math"
	if f != nil {
		ns = f.namespace
	}
	name := t.Name
	var et elementtype.Type
	if ns == "svg" {
		if fixed, ok := svgTagNameFixups[name]; ok {
			name = fixed
		}
		et = elementtype.Lookup(elementtype.SVG, name)
	} else {
		et = elementtype.Lookup(elementtype.MathML, name)
	}
	attrs := adjustForeignAttributes(ns, tokAttrs(t.Attributes))
	if _, err := d.insertForeignElement(ns, et, name, attrs, false); err != nil {
		return err
	}
	if t.SelfClosing {
		if strings.EqualFold(name, "script") {
			// script-in-foreign-content execution is an embedder concern.
		}
		return d.openElements.pop(d.h)
	}
	return nil
}
