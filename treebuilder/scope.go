package treebuilder

import "github.com/gohubbub/hubbub/elementtype"

// scopeStopSet is the set of (namespace, type) pairs that halt a scope
// stack-walk, per HTML5 §12.2.4.2 "the stack of open elements" scope
// algorithms. One instance per scope kind.
type scopeStopSet struct {
	html   map[elementtype.Type]bool
	mathML map[elementtype.Type]bool
	svg    map[elementtype.Type]bool
}

func set(ts ...elementtype.Type) map[elementtype.Type]bool {
	m := make(map[elementtype.Type]bool, len(ts))
	for _, t := range ts {
		m[t] = true
	}
	return m
}

var defaultScope = scopeStopSet{
	html: set(elementtype.AppletType, elementtype.CaptionType, elementtype.HTMLType,
		elementtype.TableType, elementtype.TdType, elementtype.ThType,
		elementtype.MarqueeType, elementtype.ObjectType, elementtype.TemplateType),
	mathML: set(elementtype.AnnotationXMLType, elementtype.MiType, elementtype.MoType,
		elementtype.MnType, elementtype.MsType, elementtype.MtextType),
	svg: set(elementtype.DescType, elementtype.ForeignObjectType, elementtype.TitleSVGType),
}

var listItemScope = scopeStopSet{
	html: union(defaultScope.html, set(elementtype.OLType, elementtype.UlType)),
	mathML: defaultScope.mathML,
	svg:    defaultScope.svg,
}

var buttonScope = scopeStopSet{
	html: union(defaultScope.html, set(elementtype.ButtonType)),
	mathML: defaultScope.mathML,
	svg:    defaultScope.svg,
}

var tableScope = scopeStopSet{
	html: set(elementtype.HTMLType, elementtype.TableType, elementtype.TemplateType),
}

func union(a, b map[elementtype.Type]bool) map[elementtype.Type]bool {
	m := make(map[elementtype.Type]bool, len(a)+len(b))
	for k := range a {
		m[k] = true
	}
	for k := range b {
		m[k] = true
	}
	return m
}

// inScope walks the open-element stack from the top, returning true if t
// (in the HTML namespace) is reached before any of stop's stop elements.
func inScope(stack elementStack, stop scopeStopSet, ns string, t elementtype.Type) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.namespace == ns && f.typ == t {
			return true
		}
		switch f.namespace {
		case "":
			if stop.html[f.typ] {
				return false
			}
		case "math":
			if stop.mathML[f.typ] {
				return false
			}
		case "svg":
			if stop.svg[f.typ] {
				return false
			}
		}
	}
	return false
}

// inSelectScope implements "in select scope", whose stop set is everything
// except option/optgroup (HTML5 §12.2.4.2), the inverse shape every other
// scope predicate uses.
func inSelectScope(stack elementStack, t elementtype.Type) bool {
	for i := len(stack) - 1; i >= 0; i-- {
		f := stack[i]
		if f.namespace != "" {
			continue
		}
		if f.typ == t {
			return true
		}
		if f.typ != elementtype.OptionType && f.typ != elementtype.OptgroupType {
			return false
		}
	}
	return false
}

func elementInScope(stack elementStack, t elementtype.Type) bool {
	return inScope(stack, defaultScope, "", t)
}

func elementInListItemScope(stack elementStack, t elementtype.Type) bool {
	return inScope(stack, listItemScope, "", t)
}

func elementInButtonScope(stack elementStack, t elementtype.Type) bool {
	return inScope(stack, buttonScope, "", t)
}

func elementInTableScope(stack elementStack, t elementtype.Type) bool {
	return inScope(stack, tableScope, "", t)
}

// anyInTableScope reports whether any of the given types are in table
// scope, used by anyTableBodyInScope.
func anyInTableScope(stack elementStack, ts ...elementtype.Type) bool {
	for _, t := range ts {
		if elementInTableScope(stack, t) {
			return true
		}
	}
	return false
}
