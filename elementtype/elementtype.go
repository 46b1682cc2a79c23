// Package elementtype maps tag names to the closed set of element-type tags
// the tree-construction driver dispatches on: one constant per recognized
// HTML, MathML and SVG element, plus Unknown.
//
// Lookup is case-insensitive for the HTML namespace and case-sensitive for
// foreign content, matching the tokenizer's and treebuilder's respective
// namespace rules.
package elementtype

import "strings"

// Namespace identifies which of the three recognized content namespaces a
// tag name should be looked up in.
type Namespace int

const (
	HTML Namespace = iota
	MathML
	SVG
)

// Type is a closed enumeration of recognized element types. Unknown is the
// miss value: any tag name not present in the table.
type Type int

const (
	Unknown Type = iota

	// Document structure.
	HTMLType
	HeadType
	BodyType
	TitleType
	BaseType
	LinkType
	MetaType
	StyleType
	ScriptType
	NoscriptType
	NoframesType
	TemplateType

	// Sectioning / grouping content.
	AddressType
	ArticleType
	AsideType
	FooterType
	HeaderType
	H1Type
	H2Type
	H3Type
	H4Type
	H5Type
	H6Type
	HgroupType
	MainType
	NavType
	SectionType
	BlockquoteType
	DDType
	DivType
	DLType
	DTType
	FigcaptionType
	FigureType
	HRType
	LIType
	MenuType
	OLType
	PType
	PreType
	UlType
	ListingType

	// Text-level semantics.
	AType
	BType
	BrType
	CodeType
	EmType
	FontType
	IType
	ImageType
	NobrType
	SType
	SmallType
	SpanType
	StrikeType
	StrongType
	TTType
	UType
	BigType
	WbrType

	// Forms.
	ButtonType
	FieldsetType
	FormType
	InputType
	KeygenType
	LabelType
	LegendType
	MeterType
	OptgroupType
	OptionType
	OutputType
	ProgressType
	SelectType
	TextareaType

	// Embedded content.
	AppletType
	AreaType
	AudioType
	CanvasType
	EmbedType
	IframeType
	ImgType
	MapType
	ObjectType
	ParamType
	SourceType
	TrackType
	VideoType

	// Tables.
	CaptionType
	ColType
	ColgroupType
	TableType
	TbodyType
	TdType
	TfootType
	ThType
	TheadType
	TrType

	// Interactive / misc.
	DetailsType
	DialogType
	SummaryType
	DataType
	MarqueeType
	PlaintextType
	RbType
	RpType
	RtType
	RtcType
	RubyType
	XmpType

	// Frameset legacy content.
	FramesetType
	FrameType

	// Foreign-content roots and the text-integration points.
	MathType     // MathML math
	MiType
	MoType
	MnType
	MsType
	MtextType
	AnnotationXMLType
	SvgType // SVG svg
	DescType
	ForeignObjectType
	TitleSVGType
)

var htmlTable = map[string]Type{
	"html": HTMLType, "head": HeadType, "body": BodyType, "title": TitleType,
	"base": BaseType, "link": LinkType, "meta": MetaType, "style": StyleType,
	"script": ScriptType, "noscript": NoscriptType, "noframes": NoframesType,
	"template": TemplateType,

	"address": AddressType, "article": ArticleType, "aside": AsideType,
	"footer": FooterType, "header": HeaderType,
	"h1": H1Type, "h2": H2Type, "h3": H3Type, "h4": H4Type, "h5": H5Type, "h6": H6Type,
	"hgroup": HgroupType, "main": MainType, "nav": NavType, "section": SectionType,
	"blockquote": BlockquoteType, "dd": DDType, "div": DivType, "dl": DLType,
	"dt": DTType, "figcaption": FigcaptionType, "figure": FigureType, "hr": HRType,
	"li": LIType, "menu": MenuType, "ol": OLType, "p": PType, "pre": PreType,
	"ul": UlType, "listing": ListingType,

	"a": AType, "b": BType, "br": BrType, "code": CodeType, "em": EmType,
	"font": FontType, "i": IType, "image": ImageType, "nobr": NobrType, "s": SType,
	"small": SmallType, "span": SpanType, "strike": StrikeType, "strong": StrongType,
	"tt": TTType, "u": UType, "big": BigType, "wbr": WbrType,

	"button": ButtonType, "fieldset": FieldsetType, "form": FormType, "input": InputType,
	"keygen": KeygenType, "label": LabelType, "legend": LegendType, "meter": MeterType,
	"optgroup": OptgroupType, "option": OptionType, "output": OutputType,
	"progress": ProgressType, "select": SelectType, "textarea": TextareaType,

	"applet": AppletType, "area": AreaType, "audio": AudioType, "canvas": CanvasType,
	"embed": EmbedType, "iframe": IframeType, "img": ImgType, "map": MapType,
	"object": ObjectType, "param": ParamType, "source": SourceType, "track": TrackType,
	"video": VideoType,

	"caption": CaptionType, "col": ColType, "colgroup": ColgroupType, "table": TableType,
	"tbody": TbodyType, "td": TdType, "tfoot": TfootType, "th": ThType, "thead": TheadType,
	"tr": TrType,

	"details": DetailsType, "dialog": DialogType, "summary": SummaryType, "data": DataType,
	"marquee": MarqueeType, "plaintext": PlaintextType, "rb": RbType, "rp": RpType,
	"rt": RtType, "rtc": RtcType, "ruby": RubyType, "xmp": XmpType,

	"frameset": FramesetType, "frame": FrameType,
}

var mathMLTable = map[string]Type{
	"math": MathType, "mi": MiType, "mo": MoType, "mn": MnType, "ms": MsType,
	"mtext": MtextType, "annotation-xml": AnnotationXMLType,
}

var svgTable = map[string]Type{
	"svg": SvgType, "desc": DescType, "foreignObject": ForeignObjectType,
	"title": TitleSVGType,
}

// Lookup maps a tag name to its element Type within the given namespace.
// HTML lookup is case-insensitive (the name is lower-cased first); MathML
// and SVG lookups are case-sensitive, since SVG/MathML tag names are
// case-significant per their own namespaces (e.g. "foreignObject").
func Lookup(ns Namespace, name string) Type {
	switch ns {
	case MathML:
		if t, ok := mathMLTable[name]; ok {
			return t
		}
		return Unknown
	case SVG:
		if t, ok := svgTable[name]; ok {
			return t
		}
		return Unknown
	default:
		if t, ok := htmlTable[strings.ToLower(name)]; ok {
			return t
		}
		return Unknown
	}
}

// voidElements is the set of HTML element types that are never followed by
// a synthesized end tag by the tokenizer (HTML5 §12.1.2 "void elements").
var voidElements = map[Type]bool{
	AreaType: true, BaseType: true, BrType: true, ColType: true, EmbedType: true,
	HRType: true, ImgType: true, InputType: true, KeygenType: true, LinkType: true,
	MetaType: true, ParamType: true, SourceType: true, TrackType: true, WbrType: true,
}

// IsVoid reports whether t is one of the HTML void elements.
func IsVoid(t Type) bool {
	return voidElements[t]
}

// rawTextElements switch the tokenizer into RAWTEXT on start tag. "noembed"
// is deliberately absent from the closed Type enumeration (and so always
// reports Unknown from Lookup; see DESIGN.md) and never reaches this table.
var rawTextElements = map[Type]bool{
	StyleType: true, XmpType: true, IframeType: true, NoframesType: true,
}

// IsRawText reports whether starting this element should switch the
// tokenizer's content model to RAWTEXT.
func IsRawText(t Type) bool {
	return rawTextElements[t]
}
