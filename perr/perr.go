// Package perr defines the closed set of parse-error identifiers shared by
// the tokenizer and treebuilder packages, and the position-carrying error
// value reported through the embedder's error handler.
package perr

import "fmt"

// Tag identifies a kind of parse error, using the error names from the
// HTML5 parsing-errors appendix (§13.1). The set is closed: new kinds
// require adding a constant here.
type Tag int

const (
	UnknownTag Tag = iota
	UnexpectedNUL
	UnexpectedQuestionMarkInsteadOfTagName
	EOFBeforeTagName
	InvalidFirstCharacterOfTagName
	MissingEndTagName
	EOFInTag
	EOFInScriptHTMLCommentLikeText
	UnexpectedEqualsSignBeforeAttributeName
	UnexpectedCharacterInAttributeName
	MissingAttributeValue
	UnexpectedCharacterInUnquotedAttributeValue
	MissingWhitespaceBetweenAttributes
	UnexpectedSolidusInTag
	CDATAInHTMLContent
	IncorrectlyOpenedComment
	AbruptClosingOfEmptyComment
	EOFInComment
	NestedComment
	IncorrectlyClosedComment
	EOFInDOCTYPE
	MissingWhitespaceBeforeDOCTYPEName
	MissingDOCTYPEName
	MissingWhitespaceAfterDOCTYPEPublicKeyword
	MissingDOCTYPEPublicIdentifier
	MissingQuoteBeforeDOCTYPEPublicIdentifier
	AbruptDOCTYPEPublicIdentifier
	MissingWhitespaceBetweenDOCTYPEPublicAndSystemIdentifiers
	MissingWhitespaceAfterDOCTYPESystemKeyword
	MissingDOCTYPESystemIdentifier
	MissingQuoteBeforeDOCTYPESystemIdentifier
	AbruptDOCTYPESystemIdentifier
	UnexpectedCharacterAfterDOCTYPESystemIdentifier
	EOFInCDATA
	InvalidCharacterSequenceAfterDOCTYPEName
	AbsenceOfDigitsInNumericCharacterReference
	UnknownNamedCharacterReference
	MissingSemicolonAfterCharacterReference
	NullCharacterReference
	CharacterReferenceOutsideUnicodeRange
	SurrogateCharacterReference
	NoncharacterCharacterReference
	ControlCharacterReference
	DuplicateAttribute
	EndTagWithAttributes
	EndTagWithTrailingSolidus
	NonVoidHTMLElementStartTagWithTrailingSolidus
	UnexpectedNullCharacter

	// Tree-construction errors (HTML5 §12.2.6).
	UnexpectedToken
	StrayStartTag
	StrayEndTag
	MisnestedTag
	AdoptionAgencyRanTooLong
	FosterParenting
	UnclosedElements
)

var names = map[Tag]string{
	UnknownTag:                                                  "unknown",
	UnexpectedNUL:                                                "unexpected-null-character",
	UnexpectedQuestionMarkInsteadOfTagName:                       "unexpected-question-mark-instead-of-tag-name",
	EOFBeforeTagName:                                             "eof-before-tag-name",
	InvalidFirstCharacterOfTagName:                               "invalid-first-character-of-tag-name",
	MissingEndTagName:                                            "missing-end-tag-name",
	EOFInTag:                                                     "eof-in-tag",
	EOFInScriptHTMLCommentLikeText:                               "eof-in-script-html-comment-like-text",
	UnexpectedEqualsSignBeforeAttributeName:                      "unexpected-equals-sign-before-attribute-name",
	UnexpectedCharacterInAttributeName:                           "unexpected-character-in-attribute-name",
	MissingAttributeValue:                                        "missing-attribute-value",
	UnexpectedCharacterInUnquotedAttributeValue:                  "unexpected-character-in-unquoted-attribute-value",
	MissingWhitespaceBetweenAttributes:                           "missing-whitespace-between-attributes",
	UnexpectedSolidusInTag:                                       "unexpected-solidus-in-tag",
	CDATAInHTMLContent:                                           "cdata-in-html-content",
	IncorrectlyOpenedComment:                                     "incorrectly-opened-comment",
	AbruptClosingOfEmptyComment:                                  "abrupt-closing-of-empty-comment",
	EOFInComment:                                                 "eof-in-comment",
	NestedComment:                                                "nested-comment",
	IncorrectlyClosedComment:                                     "incorrectly-closed-comment",
	EOFInDOCTYPE:                                                 "eof-in-doctype",
	MissingWhitespaceBeforeDOCTYPEName:                           "missing-whitespace-before-doctype-name",
	MissingDOCTYPEName:                                           "missing-doctype-name",
	MissingWhitespaceAfterDOCTYPEPublicKeyword:                   "missing-whitespace-after-doctype-public-keyword",
	MissingDOCTYPEPublicIdentifier:                               "missing-doctype-public-identifier",
	MissingQuoteBeforeDOCTYPEPublicIdentifier:                    "missing-quote-before-doctype-public-identifier",
	AbruptDOCTYPEPublicIdentifier:                                "abrupt-doctype-public-identifier",
	MissingWhitespaceBetweenDOCTYPEPublicAndSystemIdentifiers:    "missing-whitespace-between-doctype-public-and-system-identifiers",
	MissingWhitespaceAfterDOCTYPESystemKeyword:                   "missing-whitespace-after-doctype-system-keyword",
	MissingDOCTYPESystemIdentifier:                               "missing-doctype-system-identifier",
	MissingQuoteBeforeDOCTYPESystemIdentifier:                    "missing-quote-before-doctype-system-identifier",
	AbruptDOCTYPESystemIdentifier:                                "abrupt-doctype-system-identifier",
	UnexpectedCharacterAfterDOCTYPESystemIdentifier:              "unexpected-character-after-doctype-system-identifier",
	EOFInCDATA:                                                   "eof-in-cdata",
	InvalidCharacterSequenceAfterDOCTYPEName:                     "invalid-character-sequence-after-doctype-name",
	AbsenceOfDigitsInNumericCharacterReference:                   "absence-of-digits-in-numeric-character-reference",
	UnknownNamedCharacterReference:                               "unknown-named-character-reference",
	MissingSemicolonAfterCharacterReference:                      "missing-semicolon-after-character-reference",
	NullCharacterReference:                                       "null-character-reference",
	CharacterReferenceOutsideUnicodeRange:                        "character-reference-outside-unicode-range",
	SurrogateCharacterReference:                                  "surrogate-character-reference",
	NoncharacterCharacterReference:                                "noncharacter-character-reference",
	ControlCharacterReference:                                    "control-character-reference",
	DuplicateAttribute:                                           "duplicate-attribute",
	EndTagWithAttributes:                                         "end-tag-with-attributes",
	EndTagWithTrailingSolidus:                                    "end-tag-with-trailing-solidus",
	NonVoidHTMLElementStartTagWithTrailingSolidus:                "non-void-html-element-start-tag-with-trailing-solidus",
	UnexpectedNullCharacter:                                      "unexpected-null-character",
	UnexpectedToken:                                              "unexpected-token",
	StrayStartTag:                                                "stray-start-tag",
	StrayEndTag:                                                  "stray-end-tag",
	MisnestedTag:                                                 "misnested-tag",
	AdoptionAgencyRanTooLong:                                     "adoption-agency-ran-too-long",
	FosterParenting:                                              "foster-parenting",
	UnclosedElements:                                             "unclosed-elements",
}

// String returns the stable, lower-kebab-case identifier for the tag, the
// form surfaced to the error handler callback.
func (t Tag) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "unknown"
}

// Error carries a source position alongside a Tag: (line, column, tag).
type Error struct {
	Line    int
	Column  int
	Tag     Tag
	Context string // optional free-text context, e.g. the offending tag name
}

func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%d:%d: %s (%s)", e.Line, e.Column, e.Tag, e.Context)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Tag)
}

// Handler receives non-fatal parse errors as they are discovered. It never
// aborts tokenization or tree construction.
type Handler func(e *Error)
