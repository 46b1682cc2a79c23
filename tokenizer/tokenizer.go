// Package tokenizer implements the HTML5 tokenizer state machine (HTML5
// §12.2.5): it turns the character stream from inputstream.Stream into
// DOCTYPE, start-tag, end-tag, comment, character and end-of-file tokens.
package tokenizer

import (
	"strconv"
	"strings"

	"github.com/gohubbub/hubbub/inputstream"
	"github.com/gohubbub/hubbub/perr"
)

// ContentModel selects which family of states the tokenizer runs in: the
// "RAWTEXT state", "RCDATA state", "script data state" and "PLAINTEXT
// state" groups of HTML5 §12.2.5.
type ContentModel int

const (
	PCDATA ContentModel = iota
	RCDATA
	CDATA // RAWTEXT content
	ScriptData
	Plaintext
)

type state int

const (
	stData state = iota
	stTagOpen
	stEndTagOpen
	stTagName
	stRCDATALessThanSign
	stRCDATAEndTagOpen
	stRCDATAEndTagName
	stRAWTEXTLessThanSign
	stRAWTEXTEndTagOpen
	stRAWTEXTEndTagName
	stScriptDataLessThanSign
	stScriptDataEndTagOpen
	stScriptDataEndTagName
	stScriptDataEscapeStart
	stScriptDataEscapeStartDash
	stScriptDataEscaped
	stScriptDataEscapedDash
	stScriptDataEscapedDashDash
	stScriptDataEscapedLessThanSign
	stScriptDataEscapedEndTagOpen
	stScriptDataEscapedEndTagName
	stScriptDataDoubleEscapeStart
	stScriptDataDoubleEscaped
	stScriptDataDoubleEscapedDash
	stScriptDataDoubleEscapedDashDash
	stScriptDataDoubleEscapedLessThanSign
	stScriptDataDoubleEscapeEnd
	stPlaintext
	stBeforeAttributeName
	stAttributeName
	stAfterAttributeName
	stBeforeAttributeValue
	stAttributeValueDoubleQuoted
	stAttributeValueSingleQuoted
	stAttributeValueUnquoted
	stAfterAttributeValueQuoted
	stSelfClosingStartTag
	stBogusComment
	stMarkupDeclarationOpen
	stCommentStart
	stCommentStartDash
	stComment
	stCommentLessThanSign
	stCommentLessThanSignBang
	stCommentLessThanSignBangDash
	stCommentLessThanSignBangDashDash
	stCommentEndDash
	stCommentEnd
	stCommentEndBang
	stDOCTYPE
	stBeforeDOCTYPEName
	stDOCTYPEName
	stAfterDOCTYPEName
	stAfterDOCTYPEPublicKeyword
	stBeforeDOCTYPEPublicIdentifier
	stDOCTYPEPublicIdentifierDoubleQuoted
	stDOCTYPEPublicIdentifierSingleQuoted
	stAfterDOCTYPEPublicIdentifier
	stBetweenDOCTYPEPublicAndSystemIdentifiers
	stAfterDOCTYPESystemKeyword
	stBeforeDOCTYPESystemIdentifier
	stDOCTYPESystemIdentifierDoubleQuoted
	stDOCTYPESystemIdentifierSingleQuoted
	stAfterDOCTYPESystemIdentifier
	stBogusDOCTYPE
	stCDATASection
	stCDATASectionBracket
	stCDATASectionEnd
	stEOF
)

// attr is the attribute under construction.
type attr struct {
	name  []rune
	value []rune
}

// Tokenizer converts the character stream into tokens (HTML5 §12.2.5). It
// is suspend/resume safe at any byte boundary: all in-progress token state
// lives in struct fields, so Run can simply return when the input stream
// reports ErrNeedsMoreData and be called again later once more bytes have
// been appended.
type Tokenizer struct {
	in      *inputstream.Stream
	handler Handler
	errFn   perr.Handler

	state       state
	returnState state // for character-reference substates

	model ContentModel

	// lastStartTagName records the most recently emitted start tag's name,
	// used to recognize the "appropriate end tag token" that alone is
	// allowed to terminate RCDATA/RAWTEXT/script-data modes.
	lastStartTagName string

	// Token under construction.
	tagName      []rune
	tagIsEnd     bool
	selfClosing  bool
	attrs        []attr
	curAttr      attr
	haveCurAttr  bool

	docName          []rune
	docNameSet       bool
	docPublic        []rune
	docPublicSet     bool
	docSystem        []rune
	docSystemSet     bool
	docForceQuirks   bool
	docQuoteChar     rune

	commentBuf []rune

	// charBuf accumulates consecutive character-token data so adjacent
	// characters emit as a single CharacterToken instead of one per rune.
	charBuf []rune

	// Character reference state.
	charRefBuf   []rune // characters consumed so far while resolving a reference
	charRefCode  int64
	charRefInAttr bool

	tempBuf []rune // generic scratch, e.g. double-escape matching

	line, col int

	// The RCDATA/RAWTEXT/script-data end-tag-name "anything else" fallback
	// (stepTextEndTagName) re-emits "</" plus the buffered tagName as
	// character data when the end tag turns out not to match.
}

// New creates a Tokenizer reading from in and emitting tokens to h.
func New(in *inputstream.Stream, h Handler, errFn perr.Handler) *Tokenizer {
	if errFn == nil {
		errFn = func(*perr.Error) {}
	}
	return &Tokenizer{in: in, handler: h, errFn: errFn, line: 1, col: 0}
}

// SetHandler replaces the token sink, used by embedders that need to
// construct the tokenizer before its eventual handler exists.
func (t *Tokenizer) SetHandler(h Handler) {
	t.handler = h
}

// ChangeEncoding forwards to the underlying input stream's ChangeEncoding,
// letting the tree-construction driver trigger a re-decode when it meets a
// <meta charset> (HTML5 §12.2.3.3). Returns inputstream.ErrEncodingLocked
// if a non-ASCII byte has already been committed under the old encoding.
func (t *Tokenizer) ChangeEncoding(name string) error {
	return t.in.ChangeEncoding(name)
}

// SetContentModel is the tokenizer's public content-model setter. The
// treebuilder calls this immediately before returning control upon
// encountering <script>, <style>, <title>, <textarea>, <plaintext>, etc.
func (t *Tokenizer) SetContentModel(m ContentModel, lastStartTagName string) {
	t.model = m
	t.lastStartTagName = lastStartTagName
	switch m {
	case RCDATA:
		t.state = stData // RCDATA shares the "Data"-equivalent entry via model check in step()
	case CDATA:
		t.state = stData
	case ScriptData:
		t.state = stData
	case Plaintext:
		t.state = stPlaintext
	default:
		t.state = stData
	}
	t.in.SetSuppressNULReplacement(false)
}

// Run pulls characters and emits tokens until the stream needs more data or
// reports EOF. On EOF it emits the terminal EOF token and returns. It
// returns true if it stopped because of EOF (so no further Run calls are
// useful), false if it merely suspended.
func (t *Tokenizer) Run() (sawEOF bool) {
	for {
		more := t.step()
		if !more {
			return t.state == stEOF
		}
	}
}

// emitChars flushes any buffered character data as one CharacterToken.
func (t *Tokenizer) emitChars() {
	if len(t.charBuf) == 0 {
		return
	}
	t.handler.Token(Token{Kind: CharacterToken, Data: string(t.charBuf)})
	t.charBuf = t.charBuf[:0]
}

func (t *Tokenizer) emitChar(r rune) {
	t.charBuf = append(t.charBuf, r)
}

func (t *Tokenizer) emitToken(tok Token) {
	t.emitChars()
	t.handler.Token(tok)
}

func (t *Tokenizer) parseError(tag perr.Tag, context string) {
	t.errFn(&perr.Error{Line: t.line, Column: t.col, Tag: tag, Context: context})
}

// peek/next wrap the input stream; next tracks line/column, updating the
// counters per code point consumed.
func (t *Tokenizer) peek(offset int) (rune, bool) {
	r, err := t.in.Peek(offset)
	if err != nil {
		return 0, false
	}
	return r, true
}

func (t *Tokenizer) next() (rune, bool) {
	r, ok := t.peek(0)
	if !ok {
		return 0, false
	}
	t.in.Advance(1)
	if r == '\n' {
		t.line++
		t.col = 0
	} else {
		t.col++
	}
	return r, true
}

func isWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\f', ' ':
		return true
	}
	return false
}

func isASCIIUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
func isASCIILower(r rune) bool { return r >= 'a' && r <= 'z' }
func isASCIIAlpha(r rune) bool { return isASCIIUpper(r) || isASCIILower(r) }
func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }
func isASCIIHexDigit(r rune) bool {
	return isASCIIDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
func toLower(r rune) rune {
	if isASCIIUpper(r) {
		return r + ('a' - 'A')
	}
	return r
}

// step runs one iteration of the state machine. It returns false when it
// could not make progress (needs more data, or produced the terminal EOF).
func (t *Tokenizer) step() bool {
	switch t.state {
	case stData:
		return t.stepData()
	case stPlaintext:
		return t.stepPlaintextLike(stPlaintext)
	case stTagOpen:
		return t.stepTagOpen()
	case stEndTagOpen:
		return t.stepEndTagOpen()
	case stTagName:
		return t.stepTagName()
	case stRCDATALessThanSign, stRAWTEXTLessThanSign, stScriptDataLessThanSign:
		return t.stepTextLessThanSign()
	case stRCDATAEndTagOpen, stRAWTEXTEndTagOpen, stScriptDataEndTagOpen, stScriptDataEscapedEndTagOpen:
		return t.stepTextEndTagOpen()
	case stRCDATAEndTagName, stRAWTEXTEndTagName, stScriptDataEndTagName, stScriptDataEscapedEndTagName:
		return t.stepTextEndTagName()
	case stScriptDataEscapeStart:
		return t.stepScriptDataEscapeStart()
	case stScriptDataEscapeStartDash:
		return t.stepScriptDataEscapeStartDash()
	case stScriptDataEscaped:
		return t.stepScriptDataEscaped()
	case stScriptDataEscapedDash:
		return t.stepScriptDataEscapedDash()
	case stScriptDataEscapedDashDash:
		return t.stepScriptDataEscapedDashDash()
	case stScriptDataEscapedLessThanSign:
		return t.stepScriptDataEscapedLessThanSign()
	case stScriptDataDoubleEscapeStart:
		return t.stepScriptDataDoubleEscapeStart()
	case stScriptDataDoubleEscaped:
		return t.stepScriptDataDoubleEscaped()
	case stScriptDataDoubleEscapedDash:
		return t.stepScriptDataDoubleEscapedDash()
	case stScriptDataDoubleEscapedDashDash:
		return t.stepScriptDataDoubleEscapedDashDash()
	case stScriptDataDoubleEscapedLessThanSign:
		return t.stepScriptDataDoubleEscapedLessThanSign()
	case stScriptDataDoubleEscapeEnd:
		return t.stepScriptDataDoubleEscapeEnd()
	case stBeforeAttributeName:
		return t.stepBeforeAttributeName()
	case stAttributeName:
		return t.stepAttributeName()
	case stAfterAttributeName:
		return t.stepAfterAttributeName()
	case stBeforeAttributeValue:
		return t.stepBeforeAttributeValue()
	case stAttributeValueDoubleQuoted:
		return t.stepAttributeValueQuoted('"')
	case stAttributeValueSingleQuoted:
		return t.stepAttributeValueQuoted('\'')
	case stAttributeValueUnquoted:
		return t.stepAttributeValueUnquoted()
	case stAfterAttributeValueQuoted:
		return t.stepAfterAttributeValueQuoted()
	case stSelfClosingStartTag:
		return t.stepSelfClosingStartTag()
	case stBogusComment:
		return t.stepBogusComment()
	case stMarkupDeclarationOpen:
		return t.stepMarkupDeclarationOpen()
	case stCommentStart:
		return t.stepCommentStart()
	case stCommentStartDash:
		return t.stepCommentStartDash()
	case stComment:
		return t.stepComment()
	case stCommentLessThanSign:
		return t.stepCommentLessThanSign()
	case stCommentLessThanSignBang:
		return t.stepCommentLessThanSignBang()
	case stCommentLessThanSignBangDash:
		return t.stepCommentLessThanSignBangDash()
	case stCommentLessThanSignBangDashDash:
		return t.stepCommentLessThanSignBangDashDash()
	case stCommentEndDash:
		return t.stepCommentEndDash()
	case stCommentEnd:
		return t.stepCommentEnd()
	case stCommentEndBang:
		return t.stepCommentEndBang()
	case stDOCTYPE:
		return t.stepDOCTYPE()
	case stBeforeDOCTYPEName:
		return t.stepBeforeDOCTYPEName()
	case stDOCTYPEName:
		return t.stepDOCTYPEName()
	case stAfterDOCTYPEName:
		return t.stepAfterDOCTYPEName()
	case stAfterDOCTYPEPublicKeyword:
		return t.stepAfterDOCTYPEPublicKeyword()
	case stBeforeDOCTYPEPublicIdentifier:
		return t.stepBeforeDOCTYPEPublicIdentifier()
	case stDOCTYPEPublicIdentifierDoubleQuoted:
		return t.stepDOCTYPEPublicIdentifierQuoted('"')
	case stDOCTYPEPublicIdentifierSingleQuoted:
		return t.stepDOCTYPEPublicIdentifierQuoted('\'')
	case stAfterDOCTYPEPublicIdentifier:
		return t.stepAfterDOCTYPEPublicIdentifier()
	case stBetweenDOCTYPEPublicAndSystemIdentifiers:
		return t.stepBetweenDOCTYPEPublicAndSystemIdentifiers()
	case stAfterDOCTYPESystemKeyword:
		return t.stepAfterDOCTYPESystemKeyword()
	case stBeforeDOCTYPESystemIdentifier:
		return t.stepBeforeDOCTYPESystemIdentifier()
	case stDOCTYPESystemIdentifierDoubleQuoted:
		return t.stepDOCTYPESystemIdentifierQuoted('"')
	case stDOCTYPESystemIdentifierSingleQuoted:
		return t.stepDOCTYPESystemIdentifierQuoted('\'')
	case stAfterDOCTYPESystemIdentifier:
		return t.stepAfterDOCTYPESystemIdentifier()
	case stBogusDOCTYPE:
		return t.stepBogusDOCTYPE()
	case stCDATASection:
		return t.stepCDATASection()
	case stCDATASectionBracket:
		return t.stepCDATASectionBracket()
	case stCDATASectionEnd:
		return t.stepCDATASectionEnd()
	case stEOF:
		return false
	}
	return false
}

// --- Data state family -------------------------------------------------

func (t *Tokenizer) stepData() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.finishEOF()
			return false
		}
		return false
	}
	switch t.model {
	case RCDATA:
		switch r {
		case '&':
			t.returnState = stData
			t.state = stData // RCDATA reuses Data's char-ref handling below
			t.consumeCharRef(false)
			return true
		case '<':
			t.state = stRCDATALessThanSign
			return true
		case 0:
			t.parseError(perr.UnexpectedNUL, "")
			t.emitChar(inputstream.ReplacementChar)
			return true
		default:
			t.emitChar(r)
			return true
		}
	case CDATA:
		switch r {
		case '<':
			t.state = stRAWTEXTLessThanSign
			return true
		case 0:
			t.parseError(perr.UnexpectedNUL, "")
			t.emitChar(inputstream.ReplacementChar)
			return true
		default:
			t.emitChar(r)
			return true
		}
	case ScriptData:
		switch r {
		case '<':
			t.state = stScriptDataLessThanSign
			return true
		case 0:
			t.parseError(perr.UnexpectedNUL, "")
			t.emitChar(inputstream.ReplacementChar)
			return true
		default:
			t.emitChar(r)
			return true
		}
	default: // PCDATA
		switch r {
		case '&':
			t.returnState = stData
			t.consumeCharRef(false)
			return true
		case '<':
			t.state = stTagOpen
			return true
		case 0:
			t.parseError(perr.UnexpectedNUL, "")
			t.emitChar(inputstream.ReplacementChar)
			return true
		default:
			t.emitChar(r)
			return true
		}
	}
}

func (t *Tokenizer) stepPlaintextLike(_ state) bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.finishEOF()
			return false
		}
		return false
	}
	if r == 0 {
		t.parseError(perr.UnexpectedNUL, "")
		t.emitChar(inputstream.ReplacementChar)
		return true
	}
	t.emitChar(r)
	return true
}

func (t *Tokenizer) finishEOF() {
	t.emitChars()
	t.handler.Token(Token{Kind: EOFToken})
	t.state = stEOF
}

// --- Tag open family -----------------------------------------------------

func (t *Tokenizer) stepTagOpen() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFBeforeTagName, "")
			t.emitChar('<')
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case r == '!':
		t.next()
		t.state = stMarkupDeclarationOpen
	case r == '/':
		t.next()
		t.state = stEndTagOpen
	case isASCIIAlpha(r):
		t.startTag(false)
		t.state = stTagName
	case r == '?':
		t.parseError(perr.UnexpectedQuestionMarkInsteadOfTagName, "")
		t.startBogusComment()
		t.state = stBogusComment
	default:
		t.parseError(perr.InvalidFirstCharacterOfTagName, "")
		t.emitChar('<')
		t.state = stData
	}
	return true
}

func (t *Tokenizer) startTag(isEnd bool) {
	t.tagName = t.tagName[:0]
	t.tagIsEnd = isEnd
	t.selfClosing = false
	t.attrs = nil
	t.haveCurAttr = false
}

func (t *Tokenizer) startBogusComment() {
	t.commentBuf = t.commentBuf[:0]
}

func (t *Tokenizer) stepEndTagOpen() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFBeforeTagName, "")
			t.emitChar('<')
			t.emitChar('/')
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isASCIIAlpha(r):
		t.startTag(true)
		t.state = stTagName
	case r == '>':
		t.next()
		t.parseError(perr.MissingEndTagName, "")
		t.state = stData
	default:
		t.parseError(perr.InvalidFirstCharacterOfTagName, "")
		t.startBogusComment()
		t.state = stBogusComment
	}
	return true
}

func (t *Tokenizer) stepTagName() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInTag, "")
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.state = stBeforeAttributeName
	case r == '/':
		t.state = stSelfClosingStartTag
	case r == '>':
		t.emitCurrentTag()
		t.state = stData
	case isASCIIUpper(r):
		t.tagName = append(t.tagName, toLower(r))
	case r == 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.tagName = append(t.tagName, inputstream.ReplacementChar)
	default:
		t.tagName = append(t.tagName, r)
	}
	return true
}

// commitCurAttr finalizes the attribute under construction into t.attrs,
// applying HTML5 §12.2.5.33's first-occurrence-wins attribute
// deduplication.
func (t *Tokenizer) commitCurAttr() {
	if !t.haveCurAttr {
		return
	}
	name := string(t.curAttr.name)
	for _, a := range t.attrs {
		if a.name != nil && string(a.name) == name {
			t.parseError(perr.DuplicateAttribute, name)
			t.haveCurAttr = false
			return
		}
	}
	t.attrs = append(t.attrs, t.curAttr)
	t.haveCurAttr = false
}

func (t *Tokenizer) emitCurrentTag() {
	t.commitCurAttr()
	name := string(t.tagName)
	attrs := make([]Attribute, 0, len(t.attrs))
	for _, a := range t.attrs {
		attrs = append(attrs, Attribute{Name: string(a.name), Value: string(a.value)})
	}
	if t.tagIsEnd {
		if len(attrs) > 0 {
			t.parseError(perr.EndTagWithAttributes, name)
		}
		if t.selfClosing {
			t.parseError(perr.EndTagWithTrailingSolidus, name)
		}
		t.emitToken(Token{Kind: EndTagToken, Name: name, SelfClosing: t.selfClosing, Attributes: attrs})
	} else {
		t.lastStartTagName = name
		t.emitToken(Token{Kind: StartTagToken, Name: name, SelfClosing: t.selfClosing, Attributes: attrs})
	}
}

// --- RCDATA/RAWTEXT/script-data "<" handling, shared shape ---------------

func (t *Tokenizer) lessThanSignNextStates() (endTagOpen, dataState state) {
	switch t.model {
	case RCDATA:
		return stRCDATAEndTagOpen, stData
	case CDATA:
		return stRAWTEXTEndTagOpen, stData
	case ScriptData:
		return stScriptDataEndTagOpen, stData
	}
	return stData, stData
}

func (t *Tokenizer) stepTextLessThanSign() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.emitChar('<')
			t.finishEOF()
			return false
		}
		return false
	}
	if r == '/' {
		t.next()
		t.tempBuf = t.tempBuf[:0]
		endOpen, _ := t.lessThanSignNextStates()
		t.state = endOpen
		return true
	}
	if t.model == ScriptData && r == '!' {
		t.next()
		t.emitChar('<')
		t.emitChar('!')
		t.state = stScriptDataEscapeStart
		return true
	}
	t.emitChar('<')
	t.state = stData
	return true
}

func (t *Tokenizer) stepTextEndTagOpen() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.emitChar('<')
			t.emitChar('/')
			t.finishEOF()
			return false
		}
		return false
	}
	if isASCIIAlpha(r) {
		t.startTag(true)
		switch t.state {
		case stRCDATAEndTagOpen:
			t.state = stRCDATAEndTagName
		case stRAWTEXTEndTagOpen:
			t.state = stRAWTEXTEndTagName
		case stScriptDataEndTagOpen:
			t.state = stScriptDataEndTagName
		case stScriptDataEscapedEndTagOpen:
			t.state = stScriptDataEscapedEndTagName
		}
		return true
	}
	t.emitChar('<')
	t.emitChar('/')
	switch t.state {
	case stScriptDataEscapedEndTagOpen:
		t.state = stScriptDataEscaped
	default:
		t.state = stData
	}
	return true
}

func (t *Tokenizer) isAppropriateEndTag() bool {
	return t.lastStartTagName != "" && string(t.tagName) == t.lastStartTagName
}

func (t *Tokenizer) stepTextEndTagName() bool {
	r, ok := t.peek(0)
	fallback := func(next state) bool {
		t.emitChar('<')
		t.emitChar('/')
		for _, c := range t.tagName {
			t.emitChar(c)
		}
		t.tagName = t.tagName[:0]
		t.state = next
		return true
	}
	nonAppropriateNext := func() state {
		if t.state == stScriptDataEscapedEndTagName {
			return stScriptDataEscaped
		}
		return stData
	}
	if !ok {
		if t.in.EOF() {
			return fallback(stData)
		}
		return false
	}
	switch {
	case isWhitespace(r) && t.isAppropriateEndTag():
		t.next()
		t.state = stBeforeAttributeName
	case r == '/' && t.isAppropriateEndTag():
		t.next()
		t.state = stSelfClosingStartTag
	case r == '>' && t.isAppropriateEndTag():
		t.next()
		t.emitCurrentTag()
		t.state = stData
	case isASCIIUpper(r):
		t.next()
		t.tagName = append(t.tagName, toLower(r))
	case isASCIILower(r):
		t.next()
		t.tagName = append(t.tagName, r)
	default:
		return fallback(nonAppropriateNext())
	}
	return true
}

// --- script-data escape substates ----------------------------------------

func (t *Tokenizer) stepScriptDataEscapeStart() bool {
	r, ok := t.peek(0)
	if ok && r == '-' {
		t.next()
		t.emitChar('-')
		t.state = stScriptDataEscapeStartDash
		return true
	}
	t.state = stData // back to plain script data
	return true
}

func (t *Tokenizer) stepScriptDataEscapeStartDash() bool {
	r, ok := t.peek(0)
	if ok && r == '-' {
		t.next()
		t.emitChar('-')
		t.state = stScriptDataEscapedDashDash
		return true
	}
	t.state = stData
	return true
}

func (t *Tokenizer) stepScriptDataEscaped() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInScriptHTMLCommentLikeText, "")
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '-':
		t.emitChar('-')
		t.state = stScriptDataEscapedDash
	case '<':
		t.state = stScriptDataEscapedLessThanSign
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.emitChar(inputstream.ReplacementChar)
	default:
		t.emitChar(r)
	}
	return true
}

func (t *Tokenizer) stepScriptDataEscapedDash() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInScriptHTMLCommentLikeText, "")
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '-':
		t.emitChar('-')
		t.state = stScriptDataEscapedDashDash
	case '<':
		t.state = stScriptDataEscapedLessThanSign
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.emitChar(inputstream.ReplacementChar)
		t.state = stScriptDataEscaped
	default:
		t.emitChar(r)
		t.state = stScriptDataEscaped
	}
	return true
}

func (t *Tokenizer) stepScriptDataEscapedDashDash() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInScriptHTMLCommentLikeText, "")
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '-':
		t.emitChar('-')
	case '<':
		t.state = stScriptDataEscapedLessThanSign
	case '>':
		t.emitChar('>')
		t.state = stData
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.emitChar(inputstream.ReplacementChar)
		t.state = stScriptDataEscaped
	default:
		t.emitChar(r)
		t.state = stScriptDataEscaped
	}
	return true
}

func (t *Tokenizer) stepScriptDataEscapedLessThanSign() bool {
	r, ok := t.peek(0)
	if ok && r == '/' {
		t.next()
		t.tempBuf = t.tempBuf[:0]
		t.state = stScriptDataEscapedEndTagOpen
		return true
	}
	if ok && isASCIIAlpha(r) {
		t.tempBuf = t.tempBuf[:0]
		t.emitChar('<')
		t.state = stScriptDataDoubleEscapeStart
		return true
	}
	t.emitChar('<')
	t.state = stScriptDataEscaped
	return true
}

func (t *Tokenizer) stepScriptDataDoubleEscapeStart() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.state = stScriptDataEscaped
			return true
		}
		return false
	}
	switch {
	case isWhitespace(r) || r == '/' || r == '>':
		t.next()
		t.emitChar(r)
		if strings.EqualFold(string(t.tempBuf), "script") {
			t.state = stScriptDataDoubleEscaped
		} else {
			t.state = stScriptDataEscaped
		}
	case isASCIIAlpha(r):
		t.next()
		t.tempBuf = append(t.tempBuf, toLower(r))
		t.emitChar(r)
	default:
		t.state = stScriptDataEscaped
	}
	return true
}

func (t *Tokenizer) stepScriptDataDoubleEscaped() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInScriptHTMLCommentLikeText, "")
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '-':
		t.emitChar('-')
		t.state = stScriptDataDoubleEscapedDash
	case '<':
		t.emitChar('<')
		t.state = stScriptDataDoubleEscapedLessThanSign
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.emitChar(inputstream.ReplacementChar)
	default:
		t.emitChar(r)
	}
	return true
}

func (t *Tokenizer) stepScriptDataDoubleEscapedDash() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInScriptHTMLCommentLikeText, "")
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '-':
		t.emitChar('-')
		t.state = stScriptDataDoubleEscapedDashDash
	case '<':
		t.emitChar('<')
		t.state = stScriptDataDoubleEscapedLessThanSign
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.emitChar(inputstream.ReplacementChar)
		t.state = stScriptDataDoubleEscaped
	default:
		t.emitChar(r)
		t.state = stScriptDataDoubleEscaped
	}
	return true
}

func (t *Tokenizer) stepScriptDataDoubleEscapedDashDash() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInScriptHTMLCommentLikeText, "")
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '-':
		t.emitChar('-')
	case '<':
		t.emitChar('<')
		t.state = stScriptDataDoubleEscapedLessThanSign
	case '>':
		t.emitChar('>')
		t.state = stData
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.emitChar(inputstream.ReplacementChar)
		t.state = stScriptDataDoubleEscaped
	default:
		t.emitChar(r)
		t.state = stScriptDataDoubleEscaped
	}
	return true
}

func (t *Tokenizer) stepScriptDataDoubleEscapedLessThanSign() bool {
	r, ok := t.peek(0)
	if ok && r == '/' {
		t.next()
		t.emitChar('/')
		t.tempBuf = t.tempBuf[:0]
		t.state = stScriptDataDoubleEscapeEnd
		return true
	}
	t.state = stScriptDataDoubleEscaped
	return true
}

func (t *Tokenizer) stepScriptDataDoubleEscapeEnd() bool {
	r, ok := t.peek(0)
	if !ok {
		t.state = stScriptDataDoubleEscaped
		return false
	}
	switch {
	case isWhitespace(r) || r == '/' || r == '>':
		t.next()
		t.emitChar(r)
		if strings.EqualFold(string(t.tempBuf), "script") {
			t.state = stScriptDataEscaped
		} else {
			t.state = stScriptDataDoubleEscaped
		}
	case isASCIIAlpha(r):
		t.next()
		t.tempBuf = append(t.tempBuf, toLower(r))
		t.emitChar(r)
	default:
		t.state = stScriptDataDoubleEscaped
	}
	return true
}

// --- Attribute states ------------------------------------------------------

func (t *Tokenizer) stepBeforeAttributeName() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			return t.eofInTagAttrs()
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.next()
	case r == '/' || r == '>':
		t.commitCurAttr()
		t.state = stAfterAttributeName
	case r == '=':
		t.next()
		t.parseError(perr.UnexpectedEqualsSignBeforeAttributeName, "")
		t.commitCurAttr()
		t.newAttr()
		t.curAttr.name = append(t.curAttr.name, r)
		t.state = stAttributeName
	default:
		t.commitCurAttr()
		t.newAttr()
		t.state = stAttributeName
	}
	return true
}

func (t *Tokenizer) eofInTagAttrs() bool {
	t.parseError(perr.EOFInTag, "")
	t.finishEOF()
	return false
}

func (t *Tokenizer) newAttr() {
	t.curAttr = attr{}
	t.haveCurAttr = true
}

func (t *Tokenizer) stepAttributeName() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			return t.eofInTagAttrs()
		}
		return false
	}
	switch {
	case isWhitespace(r) || r == '/' || r == '>':
		t.state = stAfterAttributeName
	case r == '=':
		t.next()
		t.state = stBeforeAttributeValue
	case isASCIIUpper(r):
		t.next()
		t.curAttr.name = append(t.curAttr.name, toLower(r))
	case r == 0:
		t.next()
		t.parseError(perr.UnexpectedNUL, "")
		t.curAttr.name = append(t.curAttr.name, inputstream.ReplacementChar)
	case r == '"' || r == '\'' || r == '<':
		t.next()
		t.parseError(perr.UnexpectedCharacterInAttributeName, string(r))
		t.curAttr.name = append(t.curAttr.name, r)
	default:
		t.next()
		t.curAttr.name = append(t.curAttr.name, r)
	}
	return true
}

func (t *Tokenizer) stepAfterAttributeName() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			return t.eofInTagAttrs()
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.next()
	case r == '/':
		t.next()
		t.state = stSelfClosingStartTag
	case r == '=':
		t.next()
		t.state = stBeforeAttributeValue
	case r == '>':
		t.next()
		t.emitCurrentTag()
		t.state = stData
	default:
		t.commitCurAttr()
		t.newAttr()
		t.state = stAttributeName
	}
	return true
}

func (t *Tokenizer) stepBeforeAttributeValue() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			return t.eofInTagAttrs()
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.next()
	case r == '"':
		t.next()
		t.state = stAttributeValueDoubleQuoted
	case r == '\'':
		t.next()
		t.state = stAttributeValueSingleQuoted
	case r == '>':
		t.next()
		t.parseError(perr.MissingAttributeValue, "")
		t.emitCurrentTag()
		t.state = stData
	default:
		t.state = stAttributeValueUnquoted
	}
	return true
}

func (t *Tokenizer) stepAttributeValueQuoted(quote rune) bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			return t.eofInTagAttrs()
		}
		return false
	}
	switch {
	case r == quote:
		t.state = stAfterAttributeValueQuoted
	case r == '&':
		t.returnState = t.state
		t.charRefInAttr = true
		t.consumeCharRef(true)
	case r == 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.curAttr.value = append(t.curAttr.value, inputstream.ReplacementChar)
	default:
		t.curAttr.value = append(t.curAttr.value, r)
	}
	return true
}

func (t *Tokenizer) stepAttributeValueUnquoted() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			return t.eofInTagAttrs()
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.state = stBeforeAttributeName
	case r == '&':
		t.returnState = t.state
		t.charRefInAttr = true
		t.consumeCharRef(true)
	case r == '>':
		t.emitCurrentTag()
		t.state = stData
	case r == 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.curAttr.value = append(t.curAttr.value, inputstream.ReplacementChar)
	case r == '"' || r == '\'' || r == '<' || r == '=' || r == '`':
		t.parseError(perr.UnexpectedCharacterInUnquotedAttributeValue, string(r))
		t.curAttr.value = append(t.curAttr.value, r)
	default:
		t.curAttr.value = append(t.curAttr.value, r)
	}
	return true
}

func (t *Tokenizer) stepAfterAttributeValueQuoted() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			return t.eofInTagAttrs()
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.next()
		t.state = stBeforeAttributeName
	case r == '/':
		t.next()
		t.state = stSelfClosingStartTag
	case r == '>':
		t.next()
		t.emitCurrentTag()
		t.state = stData
	default:
		t.parseError(perr.MissingWhitespaceBetweenAttributes, "")
		t.state = stBeforeAttributeName
	}
	return true
}

func (t *Tokenizer) stepSelfClosingStartTag() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			return t.eofInTagAttrs()
		}
		return false
	}
	if r == '>' {
		t.next()
		t.selfClosing = true
		t.emitCurrentTag()
		t.state = stData
		return true
	}
	t.parseError(perr.UnexpectedSolidusInTag, "")
	t.state = stBeforeAttributeName
	return true
}

// --- Bogus comment / markup declaration -----------------------------------

func (t *Tokenizer) stepBogusComment() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '>':
		t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
		t.state = stData
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.commentBuf = append(t.commentBuf, inputstream.ReplacementChar)
	default:
		t.commentBuf = append(t.commentBuf, r)
	}
	return true
}

func (t *Tokenizer) stepMarkupDeclarationOpen() bool {
	// Wait until the seven characters of the longest keyword are buffered
	// (or input has ended), so a chunk boundary cannot cut a keyword short.
	if _, err := t.in.Peek(6); err == inputstream.ErrNeedsMoreData {
		return false
	}
	if t.in.LookAheadEqual("--", true) {
		t.in.Advance(2)
		t.startBogusComment()
		t.state = stCommentStart
		return true
	}
	if t.in.LookAheadEqual("DOCTYPE", true) {
		t.in.Advance(7)
		t.state = stDOCTYPE
		return true
	}
	if t.in.LookAheadEqual("[CDATA[", false) {
		t.in.Advance(7)
		// Only valid inside foreign content (HTML5 §12.2.6.5). The
		// tokenizer has no namespace awareness and accepts it
		// unconditionally, being purely lexical: outside foreign content it
		// is also tokenized as a CDATA section, not as a bogus comment.
		t.state = stCDATASection
		return true
	}
	t.parseError(perr.IncorrectlyOpenedComment, "")
	t.startBogusComment()
	t.state = stBogusComment
	return true
}

// --- Comment states ---------------------------------------------------

func (t *Tokenizer) stepCommentStart() bool {
	r, ok := t.peek(0)
	if ok && r == '-' {
		t.next()
		t.state = stCommentStartDash
		return true
	}
	if ok && r == '>' {
		t.next()
		t.parseError(perr.AbruptClosingOfEmptyComment, "")
		t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
		t.state = stData
		return true
	}
	t.state = stComment
	return true
}

func (t *Tokenizer) stepCommentStartDash() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInComment, "")
			t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '-':
		t.next()
		t.state = stCommentEnd
	case '>':
		t.next()
		t.parseError(perr.AbruptClosingOfEmptyComment, "")
		t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
		t.state = stData
	default:
		t.commentBuf = append(t.commentBuf, '-')
		t.state = stComment
	}
	return true
}

func (t *Tokenizer) stepComment() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInComment, "")
			t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '<':
		t.commentBuf = append(t.commentBuf, r)
		t.state = stCommentLessThanSign
	case '-':
		t.state = stCommentEndDash
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.commentBuf = append(t.commentBuf, inputstream.ReplacementChar)
	default:
		t.commentBuf = append(t.commentBuf, r)
	}
	return true
}

func (t *Tokenizer) stepCommentLessThanSign() bool {
	r, ok := t.peek(0)
	if ok && r == '!' {
		t.next()
		t.commentBuf = append(t.commentBuf, r)
		t.state = stCommentLessThanSignBang
		return true
	}
	if ok && r == '<' {
		t.next()
		t.commentBuf = append(t.commentBuf, r)
		return true
	}
	t.state = stComment
	return true
}

func (t *Tokenizer) stepCommentLessThanSignBang() bool {
	r, ok := t.peek(0)
	if ok && r == '-' {
		t.next()
		t.state = stCommentLessThanSignBangDash
		return true
	}
	t.state = stComment
	return true
}

func (t *Tokenizer) stepCommentLessThanSignBangDash() bool {
	r, ok := t.peek(0)
	if ok && r == '-' {
		t.next()
		t.state = stCommentLessThanSignBangDashDash
		return true
	}
	t.state = stCommentEndDash
	return true
}

func (t *Tokenizer) stepCommentLessThanSignBangDashDash() bool {
	r, ok := t.peek(0)
	if !ok && !t.in.EOF() {
		return false
	}
	if ok && r == '>' {
		t.state = stCommentEnd
		return true
	}
	t.parseError(perr.NestedComment, "")
	t.state = stCommentEnd
	return true
}

func (t *Tokenizer) stepCommentEndDash() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInComment, "")
			t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
			t.finishEOF()
			return false
		}
		return false
	}
	if r == '-' {
		t.next()
		t.state = stCommentEnd
		return true
	}
	t.commentBuf = append(t.commentBuf, '-')
	t.state = stComment
	return true
}

func (t *Tokenizer) stepCommentEnd() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInComment, "")
			t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '>':
		t.next()
		t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
		t.state = stData
	case '!':
		t.next()
		t.state = stCommentEndBang
	case '-':
		t.next()
		t.commentBuf = append(t.commentBuf, '-')
	default:
		t.commentBuf = append(t.commentBuf, '-', '-')
		t.state = stComment
	}
	return true
}

func (t *Tokenizer) stepCommentEndBang() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInComment, "")
			t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '-':
		t.next()
		t.commentBuf = append(t.commentBuf, '-', '-', '!')
		t.state = stCommentEndDash
	case '>':
		t.next()
		t.parseError(perr.IncorrectlyClosedComment, "")
		t.emitToken(Token{Kind: CommentToken, Data: string(t.commentBuf)})
		t.state = stData
	default:
		t.commentBuf = append(t.commentBuf, '-', '-', '!')
		t.state = stComment
	}
	return true
}

// --- DOCTYPE states ---------------------------------------------------

func (t *Tokenizer) resetDoctype() {
	t.docName, t.docPublic, t.docSystem = nil, nil, nil
	t.docNameSet, t.docPublicSet, t.docSystemSet = false, false, false
	t.docForceQuirks = false
}

func (t *Tokenizer) emitDoctype() {
	tok := Token{
		Kind:          DoctypeToken,
		Name:          string(t.docName),
		NameMissing:   !t.docNameSet,
		PublicID:      string(t.docPublic),
		PublicMissing: !t.docPublicSet,
		SystemID:      string(t.docSystem),
		SystemMissing: !t.docSystemSet,
		ForceQuirks:   t.docForceQuirks,
	}
	t.emitToken(tok)
}

func (t *Tokenizer) stepDOCTYPE() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.resetDoctype()
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	t.resetDoctype()
	if isWhitespace(r) {
		t.next()
		t.state = stBeforeDOCTYPEName
		return true
	}
	if r == '>' {
		t.state = stBeforeDOCTYPEName
		return true
	}
	t.parseError(perr.MissingWhitespaceBeforeDOCTYPEName, "")
	t.state = stBeforeDOCTYPEName
	return true
}

func (t *Tokenizer) stepBeforeDOCTYPEName() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
		// stay
	case isASCIIUpper(r):
		t.docNameSet = true
		t.docName = append(t.docName, toLower(r))
		t.state = stDOCTYPEName
	case r == 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.docNameSet = true
		t.docName = append(t.docName, inputstream.ReplacementChar)
		t.state = stDOCTYPEName
	case r == '>':
		t.parseError(perr.MissingDOCTYPEName, "")
		t.docForceQuirks = true
		t.emitDoctype()
		t.state = stData
	default:
		t.docNameSet = true
		t.docName = append(t.docName, r)
		t.state = stDOCTYPEName
	}
	return true
}

func (t *Tokenizer) stepDOCTYPEName() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.state = stAfterDOCTYPEName
	case r == '>':
		t.emitDoctype()
		t.state = stData
	case isASCIIUpper(r):
		t.docName = append(t.docName, toLower(r))
	case r == 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.docName = append(t.docName, inputstream.ReplacementChar)
	default:
		t.docName = append(t.docName, r)
	}
	return true
}

func (t *Tokenizer) stepAfterDOCTYPEName() bool {
	if t.in.LookAheadEqual("PUBLIC", true) {
		t.in.Advance(6)
		t.state = stAfterDOCTYPEPublicKeyword
		return true
	}
	if t.in.LookAheadEqual("SYSTEM", true) {
		t.in.Advance(6)
		t.state = stAfterDOCTYPESystemKeyword
		return true
	}
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
	case r == '>':
		t.emitDoctype()
		t.state = stData
	default:
		t.parseError(perr.InvalidCharacterSequenceAfterDOCTYPEName, "")
		t.docForceQuirks = true
		t.state = stBogusDOCTYPE
	}
	return true
}

func (t *Tokenizer) stepAfterDOCTYPEPublicKeyword() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.state = stBeforeDOCTYPEPublicIdentifier
	case r == '"':
		t.parseError(perr.MissingWhitespaceAfterDOCTYPEPublicKeyword, "")
		t.docPublicSet = true
		t.state = stDOCTYPEPublicIdentifierDoubleQuoted
	case r == '\'':
		t.parseError(perr.MissingWhitespaceAfterDOCTYPEPublicKeyword, "")
		t.docPublicSet = true
		t.state = stDOCTYPEPublicIdentifierSingleQuoted
	case r == '>':
		t.parseError(perr.MissingDOCTYPEPublicIdentifier, "")
		t.docForceQuirks = true
		t.emitDoctype()
		t.state = stData
	default:
		t.parseError(perr.MissingQuoteBeforeDOCTYPEPublicIdentifier, "")
		t.docForceQuirks = true
		t.state = stBogusDOCTYPE
	}
	return true
}

func (t *Tokenizer) stepBeforeDOCTYPEPublicIdentifier() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
	case r == '"':
		t.docPublicSet = true
		t.state = stDOCTYPEPublicIdentifierDoubleQuoted
	case r == '\'':
		t.docPublicSet = true
		t.state = stDOCTYPEPublicIdentifierSingleQuoted
	case r == '>':
		t.parseError(perr.MissingDOCTYPEPublicIdentifier, "")
		t.docForceQuirks = true
		t.emitDoctype()
		t.state = stData
	default:
		t.parseError(perr.MissingQuoteBeforeDOCTYPEPublicIdentifier, "")
		t.docForceQuirks = true
		t.state = stBogusDOCTYPE
	}
	return true
}

func (t *Tokenizer) stepDOCTYPEPublicIdentifierQuoted(quote rune) bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case r == quote:
		t.state = stAfterDOCTYPEPublicIdentifier
	case r == 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.docPublic = append(t.docPublic, inputstream.ReplacementChar)
	case r == '>':
		t.parseError(perr.AbruptDOCTYPEPublicIdentifier, "")
		t.docForceQuirks = true
		t.emitDoctype()
		t.state = stData
	default:
		t.docPublic = append(t.docPublic, r)
	}
	return true
}

func (t *Tokenizer) stepAfterDOCTYPEPublicIdentifier() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.state = stBetweenDOCTYPEPublicAndSystemIdentifiers
	case r == '>':
		t.emitDoctype()
		t.state = stData
	case r == '"':
		t.parseError(perr.MissingWhitespaceBetweenDOCTYPEPublicAndSystemIdentifiers, "")
		t.docSystemSet = true
		t.state = stDOCTYPESystemIdentifierDoubleQuoted
	case r == '\'':
		t.parseError(perr.MissingWhitespaceBetweenDOCTYPEPublicAndSystemIdentifiers, "")
		t.docSystemSet = true
		t.state = stDOCTYPESystemIdentifierSingleQuoted
	default:
		t.parseError(perr.MissingQuoteBeforeDOCTYPESystemIdentifier, "")
		t.docForceQuirks = true
		t.state = stBogusDOCTYPE
	}
	return true
}

func (t *Tokenizer) stepBetweenDOCTYPEPublicAndSystemIdentifiers() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
	case r == '>':
		t.emitDoctype()
		t.state = stData
	case r == '"':
		t.docSystemSet = true
		t.state = stDOCTYPESystemIdentifierDoubleQuoted
	case r == '\'':
		t.docSystemSet = true
		t.state = stDOCTYPESystemIdentifierSingleQuoted
	default:
		t.parseError(perr.MissingQuoteBeforeDOCTYPESystemIdentifier, "")
		t.docForceQuirks = true
		t.state = stBogusDOCTYPE
	}
	return true
}

func (t *Tokenizer) stepAfterDOCTYPESystemKeyword() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
		t.state = stBeforeDOCTYPESystemIdentifier
	case r == '"':
		t.parseError(perr.MissingWhitespaceAfterDOCTYPESystemKeyword, "")
		t.docSystemSet = true
		t.state = stDOCTYPESystemIdentifierDoubleQuoted
	case r == '\'':
		t.parseError(perr.MissingWhitespaceAfterDOCTYPESystemKeyword, "")
		t.docSystemSet = true
		t.state = stDOCTYPESystemIdentifierSingleQuoted
	case r == '>':
		t.parseError(perr.MissingDOCTYPESystemIdentifier, "")
		t.docForceQuirks = true
		t.emitDoctype()
		t.state = stData
	default:
		t.parseError(perr.MissingQuoteBeforeDOCTYPESystemIdentifier, "")
		t.docForceQuirks = true
		t.state = stBogusDOCTYPE
	}
	return true
}

func (t *Tokenizer) stepBeforeDOCTYPESystemIdentifier() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
	case r == '"':
		t.docSystemSet = true
		t.state = stDOCTYPESystemIdentifierDoubleQuoted
	case r == '\'':
		t.docSystemSet = true
		t.state = stDOCTYPESystemIdentifierSingleQuoted
	case r == '>':
		t.parseError(perr.MissingDOCTYPESystemIdentifier, "")
		t.docForceQuirks = true
		t.emitDoctype()
		t.state = stData
	default:
		t.parseError(perr.MissingQuoteBeforeDOCTYPESystemIdentifier, "")
		t.docForceQuirks = true
		t.state = stBogusDOCTYPE
	}
	return true
}

func (t *Tokenizer) stepDOCTYPESystemIdentifierQuoted(quote rune) bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case r == quote:
		t.state = stAfterDOCTYPESystemIdentifier
	case r == 0:
		t.parseError(perr.UnexpectedNUL, "")
		t.docSystem = append(t.docSystem, inputstream.ReplacementChar)
	case r == '>':
		t.parseError(perr.AbruptDOCTYPESystemIdentifier, "")
		t.docForceQuirks = true
		t.emitDoctype()
		t.state = stData
	default:
		t.docSystem = append(t.docSystem, r)
	}
	return true
}

func (t *Tokenizer) stepAfterDOCTYPESystemIdentifier() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.docForceQuirks = true
			t.parseError(perr.EOFInDOCTYPE, "")
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch {
	case isWhitespace(r):
	case r == '>':
		t.emitDoctype()
		t.state = stData
	default:
		t.parseError(perr.UnexpectedCharacterAfterDOCTYPESystemIdentifier, "")
		t.state = stBogusDOCTYPE
	}
	return true
}

func (t *Tokenizer) stepBogusDOCTYPE() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.emitDoctype()
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case '>':
		t.emitDoctype()
		t.state = stData
	case 0:
		t.parseError(perr.UnexpectedNUL, "")
	default:
	}
	return true
}

// --- CDATA section (foreign content only) ---------------------------------

func (t *Tokenizer) stepCDATASection() bool {
	r, ok := t.next()
	if !ok {
		if t.in.EOF() {
			t.parseError(perr.EOFInCDATA, "")
			t.finishEOF()
			return false
		}
		return false
	}
	if r == ']' {
		t.state = stCDATASectionBracket
		return true
	}
	if r == 0 {
		// NUL is passed through unchanged in CDATA section content, unlike
		// the replacement-character substitution most other states apply.
		t.emitChar(0)
		return true
	}
	t.emitChar(r)
	return true
}

func (t *Tokenizer) stepCDATASectionBracket() bool {
	r, ok := t.peek(0)
	if ok && r == ']' {
		t.next()
		t.state = stCDATASectionEnd
		return true
	}
	t.emitChar(']')
	t.state = stCDATASection
	return true
}

func (t *Tokenizer) stepCDATASectionEnd() bool {
	r, ok := t.peek(0)
	if !ok {
		if t.in.EOF() {
			t.emitChar(']')
			t.emitChar(']')
			t.finishEOF()
			return false
		}
		return false
	}
	switch r {
	case ']':
		t.next()
		t.emitChar(']')
	case '>':
		t.next()
		t.state = stData
	default:
		t.emitChar(']')
		t.emitChar(']')
		t.state = stCDATASection
	}
	return true
}

// --- Character reference consumption ---------------------------------------

// consumeCharRef implements HTML5 §12.2.5.1's named/numeric character
// reference resolution, including the windows-1252 C1 override table and
// replacement rules for NUL/surrogate/non-character code points. inAttr
// controls whether resolved text goes to the current attribute value or to
// the character-token buffer.
func (t *Tokenizer) consumeCharRef(inAttr bool) {
	r, ok := t.peek(0)
	if ok && (r == '\t' || r == '\n' || r == '\f' || r == ' ' || r == '<' || r == '&') {
		t.appendResolved(inAttr, '&')
		return
	}
	if ok && r == '#' {
		t.next()
		t.consumeNumericCharRef(inAttr)
		return
	}
	match, n, found := matchNamedCharRef(t.peek)
	if !found {
		// Ambiguous ampersand (HTML5 §12.2.5.1): consume any trailing
		// alphanumerics and emit the literal "&" plus them unchanged.
		t.appendResolved(inAttr, '&')
		for {
			r, ok := t.peek(0)
			if !ok || !(isASCIIAlpha(r) || isASCIIDigit(r)) {
				break
			}
			t.next()
			t.appendResolved(inAttr, r)
		}
		if r, ok := t.peek(0); ok && r == ';' {
			t.parseError(perr.UnknownNamedCharacterReference, "")
		}
		return
	}
	// Capture the literal matched text before consuming it: the historical
	// attribute-value compatibility rule (HTML5 spec "character reference
	// state", legacy clause) falls back to the literal text when a
	// semicolon-less match inside an attribute is immediately followed by
	// '=' or an alphanumeric.
	literal := make([]rune, n)
	for i := 0; i < n; i++ {
		c, _ := t.peek(i)
		literal[i] = c
	}
	hadSemicolon := strings.HasSuffix(string(literal), ";")
	t.in.Advance(n)
	if inAttr && !hadSemicolon {
		if next, ok := t.peek(0); ok && (next == '=' || isASCIIAlpha(next) || isASCIIDigit(next)) {
			for _, c := range literal {
				t.appendResolved(inAttr, c)
			}
			return
		}
	}
	if !hadSemicolon {
		t.parseError(perr.MissingSemicolonAfterCharacterReference, "")
	}
	for _, rv := range match {
		t.appendResolved(inAttr, rv)
	}
}

func (t *Tokenizer) appendResolved(inAttr bool, r rune) {
	if inAttr {
		if !t.haveCurAttr {
			t.newAttr()
		}
		t.curAttr.value = append(t.curAttr.value, r)
	} else {
		t.emitChar(r)
	}
	t.state = t.returnState
}

func (t *Tokenizer) consumeNumericCharRef(inAttr bool) {
	hex := false
	if r, ok := t.peek(0); ok && (r == 'x' || r == 'X') {
		t.next()
		hex = true
	}
	var digits []rune
	for {
		r, ok := t.peek(0)
		if !ok {
			break
		}
		if hex && isASCIIHexDigit(r) {
			t.next()
			digits = append(digits, r)
		} else if !hex && isASCIIDigit(r) {
			t.next()
			digits = append(digits, r)
		} else {
			break
		}
	}
	if len(digits) == 0 {
		t.parseError(perr.AbsenceOfDigitsInNumericCharacterReference, "")
		t.appendResolved(inAttr, '&')
		t.appendResolved(inAttr, '#')
		if hex {
			t.appendResolved(inAttr, 'x')
		}
		return
	}
	if r, ok := t.peek(0); ok && r == ';' {
		t.next()
	} else {
		t.parseError(perr.MissingSemicolonAfterCharacterReference, "")
	}
	base := 10
	if hex {
		base = 16
	}
	code, err := strconv.ParseInt(string(digits), base, 64)
	if err != nil {
		code = 0xFFFD
	}
	resolved := resolveNumericRef(rune(code), t.errFn, t.line, t.col)
	t.appendResolved(inAttr, resolved)
}

// resolveNumericRef applies HTML5 §12.2.5.1's numeric character reference
// end-state rules: windows-1252 C1 overrides, and replacement of
// NUL/surrogates/non-characters with U+FFFD, each with the corresponding
// parse error.
func resolveNumericRef(code rune, errFn perr.Handler, line, col int) rune {
	report := func(tag perr.Tag) {
		errFn(&perr.Error{Line: line, Column: col, Tag: tag})
	}
	if code == 0 {
		report(perr.NullCharacterReference)
		return inputstream.ReplacementChar
	}
	if code > 0x10FFFF {
		report(perr.CharacterReferenceOutsideUnicodeRange)
		return inputstream.ReplacementChar
	}
	if code >= 0xD800 && code <= 0xDFFF {
		report(perr.SurrogateCharacterReference)
		return inputstream.ReplacementChar
	}
	if isNoncharacter(code) {
		report(perr.NoncharacterCharacterReference)
		return inputstream.ReplacementChar
	}
	if v, ok := windows1252Overrides[code]; ok {
		return v
	}
	if isControlOtherThanASCIIWhitespace(code) {
		report(perr.ControlCharacterReference)
	}
	return code
}
