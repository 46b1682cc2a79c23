package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohubbub/hubbub/inputstream"
	"github.com/gohubbub/hubbub/perr"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	in := inputstream.New(inputstream.Options{TargetEncoding: "utf-8"})
	var toks []Token
	tok := New(in, HandlerFunc(func(tk Token) { toks = append(toks, tk) }), func(*perr.Error) {})
	in.Append([]byte(src))
	in.Append(nil)
	tok.Run()
	return toks
}

func TestSimpleStartAndEndTag(t *testing.T) {
	toks := tokenize(t, "<p>hi</p>")
	require.Len(t, toks, 4)
	assert.Equal(t, StartTagToken, toks[0].Kind)
	assert.Equal(t, "p", toks[0].Name)
	assert.Equal(t, CharacterToken, toks[1].Kind)
	assert.Equal(t, "hi", toks[1].Data)
	assert.Equal(t, EndTagToken, toks[2].Kind)
	assert.Equal(t, "p", toks[2].Name)
	assert.Equal(t, EOFToken, toks[3].Kind)
}

func TestAttributes(t *testing.T) {
	toks := tokenize(t, `<a href="x" target='y' disabled>`)
	require.Len(t, toks, 2)
	require.Len(t, toks[0].Attributes, 3)
	assert.Equal(t, Attribute{Name: "href", Value: "x"}, toks[0].Attributes[0])
	assert.Equal(t, Attribute{Name: "target", Value: "y"}, toks[0].Attributes[1])
	assert.Equal(t, Attribute{Name: "disabled", Value: ""}, toks[0].Attributes[2])
}

func TestDuplicateAttributeKeepsFirst(t *testing.T) {
	toks := tokenize(t, `<a href="first" href="second">`)
	require.Len(t, toks[0].Attributes, 1)
	assert.Equal(t, "first", toks[0].Attributes[0].Value)
}

func TestCommentToken(t *testing.T) {
	toks := tokenize(t, "<!-- hello -->")
	require.Len(t, toks, 2)
	assert.Equal(t, CommentToken, toks[0].Kind)
	assert.Equal(t, " hello ", toks[0].Data)
}

func TestDoctypeToken(t *testing.T) {
	toks := tokenize(t, "<!DOCTYPE html>")
	require.Len(t, toks, 2)
	assert.Equal(t, DoctypeToken, toks[0].Kind)
	assert.Equal(t, "html", toks[0].Name)
	assert.False(t, toks[0].ForceQuirks)
}

func TestCharacterBatchingAcrossEntities(t *testing.T) {
	toks := tokenize(t, "a&amp;b")
	require.Len(t, toks, 2)
	assert.Equal(t, CharacterToken, toks[0].Kind)
	assert.Equal(t, "a&b", toks[0].Data)
}

func TestNumericCharacterReference(t *testing.T) {
	toks := tokenize(t, "&#65;&#x42;")
	require.Len(t, toks, 2)
	assert.Equal(t, "AB", toks[0].Data)
}

func TestScriptDataVerbatimUntilAppropriateEndTag(t *testing.T) {
	in := inputstream.New(inputstream.Options{TargetEncoding: "utf-8"})
	var toks []Token
	tok := New(in, HandlerFunc(func(tk Token) { toks = append(toks, tk) }), func(*perr.Error) {})
	tok.SetContentModel(ScriptData, "script")
	in.Append([]byte("if (a < b) { }</script>"))
	in.Append(nil)
	tok.Run()
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, CharacterToken, toks[0].Kind)
	assert.Equal(t, "if (a < b) { }", toks[0].Data)
	assert.Equal(t, EndTagToken, toks[1].Kind)
	assert.Equal(t, "script", toks[1].Name)
}

func TestRCDATADoesNotInterpretTags(t *testing.T) {
	in := inputstream.New(inputstream.Options{TargetEncoding: "utf-8"})
	var toks []Token
	tok := New(in, HandlerFunc(func(tk Token) { toks = append(toks, tk) }), func(*perr.Error) {})
	tok.SetContentModel(RCDATA, "title")
	in.Append([]byte("a<b>c</title>"))
	in.Append(nil)
	tok.Run()
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, "a<b>c", toks[0].Data)
	assert.Equal(t, "title", toks[1].Name)
}

func TestSelfClosingVoidTag(t *testing.T) {
	toks := tokenize(t, "<br/>")
	require.Len(t, toks, 2)
	assert.True(t, toks[0].SelfClosing)
}

func TestNULInDataEmitsReplacementAndError(t *testing.T) {
	var errs []perr.Tag
	in := inputstream.New(inputstream.Options{TargetEncoding: "utf-8"})
	in.SetSuppressNULReplacement(true) // raw NUL passes through inputstream...
	var toks []Token
	tok := New(in, HandlerFunc(func(tk Token) { toks = append(toks, tk) }), func(e *perr.Error) { errs = append(errs, e.Tag) })
	in.Append([]byte("a\x00b"))
	in.Append(nil)
	tok.Run()
	// ...and the tokenizer's own Data-state NUL handling still replaces it.
	require.Len(t, toks, 2)
	assert.Contains(t, errs, perr.UnexpectedNUL)
	assert.Equal(t, "a�b", toks[0].Data)
}
