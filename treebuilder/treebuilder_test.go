// External test package: internal/simpledom imports treebuilder, so a test
// that exercises both packages together must live outside package
// treebuilder to avoid an import cycle.
package treebuilder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/internal/simpledom"
	"github.com/gohubbub/hubbub/tokenizer"
	"github.com/gohubbub/hubbub/treebuilder"
)

// noopContentModel satisfies treebuilder.ContentModelSetter without needing
// a real tokenizer wired up; these tests feed tokens directly.
type noopContentModel struct{}

func (noopContentModel) SetContentModel(tokenizer.ContentModel, string) {}
func (noopContentModel) ChangeEncoding(string) error                    { return nil }

func newDriver(t *testing.T) (*treebuilder.Driver, *simpledom.Tree) {
	t.Helper()
	tree := simpledom.New()
	d := treebuilder.New(treebuilder.Config{
		Handler:   tree,
		Tokenizer: noopContentModel{},
		Document:  tree.Document,
	})
	return d, tree
}

func startTag(name string, attrs ...tokenizer.Attribute) tokenizer.Token {
	return tokenizer.Token{Kind: tokenizer.StartTagToken, Name: name, Attributes: attrs}
}

func endTag(name string) tokenizer.Token {
	return tokenizer.Token{Kind: tokenizer.EndTagToken, Name: name}
}

func char(data string) tokenizer.Token {
	return tokenizer.Token{Kind: tokenizer.CharacterToken, Data: data}
}

func eof() tokenizer.Token {
	return tokenizer.Token{Kind: tokenizer.EOFToken}
}

func run(d *treebuilder.Driver, toks ...tokenizer.Token) {
	for _, tk := range toks {
		d.Token(tk)
	}
}

// child finds the first direct element child of n with the given tag name.
func child(n *simpledom.Node, name string) *simpledom.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == simpledom.ElementNode && c.Data == name {
			return c
		}
	}
	return nil
}

func text(n *simpledom.Node) string {
	var out string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == simpledom.TextNode {
			out += c.Data
		}
	}
	return out
}

func TestSimpleParagraph(t *testing.T) {
	d, tree := newDriver(t)
	run(d, startTag("p"), char("hi"), endTag("p"), eof())
	require.NoError(t, d.Err())

	html := child(tree.Document, "html")
	require.NotNil(t, html)
	body := child(html, "body")
	require.NotNil(t, body)
	p := child(body, "p")
	require.NotNil(t, p)
	assert.Equal(t, "hi", text(p))
}

func TestSiblingParagraphsImplicitlyClose(t *testing.T) {
	d, tree := newDriver(t)
	run(d,
		startTag("p"), char("1"), endTag("p"),
		startTag("p"), char("2"), endTag("p"),
		eof(),
	)
	require.NoError(t, d.Err())

	body := child(child(tree.Document, "html"), "body")
	require.NotNil(t, body)

	var ps []*simpledom.Node
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == simpledom.ElementNode && c.Data == "p" {
			ps = append(ps, c)
		}
	}
	require.Len(t, ps, 2)
	assert.Equal(t, "1", text(ps[0]))
	assert.Equal(t, "2", text(ps[1]))
}

// TestAdoptionAgencyMisnesting exercises the classic "<b>1<i>2</b>3</i>"
// misnesting scenario (HTML5 §12.2.6.4.7 worked example): the end tag for
// <b> must run the adoption agency algorithm, cloning a new <i> for the
// trailing "3" text rather than leaving it inside the original <b>.
func TestAdoptionAgencyMisnesting(t *testing.T) {
	d, tree := newDriver(t)
	run(d,
		startTag("b"), char("1"),
		startTag("i"), char("2"),
		endTag("b"),
		char("3"),
		endTag("i"),
		eof(),
	)
	require.NoError(t, d.Err())

	body := child(child(tree.Document, "html"), "body")
	require.NotNil(t, body)

	b := child(body, "b")
	require.NotNil(t, b)
	assert.Equal(t, "1", text(b))
	bi := child(b, "i")
	require.NotNil(t, bi)
	assert.Equal(t, "2", text(bi))

	// The trailing "3" ends up in a second, sibling <i> outside <b>.
	var outerI *simpledom.Node
	for c := b.NextSibling; c != nil; c = c.NextSibling {
		if c.Type == simpledom.ElementNode && c.Data == "i" {
			outerI = c
			break
		}
	}
	require.NotNil(t, outerI)
	assert.Equal(t, "3", text(outerI))
}

func TestSelectOptionImplicitClose(t *testing.T) {
	d, tree := newDriver(t)
	run(d,
		startTag("select"),
		startTag("option"), char("1"),
		startTag("option"), char("2"),
		eof(),
	)
	require.NoError(t, d.Err())

	body := child(child(tree.Document, "html"), "body")
	require.NotNil(t, body)
	sel := child(body, "select")
	require.NotNil(t, sel)

	var opts []*simpledom.Node
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == simpledom.ElementNode && c.Data == "option" {
			opts = append(opts, c)
		}
	}
	require.Len(t, opts, 2)
	assert.Equal(t, "1", text(opts[0]))
	assert.Equal(t, "2", text(opts[1]))
}

// TestScriptContentReachesTree exercises the "text" insertion mode: once a
// <script> start tag is seen, character tokens (standing in for whatever the
// tokenizer emits in CDATA/script-data content model) are inserted verbatim
// as a single text child rather than being interpreted as markup.
func TestScriptContentReachesTree(t *testing.T) {
	d, tree := newDriver(t)
	run(d,
		startTag("script"),
		char("if (a < b) { }"),
		endTag("script"),
		eof(),
	)
	require.NoError(t, d.Err())

	head := child(tree.Document, "html")
	require.NotNil(t, head)
	// script is a head-inserted element when no body content precedes it.
	var script *simpledom.Node
	if h := child(head, "head"); h != nil {
		script = child(h, "script")
	}
	require.NotNil(t, script)
	assert.Equal(t, "if (a < b) { }", text(script))
}

func TestVoidElementNotPushedOntoStack(t *testing.T) {
	d, tree := newDriver(t)
	run(d, startTag("p"), startTag("br"), char("x"), eof())
	require.NoError(t, d.Err())

	body := child(child(tree.Document, "html"), "body")
	require.NotNil(t, body)
	p := child(body, "p")
	require.NotNil(t, p)
	br := child(p, "br")
	require.NotNil(t, br)
	// The character token after <br> lands as a sibling of <br> inside <p>,
	// proving <br> was immediately popped rather than left open.
	assert.Equal(t, "x", text(p))
}

func TestForeignMathMLElement(t *testing.T) {
	d, tree := newDriver(t)
	run(d, startTag("math"), startTag("mi"), char("x"), endTag("mi"), endTag("math"), eof())
	require.NoError(t, d.Err())

	body := child(child(tree.Document, "html"), "body")
	require.NotNil(t, body)
	math := child(body, "math")
	require.NotNil(t, math)
	assert.Equal(t, "math", math.Namespace)
	mi := child(math, "mi")
	require.NotNil(t, mi)
	assert.Equal(t, elementtype.MiType, mi.ElemType)
}
