package hubbub_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hubbub "github.com/gohubbub/hubbub"
	"github.com/gohubbub/hubbub/inputstream"
	"github.com/gohubbub/hubbub/internal/simpledom"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
)

func dumpString(tree *simpledom.Tree) string {
	var buf bytes.Buffer
	tree.Dump(&buf, nil)
	return buf.String()
}

func TestEndToEndParagraph(t *testing.T) {
	tree := simpledom.New()
	p, err := hubbub.New(
		hubbub.WithDocumentNode(tree.Document),
		hubbub.WithTreeHandler(tree),
	)
	require.NoError(t, err)

	res, err := p.ParseChunk([]byte("<p>hi</p>"), true)
	require.NoError(t, err)
	assert.Equal(t, hubbub.Ok, res)
	assert.Contains(t, dumpString(tree), `"hi"`)
}

func TestChunkedFeedingMatchesSingleShot(t *testing.T) {
	src := []byte("<!DOCTYPE html><html><head><title>T</title></head>" +
		"<body><p>one<b>two</b></p><ul><li>a<li>b</ul></body></html>")

	single := simpledom.New()
	p1, err := hubbub.New(hubbub.WithDocumentNode(single.Document), hubbub.WithTreeHandler(single))
	require.NoError(t, err)
	_, err = p1.ParseChunk(src, true)
	require.NoError(t, err)

	chunked := simpledom.New()
	p2, err := hubbub.New(hubbub.WithDocumentNode(chunked.Document), hubbub.WithTreeHandler(chunked))
	require.NoError(t, err)
	for i := 0; i < len(src); i += 7 {
		end := i + 7
		if end > len(src) {
			end = len(src)
		}
		_, err := p2.ParseChunk(src[i:end], false)
		require.NoError(t, err)
	}
	_, err = p2.ParseChunk(nil, true)
	require.NoError(t, err)

	if diff := cmp.Diff(dumpString(single), dumpString(chunked)); diff != "" {
		t.Errorf("chunked feeding produced a different tree (-single +chunked):\n%s", diff)
	}
}

func TestErrNoTreeHandler(t *testing.T) {
	_, err := hubbub.New()
	assert.ErrorIs(t, err, hubbub.ErrNoTreeHandler)
}

func TestParseChunkAfterEOFFails(t *testing.T) {
	tree := simpledom.New()
	p, err := hubbub.New(hubbub.WithDocumentNode(tree.Document), hubbub.WithTreeHandler(tree))
	require.NoError(t, err)

	_, err = p.ParseChunk([]byte("<p>x</p>"), true)
	require.NoError(t, err)

	res, err := p.ParseChunk([]byte("more"), false)
	assert.Equal(t, hubbub.BadParameter, res)
	assert.ErrorIs(t, err, hubbub.ErrAlreadyStopped)
}

func TestClaimBufferOnlyOnce(t *testing.T) {
	tree := simpledom.New()
	p, err := hubbub.New(hubbub.WithDocumentNode(tree.Document), hubbub.WithTreeHandler(tree))
	require.NoError(t, err)

	_, err = p.ClaimBuffer()
	require.NoError(t, err)
	_, err = p.ClaimBuffer()
	assert.ErrorIs(t, err, hubbub.ErrClaimed)
}

func TestBOMFlowsToReadCharset(t *testing.T) {
	tree := simpledom.New()
	p, err := hubbub.New(hubbub.WithDocumentNode(tree.Document), hubbub.WithTreeHandler(tree))
	require.NoError(t, err)

	_, err = p.ParseChunk(append([]byte("\xEF\xBB\xBF"), []byte("<p>hi</p>")...), true)
	require.NoError(t, err)

	name, confidence := p.ReadCharset()
	assert.Equal(t, "utf-8", name)
	assert.Equal(t, inputstream.Detected, confidence)
}

func TestWithTokenHandlerBypassesTreeConstruction(t *testing.T) {
	var kinds []tokenizer.Kind
	p, err := hubbub.New(hubbub.WithTokenHandler(tokenizer.HandlerFunc(func(tk tokenizer.Token) {
		kinds = append(kinds, tk.Kind)
	})))
	require.NoError(t, err)

	_, err = p.ParseChunk([]byte("<p>hi</p>"), true)
	require.NoError(t, err)

	require.NotEmpty(t, kinds)
	assert.Equal(t, tokenizer.StartTagToken, kinds[0])
}

func TestErrorHandlerReceivesParseErrors(t *testing.T) {
	tree := simpledom.New()
	var tags []perr.Tag
	p, err := hubbub.New(
		hubbub.WithDocumentNode(tree.Document),
		hubbub.WithTreeHandler(tree),
		hubbub.WithErrorHandler(func(e *perr.Error) { tags = append(tags, e.Tag) }),
	)
	require.NoError(t, err)

	_, err = p.ParseChunk([]byte("</p>"), true)
	require.NoError(t, err)
	assert.NotEmpty(t, tags)
}

func TestMaxBufferedInputRejectsOversizedChunk(t *testing.T) {
	tree := simpledom.New()
	p, err := hubbub.New(
		hubbub.WithDocumentNode(tree.Document),
		hubbub.WithTreeHandler(tree),
		hubbub.WithMaxBufferedInput(4),
	)
	require.NoError(t, err)

	res, err := p.ParseChunk([]byte("toolong"), false)
	assert.Equal(t, hubbub.BadParameter, res)
	assert.NoError(t, err)
}

func TestInsertAfterStopFails(t *testing.T) {
	tree := simpledom.New()
	p, err := hubbub.New(hubbub.WithDocumentNode(tree.Document), hubbub.WithTreeHandler(tree))
	require.NoError(t, err)

	_, err = p.ParseChunk([]byte("<p>x</p>"), true)
	require.NoError(t, err)

	err = p.Insert([]byte("y"))
	assert.True(t, errors.Is(err, hubbub.ErrAlreadyStopped))
}
