package perr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagString(t *testing.T) {
	assert.Equal(t, "unexpected-null-character", UnexpectedNUL.String())
	assert.Equal(t, "stray-end-tag", StrayEndTag.String())
	assert.Equal(t, "unknown", Tag(-1).String())
}

func TestErrorMessageIncludesContext(t *testing.T) {
	e := &Error{Line: 3, Column: 7, Tag: StrayStartTag, Context: "marquee"}
	require.Contains(t, e.Error(), "3:7")
	require.Contains(t, e.Error(), "stray-start-tag")
	require.Contains(t, e.Error(), "marquee")
}

func TestErrorMessageWithoutContext(t *testing.T) {
	e := &Error{Line: 1, Column: 1, Tag: EOFInComment}
	assert.Equal(t, "1:1: eof-in-comment", e.Error())
}

func TestHandlerReceivesError(t *testing.T) {
	var got *Error
	h := Handler(func(e *Error) { got = e })
	h(&Error{Tag: UnclosedElements})
	require.NotNil(t, got)
	assert.Equal(t, UnclosedElements, got.Tag)
}
