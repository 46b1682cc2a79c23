package inputstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s *Stream) string {
	t.Helper()
	var out []rune
	for {
		r, err := s.Peek(0)
		if err != nil {
			break
		}
		out = append(out, r)
		s.Advance(1)
	}
	return string(out)
}

func TestBOMDetectionUTF8(t *testing.T) {
	s := New(Options{})
	s.Append([]byte("\xEF\xBB\xBFhello"))
	s.Append(nil)
	name, conf := s.ReadCharset()
	assert.Equal(t, "utf-8", name)
	assert.Equal(t, Detected, conf)
	assert.Equal(t, "hello", drain(t, s))
}

func TestDeclaredEncodingUsedWithoutBOM(t *testing.T) {
	s := New(Options{DeclaredEncoding: "iso-8859-1"})
	s.Append([]byte("caf\xe9"))
	s.Append(nil)
	name, conf := s.ReadCharset()
	assert.Equal(t, DocumentSpecified, conf)
	assert.NotEmpty(t, name)
	assert.Equal(t, "café", drain(t, s))
}

func TestTargetEncodingBypassesSniffing(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("\xEF\xBB\xBFhi")) // BOM bytes are just data now
	s.Append(nil)
	_, conf := s.ReadCharset()
	assert.Equal(t, DocumentSpecified, conf)
}

func TestNULReplacedByDefault(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("a\x00b"))
	s.Append(nil)
	got := drain(t, s)
	require.Len(t, []rune(got), 3)
	assert.Equal(t, ReplacementChar, []rune(got)[1])
}

func TestCRLFNormalizedToLF(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("a\r\nb\rc\nd"))
	s.Append(nil)
	assert.Equal(t, "a\nb\nc\nd", drain(t, s))
}

func TestNeedsMoreDataBeforeEOF(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("a"))
	_, err := s.Peek(5)
	assert.ErrorIs(t, err, ErrNeedsMoreData)
}

func TestEOFAfterFullyConsumed(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("a"))
	s.Append(nil)
	s.Advance(1)
	assert.True(t, s.EOF())
	_, err := s.Peek(0)
	assert.ErrorIs(t, err, ErrEOF)
}

func TestMarkRewind(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("abc"))
	s.Append(nil)
	s.Mark()
	s.Advance(2)
	s.Rewind()
	assert.Equal(t, "abc", drain(t, s))
}

func TestLookAheadEqualCaseInsensitive(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("DOCTYPE html"))
	s.Append(nil)
	assert.True(t, s.LookAheadEqual("doctype", true))
	assert.False(t, s.LookAheadEqual("doctype", false))
}

func TestChangeEncodingLockedAfterNonASCII(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("caf\xc3\xa9"))
	s.Append(nil)
	s.Advance(4) // consume past the non-ASCII é
	err := s.ChangeEncoding("iso-8859-1")
	assert.ErrorIs(t, err, ErrEncodingLocked)
}

func TestClaimBufferTransfersOwnership(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("abc"))
	buf := s.ClaimBuffer()
	assert.Equal(t, []byte("abc"), buf)
}

func TestInsertSplicesAtCursor(t *testing.T) {
	s := New(Options{TargetEncoding: "utf-8"})
	s.Append([]byte("ac"))
	s.Advance(1)
	s.Insert([]byte("b"))
	assert.Equal(t, "bc", drain(t, s))
}
