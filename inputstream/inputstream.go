// Package inputstream implements the buffered byte-to-character pipeline of
// HTML5 §12.2.2 "The input byte stream": append-only byte buffering,
// character-encoding detection and decoding, line-ending/NUL normalization,
// and a restartable character cursor with look-ahead and mark/rewind.
package inputstream

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Confidence records how sure the stream is about its current encoding,
// mirroring the HTML5 encoding-sniffing algorithm's confidence states.
type Confidence int

const (
	Unknown Confidence = iota
	Tentative
	Detected
	Meta
	DocumentSpecified
)

// ReplacementChar is emitted for undecodable bytes and raw NULs, per
// HTML5 §12.2.2's preprocessing of the input stream.
const ReplacementChar rune = 0xFFFD

var (
	// ErrNeedsMoreData is a sentinel, not a fatal condition: peek/advance
	// return it when the buffered bytes do not yet contain a full character
	// at the requested position.
	ErrNeedsMoreData = errors.New("inputstream: needs more data")

	// ErrEOF is returned by peek/advance once the stream has seen its
	// end-of-input append and every buffered character has been consumed.
	ErrEOF = errors.New("inputstream: eof")

	// ErrEncodingLocked is returned by ChangeEncoding once a non-ASCII
	// character has been committed past the consumed watermark, matching
	// HTML5 §12.2.3.3's rule that a <meta charset> discovered too late
	// cannot change the encoding out from under already-decoded content.
	ErrEncodingLocked = errors.New("inputstream: encoding change no longer possible")
)

// Stream is the buffered character cursor. It is not safe for concurrent
// use; callers are expected to drive it from a single goroutine, the same
// cooperative single-threaded model the rest of the parser assumes.
type Stream struct {
	buf        []byte // append-only; Insert splices into decoded, never into buf
	eof        bool   // true once append(nil-length) signaled end of input
	consumed   int    // consumed-bytes watermark for ClaimBuffer
	sawNonASCII bool  // true once a non-ASCII code point has been committed

	encodingName string
	confidence   Confidence
	decoder      *encoding.Decoder

	// decoded holds the rune-decoded view of buf[:consumed-equivalent]; it
	// is rebuilt from scratch on every (re)decode, since re-decoding always
	// restarts at the beginning of the byte buffer.
	decoded []rune
	// pos is the read cursor into decoded.
	pos int
	// decodedThrough is how many bytes of buf have been folded into
	// decoded so far; incremental decode only processes the delta.
	decodedThrough int

	suppressNULReplacement bool

	marks []int // stack of saved pos values, for mark()/rewind()

	declaredEncoding string
}

// Options configures stream creation.
type Options struct {
	// DeclaredEncoding is a high-confidence encoding name supplied by the
	// embedder (e.g. from an HTTP Content-Type header).
	DeclaredEncoding string
	// TargetEncoding forces decoding to a specific encoding regardless of
	// sniffing, bypassing detection entirely.
	TargetEncoding string
}

// New creates a Stream. With no declared or target encoding, sniffing runs
// on the first append once enough bytes are buffered.
func New(opts Options) *Stream {
	s := &Stream{}
	if opts.TargetEncoding != "" {
		s.setEncoding(opts.TargetEncoding, DocumentSpecified)
	} else if opts.DeclaredEncoding != "" {
		s.declaredEncoding = opts.DeclaredEncoding
	}
	return s
}

// Append adds bytes to the buffer. length == 0 signals end-of-input.
func (s *Stream) Append(b []byte) {
	if len(b) == 0 {
		s.eof = true
		return
	}
	s.buf = append(s.buf, b...)
	s.maybeSniff()
	s.redecodeDelta()
}

// Insert splices bytes at the current read cursor, used for
// document.write-style insertion. It does not disturb already-decoded
// trailing content: those runes are shifted to make room for the newly
// inserted ones.
func (s *Stream) Insert(b []byte) {
	if len(b) == 0 {
		return
	}
	// Decode the inserted bytes with the stream's current decoder (or as
	// raw ASCII/UTF-8 if no decoder has been established yet) and splice
	// the resulting runes directly into the decoded view at pos, rather
	// than re-running sniffing: inserted content is assumed to already be
	// in the document's character encoding (it originates from script
	// executing within the document).
	runes := s.decodeBytes(b)
	runes = normalize(runes, s.suppressNULReplacement)
	tail := append([]rune{}, s.decoded[s.pos:]...)
	s.decoded = append(s.decoded[:s.pos], append(runes, tail...)...)
}

func (s *Stream) maybeSniff() {
	if s.encodingName != "" {
		return
	}
	if bom, n := detectBOM(s.buf); bom != "" {
		s.setEncoding(bom, Detected)
		s.consumed = n // BOM bytes are consumed, never re-surfaced as characters
		if len(s.decoded) > 0 && s.decoded[0] == 0xFEFF {
			s.decoded = s.decoded[1:]
		}
		return
	}
	if s.declaredEncoding != "" {
		if canon, err := canonicalEncodingName(s.declaredEncoding); err == nil {
			s.setEncoding(canon, DocumentSpecified)
			return
		}
	}
	// Need a minimum look-ahead before giving up and falling back, mirroring
	// typical sniffing buffers; in the absence of a stronger signal we just
	// require at least one byte, since windows-1252 is a safe universal
	// fallback for any byte value.
	if len(s.buf) > 0 {
		s.setEncoding("windows-1252", Tentative)
	}
}

func detectBOM(b []byte) (name string, consumedBytes int) {
	switch {
	case len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF:
		return "utf-8", 3
	case len(b) >= 2 && b[0] == 0xFF && b[1] == 0xFE:
		return "utf-16le", 2
	case len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF:
		return "utf-16be", 2
	}
	return "", 0
}

// canonicalEncodingName normalizes an arbitrary encoding label (e.g. an
// HTTP charset or a <meta charset> value) to htmlindex's canonical name,
// the WHATWG "get an encoding" algorithm's Go equivalent.
func canonicalEncodingName(label string) (string, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return "", err
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *Stream) setEncoding(name string, c Confidence) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		// Unrecognized label: fall back to windows-1252 rather than fail
		// the whole stream, matching the HTML5 spec's "if encoding is
		// failure, set encoding to windows-1252" fallback.
		name = "windows-1252"
		enc, _ = htmlindex.Get(name)
	}
	s.encodingName = name
	s.confidence = c
	s.decoder = enc.NewDecoder()
	s.decoded = nil
	s.pos = 0
	s.decodedThrough = 0
	s.marks = nil
	s.redecodeDelta()
}

// ChangeEncoding implements the encoding-change step of HTML5 §12.2.3.3
// ("changing the encoding while parsing"): repositions the cursor to the
// start of the byte buffer and re-decodes from scratch, unless a non-ASCII
// character has already been committed past the consumed watermark, in
// which case it returns ErrEncodingLocked and the caller must surface that
// the change could not be applied.
func (s *Stream) ChangeEncoding(name string) error {
	if s.sawNonASCII {
		return ErrEncodingLocked
	}
	canon, err := canonicalEncodingName(name)
	if err != nil {
		canon = "windows-1252"
	}
	if canon == s.encodingName {
		// Still a confidence upgrade even if the name didn't change.
		s.confidence = Meta
		return nil
	}
	s.setEncoding(canon, Meta)
	return nil
}

// ReadCharset reports the current encoding name and how confident the
// stream is in it.
func (s *Stream) ReadCharset() (name string, source Confidence) {
	return s.encodingName, s.confidence
}

// decodeBytes decodes a raw byte slice using the stream's current decoder,
// or UTF-8 if none has been set up yet.
func (s *Stream) decodeBytes(b []byte) []rune {
	var text []byte
	if s.decoder != nil {
		out, err := s.decoder.Bytes(b)
		if err != nil {
			text = out // decoder already substitutes U+FFFD on error
		} else {
			text = out
		}
	} else {
		text = b
	}
	return []rune(string(text))
}

// redecodeDelta decodes any bytes appended since the last decode and folds
// the resulting, normalized runes onto the end of s.decoded.
func (s *Stream) redecodeDelta() {
	if s.decoder == nil {
		return
	}
	delta := s.buf[s.decodedThrough:]
	if len(delta) == 0 {
		return
	}
	runes := s.decodeBytes(delta)
	runes = normalize(runes, s.suppressNULReplacement)
	s.decoded = append(s.decoded, runes...)
	s.decodedThrough = len(s.buf)
}

// normalize applies HTML5 §12.2.2's code-point-level preprocessing: CRLF/CR
// → LF, and U+0000 → U+FFFD (unless suppressed for CDATA-like content
// models), and ensures undecodable bytes already surfaced as U+FFFD by the
// decoder are passed through unchanged.
func normalize(in []rune, suppressNUL bool) []rune {
	out := make([]rune, 0, len(in))
	for i := 0; i < len(in); i++ {
		r := in[i]
		switch r {
		case '\r':
			if i+1 < len(in) && in[i+1] == '\n' {
				i++
			}
			out = append(out, '\n')
		case 0:
			if suppressNUL {
				out = append(out, 0)
			} else {
				out = append(out, ReplacementChar)
			}
		default:
			out = append(out, r)
		}
	}
	return out
}

// SetSuppressNULReplacement lets the tokenizer disable NUL→U+FFFD
// replacement while in a CDATA-like content model, where the tokenizer
// itself reports the NUL and substitutes the replacement character. It
// only affects runes decoded after the call.
func (s *Stream) SetSuppressNULReplacement(suppress bool) {
	s.suppressNULReplacement = suppress
}

// Peek returns the code point offset characters ahead of the cursor without
// consuming it. offset == 0 means the next character to be read.
func (s *Stream) Peek(offset int) (rune, error) {
	i := s.pos + offset
	if i < len(s.decoded) {
		return s.decoded[i], nil
	}
	if s.eof {
		return 0, ErrEOF
	}
	return 0, ErrNeedsMoreData
}

// Advance commits consumption of n characters.
func (s *Stream) Advance(n int) {
	for i := 0; i < n && s.pos < len(s.decoded); i++ {
		if s.decoded[s.pos] >= utf8.RuneSelf {
			s.sawNonASCII = true
		}
		s.pos++
	}
	// consumed tracks a byte watermark for claim_buffer(); since decoding is
	// not 1:1 with bytes we conservatively track it as "all appended bytes
	// that have been folded into decoded and consumed", which is exactly
	// decodedThrough once pos reaches len(decoded).
	if s.pos >= len(s.decoded) {
		s.consumed = s.decodedThrough
	}
}

// LookAheadEqual compares the upcoming characters against s, either
// case-sensitively or ASCII-case-insensitively, without consuming them.
func (s *Stream) LookAheadEqual(want string, asciiCaseInsensitive bool) bool {
	wr := []rune(want)
	for i, r := range wr {
		got, err := s.Peek(i)
		if err != nil {
			return false
		}
		if got == r {
			continue
		}
		if asciiCaseInsensitive && asciiEqualFold(got, r) {
			continue
		}
		return false
	}
	return true
}

func asciiEqualFold(a, b rune) bool {
	return asciiLower(a) == asciiLower(b)
}

func asciiLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}

// Mark snapshots the cursor; Rewind restores the most recent snapshot.
func (s *Stream) Mark() {
	s.marks = append(s.marks, s.pos)
}

// Rewind restores the cursor to the position saved by the matching Mark. It
// panics if there is no outstanding mark; calling it without one is a
// programmer error, not a recoverable condition.
func (s *Stream) Rewind() {
	i := len(s.marks) - 1
	s.pos = s.marks[i]
	s.marks = s.marks[:i]
}

// DiscardMark drops the most recent mark without rewinding to it, used once
// a tentative lookahead has been confirmed.
func (s *Stream) DiscardMark() {
	if i := len(s.marks) - 1; i >= 0 {
		s.marks = s.marks[:i]
	}
}

// ClaimBuffer transfers ownership of the byte buffer to the caller; every
// operation on the Stream other than discarding it is undefined once
// called. The Stream's byte and decoded buffers are reset to nil; it does
// not itself reject later calls.
func (s *Stream) ClaimBuffer() []byte {
	b := s.buf
	s.buf = nil
	s.decoded = nil
	return b
}

// Bytes returns a read-only view of the raw buffered bytes, used by tokens
// that hold (offset, length) references into the buffer.
func (s *Stream) Bytes() []byte {
	return s.buf
}

// HasMoreInput reports whether the stream has either buffered but
// unconsumed characters or has not yet seen end-of-input.
func (s *Stream) HasMoreInput() bool {
	return s.pos < len(s.decoded) || !s.eof
}

// EOF reports whether end-of-input has been appended and fully consumed.
func (s *Stream) EOF() bool {
	return s.eof && s.pos >= len(s.decoded)
}

// indexFrom finds needle in the decoded buffer starting at the cursor,
// treating it as a byte-wise search over the UTF-8 re-encoding; used by the
// tokenizer's bogus-comment and CDATA-section fast paths.
func (s *Stream) indexFrom(needle []byte) int {
	return bytes.Index([]byte(string(s.decoded[s.pos:])), needle)
}
