package hubbub

import (
	"errors"
	"fmt"

	"github.com/gohubbub/hubbub/perr"
)

// Result reports the outcome of a ParseChunk call.
type Result int

const (
	Ok Result = iota
	BadParameter
	EncodingChangeRequired
	Paused
	Invalid
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "ok"
	case BadParameter:
		return "bad-parameter"
	case EncodingChangeRequired:
		return "encoding-change-required"
	case Paused:
		return "paused"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Sentinel errors returned by Parser methods, checked with errors.Is.
var (
	// ErrClaimed is returned by ClaimBuffer once the buffer has already
	// been claimed.
	ErrClaimed = errors.New("hubbub: buffer already claimed")

	// ErrAlreadyStopped is returned by ParseChunk after EOF has been
	// signalled, since no further input can be accepted.
	ErrAlreadyStopped = errors.New("hubbub: parser already reached eof")

	// ErrNoTreeHandler is returned by New when neither WithTreeHandler nor
	// WithTokenHandler was supplied.
	ErrNoTreeHandler = errors.New("hubbub: no tree or token handler configured")
)

// ParseError wraps a non-fatal tokenizer or tree-construction parse error
// surfaced through the configured error callback. Err carries the
// originating tag and source position.
type ParseError struct {
	Err *perr.Error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("hubbub: %s", e.Err.Error())
}

func (e *ParseError) Unwrap() error { return e.Err }

// HandlerError wraps an error returned by the embedder's tree Handler,
// identifying which vtable call failed.
type HandlerError struct {
	Op  string
	Err error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("hubbub: tree handler %s: %v", e.Op, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
