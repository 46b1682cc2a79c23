package hubbub

import (
	"log/slog"

	"github.com/gohubbub/hubbub/inputstream"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
	"github.com/gohubbub/hubbub/treebuilder"
)

// Parser drives the inputstream/tokenizer/treebuilder pipeline behind a
// chunked-feeding API. It is not safe for concurrent use.
type Parser struct {
	logger *slog.Logger

	in  *inputstream.Stream
	tok *tokenizer.Tokenizer
	tb  *treebuilder.Driver

	maxInputLen int
	stopped     bool
	claimed     bool
}

// New constructs a Parser from the supplied Options. It returns
// ErrNoTreeHandler if neither WithTreeHandler nor WithTokenHandler was
// given, since a parser driving nothing is certainly a caller mistake.
func New(opts ...Option) (*Parser, error) {
	var c config
	for _, o := range opts {
		o(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.treeHandler == nil && c.tokenHandler == nil {
		return nil, ErrNoTreeHandler
	}

	in := inputstream.New(inputstream.Options{
		DeclaredEncoding: c.declaredEncoding,
		TargetEncoding:   c.targetEncoding,
	})

	p := &Parser{logger: c.logger, in: in, maxInputLen: c.maxInputLen}

	errFn := perr.Handler(func(*perr.Error) {})
	if c.errorHandler != nil {
		errFn = c.errorHandler
	}

	t := tokenizer.New(in, nil, errFn)
	p.tok = t

	if c.tokenHandler != nil {
		t.SetHandler(c.tokenHandler)
		return p, nil
	}

	tb := treebuilder.New(treebuilder.Config{
		Handler:   c.treeHandler,
		Tokenizer: t,
		ErrorFn:   errFn,
		Scripting: c.scripting,
		Document:  c.document,
		Fragment:  c.fragment,
	})
	p.tb = tb
	t.SetHandler(tb)

	if c.fragment != nil {
		p.logger.Debug("hubbub: fragment parse configured", "context", c.fragment.Name)
	}
	if c.contentModel != tokenizer.PCDATA {
		t.SetContentModel(c.contentModel, c.contentModelName)
	}

	return p, nil
}

// ParseChunk feeds data into the parser. eof marks this as the final chunk;
// no further ParseChunk calls are valid afterward. It returns
// EncodingChangeRequired if this call's tokens included a <meta charset>
// (or equivalent http-equiv) that arrived in time to change the input
// stream's encoding and re-decode (HTML5 §12.2.3.3 "changing the
// encoding while parsing") — the embedder should restart parsing of the
// whole input under the reported encoding. It returns BadParameter if
// called after EOF or past WithMaxBufferedInput, and Invalid if the tree
// handler returned an error.
func (p *Parser) ParseChunk(data []byte, eof bool) (Result, error) {
	if p.stopped {
		return BadParameter, ErrAlreadyStopped
	}
	if p.maxInputLen > 0 && len(p.in.Bytes())+len(data) > p.maxInputLen {
		return BadParameter, nil
	}

	p.in.Append(data)
	if eof {
		p.in.Append(nil)
	}

	p.tok.Run()

	if p.tb != nil {
		if err := p.tb.Err(); err != nil {
			p.stopped = true
			return Invalid, &HandlerError{Op: "tree-construction", Err: err}
		}
		if name, ok := p.tb.PendingEncodingChange(); ok {
			p.logger.Debug("hubbub: encoding change required", "charset", name)
			if eof {
				p.stopped = true
			}
			return EncodingChangeRequired, nil
		}
	}

	if eof {
		p.stopped = true
	}
	return Ok, nil
}

// Insert splices bytes at the current read cursor, the document.write
// entry point. Valid only while the parser has not yet stopped.
func (p *Parser) Insert(data []byte) error {
	if p.stopped {
		return ErrAlreadyStopped
	}
	p.in.Insert(data)
	return nil
}

// ClaimBuffer transfers ownership of the parser's internal byte buffer to
// the caller, returning ErrClaimed if it has already been claimed.
func (p *Parser) ClaimBuffer() ([]byte, error) {
	if p.claimed {
		return nil, ErrClaimed
	}
	p.claimed = true
	return p.in.ClaimBuffer(), nil
}

// ReadCharset reports the encoding the input stream settled on and how
// confident it is, for embedders that want to surface it (e.g. in a
// Content-Type response header).
func (p *Parser) ReadCharset() (name string, confidence inputstream.Confidence) {
	return p.in.ReadCharset()
}
