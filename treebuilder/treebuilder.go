// Package treebuilder implements the HTML5 tree-construction driver
// (HTML5 §12.2.6): it consumes tokens and drives an embedder-supplied
// Handler through the insertion-mode state machine, maintaining the stack
// of open elements, the list of active formatting elements, and the form
// and head pointers.
//
// Its stack/list helpers (stack.go) wrap an opaque Node handle rather than
// a concrete node type, so the driver itself never needs to know what kind
// of tree the embedder is building.
package treebuilder

import (
	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
)

// ContentModelSetter lets the driver switch the tokenizer's content model
// when entering/leaving text-only elements (HTML5 §12.2.6.4 "generic raw
// text/RCDATA element parsing algorithm"). Implemented by
// *tokenizer.Tokenizer; declared as an interface here so treebuilder does
// not need to import the concrete type beyond what it actually calls.
type ContentModelSetter interface {
	SetContentModel(m tokenizer.ContentModel, lastStartTagName string)
	ChangeEncoding(name string) error
}

// FragmentContext describes the context element for fragment parsing
// (HTML5 §12.4 "parsing HTML fragments").
type FragmentContext struct {
	Namespace string
	Type      elementtype.Type
	Name      string
	Node      Node
}

// Config configures a new Driver.
type Config struct {
	Handler  Handler
	Tokenizer ContentModelSetter
	ErrorFn  perr.Handler
	Scripting bool
	Document Node // opaque document-node handle the embedder constructs around
	Fragment *FragmentContext
}

// Driver is the tree-construction driver (HTML5 §12.2.6).
type Driver struct {
	h     Handler
	tok   ContentModelSetter
	errFn perr.Handler

	openElements elementStack
	afe          afeList

	mode         mode
	originalMode mode

	templateModes insertionModeStack

	formPointer    Node
	hasForm        bool
	headPointer    Node
	hasHead        bool

	framesetOK bool
	scripting  bool

	// fosterParenting, while true, redirects character/element insertion
	// that targets a table/tbody/tfoot/thead/tr out in front of the table
	// (HTML5 §12.2.6.1), per "in table"'s foster-parenting fallback.
	fosterParenting bool

	fragment *FragmentContext

	pendingTableChars   []rune
	pendingTableHasNonWS bool

	quirksSet bool
	document  Node

	// done is set once an EOF token has been processed and the stack of
	// open elements is empty.
	done bool

	// fatal holds the first handler error encountered; once set, Token
	// stops dispatching further tokens.
	fatal error

	// encodingChange holds the charset name from the most recent <meta
	// charset> (or http-equiv Content-Type) that successfully triggered a
	// re-decode, until PendingEncodingChange pops it.
	encodingChange    string
	hasEncodingChange bool
}

// New creates a Driver. If cfg.Fragment is non-nil the driver runs the
// fragment-parsing algorithm (HTML5 §12.4), seeding the stack of open
// elements with the context element.
func New(cfg Config) *Driver {
	if cfg.ErrorFn == nil {
		cfg.ErrorFn = func(*perr.Error) {}
	}
	d := &Driver{
		h:          cfg.Handler,
		tok:        cfg.Tokenizer,
		errFn:      cfg.ErrorFn,
		scripting:  cfg.Scripting,
		framesetOK: true,
		fragment:   cfg.Fragment,
		document:   cfg.Document,
		mode:       modeInitial,
	}
	if cfg.Fragment != nil {
		d.initFragment(*cfg.Fragment)
	}
	return d
}

func (d *Driver) initFragment(fc FragmentContext) {
	// HTML5 §12.4 fragment parsing algorithm: push the context element as
	// the sole entry of the stack, reset the insertion mode, and special-
	// case a form context element by wiring it as the form pointer.
	d.openElements.push(frame{namespace: fc.Namespace, typ: fc.Type, name: fc.Name, node: fc.Node})
	if fc.Type == elementtype.FormType {
		d.formPointer = fc.Node
		d.hasForm = true
	}
	d.resetInsertionMode()
	switch fc.Type {
	case elementtype.TitleType, elementtype.TextareaType:
		d.tok.SetContentModel(tokenizer.RCDATA, fc.Name)
		d.originalMode = d.mode
		d.mode = modeText
	case elementtype.StyleType, elementtype.XmpType, elementtype.IframeType, elementtype.NoframesType:
		d.tok.SetContentModel(tokenizer.CDATA, fc.Name)
		d.originalMode = d.mode
		d.mode = modeText
	case elementtype.ScriptType:
		d.tok.SetContentModel(tokenizer.ScriptData, fc.Name)
		d.originalMode = d.mode
		d.mode = modeText
	case elementtype.PlaintextType:
		d.tok.SetContentModel(tokenizer.Plaintext, fc.Name)
	}
}

// Token implements tokenizer.Handler: the tokenizer calls this once per
// emitted token, reprocessing internally until the "reprocess the token"
// flag HTML5 §12.2.6 attaches to several insertion-mode steps clears.
func (d *Driver) Token(t tokenizer.Token) {
	if d.done {
		return
	}
	_ = d.process(t)
}

// PendingEncodingChange reports and clears any charset name recorded by a
// <meta charset> discovered since the last call, for Parser.ParseChunk to
// surface as EncodingChangeRequired.
func (d *Driver) PendingEncodingChange() (string, bool) {
	if !d.hasEncodingChange {
		return "", false
	}
	name := d.encodingChange
	d.encodingChange = ""
	d.hasEncodingChange = false
	return name, true
}

// Err surfaces the first fatal handler error, if any, so the
// top-level Parser can abort the current parse_chunk call. The driver does
// not panic on handler errors; it records the first one and stops invoking
// the handler further for safety.
func (d *Driver) Err() error { return d.fatal }

// process runs the dispatch loop for a single token, honoring the
// "reprocess the token" flag several insertion-mode steps can set (a mode
// handler asks for the same token to be reprocessed in another mode; the
// loop always terminates because reprocessing strictly advances mode or is
// finite by construction of the handlers below).
func (d *Driver) process(t tokenizer.Token) error {
	for {
		if d.fatal != nil {
			return d.fatal
		}
		reprocess, err := d.dispatch(t)
		if err != nil {
			d.fatal = err
			return err
		}
		if !reprocess {
			break
		}
	}
	if t.Kind == tokenizer.EOFToken {
		d.done = len(d.openElements) == 0
	}
	return nil
}
