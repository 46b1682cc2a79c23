package hubbub

import (
	"log/slog"

	"github.com/gohubbub/hubbub/elementtype"
	"github.com/gohubbub/hubbub/perr"
	"github.com/gohubbub/hubbub/tokenizer"
	"github.com/gohubbub/hubbub/treebuilder"
)

// config holds the resolved parser configuration built up by Options.
type config struct {
	logger *slog.Logger

	declaredEncoding string
	targetEncoding   string

	tokenHandler tokenizer.Handler
	treeHandler  treebuilder.Handler
	errorHandler perr.Handler

	contentModel     tokenizer.ContentModel
	contentModelName string

	document    treebuilder.Node
	scripting   bool
	fragment    *treebuilder.FragmentContext
	maxInputLen int
}

// Option configures a Parser, following the functional-options pattern.
type Option func(*config)

// WithLogger sets the structured logger used for internal diagnostics
// (fragment-parse setup, required encoding changes). Defaults to
// slog.Default() if unset.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithDeclaredEncoding supplies a transport-declared character encoding
// (e.g. a Content-Type header's charset parameter). When the input has no
// byte-order mark it is used with DocumentSpecified confidence.
func WithDeclaredEncoding(name string) Option {
	return func(c *config) { c.declaredEncoding = name }
}

// WithTargetEncoding forces the input stream to decode as the named
// encoding with DocumentSpecified confidence, skipping sniffing entirely.
func WithTargetEncoding(name string) Option {
	return func(c *config) { c.targetEncoding = name }
}

// WithTokenHandler bypasses tree construction entirely: every token is
// delivered to h instead of being fed to a treebuilder.Driver. Mutually
// exclusive with WithTreeHandler; the last one supplied wins.
func WithTokenHandler(h tokenizer.Handler) Option {
	return func(c *config) { c.tokenHandler = h; c.treeHandler = nil }
}

// WithTreeHandler configures the embedder's tree-mutation vtable. This is
// the normal way to use the parser.
func WithTreeHandler(h treebuilder.Handler) Option {
	return func(c *config) { c.treeHandler = h; c.tokenHandler = nil }
}

// WithDocumentNode supplies the opaque node the parser will use as the
// root for doctype/html insertion and any before-html comments.
func WithDocumentNode(n treebuilder.Node) Option {
	return func(c *config) { c.document = n }
}

// WithErrorHandler registers a callback invoked for every non-fatal parse
// error encountered by the tokenizer or tree builder.
func WithErrorHandler(fn perr.Handler) Option {
	return func(c *config) { c.errorHandler = fn }
}

// WithContentModel overrides the tokenizer's initial content model, used
// by the fragment-parsing case when the context element implies a non-
// PCDATA model (e.g. parsing a fragment whose context is <textarea>).
func WithContentModel(m tokenizer.ContentModel, lastStartTagName string) Option {
	return func(c *config) { c.contentModel = m; c.contentModelName = lastStartTagName }
}

// WithScriptingEnabled marks scripting as enabled, which affects a handful
// of insertion-mode branches (e.g. <noscript> parses as RAWTEXT rather
// than as parsed content) per HTML5 §12.2.
func WithScriptingEnabled() Option {
	return func(c *config) { c.scripting = true }
}

// WithFragmentContext switches the parser into the fragment-parsing
// algorithm (HTML5 §12.4), using namespace/t/name to seed the context
// element and node as its already-created opaque handle.
func WithFragmentContext(namespace string, t elementtype.Type, name string, node treebuilder.Node) Option {
	return func(c *config) {
		c.fragment = &treebuilder.FragmentContext{Namespace: namespace, Type: t, Name: name, Node: node}
	}
}

// WithMaxBufferedInput caps the total number of input bytes the parser
// will hold; a ParseChunk that would exceed it returns BadParameter, guarding against unbounded memory growth
// when an embedder never calls EOF. Zero (the default) means unlimited.
func WithMaxBufferedInput(n int) Option {
	return func(c *config) { c.maxInputLen = n }
}
