// Package hubbub is an HTML5 conforming parser that drives an embedder-
// supplied tree-handler instead of building its own DOM. It wires the
// inputstream, tokenizer, and treebuilder packages behind a small chunked-
// feeding API: construct a Parser with New, feed it bytes with ParseChunk,
// and supply a tree via WithTreeHandler to receive element/text/comment
// callbacks as the document is parsed.
package hubbub
