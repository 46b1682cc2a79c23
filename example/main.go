// Command hubbubcat parses an HTML document from stdin (or a file named on
// the command line) and prints the resulting tree, feeding the input in
// fixed-size chunks to exercise the chunked-feeding API the way a streaming
// embedder (e.g. reading off a network connection) would.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/gohubbub/hubbub"
	"github.com/gohubbub/hubbub/internal/simpledom"
	"github.com/gohubbub/hubbub/perr"
)

const chunkSize = 4096

func run() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var in io.Reader = os.Stdin
	if len(os.Args) > 1 {
		f, err := os.Open(os.Args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	tree := simpledom.New()

	parseErrors := 0
	p, err := hubbub.New(
		hubbub.WithLogger(logger),
		hubbub.WithDocumentNode(tree.Document),
		hubbub.WithTreeHandler(tree),
		hubbub.WithErrorHandler(func(e *perr.Error) {
			parseErrors++
			logger.Debug("parse error", "tag", e.Tag, "line", e.Line, "col", e.Column)
		}),
	)
	if err != nil {
		return err
	}

	for off := 0; off < len(data); off += chunkSize {
		end := off + chunkSize
		if end > len(data) {
			end = len(data)
		}
		if _, err := p.ParseChunk(data[off:end], false); err != nil {
			return err
		}
	}
	if _, err := p.ParseChunk(nil, true); err != nil {
		return err
	}

	name, confidence := p.ReadCharset()
	logger.Info("parsed document", "encoding", name, "confidence", confidence, "parse_errors", parseErrors)

	tree.Dump(os.Stdout, nil)
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("hubbubcat failed", "err", err)
		os.Exit(1)
	}
}
