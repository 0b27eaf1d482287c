package compose

import (
	"iter"

	"github.com/KimNorgaard/go-yamlcompose/ast"
	"github.com/KimNorgaard/go-yamlcompose/cst"
)

// Stream pulls tokens from a source only as far as needed to produce the
// next document.
type Stream struct {
	c         *Composer
	src       cst.TokenSource
	forceDoc  bool
	endOffset int
	done      bool
}

// NewStream returns a Stream composing the tokens of src. forceDoc and
// endOffset are passed to Composer.End once src is exhausted.
func (c *Composer) NewStream(src cst.TokenSource, forceDoc bool, endOffset int) *Stream {
	return &Stream{c: c, src: src, forceDoc: forceDoc, endOffset: endOffset}
}

// NextDocument returns the next composed document. It reports false once
// the stream is exhausted.
func (s *Stream) NextDocument() (*ast.Document, bool) {
	if s.done {
		return nil, false
	}
	for {
		tok, ok := s.src.Next()
		if !ok {
			break
		}
		if doc := s.c.Next(tok); doc != nil {
			return doc, true
		}
	}
	s.done = true
	if doc := s.c.End(s.forceDoc, s.endOffset); doc != nil {
		return doc, true
	}
	return nil, false
}

// Composer returns the composer backing s, for StreamInfo queries.
func (s *Stream) Composer() *Composer { return s.c }

// Compose returns an iterator over the documents of tokens. Stopping the
// iteration early stops consuming tokens.
func (c *Composer) Compose(tokens iter.Seq[cst.Token], forceDoc bool, endOffset int) iter.Seq[*ast.Document] {
	return func(yield func(*ast.Document) bool) {
		for tok := range tokens {
			if doc := c.Next(tok); doc != nil && !yield(doc) {
				return
			}
		}
		if doc := c.End(forceDoc, endOffset); doc != nil {
			yield(doc)
		}
	}
}
