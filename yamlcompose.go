package yamlcompose

import (
	"github.com/KimNorgaard/go-yamlcompose/ast"
	"github.com/KimNorgaard/go-yamlcompose/compose"
	"github.com/KimNorgaard/go-yamlcompose/cst"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

// ComposeAll composes every document of a complete token stream.
// sourceLen is the length of the source the tokens were read from; it
// positions the empty document returned for a stream without content.
//
// All documents are returned even when some of them carry errors. The
// error, if any, is an errors.Errors value collecting every document's
// errors in stream order.
func ComposeAll(tokens []cst.Token, sourceLen int, opts ...compose.Option) ([]*ast.Document, error) {
	c, err := compose.New(opts...)
	if err != nil {
		return nil, err
	}
	var (
		docs []*ast.Document
		errs errors.Errors
	)
	s := c.NewStream(cst.Tokens(tokens...), true, sourceLen)
	for {
		doc, ok := s.NextDocument()
		if !ok {
			break
		}
		docs = append(docs, doc)
		errs = append(errs, doc.Errors...)
	}
	if len(errs) > 0 {
		return docs, errs
	}
	return docs, nil
}

// NewStream returns a lazily composing stream over src. Documents are
// only composed as NextDocument is called.
func NewStream(src cst.TokenSource, sourceLen int, opts ...compose.Option) (*compose.Stream, error) {
	c, err := compose.New(opts...)
	if err != nil {
		return nil, err
	}
	return c.NewStream(src, true, sourceLen), nil
}

// Visit walks a CST item depth-first. See cst.Visit.
func Visit(root *cst.CollectionItem, v cst.Visitor) cst.Result {
	return cst.Visit(root, v)
}
