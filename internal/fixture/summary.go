package fixture

import (
	"github.com/KimNorgaard/go-yamlcompose/ast"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

// Summarize reduces a composed document to the shape recorded in fixtures.
func Summarize(d *ast.Document) Document {
	return Document{
		Contents:      d.String(),
		Comment:       d.Comment,
		CommentBefore: d.CommentBefore,
		Range:         d.Range[:],
		Errors:        Codes(d.Errors),
		Warnings:      Codes(d.Warnings),
		DocStart:      d.Directives.DocStart,
		DocEnd:        d.Directives.DocEnd,
	}
}

// SummarizeStream reduces what is left after the last document.
func SummarizeStream(comment string, errs []*errors.Error) Stream {
	return Stream{Comment: comment, Errors: Codes(errs)}
}

// Codes lists the code of every error, nil when es is empty.
func Codes(es []*errors.Error) []string {
	var out []string
	for _, e := range es {
		out = append(out, string(e.Code))
	}
	return out
}
