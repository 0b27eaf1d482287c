package compose

import (
	"github.com/KimNorgaard/go-yamlcompose/ast"
	"github.com/KimNorgaard/go-yamlcompose/cst"
	"github.com/KimNorgaard/go-yamlcompose/directives"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

// composeDoc assembles one document span into a composed document. All
// problems go to onError; a document is always returned.
func composeDoc(o *options, dirs *directives.Directives, tok *cst.Document, onError errors.Handler) *ast.Document {
	doc := ast.NewDocument(dirs, o.schema, o.strict)
	ctx := &Context{
		AtRoot:     true,
		Directives: doc.Directives,
		Schema:     o.schema,
		Strict:     o.strict,
	}

	next := tok.Value
	if next == nil && len(tok.End) > 0 {
		next = tok.End[0]
	}
	props := resolveProps(tok.Start, propsOptions{
		indicator:      cst.DOC_START,
		next:           next,
		offset:         tok.Offset,
		onError:        onError,
		parentIndent:   0,
		startOnNewline: true,
	})
	if props.Found != nil {
		doc.Directives.DocStart = true
		switch tok.Value.(type) {
		case *cst.BlockMap, *cst.BlockSeq:
			if !props.HasNewline {
				onError(errors.Offset(props.End), errors.MISSING_CHAR, "Block collection cannot start on same line with directives-end marker", false)
			}
		}
	}

	if tok.Value != nil {
		doc.Contents = o.nodes.ComposeNode(ctx, tok.Value, props, onError)
	} else {
		doc.Contents = o.nodes.ComposeEmptyNode(ctx, props.End, tok.Start, -1, props, onError)
	}

	contentEnd := doc.Contents.Meta().Range[2]
	re := resolveEnd(tok.End, contentEnd, false, onError)
	if re.comment != "" {
		doc.Comment = re.comment
	}
	doc.Range = ast.Range{tok.Offset, contentEnd, re.offset}
	return doc
}
