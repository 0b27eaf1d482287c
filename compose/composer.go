package compose

import (
	"fmt"
	"log/slog"

	"github.com/KimNorgaard/go-yamlcompose/ast"
	"github.com/KimNorgaard/go-yamlcompose/cst"
	"github.com/KimNorgaard/go-yamlcompose/directives"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

// Composer assembles a token stream into documents. A document is held
// back until the next document starts or the stream ends, so that a
// following doc-end marker and trailing comments can still attach to it.
//
// A Composer is not safe for concurrent use.
type Composer struct {
	opts       *options
	directives *directives.Directives
	log        *slog.Logger

	doc          *ast.Document
	atDirectives bool
	prelude      []string
	errors       []*errors.Error
	warnings     []*errors.Error
}

// StreamInfo is the state accumulated since the last document was
// decorated.
type StreamInfo struct {
	Comment    string
	Directives *directives.Directives
	Errors     []*errors.Error
	Warnings   []*errors.Error
}

// New returns a Composer configured by opts.
func New(opts ...Option) (*Composer, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Composer{
		opts:       o,
		directives: directives.New(o.version),
		log:        o.logger,
	}, nil
}

func (c *Composer) onError(loc errors.Locator, code errors.Code, message string, warning bool) {
	e := errors.New(loc, code, message, warning)
	if warning {
		c.warnings = append(c.warnings, e)
	} else {
		c.errors = append(c.errors, e)
	}
}

// Next consumes one token. It returns the previously buffered document
// when tok starts a new one, and nil otherwise.
func (c *Composer) Next(tok cst.Token) *ast.Document {
	c.log.Debug("token", "type", tok.Kind(), "offset", tok.Pos()[0])
	switch t := tok.(type) {
	case *cst.SourceToken:
		switch t.Type {
		case cst.DIRECTIVE:
			c.directives.Add(t.Source, func(offset int, message string, warning bool) {
				pos := t.Pos()
				pos[0] += offset
				c.onError(errors.Span(pos), errors.BAD_DIRECTIVE, message, warning)
			})
			c.prelude = append(c.prelude, t.Source)
			c.atDirectives = true
		case cst.BYTE_ORDER_MARK, cst.SPACE:
		case cst.COMMENT, cst.NEWLINE:
			c.prelude = append(c.prelude, t.Source)
		default:
			c.unsupported(tok)
		}
	case *cst.Document:
		doc := composeDoc(c.opts, c.directives, t, c.onError)
		if c.atDirectives && !doc.Directives.DocStart {
			c.onError(t, errors.MISSING_CHAR, "Missing directives-end/doc-start indicator line", false)
		}
		c.decorate(doc, false)
		prev := c.doc
		c.doc = doc
		c.atDirectives = false
		if prev != nil {
			c.log.Debug("document", "offset", prev.Range[0])
		}
		return prev
	case *cst.ErrorToken:
		msg := t.Message
		if t.Source != "" {
			msg = fmt.Sprintf("%s: %q", t.Message, t.Source)
		}
		err := errors.New(errors.Source{Offset: t.Offset, Source: t.Source}, errors.UNEXPECTED_TOKEN, msg, false)
		if c.atDirectives || c.doc == nil {
			c.errors = append(c.errors, err)
		} else {
			c.doc.Errors = append(c.doc.Errors, err)
		}
	case *cst.DocumentEnd:
		if c.doc == nil {
			c.errors = append(c.errors, errors.New(t, errors.UNEXPECTED_TOKEN, "Unexpected doc-end without preceding document", false))
			break
		}
		c.doc.Directives.DocEnd = true
		end := resolveEnd(t.End, t.Offset+len(t.Source), c.doc.Strict, c.onError)
		c.decorate(c.doc, true)
		if end.comment != "" {
			c.doc.Comment = joinComment(c.doc.Comment, end.comment)
		}
		c.doc.Range[2] = end.offset
	default:
		c.unsupported(tok)
	}
	return nil
}

func (c *Composer) unsupported(tok cst.Token) {
	c.errors = append(c.errors, errors.New(tok, errors.UNEXPECTED_TOKEN, fmt.Sprintf("Unsupported token %s", tok.Kind()), false))
}

// End flushes the buffered document. With forceDoc set and no document
// buffered, it synthesizes an empty one carrying the pending comments and
// diagnostics, spanning [0, endOffset, endOffset]. It returns nil when
// there is nothing to emit.
func (c *Composer) End(forceDoc bool, endOffset int) *ast.Document {
	if c.doc != nil {
		doc := c.doc
		c.decorate(doc, true)
		c.doc = nil
		c.log.Debug("document", "offset", doc.Range[0])
		return doc
	}
	if !forceDoc {
		return nil
	}
	doc := ast.NewDocument(c.directives, c.opts.schema, c.opts.strict)
	if c.atDirectives {
		c.onError(errors.Offset(endOffset), errors.MISSING_CHAR, "Missing directives-end indicator line", false)
	}
	doc.Range = ast.Range{0, endOffset, endOffset}
	c.decorate(doc, false)
	return doc
}

// StreamInfo returns the comments, directives and diagnostics not yet
// attached to any document.
func (c *Composer) StreamInfo() StreamInfo {
	comment, _ := parsePrelude(c.prelude)
	return StreamInfo{
		Comment:    comment,
		Directives: c.directives.Clone(),
		Errors:     c.errors,
		Warnings:   c.warnings,
	}
}

// decorate attaches the prelude comment and the pending diagnostics to
// doc, then clears them. afterDoc means the prelude follows the document's
// contents rather than preceding them.
func (c *Composer) decorate(doc *ast.Document, afterDoc bool) {
	comment, afterEmptyLine := parsePrelude(c.prelude)
	if comment != "" {
		dc := doc.Contents
		switch {
		case afterDoc:
			doc.Comment = joinComment(doc.Comment, comment)
		case afterEmptyLine || doc.Directives.DocStart || dc == nil:
			doc.CommentBefore = comment
		default:
			target := dc
			if coll, ok := dc.(ast.Collection); ok && !coll.IsFlow() && coll.Len() > 0 {
				if head := coll.Head(); head != nil {
					target = head
				}
			}
			meta := target.Meta()
			meta.CommentBefore = joinComment(comment, meta.CommentBefore)
		}
	}
	if afterDoc {
		doc.Errors = append(doc.Errors, c.errors...)
		doc.Warnings = append(doc.Warnings, c.warnings...)
	} else {
		if len(c.errors) > 0 {
			doc.Errors = c.errors
		}
		if len(c.warnings) > 0 {
			doc.Warnings = c.warnings
		}
	}
	c.prelude = nil
	c.errors = nil
	c.warnings = nil
}

func joinComment(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + "\n" + b
}
