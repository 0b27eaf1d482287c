package compose

import (
	"fmt"
	"strings"

	"github.com/KimNorgaard/go-yamlcompose/cst"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

// Props is the resolution of a decorative token span preceding a node.
type Props struct {
	// Found is the indicator token the span was expected to hold, if any.
	Found *cst.SourceToken
	// Comma is a flow separator found in the span.
	Comma       *cst.SourceToken
	SpaceBefore bool
	Comment     string
	HasNewline  bool
	Anchor      *cst.SourceToken
	Tag         *cst.SourceToken
	// NewlineAfterProp is the last newline following an anchor or tag.
	NewlineAfterProp *cst.SourceToken
	// Start is the offset of the first property, or End if there is none.
	Start int
	// End is the offset just past the span.
	End int
}

type propsOptions struct {
	flow           string
	indicator      cst.Type
	next           cst.Token
	offset         int
	onError        errors.Handler
	parentIndent   int
	startOnNewline bool
}

func isSep(t cst.Type) bool {
	return t == cst.SPACE || t == cst.NEWLINE || t == cst.COMMA
}

func resolveProps(tokens []*cst.SourceToken, po propsOptions) Props {
	var p Props
	var sep string
	var tab *cst.SourceToken
	start := -1
	atNewline, hasSpace, reqSpace := po.startOnNewline, po.startOnNewline, false
	for _, tok := range tokens {
		if reqSpace {
			if !isSep(tok.Type) {
				po.onError(errors.Offset(tok.Offset), errors.MISSING_CHAR, "Tags and anchors must be separated from the next token by white space", false)
			}
			reqSpace = false
		}
		if tab != nil {
			if atNewline && tok.Type != cst.COMMENT && tok.Type != cst.NEWLINE {
				po.onError(tab, errors.TAB_AS_INDENT, "Tabs are not allowed as indentation", false)
			}
			tab = nil
		}
		switch tok.Type {
		case cst.SPACE:
			if po.flow == "" && (po.indicator != cst.DOC_START || po.next == nil || po.next.Kind() != cst.FLOW_COLLECTION) && strings.ContainsRune(tok.Source, '\t') {
				tab = tok
			}
			hasSpace = true
		case cst.COMMENT:
			if !hasSpace {
				po.onError(tok, errors.MISSING_CHAR, "Comments must be separated from other tokens by white space characters", false)
			}
			cb := commentBody(tok.Source)
			if p.Comment == "" {
				p.Comment = cb
			} else {
				p.Comment += sep + cb
			}
			sep = ""
			atNewline = false
		case cst.NEWLINE:
			if atNewline {
				if p.Comment != "" {
					p.Comment += tok.Source
				} else if p.Found == nil || po.indicator != cst.SEQ_ITEM_IND {
					p.SpaceBefore = true
				}
			} else {
				sep += tok.Source
			}
			atNewline = true
			p.HasNewline = true
			if p.Anchor != nil || p.Tag != nil {
				p.NewlineAfterProp = tok
			}
			hasSpace = true
		case cst.ANCHOR:
			if p.Anchor != nil {
				po.onError(tok, errors.MULTIPLE_ANCHORS, "A node can have at most one anchor", false)
			}
			if n := len(tok.Source); n > 0 && tok.Source[n-1] == ':' {
				po.onError(errors.Offset(tok.Offset+n-1), errors.BAD_ALIAS, "Anchor ending in : is ambiguous", true)
			}
			p.Anchor = tok
			if start < 0 {
				start = tok.Offset
			}
			atNewline, hasSpace, reqSpace = false, false, true
		case cst.TAG:
			if p.Tag != nil {
				po.onError(tok, errors.MULTIPLE_TAGS, "A node can have at most one tag", false)
			}
			p.Tag = tok
			if start < 0 {
				start = tok.Offset
			}
			atNewline, hasSpace, reqSpace = false, false, true
		case po.indicator:
			if p.Anchor != nil || p.Tag != nil {
				po.onError(tok, errors.BAD_PROP_ORDER, fmt.Sprintf("Anchors and tags must be after the %s indicator", tok.Source), false)
			}
			if p.Found != nil {
				where := po.flow
				if where == "" {
					where = "collection"
				}
				po.onError(tok, errors.UNEXPECTED_TOKEN, fmt.Sprintf("Unexpected %s in %s", tok.Source, where), false)
			}
			p.Found = tok
			atNewline = po.indicator == cst.SEQ_ITEM_IND || po.indicator == cst.EXPLICIT_KEY_IND
			hasSpace = false
		case cst.COMMA:
			if po.flow != "" {
				if p.Comma != nil {
					po.onError(tok, errors.UNEXPECTED_TOKEN, "Unexpected , in "+po.flow, false)
				}
				p.Comma = tok
				atNewline, hasSpace = false, false
				break
			}
			fallthrough
		default:
			po.onError(tok, errors.UNEXPECTED_TOKEN, fmt.Sprintf("Unexpected %s token", tok.Type), false)
			atNewline, hasSpace = false, false
		}
	}
	p.End = po.offset
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		p.End = last.Offset + len(last.Source)
	}
	if reqSpace && po.next != nil && !isSep(po.next.Kind()) && !isEmptyScalar(po.next) {
		po.onError(errors.Offset(po.next.Pos()[0]), errors.MISSING_CHAR, "Tags and anchors must be separated from the next token by white space", false)
	}
	if tab != nil {
		next := cst.Type("")
		if po.next != nil {
			next = po.next.Kind()
		}
		if (atNewline && tab.Indent <= po.parentIndent) || next == cst.BLOCK_MAP || next == cst.BLOCK_SEQ {
			po.onError(tab, errors.TAB_AS_INDENT, "Tabs are not allowed as indentation", false)
		}
	}
	p.Start = p.End
	if start >= 0 {
		p.Start = start
	}
	return p
}

// endResult is the resolution of a trailing token span.
type endResult struct {
	comment string
	offset  int
}

// resolveEnd resolves the tokens following a node, starting at offset.
// With reqSpace set, comments must be preceded by white space.
func resolveEnd(end []*cst.SourceToken, offset int, reqSpace bool, onError errors.Handler) endResult {
	var (
		comment  string
		sep      string
		hasSpace bool
	)
	for _, tok := range end {
		switch tok.Type {
		case cst.SPACE:
			hasSpace = true
		case cst.COMMENT:
			if reqSpace && !hasSpace {
				onError(tok, errors.MISSING_CHAR, "Comments must be separated from other tokens by white space characters", false)
			}
			cb := commentBody(tok.Source)
			if comment == "" {
				comment = cb
			} else {
				comment += sep + cb
			}
			sep = ""
		case cst.NEWLINE:
			if comment != "" {
				sep += tok.Source
			}
			hasSpace = true
		default:
			onError(tok, errors.UNEXPECTED_TOKEN, fmt.Sprintf("Unexpected %s at node end", tok.Type), false)
		}
		offset += len(tok.Source)
	}
	return endResult{comment: comment, offset: offset}
}

// commentBody strips the comment marker. An empty comment keeps a single
// space so that it survives as a non-empty string.
func commentBody(source string) string {
	if len(source) <= 1 {
		return " "
	}
	return source[1:]
}

func isEmptyScalar(tok cst.Token) bool {
	s, ok := tok.(*cst.FlowScalar)
	return ok && s.Type == cst.SCALAR && s.Source == ""
}
