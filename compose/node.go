package compose

import (
	"fmt"
	"strings"

	"github.com/KimNorgaard/go-yamlcompose/ast"
	"github.com/KimNorgaard/go-yamlcompose/cst"
	"github.com/KimNorgaard/go-yamlcompose/directives"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

// Context is the state shared by node composition within one document.
type Context struct {
	Directives *directives.Directives
	Schema     string
	Strict     bool
	// AtRoot is set while composing the document's top-level node.
	AtRoot bool
	// AtKey is set while composing a mapping key.
	AtKey bool
}

// NodeComposer turns value tokens into composed nodes. Implementations
// report problems through onError and always return a node.
type NodeComposer interface {
	// ComposeNode composes tok, decorated by the already resolved props.
	ComposeNode(ctx *Context, tok cst.Token, props Props, onError errors.Handler) ast.Node
	// ComposeEmptyNode synthesizes a null scalar in place of a missing
	// value. before holds the tokens preceding the position; pos limits
	// how many of them are considered, with -1 meaning all.
	ComposeEmptyNode(ctx *Context, offset int, before []*cst.SourceToken, pos int, props Props, onError errors.Handler) ast.Node
}

// DefaultNodeComposer returns the structural node composer. It keeps the
// raw source of scalars and does not resolve them to typed values.
func DefaultNodeComposer() NodeComposer {
	return structural{}
}

type structural struct{}

func (c structural) ComposeNode(ctx *Context, tok cst.Token, props Props, onError errors.Handler) ast.Node {
	atKey := ctx.AtKey
	var node ast.Node
	switch t := tok.(type) {
	case *cst.FlowScalar:
		if t.Type == cst.ALIAS {
			node = c.alias(t, onError)
			if props.Anchor != nil || props.Tag != nil {
				onError(t, errors.ALIAS_PROPS, "An alias node must not specify any properties", false)
			}
			break
		}
		node = c.flowScalar(ctx, t, props.Tag, onError)
	case *cst.BlockScalar:
		node = c.blockScalar(ctx, t, props.Tag, onError)
	case *cst.BlockMap:
		node = c.blockMap(ctx, t, onError)
	case *cst.BlockSeq:
		node = c.blockSeq(ctx, t, onError)
	case *cst.FlowCollection:
		node = c.flowCollection(ctx, t, onError)
	default:
		msg := fmt.Sprintf("Unsupported token (type: %s)", tok.Kind())
		if et, ok := tok.(*cst.ErrorToken); ok {
			msg = et.Message
		}
		onError(tok, errors.UNEXPECTED_TOKEN, msg, false)
		ctx.AtKey = atKey
		return c.ComposeEmptyNode(ctx, tok.Pos()[0], nil, -1, props, onError)
	}
	ctx.AtKey = atKey
	meta := node.Meta()
	if props.Tag != nil && meta.Tag == "" {
		if _, ok := node.(ast.Collection); ok {
			meta.Tag = c.tagName(ctx, props.Tag, onError)
		}
	}
	if props.Anchor != nil {
		meta.Anchor = strings.TrimPrefix(props.Anchor.Source, "&")
		if meta.Anchor == "" {
			onError(props.Anchor, errors.BAD_ALIAS, "Anchor cannot be an empty string", false)
		}
	}
	if props.SpaceBefore {
		meta.SpaceBefore = true
	}
	if props.Comment != "" {
		if s, ok := tok.(*cst.FlowScalar); ok && s.Type == cst.SCALAR && s.Source == "" {
			meta.Comment = props.Comment
		} else {
			meta.CommentBefore = props.Comment
		}
	}
	return node
}

func (c structural) ComposeEmptyNode(ctx *Context, offset int, before []*cst.SourceToken, pos int, props Props, onError errors.Handler) ast.Node {
	start := emptyScalarPosition(offset, before, pos)
	node := &ast.Scalar{}
	meta := node.Meta()
	meta.Range = ast.Range{start, start, start}
	if props.Tag != nil {
		meta.Tag = c.tagName(ctx, props.Tag, onError)
	}
	if props.Anchor != nil {
		meta.Anchor = strings.TrimPrefix(props.Anchor.Source, "&")
		if meta.Anchor == "" {
			onError(props.Anchor, errors.BAD_ALIAS, "Anchor cannot be an empty string", false)
		}
	}
	if props.SpaceBefore {
		meta.SpaceBefore = true
	}
	if props.Comment != "" {
		meta.Comment = props.Comment
		meta.Range[2] = props.End
	}
	return node
}

// emptyScalarPosition backs up over trailing trivia in before[:pos] so the
// empty node sits right after the last significant token.
func emptyScalarPosition(offset int, before []*cst.SourceToken, pos int) int {
	if before == nil {
		return offset
	}
	if pos < 0 || pos > len(before) {
		pos = len(before)
	}
	for i := pos - 1; i >= 0; i-- {
		switch before[i].Type {
		case cst.SPACE, cst.COMMENT, cst.NEWLINE:
			offset -= len(before[i].Source)
			continue
		}
		for i++; i < len(before) && before[i].Type == cst.SPACE; i++ {
			offset += len(before[i].Source)
		}
		break
	}
	return offset
}

func (c structural) tagName(ctx *Context, tag *cst.SourceToken, onError errors.Handler) string {
	name, err := ctx.Directives.TagName(tag.Source)
	if err != nil {
		onError(tag, errors.TAG_RESOLVE_FAILED, err.Error(), false)
		return ""
	}
	return name
}

func (c structural) alias(t *cst.FlowScalar, onError errors.Handler) ast.Node {
	node := &ast.Alias{Name: t.Source[min(1, len(t.Source)):]}
	if node.Name == "" {
		onError(t, errors.BAD_ALIAS, "Alias cannot be an empty string", false)
	}
	valueEnd := t.Offset + len(t.Source)
	re := resolveEnd(t.End, valueEnd, true, onError)
	meta := node.Meta()
	meta.Range = ast.Range{t.Offset, valueEnd, re.offset}
	meta.Comment = re.comment
	return node
}

func (c structural) flowScalar(ctx *Context, t *cst.FlowScalar, tag *cst.SourceToken, onError errors.Handler) ast.Node {
	node := &ast.Scalar{Source: t.Source}
	switch t.Type {
	case cst.SINGLE_QUOTED_SCALAR:
		node.Style = ast.SINGLE_QUOTED
	case cst.DOUBLE_QUOTED_SCALAR:
		node.Style = ast.DOUBLE_QUOTED
	}
	valueEnd := t.Offset + len(t.Source)
	re := resolveEnd(t.End, valueEnd, ctx.Strict, onError)
	meta := node.Meta()
	meta.Range = ast.Range{t.Offset, valueEnd, re.offset}
	meta.Comment = re.comment
	if tag != nil {
		meta.Tag = c.tagName(ctx, tag, onError)
	}
	return node
}

func (c structural) blockScalar(ctx *Context, t *cst.BlockScalar, tag *cst.SourceToken, onError errors.Handler) ast.Node {
	node := &ast.Scalar{Style: ast.BLOCK, Source: t.Source}
	start := t.Offset
	for _, p := range t.Props {
		if st, ok := p.(*cst.SourceToken); ok && st.Type == cst.COMMENT {
			node.Meta().Comment = commentBody(st.Source)
		}
	}
	end := t.Offset + len(t.Source)
	if n := len(t.Props); n > 0 {
		end = t.Props[n-1].Pos()[1] + len(t.Source)
	}
	node.Meta().Range = ast.Range{start, end, end}
	if tag != nil {
		node.Meta().Tag = c.tagName(ctx, tag, onError)
	}
	return node
}

func (c structural) blockMap(ctx *Context, bm *cst.BlockMap, onError errors.Handler) ast.Node {
	m := &ast.Map{}
	offset := bm.Offset
	for _, item := range bm.Items {
		var next cst.Token = item.Key
		if next == nil && len(item.Sep) > 0 {
			next = item.Sep[0]
		}
		kp := resolveProps(item.Start, propsOptions{
			indicator:      cst.EXPLICIT_KEY_IND,
			next:           next,
			offset:         offset,
			onError:        onError,
			parentIndent:   bm.Indent,
			startOnNewline: true,
		})
		pair := &ast.Pair{}
		ctx.AtKey = true
		if item.Key != nil {
			pair.Key = c.ComposeNode(ctx, item.Key, kp, onError)
		} else {
			pair.Key = c.ComposeEmptyNode(ctx, kp.End, item.Start, -1, kp, onError)
		}
		ctx.AtKey = false
		offset = pair.Key.Meta().Range[2]

		vp := resolveProps(item.Sep, propsOptions{
			indicator:    cst.MAP_VALUE_IND,
			next:         item.Value,
			offset:       offset,
			onError:      onError,
			parentIndent: bm.Indent,
		})
		switch {
		case item.Value != nil:
			pair.Value = c.ComposeNode(ctx, item.Value, vp, onError)
		case vp.Found != nil:
			pair.Value = c.ComposeEmptyNode(ctx, vp.End, item.Sep, -1, vp, onError)
		case kp.Found == nil && item.Key != nil:
			onError(errors.Offset(offset), errors.MISSING_CHAR, "Implicit map keys need to be followed by map values", false)
		}
		if pair.Value != nil {
			offset = pair.Value.Meta().Range[2]
		} else if vp.Comment != "" {
			pair.Key.Meta().Comment = vp.Comment
		}
		m.Items = append(m.Items, pair)
	}
	m.Meta().Range = ast.Range{bm.Offset, offset, offset}
	return m
}

func (c structural) blockSeq(ctx *Context, bs *cst.BlockSeq, onError errors.Handler) ast.Node {
	s := &ast.Seq{}
	offset := bs.Offset
	for _, item := range bs.Items {
		props := resolveProps(item.Start, propsOptions{
			indicator:      cst.SEQ_ITEM_IND,
			next:           item.Value,
			offset:         offset,
			onError:        onError,
			parentIndent:   bs.Indent,
			startOnNewline: true,
		})
		if props.Found == nil {
			if props.Anchor == nil && props.Tag == nil && item.Value == nil {
				offset = props.End
				if props.Comment != "" {
					s.Meta().Comment = props.Comment
				}
				continue
			}
			if _, nested := item.Value.(*cst.BlockSeq); nested {
				onError(errors.Offset(props.End), errors.BAD_INDENT, "All sequence items must start at the same column", false)
			} else {
				onError(errors.Offset(offset), errors.MISSING_CHAR, "Sequence item without - indicator", false)
			}
		}
		var node ast.Node
		if item.Value != nil {
			node = c.ComposeNode(ctx, item.Value, props, onError)
		} else {
			node = c.ComposeEmptyNode(ctx, props.End, item.Start, -1, props, onError)
		}
		offset = node.Meta().Range[2]
		s.Items = append(s.Items, node)
	}
	s.Meta().Range = ast.Range{bs.Offset, offset, offset}
	return s
}

func (c structural) flowCollection(ctx *Context, fc *cst.FlowCollection, onError errors.Handler) ast.Node {
	isMap := fc.Start != nil && fc.Start.Source == "{"
	where, closer := "flow sequence", "]"
	if isMap {
		where, closer = "flow map", "}"
	}
	offset := fc.Offset
	if fc.Start != nil {
		offset = fc.Start.Offset + len(fc.Start.Source)
	}
	fm := &ast.Map{Flow: true}
	fs := &ast.Seq{Flow: true}
	for _, item := range fc.Items {
		var next cst.Token = item.Key
		if next == nil && len(item.Sep) > 0 {
			next = item.Sep[0]
		}
		if next == nil {
			next = item.Value
		}
		kp := resolveProps(item.Start, propsOptions{
			flow:         where,
			indicator:    cst.EXPLICIT_KEY_IND,
			next:         next,
			offset:       offset,
			onError:      onError,
			parentIndent: fc.Indent,
		})
		if !isMap && item.Key == nil && len(item.Sep) == 0 {
			var node ast.Node
			if item.Value != nil {
				node = c.ComposeNode(ctx, item.Value, kp, onError)
			} else {
				node = c.ComposeEmptyNode(ctx, kp.End, item.Start, -1, kp, onError)
			}
			offset = node.Meta().Range[2]
			fs.Items = append(fs.Items, node)
			continue
		}
		pair := &ast.Pair{}
		ctx.AtKey = true
		if item.Key != nil {
			pair.Key = c.ComposeNode(ctx, item.Key, kp, onError)
		} else {
			pair.Key = c.ComposeEmptyNode(ctx, kp.End, item.Start, -1, kp, onError)
		}
		ctx.AtKey = false
		offset = pair.Key.Meta().Range[2]
		vp := resolveProps(item.Sep, propsOptions{
			flow:         where,
			indicator:    cst.MAP_VALUE_IND,
			next:         item.Value,
			offset:       offset,
			onError:      onError,
			parentIndent: fc.Indent,
		})
		if item.Value != nil {
			pair.Value = c.ComposeNode(ctx, item.Value, vp, onError)
		} else if vp.Found != nil {
			pair.Value = c.ComposeEmptyNode(ctx, vp.End, item.Sep, -1, vp, onError)
		}
		if pair.Value != nil {
			offset = pair.Value.Meta().Range[2]
		}
		if isMap {
			fm.Items = append(fm.Items, pair)
		} else {
			pm := &ast.Map{Flow: true, Items: []*ast.Pair{pair}}
			pm.Meta().Range = ast.Range{pair.Key.Meta().Range[0], offset, offset}
			fs.Items = append(fs.Items, pm)
		}
	}

	valueEnd := offset
	var trailing []*cst.SourceToken
	if len(fc.End) > 0 && fc.End[0].Source == closer {
		valueEnd = fc.End[0].Offset + len(fc.End[0].Source)
		trailing = fc.End[1:]
	} else {
		onError(errors.Offset(offset), errors.MISSING_CHAR, fmt.Sprintf("Expected %s to end with %s", where, closer), false)
		trailing = fc.End
	}
	re := resolveEnd(trailing, valueEnd, ctx.Strict, onError)

	var node ast.Node = fs
	if isMap {
		node = fm
	}
	meta := node.Meta()
	meta.Range = ast.Range{fc.Offset, valueEnd, re.offset}
	meta.Comment = re.comment
	return node
}
