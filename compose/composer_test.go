package compose_test

import (
	"bytes"
	"iter"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KimNorgaard/go-yamlcompose/ast"
	"github.com/KimNorgaard/go-yamlcompose/compose"
	"github.com/KimNorgaard/go-yamlcompose/cst"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

func tok(typ cst.Type, offset int, source string) *cst.SourceToken {
	return &cst.SourceToken{Type: typ, Offset: offset, Source: source}
}

func scalar(offset int, source string, end ...*cst.SourceToken) *cst.FlowScalar {
	return &cst.FlowScalar{Type: cst.SCALAR, Offset: offset, Source: source, End: end}
}

// doc returns a bare document holding a plain scalar followed by a newline.
func doc(offset int, source string) *cst.Document {
	return &cst.Document{
		Offset: offset,
		Value:  scalar(offset, source, tok(cst.NEWLINE, offset+len(source), "\n")),
	}
}

// startedDoc is like doc, with a "--- " marker in front.
func startedDoc(offset int, source string) *cst.Document {
	return &cst.Document{
		Offset: offset,
		Start:  []*cst.SourceToken{tok(cst.DOC_START, offset, "---"), tok(cst.SPACE, offset+3, " ")},
		Value:  scalar(offset+4, source, tok(cst.NEWLINE, offset+4+len(source), "\n")),
	}
}

func newComposer(t *testing.T, opts ...compose.Option) *compose.Composer {
	t.Helper()
	c, err := compose.New(opts...)
	require.NoError(t, err)
	return c
}

func composeAll(c *compose.Composer, forceDoc bool, endOffset int, toks ...cst.Token) []*ast.Document {
	var docs []*ast.Document
	s := c.NewStream(cst.Tokens(toks...), forceDoc, endOffset)
	for {
		d, ok := s.NextDocument()
		if !ok {
			return docs
		}
		docs = append(docs, d)
	}
}

func codes(es []*errors.Error) []errors.Code {
	if len(es) == 0 {
		return nil
	}
	return errors.Errors(es).Codes()
}

func TestNewOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  compose.Option
		err  string
	}{
		{"version", compose.WithVersion("2.0"), `yamlcompose: unsupported version "2.0"`},
		{"schema", compose.WithSchema(""), "yamlcompose: schema name must not be empty"},
		{"node composer", compose.WithNodeComposer(nil), "yamlcompose: node composer must not be nil"},
		{"logger", compose.WithLogger(nil), "yamlcompose: logger must not be nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := compose.New(tt.opt)
			require.EqualError(t, err, tt.err)
			require.Nil(t, c)
		})
	}
}

func TestDocumentSettings(t *testing.T) {
	c := newComposer(t, compose.WithVersion("1.1"), compose.WithSchema("failsafe"), compose.Strict(false))
	docs := composeAll(c, false, 0, doc(0, "a"))
	require.Len(t, docs, 1)
	require.Equal(t, "1.1", docs[0].Directives.Version)
	require.Equal(t, "failsafe", docs[0].Schema)
	require.False(t, docs[0].Strict)

	docs = composeAll(newComposer(t), false, 0, doc(0, "a"))
	require.Equal(t, "1.2", docs[0].Directives.Version)
	require.Equal(t, "core", docs[0].Schema)
	require.True(t, docs[0].Strict)
}

func TestDirectiveThenTwoDocuments(t *testing.T) {
	c := newComposer(t)
	docs := composeAll(c, false, 0,
		tok(cst.DIRECTIVE, 0, "%YAML 1.2"),
		tok(cst.NEWLINE, 9, "\n"),
		doc(10, "a"),
		startedDoc(12, "b"),
	)
	require.Len(t, docs, 2)
	require.Equal(t, "a", docs[0].String())
	require.Equal(t, "b", docs[1].String())

	require.Equal(t, []errors.Code{errors.MISSING_CHAR}, codes(docs[0].Errors))
	require.Equal(t, "Missing directives-end/doc-start indicator line", docs[0].Errors[0].Message)
	require.Empty(t, docs[1].Errors)
	require.True(t, docs[0].Directives.Explicit)
	require.False(t, docs[1].Directives.Explicit)
}

func TestDirectiveErrors(t *testing.T) {
	c := newComposer(t)
	docs := composeAll(c, false, 0,
		tok(cst.DIRECTIVE, 0, "%YAML 1.3"),
		tok(cst.NEWLINE, 9, "\n"),
		tok(cst.DIRECTIVE, 10, "%FOO"),
		tok(cst.NEWLINE, 14, "\n"),
		startedDoc(15, "a"),
	)
	require.Len(t, docs, 1)
	require.Empty(t, docs[0].Errors)
	require.Equal(t, []errors.Code{errors.BAD_DIRECTIVE, errors.BAD_DIRECTIVE}, codes(docs[0].Warnings))
	require.Equal(t, [2]int{6, 9}, docs[0].Warnings[0].Pos)
	require.Equal(t, [2]int{10, 14}, docs[0].Warnings[1].Pos)
	require.True(t, docs[0].Warnings[0].Warning)
}

func TestEndAfterDirectives(t *testing.T) {
	c := newComposer(t)
	docs := composeAll(c, true, 10,
		tok(cst.DIRECTIVE, 0, "%YAML 1.2"),
		tok(cst.NEWLINE, 9, "\n"),
	)
	require.Len(t, docs, 1)
	require.Equal(t, ast.Range{0, 10, 10}, docs[0].Range)
	require.Equal(t, []errors.Code{errors.MISSING_CHAR}, codes(docs[0].Errors))
	require.Equal(t, "Missing directives-end indicator line", docs[0].Errors[0].Message)
	require.Empty(t, docs[0].CommentBefore)
}

func TestLoneComment(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{"text", "# hello", " hello"},
		{"no space", "#hello", "hello"},
		{"empty", "#", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endOffset := len(tt.source)
			docs := composeAll(newComposer(t), true, endOffset, tok(cst.COMMENT, 0, tt.source))
			require.Len(t, docs, 1)
			require.Equal(t, tt.expected, docs[0].CommentBefore)
			require.Equal(t, ast.Range{0, endOffset, endOffset}, docs[0].Range)
			require.Nil(t, docs[0].Contents)
		})
	}

	t.Run("without forceDoc", func(t *testing.T) {
		c := newComposer(t)
		docs := composeAll(c, false, 7, tok(cst.COMMENT, 0, "# hello"))
		require.Empty(t, docs)
		require.Equal(t, " hello", c.StreamInfo().Comment)
	})
}

func TestStrayDocEnd(t *testing.T) {
	c := newComposer(t)
	docs := composeAll(c, false, 0, &cst.DocumentEnd{Offset: 0, Source: "..."})
	require.Empty(t, docs)

	info := c.StreamInfo()
	require.Equal(t, []errors.Code{errors.UNEXPECTED_TOKEN}, codes(info.Errors))
	require.Equal(t, "Unexpected doc-end without preceding document", info.Errors[0].Message)
	require.Equal(t, [2]int{0, 3}, info.Errors[0].Pos)
}

func TestLeadingCommentPlacement(t *testing.T) {
	blockMap := func(offset int) *cst.BlockMap {
		return &cst.BlockMap{Offset: offset, Items: []*cst.CollectionItem{{
			Key:   scalar(offset, "a"),
			Sep:   []*cst.SourceToken{tok(cst.MAP_VALUE_IND, offset+1, ":"), tok(cst.SPACE, offset+2, " ")},
			Value: scalar(offset+3, "1"),
		}}}
	}

	t.Run("first key", func(t *testing.T) {
		docs := composeAll(newComposer(t), false, 0,
			tok(cst.COMMENT, 0, "# c"),
			tok(cst.NEWLINE, 3, "\n"),
			&cst.Document{Offset: 4, Value: blockMap(4)},
		)
		require.Len(t, docs, 1)
		require.Empty(t, docs[0].CommentBefore)
		m := docs[0].Contents.(*ast.Map)
		require.Empty(t, m.Meta().CommentBefore)
		require.Equal(t, " c", m.Items[0].Key.Meta().CommentBefore)
	})

	t.Run("after blank line", func(t *testing.T) {
		docs := composeAll(newComposer(t), false, 0,
			tok(cst.COMMENT, 0, "# c"),
			tok(cst.NEWLINE, 3, "\n"),
			tok(cst.NEWLINE, 4, "\n"),
			&cst.Document{Offset: 5, Value: blockMap(5)},
		)
		require.Equal(t, " c", docs[0].CommentBefore)
		require.Empty(t, docs[0].Contents.(*ast.Map).Items[0].Key.Meta().CommentBefore)
	})

	t.Run("flow contents", func(t *testing.T) {
		flow := &cst.FlowCollection{
			Offset: 4,
			Start:  tok(cst.FLOW_SEQ_START, 4, "["),
			Items:  []*cst.CollectionItem{{Value: scalar(5, "x")}},
			End:    []*cst.SourceToken{tok(cst.FLOW_SEQ_END, 6, "]")},
		}
		docs := composeAll(newComposer(t), false, 0,
			tok(cst.COMMENT, 0, "# c"),
			tok(cst.NEWLINE, 3, "\n"),
			&cst.Document{Offset: 4, Value: flow},
		)
		require.Empty(t, docs[0].CommentBefore)
		require.Equal(t, " c", docs[0].Contents.Meta().CommentBefore)
	})

	t.Run("explicit start", func(t *testing.T) {
		docs := composeAll(newComposer(t), false, 0,
			tok(cst.COMMENT, 0, "# c"),
			tok(cst.NEWLINE, 3, "\n"),
			startedDoc(4, "a"),
		)
		require.Equal(t, " c", docs[0].CommentBefore)
		require.Empty(t, docs[0].Contents.Meta().CommentBefore)
	})

	t.Run("joins existing comment", func(t *testing.T) {
		d := &cst.Document{Offset: 4, Value: &cst.BlockSeq{Offset: 4, Items: []*cst.CollectionItem{{
			Start: []*cst.SourceToken{tok(cst.COMMENT, 4, "# item"), tok(cst.NEWLINE, 10, "\n"), tok(cst.SEQ_ITEM_IND, 11, "-"), tok(cst.SPACE, 12, " ")},
			Value: scalar(13, "x"),
		}}}}
		docs := composeAll(newComposer(t), false, 0,
			tok(cst.COMMENT, 0, "# c"),
			tok(cst.NEWLINE, 3, "\n"),
			d,
		)
		require.Equal(t, " c\n item", docs[0].Contents.(*ast.Seq).Items[0].Meta().CommentBefore)
	})
}

func TestDocEndComment(t *testing.T) {
	end := &cst.DocumentEnd{Offset: 2, Source: "...", End: []*cst.SourceToken{tok(cst.COMMENT, 5, "#x")}}

	docs := composeAll(newComposer(t), false, 0, doc(0, "a"), end)
	require.Len(t, docs, 1)
	require.True(t, docs[0].Directives.DocEnd)
	require.Equal(t, "x", docs[0].Comment)
	require.Equal(t, ast.Range{0, 2, 7}, docs[0].Range)
	require.Equal(t, []errors.Code{errors.MISSING_CHAR}, codes(docs[0].Errors))

	docs = composeAll(newComposer(t, compose.Strict(false)), false, 0, doc(0, "a"), end)
	require.Empty(t, docs[0].Errors)
	require.Equal(t, "x", docs[0].Comment)
}

func TestUnsupportedToken(t *testing.T) {
	c := newComposer(t)
	docs := composeAll(c, false, 0, tok(cst.ANCHOR, 0, "&a"))
	require.Empty(t, docs)
	info := c.StreamInfo()
	require.Equal(t, []errors.Code{errors.UNEXPECTED_TOKEN}, codes(info.Errors))
	require.Equal(t, "Unsupported token anchor", info.Errors[0].Message)
}

func TestErrorTokenMessage(t *testing.T) {
	c := newComposer(t)
	docs := composeAll(c, false, 0,
		doc(0, "a"),
		&cst.ErrorToken{Offset: 2, Source: "@", Message: "Unexpected character"},
		&cst.ErrorToken{Offset: 3, Message: "Unexpected end"},
	)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Errors, 2)
	require.Equal(t, `Unexpected character: "@"`, docs[0].Errors[0].Message)
	require.Equal(t, [2]int{2, 3}, docs[0].Errors[0].Pos)
	require.Equal(t, "Unexpected end", docs[0].Errors[1].Message)
	require.Equal(t, [2]int{3, 4}, docs[0].Errors[1].Pos)
}

func TestStreamInfo(t *testing.T) {
	c := newComposer(t)
	require.Nil(t, c.Next(tok(cst.DIRECTIVE, 0, "%TAG !e! x:")))
	require.Nil(t, c.Next(tok(cst.NEWLINE, 11, "\n")))
	require.Nil(t, c.Next(tok(cst.COMMENT, 12, "# pending")))
	require.Nil(t, c.Next(&cst.ErrorToken{Offset: 21, Source: "!"}))

	info := c.StreamInfo()
	require.Equal(t, " pending", info.Comment)
	require.Equal(t, "x:", info.Directives.Tags["!e!"])
	require.Equal(t, []errors.Code{errors.UNEXPECTED_TOKEN}, codes(info.Errors))
	require.Empty(t, info.Warnings)

	info.Directives.Tags["!e!"] = "changed:"
	require.Equal(t, "x:", c.StreamInfo().Directives.Tags["!e!"])
}

type countingComposer struct {
	compose.NodeComposer
	nodes int
}

func (c *countingComposer) ComposeNode(ctx *compose.Context, tok cst.Token, props compose.Props, onError errors.Handler) ast.Node {
	c.nodes++
	return c.NodeComposer.ComposeNode(ctx, tok, props, onError)
}

func TestNodeComposer(t *testing.T) {
	nc := &countingComposer{NodeComposer: compose.DefaultNodeComposer()}
	docs := composeAll(newComposer(t, compose.WithNodeComposer(nc)), false, 0, doc(0, "a"), doc(2, "b"))
	require.Len(t, docs, 2)
	require.Equal(t, 2, nc.nodes)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := newComposer(t, compose.WithLogger(logger))
	composeAll(c, false, 0, tok(cst.COMMENT, 0, "# c"), tok(cst.NEWLINE, 3, "\n"), doc(4, "a"))

	out := buf.String()
	require.Contains(t, out, "msg=token type=comment offset=0")
	require.Contains(t, out, "msg=token type=document offset=4")
	require.Contains(t, out, "msg=document offset=4")
}

func TestStream(t *testing.T) {
	t.Run("releases documents in order", func(t *testing.T) {
		c := newComposer(t)
		s := c.NewStream(cst.Tokens(doc(0, "a"), doc(2, "b")), false, 0)
		require.Same(t, c, s.Composer())

		d, ok := s.NextDocument()
		require.True(t, ok)
		require.Equal(t, "a", d.String())
		d, ok = s.NextDocument()
		require.True(t, ok)
		require.Equal(t, "b", d.String())

		for range 2 {
			d, ok = s.NextDocument()
			require.False(t, ok)
			require.Nil(t, d)
		}
	})

	t.Run("forced document is emitted once", func(t *testing.T) {
		s := newComposer(t).NewStream(cst.Tokens(), true, 0)
		d, ok := s.NextDocument()
		require.True(t, ok)
		require.Equal(t, ast.Range{0, 0, 0}, d.Range)
		_, ok = s.NextDocument()
		require.False(t, ok)
	})
}

func TestCompose(t *testing.T) {
	toks := []cst.Token{doc(0, "a"), doc(2, "b"), doc(4, "c")}
	pulled := 0
	var seq iter.Seq[cst.Token] = func(yield func(cst.Token) bool) {
		for _, tok := range toks {
			pulled++
			if !yield(tok) {
				return
			}
		}
	}

	t.Run("all", func(t *testing.T) {
		pulled = 0
		var got []string
		for d := range newComposer(t).Compose(seq, false, 0) {
			got = append(got, d.String())
		}
		require.Equal(t, []string{"a", "b", "c"}, got)
		require.Equal(t, 3, pulled)
	})

	t.Run("early stop", func(t *testing.T) {
		pulled = 0
		for d := range newComposer(t).Compose(seq, false, 0) {
			require.Equal(t, "a", d.String())
			break
		}
		require.Equal(t, 2, pulled)
	})
}
