// Package fixture decodes token streams written as YAML, so that composer
// input can be kept in files without a lexer.
package fixture

import (
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/KimNorgaard/go-yamlcompose/cst"
)

// File is a token stream together with composition settings and the
// expected outcome.
type File struct {
	Name    string  `yaml:"name"`
	Source  string  `yaml:"source"`
	Options Options `yaml:"options"`
	Tokens  []Token `yaml:"tokens"`
	Expect  Expect  `yaml:"expect"`
}

// Options mirrors the arguments of a composition run.
type Options struct {
	ForceDoc  bool   `yaml:"forceDoc"`
	EndOffset int    `yaml:"endOffset"`
	Strict    *bool  `yaml:"strict"`
	Version   string `yaml:"version"`
}

// Token is the union of every CST token's fields. Type selects which of
// them are meaningful.
type Token struct {
	Type    string  `yaml:"type"`
	Offset  int     `yaml:"offset"`
	Indent  int     `yaml:"indent"`
	Source  string  `yaml:"source"`
	Message string  `yaml:"message"`
	Start   []Token `yaml:"start"`
	Value   *Token  `yaml:"value"`
	End     []Token `yaml:"end"`
	Items   []Item  `yaml:"items"`
	Props   []Token `yaml:"props"`
}

// Item is a collection item.
type Item struct {
	Start []Token `yaml:"start"`
	Key   *Token  `yaml:"key"`
	Sep   []Token `yaml:"sep"`
	Value *Token  `yaml:"value"`
}

// Expect describes the documents a fixture should compose to.
type Expect struct {
	Documents []Document `yaml:"documents"`
	Stream    Stream     `yaml:"stream"`
}

// Document is the expected shape of one composed document.
type Document struct {
	Contents      string   `yaml:"contents"`
	Comment       string   `yaml:"comment,omitempty"`
	CommentBefore string   `yaml:"commentBefore,omitempty"`
	Range         []int    `yaml:"range,flow"`
	Errors        []string `yaml:"errors,omitempty"`
	Warnings      []string `yaml:"warnings,omitempty"`
	DocStart      bool     `yaml:"docStart,omitempty"`
	DocEnd        bool     `yaml:"docEnd,omitempty"`
}

// Stream is the expected state left after the last document.
type Stream struct {
	Comment string   `yaml:"comment,omitempty"`
	Errors  []string `yaml:"errors,omitempty"`
}

// Load decodes a fixture file.
func Load(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	return &f, nil
}

// CST converts every top-level token of f.
func (f *File) CST() ([]cst.Token, error) {
	toks := make([]cst.Token, 0, len(f.Tokens))
	for i := range f.Tokens {
		tok, err := f.Tokens[i].CST()
		if err != nil {
			return nil, fmt.Errorf("fixture: token %d: %w", i, err)
		}
		toks = append(toks, tok)
	}
	return toks, nil
}

// CST converts t into the matching cst token.
func (t *Token) CST() (cst.Token, error) {
	typ := cst.Type(t.Type)
	switch typ {
	case cst.DOCUMENT:
		start, err := sourceTokens(t.Start)
		if err != nil {
			return nil, err
		}
		end, err := sourceTokens(t.End)
		if err != nil {
			return nil, err
		}
		value, err := t.Value.optional()
		if err != nil {
			return nil, err
		}
		return &cst.Document{Offset: t.Offset, Start: start, Value: value, End: end}, nil
	case cst.DOC_END:
		end, err := sourceTokens(t.End)
		if err != nil {
			return nil, err
		}
		return &cst.DocumentEnd{Offset: t.Offset, Source: t.Source, End: end}, nil
	case cst.ERROR:
		return &cst.ErrorToken{Offset: t.Offset, Source: t.Source, Message: t.Message}, nil
	case cst.ALIAS, cst.SCALAR, cst.SINGLE_QUOTED_SCALAR, cst.DOUBLE_QUOTED_SCALAR:
		end, err := sourceTokens(t.End)
		if err != nil {
			return nil, err
		}
		return &cst.FlowScalar{Type: typ, Offset: t.Offset, Indent: t.Indent, Source: t.Source, End: end}, nil
	case cst.BLOCK_SCALAR:
		props := make([]cst.Token, 0, len(t.Props))
		for i := range t.Props {
			p, err := t.Props[i].CST()
			if err != nil {
				return nil, err
			}
			props = append(props, p)
		}
		return &cst.BlockScalar{Offset: t.Offset, Indent: t.Indent, Props: props, Source: t.Source}, nil
	case cst.BLOCK_MAP, cst.BLOCK_SEQ:
		items, err := collectionItems(t.Items)
		if err != nil {
			return nil, err
		}
		if typ == cst.BLOCK_MAP {
			return &cst.BlockMap{Offset: t.Offset, Indent: t.Indent, Items: items}, nil
		}
		return &cst.BlockSeq{Offset: t.Offset, Indent: t.Indent, Items: items}, nil
	case cst.FLOW_COLLECTION:
		items, err := collectionItems(t.Items)
		if err != nil {
			return nil, err
		}
		start, err := sourceTokens(t.Start)
		if err != nil {
			return nil, err
		}
		end, err := sourceTokens(t.End)
		if err != nil {
			return nil, err
		}
		fc := &cst.FlowCollection{Offset: t.Offset, Indent: t.Indent, Items: items, End: end}
		if len(start) > 0 {
			fc.Start = start[0]
		}
		return fc, nil
	case "":
		return nil, fmt.Errorf("missing token type at offset %d", t.Offset)
	}
	return &cst.SourceToken{Type: typ, Offset: t.Offset, Indent: t.Indent, Source: t.Source}, nil
}

func (t *Token) optional() (cst.Token, error) {
	if t == nil {
		return nil, nil
	}
	return t.CST()
}

func sourceTokens(ts []Token) ([]*cst.SourceToken, error) {
	if len(ts) == 0 {
		return nil, nil
	}
	out := make([]*cst.SourceToken, 0, len(ts))
	for i := range ts {
		tok, err := ts[i].CST()
		if err != nil {
			return nil, err
		}
		st, ok := tok.(*cst.SourceToken)
		if !ok {
			return nil, fmt.Errorf("expected a source token at offset %d, got %s", ts[i].Offset, ts[i].Type)
		}
		out = append(out, st)
	}
	return out, nil
}

func collectionItems(items []Item) ([]*cst.CollectionItem, error) {
	out := make([]*cst.CollectionItem, 0, len(items))
	for _, it := range items {
		start, err := sourceTokens(it.Start)
		if err != nil {
			return nil, err
		}
		sep, err := sourceTokens(it.Sep)
		if err != nil {
			return nil, err
		}
		key, err := it.Key.optional()
		if err != nil {
			return nil, err
		}
		value, err := it.Value.optional()
		if err != nil {
			return nil, err
		}
		out = append(out, &cst.CollectionItem{Start: start, Key: key, Sep: sep, Value: value})
	}
	return out, nil
}
