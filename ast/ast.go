package ast

import (
	"strings"

	"github.com/KimNorgaard/go-yamlcompose/directives"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

// Range holds the [start, valueEnd, nodeEnd] offsets of a node. valueEnd
// excludes trailing comments and whitespace; nodeEnd includes them.
type Range [3]int

// Node is the base interface for all composed nodes.
type Node interface {
	// Meta returns the node's decoration, which may be modified in place.
	Meta() *Meta
	// String returns a compact representation of the node.
	String() string
}

// Collection is a node holding child items.
type Collection interface {
	Node
	// IsFlow reports whether the collection uses flow style.
	IsFlow() bool
	// Len returns the number of items.
	Len() int
	// Head returns the node that carries the comment placed before the
	// first item: the key of a pair, or the entry itself. It returns nil
	// for an empty collection.
	Head() Node
}

// Meta is the decoration shared by every node.
type Meta struct {
	Range         Range
	Anchor        string
	Tag           string
	Comment       string
	CommentBefore string
	SpaceBefore   bool
}

// Style describes how a scalar was written.
type Style int

const (
	PLAIN Style = iota
	SINGLE_QUOTED
	DOUBLE_QUOTED
	BLOCK
)

func (s Style) String() string {
	switch s {
	case SINGLE_QUOTED:
		return "single-quoted"
	case DOUBLE_QUOTED:
		return "double-quoted"
	case BLOCK:
		return "block"
	}
	return "plain"
}

// Scalar is a leaf value. Source is the raw text; resolving it to a typed
// value is left to a schema.
type Scalar struct {
	meta   Meta
	Style  Style
	Source string
}

func (s *Scalar) Meta() *Meta    { return &s.meta }
func (s *Scalar) String() string { return props(&s.meta) + s.Source }

// Alias refers to an anchored node by name.
type Alias struct {
	meta Meta
	Name string
}

func (a *Alias) Meta() *Meta    { return &a.meta }
func (a *Alias) String() string { return "*" + a.Name }

// Pair is a key/value entry of a Map. Either side may be nil.
type Pair struct {
	Key   Node
	Value Node
}

func (p *Pair) String() string {
	return nodeString(p.Key) + ": " + nodeString(p.Value)
}

// Map is a mapping of pairs.
type Map struct {
	meta  Meta
	Flow  bool
	Items []*Pair
}

func (m *Map) Meta() *Meta  { return &m.meta }
func (m *Map) IsFlow() bool { return m.Flow }
func (m *Map) Len() int     { return len(m.Items) }

func (m *Map) Head() Node {
	if len(m.Items) == 0 {
		return nil
	}
	if it := m.Items[0]; it.Key != nil {
		return it.Key
	} else if it.Value != nil {
		return it.Value
	}
	return nil
}

func (m *Map) String() string {
	pairs := make([]string, len(m.Items))
	for i, p := range m.Items {
		pairs[i] = p.String()
	}
	return props(&m.meta) + "{" + strings.Join(pairs, ", ") + "}"
}

// Seq is a sequence of nodes.
type Seq struct {
	meta  Meta
	Flow  bool
	Items []Node
}

func (s *Seq) Meta() *Meta  { return &s.meta }
func (s *Seq) IsFlow() bool { return s.Flow }
func (s *Seq) Len() int     { return len(s.Items) }

func (s *Seq) Head() Node {
	if len(s.Items) == 0 {
		return nil
	}
	return s.Items[0]
}

func (s *Seq) String() string {
	elements := make([]string, len(s.Items))
	for i, el := range s.Items {
		elements[i] = nodeString(el)
	}
	return props(&s.meta) + "[" + strings.Join(elements, ", ") + "]"
}

func nodeString(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func props(m *Meta) string {
	var out string
	if m.Anchor != "" {
		out += "&" + m.Anchor + " "
	}
	if m.Tag != "" {
		out += m.Tag + " "
	}
	return out
}

// Document is a composed logical document.
type Document struct {
	Contents Node
	// Comment is the comment following the contents.
	Comment string
	// CommentBefore is the comment preceding the contents.
	CommentBefore string

	Directives *directives.Directives
	Range      Range

	Errors   []*errors.Error
	Warnings []*errors.Error

	Schema string
	Strict bool
}

// NewDocument returns an empty document capturing the current state of
// dirs.
func NewDocument(dirs *directives.Directives, schema string, strict bool) *Document {
	return &Document{
		Directives: dirs.AtDocument(),
		Schema:     schema,
		Strict:     strict,
	}
}

// Err returns the document's errors as a single error, or nil.
func (d *Document) Err() error {
	if len(d.Errors) == 0 {
		return nil
	}
	return errors.Errors(d.Errors)
}

func (d *Document) String() string {
	return nodeString(d.Contents)
}
