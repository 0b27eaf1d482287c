package cst

// Type is the type of a CST token.
type Type string

const (
	// Single-source tokens
	BYTE_ORDER_MARK     Type = "byte-order-mark"
	DOC_MODE            Type = "doc-mode"
	DOC_START           Type = "doc-start" // ---
	SPACE               Type = "space"
	COMMENT             Type = "comment" // # a comment
	NEWLINE             Type = "newline" // \n
	DIRECTIVE           Type = "directive"
	ANCHOR              Type = "anchor" // &a
	TAG                 Type = "tag"    // !!str
	SEQ_ITEM_IND        Type = "seq-item-ind"
	EXPLICIT_KEY_IND    Type = "explicit-key-ind"
	MAP_VALUE_IND       Type = "map-value-ind"
	FLOW_MAP_START      Type = "flow-map-start"
	FLOW_MAP_END        Type = "flow-map-end"
	FLOW_SEQ_START      Type = "flow-seq-start"
	FLOW_SEQ_END        Type = "flow-seq-end"
	COMMA               Type = "comma"
	BLOCK_SCALAR_HEADER Type = "block-scalar-header"

	// Structural tokens
	ERROR    Type = "error"
	DOCUMENT Type = "document"
	DOC_END  Type = "doc-end" // ...

	// Scalars
	ALIAS                Type = "alias"
	SCALAR               Type = "scalar"
	SINGLE_QUOTED_SCALAR Type = "single-quoted-scalar"
	DOUBLE_QUOTED_SCALAR Type = "double-quoted-scalar"
	BLOCK_SCALAR         Type = "block-scalar"

	// Collections
	BLOCK_MAP       Type = "block-map"
	BLOCK_SEQ       Type = "block-seq"
	FLOW_COLLECTION Type = "flow-collection"
)

// Token is implemented by every CST token.
type Token interface {
	// Kind returns the token's type.
	Kind() Type
	// Pos returns the [start, end) offsets used to position diagnostics.
	Pos() [2]int
}

// Collection is a token holding an ordered, mutable list of items.
type Collection interface {
	Token
	// List returns a pointer to the live item list.
	List() *[]*CollectionItem
}

// SourceToken is a token made of a single run of source text.
type SourceToken struct {
	Type   Type
	Offset int
	Indent int
	Source string
}

func (t *SourceToken) Kind() Type  { return t.Type }
func (t *SourceToken) Pos() [2]int { return [2]int{t.Offset, t.Offset + len(t.Source)} }

// ErrorToken is produced by the lexer for input it could not tokenize.
type ErrorToken struct {
	Offset  int
	Source  string
	Message string
}

func (t *ErrorToken) Kind() Type  { return ERROR }
func (t *ErrorToken) Pos() [2]int { return [2]int{t.Offset, t.Offset + len(t.Source)} }

// Document is the token-level span of one logical document.
type Document struct {
	Offset int
	Start  []*SourceToken
	Value  Token
	End    []*SourceToken
}

func (t *Document) Kind() Type  { return DOCUMENT }
func (t *Document) Pos() [2]int { return [2]int{t.Offset, t.Offset + 1} }

// Root returns the document as a keyless collection item, suitable as a
// traversal root. The item shares the document's Start slice and Value.
func (t *Document) Root() *CollectionItem {
	return &CollectionItem{Start: t.Start, Value: t.Value}
}

// DocumentEnd is an explicit "..." document end marker.
type DocumentEnd struct {
	Offset int
	Source string
	End    []*SourceToken
}

func (t *DocumentEnd) Kind() Type  { return DOC_END }
func (t *DocumentEnd) Pos() [2]int { return [2]int{t.Offset, t.Offset + len(t.Source)} }

// FlowScalar is a plain, quoted or alias scalar.
type FlowScalar struct {
	Type   Type
	Offset int
	Indent int
	Source string
	End    []*SourceToken
}

func (t *FlowScalar) Kind() Type  { return t.Type }
func (t *FlowScalar) Pos() [2]int { return [2]int{t.Offset, t.Offset + len(t.Source)} }

// BlockScalar is a literal or folded block scalar.
type BlockScalar struct {
	Offset int
	Indent int
	Props  []Token
	Source string
}

func (t *BlockScalar) Kind() Type  { return BLOCK_SCALAR }
func (t *BlockScalar) Pos() [2]int { return [2]int{t.Offset, t.Offset + len(t.Source)} }

// BlockMap is a block-style mapping.
type BlockMap struct {
	Offset int
	Indent int
	Items  []*CollectionItem
}

func (t *BlockMap) Kind() Type               { return BLOCK_MAP }
func (t *BlockMap) Pos() [2]int              { return [2]int{t.Offset, t.Offset + 1} }
func (t *BlockMap) List() *[]*CollectionItem { return &t.Items }

// BlockSeq is a block-style sequence.
type BlockSeq struct {
	Offset int
	Indent int
	Items  []*CollectionItem
}

func (t *BlockSeq) Kind() Type               { return BLOCK_SEQ }
func (t *BlockSeq) Pos() [2]int              { return [2]int{t.Offset, t.Offset + 1} }
func (t *BlockSeq) List() *[]*CollectionItem { return &t.Items }

// FlowCollection is a flow mapping or sequence. Start holds the opening
// bracket; End holds the closing bracket and anything after it.
type FlowCollection struct {
	Offset int
	Indent int
	Start  *SourceToken
	Items  []*CollectionItem
	End    []*SourceToken
}

func (t *FlowCollection) Kind() Type               { return FLOW_COLLECTION }
func (t *FlowCollection) Pos() [2]int              { return [2]int{t.Offset, t.Offset + 1} }
func (t *FlowCollection) List() *[]*CollectionItem { return &t.Items }

// CollectionItem is a key/value pair or a sequence entry. Start holds the
// decorative tokens before the key (or value), Sep the tokens between key
// and value.
type CollectionItem struct {
	Start []*SourceToken
	Key   Token
	Sep   []*SourceToken
	Value Token
}

// TokenSource produces tokens one at a time. Next reports false once the
// source is exhausted.
type TokenSource interface {
	Next() (Token, bool)
}

type sliceSource struct {
	toks []Token
	pos  int
}

// Tokens returns a TokenSource reading from toks in order.
func Tokens(toks ...Token) TokenSource {
	return &sliceSource{toks: toks}
}

func (s *sliceSource) Next() (Token, bool) {
	if s.pos >= len(s.toks) {
		return nil, false
	}
	tok := s.toks[s.pos]
	s.pos++
	return tok, true
}
