package errors

import (
	"fmt"
	"strings"
)

// Code classifies a diagnostic.
type Code string

const (
	ALIAS_PROPS        Code = "ALIAS_PROPS"
	BAD_ALIAS          Code = "BAD_ALIAS"
	BAD_DIRECTIVE      Code = "BAD_DIRECTIVE"
	BAD_INDENT         Code = "BAD_INDENT"
	BAD_PROP_ORDER     Code = "BAD_PROP_ORDER"
	MISSING_CHAR       Code = "MISSING_CHAR"
	MULTIPLE_ANCHORS   Code = "MULTIPLE_ANCHORS"
	MULTIPLE_TAGS      Code = "MULTIPLE_TAGS"
	TAB_AS_INDENT      Code = "TAB_AS_INDENT"
	TAG_RESOLVE_FAILED Code = "TAG_RESOLVE_FAILED"
	UNEXPECTED_TOKEN   Code = "UNEXPECTED_TOKEN"
)

// Error is a single error or warning found while composing.
// Pos holds the [start, end) source offsets it refers to.
type Error struct {
	Pos     [2]int
	Code    Code
	Message string
	Warning bool
}

func (e *Error) Error() string {
	kind := "error"
	if e.Warning {
		kind = "warning"
	}
	return fmt.Sprintf("yamlcompose: %s at offset %d: %s (%s)", kind, e.Pos[0], e.Message, e.Code)
}

// Errors is a slice of Error that implements the error interface.
// This allows returning every diagnostic of a stream at once.
type Errors []*Error

func (es Errors) Error() string {
	switch len(es) {
	case 0:
		return ""
	case 1:
		return es[0].Error()
	}
	var b strings.Builder
	for i, e := range es {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// Codes returns the code of each error, in order.
func (es Errors) Codes() []Code {
	codes := make([]Code, len(es))
	for i, e := range es {
		codes[i] = e.Code
	}
	return codes
}

// Handler receives diagnostics as they are found. warning distinguishes
// warnings from errors; neither stops composition.
type Handler func(loc Locator, code Code, message string, warning bool)

// Locator identifies the source span a diagnostic refers to.
type Locator interface {
	Pos() [2]int
}

// Offset locates a single character.
type Offset int

func (o Offset) Pos() [2]int { return [2]int{int(o), int(o) + 1} }

// Span locates the [start, end) offset pair.
type Span [2]int

func (s Span) Pos() [2]int { return s }

// Range locates a node range record.
type Range struct {
	StartOffset int
	EndOffset   int
}

func (r Range) Pos() [2]int { return [2]int{r.StartOffset, r.EndOffset} }

// Source locates a run of source text starting at Offset. An empty Source
// spans one character.
type Source struct {
	Offset int
	Source string
}

func (s Source) Pos() [2]int {
	n := len(s.Source)
	if n == 0 {
		n = 1
	}
	return [2]int{s.Offset, s.Offset + n}
}

// New returns a diagnostic positioned at loc.
func New(loc Locator, code Code, message string, warning bool) *Error {
	return &Error{Pos: loc.Pos(), Code: code, Message: message, Warning: warning}
}
