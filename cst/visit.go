package cst

import (
	"errors"
	"fmt"
)

// Field names a child slot of a collection item.
type Field string

const (
	KeyField   Field = "key"
	ValueField Field = "value"
)

// Step is a single coordinate of a Path.
type Step struct {
	Field Field
	Index int
}

// Path locates an item by walking from a traversal root through
// item[Field].Items[Index] for each step. A path is a coordinate, not a
// reference: structural edits can renumber the items it points through.
type Path []Step

// With returns a new path extending p by one step.
func (p Path) With(field Field, index int) Path {
	next := make(Path, len(p), len(p)+1)
	copy(next, p)
	return append(next, Step{Field: field, Index: index})
}

// Parent returns the path without its last step.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[: len(p)-1 : len(p)-1]
}

func (p Path) clone() Path {
	return append(make(Path, 0, len(p)), p...)
}

func (p Path) String() string {
	s := ""
	for i, st := range p {
		if i > 0 {
			s += "."
		}
		s += fmt.Sprintf("%s[%d]", st.Field, st.Index)
	}
	return s
}

type action int

const (
	actContinue action = iota
	actSkip
	actBreak
	actRemove
	actJump
	actThen
)

// Result is the value a Visitor returns to steer the traversal.
type Result struct {
	act   action
	index int
	next  Visitor
}

var (
	// Continue descends into the item's children as usual.
	Continue = Result{}
	// Skip does not descend into the item's children.
	Skip = Result{act: actSkip}
	// Break aborts the whole traversal.
	Break = Result{act: actBreak}
	// Remove detaches the item from its parent collection. The item now at
	// the same index is visited next.
	Remove = Result{act: actRemove}
)

// JumpTo makes the next visited sibling the one at index n of the current
// parent collection.
func JumpTo(n int) Result { return Result{act: actJump, index: n} }

// Then sets v as the continuation visitor of the item. It is called again
// after the item's key collection is traversed, and once more after its
// value collection is traversed.
func Then(v Visitor) Result { return Result{act: actThen, next: v} }

// IsBreak reports whether r aborts the traversal.
func (r Result) IsBreak() bool { return r.act == actBreak }

// Index returns the target of a JumpTo result.
func (r Result) Index() (int, bool) { return r.index, r.act == actJump }

func (r Result) String() string {
	switch r.act {
	case actSkip:
		return "skip"
	case actBreak:
		return "break"
	case actRemove:
		return "remove"
	case actJump:
		return fmt.Sprintf("jump(%d)", r.index)
	case actThen:
		return "then"
	}
	return "continue"
}

// Visitor is called for each item of a traversal. path is a fresh copy owned
// by the callee.
type Visitor func(item *CollectionItem, path Path) Result

// ErrParentNotFound is returned by ParentCollection when the collection
// holding an item cannot be located. It marks a broken internal invariant
// rather than malformed input.
var ErrParentNotFound = errors.New("cst: parent collection not found")

// Visit walks root depth-first, calling v for each item: root first, then
// the items of its key collection, then those of its value collection.
//
// The returned Result is the last control value computed for root.
// Remove and JumpTo have no effect on the root itself.
func Visit(root *CollectionItem, v Visitor) Result {
	return visit(Path{}, root, v)
}

// VisitDocument walks the value of doc. The root item handed to v is
// doc.Root().
func VisitDocument(doc *Document, v Visitor) Result {
	root := doc.Root()
	res := Visit(root, v)
	doc.Start, doc.Value = root.Start, root.Value
	return res
}

func visit(path Path, item *CollectionItem, v Visitor) Result {
	ctrl := v(item, path.clone())
	switch ctrl.act {
	case actBreak, actSkip, actRemove:
		return ctrl
	}
	for _, field := range []Field{KeyField, ValueField} {
		coll, ok := child(item, field).(Collection)
		if !ok {
			continue
		}
		items := coll.List()
		for i := 0; i < len(*items); i++ {
			ci := visit(path.With(field, i), (*items)[i], v)
			switch ci.act {
			case actJump:
				i = max(ci.index, 0) - 1
			case actBreak:
				return Break
			case actRemove:
				*items = append((*items)[:i], (*items)[i+1:]...)
				i--
			}
		}
		if ctrl.act == actThen && field == KeyField {
			ctrl = ctrl.next(item, path.clone())
			switch ctrl.act {
			case actBreak, actSkip, actRemove:
				return ctrl
			}
		}
	}
	if ctrl.act == actThen {
		return ctrl.next(item, path.clone())
	}
	return ctrl
}

func child(item *CollectionItem, field Field) Token {
	if item == nil {
		return nil
	}
	if field == KeyField {
		return item.Key
	}
	return item.Value
}

// ItemAtPath returns the item at path, walking from root. It reports false
// as soon as a step does not lead through a collection holding the index.
func ItemAtPath(root *CollectionItem, path Path) (*CollectionItem, bool) {
	item := root
	for _, st := range path {
		coll, ok := child(item, st.Field).(Collection)
		if !ok {
			return nil, false
		}
		items := *coll.List()
		if st.Index < 0 || st.Index >= len(items) {
			return nil, false
		}
		item = items[st.Index]
	}
	return item, item != nil
}

// ParentCollection returns the collection directly holding the item at
// path. A non-nil error wraps ErrParentNotFound; it cannot happen for a
// path that ItemAtPath resolves.
func ParentCollection(root *CollectionItem, path Path) (Collection, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrParentNotFound)
	}
	parent, ok := ItemAtPath(root, path.Parent())
	if ok {
		if coll, ok := child(parent, path[len(path)-1].Field).(Collection); ok {
			return coll, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrParentNotFound, path)
}
