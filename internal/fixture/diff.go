package fixture

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Change is one line of a diff between two expectations. Op is '-' for a
// line only in want, '+' for a line only in got and ' ' otherwise.
type Change struct {
	Op   byte
	Line string
}

func (c Change) String() string { return string(c.Op) + c.Line }

// Diff renders want and got as YAML and compares them line by line. It
// returns nil when they are equal.
func Diff(want, got Expect) ([]Change, error) {
	from, err := yaml.Marshal(want)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	to, err := yaml.Marshal(got)
	if err != nil {
		return nil, fmt.Errorf("fixture: %w", err)
	}
	if string(from) == string(to) {
		return nil, nil
	}

	diffCfg := diffpatch.New()
	a, b, lines := diffCfg.DiffLinesToChars(string(from), string(to))
	diffs := diffCfg.DiffCharsToLines(diffCfg.DiffMain(a, b, false), lines)

	var changes []Change
	for i := range diffs {
		diff := &diffs[i]
		op := byte(' ')
		switch diff.Type {
		case diffpatch.DiffDelete:
			op = '-'
		case diffpatch.DiffInsert:
			op = '+'
		}
		for _, line := range strings.Split(strings.TrimSuffix(diff.Text, "\n"), "\n") {
			changes = append(changes, Change{Op: op, Line: line})
		}
	}
	return changes, nil
}
