package compose

import "strings"

// parsePrelude folds the buffered comment and blank-line sources into one
// comment. afterEmptyLine reports whether a blank line separated the
// comment from what follows; it may be wrong right after a doc-end marker,
// where it does not matter.
func parsePrelude(prelude []string) (comment string, afterEmptyLine bool) {
	var b strings.Builder
	atComment := false
	for i := 0; i < len(prelude); i++ {
		source := prelude[i]
		var first byte
		if source != "" {
			first = source[0]
		}
		switch first {
		case '#':
			if b.Len() > 0 {
				if afterEmptyLine {
					b.WriteString("\n\n")
				} else {
					b.WriteByte('\n')
				}
			}
			b.WriteString(commentBody(source))
			atComment = true
			afterEmptyLine = false
		case '%':
			// The newline closing a directive line is not a blank line.
			if i+1 >= len(prelude) || !strings.HasPrefix(prelude[i+1], "#") {
				i++
			}
			atComment = false
		default:
			if !atComment {
				afterEmptyLine = true
			}
			atComment = false
		}
	}
	return b.String(), afterEmptyLine
}
