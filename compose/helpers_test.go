package compose

import (
	"github.com/KimNorgaard/go-yamlcompose/cst"
	"github.com/KimNorgaard/go-yamlcompose/errors"
)

func src(typ cst.Type, offset int, source string) *cst.SourceToken {
	return &cst.SourceToken{Type: typ, Offset: offset, Source: source}
}

func space(offset int, source string) *cst.SourceToken { return src(cst.SPACE, offset, source) }
func newline(offset int) *cst.SourceToken              { return src(cst.NEWLINE, offset, "\n") }
func comment(offset int, s string) *cst.SourceToken    { return src(cst.COMMENT, offset, s) }

func plain(offset int, source string, end ...*cst.SourceToken) *cst.FlowScalar {
	return &cst.FlowScalar{Type: cst.SCALAR, Offset: offset, Source: source, End: end}
}

type recorder struct {
	errs []*errors.Error
}

func (r *recorder) handle(loc errors.Locator, code errors.Code, message string, warning bool) {
	r.errs = append(r.errs, errors.New(loc, code, message, warning))
}

func (r *recorder) codes() []errors.Code {
	if len(r.errs) == 0 {
		return nil
	}
	return errors.Errors(r.errs).Codes()
}
