package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/KimNorgaard/go-yamlcompose/ast"
	"github.com/KimNorgaard/go-yamlcompose/compose"
	"github.com/KimNorgaard/go-yamlcompose/errors"
	"github.com/KimNorgaard/go-yamlcompose/internal/fixture"
)

type sprintf func(string, ...any) string

// printer renders composition results. The first write error is kept in
// err and later writes are dropped.
type printer struct {
	w   io.Writer
	err error

	heading sprintf
	comment sprintf
	errorf  sprintf
	warnf   sprintf
	addf    sprintf
}

func newPrinter(w io.Writer, colored bool) *printer {
	p := &printer{
		w:       w,
		heading: fmt.Sprintf,
		comment: fmt.Sprintf,
		errorf:  fmt.Sprintf,
		warnf:   fmt.Sprintf,
		addf:    fmt.Sprintf,
	}
	if colored {
		color.NoColor = false
		p.heading = color.RGB(74, 92, 138).SprintfFunc()
		p.comment = color.BlueString
		p.errorf = color.RedString
		p.warnf = color.YellowString
		p.addf = color.GreenString
	}
	return p
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) header(name string, f *fixture.File) {
	title := name
	if f.Name != "" {
		title += ": " + f.Name
	}
	p.printf("%s\n", p.heading("== %s", title))
}

func (p *printer) document(i int, d *ast.Document) {
	var markers []string
	if d.Directives.DocStart {
		markers = append(markers, "---")
	}
	if d.Directives.DocEnd {
		markers = append(markers, "...")
	}
	title := fmt.Sprintf("document %d %v", i, d.Range)
	if len(markers) > 0 {
		title += " " + strings.Join(markers, " ")
	}
	p.printf("%s\n", p.heading("%s", title))
	if dirs := d.Directives.String(); dirs != "" {
		p.printf("directives:\n%s\n", indent(dirs))
	}
	if d.CommentBefore != "" {
		p.printf("comment before: %s\n", p.comment("%q", d.CommentBefore))
	}
	p.printf("contents: %s\n", d.String())
	if d.Comment != "" {
		p.printf("comment: %s\n", p.comment("%q", d.Comment))
	}
	p.diagnostics(d.Errors, d.Warnings)
}

func (p *printer) stream(info compose.StreamInfo) {
	if info.Comment == "" && len(info.Errors) == 0 && len(info.Warnings) == 0 {
		return
	}
	p.printf("%s\n", p.heading("stream"))
	if info.Comment != "" {
		p.printf("comment: %s\n", p.comment("%q", info.Comment))
	}
	p.diagnostics(info.Errors, info.Warnings)
}

func (p *printer) diagnostics(errs, warnings []*errors.Error) {
	for _, e := range errs {
		p.printf("%s\n", p.errorf("%s", e))
	}
	for _, w := range warnings {
		p.printf("%s\n", p.warnf("%s", w))
	}
}

func (p *printer) diff(changes []fixture.Change) {
	p.printf("%s\n", p.heading("mismatch (-want +got)"))
	for _, c := range changes {
		switch c.Op {
		case '-':
			p.printf("%s\n", p.errorf("%s", c))
		case '+':
			p.printf("%s\n", p.addf("%s", c))
		default:
			p.printf("%s\n", c)
		}
	}
}

func indent(s string) string {
	return "  " + strings.ReplaceAll(s, "\n", "\n  ")
}
