package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/KimNorgaard/go-yamlcompose/compose"
	"github.com/KimNorgaard/go-yamlcompose/internal/fixture"
)

type MainConfig struct {
	Force   bool   `cli:"name=force desc='emit an empty document for a stream without one'"`
	End     int    `cli:"name=end desc='end offset of a forced document (default source length)'"`
	Lenient bool   `cli:"name=lenient desc='allow comments right after a document end marker'"`
	Version string `cli:"name=version desc='format version assumed before any %YAML directive'"`
	Verbose bool   `cli:"name=v aliases=verbose desc='log every token to stderr'"`
	Color   bool   `cli:"name=color desc='color diagnostics'"`
	Check   bool   `cli:"name=check desc='fail when the result differs from the fixture expect section'"`

	Main *cli.Command
}

// composeOpts merges the command line with the fixture's own settings.
// Flags given on the command line win.
func (cfg *MainConfig) composeOpts(f *fixture.File, logOut io.Writer) []compose.Option {
	opts := []compose.Option{compose.WithLogger(newLogger(logOut, cfg.Verbose))}
	switch {
	case cfg.Lenient:
		opts = append(opts, compose.Strict(false))
	case f.Options.Strict != nil:
		opts = append(opts, compose.Strict(*f.Options.Strict))
	}
	version := f.Options.Version
	if cfg.Version != "" {
		version = cfg.Version
	}
	if version != "" {
		opts = append(opts, compose.WithVersion(version))
	}
	return opts
}

func (cfg *MainConfig) forceDoc(f *fixture.File) bool {
	return cfg.Force || f.Options.ForceDoc
}

func (cfg *MainConfig) endOffset(f *fixture.File) int {
	switch {
	case cfg.End > 0:
		return cfg.End
	case f.Options.EndOffset > 0:
		return f.Options.EndOffset
	}
	return len(f.Source)
}

// colored reports whether diagnostics written to w are colored: always with
// -color, otherwise only on a terminal.
func (cfg *MainConfig) colored(w io.Writer) bool {
	if cfg.Color {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}
