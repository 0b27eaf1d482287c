package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/scott-cotton/cli"

	"github.com/KimNorgaard/go-yamlcompose/compose"
	"github.com/KimNorgaard/go-yamlcompose/internal/fixture"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Main, "yamlcompose").
		WithSynopsis("yamlcompose [opts] [fixture files]").
		WithDescription("yamlcompose composes token stream fixtures and prints the documents,\n" +
			"comments and diagnostics they produce. With no files, stdin is read.").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return run(cfg, cc, args)
		})
}

func run(cfg *MainConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Main.Parse(cc, args)
	if err != nil {
		return err
	}
	if cfg.Version != "" && cfg.Version != "1.1" && cfg.Version != "1.2" {
		return fmt.Errorf("%w: -version must be 1.1 or 1.2", cli.ErrUsage)
	}
	p := newPrinter(cc.Out, cfg.colored(cc.Out))
	if len(args) == 0 {
		return composeReader(cfg, p, "-", cc.In)
	}
	for _, file := range args {
		if err := composeFile(cfg, p, file); err != nil {
			return err
		}
	}
	return nil
}

func composeFile(cfg *MainConfig, p *printer, file string) error {
	if file == "-" {
		return composeReader(cfg, p, file, os.Stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", file, err)
	}
	defer f.Close()
	return composeReader(cfg, p, file, f)
}

func composeReader(cfg *MainConfig, p *printer, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}
	f, err := fixture.Load(data)
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", name, err)
	}
	toks, err := f.CST()
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", name, err)
	}
	c, err := compose.New(cfg.composeOpts(f, os.Stderr)...)
	if err != nil {
		return err
	}

	p.header(name, f)
	var got fixture.Expect
	for doc := range c.Compose(slices.Values(toks), cfg.forceDoc(f), cfg.endOffset(f)) {
		p.document(len(got.Documents), doc)
		got.Documents = append(got.Documents, fixture.Summarize(doc))
	}
	info := c.StreamInfo()
	p.stream(info)
	if p.err != nil || !cfg.Check {
		return p.err
	}

	got.Stream = fixture.SummarizeStream(info.Comment, info.Errors)
	changes, err := fixture.Diff(f.Expect, got)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return nil
	}
	p.diff(changes)
	if p.err != nil {
		return p.err
	}
	return fmt.Errorf("%s: result differs from expect", name)
}
