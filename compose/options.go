package compose

import (
	"fmt"
	"io"
	"log/slog"
)

// Option configures a Composer.
type Option func(*options) error

type options struct {
	version string
	strict  bool
	schema  string
	nodes   NodeComposer
	logger  *slog.Logger
}

const defaultSchema = "core"

func buildOptions(opts []Option) (*options, error) {
	o := &options{
		strict: true,
		schema: defaultSchema,
		nodes:  DefaultNodeComposer(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// WithVersion returns an Option that sets the format version assumed
// before any %YAML directive. The version must be "1.1" or "1.2".
func WithVersion(v string) Option {
	return func(o *options) error {
		if v != "1.1" && v != "1.2" {
			return fmt.Errorf("yamlcompose: unsupported version %q", v)
		}
		o.version = v
		return nil
	}
}

// Strict returns an Option that controls whether a comment must be
// separated by white space from the document end marker, flow scalar or
// flow collection it follows. Strict mode is on by default.
func Strict(strict bool) Option {
	return func(o *options) error {
		o.strict = strict
		return nil
	}
}

// WithSchema returns an Option that names the schema recorded on composed
// documents.
func WithSchema(name string) Option {
	return func(o *options) error {
		if name == "" {
			return fmt.Errorf("yamlcompose: schema name must not be empty")
		}
		o.schema = name
		return nil
	}
}

// WithNodeComposer returns an Option that replaces the facility turning
// value tokens into nodes.
func WithNodeComposer(nc NodeComposer) Option {
	return func(o *options) error {
		if nc == nil {
			return fmt.Errorf("yamlcompose: node composer must not be nil")
		}
		o.nodes = nc
		return nil
	}
}

// WithLogger returns an Option that sets the logger receiving per-token
// debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) error {
		if l == nil {
			return fmt.Errorf("yamlcompose: logger must not be nil")
		}
		o.logger = l
		return nil
	}
}
