package recipe

import (
	"iter"
	"strings"

	"github.com/ardnew/chore/log"
)

// Document is the result of loading a recipe source file: global settings,
// variables in declaration order, recipes, and aliases, together with the
// frozen variable store and the recipe registry built at load time.
//
// A Document is immutable after Load returns.
type Document struct {
	Settings  Settings
	Variables []Variable
	Recipes   []*Recipe
	Aliases   []Alias

	registry *Registry
	store    *Store

	opts   options
	logger log.Logger
}

// Registry returns the recipe registry built at load time.
func (d *Document) Registry() *Registry { return d.registry }

// Store returns the frozen variable store built at load time.
func (d *Document) Store() *Store { return d.store }

// All returns an iterator over all recipes in declaration order.
func (d *Document) All() iter.Seq[*Recipe] {
	return func(yield func(*Recipe) bool) {
		for _, r := range d.Recipes {
			if !yield(r) {
				return
			}
		}
	}
}

// Settings are the global flags of a document. They are parsed from "set"
// directives, fixed once load completes, and applied uniformly by the
// executor.
type Settings struct {
	// Shell is the command interpreter argv used to run each body line.
	// The line itself is appended as the final argument.
	Shell []string
	// Export marks every variable and every bound parameter for export into
	// subprocess environments.
	Export bool
	// PositionalArgs passes bound arguments to the shell as $1..$n in
	// addition to interpolation.
	PositionalArgs bool
	// Quiet suppresses command echo for every line, as if each carried the
	// quiet modifier.
	Quiet bool
}

// DefaultShell is the command interpreter used when no "set shell" directive
// is present. The -u flag makes unbound shell variables an error instead of
// an empty expansion, which surfaces interpolation mistakes early.
//
//nolint:gochecknoglobals
var DefaultShell = []string{"sh", "-cu"}

// defaultSettings returns the settings in effect before any directives.
func defaultSettings() Settings {
	return Settings{Shell: DefaultShell}
}

// Variable is a named expression evaluated once at load time.
type Variable struct {
	Name   string
	Expr   Expr
	Export bool
	Pos    Position
}

// Alias maps a short name to a target recipe name.
type Alias struct {
	Name   string
	Target string
	Pos    Position
}

// Recipe is a named, parameterized unit of sequential body lines.
type Recipe struct {
	Name    string
	Doc     string // comment line(s) directly above the header
	Default bool   // carries the [default] attribute
	Params  []Parameter
	Deps    []string
	Lines   []Line
	Pos     Position
}

// Signature renders the recipe header name and parameters for display.
func (r *Recipe) Signature() string {
	var buf strings.Builder

	buf.WriteString(r.Name)

	for _, p := range r.Params {
		buf.WriteByte(' ')

		if p.Variadic {
			buf.WriteByte('*')
		}

		buf.WriteString(p.Name)

		if p.Default != nil {
			rendered := p.Default.String()

			// Defaults parse as a single term; concatenations and
			// conditionals need parentheses to round-trip.
			switch p.Default.(type) {
			case *Concat, *Conditional:
				rendered = "(" + rendered + ")"
			}

			buf.WriteByte('=')
			buf.WriteString(rendered)
		}
	}

	return buf.String()
}

// Required returns the number of parameters without a default value.
// Variadic parameters are never required.
func (r *Recipe) Required() int {
	n := 0

	for _, p := range r.Params {
		if p.Default == nil && !p.Variadic {
			n++
		}
	}

	return n
}

// Parameter is a declared recipe parameter. A nil Default marks the
// parameter as required. At most one parameter per recipe is variadic, and
// it must be last.
type Parameter struct {
	Name     string
	Default  Expr
	Variadic bool
	Pos      Position
}

// LineKind discriminates the two body line forms.
type LineKind int

const (
	// LineCommand is a shell command line.
	LineCommand LineKind = iota
	// LineInvoke is a nested invocation of another recipe.
	LineInvoke
)

// Line is one body line of a recipe.
type Line struct {
	Kind LineKind
	// Text is the interpolation template for the command (LineCommand) or
	// the callee arguments (LineInvoke).
	Text Template
	// Invoke is the callee recipe name for LineInvoke. It is static so the
	// dependency graph can be cycle-checked at load time.
	Invoke string
	// Quiet suppresses echoing the command before it runs.
	Quiet bool
	// IgnoreError continues with the next line on non-zero exit.
	IgnoreError bool
	Pos         Position
}

// options holds document configuration applied through functional options.
type options struct {
	processEnv []string
}

// Option configures document loading behavior.
type Option func(*Document)

// WithLogger sets the structured logger for trace-level instrumentation.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// WithProcessEnv sets the process environment visible to the env() builtin
// and to store resolution. The format is []string{"KEY=VALUE", ...}.
// If nil, os.Environ() is used.
func WithProcessEnv(env []string) Option {
	return func(d *Document) {
		d.opts.processEnv = env
	}
}
