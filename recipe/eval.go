package recipe

import (
	"log/slog"
	"os"
	"strings"
)

// Value is a bound parameter value. Fixed parameters hold a single string;
// variadic parameters keep their arguments as a structured sequence, joined
// by single spaces only when the value is referenced in an interpolation.
type Value struct {
	str  string
	list []string
	many bool
}

// StringValue wraps a single string.
func StringValue(s string) Value {
	return Value{str: s}
}

// ListValue wraps a variadic argument sequence.
func ListValue(args []string) Value {
	return Value{list: args, many: true}
}

// String joins the value into a single string. Variadic sequences are joined
// by single spaces in original order.
func (v Value) String() string {
	if v.many {
		return strings.Join(v.list, " ")
	}

	return v.str
}

// List returns the structured sequence for variadic values, or the single
// string as a one-element sequence.
func (v Value) List() []string {
	if v.many {
		return v.list
	}

	return []string{v.str}
}

// Len returns the number of elements held by the value.
func (v Value) Len() int {
	if v.many {
		return len(v.list)
	}

	return 1
}

// Context is the immutable binding context expressions evaluate against.
// Parameters shadow variables on name collision.
type Context struct {
	// Vars is the frozen variable store mapping.
	Vars map[string]string
	// Params are the bound parameter values of the current invocation.
	Params map[string]Value
	// Env is the process environment visible to the env() builtin.
	// If nil, os.Environ() is consulted lazily.
	Env map[string]string
}

// lookup resolves an identifier, checking parameters before variables.
func (c *Context) lookup(name string) (string, bool) {
	if c.Params != nil {
		if v, ok := c.Params[name]; ok {
			return v.String(), true
		}
	}

	if c.Vars != nil {
		if v, ok := c.Vars[name]; ok {
			return v, true
		}
	}

	return "", false
}

// getenv resolves a process environment variable.
func (c *Context) getenv(key string) (string, bool) {
	if c.Env != nil {
		v, ok := c.Env[key]

		return v, ok
	}

	return os.LookupEnv(key)
}

// Evaluate evaluates an expression against the context.
func (c *Context) Evaluate(expr Expr) (string, error) {
	return expr.eval(c)
}

// eval implements Expr.
func (l *Literal) eval(*Context) (string, error) {
	return l.Value, nil
}

// eval implements Expr.
func (r *Ref) eval(ctx *Context) (string, error) {
	v, ok := ctx.lookup(r.Name)
	if !ok {
		return "", ErrUnresolvedReference.
			WithPosition(r.Pos).
			With(slog.String("name", r.Name))
	}

	return v, nil
}

// eval implements Expr.
func (c *Concat) eval(ctx *Context) (string, error) {
	var buf strings.Builder

	for _, part := range c.Parts {
		s, err := part.eval(ctx)
		if err != nil {
			return "", err
		}

		buf.WriteString(s)
	}

	return buf.String(), nil
}

// eval implements Expr. Only the taken branch is evaluated, so a branch
// referencing an unbound name does not fail when the condition selects the
// other branch.
func (c *Conditional) eval(ctx *Context) (string, error) {
	lhs, err := c.Lhs.eval(ctx)
	if err != nil {
		return "", err
	}

	rhs, err := c.Rhs.eval(ctx)
	if err != nil {
		return "", err
	}

	if (lhs == rhs) != c.Neq {
		return c.Then.eval(ctx)
	}

	return c.Else.eval(ctx)
}

// eval implements Expr.
func (c *Call) eval(ctx *Context) (string, error) {
	fn, ok := builtins[c.Name]
	if !ok {
		return "", ErrUnresolvedReference.
			WithPosition(c.Pos).
			With(slog.String("function", c.Name))
	}

	if len(c.Args) < fn.minArgs || len(c.Args) > fn.maxArgs {
		return "", ErrType.
			WithPosition(c.Pos).
			With(
				slog.String("function", c.Name),
				slog.Int("arguments", len(c.Args)),
			)
	}

	args := make([]string, len(c.Args))

	for i, arg := range c.Args {
		s, err := arg.eval(ctx)
		if err != nil {
			return "", err
		}

		args[i] = s
	}

	return fn.apply(ctx, args)
}

// builtin is a function-like expression helper.
type builtin struct {
	minArgs int
	maxArgs int
	apply   func(*Context, []string) (string, error)
}

// builtins are the function-like helpers available to all expressions.
//
//nolint:gochecknoglobals
var builtins = map[string]builtin{
	// env(name) or env(name, fallback): process environment lookup.
	// Without a fallback, an unset variable is an unresolved reference.
	"env": {
		minArgs: 1,
		maxArgs: 2,
		apply: func(ctx *Context, args []string) (string, error) {
			v, ok := ctx.getenv(args[0])
			if ok {
				return v, nil
			}

			if len(args) == 2 {
				return args[1], nil
			}

			return "", ErrUnresolvedReference.
				With(slog.String("environment", args[0]))
		},
	},

	// default(value, fallback): fallback when value is empty.
	"default": {
		minArgs: 2,
		maxArgs: 2,
		apply: func(_ *Context, args []string) (string, error) {
			if args[0] != "" {
				return args[0], nil
			}

			return args[1], nil
		},
	},

	// quote(value): single-quote for the shell.
	"quote": {
		minArgs: 1,
		maxArgs: 1,
		apply: func(_ *Context, args []string) (string, error) {
			return "'" + strings.ReplaceAll(args[0], "'", `'\''`) + "'", nil
		},
	},
}
