package runner

import (
	"log/slog"

	"github.com/anmitsu/go-shlex"

	"github.com/ardnew/chore/recipe"
)

// Invocation is one runtime request to execute a specific recipe with
// specific bound arguments. It is constructed fresh per execution request
// and discarded when the recipe completes; the executor exclusively owns
// its lifetime.
type Invocation struct {
	Recipe *recipe.Recipe
	Args   []string
	Params map[string]recipe.Value
	// Commands are the fully interpolated body lines. They are resolved
	// before any subprocess spawns, so a recipe whose later lines fail to
	// interpolate never partially executes.
	Commands []Command
}

// Command is one resolved body line.
type Command struct {
	Line recipe.Line
	// Text is the interpolated command string (LineCommand).
	Text string
	// Argv are the word-split callee arguments (LineInvoke).
	Argv []string
}

// Resolve binds caller arguments to the recipe's parameters and
// interpolates every body line.
//
// Binding is positional, left to right. A parameter without a caller value
// falls back to its default expression, evaluated in a context that already
// contains every parameter bound so far, so later defaults may reference
// earlier parameters. Arguments beyond the named parameters are captured by
// the trailing variadic parameter when one is declared.
func Resolve(
	doc *recipe.Document,
	rec *recipe.Recipe,
	args []string,
) (*Invocation, error) {
	params := make(map[string]recipe.Value, len(rec.Params))
	vars := doc.Store().Values()

	next := 0

	for _, p := range rec.Params {
		if p.Variadic {
			rest := args[min(next, len(args)):]
			params[p.Name] = recipe.ListValue(rest)
			next = len(args)

			continue
		}

		switch {
		case next < len(args):
			params[p.Name] = recipe.StringValue(args[next])
			next++

		case p.Default != nil:
			evalCtx := &recipe.Context{Vars: vars, Params: params}

			value, err := evalCtx.Evaluate(p.Default)
			if err != nil {
				return nil, recipe.WrapError(err).
					With(
						slog.String("recipe", rec.Name),
						slog.String("parameter", p.Name),
					)
			}

			params[p.Name] = recipe.StringValue(value)

		default:
			return nil, recipe.ErrMissingArgument.
				With(
					slog.String("recipe", rec.Name),
					slog.String("parameter", p.Name),
				)
		}
	}

	if next < len(args) {
		return nil, recipe.ErrTooManyArguments.
			With(
				slog.String("recipe", rec.Name),
				slog.Int("expected", len(rec.Params)),
				slog.Int("got", len(args)),
			)
	}

	inv := &Invocation{
		Recipe: rec,
		Args:   args,
		Params: params,
	}

	evalCtx := &recipe.Context{Vars: vars, Params: params}

	for _, line := range rec.Lines {
		text, err := line.Text.Eval(evalCtx)
		if err != nil {
			return nil, recipe.WrapError(err).
				With(
					slog.String("recipe", rec.Name),
					slog.Int("line", line.Pos.Line),
				)
		}

		cmd := Command{Line: line, Text: text}

		if line.Kind == recipe.LineInvoke {
			argv, err := shlex.Split(text, true)
			if err != nil {
				return nil, recipe.ErrParse.Wrap(err).
					With(
						slog.String("recipe", rec.Name),
						slog.Int("line", line.Pos.Line),
					)
			}

			cmd.Argv = argv
		}

		inv.Commands = append(inv.Commands, cmd)
	}

	return inv, nil
}
