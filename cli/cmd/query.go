package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/expr-lang/expr"
)

// Query evaluates an expression against the loaded document and prints the
// result. The expression language is expr-lang, with the document exposed
// through these identifiers:
//
//   - vars:     map of variable name to resolved value
//   - exported: map of exported variable name to value
//   - recipes:  list of recipe names in declaration order
//   - aliases:  map of alias name to target recipe name
//   - settings: map of global setting name to value
//
// Examples:
//
//	chore query 'vars.profile'
//	chore query 'len(recipes)'
//	chore query 'filter(recipes, # startsWith "build")'
type Query struct {
	Expr []string `arg:"" help:"Expression to evaluate" name:"expr"`
}

// Run executes the query command.
func (q *Query) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	aliases := make(map[string]string, len(doc.Aliases))
	for _, a := range doc.Aliases {
		aliases[a.Name] = a.Target
	}

	env := map[string]any{
		"vars":     doc.Store().Values(),
		"exported": doc.Store().Exported(),
		"recipes":  doc.Registry().Names(),
		"aliases":  aliases,
		"settings": map[string]any{
			"shell":                doc.Settings.Shell,
			"export":               doc.Settings.Export,
			"positional-arguments": doc.Settings.PositionalArgs,
			"quiet":                doc.Settings.Quiet,
		},
	}

	source := strings.Join(q.Expr, " ")

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return ErrQueryCompile.
			With(slog.String("expr", source)).
			Wrap(err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return ErrQueryRun.
			With(slog.String("expr", source)).
			Wrap(err)
	}

	fmt.Fprintln(os.Stdout, formatResult(result))

	return nil
}

// formatResult renders a query result for the terminal. Lists print one
// element per line so results compose with shell pipelines.
func formatResult(result any) string {
	switch v := result.(type) {
	case []string:
		return strings.Join(v, "\n")

	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(e)
		}

		return strings.Join(parts, "\n")

	default:
		return fmt.Sprint(v)
	}
}
