package cmd

import (
	"context"
	"os"

	"github.com/ardnew/chore/log"
	"github.com/ardnew/chore/runner"
)

// Run executes a recipe from the loaded document with the given arguments.
// With no recipe name, the document's default recipe runs.
type Run struct {
	Recipe string   `arg:"" help:"Recipe name or alias to run"          name:"recipe" optional:""`
	Args   []string `arg:"" help:"Arguments bound to recipe parameters" name:"args"   optional:""`

	DryRun bool `help:"Echo commands without executing them" short:"n"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	run := runner.New(doc,
		runner.WithLogger(log.Default()),
		runner.WithDryRun(r.DryRun),
	)

	err = run.Run(ctx, r.Recipe, r.Args)
	if err != nil {
		suggest(os.Stderr, err, doc)
	}

	return err
}
