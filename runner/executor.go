package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/ardnew/chore/log"
	"github.com/ardnew/chore/pkg"
	"github.com/ardnew/chore/recipe"
)

// Runner executes recipes from a loaded document.
//
// Execution is strictly sequential: for each invocation, dependency recipes
// run first in declared order, then body lines run top to bottom. A body
// line that exits non-zero aborts the invocation unless the line carries
// the ignore-failure modifier.
type Runner struct {
	doc *recipe.Document

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	env    []string
	logger log.Logger
	dryRun bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithStdio sets the standard streams wired into every subprocess.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(r *Runner) {
		r.stdin = stdin
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithEnviron sets the base process environment in "KEY=VALUE" form.
// If not provided, os.Environ() is used.
func WithEnviron(env []string) Option {
	return func(r *Runner) {
		r.env = env
	}
}

// WithLogger sets the structured logger for execution tracing.
func WithLogger(logger log.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithDryRun echoes every command without spawning any subprocess.
func WithDryRun(enable bool) Option {
	return func(r *Runner) {
		r.dryRun = enable
	}
}

// New creates a Runner over a loaded document.
func New(doc *recipe.Document, opts ...Option) *Runner {
	r := &Runner{
		doc:    doc,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run executes the named recipe with the given arguments. An empty name
// selects the document's default recipe, which then receives the arguments.
func (r *Runner) Run(ctx context.Context, name string, args []string) error {
	var (
		rec *recipe.Recipe
		err error
	)

	if name == "" {
		rec, err = r.doc.Registry().Default()
	} else {
		rec, err = r.doc.Registry().Resolve(name)
	}

	if err != nil {
		return err
	}

	return r.run(ctx, rec, args)
}

func (r *Runner) run(
	ctx context.Context,
	rec *recipe.Recipe,
	args []string,
) error {
	inv, err := Resolve(r.doc, rec, args)
	if err != nil {
		return err
	}

	r.logger.Trace("invoking recipe",
		slog.String("recipe", rec.Name),
		slog.Any("args", args),
	)

	// Dependencies run before any body line, once each, in declared order.
	// They are invoked without arguments, so their parameters must all
	// carry defaults.
	for _, dep := range rec.Deps {
		depRec, err := r.doc.Registry().Resolve(dep)
		if err != nil {
			return err
		}

		err = r.run(ctx, depRec, nil)
		if err != nil {
			return err
		}
	}

	for _, cmd := range inv.Commands {
		if err := ctx.Err(); err != nil {
			return err
		}

		if cmd.Line.Kind == recipe.LineInvoke {
			callee, err := r.doc.Registry().Resolve(cmd.Line.Invoke)
			if err != nil {
				return err
			}

			err = r.run(ctx, callee, cmd.Argv)
			if err != nil {
				// The ignore-failure modifier covers invocation lines the
				// same as command lines. Binding and resolution errors still
				// propagate; only a failed subprocess is ignorable.
				var execErr *ExecutionError
				if cmd.Line.IgnoreError && errors.As(err, &execErr) {
					r.logger.Debug("ignoring invocation failure",
						slog.String("recipe", inv.Recipe.Name),
						slog.Int("line", cmd.Line.Pos.Line),
						slog.String("callee", cmd.Line.Invoke),
						slog.Int("exit_code", execErr.ExitCode),
					)

					continue
				}

				return err
			}

			continue
		}

		err := r.spawn(ctx, inv, cmd)
		if err != nil {
			return err
		}
	}

	return nil
}

// spawn runs one command line through the configured shell.
func (r *Runner) spawn(
	ctx context.Context,
	inv *Invocation,
	cmd Command,
) error {
	settings := r.doc.Settings

	if !cmd.Line.Quiet && !settings.Quiet {
		fmt.Fprintln(r.stderr, cmd.Text)
	}

	if r.dryRun {
		return nil
	}

	argv := make([]string, 0, len(settings.Shell)+len(inv.Recipe.Params)+2)
	argv = append(argv, settings.Shell...)
	argv = append(argv, cmd.Text)

	if settings.PositionalArgs {
		// The shell's -c form takes $0 after the command string, then the
		// positional parameters $1..$n.
		argv = append(argv, pkg.Name)
		argv = append(argv, positionals(inv)...)
	}

	proc := exec.CommandContext(ctx, argv[0], argv[1:]...)
	proc.Stdin = r.stdin
	proc.Stdout = r.stdout
	proc.Stderr = r.stderr
	proc.Env = r.environFor(inv)

	r.logger.Trace("spawning command",
		slog.String("recipe", inv.Recipe.Name),
		slog.Int("line", cmd.Line.Pos.Line),
		slog.String("command", cmd.Text),
	)

	err := proc.Run()
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return recipe.WrapError(err).
			With(
				slog.String("recipe", inv.Recipe.Name),
				slog.String("command", cmd.Text),
			)
	}

	if cmd.Line.IgnoreError {
		r.logger.Debug("ignoring command failure",
			slog.String("recipe", inv.Recipe.Name),
			slog.Int("line", cmd.Line.Pos.Line),
			slog.Int("exit_code", exitErr.ExitCode()),
		)

		return nil
	}

	return &ExecutionError{
		Recipe:   inv.Recipe.Name,
		Line:     cmd.Line.Pos.Line,
		Command:  cmd.Text,
		ExitCode: exitErr.ExitCode(),
	}
}

// positionals flattens the bound parameter values in declared order for the
// shell's $1..$n. Parameters filled by their defaults appear like any other
// binding; a variadic binding contributes one positional per element.
func positionals(inv *Invocation) []string {
	args := make([]string, 0, len(inv.Recipe.Params))

	for _, p := range inv.Recipe.Params {
		value := inv.Params[p.Name]

		if p.Variadic {
			args = append(args, value.List()...)

			continue
		}

		args = append(args, value.String())
	}

	return args
}

// environFor composes the subprocess environment: the base process
// environment, overlaid with the document's exported variables, overlaid
// with the invocation's bound parameters when "set export" is active.
func (r *Runner) environFor(inv *Invocation) []string {
	base := r.env
	if base == nil {
		base = os.Environ()
	}

	layers := []map[string]string{r.doc.Store().Exported()}

	if r.doc.Settings.Export {
		params := make(map[string]string, len(inv.Params))
		for name, value := range inv.Params {
			params[name] = value.String()
		}

		layers = append(layers, params)
	}

	return mergeEnviron(base, layers...)
}
