package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/chore/cli/cmd"
	"github.com/ardnew/chore/pkg"
)

// CLI is the top-level command-line interface for chore.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Chorefile string `help:"Recipe file to load, or '-' for stdin" name:"chorefile" short:"f"`

	Init   cmd.Init   `cmd:"" help:"Initialize configuration file"`
	List   cmd.List   `cmd:"" help:"List recipes"`
	Vars   cmd.Vars   `cmd:"" help:"Print resolved variables"`
	Dump   cmd.Dump   `cmd:"" help:"Print the loaded recipe file in canonical form"`
	Query  cmd.Query  `cmd:"" help:"Evaluate an expression over the loaded document"`
	Choose cmd.Choose `cmd:"" help:"Select a recipe interactively"`

	Run cmd.Run `cmd:"" default:"withargs" help:"Run a recipe"`
}

// Run executes the chore CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those
	// flags during normal parsing, but this early scan also catches boolean
	// flags like --log-pretty.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolveYAML, configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithChorefile(ctx, cli.Chorefile)

	// Finalize logger configuration with all parsed values including
	// TimeLayout which doesn't use TextUnmarshaler.
	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is a no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
