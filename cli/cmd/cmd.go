package cmd

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ardnew/chore/log"
	"github.com/ardnew/chore/recipe"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// chorefileKey is used to store the --chorefile flag value in
// [context.Context].
type chorefileKey struct{}

// WithChorefile returns a new context.Context containing the recipe file
// path given on the command line. An empty path means "search for one".
func WithChorefile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, chorefileKey{}, path)
}

func chorefileFrom(ctx context.Context) string {
	path, _ := ctx.Value(chorefileKey{}).(string)

	return path
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// defaultNames are the recipe file names searched when no --chorefile flag
// is given, in precedence order.
var defaultNames = []string{"chorefile", "Chorefile"}

// findChorefile locates the recipe file to load. An explicit path is used
// as-is. Otherwise the default names are searched in the working directory
// and then each parent directory up to the filesystem root, the same way
// version-control tools locate their metadata.
func findChorefile(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", ErrNoChorefile.Wrap(err)
	}

	for {
		for _, name := range defaultNames {
			path := filepath.Join(dir, name)

			info, err := os.Stat(path)
			if err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoChorefile
		}

		dir = parent
	}
}

// loadDocument locates, opens, and parses the recipe file for the current
// invocation.
func loadDocument(ctx context.Context) (*recipe.Document, error) {
	explicit := chorefileFrom(ctx)

	if explicit == stdinSource {
		return parseDocument(ctx, os.Stdin)
	}

	path, err := findChorefile(explicit)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, recipe.ErrReadInput.Wrap(err)
	}
	defer file.Close()

	return parseDocument(ctx, file)
}

func parseDocument(
	ctx context.Context,
	r io.Reader,
) (*recipe.Document, error) {
	return recipe.ParseReader(ctx, r,
		recipe.WithLogger(log.Default()),
	)
}
