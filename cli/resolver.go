package cli

import (
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolveYAML is a [kong.ConfigurationLoader] that reads persistent flag
// values from a YAML mapping.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolveYAML, "/path/to/config.yaml")
//
// The file is a flat mapping from flag name to value. Flag names may be
// written with hyphens as on the command line, or with underscores:
//
//	log-level: debug
//	log_format: json
//	log-pretty: true
//
// Command-line flags override config file values. A file that fails to
// parse resolves to an empty configuration rather than an error, so a
// damaged config file never blocks the CLI.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}

	dec := yaml.NewDecoder(r)

	err := dec.Decode(&values)
	if err != nil {
		return config{}, nil
	}

	return config(values), nil
}

// config implements [kong.Resolver] for YAML configs.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// The mapping was already decoded successfully
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found, let kong use defaults
	return nil, nil
}
