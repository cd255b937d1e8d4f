package recipe

import (
	"context"
	"iter"
	"log/slog"
	"os"
	"strings"
)

// Store is the frozen variable mapping of a loaded document.
//
// Variables are resolved exactly once, in declaration order, while the
// document loads. Each variable's expression is evaluated against the store
// built so far, so a variable may reference only variables declared before
// it; cycles are impossible by construction. The store is never mutated
// after load, guaranteeing referential transparency for the rest of the run.
type Store struct {
	values   map[string]string
	exported map[string]string
	order    []string
}

// resolveStore evaluates every variable of the document in declaration
// order.
func resolveStore(ctx context.Context, doc *Document) (*Store, error) {
	store := &Store{
		values:   make(map[string]string, len(doc.Variables)),
		exported: make(map[string]string),
	}

	env := processEnvMap(doc.opts.processEnv)

	for _, v := range doc.Variables {
		if _, dup := store.values[v.Name]; dup {
			return nil, ErrDefinitionConflict.
				WithPosition(v.Pos).
				With(slog.String("variable", v.Name))
		}

		evalCtx := &Context{Vars: store.values, Env: env}

		value, err := evalCtx.Evaluate(v.Expr)
		if err != nil {
			return nil, WrapError(err).
				With(slog.String("variable", v.Name))
		}

		store.values[v.Name] = value
		store.order = append(store.order, v.Name)

		if v.Export || doc.Settings.Export {
			store.exported[v.Name] = value
		}

		doc.logger.TraceContext(ctx, "variable resolved",
			slog.String("name", v.Name),
			slog.String("value", value),
			slog.Bool("export", v.Export),
		)
	}

	return store, nil
}

// Get returns the resolved value of a variable.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.values[name]

	return v, ok
}

// Values returns the complete name-to-value mapping. The returned map is a
// copy; the store itself stays frozen.
func (s *Store) Values() map[string]string {
	values := make(map[string]string, len(s.values))

	for k, v := range s.values {
		values[k] = v
	}

	return values
}

// Exported returns the mapping of exported variables merged into every
// subprocess environment. The returned map is a copy.
func (s *Store) Exported() map[string]string {
	exported := make(map[string]string, len(s.exported))

	for k, v := range s.exported {
		exported[k] = v
	}

	return exported
}

// IsExported reports whether the named variable is exported.
func (s *Store) IsExported(name string) bool {
	_, ok := s.exported[name]

	return ok
}

// All returns an iterator over (name, value) pairs in declaration order.
func (s *Store) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, name := range s.order {
			if !yield(name, s.values[name]) {
				return
			}
		}
	}
}

// processEnvMap converts a "KEY=VALUE" string slice to a map.
// If envList is nil, os.Environ() is used.
func processEnvMap(envList []string) map[string]string {
	if envList == nil {
		envList = os.Environ()
	}

	result := make(map[string]string, len(envList))

	for _, entry := range envList {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			result[key] = value
		}
	}

	return result
}
