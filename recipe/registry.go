package recipe

import (
	"log/slog"
	"slices"
	"strings"
)

// Registry maps recipe names and aliases to recipe definitions.
//
// Lookup is case-sensitive and exact-match only; every ambiguity is
// rejected at definition time, never resolved at lookup time.
type Registry struct {
	recipes     map[string]*Recipe
	aliases     map[string]string
	order       []string
	defaultName string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		recipes: make(map[string]*Recipe),
		aliases: make(map[string]string),
	}
}

// Register adds a recipe definition. It fails with ErrDefinitionConflict on
// a duplicate name or a second recipe claiming the default attribute.
func (r *Registry) Register(rec *Recipe) error {
	if _, dup := r.recipes[rec.Name]; dup {
		return ErrDefinitionConflict.
			WithPosition(rec.Pos).
			With(slog.String("recipe", rec.Name))
	}

	if rec.Default {
		if r.defaultName != "" {
			return ErrDefinitionConflict.
				WithPosition(rec.Pos).
				With(
					slog.String("recipe", rec.Name),
					slog.String("existing_default", r.defaultName),
				)
		}

		r.defaultName = rec.Name
	}

	r.recipes[rec.Name] = rec
	r.order = append(r.order, rec.Name)

	return nil
}

// Alias adds an alias. It fails with ErrDefinitionConflict when the alias
// name collides with a recipe or another alias, or when the target recipe
// is undefined.
func (r *Registry) Alias(a Alias) error {
	if _, dup := r.recipes[a.Name]; dup {
		return ErrDefinitionConflict.
			WithPosition(a.Pos).
			With(
				slog.String("alias", a.Name),
				slog.String("shadows", "recipe"),
			)
	}

	if _, dup := r.aliases[a.Name]; dup {
		return ErrDefinitionConflict.
			WithPosition(a.Pos).
			With(slog.String("alias", a.Name))
	}

	if _, ok := r.recipes[a.Target]; !ok {
		return ErrUnknownRecipe.
			WithPosition(a.Pos).
			With(
				slog.String("alias", a.Name),
				slog.String("target", a.Target),
			)
	}

	r.aliases[a.Name] = a.Target

	return nil
}

// Resolve returns the recipe for a name or alias.
func (r *Registry) Resolve(name string) (*Recipe, error) {
	if rec, ok := r.recipes[name]; ok {
		return rec, nil
	}

	if target, ok := r.aliases[name]; ok {
		return r.recipes[target], nil
	}

	return nil, ErrUnknownRecipe.
		With(slog.String("recipe", name))
}

// Default returns the recipe carrying the default attribute.
func (r *Registry) Default() (*Recipe, error) {
	if r.defaultName == "" {
		return nil, ErrNoDefaultRecipe
	}

	return r.recipes[r.defaultName], nil
}

// Names returns all recipe names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)

	return names
}

// AliasesOf returns the aliases pointing at the named recipe.
func (r *Registry) AliasesOf(name string) []string {
	var aliases []string

	for alias, target := range r.aliases {
		if target == name {
			aliases = append(aliases, alias)
		}
	}

	return aliases
}

// checkCycles verifies the dependency graph is acyclic. Edges are header
// dependencies plus static nested-invocation lines. The walk is a standard
// three-color depth-first search; a gray-to-gray edge is a cycle, reported
// with the full path.
//
// Unknown names reachable through edges are reported here too, so that a
// document that loads successfully can never hit an unknown dependency at
// execution time.
func (r *Registry) checkCycles() error {
	const (
		white = iota // unvisited
		gray         // on the current path
		black        // fully explored
	)

	color := make(map[string]int, len(r.recipes))

	var path []string

	var visit func(name string, pos Position) error

	visit = func(name string, pos Position) error {
		rec, ok := r.recipes[name]
		if !ok {
			if target, aliased := r.aliases[name]; aliased {
				rec = r.recipes[target]
				name = target
			} else {
				return ErrUnknownRecipe.
					WithPosition(pos).
					With(slog.String("recipe", name))
			}
		}

		switch color[name] {
		case black:
			return nil

		case gray:
			cycle := append(path[max(slices.Index(path, name), 0):], name)

			return ErrDependencyCycle.
				WithPosition(pos).
				With(slog.String("path", strings.Join(cycle, " -> ")))
		}

		color[name] = gray
		path = append(path, name)

		for _, dep := range rec.Deps {
			err := visit(dep, rec.Pos)
			if err != nil {
				return err
			}
		}

		for _, line := range rec.Lines {
			if line.Kind != LineInvoke {
				continue
			}

			err := visit(line.Invoke, line.Pos)
			if err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		color[name] = black

		return nil
	}

	for _, name := range r.order {
		err := visit(name, r.recipes[name].Pos)
		if err != nil {
			return err
		}
	}

	return nil
}
