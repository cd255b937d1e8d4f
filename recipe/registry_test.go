package recipe

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func loadDoc(t *testing.T, src string) *Document {
	t.Helper()

	doc, err := ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return doc
}

func TestRegistry_Resolve(t *testing.T) {
	doc := loadDoc(t, `build:
    true

test: build
    true

alias b := build
alias t := test
`)

	reg := doc.Registry()

	rec, err := reg.Resolve("build")
	if err != nil || rec.Name != "build" {
		t.Fatalf("resolve build: %v", err)
	}

	rec, err = reg.Resolve("b")
	if err != nil || rec.Name != "build" {
		t.Fatalf("resolve alias b: %v", err)
	}

	_, err = reg.Resolve("ghost")
	if !errors.Is(err, ErrUnknownRecipe) {
		t.Fatalf("expected ErrUnknownRecipe, got %v", err)
	}

	// No prefix or case-insensitive matching.
	for _, name := range []string{"bui", "BUILD", "Build"} {
		if _, err := reg.Resolve(name); !errors.Is(err, ErrUnknownRecipe) {
			t.Errorf("resolve %q: expected ErrUnknownRecipe, got %v", name, err)
		}
	}
}

func TestRegistry_Names(t *testing.T) {
	doc := loadDoc(t, `zeta:
    true

alpha:
    true

mid:
    true
`)

	names := doc.Registry().Names()

	want := []string{"zeta", "alpha", "mid"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}

	for i := range want {
		if names[i] != want[i] {
			t.Errorf("declaration order lost: expected %v, got %v", want, names)

			break
		}
	}
}

func TestRegistry_AliasesOf(t *testing.T) {
	doc := loadDoc(t, `build:
    true

alias b := build
alias bld := build
`)

	aliases := doc.Registry().AliasesOf("build")
	if len(aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %v", aliases)
	}
}

func TestRegistry_CyclePath(t *testing.T) {
	_, err := ParseString(context.Background(), `a: b
    true

b: c
    true

c: a
    true
`)
	if !errors.Is(err, ErrDependencyCycle) {
		t.Fatalf("expected ErrDependencyCycle, got %v", err)
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}

	var path string

	for _, attr := range e.LogValue().Group() {
		if attr.Key == "path" {
			path = attr.Value.String()
		}
	}

	for _, name := range []string{"a", "b", "c"} {
		if !strings.Contains(path, name) {
			t.Errorf("cycle path %q missing %q", path, name)
		}
	}
}

func TestError_SentinelIdentity(t *testing.T) {
	derived := ErrUnknownRecipe.
		With(slog.String("recipe", "x")).
		Wrap(errors.New("inner"))

	if !errors.Is(derived, ErrUnknownRecipe) {
		t.Errorf("derived error lost sentinel identity")
	}

	if errors.Is(derived, ErrDependencyCycle) {
		t.Errorf("derived error matches unrelated sentinel")
	}
}
