package runner

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ardnew/chore/recipe"
)

func loadDoc(t *testing.T, src string) *recipe.Document {
	t.Helper()

	doc, err := recipe.ParseString(context.Background(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return doc
}

func mustResolve(
	t *testing.T,
	doc *recipe.Document,
	name string,
	args []string,
) *Invocation {
	t.Helper()

	rec, err := doc.Registry().Resolve(name)
	if err != nil {
		t.Fatalf("resolve %q: %v", name, err)
	}

	inv, err := Resolve(doc, rec, args)
	if err != nil {
		t.Fatalf("bind %q %v: %v", name, args, err)
	}

	return inv
}

// errAttr extracts a string attribute from a recipe error's log value.
func errAttr(t *testing.T, err error, key string) string {
	t.Helper()

	var e *recipe.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *recipe.Error, got %T: %v", err, err)
	}

	for _, attr := range e.LogValue().Group() {
		if attr.Key == key && attr.Value.Kind() == slog.KindString {
			return attr.Value.String()
		}
	}

	return ""
}

func TestResolve_Binding(t *testing.T) {
	doc := loadDoc(t, `profile := "dev"

greet who="world" punct="!":
    echo hello, {{ who }}{{ punct }}

pair a b=a:
    echo {{ a }} {{ b }}

conf target=profile:
    echo {{ target }}

spread cmd *flags:
    echo {{ cmd }} {{ flags }}
`)

	t.Run("explicit arguments", func(t *testing.T) {
		inv := mustResolve(t, doc, "greet", []string{"chum", "?"})

		if got := inv.Params["who"].String(); got != "chum" {
			t.Errorf("who: expected chum, got %q", got)
		}

		if got := inv.Params["punct"].String(); got != "?" {
			t.Errorf("punct: expected ?, got %q", got)
		}
	})

	t.Run("defaults fill the tail", func(t *testing.T) {
		inv := mustResolve(t, doc, "greet", []string{"chum"})

		if got := inv.Params["punct"].String(); got != "!" {
			t.Errorf("punct: expected default !, got %q", got)
		}

		if got := inv.Commands[0].Text; got != "echo hello, chum!" {
			t.Errorf("interpolated command: got %q", got)
		}
	})

	t.Run("default references earlier parameter", func(t *testing.T) {
		inv := mustResolve(t, doc, "pair", []string{"x"})

		if got := inv.Params["b"].String(); got != "x" {
			t.Errorf("b: expected x, got %q", got)
		}
	})

	t.Run("default references global variable", func(t *testing.T) {
		inv := mustResolve(t, doc, "conf", nil)

		if got := inv.Params["target"].String(); got != "dev" {
			t.Errorf("target: expected dev, got %q", got)
		}
	})

	t.Run("variadic collects the rest in order", func(t *testing.T) {
		inv := mustResolve(t, doc, "spread", []string{"go", "-v", "-x", "-a"})

		flags := inv.Params["flags"]
		if flags.Len() != 3 {
			t.Fatalf("expected 3 variadic elements, got %d", flags.Len())
		}

		if got := flags.String(); got != "-v -x -a" {
			t.Errorf("join order: got %q", got)
		}

		if got := inv.Commands[0].Text; got != "echo go -v -x -a" {
			t.Errorf("interpolated command: got %q", got)
		}
	})

	t.Run("variadic may be empty", func(t *testing.T) {
		inv := mustResolve(t, doc, "spread", []string{"go"})

		if inv.Params["flags"].Len() != 0 {
			t.Errorf("expected empty variadic binding")
		}
	})
}

func TestResolve_MissingArgument(t *testing.T) {
	doc := loadDoc(t, "r a b c:\n    true\n")

	rec, _ := doc.Registry().Resolve("r")

	_, err := Resolve(doc, rec, []string{"1"})
	if !errors.Is(err, recipe.ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}

	// The first unfilled required parameter is named.
	if got := errAttr(t, err, "parameter"); got != "b" {
		t.Errorf("expected parameter b, got %q", got)
	}
}

func TestResolve_TooManyArguments(t *testing.T) {
	doc := loadDoc(t, "r a:\n    true\n")

	rec, _ := doc.Registry().Resolve("r")

	_, err := Resolve(doc, rec, []string{"1", "2"})
	if !errors.Is(err, recipe.ErrTooManyArguments) {
		t.Fatalf("expected ErrTooManyArguments, got %v", err)
	}
}

func TestResolve_InterpolationBeforeExecution(t *testing.T) {
	doc := loadDoc(t, "r:\n    echo ok\n    echo {{ ghost }}\n")

	rec, _ := doc.Registry().Resolve("r")

	_, err := Resolve(doc, rec, nil)
	if !errors.Is(err, recipe.ErrUnresolvedReference) {
		t.Fatalf("expected ErrUnresolvedReference, got %v", err)
	}
}

func TestResolve_InvokeArgumentSplitting(t *testing.T) {
	doc := loadDoc(t, `greet who:
    echo {{ who }}

outer name="big world":
    > greet "{{ name }}" extra
`)

	inv := mustResolve(t, doc, "outer", nil)

	cmd := inv.Commands[0]
	if cmd.Line.Kind != recipe.LineInvoke {
		t.Fatalf("expected invocation line")
	}

	want := []string{"big world", "extra"}
	if len(cmd.Argv) != len(want) {
		t.Fatalf("expected argv %v, got %v", want, cmd.Argv)
	}

	for i := range want {
		if cmd.Argv[i] != want[i] {
			t.Errorf("argv[%d]: expected %q, got %q", i, want[i], cmd.Argv[i])
		}
	}
}
