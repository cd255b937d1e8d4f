package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseString_Simple(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		recipes     int
		variables   int
		aliases     int
	}{
		{
			name:    "single recipe",
			input:   "build:\n    go build ./...",
			recipes: 1,
		},
		{
			name:    "recipe without body",
			input:   "noop:",
			recipes: 1,
		},
		{
			name:      "variables and recipes",
			input:     "profile := \"dev\"\nregion := \"us\"\n\nbuild:\n    true",
			recipes:   1,
			variables: 2,
		},
		{
			name:    "aliases",
			input:   "build:\n    true\n\nalias b := build",
			recipes: 1,
			aliases: 1,
		},
		{
			name:    "multiple recipes",
			input:   "fmt:\n    true\n\nlint:\n    true\n\nbuild: fmt lint\n    true",
			recipes: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			if len(doc.Recipes) != tt.recipes {
				t.Errorf("expected %d recipes, got %d", tt.recipes, len(doc.Recipes))
			}

			if len(doc.Variables) != tt.variables {
				t.Errorf("expected %d variables, got %d",
					tt.variables, len(doc.Variables))
			}

			if len(doc.Aliases) != tt.aliases {
				t.Errorf("expected %d aliases, got %d", tt.aliases, len(doc.Aliases))
			}
		})
	}
}

func TestParseString_Parameters(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		recipe     string
		paramCount int
		required   int
		variadic   bool
	}{
		{
			name:       "single parameter",
			input:      "greet name:\n    echo {{ name }}",
			recipe:     "greet",
			paramCount: 1,
			required:   1,
		},
		{
			name:       "default value",
			input:      "build profile=\"dev\":\n    true",
			recipe:     "build",
			paramCount: 1,
			required:   0,
		},
		{
			name:       "default referencing earlier parameter",
			input:      "pair a b=a:\n    true",
			recipe:     "pair",
			paramCount: 2,
			required:   1,
		},
		{
			name:       "trailing variadic",
			input:      "run cmd *flags:\n    true",
			recipe:     "run",
			paramCount: 2,
			required:   1,
			variadic:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}

			rec, err := doc.Registry().Resolve(tt.recipe)
			if err != nil {
				t.Fatalf("recipe %q not found: %v", tt.recipe, err)
			}

			if len(rec.Params) != tt.paramCount {
				t.Errorf("expected %d parameters, got %d",
					tt.paramCount, len(rec.Params))
			}

			if rec.Required() != tt.required {
				t.Errorf("expected %d required, got %d",
					tt.required, rec.Required())
			}

			if tt.variadic {
				last := rec.Params[len(rec.Params)-1]
				if !last.Variadic {
					t.Errorf("expected last parameter to be variadic")
				}
			}
		})
	}
}

func TestParseString_Settings(t *testing.T) {
	input := `set shell := "bash -euo pipefail -c"
set export
set positional-arguments := true
set quiet := false

build:
    true
`

	doc, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	wantShell := []string{"bash", "-euo", "pipefail", "-c"}
	if len(doc.Settings.Shell) != len(wantShell) {
		t.Fatalf("expected shell %v, got %v", wantShell, doc.Settings.Shell)
	}

	for i, w := range wantShell {
		if doc.Settings.Shell[i] != w {
			t.Errorf("shell[%d]: expected %q, got %q", i, w, doc.Settings.Shell[i])
		}
	}

	if !doc.Settings.Export {
		t.Errorf("expected export to be enabled")
	}

	if !doc.Settings.PositionalArgs {
		t.Errorf("expected positional-arguments to be enabled")
	}

	if doc.Settings.Quiet {
		t.Errorf("expected quiet to be disabled")
	}
}

func TestParseString_UnknownSetting(t *testing.T) {
	_, err := ParseString(context.Background(), "set turbo := true\n")
	if !errors.Is(err, ErrUnknownSetting) {
		t.Fatalf("expected ErrUnknownSetting, got %v", err)
	}
}

func TestParseString_DocComments(t *testing.T) {
	input := `# Compile all packages.
build:
    true

# This comment is detached by the blank line below.

clean:
    true
`

	doc, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	build, _ := doc.Registry().Resolve("build")
	if build.Doc != "Compile all packages." {
		t.Errorf("unexpected doc for build: %q", build.Doc)
	}

	clean, _ := doc.Registry().Resolve("clean")
	if clean.Doc != "" {
		t.Errorf("expected no doc for clean, got %q", clean.Doc)
	}
}

func TestParseString_DefaultAttribute(t *testing.T) {
	input := `[default]
build:
    true

test:
    true
`

	doc, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	def, err := doc.Registry().Default()
	if err != nil {
		t.Fatalf("default lookup: %v", err)
	}

	if def.Name != "build" {
		t.Errorf("expected default recipe build, got %q", def.Name)
	}
}

func TestParseString_NoDefaultRecipe(t *testing.T) {
	doc, err := ParseString(context.Background(), "build:\n    true")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	_, err = doc.Registry().Default()
	if !errors.Is(err, ErrNoDefaultRecipe) {
		t.Fatalf("expected ErrNoDefaultRecipe, got %v", err)
	}
}

func TestParseString_TrailingDefaultAttribute(t *testing.T) {
	_, err := ParseString(context.Background(), "build:\n    true\n\n[default]\n")
	if err == nil {
		t.Fatalf("expected error for trailing [default]")
	}

	if !errors.Is(err, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err)
	}
}

func TestParseString_Conflicts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "duplicate recipe",
			input: "build:\n    true\n\nbuild:\n    false",
			want:  ErrDefinitionConflict,
		},
		{
			name:  "duplicate parameter",
			input: "build x x:\n    true",
			want:  ErrDefinitionConflict,
		},
		{
			name:  "second default",
			input: "[default]\na:\n    true\n\n[default]\nb:\n    true",
			want:  ErrDefinitionConflict,
		},
		{
			name:  "duplicate alias",
			input: "a:\n    true\n\nb:\n    true\n\nalias x := a\nalias x := b",
			want:  ErrDefinitionConflict,
		},
		{
			name:  "alias shadows recipe",
			input: "a:\n    true\n\nb:\n    true\n\nalias a := b",
			want:  ErrDefinitionConflict,
		},
		{
			name:  "alias to unknown recipe",
			input: "a:\n    true\n\nalias x := ghost",
			want:  ErrUnknownRecipe,
		},
		{
			name:  "duplicate variable",
			input: "x := \"1\"\nx := \"2\"\n",
			want:  ErrDefinitionConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseString_Cycles(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "self dependency",
			input: "a: a\n    true",
			want:  ErrDependencyCycle,
		},
		{
			name:  "mutual dependency",
			input: "a: b\n    true\n\nb: a\n    true",
			want:  ErrDependencyCycle,
		},
		{
			name:  "cycle through invocation line",
			input: "a:\n    > b\n\nb:\n    > a",
			want:  ErrDependencyCycle,
		},
		{
			name:  "unknown dependency",
			input: "a: ghost\n    true",
			want:  ErrUnknownRecipe,
		},
		{
			name:  "unknown invocation callee",
			input: "a:\n    > ghost",
			want:  ErrUnknownRecipe,
		},
		{
			name:  "diamond is not a cycle",
			input: "d:\n    true\n\nb: d\n    true\n\nc: d\n    true\n\na: b c\n    true",
			want:  nil,
		},
		{
			name:  "dependency through alias",
			input: "b:\n    true\n\nalias helper := b\n\na: helper\n    true",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), tt.input)

			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				return
			}

			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseString_BodyLines(t *testing.T) {
	input := `deploy target:
    @echo deploying {{ target }}
    -rm -rf staging
    -@true
    > package {{ target }} dist
    touch done
`

	doc, err := ParseString(context.Background(),
		input+"\npackage target dir:\n    true\n")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	rec, _ := doc.Registry().Resolve("deploy")
	if len(rec.Lines) != 5 {
		t.Fatalf("expected 5 body lines, got %d", len(rec.Lines))
	}

	if !rec.Lines[0].Quiet || rec.Lines[0].IgnoreError {
		t.Errorf("line 0: expected quiet only")
	}

	if rec.Lines[1].Quiet || !rec.Lines[1].IgnoreError {
		t.Errorf("line 1: expected ignore-failure only")
	}

	if !rec.Lines[2].Quiet || !rec.Lines[2].IgnoreError {
		t.Errorf("line 2: expected both modifiers")
	}

	if rec.Lines[3].Kind != LineInvoke || rec.Lines[3].Invoke != "package" {
		t.Errorf("line 3: expected invocation of package, got %+v", rec.Lines[3])
	}

	if rec.Lines[4].Kind != LineCommand || rec.Lines[4].Quiet {
		t.Errorf("line 4: expected plain command")
	}
}

func TestParseString_Continuation(t *testing.T) {
	input := "build:\n    echo one \\\n        two\n"

	doc, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	rec, _ := doc.Registry().Resolve("build")
	if len(rec.Lines) != 1 {
		t.Fatalf("expected 1 logical line, got %d", len(rec.Lines))
	}

	if rec.Lines[0].Text.Raw != "echo one two" {
		t.Errorf("unexpected joined line: %q", rec.Lines[0].Text.Raw)
	}
}

func TestParseString_UnexpectedIndentation(t *testing.T) {
	_, err := ParseString(context.Background(), "    echo orphan\n")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}

	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected SyntaxError, got %T", err)
	}

	if syntax.Pos.Line != 1 {
		t.Errorf("expected error on line 1, got %d", syntax.Pos.Line)
	}
}

func TestParseString_VariadicMustBeLast(t *testing.T) {
	_, err := ParseString(context.Background(), "run *flags cmd:\n    true")
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestParseString_SyntaxErrorSnippet(t *testing.T) {
	_, err := ParseString(context.Background(), "alias b :=\n")
	if err == nil {
		t.Fatalf("expected error")
	}

	var syntax *SyntaxError
	if !errors.As(err, &syntax) {
		t.Fatalf("expected SyntaxError, got %T: %v", err, err)
	}

	msg := syntax.Error()
	if !strings.Contains(msg, "alias b :=") || !strings.Contains(msg, "^") {
		t.Errorf("expected snippet with caret, got:\n%s", msg)
	}
}

func TestParseString_TrailingComments(t *testing.T) {
	input := "profile := \"dev\" # active profile\n\nbuild: # compile\n    echo '#not a comment'\n"

	doc, err := ParseString(context.Background(), input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if v, _ := doc.Store().Get("profile"); v != "dev" {
		t.Errorf("expected profile=dev, got %q", v)
	}

	rec, _ := doc.Registry().Resolve("build")
	if rec.Lines[0].Text.Raw != "echo '#not a comment'" {
		t.Errorf("body comment stripping corrupted line: %q",
			rec.Lines[0].Text.Raw)
	}
}

func FuzzParseString(f *testing.F) {
	seeds := []string{
		"build:\n    true",
		"set shell := \"sh -c\"\nx := \"1\"\n\na b=x *rest: c\n    @-echo {{ b }}\n\nc:\n    true",
		"alias b := build\n[default]\nbuild:\n    > other {{ x }}",
		"export PATH_EXTRA := env(\"HOME\", \"/tmp\") + \"/bin\"",
		"a:\n    echo \\\n    continued",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, src string) {
		// Must never panic; errors are fine.
		doc, err := ParseString(context.Background(), src)
		if err != nil || doc == nil {
			return
		}

		// A document that loads must render and reload cleanly.
		var buf strings.Builder

		if err := doc.Format(&buf); err != nil {
			t.Fatalf("format after successful parse: %v", err)
		}

		if _, err := ParseString(context.Background(), buf.String()); err != nil {
			t.Fatalf("reparse of formatted output: %v\nsource:\n%s", err, buf.String())
		}
	})
}

func BenchmarkParseString(b *testing.B) {
	var buf strings.Builder

	buf.WriteString("set shell := \"sh -cu\"\n\n")

	for i := 0; i < 50; i++ {
		name := "recipe" + string(rune('a'+i%26)) + string(rune('a'+i/26))
		buf.WriteString("# Doc for " + name + "\n")
		buf.WriteString(name + " arg=\"v\" *rest:\n")
		buf.WriteString("    @echo {{ arg }} {{ rest }}\n\n")
	}

	src := buf.String()

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_, err := ParseString(context.Background(), src)
		if err != nil {
			b.Fatal(err)
		}
	}
}
