package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	flag := &kong.Flag{Value: &kong.Value{Name: name}}

	value, err := r.Resolve(nil, nil, flag)
	if err != nil {
		t.Fatalf("resolve %q: %v", name, err)
	}

	return value
}

func TestResolveYAML(t *testing.T) {
	input := `log-level: debug
log_format: json
log-pretty: true
`

	resolver, err := resolveYAML(strings.NewReader(input))
	if err != nil {
		t.Fatalf("resolveYAML failed: %v", err)
	}

	if got := resolveFlag(t, resolver, "log-level"); got != "debug" {
		t.Errorf("expected log-level=debug, got %v", got)
	}

	// Hyphenated flag names also match underscore keys.
	if got := resolveFlag(t, resolver, "log-format"); got != "json" {
		t.Errorf("expected log-format=json via underscore key, got %v", got)
	}

	if got := resolveFlag(t, resolver, "log-pretty"); got != true {
		t.Errorf("expected log-pretty=true, got %v", got)
	}

	if got := resolveFlag(t, resolver, "chorefile"); got != nil {
		t.Errorf("expected nil for absent key, got %v", got)
	}
}

func TestResolveYAML_DamagedFile(t *testing.T) {
	// A config file that fails to parse must not block the CLI.
	resolver, err := resolveYAML(strings.NewReader("log-level: [unclosed"))
	if err != nil {
		t.Fatalf("damaged config should resolve empty, got error: %v", err)
	}

	if got := resolveFlag(t, resolver, "log-level"); got != nil {
		t.Errorf("expected nil from empty config, got %v", got)
	}
}

func TestResolveYAML_Empty(t *testing.T) {
	resolver, err := resolveYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty config failed: %v", err)
	}

	if err := resolver.Validate(nil); err != nil {
		t.Fatalf("validate failed: %v", err)
	}

	if got := resolveFlag(t, resolver, "anything"); got != nil {
		t.Errorf("expected nil from empty config, got %v", got)
	}
}
