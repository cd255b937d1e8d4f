package cmd

import (
	"context"
	"errors"
	"strings"
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

func TestSuggest(t *testing.T) {
	doc := loadDoc(t, `build:
    true

test:
    true

deploy:
    true
`)

	_, err := doc.Registry().Resolve("buil")
	if err == nil {
		t.Fatal("expected lookup failure")
	}

	var buf strings.Builder

	suggest(&buf, err, doc)

	out := buf.String()

	if !strings.Contains(out, `unknown recipe "buil"`) {
		t.Errorf("missing header: %q", out)
	}

	if !strings.Contains(out, "build") {
		t.Errorf("missing candidate build: %q", out)
	}
}

func TestSuggest_Silent(t *testing.T) {
	doc := loadDoc(t, "build:\n    true\n")

	var buf strings.Builder

	// Errors other than an unknown recipe produce no hint.
	suggest(&buf, errors.New("unrelated"), doc)

	if buf.Len() != 0 {
		t.Errorf("unexpected output for unrelated error: %q", buf.String())
	}

	// An unmatched name produces no hint either.
	_, err := doc.Registry().Resolve("zzz")

	suggest(&buf, err, doc)

	if buf.Len() != 0 {
		t.Errorf("unexpected output for unmatchable name: %q", buf.String())
	}

	// A nil document is tolerated.
	suggest(&buf, err, nil)

	if buf.Len() != 0 {
		t.Errorf("unexpected output for nil document: %q", buf.String())
	}
}

func TestAttrString(t *testing.T) {
	_, err := loadDoc(t, "build:\n    true\n").Registry().Resolve("ghost")

	if got := attrString(err, "recipe"); got != "ghost" {
		t.Errorf("expected recipe attribute ghost, got %q", got)
	}

	if got := attrString(err, "absent"); got != "" {
		t.Errorf("expected empty string for absent key, got %q", got)
	}

	if got := attrString(errors.New("plain"), "recipe"); got != "" {
		t.Errorf("expected empty string for foreign error, got %q", got)
	}
}
