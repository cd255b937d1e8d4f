package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/chore/recipe"
)

// maxSuggestions bounds the "did you mean" candidate list.
const maxSuggestions = 3

// suggest writes a "did you mean" hint to w when err names a recipe that
// does not exist but fuzzily matches ones that do.
func suggest(w io.Writer, err error, doc *recipe.Document) {
	if doc == nil || !errors.Is(err, recipe.ErrUnknownRecipe) {
		return
	}

	name := attrString(err, "recipe")
	if name == "" {
		return
	}

	names := doc.Registry().Names()

	matches := fuzzy.Find(name, names)
	if len(matches) == 0 {
		return
	}

	fmt.Fprintf(w, "unknown recipe %q, did you mean:\n", name)

	for _, m := range matches[:min(len(matches), maxSuggestions)] {
		fmt.Fprintf(w, "    %s\n", m.Str)
	}
}

// attrString extracts a string attribute from a recipe error's structured
// log value.
func attrString(err error, key string) string {
	var e *recipe.Error
	if !errors.As(err, &e) {
		return ""
	}

	var value string

	for _, attr := range e.LogValue().Group() {
		if attr.Key == key {
			value = attr.Value.String()
		}
	}

	return value
}
