package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Vars prints the resolved variable store of the loaded document in
// declaration order.
type Vars struct {
	Exported bool `help:"Only show exported variables"          short:"e"`
	Quote    bool `help:"Quote values for shell re-consumption" short:"q"`
}

// Run executes the vars command.
func (v *Vars) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	store := doc.Store()

	for name, value := range store.All() {
		if v.Exported && !store.IsExported(name) {
			continue
		}

		if v.Quote {
			value = strconv.Quote(value)
		}

		fmt.Fprintf(os.Stdout, "%s := %s\n", name, value)
	}

	return nil
}
