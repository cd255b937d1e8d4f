package cmd

import (
	"context"
	"os"
)

// Dump prints the loaded document in canonical source form. Parsing then
// dumping a file normalizes its whitespace, indentation, and ordering
// without changing its meaning.
type Dump struct{}

// Run executes the dump command.
func (d *Dump) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	return doc.Format(os.Stdout)
}
