package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// listStyles hold the lipgloss styles used to render the recipe listing.
//
//nolint:gochecknoglobals
var listStyles = struct {
	name    lipgloss.Style
	param   lipgloss.Style
	doc     lipgloss.Style
	badge   lipgloss.Style
	aliases lipgloss.Style
}{
	name:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
	param:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	doc:     lipgloss.NewStyle().Faint(true),
	badge:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	aliases: lipgloss.NewStyle().Faint(true).Italic(true),
}

// List prints every recipe of the loaded document in declaration order.
type List struct {
	Plain bool `help:"Disable styled output" short:"p"`
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	for rec := range doc.All() {
		var line strings.Builder

		line.WriteString(l.style(listStyles.name, rec.Name))

		for _, p := range rec.Params {
			sig := p.Name

			if p.Variadic {
				sig = "*" + sig
			}

			if p.Default != nil {
				sig += "=" + p.Default.String()
			}

			line.WriteString(" " + l.style(listStyles.param, sig))
		}

		if rec.Default {
			line.WriteString(" " + l.style(listStyles.badge, "[default]"))
		}

		if aliases := doc.Registry().AliasesOf(rec.Name); len(aliases) > 0 {
			line.WriteString(" " + l.style(
				listStyles.aliases,
				"("+strings.Join(aliases, ", ")+")",
			))
		}

		fmt.Fprintln(os.Stdout, line.String())

		if rec.Doc != "" {
			fmt.Fprintln(os.Stdout, "    "+l.style(listStyles.doc, rec.Doc))
		}
	}

	return nil
}

func (l *List) style(s lipgloss.Style, text string) string {
	if l.Plain {
		return text
	}

	return s.Render(text)
}
