package recipe

import (
	"io"
	"slices"
	"strconv"
	"strings"
)

// Format writes the document in canonical source form: settings first, then
// variables, aliases, and recipes in declaration order, with one blank line
// between sections. Body lines are re-indented with four spaces.
func (d *Document) Format(w io.Writer) error {
	var buf strings.Builder

	d.formatSettings(&buf)
	d.formatVariables(&buf)
	d.formatAliases(&buf)
	d.formatRecipes(&buf)

	_, err := io.WriteString(w, buf.String())

	return err
}

func (d *Document) formatSettings(buf *strings.Builder) {
	defaults := defaultSettings()

	if !slices.Equal(d.Settings.Shell, defaults.Shell) {
		buf.WriteString("set shell := ")
		buf.WriteString(strconv.Quote(strings.Join(d.Settings.Shell, " ")))
		buf.WriteByte('\n')
	}

	for _, s := range []struct {
		name string
		on   bool
	}{
		{"export", d.Settings.Export},
		{"positional-arguments", d.Settings.PositionalArgs},
		{"quiet", d.Settings.Quiet},
	} {
		if s.on {
			buf.WriteString("set " + s.name + "\n")
		}
	}

	if buf.Len() > 0 {
		buf.WriteByte('\n')
	}
}

func (d *Document) formatVariables(buf *strings.Builder) {
	for _, v := range d.Variables {
		if v.Export {
			buf.WriteString("export ")
		}

		buf.WriteString(v.Name)
		buf.WriteString(" := ")
		buf.WriteString(v.Expr.String())
		buf.WriteByte('\n')
	}

	if len(d.Variables) > 0 {
		buf.WriteByte('\n')
	}
}

func (d *Document) formatAliases(buf *strings.Builder) {
	for _, a := range d.Aliases {
		buf.WriteString("alias ")
		buf.WriteString(a.Name)
		buf.WriteString(" := ")
		buf.WriteString(a.Target)
		buf.WriteByte('\n')
	}

	if len(d.Aliases) > 0 {
		buf.WriteByte('\n')
	}
}

func (d *Document) formatRecipes(buf *strings.Builder) {
	for i, r := range d.Recipes {
		if i > 0 {
			buf.WriteByte('\n')
		}

		if r.Doc != "" {
			buf.WriteString("# " + r.Doc + "\n")
		}

		if r.Default {
			buf.WriteString("[default]\n")
		}

		buf.WriteString(r.Signature())
		buf.WriteByte(':')

		for _, dep := range r.Deps {
			buf.WriteByte(' ')
			buf.WriteString(dep)
		}

		buf.WriteByte('\n')

		for _, line := range r.Lines {
			buf.WriteString("    ")

			if line.Quiet {
				buf.WriteByte('@')
			}

			if line.IgnoreError {
				buf.WriteByte('-')
			}

			if line.Kind == LineInvoke {
				buf.WriteString("> " + line.Invoke)

				if line.Text.Raw != "" {
					buf.WriteByte(' ')
				}
			}

			buf.WriteString(line.Text.Raw)
			buf.WriteByte('\n')
		}
	}
}
