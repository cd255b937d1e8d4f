package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/chore/log"
	"github.com/ardnew/chore/recipe"
	"github.com/ardnew/chore/runner"
)

const choosePrompt = "➜ "

// Styles.
var (
	choosePromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	chooseSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("4"))
	chooseDocStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	chooseHintStyle = lipgloss.NewStyle().Faint(true)
)

// chooseVisible bounds the number of candidates rendered below the prompt.
const chooseVisible = 10

// Choose presents an interactive fuzzy-filtered picker over the recipes of
// the loaded document and runs the selection.
type Choose struct {
	Args []string `arg:"" help:"Arguments bound to the chosen recipe" name:"args" optional:""`
}

// Run executes the choose command.
func (c *Choose) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx)
	if err != nil {
		return err
	}

	m := newChooseModel(doc)

	p := tea.NewProgram(m, tea.WithContext(ctx))

	out, err := p.Run()
	if err != nil {
		return err
	}

	final, ok := out.(chooseModel)
	if !ok || final.choice == "" {
		return ErrNoSelection
	}

	run := runner.New(doc, runner.WithLogger(log.Default()))

	return run.Run(ctx, final.choice, c.Args)
}

// chooseModel is the Bubble Tea model for the recipe picker.
type chooseModel struct {
	doc     *recipe.Document
	names   []string
	input   textinput.Model
	matches []string
	cursor  int
	choice  string
	done    bool
}

func newChooseModel(doc *recipe.Document) chooseModel {
	ti := textinput.New()
	ti.Prompt = choosePromptStyle.Render(choosePrompt)
	ti.Placeholder = "recipe name"
	ti.Focus()

	names := doc.Registry().Names()

	return chooseModel{
		doc:     doc,
		names:   names,
		input:   ti,
		matches: names,
	}
}

func (m chooseModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chooseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd

		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.done = true

		return m, tea.Quit

	case tea.KeyEnter:
		if m.cursor < len(m.matches) {
			m.choice = m.matches[m.cursor]
		}

		m.done = true

		return m, tea.Quit

	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil

	case tea.KeyDown:
		if m.cursor < len(m.matches)-1 {
			m.cursor++
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)
	m.refilter()

	return m, cmd
}

// refilter recomputes the candidate list for the current filter text.
func (m *chooseModel) refilter() {
	filter := strings.TrimSpace(m.input.Value())

	if filter == "" {
		m.matches = m.names
	} else {
		found := fuzzy.Find(filter, m.names)

		m.matches = make([]string, len(found))
		for i, f := range found {
			m.matches[i] = f.Str
		}
	}

	if m.cursor >= len(m.matches) {
		m.cursor = max(len(m.matches)-1, 0)
	}
}

func (m chooseModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	for i, name := range m.matches {
		if i >= chooseVisible {
			b.WriteString(chooseHintStyle.Render(
				fmt.Sprintf("  … %d more", len(m.matches)-chooseVisible),
			))
			b.WriteString("\n")

			break
		}

		line := "  " + name
		if i == m.cursor {
			line = chooseSelectedStyle.Render("> " + name)
		}

		if rec, err := m.doc.Registry().Resolve(name); err == nil &&
			rec.Doc != "" {
			line += " " + chooseDocStyle.Render(rec.Doc)
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(m.matches) == 0 {
		b.WriteString(chooseHintStyle.Render("  no matching recipes"))
		b.WriteString("\n")
	}

	return b.String()
}
