package recipe

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// ParseReader loads a document from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return ParseString(ctx, string(data), opts...)
}

// ParseString loads a document from source text.
//
// Loading performs every load-time check the runner defines: parsing,
// duplicate detection, alias resolution, variable store resolution, and
// dependency cycle detection. A document that loads successfully can fail
// only at invocation or execution time.
func ParseString(
	ctx context.Context,
	src string,
	opts ...Option,
) (*Document, error) {
	doc := &Document{Settings: defaultSettings()}

	for _, opt := range opts {
		opt(doc)
	}

	doc.logger.TraceContext(ctx, "parse start",
		slog.Int("source_length", len(src)))

	p := &parser{
		doc:   doc,
		lines: strings.Split(src, "\n"),
	}

	err := p.parseDocument()
	if err != nil {
		attachSource(err, src)

		return nil, err
	}

	err = doc.analyze(ctx)
	if err != nil {
		attachSource(err, src)

		return nil, err
	}

	doc.logger.TraceContext(ctx, "load complete",
		slog.Int("recipe_count", len(doc.Recipes)),
		slog.Int("variable_count", len(doc.Variables)),
	)

	return doc, nil
}

// analyze performs the post-parse load phase: registry construction,
// variable store resolution, and cycle detection.
func (d *Document) analyze(ctx context.Context) error {
	registry := NewRegistry()

	for _, r := range d.Recipes {
		err := registry.Register(r)
		if err != nil {
			return err
		}
	}

	for _, a := range d.Aliases {
		err := registry.Alias(a)
		if err != nil {
			return err
		}
	}

	err := registry.checkCycles()
	if err != nil {
		return err
	}

	store, err := resolveStore(ctx, d)
	if err != nil {
		return err
	}

	d.registry = registry
	d.store = store

	return nil
}

// attachSource adds the full source text to syntax errors for snippet
// rendering.
func attachSource(err error, src string) {
	if se, ok := err.(*SyntaxError); ok { //nolint:errorlint
		se.Source = src
	}
}

// parser holds the line-oriented parser state.
type parser struct {
	doc   *Document
	lines []string
	idx   int

	current        *Recipe  // recipe receiving body lines
	pendingDoc     []string // comment lines directly above the next recipe
	pendingDefault bool     // saw a [default] attribute
	pendingPos     Position // position of the pending attribute
}

// parseDocument processes every logical line in order.
func (p *parser) parseDocument() error {
	for p.idx < len(p.lines) {
		lineNo := p.idx + 1
		raw := p.logicalLine()

		err := p.parseLine(raw, lineNo)
		if err != nil {
			return err
		}
	}

	if p.pendingDefault {
		return newSyntaxError(p.pendingPos, "recipe header after [default]")
	}

	return nil
}

// logicalLine consumes the next line, joining trailing-backslash
// continuations.
func (p *parser) logicalLine() string {
	raw := p.lines[p.idx]
	p.idx++

	for strings.HasSuffix(raw, "\\") && p.idx < len(p.lines) {
		raw = raw[:len(raw)-1] + strings.TrimLeft(p.lines[p.idx], " \t")
		p.idx++
	}

	return raw
}

// parseLine classifies and parses one logical line.
func (p *parser) parseLine(raw string, lineNo int) error {
	trimmed := strings.TrimSpace(raw)

	// Blank lines are skipped everywhere. They detach any accumulated doc
	// comment from the recipe below.
	if trimmed == "" {
		p.pendingDoc = nil

		return nil
	}

	indented := raw[0] == ' ' || raw[0] == '\t'

	// Comment lines are skipped. At the top level they accumulate as the
	// doc string of the recipe that follows.
	if trimmed[0] == '#' {
		if !indented {
			p.pendingDoc = append(
				p.pendingDoc,
				strings.TrimSpace(strings.TrimPrefix(trimmed, "#")),
			)
		}

		return nil
	}

	if indented {
		if p.current == nil {
			return newSyntaxError(
				Position{Line: lineNo, Column: 1},
				"top-level definition (unexpected indentation)",
			)
		}

		return p.parseBodyLine(raw, lineNo)
	}

	// A new top-level item ends the current recipe body.
	p.current = nil

	switch {
	case trimmed == "[default]":
		p.pendingDefault = true
		p.pendingPos = Position{Line: lineNo, Column: 1}

		return nil

	case trimmed[0] == '[':
		return newSyntaxError(
			Position{Line: lineNo, Column: 1},
			"[default]",
		)

	case strings.HasPrefix(trimmed, "set ") || trimmed == "set":
		return p.parseSetting(stripComment(raw), lineNo)

	case strings.HasPrefix(trimmed, "alias ") || trimmed == "alias":
		return p.parseAlias(stripComment(raw), lineNo)

	case strings.HasPrefix(trimmed, "export ") || trimmed == "export":
		return p.parseVariable(stripComment(raw), lineNo, true)

	case indexUnquoted(raw, ":=") >= 0:
		return p.parseVariable(stripComment(raw), lineNo, false)

	default:
		return p.parseHeader(stripComment(raw), lineNo)
	}
}

// parseSetting parses: set name [:= value].
func (p *parser) parseSetting(raw string, lineNo int) error {
	s := newLineScanner(raw, lineNo)

	s.expectWord("set")
	s.skipSpace()

	name := s.ident()
	if name == "" {
		return newSyntaxError(s.position(), "setting name")
	}

	s.skipSpace()

	value := ""
	explicit := false

	if s.accept(":=") {
		expr, err := parseExpression(s.rest(), s.position())
		if err != nil {
			return err
		}

		// Settings are resolved before any variable exists, so their
		// expressions may not reference anything.
		value, err = (&Context{}).Evaluate(expr)
		if err != nil {
			return err
		}

		explicit = true
	} else if !s.eol() {
		return newSyntaxError(s.position(), ":=")
	}

	return p.applySetting(name, value, explicit, s.position())
}

// applySetting validates and stores one setting value.
func (p *parser) applySetting(
	name, value string,
	explicit bool,
	pos Position,
) error {
	boolValue := func() (bool, error) {
		if !explicit {
			return true, nil
		}

		switch value {
		case "true":
			return true, nil
		case "false":
			return false, nil
		default:
			return false, newSyntaxError(pos, `"true" or "false"`)
		}
	}

	switch name {
	case "shell":
		if !explicit || strings.TrimSpace(value) == "" {
			return newSyntaxError(pos, "shell command string")
		}

		p.doc.Settings.Shell = strings.Fields(value)

	case "export":
		v, err := boolValue()
		if err != nil {
			return err
		}

		p.doc.Settings.Export = v

	case "positional-arguments":
		v, err := boolValue()
		if err != nil {
			return err
		}

		p.doc.Settings.PositionalArgs = v

	case "quiet":
		v, err := boolValue()
		if err != nil {
			return err
		}

		p.doc.Settings.Quiet = v

	default:
		return ErrUnknownSetting.
			WithPosition(pos).
			With(slog.String("name", name))
	}

	return nil
}

// parseAlias parses: alias name := target.
func (p *parser) parseAlias(raw string, lineNo int) error {
	s := newLineScanner(raw, lineNo)

	s.expectWord("alias")
	s.skipSpace()

	pos := s.position()

	name := s.ident()
	if name == "" {
		return newSyntaxError(s.position(), "alias name")
	}

	s.skipSpace()

	if !s.accept(":=") {
		return newSyntaxError(s.position(), ":=")
	}

	s.skipSpace()

	target := s.ident()
	if target == "" {
		return newSyntaxError(s.position(), "target recipe name")
	}

	s.skipSpace()

	if !s.eol() {
		return newSyntaxError(s.position(), "end of line")
	}

	p.doc.Aliases = append(p.doc.Aliases, Alias{
		Name:   name,
		Target: target,
		Pos:    pos,
	})

	return nil
}

// parseVariable parses: [export] name := expression.
func (p *parser) parseVariable(raw string, lineNo int, export bool) error {
	s := newLineScanner(raw, lineNo)

	if export {
		s.expectWord("export")
		s.skipSpace()
	}

	pos := s.position()

	name := s.ident()
	if name == "" {
		return newSyntaxError(s.position(), "variable name")
	}

	s.skipSpace()

	if !s.accept(":=") {
		return newSyntaxError(s.position(), ":=")
	}

	s.skipSpace()

	expr, err := parseExpression(s.rest(), s.position())
	if err != nil {
		return err
	}

	p.doc.Variables = append(p.doc.Variables, Variable{
		Name:   name,
		Expr:   expr,
		Export: export,
		Pos:    pos,
	})

	return nil
}

// parseHeader parses a recipe header:
// name param[=default] ... [*variadic]: dep ...
func (p *parser) parseHeader(raw string, lineNo int) error {
	s := newLineScanner(raw, lineNo)

	pos := s.position()

	name := s.ident()
	if name == "" {
		return newSyntaxError(s.position(), "recipe name")
	}

	rec := &Recipe{
		Name:    name,
		Doc:     strings.Join(p.pendingDoc, " "),
		Default: p.pendingDefault,
		Pos:     pos,
	}

	p.pendingDoc = nil
	p.pendingDefault = false

	// Parameters until the colon.
	seen := make(map[string]struct{})

	for {
		s.skipSpace()

		if s.eol() {
			return newSyntaxError(s.position(), ":")
		}

		if s.accept(":") {
			break
		}

		param, err := p.parseParam(s)
		if err != nil {
			return err
		}

		if _, dup := seen[param.Name]; dup {
			return ErrDefinitionConflict.
				WithPosition(param.Pos).
				With(
					slog.String("recipe", name),
					slog.String("parameter", param.Name),
				)
		}

		seen[param.Name] = struct{}{}

		if n := len(rec.Params); n > 0 && rec.Params[n-1].Variadic {
			return newSyntaxError(
				param.Pos,
				": (variadic parameter must be last)",
			)
		}

		rec.Params = append(rec.Params, param)
	}

	// Dependencies after the colon.
	for {
		s.skipSpace()

		if s.eol() {
			break
		}

		dep := s.ident()
		if dep == "" {
			return newSyntaxError(s.position(), "dependency recipe name")
		}

		rec.Deps = append(rec.Deps, dep)
	}

	p.doc.Recipes = append(p.doc.Recipes, rec)
	p.current = rec

	return nil
}

// parseParam parses one parameter declaration: [*]name[=default].
func (p *parser) parseParam(s *lineScanner) (Parameter, error) {
	pos := s.position()
	variadic := s.accept("*")

	name := s.ident()
	if name == "" {
		return Parameter{}, newSyntaxError(s.position(), "parameter name")
	}

	param := Parameter{Name: name, Variadic: variadic, Pos: pos}

	if s.accept("=") {
		expr, n, err := parseTermPrefix(s.rest(), s.position())
		if err != nil {
			return Parameter{}, err
		}

		s.advance(n)

		param.Default = expr
	}

	return param, nil
}

// parseBodyLine parses one indented body line of the current recipe.
func (p *parser) parseBodyLine(raw string, lineNo int) error {
	text := strings.TrimLeft(raw, " \t")
	s := newLineScanner(raw, lineNo)
	s.advance(len(raw) - len(text))

	line := Line{Pos: s.position()}

	// Modifiers may appear in either order, each at most once.
	for {
		switch {
		case !line.Quiet && s.accept("@"):
			line.Quiet = true
		case !line.IgnoreError && s.accept("-"):
			line.IgnoreError = true
		default:
			goto modifiersDone
		}
	}

modifiersDone:
	if s.accept(">") {
		s.skipSpace()

		callee := s.ident()
		if callee == "" {
			return newSyntaxError(s.position(), "recipe name")
		}

		s.skipSpace()

		args, err := parseTemplate(s.rest(), s.position())
		if err != nil {
			return err
		}

		line.Kind = LineInvoke
		line.Invoke = callee
		line.Text = args
	} else {
		tmpl, err := parseTemplate(s.rest(), s.position())
		if err != nil {
			return err
		}

		line.Kind = LineCommand
		line.Text = tmpl
	}

	p.current.Lines = append(p.current.Lines, line)

	return nil
}

// stripComment removes an unquoted trailing comment from a top-level line.
func stripComment(s string) string {
	if i := indexUnquoted(s, "#"); i >= 0 {
		return strings.TrimRight(s[:i], " \t")
	}

	return s
}

// lineScanner is a cursor over one source line with position tracking.
type lineScanner struct {
	src  string
	pos  int
	line int
}

func newLineScanner(src string, lineNo int) *lineScanner {
	return &lineScanner{src: src, line: lineNo}
}

func (s *lineScanner) position() Position {
	return Position{Offset: s.pos, Line: s.line, Column: s.pos + 1}
}

func (s *lineScanner) eol() bool {
	return s.pos >= len(s.src)
}

func (s *lineScanner) rest() string {
	return s.src[s.pos:]
}

func (s *lineScanner) advance(n int) {
	s.pos += n
}

func (s *lineScanner) skipSpace() {
	for !s.eol() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func (s *lineScanner) accept(prefix string) bool {
	if strings.HasPrefix(s.src[s.pos:], prefix) {
		s.pos += len(prefix)

		return true
	}

	return false
}

// expectWord consumes a known leading keyword. The caller has already
// verified the prefix via classification.
func (s *lineScanner) expectWord(word string) {
	s.skipSpace()
	s.accept(word)
}

// ident consumes an identifier, returning "" when none is present.
func (s *lineScanner) ident() string {
	start := s.pos

	for !s.eol() {
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])

		if s.pos == start {
			if !isIdentStart(r) {
				break
			}
		} else if !isIdentContinue(r) {
			break
		}

		s.pos += size
	}

	return s.src[start:s.pos]
}
