package recipe

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Expr is the interface implemented by all expression AST nodes.
//
// Expressions appear in variable assignments, parameter defaults, and inside
// {{ ... }} interpolations. The language has exactly one value type: string.
type Expr interface {
	// eval produces the expression's string value in the given context.
	eval(*Context) (string, error)
	// String renders the expression in canonical source form.
	String() string
}

// Literal is a quoted string literal.
type Literal struct {
	Value string
	Pos   Position
}

// Ref is a reference to a parameter or variable by name.
type Ref struct {
	Name string
	Pos  Position
}

// Concat joins subexpressions with no separator.
type Concat struct {
	Parts []Expr
}

// Conditional is a string-equality test selecting one of two branches:
// lhs == rhs ? then : else. The branches are evaluated lazily; only the
// taken branch is ever evaluated.
type Conditional struct {
	Lhs  Expr
	Rhs  Expr
	Neq  bool // != instead of ==
	Then Expr
	Else Expr
}

// Call is a built-in function invocation.
type Call struct {
	Name string
	Args []Expr
	Pos  Position
}

// String implements Expr.
func (l *Literal) String() string {
	var buf strings.Builder

	buf.WriteByte('"')

	for _, r := range l.Value {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\n':
			buf.WriteString(`\n`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteRune(r)
		}
	}

	buf.WriteByte('"')

	return buf.String()
}

// String implements Expr.
func (r *Ref) String() string { return r.Name }

// String implements Expr.
func (c *Concat) String() string {
	parts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = p.String()
	}

	return strings.Join(parts, " + ")
}

// String implements Expr.
func (c *Conditional) String() string {
	op := "=="
	if c.Neq {
		op = "!="
	}

	return c.Lhs.String() + " " + op + " " + c.Rhs.String() +
		" ? " + c.Then.String() + " : " + c.Else.String()
}

// String implements Expr.
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}

	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

// Template is the interpolation form of a body line: literal text segments
// interleaved with {{ ... }} expressions.
type Template struct {
	Parts []Expr
	Raw   string
}

// Eval concatenates the evaluated parts.
func (t Template) Eval(ctx *Context) (string, error) {
	var buf strings.Builder

	for _, part := range t.Parts {
		s, err := part.eval(ctx)
		if err != nil {
			return "", err
		}

		buf.WriteString(s)
	}

	return buf.String(), nil
}

// parseTemplate splits text into literal and expression segments.
// pos is the position of text[0] in the source line.
func parseTemplate(text string, pos Position) (Template, error) {
	tmpl := Template{Raw: text}

	start := 0

	for {
		open := indexUnquoted(text[start:], "{{")
		if open < 0 {
			break
		}

		open += start

		if open > start {
			tmpl.Parts = append(tmpl.Parts, &Literal{
				Value: text[start:open],
				Pos:   offsetPos(pos, start),
			})
		}

		inner := open + 2

		length := indexUnquoted(text[inner:], "}}")
		if length < 0 {
			return tmpl, newSyntaxError(offsetPos(pos, open), "}}")
		}

		expr, err := parseExpression(
			text[inner:inner+length],
			offsetPos(pos, inner),
		)
		if err != nil {
			return tmpl, err
		}

		tmpl.Parts = append(tmpl.Parts, expr)
		start = inner + length + 2
	}

	if start < len(text) {
		tmpl.Parts = append(tmpl.Parts, &Literal{
			Value: text[start:],
			Pos:   offsetPos(pos, start),
		})
	}

	return tmpl, nil
}

// literalTemplate wraps already-parsed text as a single-literal template.
func literalTemplate(text string, pos Position) Template {
	return Template{
		Parts: []Expr{&Literal{Value: text, Pos: pos}},
		Raw:   text,
	}
}

// indexUnquoted returns the index of the first occurrence of sep in s that
// is not inside a single- or double-quoted region, or -1.
func indexUnquoted(s, sep string) int {
	var quote byte

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if quote != 0 {
			if ch == '\\' && quote == '"' {
				i++

				continue
			}

			if ch == quote {
				quote = 0
			}

			continue
		}

		switch ch {
		case '"', '\'':
			quote = ch

		default:
			if strings.HasPrefix(s[i:], sep) {
				return i
			}
		}
	}

	return -1
}

// offsetPos returns pos advanced by n bytes within the same line.
func offsetPos(pos Position, n int) Position {
	return Position{
		Offset: pos.Offset + n,
		Line:   pos.Line,
		Column: pos.Column + n,
	}
}

// parseTermPrefix parses a single term at the start of src, returning the
// expression and the number of bytes consumed. Used for parameter defaults,
// which terminate at the first unenclosed whitespace.
func parseTermPrefix(src string, base Position) (Expr, int, error) {
	p := &exprParser{src: src, base: base}

	expr, err := p.parseTerm()
	if err != nil {
		return nil, 0, err
	}

	return expr, p.pos, nil
}

// exprParser is a recursive-descent parser over a single-line expression.
type exprParser struct {
	src  string
	pos  int
	base Position
}

// parseExpression parses src in full as one expression.
func parseExpression(src string, base Position) (Expr, error) {
	p := &exprParser{src: src, base: base}

	expr, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.eof() {
		return nil, newSyntaxError(p.position(), "end of expression")
	}

	return expr, nil
}

// parseConditional parses: concat [('==' | '!=') concat '?' cond ':' cond].
func (p *exprParser) parseConditional() (Expr, error) {
	lhs, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	var neq bool

	switch {
	case p.accept("=="):
		neq = false
	case p.accept("!="):
		neq = true
	default:
		return lhs, nil
	}

	rhs, err := p.parseConcat()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.accept("?") {
		return nil, newSyntaxError(p.position(), "?")
	}

	then, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.accept(":") {
		return nil, newSyntaxError(p.position(), ":")
	}

	alt, err := p.parseConditional()
	if err != nil {
		return nil, err
	}

	return &Conditional{Lhs: lhs, Rhs: rhs, Neq: neq, Then: then, Else: alt}, nil
}

// parseConcat parses: term ('+' term)*.
func (p *exprParser) parseConcat() (Expr, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	parts := []Expr{first}

	for {
		p.skipSpace()

		if !p.accept("+") {
			break
		}

		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		parts = append(parts, next)
	}

	if len(parts) == 1 {
		return first, nil
	}

	return &Concat{Parts: parts}, nil
}

// parseTerm parses: string literal, identifier, call, or parenthesized
// expression.
func (p *exprParser) parseTerm() (Expr, error) {
	p.skipSpace()

	if p.eof() {
		return nil, newSyntaxError(p.position(), "expression")
	}

	switch ch := p.peek(); {
	case ch == '"' || ch == '\'':
		return p.parseString()

	case ch == '(':
		p.pos++

		expr, err := p.parseConditional()
		if err != nil {
			return nil, err
		}

		p.skipSpace()

		if !p.accept(")") {
			return nil, newSyntaxError(p.position(), ")")
		}

		return expr, nil

	case isIdentStart(ch):
		return p.parseRefOrCall()

	default:
		return nil, newSyntaxError(p.position(), "expression")
	}
}

// parseString parses a quoted string literal. Double quotes process escape
// sequences; single quotes are raw.
func (p *exprParser) parseString() (Expr, error) {
	pos := p.position()
	quote := p.src[p.pos]
	p.pos++

	var buf strings.Builder

	for !p.eof() {
		ch := p.src[p.pos]

		if ch == quote {
			p.pos++

			return &Literal{Value: buf.String(), Pos: pos}, nil
		}

		if quote == '"' && ch == '\\' {
			p.pos++

			if p.eof() {
				break
			}

			switch esc := p.src[p.pos]; esc {
			case 'n':
				buf.WriteByte('\n')
			case 't':
				buf.WriteByte('\t')
			case '"', '\\', '\'':
				buf.WriteByte(esc)
			default:
				return nil, newSyntaxError(p.position(), "escape sequence")
			}

			p.pos++

			continue
		}

		buf.WriteByte(ch)
		p.pos++
	}

	return nil, newSyntaxError(pos, "closing quote")
}

// parseRefOrCall parses an identifier, continuing as a call when followed by
// an argument list.
func (p *exprParser) parseRefOrCall() (Expr, error) {
	pos := p.position()
	name := p.parseIdent()

	p.skipSpace()

	if !p.accept("(") {
		return &Ref{Name: name, Pos: pos}, nil
	}

	var args []Expr

	p.skipSpace()

	if !p.accept(")") {
		for {
			arg, err := p.parseConditional()
			if err != nil {
				return nil, err
			}

			args = append(args, arg)

			p.skipSpace()

			if p.accept(",") {
				continue
			}

			if p.accept(")") {
				break
			}

			return nil, newSyntaxError(p.position(), ", or )")
		}
	}

	return &Call{Name: name, Args: args, Pos: pos}, nil
}

// parseIdent consumes an identifier. The caller has verified isIdentStart.
func (p *exprParser) parseIdent() string {
	start := p.pos

	for !p.eof() {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if !isIdentContinue(r) {
			break
		}

		p.pos += size
	}

	return p.src[start:p.pos]
}

// Helper methods

func (p *exprParser) peek() rune {
	r, _ := utf8.DecodeRuneInString(p.src[p.pos:])

	return r
}

func (p *exprParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *exprParser) accept(s string) bool {
	if strings.HasPrefix(p.src[p.pos:], s) {
		p.pos += len(s)

		return true
	}

	return false
}

func (p *exprParser) skipSpace() {
	for !p.eof() {
		ch := p.src[p.pos]
		if ch != ' ' && ch != '\t' {
			break
		}

		p.pos++
	}
}

func (p *exprParser) position() Position {
	return offsetPos(p.base, p.pos)
}

// Character classification

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentContinue(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		r == '_' || r == '-'
}
