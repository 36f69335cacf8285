package sparql

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses a complete SELECT query. Placeholders must already be
// substituted.
func Parse(text string) (*Query, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	q := newQuery()
	if err := p.parsePrologue(q); err != nil {
		return nil, err
	}
	if !p.isKeyword("SELECT") {
		return nil, p.errorf(p.peek(), "expected SELECT, got %s", p.peek())
	}
	if err := p.parseSelectQuery(q, true); err != nil {
		return nil, err
	}
	if t := p.peek(); t.Kind != TokenEOF {
		return nil, p.errorf(t, "unexpected %s after query", t)
	}
	return q, nil
}

// ParsePattern parses the body of a group graph pattern without its outer
// braces, the form property templates are written in.
func ParsePattern(text string) (*Group, error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	return p.parseGroupSub(true)
}

type parser struct {
	toks  []Token
	pos   int
	blank int
}

func newParser(text string) (*parser, error) {
	all, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	toks := make([]Token, 0, len(all))
	for _, t := range all {
		switch t.Kind {
		case TokenComment:
			continue
		case TokenPlaceholder:
			return nil, &SyntaxError{Line: t.Line, Col: t.Col, Msg: "unsubstituted placeholder " + t.Text}
		}
		toks = append(toks, t)
	}
	return &parser{toks: toks}, nil
}

func newQuery() *Query {
	return &Query{Prefixes: map[string]string{}, Limit: -1, Offset: -1}
}

func (p *parser) peek() Token { return p.peekAt(0) }

func (p *parser) peekAt(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	if len(p.toks) == 0 {
		return Token{Kind: TokenEOF, Line: 1, Col: 1}
	}
	last := p.toks[len(p.toks)-1]
	return Token{Kind: TokenEOF, Line: last.Line, Col: last.Col + len(last.Text)}
}

func (p *parser) next() Token {
	t := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t Token, format string, args ...any) error {
	return &SyntaxError{Line: t.Line, Col: t.Col, Msg: fmt.Sprintf(format, args...)}
}

func isKeyword(t Token, kw string) bool {
	return t.Kind == TokenName && strings.EqualFold(t.Text, kw)
}

func isPunct(t Token, s string) bool {
	return t.Kind == TokenPunct && t.Text == s
}

func (p *parser) isKeyword(kw string) bool { return isKeyword(p.peek(), kw) }
func (p *parser) isPunct(s string) bool    { return isPunct(p.peek(), s) }

func (p *parser) expectPunct(s string) error {
	if t := p.next(); !isPunct(t, s) {
		return p.errorf(t, "expected '%s', got %s", s, t)
	}
	return nil
}

func (p *parser) expectKeyword(kw string) error {
	if t := p.next(); !isKeyword(t, kw) {
		return p.errorf(t, "expected %s, got %s", kw, t)
	}
	return nil
}

func (p *parser) expectVar() (string, error) {
	t := p.next()
	if t.Kind != TokenVar {
		return "", p.errorf(t, "expected variable, got %s", t)
	}
	return t.Value(), nil
}

func (p *parser) expectInteger() (int, error) {
	t := p.next()
	if t.Kind != TokenNumber {
		return 0, p.errorf(t, "expected integer, got %s", t)
	}
	n, err := strconv.Atoi(t.Text)
	if err != nil {
		return 0, p.errorf(t, "expected integer, got %s", t)
	}
	return n, nil
}

func (p *parser) parsePrologue(q *Query) error {
	for {
		switch {
		case p.isKeyword("PREFIX"):
			p.next()
			ns := p.next()
			if ns.Kind != TokenPrefixedName || !strings.HasSuffix(ns.Text, ":") || strings.Count(ns.Text, ":") != 1 {
				return p.errorf(ns, "expected prefix declaration, got %s", ns)
			}
			iri := p.next()
			if iri.Kind != TokenIRI {
				return p.errorf(iri, "expected IRI, got %s", iri)
			}
			q.Prefixes[strings.TrimSuffix(ns.Text, ":")] = iri.Value()
		case p.isKeyword("BASE"):
			p.next()
			iri := p.next()
			if iri.Kind != TokenIRI {
				return p.errorf(iri, "expected IRI, got %s", iri)
			}
			q.Base = iri.Value()
		default:
			return nil
		}
	}
}

func (p *parser) parseSelectQuery(q *Query, topLevel bool) error {
	sel, err := p.parseSelectClause()
	if err != nil {
		return err
	}
	q.Select = sel

	if topLevel {
		for p.isKeyword("FROM") {
			p.next()
			if p.isKeyword("NAMED") {
				p.next()
			}
			if _, err := p.parseIRI(); err != nil {
				return err
			}
		}
	}

	if p.isKeyword("WHERE") {
		p.next()
	}
	g, err := p.parseGroupGraphPattern()
	if err != nil {
		return err
	}
	q.Where = g

	if err := p.parseSolutionModifier(q); err != nil {
		return err
	}

	if p.isKeyword("VALUES") {
		p.next()
		v, err := p.parseDataBlock()
		if err != nil {
			return err
		}
		q.Values = v
	}
	return nil
}

func (p *parser) parseSelectClause() (*Select, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	sel := &Select{}
	switch {
	case p.isKeyword("DISTINCT"):
		p.next()
		sel.Distinct = true
	case p.isKeyword("REDUCED"):
		p.next()
		sel.Reduced = true
	}

	if p.isPunct("*") {
		p.next()
		sel.Star = true
		return sel, nil
	}

	for {
		t := p.peek()
		switch {
		case t.Kind == TokenVar:
			p.next()
			sel.Projections = append(sel.Projections, Projection{Var: t.Value()})
		case isPunct(t, "("):
			p.next()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectKeyword("AS"); err != nil {
				return nil, err
			}
			v, err := p.expectVar()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			sel.Projections = append(sel.Projections, Projection{Var: v, Expr: e})
		default:
			if len(sel.Projections) == 0 {
				return nil, p.errorf(t, "expected projection, got %s", t)
			}
			return sel, nil
		}
	}
}

func (p *parser) parseSolutionModifier(q *Query) error {
	if p.isKeyword("GROUP") {
		p.next()
		if err := p.expectKeyword("BY"); err != nil {
			return err
		}
		for p.startsGroupCondition() {
			e, err := p.parseGroupCondition()
			if err != nil {
				return err
			}
			q.GroupBy = append(q.GroupBy, e)
		}
		if len(q.GroupBy) == 0 {
			return p.errorf(p.peek(), "expected GROUP BY condition, got %s", p.peek())
		}
	}

	if p.isKeyword("HAVING") {
		p.next()
		for p.startsConstraint() {
			e, err := p.parseConstraint()
			if err != nil {
				return err
			}
			q.Having = append(q.Having, e)
		}
		if len(q.Having) == 0 {
			return p.errorf(p.peek(), "expected HAVING constraint, got %s", p.peek())
		}
	}

	if p.isKeyword("ORDER") {
		p.next()
		if err := p.expectKeyword("BY"); err != nil {
			return err
		}
	conditions:
		for {
			t := p.peek()
			var cond OrderCondition
			switch {
			case isKeyword(t, "ASC") || isKeyword(t, "DESC"):
				p.next()
				cond.Desc = isKeyword(t, "DESC")
				if err := p.expectPunct("("); err != nil {
					return err
				}
				e, err := p.parseExpr()
				if err != nil {
					return err
				}
				if err := p.expectPunct(")"); err != nil {
					return err
				}
				cond.Expr = e
			case t.Kind == TokenVar:
				p.next()
				cond.Expr = &Expr{Op: "var", Value: t.Value()}
			case p.startsConstraint():
				e, err := p.parseConstraint()
				if err != nil {
					return err
				}
				cond.Expr = e
			default:
				if len(q.OrderBy) == 0 {
					return p.errorf(t, "expected ORDER BY condition, got %s", t)
				}
				break conditions
			}
			q.OrderBy = append(q.OrderBy, cond)
		}
	}

	for i := 0; i < 2; i++ {
		switch {
		case p.isKeyword("LIMIT") && q.Limit < 0:
			p.next()
			n, err := p.expectInteger()
			if err != nil {
				return err
			}
			q.Limit = n
		case p.isKeyword("OFFSET") && q.Offset < 0:
			p.next()
			n, err := p.expectInteger()
			if err != nil {
				return err
			}
			q.Offset = n
		}
	}
	return nil
}

func (p *parser) startsGroupCondition() bool {
	t := p.peek()
	return t.Kind == TokenVar || isPunct(t, "(") || p.startsCall()
}

func (p *parser) parseGroupCondition() (*Expr, error) {
	t := p.peek()
	switch {
	case t.Kind == TokenVar:
		p.next()
		return &Expr{Op: "var", Value: t.Value()}, nil
	case isPunct(t, "("):
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.isKeyword("AS") {
			p.next()
			if _, err := p.expectVar(); err != nil {
				return nil, err
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return p.parsePrimary()
	}
}

// startsCall reports whether the next tokens are a function or built-in call.
func (p *parser) startsCall() bool {
	t := p.peek()
	switch t.Kind {
	case TokenName:
		if isKeyword(t, "NOT") || isKeyword(t, "EXISTS") {
			return true
		}
		return isPunct(p.peekAt(1), "(")
	case TokenIRI, TokenPrefixedName:
		return isPunct(p.peekAt(1), "(")
	}
	return false
}

func (p *parser) startsConstraint() bool {
	return p.isPunct("(") || p.startsCall()
}

func (p *parser) parseConstraint() (*Expr, error) {
	if p.isPunct("(") {
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	}
	if !p.startsCall() {
		return nil, p.errorf(p.peek(), "expected constraint, got %s", p.peek())
	}
	return p.parsePrimary()
}

func (p *parser) parseGroupGraphPattern() (*Group, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	if p.isKeyword("SELECT") {
		q := newQuery()
		if err := p.parseSelectQuery(q, false); err != nil {
			return nil, err
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		return &Group{Elements: []Element{&SubQuery{Query: q}}}, nil
	}
	g, err := p.parseGroupSub(false)
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return g, nil
}

// parseGroupSub parses group elements up to the closing brace, or up to the
// end of input when atEOF is set.
func (p *parser) parseGroupSub(atEOF bool) (*Group, error) {
	g := &Group{}
	for {
		t := p.peek()
		switch {
		case t.Kind == TokenEOF:
			if atEOF {
				return g, nil
			}
			return nil, p.errorf(t, "unexpected end of input, expected '}'")

		case isPunct(t, "}"):
			if atEOF {
				return nil, p.errorf(t, "unbalanced '}'")
			}
			return g, nil

		case isPunct(t, "."):
			p.next()

		case isPunct(t, "{"):
			el, err := p.parseGroupOrUnion()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, el)

		case isKeyword(t, "OPTIONAL"):
			p.next()
			inner, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, &Optional{Group: inner})

		case isKeyword(t, "MINUS"):
			p.next()
			inner, err := p.parseGroupGraphPattern()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, &Minus{Group: inner})

		case isKeyword(t, "GRAPH") || isKeyword(t, "SERVICE"):
			p.next()
			gp := &GraphPattern{Service: isKeyword(t, "SERVICE")}
			if gp.Service && p.isKeyword("SILENT") {
				p.next()
			}
			name, err := p.parseVarOrIRI()
			if err != nil {
				return nil, err
			}
			gp.Name = name
			if gp.Group, err = p.parseGroupGraphPattern(); err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, gp)

		case isKeyword(t, "FILTER"):
			p.next()
			e, err := p.parseConstraint()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, &Filter{Expr: e})

		case isKeyword(t, "BIND"):
			p.next()
			b, err := p.parseBind()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, b)

		case isKeyword(t, "VALUES"):
			p.next()
			v, err := p.parseDataBlock()
			if err != nil {
				return nil, err
			}
			g.Elements = append(g.Elements, v)

		case startsTerm(t):
			patterns, err := p.parseTriplesSameSubject()
			if err != nil {
				return nil, err
			}
			if last, ok := lastTriples(g); ok {
				last.Patterns = append(last.Patterns, patterns...)
			} else {
				g.Elements = append(g.Elements, &Triples{Patterns: patterns})
			}
			if p.isPunct(".") {
				p.next()
			} else if startsTerm(p.peek()) {
				return nil, p.errorf(p.peek(), "expected '.' between triple patterns, got %s", p.peek())
			}

		default:
			return nil, p.errorf(t, "unexpected %s in group pattern", t)
		}
	}
}

func lastTriples(g *Group) (*Triples, bool) {
	if len(g.Elements) == 0 {
		return nil, false
	}
	tr, ok := g.Elements[len(g.Elements)-1].(*Triples)
	return tr, ok
}

func (p *parser) parseGroupOrUnion() (Element, error) {
	first, err := p.parseGroupGraphPattern()
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("UNION") {
		return first, nil
	}
	u := &Union{Branches: []*Group{first}}
	for p.isKeyword("UNION") {
		p.next()
		g, err := p.parseGroupGraphPattern()
		if err != nil {
			return nil, err
		}
		u.Branches = append(u.Branches, g)
	}
	return u, nil
}

func (p *parser) parseBind() (*Bind, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	v, err := p.expectVar()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return &Bind{Expr: e, Var: v}, nil
}

func (p *parser) parseDataBlock() (*Values, error) {
	v := &Values{}
	t := p.next()
	switch {
	case t.Kind == TokenVar:
		v.Vars = []string{t.Value()}
		if err := p.expectPunct("{"); err != nil {
			return nil, err
		}
		for !p.isPunct("}") {
			val, err := p.parseDataValue()
			if err != nil {
				return nil, err
			}
			v.Rows = append(v.Rows, []Term{val})
		}
		p.next()
		return v, nil

	case isPunct(t, "("):
		for !p.isPunct(")") {
			name, err := p.expectVar()
			if err != nil {
				return nil, err
			}
			v.Vars = append(v.Vars, name)
		}
		p.next()
		if err := p.expectPunct("{"); err != nil {
			return nil, err
		}
		for p.isPunct("(") {
			p.next()
			var row []Term
			for !p.isPunct(")") {
				val, err := p.parseDataValue()
				if err != nil {
					return nil, err
				}
				row = append(row, val)
			}
			p.next()
			if len(row) != len(v.Vars) {
				return nil, p.errorf(t, "VALUES row has %d values for %d variables", len(row), len(v.Vars))
			}
			v.Rows = append(v.Rows, row)
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, p.errorf(t, "expected VALUES variables, got %s", t)
}

func (p *parser) parseDataValue() (Term, error) {
	t := p.peek()
	switch {
	case isKeyword(t, "UNDEF"):
		p.next()
		return Term{}, nil
	case t.Kind == TokenIRI, t.Kind == TokenPrefixedName:
		return p.parseIRI()
	case t.Kind == TokenString, t.Kind == TokenNumber, isKeyword(t, "true"), isKeyword(t, "false"),
		isPunct(t, "+"), isPunct(t, "-"):
		return p.parseLiteral()
	}
	return Term{}, p.errorf(t, "expected data value, got %s", t)
}

func (p *parser) parseIRI() (Term, error) {
	t := p.next()
	switch t.Kind {
	case TokenIRI:
		return Term{Kind: TermIRI, Value: t.Value()}, nil
	case TokenPrefixedName:
		return Term{Kind: TermPrefixedName, Value: t.Text}, nil
	}
	return Term{}, p.errorf(t, "expected IRI, got %s", t)
}

func (p *parser) parseVarOrIRI() (Term, error) {
	if t := p.peek(); t.Kind == TokenVar {
		p.next()
		return Term{Kind: TermVar, Value: t.Value()}, nil
	}
	return p.parseIRI()
}

// parseLiteral parses an RDF literal: string with optional language tag or
// datatype, number (optionally signed), or boolean.
func (p *parser) parseLiteral() (Term, error) {
	t := p.next()
	switch {
	case t.Kind == TokenString:
		text := t.Text
		if n := p.peek(); n.Kind == TokenLangTag {
			p.next()
			text += n.Text
		} else if isPunct(n, "^^") {
			p.next()
			dt, err := p.parseIRI()
			if err != nil {
				return Term{}, err
			}
			text += "^^" + dt.Value
		}
		return Term{Kind: TermLiteral, Value: text}, nil
	case t.Kind == TokenNumber:
		return Term{Kind: TermLiteral, Value: t.Text}, nil
	case isPunct(t, "+") || isPunct(t, "-"):
		n := p.next()
		if n.Kind != TokenNumber {
			return Term{}, p.errorf(n, "expected number, got %s", n)
		}
		return Term{Kind: TermLiteral, Value: t.Text + n.Text}, nil
	case isKeyword(t, "true") || isKeyword(t, "false"):
		return Term{Kind: TermLiteral, Value: strings.ToLower(t.Text)}, nil
	}
	return Term{}, p.errorf(t, "expected literal, got %s", t)
}

func startsTerm(t Token) bool {
	switch t.Kind {
	case TokenVar, TokenIRI, TokenPrefixedName, TokenString, TokenNumber, TokenBlankNode:
		return true
	case TokenName:
		return isKeyword(t, "true") || isKeyword(t, "false")
	case TokenPunct:
		return t.Text == "[" || t.Text == "("
	}
	return false
}

func (p *parser) parseTriplesSameSubject() ([]TriplePattern, error) {
	var out []TriplePattern
	anonWithProps := p.isPunct("[") && !isPunct(p.peekAt(1), "]")
	subj, err := p.parseGraphNode(&out)
	if err != nil {
		return nil, err
	}
	if anonWithProps && !p.startsVerb() {
		return out, nil
	}
	if err := p.parsePropertyList(subj, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) startsVerb() bool {
	t := p.peek()
	switch t.Kind {
	case TokenVar, TokenIRI, TokenPrefixedName:
		return true
	case TokenName:
		return t.Text == "a"
	case TokenPunct:
		return t.Text == "^" || t.Text == "!" || t.Text == "("
	}
	return false
}

func (p *parser) parsePropertyList(subj Term, out *[]TriplePattern) error {
	for {
		if !p.startsVerb() {
			return p.errorf(p.peek(), "expected predicate, got %s", p.peek())
		}
		pred, err := p.parseVerb()
		if err != nil {
			return err
		}
		for {
			obj, err := p.parseGraphNode(out)
			if err != nil {
				return err
			}
			*out = append(*out, TriplePattern{Subject: subj, Predicate: pred, Object: obj})
			if !p.isPunct(",") {
				break
			}
			p.next()
		}
		if !p.isPunct(";") {
			return nil
		}
		for p.isPunct(";") {
			p.next()
		}
		if !p.startsVerb() {
			return nil
		}
	}
}

func (p *parser) parseVerb() (Term, error) {
	if t := p.peek(); t.Kind == TokenVar {
		p.next()
		return Term{Kind: TermVar, Value: t.Value()}, nil
	}
	start := p.pos
	if err := p.parsePathAlternative(); err != nil {
		return Term{}, err
	}
	if p.pos-start == 1 {
		t := p.toks[start]
		switch {
		case t.Kind == TokenIRI:
			return Term{Kind: TermIRI, Value: t.Value()}, nil
		case t.Kind == TokenPrefixedName:
			return Term{Kind: TermPrefixedName, Value: t.Text}, nil
		case t.Text == "a":
			return Term{Kind: TermPrefixedName, Value: "rdf:type"}, nil
		}
	}
	texts := make([]string, 0, p.pos-start)
	for _, t := range p.toks[start:p.pos] {
		texts = append(texts, t.Text)
	}
	return Term{Kind: TermPath, Value: strings.Join(texts, "")}, nil
}

func (p *parser) parsePathAlternative() error {
	if err := p.parsePathSequence(); err != nil {
		return err
	}
	for p.isPunct("|") {
		p.next()
		if err := p.parsePathSequence(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parsePathSequence() error {
	if err := p.parsePathElt(); err != nil {
		return err
	}
	for p.isPunct("/") {
		p.next()
		if err := p.parsePathElt(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parsePathElt() error {
	if p.isPunct("^") {
		p.next()
	}
	t := p.next()
	switch {
	case t.Kind == TokenIRI, t.Kind == TokenPrefixedName, t.Kind == TokenName && t.Text == "a":
	case isPunct(t, "!"):
		if err := p.parseNegatedPropertySet(); err != nil {
			return err
		}
	case isPunct(t, "("):
		if err := p.parsePathAlternative(); err != nil {
			return err
		}
		if err := p.expectPunct(")"); err != nil {
			return err
		}
	default:
		return p.errorf(t, "expected property path, got %s", t)
	}
	if n := p.peek(); isPunct(n, "?") || isPunct(n, "*") || isPunct(n, "+") {
		p.next()
	}
	return nil
}

func (p *parser) parseNegatedPropertySet() error {
	one := func() error {
		if p.isPunct("^") {
			p.next()
		}
		t := p.next()
		if t.Kind == TokenIRI || t.Kind == TokenPrefixedName || (t.Kind == TokenName && t.Text == "a") {
			return nil
		}
		return p.errorf(t, "expected IRI in negated property set, got %s", t)
	}
	if !p.isPunct("(") {
		return one()
	}
	p.next()
	if p.isPunct(")") {
		p.next()
		return nil
	}
	for {
		if err := one(); err != nil {
			return err
		}
		if !p.isPunct("|") {
			break
		}
		p.next()
	}
	return p.expectPunct(")")
}

func (p *parser) newBlank() Term {
	p.blank++
	return Term{Kind: TermBlankNode, Value: fmt.Sprintf("_:anon%d", p.blank)}
}

// parseGraphNode parses a subject or object. Triples produced by blank node
// property lists are appended to out.
func (p *parser) parseGraphNode(out *[]TriplePattern) (Term, error) {
	t := p.peek()
	switch {
	case t.Kind == TokenVar:
		p.next()
		return Term{Kind: TermVar, Value: t.Value()}, nil
	case t.Kind == TokenIRI, t.Kind == TokenPrefixedName:
		return p.parseIRI()
	case t.Kind == TokenBlankNode:
		p.next()
		return Term{Kind: TermBlankNode, Value: t.Text}, nil
	case t.Kind == TokenString, t.Kind == TokenNumber, isKeyword(t, "true"), isKeyword(t, "false"),
		isPunct(t, "+"), isPunct(t, "-"):
		return p.parseLiteral()

	case isPunct(t, "["):
		p.next()
		bn := p.newBlank()
		if p.isPunct("]") {
			p.next()
			return bn, nil
		}
		if err := p.parsePropertyList(bn, out); err != nil {
			return Term{}, err
		}
		if err := p.expectPunct("]"); err != nil {
			return Term{}, err
		}
		return bn, nil

	case isPunct(t, "("):
		p.next()
		if p.isPunct(")") {
			p.next()
			return Term{Kind: TermPrefixedName, Value: "rdf:nil"}, nil
		}
		bn := p.newBlank()
		for !p.isPunct(")") {
			item, err := p.parseGraphNode(out)
			if err != nil {
				return Term{}, err
			}
			if item.Kind == TermVar {
				bn.Vars = append(bn.Vars, item.Value)
			}
			bn.Vars = append(bn.Vars, item.Vars...)
		}
		p.next()
		return bn, nil
	}
	return Term{}, p.errorf(t, "expected RDF term, got %s", t)
}

func (p *parser) parseExpr() (*Expr, error) {
	return p.parseBinary(0)
}

var precedence = [][]string{
	{"||"},
	{"&&"},
	{"=", "!=", "<", ">", "<=", ">="},
	{"+", "-"},
	{"*", "/"},
}

func (p *parser) parseBinary(level int) (*Expr, error) {
	if level == len(precedence) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	// IN and NOT IN sit at the relational level.
	if level == 2 {
		if p.isKeyword("IN") || (p.isKeyword("NOT") && isKeyword(p.peekAt(1), "IN")) {
			op := "in"
			if p.isKeyword("NOT") {
				p.next()
				op = "notin"
			}
			p.next()
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &Expr{Op: op, Args: append([]*Expr{left}, args...)}, nil
		}
	}

	for {
		t := p.peek()
		if t.Kind != TokenPunct || !contains(precedence[level], t.Text) {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &Expr{Op: t.Text, Args: []*Expr{left, right}}
		// Relational operators do not chain.
		if level == 2 {
			return left, nil
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() (*Expr, error) {
	t := p.peek()
	if isPunct(t, "!") || isPunct(t, "+") || isPunct(t, "-") {
		p.next()
		arg, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: t.Text, Args: []*Expr{arg}}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*Expr, error) {
	t := p.peek()
	switch {
	case isPunct(t, "("):
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil

	case t.Kind == TokenVar:
		p.next()
		return &Expr{Op: "var", Value: t.Value()}, nil

	case t.Kind == TokenString, t.Kind == TokenNumber, isKeyword(t, "true"), isKeyword(t, "false"):
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: "literal", Value: lit.Value}, nil

	case isKeyword(t, "EXISTS") || (isKeyword(t, "NOT") && isKeyword(p.peekAt(1), "EXISTS")):
		op := "exists"
		if isKeyword(t, "NOT") {
			p.next()
			op = "notexists"
		}
		p.next()
		g, err := p.parseGroupGraphPattern()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: op, Pattern: g}, nil

	case t.Kind == TokenName:
		if !isPunct(p.peekAt(1), "(") {
			return nil, p.errorf(t, "unexpected %s in expression", t)
		}
		p.next()
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: "call", Value: strings.ToUpper(t.Text), Args: args}, nil

	case t.Kind == TokenIRI, t.Kind == TokenPrefixedName:
		p.next()
		value := t.Text
		if t.Kind == TokenIRI {
			value = t.Value()
		}
		if !p.isPunct("(") {
			return &Expr{Op: "iri", Value: value}, nil
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		return &Expr{Op: "call", Value: value, Args: args}, nil
	}
	return nil, p.errorf(t, "unexpected %s in expression", t)
}

// parseArgList parses '(' [DISTINCT] ( '*' | expr (',' expr)* [';' SEPARATOR '=' string] ) ')'.
func (p *parser) parseArgList() ([]*Expr, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	if p.isPunct(")") {
		p.next()
		return nil, nil
	}
	if p.isKeyword("DISTINCT") {
		p.next()
	}
	var args []*Expr
	if p.isPunct("*") {
		p.next()
		args = append(args, &Expr{Op: "*"})
	} else {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, e)
			if !p.isPunct(",") {
				break
			}
			p.next()
		}
	}
	if p.isPunct(";") {
		p.next()
		if err := p.expectKeyword("SEPARATOR"); err != nil {
			return nil, err
		}
		if err := p.expectPunct("="); err != nil {
			return nil, err
		}
		if t := p.next(); t.Kind != TokenString {
			return nil, p.errorf(t, "expected separator string, got %s", t)
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}
