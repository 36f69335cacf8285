package sparql

// Query is a parsed SELECT query.
type Query struct {
	Base     string
	Prefixes map[string]string
	Select   *Select
	Where    *Group
	GroupBy  []*Expr
	Having   []*Expr
	OrderBy  []OrderCondition
	// Limit and Offset are -1 when absent.
	Limit  int
	Offset int
	Values *Values
}

// Select is the projection of a query or sub-select.
type Select struct {
	Distinct    bool
	Reduced     bool
	Star        bool
	Projections []Projection
}

// Projection is a projected variable, optionally computed from an expression.
type Projection struct {
	Var  string
	Expr *Expr
}

// OrderCondition is one ORDER BY key.
type OrderCondition struct {
	Desc bool
	Expr *Expr
}

// Element is a member of a group graph pattern.
type Element interface {
	element()
}

// Group is a group graph pattern: { ... }.
type Group struct {
	Elements []Element
}

// Triples is a block of triple patterns.
type Triples struct {
	Patterns []TriplePattern
}

// TriplePattern is a single subject/predicate/object pattern. Property paths
// are kept as a TermPath predicate whose Vars lists any variables inside.
type TriplePattern struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// Optional is OPTIONAL { ... }.
type Optional struct {
	Group *Group
}

// Minus is MINUS { ... }.
type Minus struct {
	Group *Group
}

// Union is {A} UNION {B} UNION ...
type Union struct {
	Branches []*Group
}

// GraphPattern is GRAPH term { ... } or SERVICE term { ... }.
type GraphPattern struct {
	Service bool
	Name    Term
	Group   *Group
}

// Filter is FILTER constraint.
type Filter struct {
	Expr *Expr
}

// Bind is BIND(expr AS ?var).
type Bind struct {
	Expr *Expr
	Var  string
}

// Values is an inline data block. UNDEF cells are zero Terms.
type Values struct {
	Vars []string
	Rows [][]Term
}

// SubQuery is a nested SELECT.
type SubQuery struct {
	Query *Query
}

func (*Group) element()        {}
func (*Triples) element()      {}
func (*Optional) element()     {}
func (*Minus) element()        {}
func (*Union) element()        {}
func (*GraphPattern) element() {}
func (*Filter) element()       {}
func (*Bind) element()         {}
func (*Values) element()       {}
func (*SubQuery) element()     {}

// TermKind classifies a term.
type TermKind int

const (
	TermUndef TermKind = iota
	TermVar
	TermIRI
	TermPrefixedName
	TermLiteral
	TermBlankNode
	TermPath
)

// Term is an RDF term, variable or property path.
type Term struct {
	Kind  TermKind
	Value string
	// Vars holds variables nested in a path or an anonymous node.
	Vars []string
}

// IsVar reports whether the term is a variable.
func (t Term) IsVar() bool { return t.Kind == TermVar }

// Expr is an expression tree node. Op is "var", "iri", "literal", "call",
// "exists", "notexists", "in", "notin" or an operator ("||", "&&", "=", "+", "!", ...).
type Expr struct {
	Op    string
	Value string
	Args  []*Expr
	// Pattern is set for EXISTS and NOT EXISTS.
	Pattern *Group
}

// Vars returns the variables referenced by the expression, in order of first
// appearance.
func (e *Expr) Vars() []string {
	var out []string
	seen := map[string]bool{}
	var walk func(*Expr)
	walk = func(x *Expr) {
		if x == nil {
			return
		}
		if x.Op == "var" && !seen[x.Value] {
			seen[x.Value] = true
			out = append(out, x.Value)
		}
		for _, a := range x.Args {
			walk(a)
		}
	}
	walk(e)
	return out
}
