package sparql

import (
	"fmt"
	"sort"
	"strings"
)

// Attribute suffixes of the entity__attribute convention.
const (
	AttrID              = "id"
	AttrPrefLabel       = "prefLabel"
	AttrDataProviderURL = "dataProviderUrl"
)

// SplitVar splits a variable named entity__attribute.
func SplitVar(name string) (entity, attribute string, ok bool) {
	entity, attribute, ok = strings.Cut(name, "__")
	if !ok || entity == "" || attribute == "" {
		return "", "", false
	}
	return entity, attribute, true
}

// Bindings reports which variables a solution of g binds: certain holds
// variables bound in every solution, optional those that may be left unbound.
// BIND targets count as certain even if their expression may be unbound.
func (g *Group) Bindings() (certain, optional map[string]bool) {
	certain = map[string]bool{}
	optional = map[string]bool{}
	if g == nil {
		return certain, optional
	}

	for _, el := range g.Elements {
		switch e := el.(type) {
		case *Triples:
			for _, tp := range e.Patterns {
				for _, v := range termVars(tp.Subject, tp.Predicate, tp.Object) {
					certain[v] = true
				}
			}
		case *Group:
			c, o := e.Bindings()
			merge(certain, c)
			merge(optional, o)
		case *Optional:
			c, o := e.Group.Bindings()
			merge(optional, c)
			merge(optional, o)
		case *Union:
			var inAll map[string]bool
			for _, br := range e.Branches {
				c, o := br.Bindings()
				merge(optional, o)
				merge(optional, c)
				if inAll == nil {
					inAll = c
					continue
				}
				for v := range inAll {
					if !c[v] {
						delete(inAll, v)
					}
				}
			}
			merge(certain, inAll)
		case *GraphPattern:
			if e.Name.IsVar() {
				certain[e.Name.Value] = true
			}
			c, o := e.Group.Bindings()
			merge(certain, c)
			merge(optional, o)
		case *Bind:
			certain[e.Var] = true
		case *Values:
			for _, v := range e.Vars {
				certain[v] = true
			}
		case *SubQuery:
			c, o := e.Query.projection()
			merge(certain, c)
			merge(optional, o)
		}
	}

	for v := range certain {
		delete(optional, v)
	}
	return certain, optional
}

func merge(dst, src map[string]bool) {
	for k := range src {
		dst[k] = true
	}
}

func termVars(terms ...Term) []string {
	var out []string
	for _, t := range terms {
		if t.Kind == TermVar {
			out = append(out, t.Value)
		}
		out = append(out, t.Vars...)
	}
	return out
}

// projection classifies the variables a query projects.
func (q *Query) projection() (certain, optional map[string]bool) {
	c, o := q.Where.Bindings()
	if q.Values != nil {
		for _, v := range q.Values.Vars {
			c[v] = true
			delete(o, v)
		}
	}
	if q.Select == nil || q.Select.Star {
		return c, o
	}
	certain = map[string]bool{}
	optional = map[string]bool{}
	for _, p := range q.Select.Projections {
		switch {
		case p.Expr != nil:
			certain[p.Var] = true
		case c[p.Var]:
			certain[p.Var] = true
		default:
			optional[p.Var] = true
		}
	}
	return certain, optional
}

// Projected returns the variables the query returns. For SELECT * this is
// every variable bound by the WHERE clause, sorted.
func (q *Query) Projected() []string {
	if q.Select != nil && !q.Select.Star {
		out := make([]string, 0, len(q.Select.Projections))
		for _, p := range q.Select.Projections {
			out = append(out, p.Var)
		}
		return out
	}
	c, o := q.projection()
	out := make([]string, 0, len(c)+len(o))
	for v := range c {
		out = append(out, v)
	}
	for v := range o {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// OptionalVars returns the projected variables that may be unbound.
func (q *Query) OptionalVars() []string {
	_, o := q.projection()
	out := make([]string, 0, len(o))
	for _, v := range q.Projected() {
		if o[v] {
			out = append(out, v)
		}
	}
	return out
}

// MentionedVars returns every variable that appears anywhere in g, sorted.
func (g *Group) MentionedVars() []string {
	seen := map[string]bool{}
	g.walk(func(el Element) {
		switch e := el.(type) {
		case *Triples:
			for _, tp := range e.Patterns {
				for _, v := range termVars(tp.Subject, tp.Predicate, tp.Object) {
					seen[v] = true
				}
			}
		case *Bind:
			seen[e.Var] = true
			for _, v := range e.Expr.Vars() {
				seen[v] = true
			}
		case *Filter:
			for _, v := range e.Expr.Vars() {
				seen[v] = true
			}
		case *Values:
			for _, v := range e.Vars {
				seen[v] = true
			}
		case *GraphPattern:
			if e.Name.IsVar() {
				seen[e.Name.Value] = true
			}
		case *SubQuery:
			if e.Query.Select != nil {
				for _, p := range e.Query.Select.Projections {
					seen[p.Var] = true
				}
			}
		}
	})
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// walk visits every element of g and of all nested groups, depth first.
func (g *Group) walk(fn func(Element)) {
	if g == nil {
		return
	}
	for _, el := range g.Elements {
		fn(el)
		switch e := el.(type) {
		case *Group:
			e.walk(fn)
		case *Optional:
			e.Group.walk(fn)
		case *Minus:
			e.Group.walk(fn)
		case *Union:
			for _, br := range e.Branches {
				br.walk(fn)
			}
		case *GraphPattern:
			e.Group.walk(fn)
		case *SubQuery:
			e.Query.Where.walk(fn)
		}
	}
}

// PairingViolation reports a group where one of X__id / X__prefLabel is bound
// and the other is not bound at all.
type PairingViolation struct {
	Entity  string
	Path    string
	Bound   string
	Missing string
}

func (v PairingViolation) String() string {
	return fmt.Sprintf("%s: ?%s is bound without ?%s", v.Path, v.Bound, v.Missing)
}

// CheckPairing verifies the id/prefLabel pairing rule for g and for every UNION
// branch and sub-select nested in it. OPTIONAL and plain nested groups join
// with their parent and are judged as part of it. Only entities whose __id and
// __prefLabel both appear somewhere in g are checked; a side bound inside
// OPTIONAL satisfies the rule.
func CheckPairing(g *Group) []PairingViolation {
	var entities []string
	mentioned := map[string]bool{}
	for _, v := range g.MentionedVars() {
		mentioned[v] = true
	}
	for v := range mentioned {
		if entity, attr, ok := SplitVar(v); ok && attr == AttrID && mentioned[entity+"__"+AttrPrefLabel] {
			entities = append(entities, entity)
		}
	}
	sort.Strings(entities)
	if len(entities) == 0 {
		return nil
	}

	var out []PairingViolation
	var check, descend func(grp *Group, path string)
	check = func(grp *Group, path string) {
		certain, optional := grp.Bindings()
		for _, ent := range entities {
			id, label := ent+"__"+AttrID, ent+"__"+AttrPrefLabel
			switch {
			case certain[id] && !certain[label] && !optional[label]:
				out = append(out, PairingViolation{Entity: ent, Path: path, Bound: id, Missing: label})
			case certain[label] && !certain[id] && !optional[id]:
				out = append(out, PairingViolation{Entity: ent, Path: path, Bound: label, Missing: id})
			}
		}
		descend(grp, path)
	}
	descend = func(grp *Group, path string) {
		for i, el := range grp.Elements {
			switch e := el.(type) {
			case *Group:
				descend(e, fmt.Sprintf("%s/%d", path, i))
			case *Optional:
				descend(e.Group, fmt.Sprintf("%s/%d:optional", path, i))
			case *Union:
				for j, br := range e.Branches {
					check(br, fmt.Sprintf("%s/%d:union[%d]", path, i, j))
				}
			case *GraphPattern:
				descend(e.Group, fmt.Sprintf("%s/%d:graph", path, i))
			case *SubQuery:
				check(e.Query.Where, fmt.Sprintf("%s/%d:select", path, i))
			}
		}
	}
	check(g, "where")
	return out
}

// PrefixedNames returns the distinct prefixed names used in text, such as
// bhf:hasName, sorted. The namespace of a PREFIX declaration is skipped.
func PrefixedNames(text string) ([]string, error) {
	toks, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for i, t := range toks {
		if t.Kind != TokenPrefixedName {
			continue
		}
		if i > 0 && isKeyword(toks[i-1], "PREFIX") {
			continue
		}
		seen[t.Text] = true
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

// UsedPrefixes returns the namespace prefixes referenced by prefixed names in
// text, sorted. Blank node labels are not prefixes.
func UsedPrefixes(text string) ([]string, error) {
	names, err := PrefixedNames(text)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, name := range names {
		prefix, _, _ := strings.Cut(name, ":")
		if !seen[prefix] {
			seen[prefix] = true
			out = append(out, prefix)
		}
	}
	sort.Strings(out)
	return out, nil
}
