package sparql

import (
	"fmt"
	"sort"
	"strings"
)

// PlaceholderKind tells how a placeholder may be substituted.
type PlaceholderKind int

const (
	// PlaceholderFragment stands for zero or more lines of SPARQL. An empty
	// substitution leaves the query valid.
	PlaceholderFragment PlaceholderKind = iota

	// PlaceholderTerm stands for a single RDF term and must be bound.
	PlaceholderTerm
)

// Placeholder names understood by the portal engine.
const (
	PlaceholderID                  = "ID"
	PlaceholderFilter              = "FILTER"
	PlaceholderFacetClass          = "FACET_CLASS"
	PlaceholderFacetClassPredicate = "FACET_CLASS_PREDICATE"
	PlaceholderOrderByTriple       = "ORDER_BY_TRIPLE"
	PlaceholderOrderBy             = "ORDER_BY"
	PlaceholderPage                = "PAGE"
	PlaceholderResultSetProperties = "RESULT_SET_PROPERTIES"
	PlaceholderProperties          = "PROPERTIES"
)

var placeholderKinds = map[string]PlaceholderKind{
	PlaceholderID:                  PlaceholderTerm,
	PlaceholderFacetClassPredicate: PlaceholderTerm,
	PlaceholderFilter:              PlaceholderFragment,
	PlaceholderFacetClass:          PlaceholderFragment,
	PlaceholderOrderByTriple:       PlaceholderFragment,
	PlaceholderOrderBy:             PlaceholderFragment,
	PlaceholderPage:                PlaceholderFragment,
	PlaceholderResultSetProperties: PlaceholderFragment,
	PlaceholderProperties:          PlaceholderFragment,
}

// singleUse lists placeholders that may occur at most once per query.
var singleUse = map[string]bool{PlaceholderID: true}

// KindOf returns the kind of a known placeholder.
func KindOf(name string) (PlaceholderKind, bool) {
	k, ok := placeholderKinds[name]
	return k, ok
}

// KnownPlaceholders returns all placeholder names, sorted.
func KnownPlaceholders() []string {
	names := make([]string, 0, len(placeholderKinds))
	for n := range placeholderKinds {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Bindings maps placeholder names (without angle brackets) to replacement text.
type Bindings map[string]string

// Placeholders returns the distinct placeholder names in text in order of first
// appearance. Placeholders inside strings and comments are not reported.
func Placeholders(text string) ([]string, error) {
	toks, err := Tokenize(text)
	if err != nil {
		return nil, err
	}
	var names []string
	seen := map[string]bool{}
	for _, t := range toks {
		if t.Kind == TokenPlaceholder && !seen[t.Value()] {
			seen[t.Value()] = true
			names = append(names, t.Value())
		}
	}
	return names, nil
}

// Substitute replaces every placeholder in text with its binding. Fragment
// placeholders without a binding become empty; term placeholders must be bound.
// Values are inserted verbatim: callers own escaping of user input.
func Substitute(text string, b Bindings) (string, error) {
	for name := range b {
		if _, ok := placeholderKinds[name]; !ok {
			return "", fmt.Errorf("%w: <%s>", ErrUnknownPlaceholder, name)
		}
	}

	toks, err := Tokenize(text)
	if err != nil {
		return "", err
	}

	counts := map[string]int{}
	for _, t := range toks {
		if t.Kind != TokenPlaceholder {
			continue
		}
		name := t.Value()
		kind, ok := placeholderKinds[name]
		if !ok {
			return "", fmt.Errorf("%w: %s at %d:%d", ErrUnknownPlaceholder, t.Text, t.Line, t.Col)
		}
		counts[name]++
		if singleUse[name] && counts[name] > 1 {
			return "", fmt.Errorf("%w: %s", ErrDuplicatePlaceholder, t.Text)
		}
		if kind == PlaceholderTerm && strings.TrimSpace(b[name]) == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingBinding, t.Text)
		}
	}

	var sb strings.Builder
	last := 0
	for _, t := range toks {
		if t.Kind != TokenPlaceholder {
			continue
		}
		sb.WriteString(text[last:t.Offset])
		sb.WriteString(b[t.Value()])
		last = t.Offset + len(t.Text)
	}
	sb.WriteString(text[last:])
	return sb.String(), nil
}

// IRI validates s and returns it as an IRIREF term ready for a term
// placeholder. Surrounding angle brackets are accepted.
func IRI(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = s[1 : len(s)-1]
	}
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidIRI)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || strings.IndexByte("<>\"{}|^`\\", c) >= 0 {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidIRI, s, c)
		}
	}
	return "<" + s + ">", nil
}

// QuoteLiteral renders s as a double-quoted SPARQL string literal.
func QuoteLiteral(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return `"` + r.Replace(s) + `"`
}
