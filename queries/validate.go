package queries

import (
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/belhisfirm/sparql"
	"github.com/c360studio/belhisfirm/vocabulary/bhf"
)

// Sample values bound to term placeholders during validation.
const (
	SampleID                  = "<http://example.org/belhisfirm/sample>"
	SampleFacetClassPredicate = "<" + bhf.RDF + "type>"
)

// SampleBindings binds the term placeholders of body to sample IRIs and leaves
// every fragment placeholder empty.
func SampleBindings(body string) (sparql.Bindings, error) {
	names, err := sparql.Placeholders(body)
	if err != nil {
		return nil, err
	}
	b := sparql.Bindings{}
	for _, name := range names {
		switch name {
		case sparql.PlaceholderID:
			b[name] = SampleID
		case sparql.PlaceholderFacetClassPredicate:
			b[name] = SampleFacetClassPredicate
		}
	}
	return b, nil
}

// Validate checks every template revision in the registry and returns the
// problems joined, or nil.
func (r *Registry) Validate() error {
	var errs []error
	for _, t := range r.All() {
		if err := r.ValidateTemplate(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateTemplate checks one template:
//   - only known placeholders occur and <ID> occurs at most once,
//   - the body parses once term placeholders are bound and fragments emptied,
//   - pattern templates also parse inside the instance page wrapper,
//   - every prefix is declared in the bhf vocabulary,
//   - every bhf: name is a class or predicate of the ontology,
//   - no branch binds X__id without X__prefLabel or the reverse.
//
// The returned error is a *ValidationError.
func (r *Registry) ValidateTemplate(t Template) error {
	var problems []error

	if err := t.check(); err != nil {
		problems = append(problems, err)
	}

	prefixes, err := sparql.UsedPrefixes(t.Body)
	if err != nil {
		problems = append(problems, err)
	}
	for _, p := range prefixes {
		if !bhf.IsDeclared(p) {
			problems = append(problems, fmt.Errorf("undeclared prefix %q", p))
		}
	}
	problems = append(problems, unknownTerms(t.Body)...)

	if group := r.parseBody(t, &problems); group != nil {
		for _, v := range sparql.CheckPairing(group) {
			problems = append(problems, fmt.Errorf("pairing: %s", v))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Name: t.Name, Revision: t.Revision, Problems: problems}
}

// parseBody substitutes sample bindings and parses the body, returning the
// pattern the pairing rule applies to.
func (r *Registry) parseBody(t Template, problems *[]error) *sparql.Group {
	b, err := SampleBindings(t.Body)
	if err != nil {
		*problems = append(*problems, err)
		return nil
	}
	text, err := sparql.Substitute(t.Body, b)
	if err != nil {
		*problems = append(*problems, err)
		return nil
	}

	switch t.Kind {
	case KindQuery:
		q, err := sparql.Parse(bhf.PrefixHeader() + text)
		if err != nil {
			*problems = append(*problems, err)
			return nil
		}
		return q.Where

	case KindPattern:
		g, err := sparql.ParsePattern(text)
		if err != nil {
			*problems = append(*problems, err)
			return nil
		}
		rendered, err := r.RenderTemplate(t, sparql.Bindings{sparql.PlaceholderID: SampleID})
		if err != nil {
			*problems = append(*problems, err)
			return g
		}
		if _, err := sparql.Parse(rendered); err != nil {
			*problems = append(*problems, fmt.Errorf("inside %s: %w", InstancePageQuery, err))
		}
		return g
	}
	return nil
}

// unknownTerms reports bhf: names that are not ontology terms.
func unknownTerms(body string) []error {
	names, err := sparql.PrefixedNames(body)
	if err != nil {
		return nil
	}
	var problems []error
	for _, name := range names {
		if !strings.HasPrefix(name, "bhf:") {
			continue
		}
		if iri, _ := bhf.Expand(name); !bhf.IsTerm(iri) {
			problems = append(problems, fmt.Errorf("unknown ontology term %s", name))
		}
	}
	return problems
}
