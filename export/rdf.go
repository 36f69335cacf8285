// Package export serializes the query template catalog as RDF.
//
// Each template revision becomes a resource under CatalogNamespace carrying
// its name, module, revision, placeholders and the namespaces and ontology
// terms it uses, so the catalog can be loaded next to the portal data and
// queried with SPARQL.
package export

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/c360studio/belhisfirm/queries"
	"github.com/c360studio/belhisfirm/sparql"
	"github.com/c360studio/belhisfirm/vocabulary/bhf"
)

// Catalog namespaces.
const (
	CatalogNamespace = "http://belhisfirm.be/templates/"
	SHACL            = "http://www.w3.org/ns/shacl#"
	OWL              = "http://www.w3.org/2002/07/owl#"
)

// Catalog classes and predicates.
const (
	ClassTemplate        = CatalogNamespace + "Template"
	ClassQueryTemplate   = CatalogNamespace + "QueryTemplate"
	ClassPatternTemplate = CatalogNamespace + "PatternTemplate"
	ClassModule          = CatalogNamespace + "Module"

	PredicatePlaceholder = CatalogNamespace + "placeholder"
	PredicateUsesPrefix  = CatalogNamespace + "usesNamespace"
	PredicateUsesTerm    = CatalogNamespace + "usesTerm"
	PredicatePattern     = CatalogNamespace + "pattern"
	PredicateKind        = CatalogNamespace + "kind"

	SHACLSelect        = SHACL + "select"
	SHACLSelectExecute = SHACL + "SPARQLSelectExecutable"
	OWLVersionInfo     = OWL + "versionInfo"
)

// Property is one predicate-object pair of an entity.
type Property struct {
	Predicate string
	Object    any
}

// Entity is one exported subject.
type Entity struct {
	IRI        string
	Types      []string
	Properties []Property
}

// Triple is one statement as written to N-Triples.
type Triple struct {
	Subject   string
	Predicate string
	Object    any
}

// RDFExporter collects entities and serializes them.
type RDFExporter struct {
	entities []Entity
	prefixes map[string]string
}

// NewRDFExporter creates an exporter declaring the portal prefixes plus the
// catalog namespaces.
func NewRDFExporter() *RDFExporter {
	return &RDFExporter{prefixes: defaultPrefixes()}
}

func defaultPrefixes() map[string]string {
	prefixes := bhf.Prefixes()
	prefixes["tpl"] = CatalogNamespace
	prefixes["sh"] = SHACL
	prefixes["owl"] = OWL
	return prefixes
}

// SetPrefix declares an extra namespace prefix.
func (e *RDFExporter) SetPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// AddEntity adds an entity to be exported.
func (e *RDFExporter) AddEntity(entity Entity) {
	e.entities = append(e.entities, entity)
}

// Len returns the number of collected entities.
func (e *RDFExporter) Len() int { return len(e.entities) }

// TemplateIRI is the catalog IRI of one template revision.
func TemplateIRI(t queries.Template) string {
	return fmt.Sprintf("%s%s/%s/%d",
		CatalogNamespace, url.PathEscape(t.Module), url.PathEscape(t.Name), t.Revision)
}

// ModuleIRI is the catalog IRI of a template module.
func ModuleIRI(module string) string {
	return CatalogNamespace + "module/" + url.PathEscape(module)
}

// AddTemplates adds one entity per module and per template revision. An
// older revision points to the next one with dct:isReplacedBy.
func (e *RDFExporter) AddTemplates(templates []queries.Template) error {
	sorted := append([]queries.Template(nil), templates...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Revision < b.Revision
	})

	seenModule := map[string]bool{}
	for i, t := range sorted {
		if !seenModule[t.Module] {
			seenModule[t.Module] = true
			e.AddEntity(Entity{
				IRI:   ModuleIRI(t.Module),
				Types: []string{ClassModule},
				Properties: []Property{
					{bhf.RDFS + "label", t.Module},
				},
			})
		}

		entity, err := templateEntity(t)
		if err != nil {
			return err
		}
		if i+1 < len(sorted) {
			next := sorted[i+1]
			if next.Module == t.Module && next.Name == t.Name {
				entity.Properties = append(entity.Properties,
					Property{bhf.DCT + "isReplacedBy", IRI(TemplateIRI(next))})
			}
		}
		e.AddEntity(entity)
	}
	return nil
}

func templateEntity(t queries.Template) (Entity, error) {
	placeholders, err := sparql.Placeholders(t.Body)
	if err != nil {
		return Entity{}, fmt.Errorf("%s: %w", t.ID(), err)
	}
	used, err := sparql.UsedPrefixes(t.Body)
	if err != nil {
		return Entity{}, fmt.Errorf("%s: %w", t.ID(), err)
	}
	names, err := sparql.PrefixedNames(t.Body)
	if err != nil {
		return Entity{}, fmt.Errorf("%s: %w", t.ID(), err)
	}

	entity := Entity{
		IRI: TemplateIRI(t),
		Properties: []Property{
			{bhf.DCT + "identifier", t.Name},
			{bhf.DCT + "isPartOf", IRI(ModuleIRI(t.Module))},
			{OWLVersionInfo, t.Revision},
			{PredicateKind, string(t.Kind)},
		},
	}
	if t.Description != "" {
		entity.Properties = append(entity.Properties, Property{bhf.DCT + "description", t.Description})
	}

	body := strings.TrimSpace(t.Body)
	if t.Kind == queries.KindPattern {
		entity.Types = []string{ClassTemplate, ClassPatternTemplate}
		entity.Properties = append(entity.Properties, Property{PredicatePattern, body})
	} else {
		entity.Types = []string{ClassTemplate, ClassQueryTemplate, SHACLSelectExecute}
		entity.Properties = append(entity.Properties, Property{SHACLSelect, body})
	}

	for _, p := range placeholders {
		entity.Properties = append(entity.Properties, Property{PredicatePlaceholder, p})
	}
	prefixes := bhf.Prefixes()
	for _, p := range used {
		if ns, ok := prefixes[p]; ok {
			entity.Properties = append(entity.Properties, Property{PredicateUsesPrefix, IRI(ns)})
		}
	}
	for _, name := range names {
		if iri, ok := bhf.Expand(name); ok && bhf.IsTerm(iri) {
			entity.Properties = append(entity.Properties, Property{PredicateUsesTerm, IRI(iri)})
		}
	}
	return entity, nil
}

// Triples flattens the collected entities, type assertions first.
func (e *RDFExporter) Triples() []Triple {
	var out []Triple
	for _, entity := range e.entities {
		for _, t := range entity.Types {
			out = append(out, Triple{entity.IRI, bhf.RDF + "type", IRI(t)})
		}
		for _, p := range entity.Properties {
			out = append(out, Triple{entity.IRI, p.Predicate, p.Object})
		}
	}
	return out
}

// Export serializes all entities to the specified format.
func (e *RDFExporter) Export(format Format) (string, error) {
	switch format {
	case FormatTurtle:
		return e.toTurtle(), nil
	case FormatNTriples:
		return e.toNTriples(), nil
	case FormatJSONLD:
		return marshalJSONLD(e.prefixes, e.entities)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (e *RDFExporter) toTurtle() string {
	w := newTurtleWriter(e.prefixes)
	w.writePrefixes()
	for _, entity := range e.entities {
		w.writeEntity(entity)
	}
	return w.sb.String()
}

func (e *RDFExporter) toNTriples() string {
	var sb strings.Builder
	for _, t := range e.Triples() {
		fmt.Fprintf(&sb, "<%s> <%s> %s .\n", t.Subject, t.Predicate, formatObjectNTriples(t.Object))
	}
	return sb.String()
}
