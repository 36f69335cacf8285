package sparql_test

import (
	"testing"

	"github.com/c360studio/belhisfirm/sparql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keys(m map[string]bool) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestSplitVar(t *testing.T) {
	tests := []struct {
		in     string
		entity string
		attr   string
		ok     bool
	}{
		{"stock__startDate", "stock", "startDate", true},
		{"name__prefLabel", "name", "prefLabel", true},
		{"id", "", "", false},
		{"__id", "", "", false},
		{"name__", "", "", false},
	}
	for _, tt := range tests {
		e, a, ok := sparql.SplitVar(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.entity, e, tt.in)
		assert.Equal(t, tt.attr, a, tt.in)
	}
}

func TestGroup_Bindings(t *testing.T) {
	g, err := sparql.ParsePattern(`
		?a bhf:p ?b .
		OPTIONAL { ?a bhf:q ?c }
		{ ?a bhf:r ?d } UNION { ?a bhf:s ?d . ?a bhf:t ?e }
		MINUS { ?a bhf:u ?m }
		FILTER(?z > 1)
		BIND(1 AS ?f)`)
	require.NoError(t, err)

	certain, optional := g.Bindings()
	assert.ElementsMatch(t, []string{"a", "b", "d", "f"}, keys(certain))
	assert.ElementsMatch(t, []string{"c", "e"}, keys(optional))
}

func TestGroup_BindingsThroughSubSelect(t *testing.T) {
	q, err := sparql.Parse(`SELECT * WHERE {
		{ SELECT ?id ?label WHERE { ?id a bhf:Company . OPTIONAL { ?id skos:prefLabel ?label } } }
	}`)
	require.NoError(t, err)
	certain, optional := q.Where.Bindings()
	assert.ElementsMatch(t, []string{"id"}, keys(certain))
	assert.ElementsMatch(t, []string{"label"}, keys(optional))
	assert.Equal(t, []string{"label"}, q.OptionalVars())
}

func TestCheckPairing(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    []sparql.PairingViolation
	}{
		{
			name: "paired",
			pattern: `?id bhf:hasName ?name__id .
				?name__id skos:prefLabel ?name__prefLabel .`,
		},
		{
			name: "label optional",
			pattern: `?id bhf:hasName ?name__id .
				OPTIONAL { ?name__id skos:prefLabel ?name__prefLabel }`,
		},
		{
			name: "optional joins its parent",
			pattern: `?id bhf:hasAddress ?address__id .
				OPTIONAL { ?address__id bhf:city ?address__city . }
				BIND(COALESCE(?address__city, "") AS ?address__prefLabel)`,
		},
		{
			name:    "id only entity is exempt",
			pattern: `?id bhf:hasStock ?stock__id .`,
		},
		{
			name: "union branch without label",
			pattern: `{
					?id bhf:p ?x__id .
					?x__id skos:prefLabel ?x__prefLabel .
				}
				UNION
				{
					?id bhf:q ?x__id .
				}`,
			want: []sparql.PairingViolation{
				{Entity: "x", Path: "where/0:union[1]", Bound: "x__id", Missing: "x__prefLabel"},
			},
		},
		{
			name: "label without id",
			pattern: `?id bhf:p ?y__prefLabel .
				OPTIONAL { ?id bhf:q ?z } .
				MINUS { ?id bhf:r ?y__id }`,
			want: []sparql.PairingViolation{
				{Entity: "y", Path: "where", Bound: "y__prefLabel", Missing: "y__id"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := sparql.ParsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sparql.CheckPairing(g))
		})
	}
}

func TestPairingViolation_String(t *testing.T) {
	v := sparql.PairingViolation{Entity: "x", Path: "where/1:optional", Bound: "x__id", Missing: "x__prefLabel"}
	assert.Equal(t, "where/1:optional: ?x__id is bound without ?x__prefLabel", v.String())
}

func TestUsedPrefixes(t *testing.T) {
	got, err := sparql.UsedPrefixes(`PREFIX bhf: <http://belhisfirm.be/ontology#>
		SELECT * { ?x bhf:p ?y ; skos:prefLabel ?l . ?x a _:b . ?x <http://x/p> "bhf:not" }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"bhf", "skos"}, got)
}

func TestPrefixedNames(t *testing.T) {
	got, err := sparql.PrefixedNames(`PREFIX bhf: <http://belhisfirm.be/ontology#>
		SELECT * { ?x bhf:hasName/rdfs:label ?l ; bhf:hasName ?n . ?x a _:b . ?x <http://x/p> "bhf:not" }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"bhf:hasName", "rdfs:label"}, got)
}
