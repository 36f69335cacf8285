package sparql_test

import (
	"testing"

	"github.com/c360studio/belhisfirm/sparql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const facetTemplate = `SELECT * WHERE {
  BIND(<ID> AS ?id)
  <FILTER>
  ?id <FACET_CLASS_PREDICATE> ?class .
  <ORDER_BY_TRIPLE>
  ?id skos:prefLabel "<ID> in a string" .
}
<ORDER_BY>
<PAGE>`

func TestPlaceholders(t *testing.T) {
	names, err := sparql.Placeholders(facetTemplate)
	require.NoError(t, err)
	assert.Equal(t, []string{"ID", "FILTER", "FACET_CLASS_PREDICATE", "ORDER_BY_TRIPLE", "ORDER_BY", "PAGE"}, names)
}

func TestKindOf(t *testing.T) {
	k, ok := sparql.KindOf(sparql.PlaceholderID)
	require.True(t, ok)
	assert.Equal(t, sparql.PlaceholderTerm, k)

	k, ok = sparql.KindOf(sparql.PlaceholderPage)
	require.True(t, ok)
	assert.Equal(t, sparql.PlaceholderFragment, k)

	_, ok = sparql.KindOf("LIMIT")
	assert.False(t, ok)

	assert.Contains(t, sparql.KnownPlaceholders(), sparql.PlaceholderResultSetProperties)
}

func TestSubstitute(t *testing.T) {
	out, err := sparql.Substitute(facetTemplate, sparql.Bindings{
		sparql.PlaceholderID:                  "<http://example.org/company/1>",
		sparql.PlaceholderFacetClassPredicate: "rdf:type",
		sparql.PlaceholderPage:                "LIMIT 10",
	})
	require.NoError(t, err)

	want := "SELECT * WHERE {\n" +
		"  BIND(<http://example.org/company/1> AS ?id)\n" +
		"  \n" +
		"  ?id rdf:type ?class .\n" +
		"  \n" +
		"  ?id skos:prefLabel \"<ID> in a string\" .\n" +
		"}\n" +
		"\n" +
		"LIMIT 10"
	assert.Equal(t, want, out)

	q, err := sparql.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, 10, q.Limit)
}

func TestSubstitute_Errors(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		bindings sparql.Bindings
		wantErr  error
	}{
		{
			name:    "missing term binding",
			text:    "SELECT * { BIND(<ID> AS ?id) }",
			wantErr: sparql.ErrMissingBinding,
		},
		{
			name:     "blank term binding",
			text:     "SELECT * { ?id <FACET_CLASS_PREDICATE> ?c }",
			bindings: sparql.Bindings{sparql.PlaceholderFacetClassPredicate: "  "},
			wantErr:  sparql.ErrMissingBinding,
		},
		{
			name:     "unknown binding key",
			text:     "SELECT * { ?s ?p ?o }",
			bindings: sparql.Bindings{"LIMIT": "10"},
			wantErr:  sparql.ErrUnknownPlaceholder,
		},
		{
			name:    "unknown placeholder in text",
			text:    "SELECT * { ?s ?p ?o <SORT> }",
			wantErr: sparql.ErrUnknownPlaceholder,
		},
		{
			name:     "repeated id",
			text:     "SELECT * { BIND(<ID> AS ?id) ?id ?p <ID> }",
			bindings: sparql.Bindings{sparql.PlaceholderID: "<http://example.org/x>"},
			wantErr:  sparql.ErrDuplicatePlaceholder,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sparql.Substitute(tt.text, tt.bindings)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIRI(t *testing.T) {
	got, err := sparql.IRI("http://ldf.fi/corporations/c1")
	require.NoError(t, err)
	assert.Equal(t, "<http://ldf.fi/corporations/c1>", got)

	got, err = sparql.IRI(" <http://ldf.fi/corporations/c1> ")
	require.NoError(t, err)
	assert.Equal(t, "<http://ldf.fi/corporations/c1>", got)

	for _, bad := range []string{"", "<>", "http://x/a b", "http://x/>", `http://x/"`} {
		_, err := sparql.IRI(bad)
		assert.ErrorIs(t, err, sparql.ErrInvalidIRI, bad)
	}
}

func TestQuoteLiteral(t *testing.T) {
	assert.Equal(t, `"plain"`, sparql.QuoteLiteral("plain"))
	assert.Equal(t, `"say \"hi\"\\n"`, sparql.QuoteLiteral(`say "hi"\n`))
	assert.Equal(t, `"a\nb"`, sparql.QuoteLiteral("a\nb"))
}
