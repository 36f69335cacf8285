package sparql_test

import (
	"strings"
	"testing"

	"github.com/c360studio/belhisfirm/sparql"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type tok struct {
	Kind sparql.TokenKind
	Text string
}

func simplify(toks []sparql.Token) []tok {
	out := make([]tok, 0, len(toks))
	for _, t := range toks {
		out = append(out, tok{t.Kind, t.Text})
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tok
	}{
		{
			name:  "basic select",
			input: `SELECT ?x WHERE { ?x bhf:hasName "a"@en . } # trailing`,
			want: []tok{
				{sparql.TokenName, "SELECT"},
				{sparql.TokenVar, "?x"},
				{sparql.TokenName, "WHERE"},
				{sparql.TokenPunct, "{"},
				{sparql.TokenVar, "?x"},
				{sparql.TokenPrefixedName, "bhf:hasName"},
				{sparql.TokenString, `"a"`},
				{sparql.TokenLangTag, "@en"},
				{sparql.TokenPunct, "."},
				{sparql.TokenPunct, "}"},
				{sparql.TokenComment, "# trailing"},
			},
		},
		{
			name:  "placeholders and IRIs",
			input: `BIND(<ID> as ?id) ?id <http://belhisfirm.be/ontology#hasName> ?n <FILTER>`,
			want: []tok{
				{sparql.TokenName, "BIND"},
				{sparql.TokenPunct, "("},
				{sparql.TokenPlaceholder, "<ID>"},
				{sparql.TokenName, "as"},
				{sparql.TokenVar, "?id"},
				{sparql.TokenPunct, ")"},
				{sparql.TokenVar, "?id"},
				{sparql.TokenIRI, "<http://belhisfirm.be/ontology#hasName>"},
				{sparql.TokenVar, "?n"},
				{sparql.TokenPlaceholder, "<FILTER>"},
			},
		},
		{
			name:  "comparison is not an IRI",
			input: `FILTER(?a < ?b && ?c <= 3.5)`,
			want: []tok{
				{sparql.TokenName, "FILTER"},
				{sparql.TokenPunct, "("},
				{sparql.TokenVar, "?a"},
				{sparql.TokenPunct, "<"},
				{sparql.TokenVar, "?b"},
				{sparql.TokenPunct, "&&"},
				{sparql.TokenVar, "?c"},
				{sparql.TokenPunct, "<="},
				{sparql.TokenNumber, "3.5"},
				{sparql.TokenPunct, ")"},
			},
		},
		{
			name:  "prefixed name ending a triple",
			input: "?s a mmm-schema:Thing.\n?s rdf:type _:b1 .",
			want: []tok{
				{sparql.TokenVar, "?s"},
				{sparql.TokenName, "a"},
				{sparql.TokenPrefixedName, "mmm-schema:Thing"},
				{sparql.TokenPunct, "."},
				{sparql.TokenVar, "?s"},
				{sparql.TokenPrefixedName, "rdf:type"},
				{sparql.TokenBlankNode, "_:b1"},
				{sparql.TokenPunct, "."},
			},
		},
		{
			name:  "typed literal and long string",
			input: `"1.5"^^xsd:float """multi` + "\n" + `line"""`,
			want: []tok{
				{sparql.TokenString, `"1.5"`},
				{sparql.TokenPunct, "^^"},
				{sparql.TokenPrefixedName, "xsd:float"},
				{sparql.TokenString, `"""multi` + "\n" + `line"""`},
			},
		},
		{
			name:  "property path operators",
			input: `?id bhf:hasNotation/bhf:hasNotationPrice* ?p`,
			want: []tok{
				{sparql.TokenVar, "?id"},
				{sparql.TokenPrefixedName, "bhf:hasNotation"},
				{sparql.TokenPunct, "/"},
				{sparql.TokenPrefixedName, "bhf:hasNotationPrice"},
				{sparql.TokenPunct, "*"},
				{sparql.TokenVar, "?p"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := sparql.Tokenize(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, simplify(toks)); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	toks, err := sparql.Tokenize("SELECT *\n  WHERE {}")
	require.NoError(t, err)
	require.Len(t, toks, 5)

	where := toks[2]
	assert.Equal(t, "WHERE", where.Text)
	assert.Equal(t, 2, where.Line)
	assert.Equal(t, 3, where.Col)
	assert.Equal(t, strings.Index("SELECT *\n  WHERE {}", "WHERE"), where.Offset)
}

func TestTokenize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated string", `?x bhf:p "abc`},
		{"newline in short string", "?x bhf:p \"a\nb\""},
		{"unterminated long string", `"""abc`},
		{"bare dollar", `$ x`},
		{"empty language tag", `"a"@ `},
		{"unexpected character", `?x ~ ?y`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sparql.Tokenize(tt.input)
			var syn *sparql.SyntaxError
			require.ErrorAs(t, err, &syn)
			assert.Positive(t, syn.Line)
		})
	}
}

func TestToken_Value(t *testing.T) {
	toks, err := sparql.Tokenize(`<http://x/a> ?v <PAGE> @fi bhf:p`)
	require.NoError(t, err)
	got := make([]string, 0, len(toks))
	for _, tk := range toks {
		got = append(got, tk.Value())
	}
	assert.Equal(t, []string{"http://x/a", "v", "PAGE", "fi", "bhf:p"}, got)
}

// Joining tokens with whitespace and tokenizing again yields the same tokens.
func TestTokenize_RoundTrip(t *testing.T) {
	fragments := []string{
		"SELECT", "DISTINCT", "WHERE", "OPTIONAL", "a",
		"?id", "$name", "?name__prefLabel",
		"<http://belhisfirm.be/ontology#Company>", "bhf:hasName", ":local", "mmm-schema:data_provider_url",
		`"Société Générale"`, `'single'`, "@fr", "^^",
		"42", "3.14", "1e10",
		"_:b0",
		"{", "}", "(", ")", ".", ";", ",", "*", "/", "|", "<", "<=", "&&",
		"<ID>", "<FILTER>", "<RESULT_SET_PROPERTIES>",
	}

	rapid.Check(t, func(t *rapid.T) {
		frags := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 40).Draw(t, "fragments")
		text := strings.Join(frags, " ")

		toks, err := sparql.Tokenize(text)
		if err != nil {
			t.Fatalf("tokenize %q: %v", text, err)
		}
		if len(toks) != len(frags) {
			t.Fatalf("got %d tokens for %d fragments in %q", len(toks), len(frags), text)
		}
		for i, tk := range toks {
			if tk.Text != frags[i] {
				t.Fatalf("token %d: got %q, want %q", i, tk.Text, frags[i])
			}
			if text[tk.Offset:tk.Offset+len(tk.Text)] != tk.Text {
				t.Fatalf("token %d offset %d does not point at %q", i, tk.Offset, tk.Text)
			}
		}

		// Fragment placeholders vanish when left unbound; everything else is untouched.
		out, err := sparql.Substitute(text, nil)
		if strings.Contains(text, "<ID>") {
			if err == nil {
				t.Fatalf("expected missing binding error for %q", text)
			}
			return
		}
		if err != nil {
			t.Fatalf("substitute %q: %v", text, err)
		}
		if strings.Contains(out, "<FILTER>") || strings.Contains(out, "<RESULT_SET_PROPERTIES>") {
			t.Fatalf("placeholder left in %q", out)
		}
	})
}
