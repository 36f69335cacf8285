package queries_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/c360studio/belhisfirm/queries"
	"github.com/c360studio/belhisfirm/sparql"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTexts(t *testing.T, text string) []string {
	t.Helper()
	toks, err := sparql.Tokenize(text)
	require.NoError(t, err)
	out := make([]string, 0, len(toks))
	for _, tk := range toks {
		out = append(out, tk.Text)
	}
	return out
}

func TestMarshalUnmarshal_RoundTrip(t *testing.T) {
	for _, tmpl := range queries.Default().All() {
		t.Run(tmpl.ID(), func(t *testing.T) {
			got, err := queries.Unmarshal(queries.Marshal(tmpl))
			require.NoError(t, err)
			if diff := cmp.Diff(tmpl, got); diff != "" {
				t.Errorf("template mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tokenTexts(t, tmpl.Body), tokenTexts(t, got.Body))
		})
	}
}

func TestMarshal_Header(t *testing.T) {
	out := queries.Marshal(queries.Template{
		Name:        "demo",
		Module:      "scob",
		Revision:    2,
		Kind:        queries.KindPattern,
		Description: "Demo: with colon",
		Body:        "?id bhf:p ?x .\n",
	})
	assert.Equal(t, "# name: demo\n# module: scob\n# revision: 2\n# kind: pattern\n# description: Demo: with colon\n?id bhf:p ?x .\n", string(out))
}

func TestMarshal_MultiLineDescription(t *testing.T) {
	tmpl := queries.Template{
		Name:        "companyFounders",
		Module:      queries.ModuleBelhisfirm,
		Revision:    1,
		Kind:        queries.KindPattern,
		Description: "Company name\n\nand founders",
		Body:        "?id bhf:hasFounder ?founder__id .\n",
	}

	out := queries.Marshal(tmpl)
	assert.Contains(t, string(out), "# description: Company name\n# description:\n# description: and founders\n?id")

	got, err := queries.Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, tmpl.Description, got.Description)
	assert.Equal(t, tmpl.Body, got.Body)
	assert.Equal(t, tokenTexts(t, tmpl.Body), tokenTexts(t, got.Body))
}

func TestTemplate_RejectsLineBreaksInHeaders(t *testing.T) {
	r := queries.NewRegistry()
	tests := []queries.Template{
		{Name: "a\nb", Revision: 1, Kind: queries.KindQuery, Body: "SELECT * WHERE { ?s ?p ?o }"},
		{Name: "a", Module: "scob\r", Revision: 1, Kind: queries.KindQuery, Body: "SELECT * WHERE { ?s ?p ?o }"},
		{Name: "a", Revision: 1, Kind: queries.KindQuery, Description: "one\r\ntwo", Body: "SELECT * WHERE { ?s ?p ?o }"},
	}
	for _, tmpl := range tests {
		assert.ErrorIs(t, r.Register(tmpl), queries.ErrInvalid, "%q", tmpl.Name)
	}
}

func TestUnmarshal_Defaults(t *testing.T) {
	tmpl, err := queries.Unmarshal([]byte("# name: q\n# generated by hand\nSELECT * WHERE { ?s ?p ?o }\n"))
	require.NoError(t, err)
	assert.Equal(t, "q", tmpl.Name)
	assert.Equal(t, 1, tmpl.Revision)
	assert.Equal(t, queries.KindQuery, tmpl.Kind)
	assert.Equal(t, "# generated by hand\nSELECT * WHERE { ?s ?p ?o }\n", tmpl.Body)

	tmpl, err = queries.Unmarshal([]byte("# name: p\n\n{ ?id bhf:p ?x } UNION { ?id bhf:q ?x }"))
	require.NoError(t, err)
	assert.Equal(t, queries.KindPattern, tmpl.Kind)
	assert.Equal(t, "\n{ ?id bhf:p ?x } UNION { ?id bhf:q ?x }", tmpl.Body)
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing name", "# module: scob\nSELECT * {}"},
		{"bad revision", "# name: x\n# revision: two\nSELECT * {}"},
		{"bad kind", "# name: x\n# kind: fragment\nSELECT * {}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := queries.Unmarshal([]byte(tt.data))
			assert.ErrorIs(t, err, queries.ErrInvalid)
		})
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, filepath.Join("scobstocks", "stocksGraphOpenClose.rq"),
		queries.FileName(queries.Template{Name: "stocksGraphOpenClose", Module: "scobstocks", Revision: 1}))
	assert.Equal(t, filepath.Join("scobstocks", "stocksGraphOpenClose.v2.rq"),
		queries.FileName(queries.Template{Name: "stocksGraphOpenClose", Module: "scobstocks", Revision: 2}))
	assert.Equal(t, filepath.Join("custom", "x.rq"),
		queries.FileName(queries.Template{Name: "x", Revision: 1}))
}

func TestWriteDirLoadDir(t *testing.T) {
	dir := t.TempDir()
	all := queries.Default().All()

	paths, err := queries.WriteDir(dir, all)
	require.NoError(t, err)
	require.Len(t, paths, len(all))
	for _, p := range paths {
		_, err := os.Stat(p)
		require.NoError(t, err)
	}

	loaded, err := queries.LoadDir(os.DirFS(dir), "")
	require.NoError(t, err)

	r := queries.NewRegistry()
	require.NoError(t, r.Load(loaded))
	if diff := cmp.Diff(all, r.All()); diff != "" {
		t.Errorf("registry mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, r.Validate())
}

func TestLoadDir_OverridesBuiltins(t *testing.T) {
	fsys := fstest.MapFS{
		"scob/corporationProperties.rq": {Data: []byte(
			"# name: corporationProperties\n# module: scob\n# kind: pattern\n" +
				"?id bhf:scobID ?scobID__prefLabel .\nBIND(?id AS ?scobID__id)\n")},
		"notes.txt": {Data: []byte("ignored")},
	}

	loaded, err := queries.LoadDir(fsys, queries.DefaultPattern)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	r := queries.Default().Clone()
	require.NoError(t, r.Load(loaded))

	got, err := r.Get(queries.CorporationProperties)
	require.NoError(t, err)
	assert.Contains(t, got.Body, "BIND(?id AS ?scobID__id)")
	assert.NotContains(t, queries.MustGet(queries.CorporationProperties), "BIND(?id AS ?scobID__id)")
	require.NoError(t, r.ValidateTemplate(got))
}

func TestLoadDir_BadFile(t *testing.T) {
	fsys := fstest.MapFS{
		"a/bad.rq": {Data: []byte("# revision: 1\n?s ?p ?o .")},
	}
	_, err := queries.LoadDir(fsys, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrInvalid)
	assert.Contains(t, err.Error(), "a/bad.rq")
}
