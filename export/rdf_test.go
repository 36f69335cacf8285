package export_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/c360studio/belhisfirm/export"
	"github.com/c360studio/belhisfirm/queries"
)

func catalog(t *testing.T) *export.RDFExporter {
	t.Helper()
	exporter := export.NewRDFExporter()
	if err := exporter.AddTemplates(queries.Default().All()); err != nil {
		t.Fatalf("AddTemplates failed: %v", err)
	}
	return exporter
}

func TestTemplateIRI(t *testing.T) {
	got := export.TemplateIRI(queries.Template{Module: "scobstocks", Name: "stocksGraphOpenClose", Revision: 2})
	want := "http://belhisfirm.be/templates/scobstocks/stocksGraphOpenClose/2"
	if got != want {
		t.Errorf("TemplateIRI = %q, want %q", got, want)
	}
}

func TestAddTemplates_Entities(t *testing.T) {
	exporter := catalog(t)

	reg := queries.Default()
	modules := map[string]bool{}
	for _, tmpl := range reg.All() {
		modules[tmpl.Module] = true
	}
	if want := reg.Len() + len(modules); exporter.Len() != want {
		t.Errorf("Len = %d, want %d (templates + modules)", exporter.Len(), want)
	}
}

func TestExportTurtle(t *testing.T) {
	output, err := catalog(t).Export(export.FormatTurtle)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, want := range []string{
		"@prefix tpl: <http://belhisfirm.be/templates/> .",
		"@prefix bhf: <http://belhisfirm.be/ontology#> .",
		"<http://belhisfirm.be/templates/scobstocks/stocksGraphOpenClose/1>",
		"dct:isReplacedBy <http://belhisfirm.be/templates/scobstocks/stocksGraphOpenClose/2>",
		"a tpl:PatternTemplate",
		"a sh:SPARQLSelectExecutable",
		`tpl:placeholder "ID"`,
		"tpl:usesNamespace <http://belhisfirm.be/ontology#>",
		"tpl:usesTerm bhf:hasNotationPrice",
		"tpl:usesTerm bhf:hasStockExchange",
		"owl:versionInfo 2",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Turtle output should contain %q", want)
		}
	}
	// Bodies are single-line escaped literals
	if strings.Contains(output, "\n        ?id") {
		t.Error("template bodies should be escaped")
	}
}

func TestExportNTriples(t *testing.T) {
	output, err := catalog(t).Export(export.FormatNTriples)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(output), "\n")
	for _, line := range lines {
		if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, " .") {
			t.Fatalf("malformed N-Triples line: %s", line)
		}
	}

	want := "<http://belhisfirm.be/templates/portal/instancePageQuery/1> " +
		"<http://www.w3.org/1999/02/22-rdf-syntax-ns#type> " +
		"<http://www.w3.org/ns/shacl#SPARQLSelectExecutable> ."
	if !strings.Contains(output, want) {
		t.Errorf("N-Triples output should contain %q", want)
	}
	if !strings.Contains(output, `"2"^^<http://www.w3.org/2001/XMLSchema#integer>`) {
		t.Error("revisions should be typed integers")
	}
}

func TestExportJSONLD(t *testing.T) {
	output, err := catalog(t).Export(export.FormatJSONLD)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	var doc struct {
		Context map[string]string `json:"@context"`
		Graph   []map[string]any  `json:"@graph"`
	}
	if err := json.Unmarshal([]byte(output), &doc); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	if doc.Context["tpl"] != export.CatalogNamespace {
		t.Errorf("@context tpl = %q", doc.Context["tpl"])
	}

	var found map[string]any
	for _, node := range doc.Graph {
		if node["@id"] == "http://belhisfirm.be/templates/scob/facetResultSetQueryBelhisfirm/1" {
			found = node
		}
	}
	if found == nil {
		t.Fatal("facetResultSetQueryBelhisfirm not in @graph")
	}
	// Several placeholders collapse into one array
	placeholders, ok := found[export.PredicatePlaceholder].([]any)
	if !ok || len(placeholders) < 2 {
		t.Errorf("placeholders = %v, want an array", found[export.PredicatePlaceholder])
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	if _, err := export.NewRDFExporter().Export("rdfxml"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"turtle", export.FormatTurtle, false},
		{"TTL", export.FormatTurtle, false},
		{".nt", export.FormatNTriples, false},
		{"jsonld", export.FormatJSONLD, false},
		{"rdfxml", "", true},
	}
	for _, tc := range tests {
		got, err := export.ParseFormat(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGetFormatInfo(t *testing.T) {
	info, ok := export.GetFormatInfo(export.FormatTurtle)
	if !ok {
		t.Fatal("turtle not registered")
	}
	if info.MIMEType != "text/turtle" || info.Extension != ".ttl" {
		t.Errorf("unexpected info: %+v", info)
	}
	if got := strings.Join(export.FormatNames(), ","); got != "jsonld,ntriples,turtle" {
		t.Errorf("FormatNames = %s", got)
	}
}
