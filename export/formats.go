package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat accepts a format name or a file extension such as "ttl".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	for name, info := range FormatRegistry {
		if s == string(name) || "."+s == info.Extension {
			return name, nil
		}
	}
	return "", fmt.Errorf("unsupported format: %q", s)
}

// FormatNames returns the supported format names, sorted.
func FormatNames() []string {
	names := make([]string, 0, len(FormatRegistry))
	for name := range FormatRegistry {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// IRI is an object that serializes as an IRI rather than a literal.
type IRI string

// turtleWriter writes grouped subjects with prefixed names where a declared
// namespace matches.
type turtleWriter struct {
	prefixes map[string]string
	sb       strings.Builder
}

func newTurtleWriter(prefixes map[string]string) *turtleWriter {
	return &turtleWriter{prefixes: prefixes}
}

func (w *turtleWriter) writePrefixes() {
	keys := make([]string, 0, len(w.prefixes))
	for k := range w.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, prefix := range keys {
		fmt.Fprintf(&w.sb, "@prefix %s: <%s> .\n", prefix, w.prefixes[prefix])
	}
	w.sb.WriteString("\n")
}

func (w *turtleWriter) writeEntity(e Entity) {
	w.sb.WriteString(w.iri(e.IRI))
	w.sb.WriteString("\n")

	n := len(e.Types) + len(e.Properties)
	i := 0
	end := func() string {
		i++
		if i == n {
			return " .\n"
		}
		return " ;\n"
	}
	for _, t := range e.Types {
		fmt.Fprintf(&w.sb, "    a %s%s", w.iri(t), end())
	}
	for _, p := range e.Properties {
		fmt.Fprintf(&w.sb, "    %s %s%s", w.iri(p.Predicate), w.object(p.Object), end())
	}
	w.sb.WriteString("\n")
}

// iri compacts full to prefix:local when the local part is a plain name.
func (w *turtleWriter) iri(full string) string {
	best := ""
	for prefix, ns := range w.prefixes {
		if !strings.HasPrefix(full, ns) {
			continue
		}
		local := full[len(ns):]
		if !isLocalName(local) {
			continue
		}
		// Longest namespace wins
		if best == "" || len(ns) > len(w.prefixes[best]) {
			best = prefix
		}
	}
	if best == "" {
		return "<" + full + ">"
	}
	return best + ":" + full[len(w.prefixes[best]):]
}

func (w *turtleWriter) object(obj any) string {
	switch v := obj.(type) {
	case IRI:
		return w.iri(string(v))
	case string:
		return `"` + escapeString(v) + `"`
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("\"%v\"", v)
	}
}

func isLocalName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// formatObjectNTriples formats an object value for N-Triples output.
func formatObjectNTriples(obj any) string {
	switch v := obj.(type) {
	case IRI:
		return "<" + string(v) + ">"
	case string:
		return `"` + escapeString(v) + `"`
	case int, int32, int64:
		return fmt.Sprintf("\"%d\"^^<http://www.w3.org/2001/XMLSchema#integer>", v)
	case bool:
		return fmt.Sprintf("\"%t\"^^<http://www.w3.org/2001/XMLSchema#boolean>", v)
	default:
		return fmt.Sprintf("\"%v\"", v)
	}
}

// jsonldNode is one node of the @graph. Predicates are full IRIs.
type jsonldNode map[string]any

func newJSONLDNode(e Entity) jsonldNode {
	node := jsonldNode{"@id": e.IRI}
	if len(e.Types) > 0 {
		node["@type"] = e.Types
	}
	for _, p := range e.Properties {
		value := formatObjectJSONLD(p.Object)
		switch existing := node[p.Predicate].(type) {
		case nil:
			node[p.Predicate] = value
		case []any:
			node[p.Predicate] = append(existing, value)
		default:
			node[p.Predicate] = []any{existing, value}
		}
	}
	return node
}

// formatObjectJSONLD formats an object value for JSON-LD output.
func formatObjectJSONLD(obj any) any {
	switch v := obj.(type) {
	case IRI:
		return map[string]string{"@id": string(v)}
	case string, int, int32, int64, bool:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func marshalJSONLD(prefixes map[string]string, entities []Entity) (string, error) {
	graph := make([]jsonldNode, len(entities))
	for i, e := range entities {
		graph[i] = newJSONLDNode(e)
	}
	doc := map[string]any{
		"@context": prefixes,
		"@graph":   graph,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal JSON-LD: %w", err)
	}
	return string(data) + "\n", nil
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
