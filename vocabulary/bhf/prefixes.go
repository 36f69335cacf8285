package bhf

import (
	"sort"
	"strings"
)

var prefixes = map[string]string{
	"bhf":        Namespace,
	"rdf":        RDF,
	"rdfs":       RDFS,
	"xsd":        XSD,
	"skos":       SKOS,
	"foaf":       FOAF,
	"dct":        DCT,
	"sd":         SD,
	"mmm-schema": MMMSchema,
}

// Prefixes returns a copy of the prefix to namespace mapping.
func Prefixes() map[string]string {
	out := make(map[string]string, len(prefixes))
	for k, v := range prefixes {
		out[k] = v
	}
	return out
}

// IsDeclared reports whether prefix is one of the known namespaces.
func IsDeclared(prefix string) bool {
	_, ok := prefixes[prefix]
	return ok
}

// PrefixHeader renders PREFIX declarations for every known namespace, sorted by
// prefix so the output is stable.
func PrefixHeader() string {
	keys := make([]string, 0, len(prefixes))
	for k := range prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString("PREFIX ")
		sb.WriteString(k)
		sb.WriteString(": <")
		sb.WriteString(prefixes[k])
		sb.WriteString(">\n")
	}
	return sb.String()
}

// Expand turns a prefixed name into a full IRI.
// Returns false when the prefix is unknown.
func Expand(prefixed string) (string, bool) {
	prefix, local, ok := strings.Cut(prefixed, ":")
	if !ok {
		return "", false
	}
	ns, ok := prefixes[prefix]
	if !ok {
		return "", false
	}
	return ns + local, true
}
