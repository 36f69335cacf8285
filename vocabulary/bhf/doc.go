// Package bhf provides the BelHisFirm ontology vocabulary used by the portal's
// SPARQL templates.
//
// The templates reference terms through prefixed names (bhf:hasName, rdfs:label,
// mmm-schema:data_provider_url, ...). The endpoint only understands them once the
// matching PREFIX declarations are prepended, so every namespace a template may
// use is declared here and rendered with PrefixHeader.
//
// # Namespaces
//
//	bhf         http://belhisfirm.be/ontology#
//	rdf         http://www.w3.org/1999/02/22-rdf-syntax-ns#
//	rdfs        http://www.w3.org/2000/01/rdf-schema#
//	xsd         http://www.w3.org/2001/XMLSchema#
//	skos        http://www.w3.org/2004/02/skos/core#
//	foaf        http://xmlns.com/foaf/0.1/
//	dct         http://purl.org/dc/terms/
//	sd          http://www.w3.org/ns/sparql-service-description#
//	mmm-schema  http://ldf.fi/schema/mmm/
//
// # Usage
//
//	header := bhf.PrefixHeader()
//	query := header + body
//
//	iri, ok := bhf.Expand("bhf:hasStock") // http://belhisfirm.be/ontology#hasStock
//	bhf.IsTerm(iri)                        // true
package bhf
