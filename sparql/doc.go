// Package sparql provides the tooling the portal templates are checked with:
// a lexer and a recursive-descent parser for the SPARQL 1.1 SELECT subset the
// templates use, placeholder substitution, analysis of the entity__attribute
// binding convention, and decoding of SPARQL JSON results into property bags.
//
// Nothing in this package executes queries. See package endpoint for the HTTP
// client.
package sparql
