// Package queries holds the SPARQL query templates of the BelHisFirm portal and
// the registry they are looked up in.
//
// Templates are static text with placeholder tokens (<ID>, <FILTER>,
// <FACET_CLASS>, <FACET_CLASS_PREDICATE>, <ORDER_BY_TRIPLE>, <ORDER_BY>, <PAGE>,
// <RESULT_SET_PROPERTIES>, <PROPERTIES>) that the portal engine substitutes before
// sending the query to the endpoint. Result variables follow the
// entity__attribute convention: every ?X__id is accompanied by ?X__prefLabel and
// optionally ?X__dataProviderUrl, and the UI renders each such group as one
// property bag.
//
// # Template kinds
//
//   - query: a complete SELECT query.
//   - pattern: the body of a group graph pattern, usually a UNION of branches,
//     plugged into <PROPERTIES> of instancePageQuery or into
//     <RESULT_SET_PROPERTIES> of a facet query.
//
// # Modules
//
//	belhisfirm  company founders dataset
//	scob        SCOB corporations database
//	scobstocks  stocks and notation prices
//	portal      wrappers shared by all modules
//
// Built-in templates are registered in the Default registry by init(). Revisions
// of one template coexist; Get returns the latest and GetRevision any other.
//
// # Usage
//
//	body, err := queries.Get("corporationProperties")
//
//	query, err := queries.Default().Render("stocksGraphOpenClose", sparql.Bindings{
//	    sparql.PlaceholderID: "<http://ldf.fi/stocks/s1>",
//	})
//
// Templates can be exported to and loaded from a directory of .rq files, see
// WriteDir and LoadDir.
package queries
