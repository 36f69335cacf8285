package queries

// Template names of the stocks module.
const (
	StockPropertiesInstancePage = "stockPropertiesInstancePage"
	StocksGraphOpenClose        = "stocksGraphOpenClose"
)

const stockPropertiesInstancePage = `
{
    ?id bhf:hasSharetype ?sharetype__id .
    bind(?sharetype__id as ?sharetype__prefLabel)
    bind(?id as ?uri__id)
    bind(?id as ?uri__prefLabel)
}
UNION
{
    ?id bhf:hasStockExchange ?stockExchange__id .
    bind(?stockExchange__id as ?stockExchange__prefLabel)
}
UNION
{
    ?stockcorp__id bhf:hasStock ?id .
    ?corporation__id bhf:hasStockCorporation ?stockcorp__id .
    optional {?stockcorp__id bhf:startDate ?corporation__startDate .}
    optional {?stockcorp__id bhf:endDate ?corporation__endDate .}
    bind(concat(
      str(?corporation__id),
      ": ",
      COALESCE(str(?corporation__startDate), "????"),
      " - ",
      COALESCE(str(?corporation__endDate), "????")
    ) as ?corporation__prefLabel)
    BIND(CONCAT("/scob/page/", STRAFTER(STR(?corporation__id), "corporation/")) AS ?corporation__dataProviderUrl)
}
UNION
{
    ?id bhf:hasName ?name__id .
    ?name__id rdfs:label ?name .
    optional {?name__id bhf:startDate ?name__startDate .}
    optional {?name__id bhf:endDate ?name__endDate .}
    bind(concat(
      str(?name),
      ": ",
      COALESCE(str(?name__startDate), "????"),
      " - ",
      COALESCE(str(?name__endDate), "????")
    ) as ?name__prefLabel)
}
`

// Revision 1 returns the raw notation price values per day, unordered.
const stocksGraphOpenCloseRev1 = `
SELECT DISTINCT ?day ?open ?close
where {
    bind(<ID> as ?id)
    ?id bhf:hasNotation/bhf:hasNotationPrice ?price__id .
    optional {?price__id bhf:priceDay ?day .}
    optional {?price__id bhf:openValue ?open .}
    optional {?price__id bhf:closeValue ?close .}
}
`

// Revision 2 names the series after the price entity, casts values to
// xsd:float and orders by date for the chart component.
const stocksGraphOpenCloseRev2 = `
SELECT DISTINCT ?date ?price__open ?price__close
WHERE {
    BIND(<ID> AS ?id)
    ?id bhf:hasNotation/bhf:hasNotationPrice ?price__id .
    OPTIONAL { ?price__id bhf:priceDay ?date . }
    OPTIONAL {
        ?price__id bhf:openValue ?openValue .
        BIND(xsd:float(?openValue) AS ?price__open)
    }
    OPTIONAL {
        ?price__id bhf:closeValue ?closeValue .
        BIND(xsd:float(?closeValue) AS ?price__close)
    }
}
ORDER BY ?date
`

func init() {
	mustRegister(Template{
		Name:        StockPropertiesInstancePage,
		Module:      ModuleScobStocks,
		Kind:        KindPattern,
		Description: "Instance page of a stock: share type, stock exchange, issuing corporations and names with validity.",
		Body:        stockPropertiesInstancePage,
	})
	mustRegister(Template{
		Name:        StocksGraphOpenClose,
		Module:      ModuleScobStocks,
		Revision:    1,
		Kind:        KindQuery,
		Description: "Open and close notation prices of one stock per day.",
		Body:        stocksGraphOpenCloseRev1,
	})
	mustRegister(Template{
		Name:        StocksGraphOpenClose,
		Module:      ModuleScobStocks,
		Revision:    2,
		Kind:        KindQuery,
		Description: "Open and close notation prices of one stock as floats, ordered by date.",
		Body:        stocksGraphOpenCloseRev2,
	})
}
