package queries

// Template names of the founders dataset.
const (
	CompanyProperties           = "companyProperties"
	KnowledgeGraphMetadataQuery = "knowledgeGraphMetadataQuery"
)

const companyProperties = `
    {
        ?id rdf:type bhf:Company .
        ?id foaf:name ?companyName__id .
        BIND(?companyName__id as ?companyName__prefLabel)
        BIND(?id as ?uri__id)
        BIND(?id as ?uri__prefLabel)
    }
    UNION
    {
        ?id bhf:hasFounder ?founder__id .
        ?founder__id foaf:name ?founder__prefLabel .
    }
    UNION
    {
        ?id bhf:businessSector ?businessSector__id .
        BIND(?businessSector__id as ?businessSector__prefLabel)
    }
`

const knowledgeGraphMetadataQuery = `
  SELECT *
  WHERE {
    ?id a sd:Dataset ;
        dct:title ?title ;
        dct:publisher ?publisher ;
        dct:rightsHolder ?rightsHolder ;
        dct:modified ?modified ;
        dct:source ?databaseDump__id .
    ?databaseDump__id skos:prefLabel ?databaseDump__prefLabel ;
                      mmm-schema:data_provider_url ?databaseDump__dataProviderUrl ;
                      dct:modified ?databaseDump__modified .
  }
`

func init() {
	mustRegister(Template{
		Name:        CompanyProperties,
		Module:      ModuleBelhisfirm,
		Kind:        KindPattern,
		Description: "Company name, founders and business sector for company result sets and instance pages.",
		Body:        companyProperties,
	})
	mustRegister(Template{
		Name:        KnowledgeGraphMetadataQuery,
		Module:      ModuleBelhisfirm,
		Kind:        KindQuery,
		Description: "Dataset title, publisher, rights holder, modification date and database dumps.",
		Body:        knowledgeGraphMetadataQuery,
	})
}
