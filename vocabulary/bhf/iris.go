package bhf

import "sort"

// Namespace is the base IRI for all BelHisFirm ontology terms.
const Namespace = "http://belhisfirm.be/ontology#"

// Standard namespaces referenced by the templates.
const (
	RDF       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFS      = "http://www.w3.org/2000/01/rdf-schema#"
	XSD       = "http://www.w3.org/2001/XMLSchema#"
	SKOS      = "http://www.w3.org/2004/02/skos/core#"
	FOAF      = "http://xmlns.com/foaf/0.1/"
	DCT       = "http://purl.org/dc/terms/"
	SD        = "http://www.w3.org/ns/sparql-service-description#"
	MMMSchema = "http://ldf.fi/schema/mmm/"
)

// Class IRIs.
const (
	// ClassCompany is a company of the founders dataset.
	ClassCompany = Namespace + "Company"

	// ClassCorporation is a SCOB corporation.
	ClassCorporation = Namespace + "Corporation"

	// ClassStock is a security issued by a corporation.
	ClassStock = Namespace + "Stock"
)

// Corporation predicates.
const (
	ScobID              = Namespace + "scobID"
	HasName             = Namespace + "hasName"
	HasLegalForm        = Namespace + "hasLegalForm"
	HasAddress          = Namespace + "hasAddress"
	DateOfIncorporation = Namespace + "dateOfIncorporation"
	DateOfDissolution   = Namespace + "dateOfDissolution"
	HasStockCorporation = Namespace + "hasStockCorporation"
	HasFounder          = Namespace + "hasFounder"
	BusinessSector      = Namespace + "businessSector"
	StreetAddress       = Namespace + "streetAddress"
	City                = Namespace + "city"
	Country             = Namespace + "country"
	StartDate           = Namespace + "startDate"
	EndDate             = Namespace + "endDate"
	Source              = Namespace + "source"
	Comments            = Namespace + "comments"
)

// Stock predicates.
const (
	HasStock         = Namespace + "hasStock"
	HasSharetype     = Namespace + "hasSharetype"
	HasStockExchange = Namespace + "hasStockExchange"
	HasNotation      = Namespace + "hasNotation"
	HasNotationPrice = Namespace + "hasNotationPrice"
	PriceDay         = Namespace + "priceDay"
	OpenValue        = Namespace + "openValue"
	CloseValue       = Namespace + "closeValue"
)

var terms = map[string]bool{}

func init() {
	for _, iri := range []string{
		ClassCompany, ClassCorporation, ClassStock,

		ScobID, HasName, HasLegalForm, HasAddress, DateOfIncorporation,
		DateOfDissolution, HasStockCorporation, HasFounder, BusinessSector,
		StreetAddress, City, Country, StartDate, EndDate, Source, Comments,

		HasStock, HasSharetype, HasStockExchange, HasNotation, HasNotationPrice,
		PriceDay, OpenValue, CloseValue,
	} {
		terms[iri] = true
	}
}

// IsTerm reports whether iri is a class or predicate of the BelHisFirm
// ontology.
func IsTerm(iri string) bool {
	return terms[iri]
}

// Terms returns the ontology class and predicate IRIs, sorted.
func Terms() []string {
	out := make([]string, 0, len(terms))
	for iri := range terms {
		out = append(out, iri)
	}
	sort.Strings(out)
	return out
}
