// Package seeder fills the relational database behind the Ontop mappings with
// synthetic Belgian companies, persons and the roles linking them, for load
// testing the SPARQL endpoint.
//
// Rows with id <= SampleMaxID belong to the hand-written sample data and are
// never touched. Generated ids start at StartID.
package seeder

import "time"

const (
	// SampleMaxID is the highest id used by the sample data.
	SampleMaxID = 100

	// StartID is the first id given to generated rows.
	StartID = 1001
)

// Company is a row of the companies table.
type Company struct {
	ID                int64 `gorm:"primaryKey;autoIncrement:false"`
	CompanyName       string
	LegalForm         string
	StreetAddress     string
	City              string
	PostalCode        string
	Country           string
	DateOfFounding    time.Time
	DateOfDissolution *time.Time
	BusinessSector    string
	CompanyType       string
	RegisteredCapital float64
}

func (Company) TableName() string { return "companies" }

// Person is a row of the persons table.
type Person struct {
	ID           int64 `gorm:"primaryKey;autoIncrement:false"`
	FirstName    string
	LastName     string
	FullName     string
	DateOfBirth  time.Time
	PlaceOfBirth string
	DateOfDeath  *time.Time
	Nationality  string
}

func (Person) TableName() string { return "persons" }

// CompanyPerson is a role a person holds in a company.
type CompanyPerson struct {
	ID              int64 `gorm:"primaryKey;autoIncrement:false"`
	CompanyID       int64 `gorm:"index"`
	PersonID        int64 `gorm:"index"`
	Role            string
	StartDate       time.Time
	EndDate         *time.Time
	SharePercentage *float64
}

func (CompanyPerson) TableName() string { return "company_person" }

// City is a Belgian municipality with its main postal code.
type City struct {
	Name       string
	PostalCode string
}

// BelgianCities are the cities addresses and birthplaces are drawn from.
var BelgianCities = []City{
	{"Brussels", "1000"},
	{"Antwerp", "2000"},
	{"Ghent", "9000"},
	{"Charleroi", "6000"},
	{"Liège", "4000"},
	{"Bruges", "8000"},
	{"Namur", "5000"},
	{"Leuven", "3000"},
	{"Mons", "7000"},
	{"Mechelen", "2800"},
	{"Aalst", "9300"},
	{"Hasselt", "3500"},
	{"Kortrijk", "8500"},
	{"Ostend", "8400"},
	{"Tournai", "7500"},
	{"Genk", "3600"},
	{"Roeselare", "8800"},
	{"Mouscron", "7700"},
	{"Verviers", "4800"},
	{"Dendermonde", "9200"},
}

// LegalForms are Belgian company legal forms, Dutch and French.
var LegalForms = []string{
	"SA", "NV", "BVBA", "SPRL", "SRL", "BV",
	"CVBA", "SCRL", "VZW", "ASBL", "Stichting",
}

// BusinessSectors are the sectors a company can be active in.
var BusinessSectors = []string{
	"Banking & Finance",
	"Manufacturing",
	"Technology & IT",
	"Retail & Commerce",
	"Healthcare & Pharmaceuticals",
	"Transportation & Logistics",
	"Construction & Real Estate",
	"Energy & Utilities",
	"Food & Beverage",
	"Telecommunications",
	"Insurance",
	"Consulting Services",
	"Education",
	"Media & Entertainment",
	"Chemicals",
}

// CompanySuffixes are appended to generated company names.
var CompanySuffixes = []string{
	"Group", "Holding", "Industries", "Enterprises",
	"Solutions", "Systems", "Partners", "Associates",
	"International", "Services", "Technologies", "Company",
}

// Roles a person can hold in a company.
const (
	RoleDirector    = "Director"
	RoleFounder     = "Founder"
	RoleShareholder = "Shareholder"
	RoleManager     = "Manager"
)

// Roles lists every role.
var Roles = []string{RoleDirector, RoleFounder, RoleShareholder, RoleManager}
