package seeder

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

var (
	foundingStart     = date(1800, 1, 1)
	foundingEnd       = date(2020, 12, 31)
	relationshipStart = date(1990, 1, 1)
	relationshipEnd   = date(2023, 12, 31)
	historyEnd        = date(2024, 12, 31)
)

// Generator produces rows. Two generators with the same non-zero seed created
// on the same day produce the same rows. It is not safe for concurrent use.
type Generator struct {
	faker *gofakeit.Faker
	today time.Time
}

// NewGenerator returns a generator seeded with seed. Zero picks a random seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		faker: gofakeit.New(seed),
		today: time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// Company generates one company.
func (g *Generator) Company(id int64) Company {
	city := g.city()
	founded := g.dateBetween(foundingStart, foundingEnd)

	c := Company{
		ID:                id,
		CompanyName:       g.companyName(),
		LegalForm:         g.pick(LegalForms),
		StreetAddress:     g.faker.Street(),
		City:              city.Name,
		PostalCode:        city.PostalCode,
		Country:           "Belgium",
		DateOfFounding:    founded,
		BusinessSector:    g.pick(BusinessSectors),
		CompanyType:       g.pick([]string{"Public", "Private"}),
		RegisteredCapital: round2(g.faker.Float64Range(10_000, 50_000_000)),
	}
	if g.chance(0.1) {
		dissolved := g.dateBetween(founded, historyEnd)
		c.DateOfDissolution = &dissolved
	}
	return c
}

// Person generates one person aged 25 to 85.
func (g *Generator) Person(id int64) Person {
	first := g.faker.FirstName()
	last := g.faker.LastName()
	born := g.dateBetween(g.today.AddDate(-85, 0, 0), g.today.AddDate(-25, 0, 0))

	p := Person{
		ID:           id,
		FirstName:    first,
		LastName:     last,
		FullName:     first + " " + last,
		DateOfBirth:  born,
		PlaceOfBirth: g.city().Name,
		Nationality:  "Belgian",
	}
	if g.chance(0.05) {
		died := g.dateBetween(born.AddDate(20, 0, 0), g.today)
		p.DateOfDeath = &died
	}
	if !g.chance(0.9) {
		p.Nationality = g.faker.Country()
	}
	return p
}

// Relationships links every company to between 1 and 2*perCompany distinct
// persons. Ids start at StartID.
func (g *Generator) Relationships(companyIDs, personIDs []int64, perCompany int) []CompanyPerson {
	if len(personIDs) == 0 {
		return nil
	}
	if perCompany < 1 {
		perCompany = 1
	}

	// pool stays a permutation of personIDs; its prefix is the sample.
	pool := make([]int64, len(personIDs))
	copy(pool, personIDs)

	var out []CompanyPerson
	id := int64(StartID)
	for _, companyID := range companyIDs {
		n := min(g.faker.IntRange(1, perCompany*2), len(pool))
		for i := 0; i < n; i++ {
			j := g.faker.IntRange(i, len(pool)-1)
			pool[i], pool[j] = pool[j], pool[i]
		}

		for _, personID := range pool[:n] {
			start := g.dateBetween(relationshipStart, relationshipEnd)
			rel := CompanyPerson{
				ID:        id,
				CompanyID: companyID,
				PersonID:  personID,
				Role:      g.pick(Roles),
				StartDate: start,
			}
			if g.chance(0.2) {
				end := g.dateBetween(start, historyEnd)
				rel.EndDate = &end
			}
			if rel.Role == RoleShareholder {
				share := round2(g.faker.Float64Range(0.1, 25.0))
				rel.SharePercentage = &share
			}
			out = append(out, rel)
			id++
		}
	}
	return out
}

func (g *Generator) companyName() string {
	var name string
	switch g.faker.IntRange(0, 4) {
	case 0:
		name = fmt.Sprintf("%s %s", g.faker.Company(), g.pick(CompanySuffixes))
	case 1:
		name = fmt.Sprintf("Belgische %s %s", g.faker.LastName(), g.pick(CompanySuffixes))
	case 2:
		name = fmt.Sprintf("%s & %s", g.faker.LastName(), g.faker.LastName())
	case 3:
		name = fmt.Sprintf("%s %s", g.city().Name, g.pick([]string{"Bouw", "Industries", "Trading", "Services"}))
	default:
		name = g.faker.Company()
	}

	if g.chance(0.3) {
		name += " " + g.pick(LegalForms)
	}
	return name
}

func (g *Generator) city() City {
	return BelgianCities[g.faker.IntRange(0, len(BelgianCities)-1)]
}

func (g *Generator) pick(values []string) string {
	return values[g.faker.IntRange(0, len(values)-1)]
}

func (g *Generator) chance(p float64) bool {
	return g.faker.Float64() < p
}

// dateBetween returns a day in [from, to], truncated to midnight UTC.
func (g *Generator) dateBetween(from, to time.Time) time.Time {
	if !to.After(from) {
		return from.Truncate(24 * time.Hour)
	}
	return g.faker.DateRange(from, to).UTC().Truncate(24 * time.Hour)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
