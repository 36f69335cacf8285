package seeder

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Options control one seeding run.
type Options struct {
	Companies               int
	Persons                 int
	BatchSize               int
	RelationshipsPerCompany int
	// Seed makes the run reproducible. Zero picks a random seed.
	Seed          uint64
	ClearExisting bool
}

// DefaultOptions returns the defaults of the seed command.
func DefaultOptions() Options {
	return Options{
		Companies:               1000,
		Persons:                 2000,
		BatchSize:               1000,
		RelationshipsPerCompany: 3,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	switch {
	case o.Companies < 0:
		return errors.New("companies must not be negative")
	case o.Persons < 0:
		return errors.New("persons must not be negative")
	case o.BatchSize < 1:
		return errors.New("batch size must be positive")
	case o.RelationshipsPerCompany < 1:
		return errors.New("relationships per company must be positive")
	}
	return nil
}

// Summary reports a finished run.
type Summary struct {
	Cleared       int64         `json:"cleared"`
	Companies     int           `json:"companies"`
	Persons       int           `json:"persons"`
	Relationships int           `json:"relationships"`
	Stats         Stats         `json:"stats"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Inserted is the number of rows this run inserted.
func (s Summary) Inserted() int {
	return s.Companies + s.Persons + s.Relationships
}

// Throughput is the number of rows in the database per second of the run.
func (s Summary) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Stats.Total()) / s.Elapsed.Seconds()
}

// Run generates and inserts companies, persons and relationships.
func Run(ctx context.Context, store *Store, opts Options, logger *slog.Logger) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	summary := &Summary{}

	if opts.ClearExisting {
		n, err := store.Clear(ctx)
		if err != nil {
			return nil, err
		}
		summary.Cleared = n
	}

	gen := NewGenerator(opts.Seed)

	companies := make([]Company, opts.Companies)
	companyIDs := make([]int64, opts.Companies)
	for i := range companies {
		companyIDs[i] = int64(StartID + i)
		companies[i] = gen.Company(companyIDs[i])
	}

	persons := make([]Person, opts.Persons)
	personIDs := make([]int64, opts.Persons)
	for i := range persons {
		personIDs[i] = int64(StartID + i)
		persons[i] = gen.Person(personIDs[i])
	}

	relationships := gen.Relationships(companyIDs, personIDs, opts.RelationshipsPerCompany)
	logger.Info("Generated seed data",
		"companies", len(companies),
		"persons", len(persons),
		"relationships", len(relationships),
		"duration", time.Since(start))

	if err := store.InsertCompanies(ctx, companies, opts.BatchSize); err != nil {
		return nil, err
	}
	if err := store.InsertPersons(ctx, persons, opts.BatchSize); err != nil {
		return nil, err
	}
	if err := store.InsertRelationships(ctx, relationships, opts.BatchSize); err != nil {
		return nil, err
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		return nil, err
	}

	summary.Companies = len(companies)
	summary.Persons = len(persons)
	summary.Relationships = len(relationships)
	summary.Stats = stats
	summary.Elapsed = time.Since(start)
	return summary, nil
}
