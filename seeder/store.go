package seeder

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Store writes seeded rows to the database.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Stats counts the rows of each table.
type Stats struct {
	Companies     int64 `json:"companies"`
	Persons       int64 `json:"persons"`
	Relationships int64 `json:"relationships"`
}

// Total is the sum of all counts.
func (s Stats) Total() int64 {
	return s.Companies + s.Persons + s.Relationships
}

// Open connects to PostgreSQL with a libpq DSN.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	gormLog := gormLogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return NewStore(db, logger), nil
}

// NewStore wraps an open gorm handle.
func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB { return s.db }

// Close closes the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates the tables if they are missing. Production schemas come
// from the database init scripts; this is for empty databases and tests.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Company{}, &Person{}, &CompanyPerson{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Clear deletes all generated rows and keeps the sample data. Relationships
// go first so foreign keys never dangle.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&CompanyPerson{}, &Person{}, &Company{}} {
			res := tx.Where("id > ?", SampleMaxID).Delete(model)
			if res.Error != nil {
				return res.Error
			}
			deleted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("clear seeded data: %w", err)
	}
	s.logger.Info("Cleared seeded data", "rows", deleted, "kept_below", SampleMaxID+1)
	return deleted, nil
}

// InsertCompanies inserts companies batchSize rows at a time.
func (s *Store) InsertCompanies(ctx context.Context, rows []Company, batchSize int) error {
	return insertBatches(ctx, s, "companies", rows, batchSize)
}

// InsertPersons inserts persons batchSize rows at a time.
func (s *Store) InsertPersons(ctx context.Context, rows []Person, batchSize int) error {
	return insertBatches(ctx, s, "persons", rows, batchSize)
}

// InsertRelationships inserts company roles batchSize rows at a time.
func (s *Store) InsertRelationships(ctx context.Context, rows []CompanyPerson, batchSize int) error {
	return insertBatches(ctx, s, "relationships", rows, batchSize)
}

func insertBatches[T any](ctx context.Context, s *Store, table string, rows []T, batchSize int) error {
	if len(rows) == 0 {
		return nil
	}
	if batchSize < 1 {
		batchSize = len(rows)
	}

	start := time.Now()
	if err := s.db.WithContext(ctx).CreateInBatches(&rows, batchSize).Error; err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	s.logger.Info("Inserted rows",
		"table", table,
		"rows", len(rows),
		"batch_size", batchSize,
		"duration", time.Since(start))
	return nil
}

// Stats counts rows in every table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)
	counts := []struct {
		model any
		dst   *int64
	}{
		{&Company{}, &st.Companies},
		{&Person{}, &st.Persons},
		{&CompanyPerson{}, &st.Relationships},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return Stats{}, fmt.Errorf("count rows: %w", err)
		}
	}
	return st, nil
}
