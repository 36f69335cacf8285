package seeder_test

import (
	"context"
	"testing"
	"time"

	"github.com/c360studio/belhisfirm/seeder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *seeder.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: sees its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	store := seeder.NewStore(db, nil)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func seedSample(t *testing.T, store *seeder.Store) {
	t.Helper()
	ctx := context.Background()
	founded := time.Date(1822, 12, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertCompanies(ctx, []seeder.Company{
		{ID: 1, CompanyName: "Société Générale de Belgique", City: "Brussels", DateOfFounding: founded},
	}, 10))
	require.NoError(t, store.InsertPersons(ctx, []seeder.Person{
		{ID: 1, FirstName: "Ferdinand", LastName: "Meeus", FullName: "Ferdinand Meeus"},
	}, 10))
	require.NoError(t, store.InsertRelationships(ctx, []seeder.CompanyPerson{
		{ID: 1, CompanyID: 1, PersonID: 1, Role: seeder.RoleFounder, StartDate: founded},
	}, 10))
}

func TestStore_InsertAndStats(t *testing.T) {
	store := newTestStore(t)
	seedSample(t, store)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, seeder.Stats{Companies: 1, Persons: 1, Relationships: 1}, stats)
	assert.Equal(t, int64(3), stats.Total())
}

func TestStore_EmptyInsertIsNoop(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.InsertCompanies(context.Background(), nil, 10))
}

func TestRun(t *testing.T) {
	store := newTestStore(t)
	seedSample(t, store)
	ctx := context.Background()

	opts := seeder.Options{
		Companies:               25,
		Persons:                 40,
		BatchSize:               7,
		RelationshipsPerCompany: 2,
		Seed:                    2024,
	}
	summary, err := seeder.Run(ctx, store, opts, nil)
	require.NoError(t, err)

	assert.Equal(t, 25, summary.Companies)
	assert.Equal(t, 40, summary.Persons)
	assert.GreaterOrEqual(t, summary.Relationships, 25)
	assert.LessOrEqual(t, summary.Relationships, 100)
	assert.Equal(t, int64(26), summary.Stats.Companies)
	assert.Equal(t, int64(41), summary.Stats.Persons)
	assert.Equal(t, int64(summary.Relationships+1), summary.Stats.Relationships)
	assert.Positive(t, summary.Throughput())

	var first seeder.Company
	require.NoError(t, store.DB().First(&first, seeder.StartID).Error)
	assert.Equal(t, seeder.NewGenerator(2024).Company(seeder.StartID).CompanyName, first.CompanyName)

	// A second run clears the generated rows first and keeps the sample.
	opts.ClearExisting = true
	opts.Companies = 5
	summary, err = seeder.Run(ctx, store, opts, nil)
	require.NoError(t, err)
	assert.Positive(t, summary.Cleared)
	assert.Equal(t, int64(6), summary.Stats.Companies)
	assert.Equal(t, int64(41), summary.Stats.Persons)

	var sample seeder.Company
	require.NoError(t, store.DB().First(&sample, 1).Error)
	assert.Equal(t, "Société Générale de Belgique", sample.CompanyName)
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)
	seedSample(t, store)
	ctx := context.Background()

	_, err := seeder.Run(ctx, store, seeder.Options{
		Companies: 3, Persons: 3, BatchSize: 100, RelationshipsPerCompany: 1, Seed: 1,
	}, nil)
	require.NoError(t, err)

	deleted, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, deleted, int64(7))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, seeder.Stats{Companies: 1, Persons: 1, Relationships: 1}, stats)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, seeder.DefaultOptions().Validate())

	bad := []seeder.Options{
		{Companies: -1, BatchSize: 1, RelationshipsPerCompany: 1},
		{Persons: -1, BatchSize: 1, RelationshipsPerCompany: 1},
		{BatchSize: 0, RelationshipsPerCompany: 1},
		{BatchSize: 1, RelationshipsPerCompany: 0},
	}
	for _, o := range bad {
		assert.Error(t, o.Validate())
	}

	_, err := seeder.Run(context.Background(), nil, bad[0], nil)
	assert.Error(t, err)
}

func TestSummary_Throughput(t *testing.T) {
	s := seeder.Summary{Stats: seeder.Stats{Companies: 10, Persons: 10}, Elapsed: 2 * time.Second}
	assert.InDelta(t, 10.0, s.Throughput(), 1e-9)
	assert.Zero(t, seeder.Summary{}.Throughput())
}
