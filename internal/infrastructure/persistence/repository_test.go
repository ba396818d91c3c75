package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fieldops/backend/internal/domain/fieldops"
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newSQLiteDB opens an in-memory store migrated for the kinds whose columns sqlite supports
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&fieldops.Team{}, &fieldops.Job{}, &fieldops.TeamAssignment{}))
	return db
}

func TestGormRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository[fieldops.Team](newSQLiteDB(t), "team")

	t.Run("list on empty table is an empty slice", func(t *testing.T) {
		teams, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, teams)
		assert.Empty(t, teams)
	})

	team := &fieldops.Team{Name: "North Crew", Color: "#00ff00", Active: true}
	require.NoError(t, repo.Create(ctx, team))
	require.NotZero(t, team.ID)
	assert.False(t, team.CreatedAt.IsZero())

	t.Run("get returns the stored row", func(t *testing.T) {
		found, err := repo.FindByID(ctx, team.ID)
		require.NoError(t, err)
		assert.Equal(t, "North Crew", found.Name)
		assert.True(t, found.Active)
	})

	t.Run("list returns created rows", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &fieldops.Team{Name: "South Crew"}))

		teams, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, teams, 2)
	})

	t.Run("update overwrites every mutable column and bumps updated_at", func(t *testing.T) {
		before, err := repo.FindByID(ctx, team.ID)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		updated, err := repo.Update(ctx, team.ID, &fieldops.Team{Name: "Renamed"})
		require.NoError(t, err)

		assert.Equal(t, team.ID, updated.ID)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Empty(t, updated.Color)
		assert.False(t, updated.Active)
		assert.True(t, updated.CreatedAt.Equal(before.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(before.UpdatedAt))
	})

	t.Run("update of absent id is not found", func(t *testing.T) {
		_, err := repo.Update(ctx, 9999, &fieldops.Team{Name: "ghost"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete removes the row", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, team.ID))

		_, err := repo.FindByID(ctx, team.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete of absent id is not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, team.ID), shared.ErrNotFound)
	})
}

func TestGormRepository_JobNullableFields(t *testing.T) {
	ctx := context.Background()
	repo := NewGormRepository[fieldops.Job](newSQLiteDB(t), "job")

	clientID := int64(7)
	scheduled := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	job := &fieldops.Job{
		ClientID:    &clientID,
		Title:       "Spray orchard",
		Status:      "scheduled",
		ScheduledAt: &scheduled,
		Price:       decimal.RequireFromString("120.50"),
	}
	require.NoError(t, repo.Create(ctx, job))

	found, err := repo.FindByID(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ClientID)
	assert.Equal(t, int64(7), *found.ClientID)
	assert.Nil(t, found.JobTypeID)
	assert.Nil(t, found.CompletedAt)
	assert.True(t, found.ScheduledAt.Equal(scheduled))
	assert.True(t, decimal.RequireFromString("120.5").Equal(found.Price))

	updated, err := repo.Update(ctx, job.ID, &fieldops.Job{Title: "Spray orchard", Status: "done"})
	require.NoError(t, err)
	assert.Nil(t, updated.ClientID, "update stores absent references as null")
	assert.Nil(t, updated.ScheduledAt)
}

func TestGormRepository_ClientCreate(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormRepository[fieldops.Client](gormDB, "client")

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO "clients" .* RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at", "first_name", "tags"}).
			AddRow(1, now, now, "Ana", "{vip,weekly}"))

	client := &fieldops.Client{FirstName: "Ana", Tags: pq.StringArray{"vip", "weekly"}}
	require.NoError(t, repo.Create(context.Background(), client))

	assert.Equal(t, int64(1), client.ID)
	assert.Equal(t, pq.StringArray{"vip", "weekly"}, client.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRepository_StoreFailures(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection reset by peer")

	tests := []struct {
		name   string
		op     string
		expect func(mock sqlmock.Sqlmock)
		call   func(repo *GormRepository[fieldops.Client]) error
	}{
		{
			name:   "create",
			op:     "create",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery(`INSERT INTO "clients"`).WillReturnError(storeErr) },
			call: func(r *GormRepository[fieldops.Client]) error {
				return r.Create(ctx, &fieldops.Client{FirstName: "Ana"})
			},
		},
		{
			name:   "list",
			op:     "list",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery(`SELECT \* FROM "clients"`).WillReturnError(storeErr) },
			call: func(r *GormRepository[fieldops.Client]) error {
				_, err := r.FindAll(ctx)
				return err
			},
		},
		{
			name:   "get",
			op:     "get",
			expect: func(m sqlmock.Sqlmock) { m.ExpectQuery(`SELECT \* FROM "clients" WHERE id = \$1`).WillReturnError(storeErr) },
			call: func(r *GormRepository[fieldops.Client]) error {
				_, err := r.FindByID(ctx, 1)
				return err
			},
		},
		{
			name:   "update",
			op:     "update",
			expect: func(m sqlmock.Sqlmock) {
				m.ExpectBegin()
				m.ExpectExec(`UPDATE "clients" SET`).WillReturnError(storeErr)
				m.ExpectRollback()
			},
			call: func(r *GormRepository[fieldops.Client]) error {
				_, err := r.Update(ctx, 1, &fieldops.Client{FirstName: "Ana"})
				return err
			},
		},
		{
			name:   "delete",
			op:     "delete",
			expect: func(m sqlmock.Sqlmock) { m.ExpectExec(`DELETE FROM "clients"`).WillReturnError(storeErr) },
			call: func(r *GormRepository[fieldops.Client]) error {
				return r.Delete(ctx, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock, mockDB := newMockGormDB(t)
			defer mockDB.Close()
			repo := NewGormRepository[fieldops.Client](gormDB, "client")
			tt.expect(mock)

			err := tt.call(repo)

			var pe *shared.PersistenceError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.op, pe.Op)
			assert.Equal(t, "client", pe.Kind)
			assert.ErrorIs(t, err, storeErr)
			assert.False(t, shared.IsNotFound(err))
		})
	}
}

func TestGormRepository_ClientNotFound(t *testing.T) {
	ctx := context.Background()

	t.Run("get", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormRepository[fieldops.Client](gormDB, "client")

		mock.ExpectQuery(`SELECT \* FROM "clients" WHERE id = \$1`).
			WithArgs(int64(42), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(ctx, 42)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update matches no row and skips read-back", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormRepository[fieldops.Client](gormDB, "client")

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "clients" SET .* WHERE id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.Update(ctx, 42, &fieldops.Client{FirstName: "Ana"})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete matches no row", func(t *testing.T) {
		gormDB, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormRepository[fieldops.Client](gormDB, "client")

		mock.ExpectExec(`DELETE FROM "clients" WHERE id = \$1`).
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, 42), shared.ErrNotFound)
	})
}
