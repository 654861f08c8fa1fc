package records

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db, migrations.DialectSQLite))
	return db
}

func backends(t *testing.T) map[string]func(t *testing.T) Repository {
	return map[string]func(t *testing.T) Repository{
		"memory": func(t *testing.T) Repository { return NewMemoryRepository() },
		"file": func(t *testing.T) Repository {
			r, err := NewFileRepository(t.TempDir())
			require.NoError(t, err)
			return r
		},
		"sqlite": func(t *testing.T) Repository { return NewSQLiteRepository(setupSQLite(t)) },
	}
}

func envelope(n int) models.Envelope {
	return models.Envelope{
		ID:         fmt.Sprintf("env-%d", n),
		Ciphertext: fmt.Sprintf("cipher-%d", n),
		Timestamp:  time.Date(2025, 1, n, 9, 30, 0, 0, time.UTC),
		EmployeeID: "2",
	}
}

func TestRepository_EmptyReadAll(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			got, err := r.ReadAll(context.Background(), models.CategoryAttendance)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestRepository_OrderPreserved(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			ctx := context.Background()
			for i := 1; i <= 3; i++ {
				require.NoError(t, r.Append(ctx, models.CategoryAttendance, envelope(i)))
			}

			got, err := r.ReadAll(ctx, models.CategoryAttendance)
			require.NoError(t, err)
			assert.Equal(t, []models.Envelope{envelope(1), envelope(2), envelope(3)}, got)
		})
	}
}

func TestRepository_CategoriesAreIsolated(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			ctx := context.Background()
			require.NoError(t, r.Append(ctx, models.CategoryShopVisit, envelope(7)))
			for i := 1; i <= 2; i++ {
				require.NoError(t, r.Append(ctx, models.CategoryAttendance, envelope(i)))
			}

			got, err := r.ReadAll(ctx, models.CategoryShopVisit)
			require.NoError(t, err)
			assert.Equal(t, []models.Envelope{envelope(7)}, got)
		})
	}
}

func TestRepository_SnapshotIsNotAliased(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			ctx := context.Background()
			require.NoError(t, r.Append(ctx, models.CategoryAttendance, envelope(1)))

			snap, err := r.ReadAll(ctx, models.CategoryAttendance)
			require.NoError(t, err)
			snap[0].Ciphertext = "changed"

			require.NoError(t, r.Append(ctx, models.CategoryAttendance, envelope(2)))
			again, err := r.ReadAll(ctx, models.CategoryAttendance)
			require.NoError(t, err)
			assert.Equal(t, "cipher-1", again[0].Ciphertext)
			assert.Len(t, snap, 1)
		})
	}
}

func TestRepository_UnknownCategory(t *testing.T) {
	for name, mk := range backends(t) {
		t.Run(name, func(t *testing.T) {
			r := mk(t)
			err := r.Append(context.Background(), models.Category("payroll"), envelope(1))
			require.ErrorIs(t, err, common.ErrValidation)
		})
	}
}
