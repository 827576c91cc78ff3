package loans

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE loans (
  id INTEGER PRIMARY KEY,
  plafond_id INTEGER NOT NULL,
  amount INTEGER NOT NULL,
  tenor INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at_ms INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestReplaceAll_SwapsSnapshot(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, r.Upsert(ctx, &models.Loan{ID: 1, PlafondID: 7, Amount: 1_000_000, Tenor: 3, Status: "SUBMITTED", CreatedAt: base}))

	fresh := []models.Loan{
		{ID: 2, PlafondID: 7, Amount: 2_000_000, Tenor: 6, Status: "APPROVED", CreatedAt: base.Add(time.Minute)},
		{ID: 3, PlafondID: 8, Amount: 3_000_000, Tenor: 12, Status: "SUBMITTED", CreatedAt: base},
	}
	require.NoError(t, r.ReplaceAll(ctx, fresh))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Newest first; loan 1 is gone.
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
}

func TestUpsert_OverwritesById(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	require.NoError(t, r.Upsert(ctx, &models.Loan{ID: 1, PlafondID: 7, Amount: 1_000_000, Tenor: 3, Status: "SUBMITTED", CreatedAt: base}))
	require.NoError(t, r.Upsert(ctx, &models.Loan{ID: 1, PlafondID: 7, Amount: 1_000_000, Tenor: 3, Status: "APPROVED", CreatedAt: base}))

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "APPROVED", got.Status)
	assert.Equal(t, base.UnixMilli(), got.CreatedAt.UnixMilli())
}

func TestGetByID_NotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
