package creditlines

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
CREATE TABLE credit_lines (
  id INTEGER PRIMARY KEY,
  product_id INTEGER NOT NULL,
  credit_limit INTEGER NOT NULL,
  available INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at_ms INTEGER NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsertAndGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	cl := &models.CreditLine{ID: 3, ProductID: 1, Limit: 20_000_000, Available: 15_000_000, Status: "ACTIVE", CreatedAt: base}
	require.NoError(t, r.Upsert(ctx, cl))

	got, err := r.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(15_000_000), got.Available)

	// Server balance overwrites wholesale.
	cl.Available = 9_000_000
	require.NoError(t, r.Upsert(ctx, cl))

	got, err = r.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(9_000_000), got.Available)
}

func TestReplaceAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, r.Upsert(ctx, &models.CreditLine{ID: 1, ProductID: 1, Limit: 1, Available: 1, Status: "ACTIVE", CreatedAt: base}))
	require.NoError(t, r.ReplaceAll(ctx, []models.CreditLine{
		{ID: 2, ProductID: 1, Limit: 2, Available: 2, Status: "ACTIVE", CreatedAt: base},
	}))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	_, err = r.GetByID(ctx, 1)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
