package branches

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ariefr/credline/internal/client/models"
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
CREATE TABLE branches (
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  address TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)

	return db
}

func TestReplaceAllAndGetAll(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	items := []models.Branch{
		{ID: 2, Name: "Bandung", Address: "Jl. Asia Afrika 8", Phone: "022-420"},
		{ID: 1, Name: "Jakarta Pusat", Address: "Jl. Sudirman 1", Phone: "021-555"},
	}
	require.NoError(t, r.ReplaceAll(ctx, items))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Jakarta Pusat", got[0].Name)
	assert.Equal(t, "Bandung", got[1].Name)
}

func TestReplaceAllOverwritesWholesale(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, []models.Branch{
		{ID: 1, Name: "Jakarta Pusat"},
		{ID: 2, Name: "Bandung"},
	}))
	require.NoError(t, r.ReplaceAll(ctx, []models.Branch{
		{ID: 1, Name: "Jakarta Selatan", Address: "Jl. Fatmawati 3"},
	}))

	got, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Jakarta Selatan", got[0].Name)
	assert.Equal(t, "Jl. Fatmawati 3", got[0].Address)
}
