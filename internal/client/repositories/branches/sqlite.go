// Package branches provides the client-side cache for branch offices.
package branches

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Branch) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM branches`); err != nil {
			return fmt.Errorf("failed to clear branches: %w", err)
		}
		for _, b := range items {
			query := `INSERT INTO branches (id, name, address, phone)
					VALUES (?, ?, ?, ?)
					ON CONFLICT(id) DO UPDATE SET name = excluded.name,
						address = excluded.address,
						phone = excluded.phone`
			if _, err := tx.ExecContext(ctx, query, b.ID, b.Name, b.Address, b.Phone); err != nil {
				return fmt.Errorf("failed to upsert branch: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Branch, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address, phone FROM branches ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select branches: %w", err)
	}
	defer rows.Close()

	var result []models.Branch
	for rows.Next() {
		var item models.Branch
		if err := rows.Scan(&item.ID, &item.Name, &item.Address, &item.Phone); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
