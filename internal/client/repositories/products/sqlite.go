// Package products provides the client-side cache for the loan product
// catalog. Allowed tenors are stored as a JSON array in a TEXT column.
package products

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/common"
	"github.com/ariefr/credline/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Product) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return fmt.Errorf("failed to clear products: %w", err)
		}
		for _, p := range items {
			tenors, err := json.Marshal(p.Tenors)
			if err != nil {
				return fmt.Errorf("failed to marshal tenors: %w", err)
			}
			query := `INSERT INTO products (id, name, min_amount, max_amount, annual_rate, tenors)
					VALUES (?, ?, ?, ?, ?, ?)
					ON CONFLICT(id) DO UPDATE SET name = excluded.name,
						min_amount = excluded.min_amount,
						max_amount = excluded.max_amount,
						annual_rate = excluded.annual_rate,
						tenors = excluded.tenors`
			if _, err := tx.ExecContext(ctx, query,
				p.ID, p.Name, p.MinAmount, p.MaxAmount, p.AnnualRate, string(tenors)); err != nil {
				return fmt.Errorf("failed to upsert product: %w", err)
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	query := `SELECT id, name, min_amount, max_amount, annual_rate, tenors FROM products ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}
	defer rows.Close()

	var result []models.Product
	for rows.Next() {
		var item models.Product
		var tenors string
		if err := rows.Scan(&item.ID, &item.Name, &item.MinAmount, &item.MaxAmount, &item.AnnualRate, &tenors); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tenors), &item.Tenors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tenors: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT id, name, min_amount, max_amount, annual_rate, tenors FROM products WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	p := &models.Product{}
	var tenors string
	err := row.Scan(&p.ID, &p.Name, &p.MinAmount, &p.MaxAmount, &p.AnnualRate, &tenors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	if err := json.Unmarshal([]byte(tenors), &p.Tenors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tenors: %w", err)
	}
	return p, nil
}
