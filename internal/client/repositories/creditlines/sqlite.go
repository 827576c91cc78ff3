// Package creditlines provides the client-side cache for approved credit
// lines (plafonds).
package creditlines

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.CreditLine) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credit_lines`); err != nil {
			return fmt.Errorf("failed to clear credit lines: %w", err)
		}
		for _, cl := range items {
			if err := upsert(ctx, tx, &cl); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, db dbx.DBTX, cl *models.CreditLine) error {
	query := `INSERT INTO credit_lines (id, product_id, credit_limit, available, status, created_at_ms)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET product_id = excluded.product_id,
				credit_limit = excluded.credit_limit,
				available = excluded.available,
				status = excluded.status,
				created_at_ms = excluded.created_at_ms`
	_, err := db.ExecContext(ctx, query,
		cl.ID, cl.ProductID, cl.Limit, cl.Available, cl.Status, cl.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert credit line: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, cl *models.CreditLine) error {
	return upsert(ctx, r.db, cl)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.CreditLine, error) {
	query := `SELECT id, product_id, credit_limit, available, status, created_at_ms
			FROM credit_lines ORDER BY created_at_ms DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select credit lines: %w", err)
	}
	defer rows.Close()

	var result []models.CreditLine
	for rows.Next() {
		var item models.CreditLine
		var createdAtMs int64
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Limit, &item.Available, &item.Status, &createdAtMs); err != nil {
			return nil, err
		}
		item.CreatedAt = time.UnixMilli(createdAtMs).UTC()
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.CreditLine, error) {
	query := `SELECT id, product_id, credit_limit, available, status, created_at_ms
			FROM credit_lines WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	cl := &models.CreditLine{}
	var createdAtMs int64
	err := row.Scan(&cl.ID, &cl.ProductID, &cl.Limit, &cl.Available, &cl.Status, &createdAtMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	cl.CreatedAt = time.UnixMilli(createdAtMs).UTC()
	return cl, nil
}
