// Package disbursements provides the client-side cache for confirmed
// disbursement requests.
package disbursements

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

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Disbursement) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM disbursements`); err != nil {
			return fmt.Errorf("failed to clear disbursements: %w", err)
		}
		for _, d := range items {
			if err := upsert(ctx, tx, &d); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, db dbx.DBTX, d *models.Disbursement) error {
	query := `INSERT INTO disbursements (id, credit_line_id, amount, status, created_at_ms)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET credit_line_id = excluded.credit_line_id,
				amount = excluded.amount,
				status = excluded.status,
				created_at_ms = excluded.created_at_ms`
	_, err := db.ExecContext(ctx, query,
		d.ID, d.CreditLineID, d.Amount, d.Status, d.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert disbursement: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, d *models.Disbursement) error {
	return upsert(ctx, r.db, d)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Disbursement, error) {
	query := `SELECT id, credit_line_id, amount, status, created_at_ms
			FROM disbursements ORDER BY created_at_ms DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select disbursements: %w", err)
	}
	defer rows.Close()

	var result []models.Disbursement
	for rows.Next() {
		var item models.Disbursement
		var createdAtMs int64
		if err := rows.Scan(&item.ID, &item.CreditLineID, &item.Amount, &item.Status, &createdAtMs); err != nil {
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

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Disbursement, error) {
	query := `SELECT id, credit_line_id, amount, status, created_at_ms FROM disbursements WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	d := &models.Disbursement{}
	var createdAtMs int64
	err := row.Scan(&d.ID, &d.CreditLineID, &d.Amount, &d.Status, &createdAtMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	d.CreatedAt = time.UnixMilli(createdAtMs).UTC()
	return d, nil
}
