// Package loans provides the client-side cache for server-confirmed loans.
package loans

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

// SQLiteRepository implements Repository over a *sql.DB. A full handle (not
// just a DBTX) is required because ReplaceAll runs in its own transaction.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Loan) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM loans`); err != nil {
			return fmt.Errorf("failed to clear loans: %w", err)
		}
		for _, l := range items {
			if err := upsert(ctx, tx, &l); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsert(ctx context.Context, db dbx.DBTX, l *models.Loan) error {
	query := `INSERT INTO loans (id, plafond_id, amount, tenor, status, created_at_ms)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET plafond_id = excluded.plafond_id,
				amount = excluded.amount,
				tenor = excluded.tenor,
				status = excluded.status,
				created_at_ms = excluded.created_at_ms`
	_, err := db.ExecContext(ctx, query,
		l.ID, l.PlafondID, l.Amount, l.Tenor, l.Status, l.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to upsert loan: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, l *models.Loan) error {
	return upsert(ctx, r.db, l)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Loan, error) {
	query := `SELECT id, plafond_id, amount, tenor, status, created_at_ms
			FROM loans ORDER BY created_at_ms DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select loans: %w", err)
	}
	defer rows.Close()

	var result []models.Loan
	for rows.Next() {
		var item models.Loan
		var createdAtMs int64
		if err := rows.Scan(&item.ID, &item.PlafondID, &item.Amount, &item.Tenor, &item.Status, &createdAtMs); err != nil {
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

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	query := `SELECT id, plafond_id, amount, tenor, status, created_at_ms FROM loans WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	l := &models.Loan{}
	var createdAtMs int64
	err := row.Scan(&l.ID, &l.PlafondID, &l.Amount, &l.Tenor, &l.Status, &createdAtMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	l.CreatedAt = time.UnixMilli(createdAtMs).UTC()
	return l, nil
}
