package pending

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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, a *models.PendingAction) error {
	query := `INSERT INTO pending_actions
			(local_id, kind, payload, created_at_ms, status, server_id, retry_count, last_error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		a.LocalID, string(a.Kind), []byte(a.Payload), a.CreatedAt.UnixMilli(),
		string(a.Status), a.ServerID, a.RetryCount, a.LastError)
	if err != nil {
		return fmt.Errorf("failed to insert pending action: %w", err)
	}
	return nil
}

func scanAction(row interface{ Scan(...any) error }) (*models.PendingAction, error) {
	a := &models.PendingAction{}
	var kind, status string
	var createdAtMs int64
	err := row.Scan(&a.LocalID, &kind, &a.Payload, &createdAtMs, &status, &a.ServerID, &a.RetryCount, &a.LastError)
	if err != nil {
		return nil, err
	}
	a.Kind = models.ActionKind(kind)
	a.Status = models.ActionStatus(status)
	a.CreatedAt = time.UnixMilli(createdAtMs).UTC()
	return a, nil
}

const actionColumns = `local_id, kind, payload, created_at_ms, status, server_id, retry_count, last_error`

func (r *SQLiteRepository) Get(ctx context.Context, localID string) (*models.PendingAction, error) {
	query := `SELECT ` + actionColumns + ` FROM pending_actions WHERE local_id = ?`
	a, err := scanAction(r.db.QueryRowContext(ctx, query, localID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending action: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.PendingAction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending actions: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingAction
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ListQueued(ctx context.Context, kind models.ActionKind) ([]*models.PendingAction, error) {
	query := `SELECT ` + actionColumns + ` FROM pending_actions
			WHERE kind = ? AND status = ? ORDER BY created_at_ms ASC`
	return r.list(ctx, query, string(kind), string(models.ActionPending))
}

func (r *SQLiteRepository) ListUnresolved(ctx context.Context, kind models.ActionKind) ([]*models.PendingAction, error) {
	query := `SELECT ` + actionColumns + ` FROM pending_actions
			WHERE kind = ? AND status IN (?, ?, ?) ORDER BY created_at_ms DESC`
	return r.list(ctx, query, string(kind),
		string(models.ActionPending), string(models.ActionSending), string(models.ActionFailed))
}

func (r *SQLiteRepository) HasActive(ctx context.Context, kind models.ActionKind) (bool, error) {
	query := `SELECT COUNT(*) FROM pending_actions WHERE kind = ? AND status IN (?, ?)`
	var n int
	err := r.db.QueryRowContext(ctx, query, string(kind),
		string(models.ActionPending), string(models.ActionSending)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to count active actions: %w", err)
	}
	return n > 0, nil
}

// transition updates status guarded by the expected current status and
// reports common.ErrNotFound when the guard does not hold.
func (r *SQLiteRepository) transition(ctx context.Context, localID string, from, to models.ActionStatus, set string, args ...any) error {
	query := `UPDATE pending_actions SET status = ?` + set + ` WHERE local_id = ? AND status = ?`
	qargs := append([]any{string(to)}, args...)
	qargs = append(qargs, localID, string(from))

	res, err := r.db.ExecContext(ctx, query, qargs...)
	if err != nil {
		return fmt.Errorf("failed to update pending action: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("action %s not in status %s: %w", localID, from, common.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) MarkSending(ctx context.Context, localID string) error {
	return r.transition(ctx, localID, models.ActionPending, models.ActionSending, ``)
}

func (r *SQLiteRepository) MarkRetry(ctx context.Context, localID string, lastError string) error {
	return r.transition(ctx, localID, models.ActionSending, models.ActionPending,
		`, retry_count = retry_count + 1, last_error = ?`, lastError)
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, localID string, reason string) error {
	return r.transition(ctx, localID, models.ActionSending, models.ActionFailed,
		`, last_error = ?`, reason)
}

func (r *SQLiteRepository) Confirm(ctx context.Context, localID string, serverID int64) error {
	err := r.transition(ctx, localID, models.ActionSending, models.ActionConfirmed,
		`, server_id = ?`, serverID)
	if err != nil {
		return err
	}
	// Confirmed actions leave the queue; the cached entity carries the
	// server id from here on.
	_, err = r.db.ExecContext(ctx,
		`DELETE FROM pending_actions WHERE local_id = ? AND status = ?`,
		localID, string(models.ActionConfirmed))
	if err != nil {
		return fmt.Errorf("failed to remove confirmed action: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, localID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE local_id = ?`, localID)
	if err != nil {
		return fmt.Errorf("failed to delete pending action: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ResetSending(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pending_actions SET status = ? WHERE status = ?`,
		string(models.ActionPending), string(models.ActionSending))
	if err != nil {
		return 0, fmt.Errorf("failed to reset sending actions: %w", err)
	}
	return res.RowsAffected()
}
