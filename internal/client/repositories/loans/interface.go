package loans

import (
	"context"

	"github.com/ariefr/credline/internal/client/models"
)

// Repository describes cache operations for server-confirmed loans.
// Rows are replaced wholesale on refresh; a cached loan never represents an
// unconfirmed local write.
type Repository interface {
	// ReplaceAll transactionally swaps the cached snapshot for the given
	// one (delete-all-then-insert-all).
	ReplaceAll(ctx context.Context, items []models.Loan) error

	// Upsert inserts or overwrites a single loan by server id.
	Upsert(ctx context.Context, l *models.Loan) error

	// GetAll returns cached loans, newest first.
	GetAll(ctx context.Context) ([]models.Loan, error)

	// GetByID returns a loan by its server id.
	GetByID(ctx context.Context, id int64) (*models.Loan, error)
}
