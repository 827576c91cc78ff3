package creditlines

import (
	"context"

	"github.com/ariefr/credline/internal/client/models"
)

// Repository describes cache operations for server-confirmed credit lines.
// The stored Available balance is the last server-confirmed value; optimistic
// deductions are derived at read time by the service layer and never written
// back here.
type Repository interface {
	ReplaceAll(ctx context.Context, items []models.CreditLine) error
	Upsert(ctx context.Context, cl *models.CreditLine) error
	GetAll(ctx context.Context) ([]models.CreditLine, error)
	GetByID(ctx context.Context, id int64) (*models.CreditLine, error)
}
