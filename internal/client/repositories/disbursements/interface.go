package disbursements

import (
	"context"

	"github.com/ariefr/credline/internal/client/models"
)

// Repository describes cache operations for server-confirmed disbursements.
type Repository interface {
	ReplaceAll(ctx context.Context, items []models.Disbursement) error
	Upsert(ctx context.Context, d *models.Disbursement) error
	GetAll(ctx context.Context) ([]models.Disbursement, error)
	GetByID(ctx context.Context, id int64) (*models.Disbursement, error)
}
