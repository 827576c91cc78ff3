package branches

import (
	"context"

	"github.com/ariefr/credline/internal/client/models"
)

// Repository describes cache operations for branch offices.
type Repository interface {
	ReplaceAll(ctx context.Context, items []models.Branch) error
	GetAll(ctx context.Context) ([]models.Branch, error)
}
