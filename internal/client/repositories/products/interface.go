package products

import (
	"context"

	"github.com/ariefr/credline/internal/client/models"
)

// Repository describes cache operations for the loan product catalog.
type Repository interface {
	ReplaceAll(ctx context.Context, items []models.Product) error
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}
