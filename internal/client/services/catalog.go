package services

import (
	"context"
	"errors"

	"github.com/ariefr/credline/internal/client/gateway"
	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/client/repositories/branches"
	"github.com/ariefr/credline/internal/client/repositories/products"
	"github.com/ariefr/credline/internal/common"
	"github.com/ariefr/credline/internal/logging"
)

// CatalogService serves the read-only reference data: loan products and
// branch offices. Both are cache-first with a background refresh; there is
// no write path for either.
type CatalogService interface {
	Products(ctx context.Context) <-chan []models.Product
	Branches(ctx context.Context) <-chan []models.Branch
	ProductByID(ctx context.Context, id int64) (*models.Product, error)
}

type catalogService struct {
	gw          gateway.Client
	productRepo products.Repository
	branchRepo  branches.Repository
	log         logging.Logger
}

func NewCatalogService(gw gateway.Client, productRepo products.Repository,
	branchRepo branches.Repository, log logging.Logger) CatalogService {
	return &catalogService{
		gw:          gw,
		productRepo: productRepo,
		branchRepo:  branchRepo,
		log:         log.With("service", "catalog"),
	}
}

func (s *catalogService) Products(ctx context.Context) <-chan []models.Product {
	out := make(chan []models.Product, 2)

	cached, err := s.productRepo.GetAll(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to read cached products", "error", err)
	}
	out <- cached

	go func() {
		defer close(out)

		remote, err := s.gw.ListProducts(ctx)
		if err != nil {
			if !errors.Is(err, common.ErrConnectivity) {
				s.log.Warn(ctx, "product refresh rejected", "error", err)
			}
			return
		}
		if err := s.productRepo.ReplaceAll(ctx, remote); err != nil {
			s.log.Error(ctx, "failed to store refreshed products", "error", err)
			return
		}
		out <- remote
	}()

	return out
}

func (s *catalogService) Branches(ctx context.Context) <-chan []models.Branch {
	out := make(chan []models.Branch, 2)

	cached, err := s.branchRepo.GetAll(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to read cached branches", "error", err)
	}
	out <- cached

	go func() {
		defer close(out)

		remote, err := s.gw.ListBranches(ctx)
		if err != nil {
			if !errors.Is(err, common.ErrConnectivity) {
				s.log.Warn(ctx, "branch refresh rejected", "error", err)
			}
			return
		}
		if err := s.branchRepo.ReplaceAll(ctx, remote); err != nil {
			s.log.Error(ctx, "failed to store refreshed branches", "error", err)
			return
		}
		out <- remote
	}()

	return out
}

func (s *catalogService) ProductByID(ctx context.Context, id int64) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}
