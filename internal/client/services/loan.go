package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefr/credline/internal/client/gateway"
	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/client/repositories/creditlines"
	"github.com/ariefr/credline/internal/client/repositories/loans"
	"github.com/ariefr/credline/internal/client/repositories/pending"
	"github.com/ariefr/credline/internal/client/repositories/products"
	"github.com/ariefr/credline/internal/common"
	"github.com/ariefr/credline/internal/logging"

	"github.com/google/uuid"
)

type LoanService interface {
	// List emits the cached snapshot immediately, then a refreshed one if
	// the remote fetch succeeds. The channel is closed after the refresh
	// attempt.
	List(ctx context.Context) <-chan []models.Loan

	// GetByID prefers the cache and falls back to the remote.
	GetByID(ctx context.Context, id int64) (*models.Loan, error)

	// Submit submits a loan application, queueing it when offline.
	Submit(ctx context.Context, req models.SubmitLoanPayload) (*models.Loan, error)

	// Discard removes a FAILED queued submission the user acknowledged.
	Discard(ctx context.Context, localID string) error
}

type loanService struct {
	gw             gateway.Client
	loanRepo       loans.Repository
	creditLineRepo creditlines.Repository
	productRepo    products.Repository
	queue          pending.Repository
	sched          Scheduler
	log            logging.Logger
}

func NewLoanService(gw gateway.Client, loanRepo loans.Repository, creditLineRepo creditlines.Repository,
	productRepo products.Repository, queue pending.Repository, sched Scheduler, log logging.Logger) LoanService {
	return &loanService{
		gw:             gw,
		loanRepo:       loanRepo,
		creditLineRepo: creditLineRepo,
		productRepo:    productRepo,
		queue:          queue,
		sched:          sched,
		log:            log.With("service", "loans"),
	}
}

// loanPlaceholder renders a queued submission as a synthetic list entry.
func loanPlaceholder(a *models.PendingAction) (models.Loan, error) {
	decoded, err := a.DecodePayload()
	if err != nil {
		return models.Loan{}, err
	}
	p, ok := decoded.(models.SubmitLoanPayload)
	if !ok {
		return models.Loan{}, fmt.Errorf("unexpected payload type %T for %s", decoded, a.Kind)
	}

	status := models.StatusPendingSync
	if a.Status == models.ActionFailed {
		status = models.StatusSyncFailed
	}
	return models.Loan{
		ID:         models.PlaceholderID,
		PlafondID:  p.PlafondID,
		Amount:     p.Amount,
		Tenor:      p.Tenor,
		Status:     status,
		CreatedAt:  a.CreatedAt,
		LocalRef:   a.LocalID,
		FailReason: a.LastError,
	}, nil
}

func (s *loanService) merged(ctx context.Context) ([]models.Loan, error) {
	cached, err := s.loanRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	actions, err := s.queue.ListUnresolved(ctx, models.ActionSubmitLoan)
	if err != nil {
		return nil, err
	}
	placeholders := make([]models.Loan, 0, len(actions))
	for _, a := range actions {
		ph, err := loanPlaceholder(a)
		if err != nil {
			s.log.Warn(ctx, "skipping undecodable pending action", "local_id", a.LocalID, "error", err)
			continue
		}
		placeholders = append(placeholders, ph)
	}

	return mergeSnapshots(placeholders, cached, func(l models.Loan) int64 { return l.ID }), nil
}

func (s *loanService) List(ctx context.Context) <-chan []models.Loan {
	out := make(chan []models.Loan, 2)

	snapshot, err := s.merged(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to read cached loans", "error", err)
	}
	out <- snapshot

	go func() {
		defer close(out)

		remote, err := s.gw.ListLoans(ctx)
		if err != nil {
			if !errors.Is(err, common.ErrConnectivity) {
				s.log.Warn(ctx, "loan refresh rejected", "error", err)
			}
			return
		}
		if err := s.loanRepo.ReplaceAll(ctx, remote); err != nil {
			s.log.Error(ctx, "failed to store refreshed loans", "error", err)
			return
		}
		merged, err := s.merged(ctx)
		if err != nil {
			s.log.Error(ctx, "failed to merge refreshed loans", "error", err)
			return
		}
		out <- merged
	}()

	return out
}

func (s *loanService) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	l, err := s.loanRepo.GetByID(ctx, id)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	remote, err := s.gw.GetLoan(ctx, id)
	if err != nil {
		if id == models.PlaceholderID && errors.Is(err, common.ErrConnectivity) {
			return nil, common.ErrNotAvailableOffline
		}
		return nil, err
	}
	if err := s.loanRepo.Upsert(ctx, remote); err != nil {
		s.log.Error(ctx, "failed to cache loan", "id", remote.ID, "error", err)
	}
	return remote, nil
}

// validate checks the request against locally known product bounds. Unknown
// plafonds or products pass: the cache may simply not have them yet and the
// server remains authoritative.
func (s *loanService) validate(ctx context.Context, req models.SubmitLoanPayload) error {
	if req.Amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", common.ErrValidation)
	}
	if req.Tenor <= 0 {
		return fmt.Errorf("tenor must be positive: %w", common.ErrValidation)
	}

	cl, err := s.creditLineRepo.GetByID(ctx, req.PlafondID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	p, err := s.productRepo.GetByID(ctx, cl.ProductID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if req.Amount < p.MinAmount || req.Amount > p.MaxAmount {
		return fmt.Errorf("amount %d outside product bounds [%d, %d]: %w",
			req.Amount, p.MinAmount, p.MaxAmount, common.ErrValidation)
	}
	if !p.AllowsTenor(req.Tenor) {
		return fmt.Errorf("tenor %d not offered for product %q: %w", req.Tenor, p.Name, common.ErrValidation)
	}
	return nil
}

func (s *loanService) Submit(ctx context.Context, req models.SubmitLoanPayload) (*models.Loan, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	// The idempotency key is fixed before the first attempt, so a replay of
	// a queued action reuses the same key the server may already have seen.
	localID := uuid.NewString()

	l, err := s.gw.SubmitLoan(ctx, req, localID)
	if err == nil {
		if err := s.loanRepo.Upsert(ctx, l); err != nil {
			s.log.Error(ctx, "failed to cache submitted loan", "id", l.ID, "error", err)
		}
		return l, nil
	}
	if !errors.Is(err, common.ErrConnectivity) {
		return nil, err
	}

	action, aerr := models.NewPendingAction(req)
	if aerr != nil {
		return nil, aerr
	}
	action.LocalID = localID
	if err := s.queue.Insert(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to queue loan submission: %w", err)
	}
	s.sched.Schedule(models.ActionSubmitLoan)
	s.log.Info(ctx, "loan submission queued", "local_id", action.LocalID, "amount", req.Amount)

	ph, err := loanPlaceholder(action)
	if err != nil {
		return nil, err
	}
	return &ph, nil
}

func (s *loanService) Discard(ctx context.Context, localID string) error {
	return discardFailed(ctx, s.queue, localID)
}
