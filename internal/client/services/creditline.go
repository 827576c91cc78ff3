package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefr/credline/internal/client/gateway"
	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/client/repositories/creditlines"
	"github.com/ariefr/credline/internal/client/repositories/pending"
	"github.com/ariefr/credline/internal/client/repositories/products"
	"github.com/ariefr/credline/internal/common"
	"github.com/ariefr/credline/internal/logging"

	"github.com/google/uuid"
)

type CreditLineService interface {
	// List emits cached credit lines with derived availability, then a
	// refreshed snapshot if the remote fetch succeeds.
	List(ctx context.Context) <-chan []models.CreditLine

	// GetByID returns a single credit line with derived availability.
	GetByID(ctx context.Context, id int64) (*models.CreditLine, error)

	// Apply applies for a new credit line. At most one application may be
	// queued at a time; a second returns common.ErrDuplicatePending.
	Apply(ctx context.Context, req models.ApplyCreditLinePayload) (*models.CreditLine, error)

	// Discard removes a FAILED queued application the user acknowledged.
	Discard(ctx context.Context, localID string) error
}

type creditLineService struct {
	gw             gateway.Client
	creditLineRepo creditlines.Repository
	productRepo    products.Repository
	queue          pending.Repository
	sched          Scheduler
	log            logging.Logger
}

func NewCreditLineService(gw gateway.Client, creditLineRepo creditlines.Repository,
	productRepo products.Repository, queue pending.Repository, sched Scheduler, log logging.Logger) CreditLineService {
	return &creditLineService{
		gw:             gw,
		creditLineRepo: creditLineRepo,
		productRepo:    productRepo,
		queue:          queue,
		sched:          sched,
		log:            log.With("service", "credit_lines"),
	}
}

func creditLinePlaceholder(a *models.PendingAction) (models.CreditLine, error) {
	decoded, err := a.DecodePayload()
	if err != nil {
		return models.CreditLine{}, err
	}
	p, ok := decoded.(models.ApplyCreditLinePayload)
	if !ok {
		return models.CreditLine{}, fmt.Errorf("unexpected payload type %T for %s", decoded, a.Kind)
	}

	status := models.StatusPendingSync
	if a.Status == models.ActionFailed {
		status = models.StatusSyncFailed
	}
	return models.CreditLine{
		ID:         models.PlaceholderID,
		ProductID:  p.ProductID,
		Limit:      p.Amount,
		Available:  0,
		Status:     status,
		CreatedAt:  a.CreatedAt,
		LocalRef:   a.LocalID,
		FailReason: a.LastError,
	}, nil
}

// queuedDisburseTotals sums PENDING and SENDING disbursement amounts per
// credit line. FAILED rows stay visible in lists but no longer reserve
// balance.
func queuedDisburseTotals(ctx context.Context, queue pending.Repository) (map[int64]int64, error) {
	actions, err := queue.ListUnresolved(ctx, models.ActionDisburse)
	if err != nil {
		return nil, err
	}
	totals := make(map[int64]int64)
	for _, a := range actions {
		if !a.Unresolved() {
			continue
		}
		decoded, err := a.DecodePayload()
		if err != nil {
			return nil, err
		}
		p, ok := decoded.(models.DisbursePayload)
		if !ok {
			return nil, fmt.Errorf("unexpected payload type %T for %s", decoded, a.Kind)
		}
		totals[p.CreditLineID] += p.Amount
	}
	return totals, nil
}

// deriveAvailability recomputes the displayed balance from the last
// server-confirmed snapshot and the queued deltas. The stored snapshot is
// never mutated; confirmation overwrites it with the server's value.
func (s *creditLineService) deriveAvailability(ctx context.Context, lines []models.CreditLine) ([]models.CreditLine, error) {
	totals, err := queuedDisburseTotals(ctx, s.queue)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		available := lines[i].Available - totals[lines[i].ID]
		if available < 0 {
			available = 0
		}
		lines[i].Available = available
	}
	return lines, nil
}

func (s *creditLineService) merged(ctx context.Context) ([]models.CreditLine, error) {
	cached, err := s.creditLineRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	cached, err = s.deriveAvailability(ctx, cached)
	if err != nil {
		return nil, err
	}

	actions, err := s.queue.ListUnresolved(ctx, models.ActionApplyCreditLine)
	if err != nil {
		return nil, err
	}
	placeholders := make([]models.CreditLine, 0, len(actions))
	for _, a := range actions {
		ph, err := creditLinePlaceholder(a)
		if err != nil {
			s.log.Warn(ctx, "skipping undecodable pending action", "local_id", a.LocalID, "error", err)
			continue
		}
		placeholders = append(placeholders, ph)
	}

	return mergeSnapshots(placeholders, cached, func(cl models.CreditLine) int64 { return cl.ID }), nil
}

func (s *creditLineService) List(ctx context.Context) <-chan []models.CreditLine {
	out := make(chan []models.CreditLine, 2)

	snapshot, err := s.merged(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to read cached credit lines", "error", err)
	}
	out <- snapshot

	go func() {
		defer close(out)

		remote, err := s.gw.ListCreditLines(ctx)
		if err != nil {
			if !errors.Is(err, common.ErrConnectivity) {
				s.log.Warn(ctx, "credit line refresh rejected", "error", err)
			}
			return
		}
		if err := s.creditLineRepo.ReplaceAll(ctx, remote); err != nil {
			s.log.Error(ctx, "failed to store refreshed credit lines", "error", err)
			return
		}
		merged, err := s.merged(ctx)
		if err != nil {
			s.log.Error(ctx, "failed to merge refreshed credit lines", "error", err)
			return
		}
		out <- merged
	}()

	return out
}

func (s *creditLineService) GetByID(ctx context.Context, id int64) (*models.CreditLine, error) {
	cl, err := s.creditLineRepo.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		var remote *models.CreditLine
		remote, err = s.gw.GetCreditLine(ctx, id)
		if err != nil {
			if id == models.PlaceholderID && errors.Is(err, common.ErrConnectivity) {
				return nil, common.ErrNotAvailableOffline
			}
			return nil, err
		}
		if uerr := s.creditLineRepo.Upsert(ctx, remote); uerr != nil {
			s.log.Error(ctx, "failed to cache credit line", "id", remote.ID, "error", uerr)
		}
		cl = remote
	} else if err != nil {
		return nil, err
	}

	derived, err := s.deriveAvailability(ctx, []models.CreditLine{*cl})
	if err != nil {
		return nil, err
	}
	return &derived[0], nil
}

func (s *creditLineService) validate(ctx context.Context, req models.ApplyCreditLinePayload) error {
	if req.Amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", common.ErrValidation)
	}
	p, err := s.productRepo.GetByID(ctx, req.ProductID)
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
	return nil
}

func (s *creditLineService) Apply(ctx context.Context, req models.ApplyCreditLinePayload) (*models.CreditLine, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	localID := uuid.NewString()

	cl, err := s.gw.ApplyCreditLine(ctx, req, localID)
	if err == nil {
		if err := s.creditLineRepo.Upsert(ctx, cl); err != nil {
			s.log.Error(ctx, "failed to cache credit line", "id", cl.ID, "error", err)
		}
		return cl, nil
	}
	if !errors.Is(err, common.ErrConnectivity) {
		return nil, err
	}

	// Duplicate-submission guard: a single queued application at a time.
	active, aerr := s.queue.HasActive(ctx, models.ActionApplyCreditLine)
	if aerr != nil {
		return nil, aerr
	}
	if active {
		return nil, common.ErrDuplicatePending
	}

	action, aerr := models.NewPendingAction(req)
	if aerr != nil {
		return nil, aerr
	}
	action.LocalID = localID
	if err := s.queue.Insert(ctx, action); err != nil {
		return nil, fmt.Errorf("failed to queue credit line application: %w", err)
	}
	s.sched.Schedule(models.ActionApplyCreditLine)
	s.log.Info(ctx, "credit line application queued", "local_id", action.LocalID, "amount", req.Amount)

	ph, err := creditLinePlaceholder(action)
	if err != nil {
		return nil, err
	}
	return &ph, nil
}

func (s *creditLineService) Discard(ctx context.Context, localID string) error {
	return discardFailed(ctx, s.queue, localID)
}
