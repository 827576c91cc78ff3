package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefr/credline/internal/client/gateway"
	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/client/repositories/creditlines"
	"github.com/ariefr/credline/internal/client/repositories/disbursements"
	"github.com/ariefr/credline/internal/client/repositories/pending"
	"github.com/ariefr/credline/internal/common"
	"github.com/ariefr/credline/internal/logging"

	"github.com/google/uuid"
)

type DisbursementService interface {
	// List emits the cached snapshot immediately, then a refreshed one if
	// the remote fetch succeeds.
	List(ctx context.Context) <-chan []models.Disbursement

	// GetByID prefers the cache and falls back to the remote.
	GetByID(ctx context.Context, id int64) (*models.Disbursement, error)

	// Request draws down from a credit line. The requested amount is
	// checked against the derived availability, which already accounts for
	// queued draws, so stacking offline requests cannot overdraw locally.
	Request(ctx context.Context, req models.DisbursePayload) (*models.Disbursement, error)

	// Discard removes a FAILED queued disbursement the user acknowledged.
	Discard(ctx context.Context, localID string) error
}

type disbursementService struct {
	gw               gateway.Client
	disbursementRepo disbursements.Repository
	creditLineRepo   creditlines.Repository
	queue            pending.Repository
	sched            Scheduler
	log              logging.Logger
}

func NewDisbursementService(gw gateway.Client, disbursementRepo disbursements.Repository,
	creditLineRepo creditlines.Repository, queue pending.Repository, sched Scheduler, log logging.Logger) DisbursementService {
	return &disbursementService{
		gw:               gw,
		disbursementRepo: disbursementRepo,
		creditLineRepo:   creditLineRepo,
		queue:            queue,
		sched:            sched,
		log:              log.With("service", "disbursements"),
	}
}

func disbursementPlaceholder(a *models.PendingAction) (models.Disbursement, error) {
	decoded, err := a.DecodePayload()
	if err != nil {
		return models.Disbursement{}, err
	}
	p, ok := decoded.(models.DisbursePayload)
	if !ok {
		return models.Disbursement{}, fmt.Errorf("unexpected payload type %T for %s", decoded, a.Kind)
	}

	status := models.StatusPendingSync
	if a.Status == models.ActionFailed {
		status = models.StatusSyncFailed
	}
	return models.Disbursement{
		ID:           models.PlaceholderID,
		CreditLineID: p.CreditLineID,
		Amount:       p.Amount,
		Status:       status,
		CreatedAt:    a.CreatedAt,
		LocalRef:     a.LocalID,
		FailReason:   a.LastError,
	}, nil
}

func (s *disbursementService) merged(ctx context.Context) ([]models.Disbursement, error) {
	cached, err := s.disbursementRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	actions, err := s.queue.ListUnresolved(ctx, models.ActionDisburse)
	if err != nil {
		return nil, err
	}
	placeholders := make([]models.Disbursement, 0, len(actions))
	for _, a := range actions {
		ph, err := disbursementPlaceholder(a)
		if err != nil {
			s.log.Warn(ctx, "skipping undecodable pending action", "local_id", a.LocalID, "error", err)
			continue
		}
		placeholders = append(placeholders, ph)
	}

	return mergeSnapshots(placeholders, cached, func(d models.Disbursement) int64 { return d.ID }), nil
}

func (s *disbursementService) List(ctx context.Context) <-chan []models.Disbursement {
	out := make(chan []models.Disbursement, 2)

	snapshot, err := s.merged(ctx)
	if err != nil {
		s.log.Error(ctx, "failed to read cached disbursements", "error", err)
	}
	out <- snapshot

	go func() {
		defer close(out)

		remote, err := s.gw.ListDisbursements(ctx)
		if err != nil {
			if !errors.Is(err, common.ErrConnectivity) {
				s.log.Warn(ctx, "disbursement refresh rejected", "error", err)
			}
			return
		}
		if err := s.disbursementRepo.ReplaceAll(ctx, remote); err != nil {
			s.log.Error(ctx, "failed to store refreshed disbursements", "error", err)
			return
		}
		merged, err := s.merged(ctx)
		if err != nil {
			s.log.Error(ctx, "failed to merge refreshed disbursements", "error", err)
			return
		}
		out <- merged
	}()

	return out
}

func (s *disbursementService) GetByID(ctx context.Context, id int64) (*models.Disbursement, error) {
	d, err := s.disbursementRepo.GetByID(ctx, id)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	remote, err := s.gw.GetDisbursement(ctx, id)
	if err != nil {
		if id == models.PlaceholderID && errors.Is(err, common.ErrConnectivity) {
			return nil, common.ErrNotAvailableOffline
		}
		return nil, err
	}
	if err := s.disbursementRepo.Upsert(ctx, remote); err != nil {
		s.log.Error(ctx, "failed to cache disbursement", "id", remote.ID, "error", err)
	}
	return remote, nil
}

// validate checks the draw against the locally derived availability. Missing
// credit lines pass; the server remains authoritative for lines the cache
// has not seen.
func (s *disbursementService) validate(ctx context.Context, req models.DisbursePayload) error {
	if req.Amount <= 0 {
		return fmt.Errorf("amount must be positive: %w", common.ErrValidation)
	}

	cl, err := s.creditLineRepo.GetByID(ctx, req.CreditLineID)
	if errors.Is(err, common.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	totals, err := queuedDisburseTotals(ctx, s.queue)
	if err != nil {
		return err
	}
	available := cl.Available - totals[req.CreditLineID]
	if available < 0 {
		available = 0
	}
	if req.Amount > available {
		return fmt.Errorf("amount %d exceeds available balance %d: %w",
			req.Amount, available, common.ErrValidation)
	}
	return nil
}

func (s *disbursementService) Request(ctx context.Context, req models.DisbursePayload) (*models.Disbursement, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}

	localID := uuid.NewString()

	d, err := s.gw.Disburse(ctx, req, localID)
	if err == nil {
		if err := s.disbursementRepo.Upsert(ctx, d); err != nil {
			s.log.Error(ctx, "failed to cache disbursement", "id", d.ID, "error", err)
		}
		// Refresh the affected line so the stored balance reflects the
		// server-confirmed draw.
		if cl, cerr := s.gw.GetCreditLine(ctx, req.CreditLineID); cerr == nil {
			if uerr := s.creditLineRepo.Upsert(ctx, cl); uerr != nil {
				s.log.Error(ctx, "failed to cache credit line", "id", cl.ID, "error", uerr)
			}
		}
		return d, nil
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
		return nil, fmt.Errorf("failed to queue disbursement: %w", err)
	}
	s.sched.Schedule(models.ActionDisburse)
	s.log.Info(ctx, "disbursement queued", "local_id", action.LocalID,
		"credit_line_id", req.CreditLineID, "amount", req.Amount)

	ph, err := disbursementPlaceholder(action)
	if err != nil {
		return nil, err
	}
	return &ph, nil
}

func (s *disbursementService) Discard(ctx context.Context, localID string) error {
	return discardFailed(ctx, s.queue, localID)
}
