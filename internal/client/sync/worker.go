// Package sync drains the pending-action queue against the backend.
//
// Each action kind is an independent queue partition with at most one
// in-flight drain run. Scheduling is keyed and idempotent: scheduling a kind
// whose run is active marks it for a follow-up pass instead of starting a
// second run, so bursts of inserts collapse into one drain.
package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/ariefr/credline/internal/client/gateway"
	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/client/repositories/creditlines"
	"github.com/ariefr/credline/internal/client/repositories/disbursements"
	"github.com/ariefr/credline/internal/client/repositories/loans"
	"github.com/ariefr/credline/internal/client/repositories/pending"
	"github.com/ariefr/credline/internal/common"
	"github.com/ariefr/credline/internal/logging"
)

type runState struct {
	active bool
	rerun  bool
}

// Worker replays queued writes in FIFO order per kind. It satisfies
// services.Scheduler.
type Worker struct {
	gw               gateway.Client
	queue            pending.Repository
	loanRepo         loans.Repository
	creditLineRepo   creditlines.Repository
	disbursementRepo disbursements.Repository
	log              logging.Logger

	pingInterval time.Duration
	wakeInterval time.Duration

	mu     stdsync.Mutex
	runs   map[models.ActionKind]*runState
	ctx    context.Context
	cancel context.CancelFunc
	online bool

	wg stdsync.WaitGroup
}

func NewWorker(gw gateway.Client, queue pending.Repository, loanRepo loans.Repository,
	creditLineRepo creditlines.Repository, disbursementRepo disbursements.Repository,
	pingInterval, wakeInterval time.Duration, log logging.Logger) *Worker {
	return &Worker{
		gw:               gw,
		queue:            queue,
		loanRepo:         loanRepo,
		creditLineRepo:   creditLineRepo,
		disbursementRepo: disbursementRepo,
		pingInterval:     pingInterval,
		wakeInterval:     wakeInterval,
		log:              log.With("component", "sync"),
		runs:             make(map[models.ActionKind]*runState),
	}
}

// Start recovers interrupted state, schedules an initial drain of every
// partition and launches the connectivity watcher. It must be called before
// any Schedule.
func (w *Worker) Start(ctx context.Context) error {
	n, err := w.queue.ResetSending(ctx)
	if err != nil {
		return fmt.Errorf("failed to recover in-flight actions: %w", err)
	}
	if n > 0 {
		w.log.Info(ctx, "recovered interrupted actions", "count", n)
	}

	w.mu.Lock()
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	for _, kind := range models.AllActionKinds {
		w.Schedule(kind)
	}

	w.wg.Add(1)
	go w.watch()
	return nil
}

// Stop cancels in-flight work and waits for all runs to finish.
func (w *Worker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}

// Online reports the last observed connectivity state.
func (w *Worker) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Schedule wakes the drain for a kind. If a run is already active the kind
// is marked for one follow-up pass; extra calls while marked are no-ops.
func (w *Worker) Schedule(kind models.ActionKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil || w.ctx.Err() != nil {
		return
	}

	rs, ok := w.runs[kind]
	if !ok {
		rs = &runState{}
		w.runs[kind] = rs
	}
	if rs.active {
		rs.rerun = true
		return
	}
	rs.active = true

	w.wg.Add(1)
	go w.run(w.ctx, kind, rs)
}

func (w *Worker) run(ctx context.Context, kind models.ActionKind, rs *runState) {
	defer w.wg.Done()
	for {
		w.drain(ctx, kind)

		w.mu.Lock()
		if rs.rerun && ctx.Err() == nil {
			rs.rerun = false
			w.mu.Unlock()
			continue
		}
		rs.active = false
		w.mu.Unlock()
		return
	}
}

// drain replays the kind's PENDING actions oldest first. A connectivity
// failure stops the pass with the failed action back in PENDING, preserving
// order for the next wake-up. A server rejection marks the action FAILED and
// moves on.
func (w *Worker) drain(ctx context.Context, kind models.ActionKind) {
	actions, err := w.queue.ListQueued(ctx, kind)
	if err != nil {
		w.log.Error(ctx, "failed to list queued actions", "kind", kind, "error", err)
		return
	}

	for _, a := range actions {
		if ctx.Err() != nil {
			return
		}
		if err := w.queue.MarkSending(ctx, a.LocalID); err != nil {
			// Raced with another transition; skip.
			w.log.Warn(ctx, "action not in PENDING, skipping", "local_id", a.LocalID, "error", err)
			continue
		}

		serverID, err := w.replay(ctx, a)
		switch {
		case err == nil:
			if cerr := w.queue.Confirm(ctx, a.LocalID, serverID); cerr != nil {
				w.log.Error(ctx, "failed to confirm action", "local_id", a.LocalID, "error", cerr)
				return
			}
			w.refreshAfterConfirm(ctx, a)
			w.log.Info(ctx, "action confirmed", "kind", kind, "local_id", a.LocalID, "server_id", serverID)

		case errors.Is(err, common.ErrConnectivity):
			if rerr := w.queue.MarkRetry(ctx, a.LocalID, err.Error()); rerr != nil {
				w.log.Error(ctx, "failed to requeue action", "local_id", a.LocalID, "error", rerr)
			}
			w.log.Debug(ctx, "connectivity lost during drain", "kind", kind, "local_id", a.LocalID)
			return

		default:
			if ferr := w.queue.MarkFailed(ctx, a.LocalID, err.Error()); ferr != nil {
				w.log.Error(ctx, "failed to mark action failed", "local_id", a.LocalID, "error", ferr)
				return
			}
			w.log.Warn(ctx, "action rejected by server", "kind", kind, "local_id", a.LocalID, "error", err)
		}
	}
}

// replay performs the remote call for one action, reusing its local id as
// the idempotency key, and caches the confirmed entity.
func (w *Worker) replay(ctx context.Context, a *models.PendingAction) (int64, error) {
	decoded, err := a.DecodePayload()
	if err != nil {
		// Undecodable payloads are permanently failed, not retried.
		return 0, fmt.Errorf("invalid payload: %w", err)
	}

	switch p := decoded.(type) {
	case models.SubmitLoanPayload:
		l, err := w.gw.SubmitLoan(ctx, p, a.LocalID)
		if err != nil {
			return 0, err
		}
		if uerr := w.loanRepo.Upsert(ctx, l); uerr != nil {
			w.log.Error(ctx, "failed to cache confirmed loan", "id", l.ID, "error", uerr)
		}
		return l.ID, nil

	case models.ApplyCreditLinePayload:
		cl, err := w.gw.ApplyCreditLine(ctx, p, a.LocalID)
		if err != nil {
			return 0, err
		}
		if uerr := w.creditLineRepo.Upsert(ctx, cl); uerr != nil {
			w.log.Error(ctx, "failed to cache confirmed credit line", "id", cl.ID, "error", uerr)
		}
		return cl.ID, nil

	case models.DisbursePayload:
		d, err := w.gw.Disburse(ctx, p, a.LocalID)
		if err != nil {
			return 0, err
		}
		if uerr := w.disbursementRepo.Upsert(ctx, d); uerr != nil {
			w.log.Error(ctx, "failed to cache confirmed disbursement", "id", d.ID, "error", uerr)
		}
		return d.ID, nil

	default:
		return 0, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// refreshAfterConfirm re-fetches server state the confirmed write changed
// beyond its own entity. It must run after the pending row is gone: a draw's
// refreshed line balance already reflects the draw, so while the row still
// exists a derived-availability read would subtract the amount twice.
func (w *Worker) refreshAfterConfirm(ctx context.Context, a *models.PendingAction) {
	if a.Kind != models.ActionDisburse {
		return
	}
	decoded, err := a.DecodePayload()
	if err != nil {
		return
	}
	p, ok := decoded.(models.DisbursePayload)
	if !ok {
		return
	}
	if cl, cerr := w.gw.GetCreditLine(ctx, p.CreditLineID); cerr == nil {
		if uerr := w.creditLineRepo.Upsert(ctx, cl); uerr != nil {
			w.log.Error(ctx, "failed to cache credit line", "id", cl.ID, "error", uerr)
		}
	}
}

// watch probes connectivity and periodically wakes the drains. An
// offline-to-online edge triggers an immediate drain of every partition.
func (w *Worker) watch() {
	defer w.wg.Done()

	w.mu.Lock()
	ctx := w.ctx
	w.mu.Unlock()

	ping := time.NewTicker(w.pingInterval)
	defer ping.Stop()
	wake := time.NewTicker(w.wakeInterval)
	defer wake.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ping.C:
			online := w.gw.Ping(ctx) == nil

			w.mu.Lock()
			wasOnline := w.online
			w.online = online
			w.mu.Unlock()

			if online && !wasOnline {
				w.log.Info(ctx, "connectivity regained, draining queue")
				for _, kind := range models.AllActionKinds {
					w.Schedule(kind)
				}
			}

		case <-wake.C:
			for _, kind := range models.AllActionKinds {
				w.Schedule(kind)
			}
		}
	}
}
