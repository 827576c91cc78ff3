package pending

import (
	"context"

	"github.com/ariefr/credline/internal/client/models"
)

// Repository describes queue operations for PendingAction rows.
// Only the sync worker mutates statuses; services insert, list, and discard.
type Repository interface {
	// Insert adds a new PENDING action to the queue.
	Insert(ctx context.Context, a *models.PendingAction) error

	// Get returns a single action by its local id.
	Get(ctx context.Context, localID string) (*models.PendingAction, error)

	// ListQueued returns PENDING actions of the kind, oldest first.
	ListQueued(ctx context.Context, kind models.ActionKind) ([]*models.PendingAction, error)

	// ListUnresolved returns PENDING, SENDING and FAILED actions of the
	// kind, newest first, for merging into list reads.
	ListUnresolved(ctx context.Context, kind models.ActionKind) ([]*models.PendingAction, error)

	// HasActive reports whether a PENDING or SENDING action of the kind
	// exists (duplicate-submission guard).
	HasActive(ctx context.Context, kind models.ActionKind) (bool, error)

	// MarkSending transitions an action from PENDING to SENDING. It fails
	// if the action is not currently PENDING, which keeps at most one
	// concurrent sending attempt per action.
	MarkSending(ctx context.Context, localID string) error

	// MarkRetry transitions an action from SENDING back to PENDING after a
	// transient failure, incrementing its retry count.
	MarkRetry(ctx context.Context, localID string, lastError string) error

	// MarkFailed transitions an action to terminal FAILED with the server's
	// rejection reason. The row stays visible until acknowledged.
	MarkFailed(ctx context.Context, localID string, reason string) error

	// Confirm records the server-assigned id and removes the action from
	// the queue.
	Confirm(ctx context.Context, localID string, serverID int64) error

	// Delete discards an action, typically a FAILED one the user
	// acknowledged.
	Delete(ctx context.Context, localID string) error

	// ResetSending moves any SENDING rows back to PENDING. Called once at
	// startup: in-flight state does not survive a process restart.
	ResetSending(ctx context.Context) (int64, error)
}
