package services

import (
	"context"
	"fmt"

	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/client/repositories/pending"
	"github.com/ariefr/credline/internal/common"
)

// discardFailed removes an acknowledged FAILED action from the queue.
// PENDING and SENDING actions cannot be discarded; dropping them would lose
// a write the caller was told is durably queued.
func discardFailed(ctx context.Context, queue pending.Repository, localID string) error {
	a, err := queue.Get(ctx, localID)
	if err != nil {
		return err
	}
	if a.Status != models.ActionFailed {
		return fmt.Errorf("action %s is %s, only failed actions can be discarded: %w",
			localID, a.Status, common.ErrValidation)
	}
	return queue.Delete(ctx, localID)
}
