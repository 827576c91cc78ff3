package services

import "github.com/ariefr/credline/internal/client/models"

// Scheduler wakes the sync worker for a queue partition. Implemented by
// sync.Worker; scheduling is idempotent, so services call it after every
// successful queue insert without further coordination.
type Scheduler interface {
	Schedule(kind models.ActionKind)
}
