package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionKind tags the kind of a queued write. It doubles as the sync
// scheduling key: each kind drains independently, FIFO within the kind.
type ActionKind string

const (
	ActionSubmitLoan      ActionKind = "submit_loan"
	ActionApplyCreditLine ActionKind = "apply_credit_line"
	ActionDisburse        ActionKind = "disburse"
)

// AllActionKinds lists every queue partition, for startup recovery and
// connectivity-regained triggers.
var AllActionKinds = []ActionKind{ActionSubmitLoan, ActionApplyCreditLine, ActionDisburse}

// ActionStatus is the lifecycle state of a PendingAction.
//
// Transitions are monotonic forward, except SENDING -> PENDING on a
// transient failure (retry) and SENDING -> PENDING at startup recovery.
type ActionStatus string

const (
	ActionPending   ActionStatus = "PENDING"
	ActionSending   ActionStatus = "SENDING"
	ActionConfirmed ActionStatus = "CONFIRMED"
	ActionFailed    ActionStatus = "FAILED"
)

// PendingAction is a durably queued write that could not reach the server.
// LocalID is client-generated; the server id is unknown until confirmed.
type PendingAction struct {
	LocalID    string
	Kind       ActionKind
	Payload    json.RawMessage
	CreatedAt  time.Time
	Status     ActionStatus
	ServerID   int64
	RetryCount int
	LastError  string
}

// SubmitLoanPayload is the stored request for ActionSubmitLoan.
type SubmitLoanPayload struct {
	PlafondID int64 `json:"plafond_id"`
	Amount    int64 `json:"amount"`
	Tenor     int   `json:"tenor"`
}

// ApplyCreditLinePayload is the stored request for ActionApplyCreditLine.
type ApplyCreditLinePayload struct {
	ProductID int64 `json:"product_id"`
	Amount    int64 `json:"amount"`
}

// DisbursePayload is the stored request for ActionDisburse.
type DisbursePayload struct {
	CreditLineID int64 `json:"credit_line_id"`
	Amount       int64 `json:"amount"`
}

func kindOf(payload any) (ActionKind, error) {
	switch payload.(type) {
	case SubmitLoanPayload, *SubmitLoanPayload:
		return ActionSubmitLoan, nil
	case ApplyCreditLinePayload, *ApplyCreditLinePayload:
		return ActionApplyCreditLine, nil
	case DisbursePayload, *DisbursePayload:
		return ActionDisburse, nil
	default:
		return "", fmt.Errorf("unsupported payload type %T", payload)
	}
}

// NewPendingAction builds a PENDING action with a fresh local id around one
// of the typed payloads.
func NewPendingAction(payload any) (*PendingAction, error) {
	kind, err := kindOf(payload)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return &PendingAction{
		LocalID:   uuid.NewString(),
		Kind:      kind,
		Payload:   raw,
		CreatedAt: time.Now().UTC(),
		Status:    ActionPending,
	}, nil
}

// DecodePayload returns the typed payload for the action's kind, so replay
// is exhaustively type-checked instead of passing blobs around.
func (a *PendingAction) DecodePayload() (any, error) {
	switch a.Kind {
	case ActionSubmitLoan:
		var v SubmitLoanPayload
		return v, json.Unmarshal(a.Payload, &v)
	case ActionApplyCreditLine:
		var v ApplyCreditLinePayload
		return v, json.Unmarshal(a.Payload, &v)
	case ActionDisburse:
		var v DisbursePayload
		return v, json.Unmarshal(a.Payload, &v)
	default:
		return nil, fmt.Errorf("unknown action kind %q", a.Kind)
	}
}

// Unresolved reports whether the action still occupies its queue partition
// for duplicate-guard purposes.
func (a *PendingAction) Unresolved() bool {
	return a.Status == ActionPending || a.Status == ActionSending
}
