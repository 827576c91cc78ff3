// Package gateway contains the typed client for the credline backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): catalog
//     and credit-line reads, loan submission, credit-line application, and
//     disbursement requests.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that decodes the
//     backend's uniform response envelope {success, message, data} and maps
//     transport conditions to sentinel errors.
//
// # Error Handling
//
// Outcomes are classified for the caller:
//   - transport failures (timeout, DNS, connection reset) and 5xx responses
//     match common.ErrConnectivity;
//   - success=false inside a 2xx envelope, and 4xx responses, produce a
//     *common.ServerRejectedError carrying the backend message verbatim.
//
// Callers match both with errors.Is. Writes accept a client-generated
// idempotency key forwarded as the X-Idempotency-Key header.
package gateway

import (
	"context"

	"github.com/ariefr/credline/internal/client/models"
)

// Client is the transport-agnostic contract with the credline backend.
// Implementations must be safe for concurrent use and honor context
// cancellation on every call.
type Client interface {
	// Ping probes server reachability.
	Ping(ctx context.Context) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	ListBranches(ctx context.Context) ([]models.Branch, error)

	ListCreditLines(ctx context.Context) ([]models.CreditLine, error)
	GetCreditLine(ctx context.Context, id int64) (*models.CreditLine, error)

	ListLoans(ctx context.Context) ([]models.Loan, error)
	GetLoan(ctx context.Context, id int64) (*models.Loan, error)

	ListDisbursements(ctx context.Context) ([]models.Disbursement, error)
	GetDisbursement(ctx context.Context, id int64) (*models.Disbursement, error)

	// SubmitLoan submits a loan application. The idempotency key is empty
	// for direct submissions and set to the pending action's local id on
	// replay.
	SubmitLoan(ctx context.Context, req models.SubmitLoanPayload, idempotencyKey string) (*models.Loan, error)

	// ApplyCreditLine applies for a new credit line (plafond).
	ApplyCreditLine(ctx context.Context, req models.ApplyCreditLinePayload, idempotencyKey string) (*models.CreditLine, error)

	// Disburse requests a payout against an approved credit line.
	Disburse(ctx context.Context, req models.DisbursePayload, idempotencyKey string) (*models.Disbursement, error)
}
