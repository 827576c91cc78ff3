package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ariefr/credline/internal/client/migrations"
	"github.com/ariefr/credline/internal/client/models"
	"github.com/ariefr/credline/internal/common"
	"github.com/ariefr/credline/internal/logging"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// The in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(db))
	return db
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeScheduler struct {
	mu    sync.Mutex
	kinds []models.ActionKind
}

func (f *fakeScheduler) Schedule(kind models.ActionKind) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
}

func (f *fakeScheduler) scheduled() []models.ActionKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ActionKind(nil), f.kinds...)
}

// fakeGateway is an in-memory stand-in for the backend. online toggles
// between connectivity errors and served responses; rejectMessage makes
// every write fail as a server rejection.
type fakeGateway struct {
	mu     sync.Mutex
	online bool

	products      []models.Product
	branches      []models.Branch
	creditLines   []models.CreditLine
	loans         []models.Loan
	disbursements []models.Disbursement

	rejectMessage string
	nextID        int64

	idempotencyKeys []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{online: true, nextID: 1000}
}

func connectivityErr() error {
	return fmt.Errorf("dial tcp 10.0.0.1:443: connect: network is unreachable: %w", common.ErrConnectivity)
}

func (f *fakeGateway) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return connectivityErr()
	}
	return nil
}

func (f *fakeGateway) ListProducts(ctx context.Context) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeGateway) ListBranches(ctx context.Context) ([]models.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	return append([]models.Branch(nil), f.branches...), nil
}

func (f *fakeGateway) ListCreditLines(ctx context.Context) ([]models.CreditLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	return append([]models.CreditLine(nil), f.creditLines...), nil
}

func (f *fakeGateway) GetCreditLine(ctx context.Context, id int64) (*models.CreditLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	for _, cl := range f.creditLines {
		if cl.ID == id {
			c := cl
			return &c, nil
		}
	}
	return nil, &common.ServerRejectedError{Message: "credit line not found"}
}

func (f *fakeGateway) ListLoans(ctx context.Context) ([]models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	return append([]models.Loan(nil), f.loans...), nil
}

func (f *fakeGateway) GetLoan(ctx context.Context, id int64) (*models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	for _, l := range f.loans {
		if l.ID == id {
			c := l
			return &c, nil
		}
	}
	return nil, &common.ServerRejectedError{Message: "loan not found"}
}

func (f *fakeGateway) ListDisbursements(ctx context.Context) ([]models.Disbursement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	return append([]models.Disbursement(nil), f.disbursements...), nil
}

func (f *fakeGateway) GetDisbursement(ctx context.Context, id int64) (*models.Disbursement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	for _, d := range f.disbursements {
		if d.ID == id {
			c := d
			return &c, nil
		}
	}
	return nil, &common.ServerRejectedError{Message: "disbursement not found"}
}

func (f *fakeGateway) SubmitLoan(ctx context.Context, req models.SubmitLoanPayload, idempotencyKey string) (*models.Loan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	f.idempotencyKeys = append(f.idempotencyKeys, idempotencyKey)
	if f.rejectMessage != "" {
		return nil, &common.ServerRejectedError{Message: f.rejectMessage}
	}
	f.nextID++
	l := models.Loan{ID: f.nextID, PlafondID: req.PlafondID, Amount: req.Amount, Tenor: req.Tenor, Status: "SUBMITTED"}
	f.loans = append(f.loans, l)
	return &l, nil
}

func (f *fakeGateway) ApplyCreditLine(ctx context.Context, req models.ApplyCreditLinePayload, idempotencyKey string) (*models.CreditLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	f.idempotencyKeys = append(f.idempotencyKeys, idempotencyKey)
	if f.rejectMessage != "" {
		return nil, &common.ServerRejectedError{Message: f.rejectMessage}
	}
	f.nextID++
	cl := models.CreditLine{ID: f.nextID, ProductID: req.ProductID, Limit: req.Amount, Available: req.Amount, Status: "IN_REVIEW"}
	f.creditLines = append(f.creditLines, cl)
	return &cl, nil
}

func (f *fakeGateway) Disburse(ctx context.Context, req models.DisbursePayload, idempotencyKey string) (*models.Disbursement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.online {
		return nil, connectivityErr()
	}
	f.idempotencyKeys = append(f.idempotencyKeys, idempotencyKey)
	if f.rejectMessage != "" {
		return nil, &common.ServerRejectedError{Message: f.rejectMessage}
	}
	f.nextID++
	d := models.Disbursement{ID: f.nextID, CreditLineID: req.CreditLineID, Amount: req.Amount, Status: "PROCESSING"}
	f.disbursements = append(f.disbursements, d)
	for i := range f.creditLines {
		if f.creditLines[i].ID == req.CreditLineID {
			f.creditLines[i].Available -= req.Amount
		}
	}
	return &d, nil
}

func (f *fakeGateway) setOnline(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = v
}
