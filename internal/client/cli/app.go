package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/ariefr/credline/internal/client/config"
	"github.com/ariefr/credline/internal/client/gateway"
	"github.com/ariefr/credline/internal/client/migrations"
	"github.com/ariefr/credline/internal/client/repositories/branches"
	"github.com/ariefr/credline/internal/client/repositories/creditlines"
	"github.com/ariefr/credline/internal/client/repositories/disbursements"
	"github.com/ariefr/credline/internal/client/repositories/loans"
	"github.com/ariefr/credline/internal/client/repositories/pending"
	"github.com/ariefr/credline/internal/client/repositories/products"
	"github.com/ariefr/credline/internal/client/services"
	syncpkg "github.com/ariefr/credline/internal/client/sync"
	"github.com/ariefr/credline/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	db     *sql.DB
	worker *syncpkg.Worker

	catalog       services.CatalogService
	loans         services.LoanService
	creditLines   services.CreditLineService
	disbursements services.DisbursementService
	queue         pending.Repository

	log    logging.Logger
	reader *bufio.Reader
}

// InitDatabase opens the local SQLite database and applies migrations.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrations.Up(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	gw := gateway.NewHTTPClient(c.ServerURL, c.RequestTimeout)

	productRepo := products.NewSQLiteRepository(db)
	branchRepo := branches.NewSQLiteRepository(db)
	creditLineRepo := creditlines.NewSQLiteRepository(db)
	loanRepo := loans.NewSQLiteRepository(db)
	disbursementRepo := disbursements.NewSQLiteRepository(db)
	queue := pending.NewSQLiteRepository(db)

	worker := syncpkg.NewWorker(gw, queue, loanRepo, creditLineRepo, disbursementRepo,
		c.OnlineCheckInterval, c.SyncWakeInterval, log)

	return &App{
		config:        c,
		db:            db,
		worker:        worker,
		catalog:       services.NewCatalogService(gw, productRepo, branchRepo, log),
		loans:         services.NewLoanService(gw, loanRepo, creditLineRepo, productRepo, queue, worker, log),
		creditLines:   services.NewCreditLineService(gw, creditLineRepo, productRepo, queue, worker, log),
		disbursements: services.NewDisbursementService(gw, disbursementRepo, creditLineRepo, queue, worker, log),
		queue:         queue,
		log:           log,
		reader:        bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) getStatus() string {
	if a.worker.Online() {
		return "online"
	}
	return "offline"
}

func (a *App) Run(ctx context.Context) error {
	if err := a.worker.Start(ctx); err != nil {
		return err
	}
	defer a.worker.Stop()
	defer func() { _ = a.db.Close() }()

	fmt.Println("credline CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
	return nil
}
