package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ariefr/credline/internal/client/cli"
	"github.com/ariefr/credline/internal/client/config"
	"github.com/ariefr/credline/internal/logging"
)

func main() {
	cfg := config.LoadConfig()
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, log)
	if err != nil {
		os.Exit(1)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Error(context.Background(), "client exited with error", "error", err)
		os.Exit(1)
	}
}
