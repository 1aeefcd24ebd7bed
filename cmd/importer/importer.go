package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zakupka-tech/go-backend/internal/app"
	config "github.com/zakupka-tech/go-backend/internal/cfg"
	"github.com/zakupka-tech/go-backend/pkg/logger"
)

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	importApp, err := app.NewImportApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize importer")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := importApp.Run(ctx); err != nil {
		os.Exit(1)
	}
}
