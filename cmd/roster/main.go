package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rosterhq/roster-backend/internal/app"
	"github.com/rosterhq/roster-backend/internal/common/config"
	"github.com/rosterhq/roster-backend/internal/common/logger"
	"github.com/rosterhq/roster-backend/internal/common/server"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogDir, "roster", cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	srv := server.New(cfg.HTTPPort, a.Handler())

	server.StartWithGracefulShutdown(srv, log, func(ctx context.Context) error {
		a.Close()
		return nil
	})
}
