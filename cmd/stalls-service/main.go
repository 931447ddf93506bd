package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feriaviva/feria-backend/internal/pkg/config"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
	"github.com/feriaviva/feria-backend/internal/pkg/telemetry"
	"github.com/feriaviva/feria-backend/internal/stalls-service/adapters/rpc"
	"github.com/feriaviva/feria-backend/internal/stalls-service/app"
	"github.com/feriaviva/feria-backend/internal/stalls-service/storage/sqlite"
)

func main() {
	telemetry.InitLogger("stalls-service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdown, err := telemetry.SetupTracer(ctx, "stalls-service")
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	repo, err := sqlite.Open(cfg.StallsDBPath)
	if err != nil {
		slog.Error("failed to open stalls database", "path", cfg.StallsDBPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	server := rpcx.NewServer(cfg.AMQPURL, config.StallsQueue)
	rpc.NewHandler(app.NewService(repo)).Register(server)

	slog.Info("stalls service running", "queue", config.StallsQueue)
	if err := server.Run(ctx); err != nil {
		slog.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}
