package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feriaviva/feria-backend/internal/pkg/cache"
	"github.com/feriaviva/feria-backend/internal/pkg/config"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
	"github.com/feriaviva/feria-backend/internal/pkg/telemetry"
	"github.com/feriaviva/feria-backend/internal/products-service/adapters/rpc"
	"github.com/feriaviva/feria-backend/internal/products-service/app"
	"github.com/feriaviva/feria-backend/internal/products-service/storage/sqlite"
)

func main() {
	telemetry.InitLogger("products-service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdown, err := telemetry.SetupTracer(ctx, "products-service")
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

	repo, err := sqlite.Open(cfg.ProductsDBPath)
	if err != nil {
		slog.Error("failed to open products database", "path", cfg.ProductsDBPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	ledger := app.NewStockLedger(repo, cache.NewRedisStore(cfg.RedisAddr, "products"))

	server := rpcx.NewServer(cfg.AMQPURL, config.ProductsQueue)
	rpc.NewHandler(ledger).Register(server)

	slog.Info("products service running", "queue", config.ProductsQueue)
	if err := server.Run(ctx); err != nil {
		slog.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}
