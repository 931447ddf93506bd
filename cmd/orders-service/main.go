package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feriaviva/feria-backend/internal/orders-service/adapters/products"
	"github.com/feriaviva/feria-backend/internal/orders-service/adapters/rpc"
	"github.com/feriaviva/feria-backend/internal/orders-service/app"
	auditsqlite "github.com/feriaviva/feria-backend/internal/orders-service/reservation/auditlog/sqlite"
	"github.com/feriaviva/feria-backend/internal/orders-service/storage/sqlite"
	"github.com/feriaviva/feria-backend/internal/pkg/config"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
	"github.com/feriaviva/feria-backend/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger("orders-service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdown, err := telemetry.SetupTracer(ctx, "orders-service")
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

	repo, err := sqlite.Open(cfg.OrdersDBPath)
	if err != nil {
		slog.Error("failed to open orders database", "path", cfg.OrdersDBPath, "error", err)
		os.Exit(1)
	}
	defer repo.Close()

	audit, err := auditsqlite.Open(cfg.ReservationLogPath)
	if err != nil {
		slog.Error("failed to open reservation log", "path", cfg.ReservationLogPath, "error", err)
		os.Exit(1)
	}
	defer audit.Close()

	stockRPC := rpcx.NewClient(cfg.AMQPURL, config.ProductsQueue)
	defer stockRPC.Close()

	svc := app.NewService(repo, products.NewClient(stockRPC), audit)

	server := rpcx.NewServer(cfg.AMQPURL, config.OrdersQueue)
	rpc.NewHandler(svc).Register(server)

	slog.Info("orders service running", "queue", config.OrdersQueue)
	if err := server.Run(ctx); err != nil {
		slog.Error("rpc server stopped", "error", err)
		os.Exit(1)
	}
}
