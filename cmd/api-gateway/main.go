package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/feriaviva/feria-backend/internal/api-gateway/infra/adapters/rpc"
	"github.com/feriaviva/feria-backend/internal/api-gateway/infra/httpx"
	"github.com/feriaviva/feria-backend/internal/pkg/config"
	"github.com/feriaviva/feria-backend/internal/pkg/rpcx"
	"github.com/feriaviva/feria-backend/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger("api-gateway")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	shutdown, err := telemetry.SetupTracer(ctx, "api-gateway")
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

	productsRPC := rpcx.NewClient(cfg.AMQPURL, config.ProductsQueue)
	defer productsRPC.Close()
	stallsRPC := rpcx.NewClient(cfg.AMQPURL, config.StallsQueue)
	defer stallsRPC.Close()
	ordersRPC := rpcx.NewClient(cfg.AMQPURL, config.OrdersQueue)
	defer ordersRPC.Close()

	handler := httpx.NewHandler(
		rpc.NewProductsClient(productsRPC),
		rpc.NewStallsClient(stallsRPC),
		rpc.NewOrdersClient(ordersRPC),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpx.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("api gateway running", "addr", cfg.HTTPAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}
