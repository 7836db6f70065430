package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"marketdata-aggregator/internal/bootstrap"
	infraconfig "marketdata-aggregator/internal/infrastructure/config"
	httpserver "marketdata-aggregator/internal/infrastructure/http"
	"marketdata-aggregator/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitAPI(ctx)
	if err != nil {
		logger.Fatal("bootstrap api", zap.Error(err))
	}
	defer cleanup()

	if app.Config.SchedulerEnabled {
		stopScheduler := app.Scheduler.Launch(ctx)
		defer stopScheduler()
	} else {
		logger.Info("scheduler disabled")
	}

	addr := ":" + app.Config.Port
	server := &http.Server{
		Addr:    addr,
		Handler: httpserver.NewRouter(app.Server),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("listen", zap.Error(err))
	}

	shutdownCtx, shCancel := context.WithTimeout(context.Background(), infraconfig.DefaultShutdownTimeout)
	defer shCancel()
	_ = server.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
