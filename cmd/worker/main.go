package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketdata-aggregator/internal/bootstrap"
	"marketdata-aggregator/internal/config"
	"marketdata-aggregator/internal/infrastructure/grpc/healthserver"
	"marketdata-aggregator/internal/infrastructure/logx"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func init() { _ = godotenv.Load() }

func main() {
	log := logx.L()
	defer func() { _ = log.Sync() }()

	// "worker healthcheck" checks a running worker; used by container health checks.
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		os.Exit(checkHealth(config.Load().GRPCAddr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := bootstrap.InitWorker(ctx)
	if err != nil {
		log.Fatal("init worker", zap.Error(err))
	}
	defer cleanup()

	grpcDone := make(chan struct{})
	go func() {
		defer close(grpcDone)
		if err := healthserver.RunServer(ctx, app.Config.GRPCAddr, app.Health, log); err != nil {
			log.Error("grpc health server exited", zap.Error(err))
			stop()
		}
	}()

	app.Health.SetServing()
	app.Scheduler.Start(ctx)
	app.Health.SetNotServing()

	<-grpcDone
}

func checkHealth(addr string) int {
	target := addr
	if len(target) > 0 && target[0] == ':' {
		target = "localhost" + target
	}
	st, err := healthserver.Check(context.Background(), target, healthserver.SchedulerService, 3*time.Second)
	if err != nil || st != healthpb.HealthCheckResponse_SERVING {
		logx.L().Error("healthcheck_failed", zap.String("target", target), zap.String("status", st.String()), zap.Error(err))
		return 1
	}
	return 0
}
