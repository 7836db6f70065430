//go:build wireinject

package bootstrap

import (
	"context"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideLogger,
	ProvideConfig,
	ProvideStorage,
	ProvidePriceCache,
	ProvidePriceProvider,
	ProvideMarketDataService,
	ProvideScheduler,
)

// API injector: HTTP server plus the in-process scheduler.
func InitAPI(ctx context.Context) (*APIApp, func(), error) {
	wire.Build(
		infraSet,
		ProvideHTTPServer,
		wire.Struct(new(APIApp), "*"),
	)
	return nil, nil, nil
}

// Worker injector: scheduler plus gRPC health.
func InitWorker(ctx context.Context) (*WorkerApp, func(), error) {
	wire.Build(
		infraSet,
		ProvideHealth,
		wire.Struct(new(WorkerApp), "*"),
	)
	return nil, nil, nil
}
