//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/onkernel/swarm-updater/cmd/swarm-updater/config"
	"github.com/onkernel/swarm-updater/lib/providers"
)

// initializeApp is the injector function
func initializeApp(ctx context.Context, overrides config.Overrides) (*application, func(), error) {
	panic(wire.Build(
		providers.ProvideConfig,
		providers.ProvideOtel,
		providers.ProvideLogger,
		providers.ProvideDockerAPI,
		providers.ProvideClusterClient,
		providers.ProvideNotifier,
		providers.ProvideUpdaterMetrics,
		providers.ProvideHTTPMetrics,
		providers.ProvideReconciler,
		providers.ProvideStatusServer,
		wire.Struct(new(application), "*"),
	))
}
