package providers

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/docker/docker/client"
	"github.com/onkernel/swarm-updater/cmd/swarm-updater/config"
	"github.com/onkernel/swarm-updater/lib/cluster"
	"github.com/onkernel/swarm-updater/lib/images"
	"github.com/onkernel/swarm-updater/lib/logger"
	"github.com/onkernel/swarm-updater/lib/middleware"
	"github.com/onkernel/swarm-updater/lib/notify"
	"github.com/onkernel/swarm-updater/lib/otel"
	"github.com/onkernel/swarm-updater/lib/reconciler"
	"github.com/onkernel/swarm-updater/lib/status"
)

// ProvideConfig provides the application configuration
func ProvideConfig(overrides config.Overrides) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Apply(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProvideOtel provides the telemetry providers. The cleanup flushes pending exports.
func ProvideOtel(ctx context.Context, cfg *config.Config) (*otel.Provider, func(), error) {
	p, err := otel.Init(ctx, otel.Config{
		Enabled:        cfg.OtelEnabled,
		Endpoint:       cfg.OtelEndpoint,
		Insecure:       cfg.OtelInsecure,
		ServiceName:    cfg.OtelServiceName,
		ServiceVersion: cfg.Version,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init otel: %w", err)
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = p.Shutdown(ctx)
	}
	return p, cleanup, nil
}

// ProvideLogger provides a structured logger
func ProvideLogger(cfg *config.Config, p *otel.Provider) (*slog.Logger, error) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return logger.New(os.Stdout, level, p.LogHandler), nil
}

// ProvideDockerAPI provides a docker engine client configured from DOCKER_HOST and friends
func ProvideDockerAPI() (cluster.DockerAPI, func(), error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, nil, fmt.Errorf("create docker client: %w", err)
	}
	return cli, func() { _ = cli.Close() }, nil
}

// ProvideClusterClient provides the swarm client, resolving digests through
// the registry when configured to.
func ProvideClusterClient(cfg *config.Config, api cluster.DockerAPI, log *slog.Logger) cluster.Client {
	c := cluster.NewDockerClient(api, log)
	if cfg.Resolver == config.ResolverRegistry {
		c = cluster.WithRegistryResolver(c, images.NewRegistryResolver())
	}
	return c
}

// ProvideNotifier provides the notification fan-out
func ProvideNotifier(cfg *config.Config, log *slog.Logger) (notify.Notifier, error) {
	return notify.New(cfg.NotificationURLs, log)
}

// ProvideUpdaterMetrics provides the reconciler instruments
func ProvideUpdaterMetrics(p *otel.Provider) (*otel.UpdaterMetrics, error) {
	return otel.NewUpdaterMetrics(p.Meter)
}

// ProvideHTTPMetrics provides the status server instruments
func ProvideHTTPMetrics(p *otel.Provider) (*middleware.HTTPMetrics, error) {
	m, err := otel.NewHTTPMetrics(p.Meter)
	if err != nil {
		return nil, err
	}
	return middleware.NewHTTPMetrics(m), nil
}

// ProvideReconciler provides the update loop
func ProvideReconciler(cfg *config.Config, c cluster.Client, n notify.Notifier, m *otel.UpdaterMetrics, p *otel.Provider, log *slog.Logger) *reconciler.Reconciler {
	return reconciler.New(c, n,
		reconciler.WithLogger(log),
		reconciler.WithInterval(cfg.UpdateDelay),
		reconciler.WithMetrics(m),
		reconciler.WithTracer(p.Tracer),
	)
}

// ProvideStatusServer provides the status server, or nil when STATUS_ADDR is unset
func ProvideStatusServer(cfg *config.Config, r *reconciler.Reconciler, m *middleware.HTTPMetrics, log *slog.Logger) *status.Server {
	if cfg.StatusAddr == "" {
		return nil
	}
	return status.New(cfg.StatusAddr, cfg.OtelServiceName, r, log, m)
}
