package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"UPDATE_DELAY", "NOTIFICATION_URL", "RESOLVER", "LOG_LEVEL", "STATUS_ADDR", "OTEL_ENABLED"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 300*time.Second, cfg.UpdateDelay)
	require.Empty(t, cfg.NotificationURLs)
	require.Equal(t, ResolverDaemon, cfg.Resolver)
	require.Equal(t, "info", cfg.LogLevel)
	require.False(t, cfg.OtelEnabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("UPDATE_DELAY", "2.5")
	t.Setenv("NOTIFICATION_URL", "slack://token@channel  discord://token@id\nslack://token@channel")
	t.Setenv("RESOLVER", "registry")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2500*time.Millisecond, cfg.UpdateDelay)
	require.Equal(t, []string{"slack://token@channel", "discord://token@id"}, cfg.NotificationURLs)
	require.Equal(t, ResolverRegistry, cfg.Resolver)
	require.True(t, cfg.OtelEnabled)
}

func TestLoadInvalidDelay(t *testing.T) {
	for _, v := range []string{"soon", "0", "-5"} {
		t.Setenv("UPDATE_DELAY", v)
		_, err := Load()
		require.Error(t, err, v)
	}
}

func TestApplyAndValidate(t *testing.T) {
	t.Setenv("UPDATE_DELAY", "")
	t.Setenv("RESOLVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Apply(Overrides{Interval: time.Minute, Resolver: "registry", Version: "1.2.3"})
	require.Equal(t, time.Minute, cfg.UpdateDelay)
	require.Equal(t, ResolverRegistry, cfg.Resolver)
	require.Equal(t, "1.2.3", cfg.Version)
	require.NoError(t, cfg.Validate())

	cfg.Apply(Overrides{Resolver: "carrier-pigeon"})
	require.ErrorContains(t, cfg.Validate(), "invalid resolver")
}
