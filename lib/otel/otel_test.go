package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	p, err := Init(context.Background(), Config{ServiceName: "swarm-updater"})
	require.NoError(t, err)
	require.NotNil(t, p.Meter)
	require.NotNil(t, p.Tracer)
	require.Nil(t, p.LogHandler)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestMetricsOnNoopMeter(t *testing.T) {
	p, err := Init(context.Background(), Config{ServiceName: "swarm-updater"})
	require.NoError(t, err)

	m, err := NewUpdaterMetrics(p.Meter)
	require.NoError(t, err)
	require.NotNil(t, m.CyclesTotal)
	require.NotNil(t, m.NotificationsTotal)

	h, err := NewHTTPMetrics(p.Meter)
	require.NoError(t, err)
	require.NotNil(t, h.RequestDuration)
}
