package reconciler

import (
	"context"
	"time"

	"github.com/onkernel/swarm-updater/lib/notify"
	updaterotel "github.com/onkernel/swarm-updater/lib/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// metrics records reconciler instruments. The zero value records nothing.
type metrics struct {
	m *updaterotel.UpdaterMetrics
}

func (m metrics) recordCycle(ctx context.Context, status string, duration time.Duration) {
	if m.m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.m.CyclesTotal.Add(ctx, 1, attrs)
	m.m.CycleDuration.Record(ctx, duration.Seconds(), attrs)
}

func (m metrics) recordService(ctx context.Context, state State) {
	if m.m == nil {
		return
	}
	m.m.ServicesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("state", string(state))))
}

func (m metrics) recordUpdate(ctx context.Context, o UpdateOutcome) {
	if m.m == nil {
		return
	}
	status := "success"
	if !o.Success() {
		status = "error"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.m.UpdatesTotal.Add(ctx, 1, attrs)
	m.m.UpdateDuration.Record(ctx, o.Elapsed.Seconds(), attrs)
}

func (m metrics) recordNotification(ctx context.Context, severity notify.Severity, err error) {
	if m.m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.m.NotificationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("severity", string(severity)),
		attribute.String("status", status),
	))
}
