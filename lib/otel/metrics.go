package otel

import (
	"go.opentelemetry.io/otel/metric"
)

// UpdaterMetrics holds metrics for the reconciliation loop.
type UpdaterMetrics struct {
	CyclesTotal        metric.Int64Counter
	CycleDuration      metric.Float64Histogram
	ServicesTotal      metric.Int64Counter
	UpdatesTotal       metric.Int64Counter
	UpdateDuration     metric.Float64Histogram
	NotificationsTotal metric.Int64Counter
}

// NewUpdaterMetrics creates metrics for the reconciliation loop.
func NewUpdaterMetrics(meter metric.Meter) (*UpdaterMetrics, error) {
	cyclesTotal, err := meter.Int64Counter(
		"swarm_updater_cycles_total",
		metric.WithDescription("Total number of update cycles by status"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		"swarm_updater_cycle_duration_seconds",
		metric.WithDescription("Time to check every service once"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	servicesTotal, err := meter.Int64Counter(
		"swarm_updater_services_total",
		metric.WithDescription("Total number of service evaluations by resulting state"),
	)
	if err != nil {
		return nil, err
	}

	updatesTotal, err := meter.Int64Counter(
		"swarm_updater_updates_total",
		metric.WithDescription("Total number of service updates issued by status"),
	)
	if err != nil {
		return nil, err
	}

	updateDuration, err := meter.Float64Histogram(
		"swarm_updater_update_duration_seconds",
		metric.WithDescription("Time for the engine to accept a service update"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	notificationsTotal, err := meter.Int64Counter(
		"swarm_updater_notifications_total",
		metric.WithDescription("Total number of notifications sent by severity and status"),
	)
	if err != nil {
		return nil, err
	}

	return &UpdaterMetrics{
		CyclesTotal:        cyclesTotal,
		CycleDuration:      cycleDuration,
		ServicesTotal:      servicesTotal,
		UpdatesTotal:       updatesTotal,
		UpdateDuration:     updateDuration,
		NotificationsTotal: notificationsTotal,
	}, nil
}

// HTTPMetrics holds metrics for the status server middleware.
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
}

// NewHTTPMetrics creates metrics for the status server middleware.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"swarm_updater_http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"swarm_updater_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
	}, nil
}
