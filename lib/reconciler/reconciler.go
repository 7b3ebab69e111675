// Package reconciler keeps swarm services on the newest content behind their
// image tags. Each cycle lists every service, compares the digest it is
// pinned to with the digest the registry currently serves, and re-points
// outdated services at the new digest.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nrednav/cuid2"
	"github.com/onkernel/swarm-updater/lib/cluster"
	"github.com/onkernel/swarm-updater/lib/images"
	"github.com/onkernel/swarm-updater/lib/notify"
	updaterotel "github.com/onkernel/swarm-updater/lib/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// DefaultInterval is the delay between two cycles.
const DefaultInterval = 300 * time.Second

// ErrPanic marks a service whose processing panicked.
var ErrPanic = errors.New("panic while processing service")

// Reconciler runs update cycles over every swarm service.
type Reconciler struct {
	client   cluster.Client
	notifier notify.Notifier
	logger   *slog.Logger
	interval time.Duration
	metrics  metrics
	tracer   trace.Tracer
	now      func() time.Time

	mu   sync.RWMutex
	last *Report
}

// Option configures a Reconciler.
type Option func(*Reconciler)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Reconciler) { r.logger = logger }
}

// WithInterval sets the delay between cycles. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithMetrics(m *updaterotel.UpdaterMetrics) Option {
	return func(r *Reconciler) { r.metrics = metrics{m: m} }
}

func WithTracer(t trace.Tracer) Option {
	return func(r *Reconciler) { r.tracer = t }
}

// WithClock replaces time.Now for timing updates.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) { r.now = now }
}

// New creates a Reconciler. A nil notifier disables notifications.
func New(client cluster.Client, notifier notify.Notifier, opts ...Option) *Reconciler {
	if notifier == nil {
		notifier = notify.Nop()
	}
	r := &Reconciler{
		client:   client,
		notifier: notifier,
		logger:   slog.Default(),
		interval: DefaultInterval,
		tracer:   tracenoop.NewTracerProvider().Tracer("reconciler"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Interval returns the delay between cycles.
func (r *Reconciler) Interval() time.Duration {
	return r.interval
}

// LastReport returns the report of the most recent completed cycle, or nil.
func (r *Reconciler) LastReport() *Report {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Run starts a cycle immediately and then one every interval until ctx is
// cancelled. Cancellation is observed between cycles; a running cycle is
// allowed to finish so that an issued update is never abandoned halfway.
// Cycle errors are logged and retried on the next tick.
func (r *Reconciler) Run(ctx context.Context) error {
	r.logger.InfoContext(ctx, "started checking for updates", "interval", r.interval.String())

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "stopped checking for updates")
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := r.RunOnce(context.WithoutCancel(ctx)); err != nil {
			r.logger.ErrorContext(ctx, "update cycle failed, retrying next cycle", "error", err)
		}
		if ctx.Err() == nil {
			timer.Reset(r.interval)
		}
	}
}

// RunOnce checks every service once and updates the outdated ones.
// The only returned error is a failure to list services.
func (r *Reconciler) RunOnce(ctx context.Context) (*Report, error) {
	return r.cycle(ctx, false)
}

// Check is RunOnce without side effects: outdated services are reported as
// stale, no update is issued and no notification is sent.
func (r *Reconciler) Check(ctx context.Context) (*Report, error) {
	return r.cycle(ctx, true)
}

func (r *Reconciler) cycle(ctx context.Context, dryRun bool) (*Report, error) {
	report := &Report{
		CycleID: cuid2.Generate(),
		DryRun:  dryRun,
		Started: r.now(),
	}
	log := r.logger.With("cycle", report.CycleID)

	ctx, span := r.tracer.Start(ctx, "reconciler.cycle", trace.WithAttributes(
		attribute.String("cycle.id", report.CycleID),
		attribute.Bool("cycle.dry_run", dryRun),
	))
	defer span.End()

	services, err := r.client.ListServices(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list services")
		r.metrics.recordCycle(ctx, "error", r.now().Sub(report.Started))
		return nil, err
	}
	log.InfoContext(ctx, fmt.Sprintf("checking for updates on %d service(s)", len(services)), "services", len(services))

	report.Services = make([]ServiceResult, 0, len(services))
	for _, svc := range services {
		res := r.reconcileService(ctx, log, svc, dryRun)
		r.metrics.recordService(ctx, res.State)
		report.Services = append(report.Services, res)
	}

	report.Finished = r.now()
	r.metrics.recordCycle(ctx, "success", report.Finished.Sub(report.Started))

	r.mu.Lock()
	r.last = report
	r.mu.Unlock()

	return report, nil
}

// reconcileService evaluates one service and updates it if outdated. Every
// failure, including a panic, is confined to the returned result.
func (r *Reconciler) reconcileService(ctx context.Context, log *slog.Logger, svc cluster.Service, dryRun bool) (res ServiceResult) {
	res = ServiceResult{
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Image:       svc.Image,
	}
	log = log.With("service", svc.Name)

	ctx, span := r.tracer.Start(ctx, "reconciler.service", trace.WithAttributes(
		attribute.String("service.id", svc.ID),
		attribute.String("service.name", svc.Name),
	))
	defer func() {
		if p := recover(); p != nil {
			res.fail(StateFailed, fmt.Errorf("%w: %v", ErrPanic, p))
			log.ErrorContext(ctx, "unexpected error while checking service", "error", res.Err())
		}
		if res.Err() != nil {
			span.RecordError(res.Err())
			span.SetStatus(codes.Error, string(res.State))
		}
		span.SetAttributes(attribute.String("service.state", string(res.State)))
		span.End()
	}()

	declared, err := images.Parse(svc.Image)
	if err != nil {
		res.fail(StateSkipped, err)
		log.WarnContext(ctx, "skipping service with invalid image", "image", svc.Image, "error", err)
		return res
	}

	remote, err := r.client.PullImage(ctx, declared.Name)
	if err != nil {
		res.fail(StateFailed, err)
		log.ErrorContext(ctx, "failed to pull image", "image", declared.Name, "error", err)
		return res
	}

	verdict, err := images.Evaluate(declared, remote)
	if err != nil {
		res.fail(StateSkipped, err)
		log.WarnContext(ctx, "skipping service with invalid remote digest", "image", declared.Name, "error", err)
		return res
	}

	if !verdict.Outdated {
		res.State = StateFresh
		if !declared.Resolved() {
			res.State = StateSkipped
		}
		log.DebugContext(ctx, "no update found for service", "image", svc.Image, "resolved", declared.Resolved())
		return res
	}

	target := declared.WithDigest(verdict.NewDigest)
	res.NewReference = target.String()

	if dryRun {
		res.State = StateStale
		log.InfoContext(ctx, "found update for service", "image", verdict.Tag, "target", res.NewReference)
		return res
	}

	outcome := r.update(ctx, log, svc, verdict.Tag, target)
	res.ElapsedSeconds = outcome.Elapsed.Seconds()
	if outcome.Success() {
		res.State = StateUpdated
	} else {
		res.fail(StateFailed, outcome.Err)
	}
	return res
}

// update issues the update for an outdated service, surrounded by a start
// and a completion notification.
func (r *Reconciler) update(ctx context.Context, log *slog.Logger, svc cluster.Service, tag string, target images.Reference) UpdateOutcome {
	title := Title(svc.Name)
	r.notify(ctx, log, title, StartMessage(tag, svc.Mode, svc.Replicas), notify.SeverityInfo)

	log.InfoContext(ctx, "found update for service, updating", "image", tag, "target", target.String())

	start := r.now()
	err := r.client.UpdateService(ctx, svc.ID, target.String())
	outcome := UpdateOutcome{
		ServiceID:    svc.ID,
		ServiceName:  svc.Name,
		OldReference: svc.Image,
		NewReference: target.String(),
		Elapsed:      r.now().Sub(start),
		Err:          err,
	}
	r.metrics.recordUpdate(ctx, outcome)

	if err != nil {
		log.ErrorContext(ctx, "update failed", "target", outcome.NewReference, "elapsed", FormatElapsed(outcome.Elapsed), "error", err)
		r.notify(ctx, log, title, FailureMessage(outcome.Elapsed, err), notify.SeverityError)
		return outcome
	}

	log.InfoContext(ctx, "update successful", "target", outcome.NewReference, "elapsed", FormatElapsed(outcome.Elapsed))
	r.notify(ctx, log, title, SuccessMessage(outcome.Elapsed), notify.SeveritySuccess)
	return outcome
}

// notify delivers a notification; delivery failures are only logged.
func (r *Reconciler) notify(ctx context.Context, log *slog.Logger, title, body string, severity notify.Severity) {
	err := r.notifier.Notify(ctx, title, body, severity)
	r.metrics.recordNotification(ctx, severity, err)
	if err != nil {
		log.WarnContext(ctx, "failed to send notification", "severity", severity, "error", err)
	}
}
