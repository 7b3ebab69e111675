// Package notify delivers short human-readable messages about service updates
// through zero or more shoutrrr URLs (slack://, discord://, smtp://, ...).
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/containrrr/shoutrrr"
	"github.com/containrrr/shoutrrr/pkg/types"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notifier sends a titled message.
type Notifier interface {
	Notify(ctx context.Context, title, body string, severity Severity) error
}

// Sender is the delivery backend, satisfied by shoutrrr's router.
type Sender interface {
	Send(message string, params *types.Params) []error
}

// route is one configured service. scheme selects the severity styling.
type route struct {
	scheme string
	sender Sender
}

type notifier struct {
	routes []route
	logger *slog.Logger
}

// New creates a Notifier for the given service URLs. With no URLs every
// notification is dropped without error.
func New(urls []string, logger *slog.Logger) (Notifier, error) {
	if len(urls) == 0 {
		return Nop(), nil
	}

	routes := make([]route, 0, len(urls))
	for _, url := range urls {
		sender, err := shoutrrr.CreateSender(url)
		if err != nil {
			return nil, fmt.Errorf("create notification sender: %w", err)
		}
		routes = append(routes, route{scheme: scheme(url), sender: sender})
	}
	return &notifier{routes: routes, logger: logger}, nil
}

// NewWithSender creates a Notifier on top of an existing Sender. Severity is
// not mapped to any service specific parameter.
func NewWithSender(sender Sender, logger *slog.Logger) Notifier {
	return &notifier{
		routes: []route{{sender: sender}},
		logger: logger,
	}
}

func scheme(url string) string {
	s, _, _ := strings.Cut(url, "://")
	return strings.ToLower(s)
}

func (n *notifier) Notify(ctx context.Context, title, body string, severity Severity) error {
	n.logger.DebugContext(ctx, "sending notification", "title", title, "severity", severity)

	var errs []error
	for _, r := range n.routes {
		params := &types.Params{}
		params.SetTitle(title)
		for k, v := range severityParams(r.scheme, severity) {
			(*params)[k] = v
		}

		// shoutrrr returns one (possibly nil) error per configured service
		for _, err := range r.sender.Send(body, params) {
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("send notification: %w", errors.Join(errs...))
	}
	return nil
}

type nop struct{}

// Nop returns a Notifier that discards everything.
func Nop() Notifier {
	return nop{}
}

func (nop) Notify(context.Context, string, string, Severity) error {
	return nil
}
