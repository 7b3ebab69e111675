package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ghodss/yaml"
	"github.com/onkernel/swarm-updater/cmd/swarm-updater/config"
	"github.com/onkernel/swarm-updater/lib/cluster"
	"github.com/onkernel/swarm-updater/lib/reconciler"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// errStale is returned by check --fail-on-stale when an update is pending.
var errStale = errors.New("outdated services found")

func newRootCmd() *cobra.Command {
	var overrides config.Overrides

	root := &cobra.Command{
		Use:     "swarm-updater",
		Short:   "Keep swarm services on the latest digest of their image tag",
		Version: version,
		Long: `Periodically pulls the image tag of every swarm service and, when the
registry serves a newer digest, updates the service to name@digest.

Configuration is read from the environment (UPDATE_DELAY, NOTIFICATION_URL,
RESOLVER, LOG_LEVEL, STATUS_ADDR, OTEL_*). Flags take precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), overrides)
		},
	}

	root.PersistentFlags().DurationVar(&overrides.Interval, "interval", 0, "time between update cycles (overrides UPDATE_DELAY)")
	root.PersistentFlags().StringVar(&overrides.Resolver, "resolver", "", "digest resolver: daemon or registry (overrides RESOLVER)")

	root.AddCommand(newRunCmd(&overrides), newCheckCmd(&overrides))
	return root
}

func newRunCmd(overrides *config.Overrides) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the update loop until interrupted (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), *overrides)
		},
	}
}

func newCheckCmd(overrides *config.Overrides) *cobra.Command {
	var (
		output      string
		failOnStale bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report outdated services once without updating them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), *overrides, cmd.OutOrStdout(), output, failOnStale)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	cmd.Flags().BoolVar(&failOnStale, "fail-on-stale", false, "exit non-zero when any service is outdated")
	return cmd
}

// runDaemon verifies the node is a swarm manager, then runs the update loop
// and the optional status server until a termination signal arrives.
func runDaemon(ctx context.Context, overrides config.Overrides) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	stopOnDone(ctx, stop)

	overrides.Version = version
	app, cleanup, err := initializeApp(ctx, overrides)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer cleanup()

	return serve(ctx, app)
}

// stopOnDone restores default signal handling once ctx is done, so a second
// signal kills the process even if shutdown hangs.
func stopOnDone(ctx context.Context, stop func()) {
	go func() {
		<-ctx.Done()
		stop()
	}()
}

// serve runs the update loop and the status server on a manager node only.
func serve(ctx context.Context, app *application) error {
	logger := app.Logger

	if err := cluster.EnsureManager(ctx, app.Cluster); err != nil {
		logger.Error("swarm-updater must run on a swarm manager node", "error", err)
		return err
	}

	logger.Info("starting swarm-updater",
		"version", app.Config.Version,
		"interval", app.Config.UpdateDelay.String(),
		"resolver", app.Config.Resolver,
		"notifiers", len(app.Config.NotificationURLs),
	)

	grp, gctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		return app.Reconciler.Run(gctx)
	})

	if app.StatusServer != nil {
		grp.Go(func() error {
			return app.StatusServer.ListenAndServe()
		})

		grp.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.StatusServer.Shutdown(shutdownCtx)
		})
	}

	err := grp.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("swarm-updater stopped with error", "error", err)
		return err
	}

	logger.Info("swarm-updater stopped gracefully")
	return nil
}

// runCheck runs a single side-effect free cycle and prints the report.
func runCheck(ctx context.Context, overrides config.Overrides, w io.Writer, output string, failOnStale bool) error {
	overrides.Version = version
	app, cleanup, err := initializeApp(ctx, overrides)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer cleanup()

	if err := cluster.EnsureManager(ctx, app.Cluster); err != nil {
		return err
	}

	report, err := app.Reconciler.Check(ctx)
	if err != nil {
		return err
	}

	if err := writeReport(w, report, output); err != nil {
		return err
	}

	if failOnStale && len(report.Stale()) > 0 {
		return errStale
	}
	return nil
}

func writeReport(w io.Writer, report *reconciler.Report, output string) error {
	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "text", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SERVICE\tSTATE\tIMAGE\tDETAIL")
		for _, s := range report.Services {
			detail := s.NewReference
			if s.Error != "" {
				detail = s.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ServiceName, s.State, s.Image, detail)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}
