package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/onkernel/swarm-updater/cmd/swarm-updater/config"
	"github.com/onkernel/swarm-updater/lib/cluster"
	"github.com/onkernel/swarm-updater/lib/reconciler"
	"github.com/onkernel/swarm-updater/lib/status"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// application struct to hold initialized components
type application struct {
	Ctx          context.Context
	Logger       *slog.Logger
	Config       *config.Config
	Cluster      cluster.Client
	Reconciler   *reconciler.Reconciler
	StatusServer *status.Server
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "swarm-updater: %v\n", err)
		os.Exit(1)
	}
}
