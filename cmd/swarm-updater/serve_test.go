package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onkernel/swarm-updater/cmd/swarm-updater/config"
	"github.com/onkernel/swarm-updater/lib/cluster"
	"github.com/onkernel/swarm-updater/lib/images"
	"github.com/onkernel/swarm-updater/lib/reconciler"
	"github.com/stretchr/testify/require"
)

// fakeCluster counts calls and cancels after the first cycle.
type fakeCluster struct {
	mu      sync.Mutex
	info    cluster.Info
	lists   int
	onList  func()
	updates int
}

func (f *fakeCluster) ListServices(ctx context.Context) ([]cluster.Service, error) {
	f.mu.Lock()
	f.lists++
	f.mu.Unlock()
	if f.onList != nil {
		f.onList()
	}
	return []cluster.Service{{ID: "1", Name: "web", Image: "nginx@sha256:" + strings.Repeat("a", 64)}}, nil
}

func (f *fakeCluster) PullImage(ctx context.Context, name string) (images.RemoteImage, error) {
	return images.RemoteImage{RepoDigests: []string{"nginx@sha256:" + strings.Repeat("b", 64)}}, nil
}

func (f *fakeCluster) UpdateService(ctx context.Context, id, ref string) error {
	f.mu.Lock()
	f.updates++
	f.mu.Unlock()
	return nil
}

func (f *fakeCluster) Info(ctx context.Context) (cluster.Info, error) {
	return f.info, nil
}

func newTestApp(ctx context.Context, c *fakeCluster) *application {
	return &application{
		Ctx:        ctx,
		Logger:     slog.Default(),
		Config:     &config.Config{UpdateDelay: time.Minute, Resolver: config.ResolverDaemon, Version: "test"},
		Cluster:    c,
		Reconciler: reconciler.New(c, nil, reconciler.WithInterval(time.Minute)),
	}
}

func TestServeRefusesNonManager(t *testing.T) {
	tests := []struct {
		name string
		info cluster.Info
	}{
		{"not in a swarm", cluster.Info{}},
		{"worker node", cluster.Info{LocalNodeActive: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &fakeCluster{info: tt.info}
			err := serve(context.Background(), newTestApp(context.Background(), c))

			require.ErrorIs(t, err, cluster.ErrNotManager)
			require.Zero(t, c.lists)
			require.Zero(t, c.updates)
		})
	}
}

func TestServeRunsOnManager(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := &fakeCluster{
		info:   cluster.Info{LocalNodeActive: true, ControlAvailable: true},
		onList: cancel,
	}

	require.NoError(t, serve(ctx, newTestApp(ctx, c)))
	require.Equal(t, 1, c.lists)
	require.Equal(t, 1, c.updates)
}

func TestStopOnDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	stopOnDone(ctx, func() { close(stopped) })

	select {
	case <-stopped:
		t.Fatal("stop called before the context was done")
	case <-time.After(10 * time.Millisecond):
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("stop not called after the context was done")
	}
}
