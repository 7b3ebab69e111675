package reconciler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/onkernel/swarm-updater/lib/cluster"
	"github.com/onkernel/swarm-updater/lib/images"
	"github.com/onkernel/swarm-updater/lib/notify"
)

var (
	digestA = "sha256:" + strings.Repeat("a", 64)
	digestB = "sha256:" + strings.Repeat("b", 64)
	digestC = "sha256:" + strings.Repeat("c", 64)
)

type serviceUpdate struct {
	ID  string
	Ref string
}

// fakeCluster is an in-memory cluster.Client.
type fakeCluster struct {
	mu sync.Mutex

	services  []cluster.Service
	listErr   error
	remotes   map[string]images.RemoteImage // by pulled name
	pullErrs  map[string]error
	panics    map[string]bool // pulled names that panic
	updateErr map[string]error
	onList    func(call int)

	lists   int
	pulls   []string
	updates []serviceUpdate
	pullCtx []error
}

func (f *fakeCluster) ListServices(ctx context.Context) ([]cluster.Service, error) {
	f.mu.Lock()
	f.lists++
	call := f.lists
	f.mu.Unlock()

	if f.onList != nil {
		f.onList(call)
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.services, nil
}

func (f *fakeCluster) PullImage(ctx context.Context, name string) (images.RemoteImage, error) {
	f.mu.Lock()
	f.pulls = append(f.pulls, name)
	f.pullCtx = append(f.pullCtx, ctx.Err())
	f.mu.Unlock()

	if f.panics[name] {
		panic("unexpected nil pointer")
	}
	if err := f.pullErrs[name]; err != nil {
		return images.RemoteImage{}, err
	}
	return f.remotes[name], nil
}

func (f *fakeCluster) UpdateService(ctx context.Context, id, ref string) error {
	f.mu.Lock()
	f.updates = append(f.updates, serviceUpdate{ID: id, Ref: ref})
	f.mu.Unlock()
	return f.updateErr[id]
}

func (f *fakeCluster) Info(ctx context.Context) (cluster.Info, error) {
	return cluster.Info{LocalNodeActive: true, ControlAvailable: true}, nil
}

type sentNotification struct {
	Title    string
	Body     string
	Severity notify.Severity
}

type fakeNotifier struct {
	sent []sentNotification
	err  error
}

func (n *fakeNotifier) Notify(ctx context.Context, title, body string, severity notify.Severity) error {
	n.sent = append(n.sent, sentNotification{Title: title, Body: body, Severity: severity})
	return n.err
}

// stepClock returns a clock that advances by step on every call.
func stepClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(step)
		return t
	}
}
