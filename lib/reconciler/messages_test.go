package reconciler

import (
	"errors"
	"testing"
	"time"

	"github.com/onkernel/swarm-updater/lib/cluster"
	"github.com/stretchr/testify/require"
)

func TestStartMessage(t *testing.T) {
	tests := []struct {
		name     string
		mode     cluster.Mode
		replicas uint64
		want     string
	}{
		{"single replica", cluster.ModeReplicated, 1, "Found update for `nginx:latest`, updating 1 replica."},
		{"many replicas", cluster.ModeReplicated, 3, "Found update for `nginx:latest`, updating 3 replicas."},
		{"scaled to zero", cluster.ModeReplicated, 0, "Found update for `nginx:latest`, updating 0 replica."},
		{"global", cluster.ModeGlobal, 0, "Found update for `nginx:latest`, updating."},
		{"job", cluster.ModeOther, 5, "Found update for `nginx:latest`, updating."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StartMessage("nginx:latest", tt.mode, tt.replicas))
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0.00"},
		{1239 * time.Millisecond, "1.23"},
		{1500 * time.Millisecond, "1.50"},
		{12*time.Second + 345*time.Millisecond, "12.34"},
		{999 * time.Microsecond, "0.00"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, FormatElapsed(tt.in), tt.in.String())
	}
}

func TestCompletionMessages(t *testing.T) {
	require.Equal(t, "Service: `web`", Title("web"))
	require.Equal(t, "Update successful. Took 2.00 seconds.", SuccessMessage(2*time.Second))
	require.Equal(t, "Update failed after 0.25 seconds: rpc error: update out of sequence",
		FailureMessage(250*time.Millisecond, errors.New("rpc error: update out of sequence")))
}
