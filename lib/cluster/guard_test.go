package cluster

import (
	"context"
	"errors"
	"testing"

	"github.com/onkernel/swarm-updater/lib/images"
	"github.com/stretchr/testify/require"
)

type infoClient struct {
	info Info
	err  error
}

func (c infoClient) ListServices(ctx context.Context) ([]Service, error) { return nil, nil }
func (c infoClient) PullImage(ctx context.Context, name string) (images.RemoteImage, error) {
	return images.RemoteImage{}, nil
}
func (c infoClient) UpdateService(ctx context.Context, id, ref string) error { return nil }
func (c infoClient) Info(ctx context.Context) (Info, error)                  { return c.info, c.err }

func TestIsManager(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{LocalNodeActive: true, ControlAvailable: true}, true},
		{Info{LocalNodeActive: true, ControlAvailable: false}, false},
		{Info{LocalNodeActive: false, ControlAvailable: true}, false},
		{Info{LocalNodeActive: false, ControlAvailable: false}, false},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, IsManager(tt.info), "%+v", tt.info)
	}
}

func TestEnsureManager(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, EnsureManager(ctx, infoClient{info: Info{LocalNodeActive: true, ControlAvailable: true}}))

	err := EnsureManager(ctx, infoClient{info: Info{}})
	require.ErrorIs(t, err, ErrNotManager)

	err = EnsureManager(ctx, infoClient{err: errors.New("cannot connect to the docker daemon")})
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotManager)
}
