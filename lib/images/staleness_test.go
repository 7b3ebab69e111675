package images

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		declared     string
		repoDigests  []string
		wantOutdated bool
		wantDigest   string
	}{
		{
			name:         "different digest",
			declared:     "nginx:latest@" + digestA,
			repoDigests:  []string{"nginx:latest@" + digestB},
			wantOutdated: true,
			wantDigest:   digestB,
		},
		{
			name:        "same digest",
			declared:    "nginx:latest@" + digestA,
			repoDigests: []string{"nginx@" + digestA},
			wantDigest:  digestA,
		},
		{
			name:        "unresolved declared",
			declared:    "redis:7",
			repoDigests: []string{"redis@" + digestB},
		},
		{
			name:        "unresolved declared ignores malformed remote",
			declared:    "redis:7",
			repoDigests: []string{"redis@sha256:bad"},
		},
		{
			name:     "no remote digests",
			declared: "nginx:latest@" + digestA,
		},
		{
			name:         "only first remote digest counts",
			declared:     "nginx@" + digestA,
			repoDigests:  []string{"nginx@" + digestB, "mirror/nginx@" + digestA},
			wantOutdated: true,
			wantDigest:   digestB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declared, err := Parse(tt.declared)
			require.NoError(t, err)

			v, err := Evaluate(declared, RemoteImage{RepoDigests: tt.repoDigests})
			require.NoError(t, err)
			require.Equal(t, tt.wantOutdated, v.Outdated)
			require.Equal(t, tt.wantDigest, v.NewDigest)
			require.Equal(t, declared.Name, v.Tag)
		})
	}
}

func TestEvaluateMalformedRemoteDigest(t *testing.T) {
	declared, err := Parse("nginx@" + digestA)
	require.NoError(t, err)

	_, err = Evaluate(declared, RemoteImage{RepoDigests: []string{"nginx@sha256:nothex"}})
	require.ErrorIs(t, err, ErrInvalidReference)
}
