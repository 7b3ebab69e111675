package images

import (
	"context"
	"fmt"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

// RegistryResolver resolves image digests by inspecting the remote manifest
// instead of pulling the image through the engine.
type RegistryResolver struct {
	nameOpts   []name.Option
	remoteOpts []remote.Option
}

// RegistryOption configures a RegistryResolver.
type RegistryOption func(*RegistryResolver)

// WithInsecureRegistry allows plain HTTP registries.
func WithInsecureRegistry() RegistryOption {
	return func(r *RegistryResolver) {
		r.nameOpts = append(r.nameOpts, name.Insecure)
	}
}

// WithRemoteOptions appends go-containerregistry remote options (transport, auth).
func WithRemoteOptions(opts ...remote.Option) RegistryOption {
	return func(r *RegistryResolver) {
		r.remoteOpts = append(r.remoteOpts, opts...)
	}
}

// NewRegistryResolver creates a resolver that authenticates with the default
// docker keychain (~/.docker/config.json and credential helpers).
func NewRegistryResolver(opts ...RegistryOption) *RegistryResolver {
	r := &RegistryResolver{
		remoteOpts: []remote.Option{remote.WithAuthFromKeychain(authn.DefaultKeychain)},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ DigestResolver = (*RegistryResolver)(nil)

// Resolve returns the manifest digest currently behind imageName as a single
// repository digest entry. For multi-arch images this is the index digest,
// which is what swarm pins services to.
func (r *RegistryResolver) Resolve(ctx context.Context, imageName string) (RemoteImage, error) {
	ref, err := name.ParseReference(imageName, r.nameOpts...)
	if err != nil {
		return RemoteImage{}, fmt.Errorf("%w: %q: %v", ErrInvalidReference, imageName, err)
	}

	opts := append([]remote.Option{remote.WithContext(ctx)}, r.remoteOpts...)

	// Some registries do not answer HEAD with a digest; fall back to GET.
	desc, err := remote.Head(ref, opts...)
	if err != nil {
		got, getErr := remote.Get(ref, opts...)
		if getErr != nil {
			return RemoteImage{}, fmt.Errorf("inspect manifest %s: %w", ref, getErr)
		}
		desc = &got.Descriptor
	}

	if desc.Digest.Hex == "" {
		return RemoteImage{}, fmt.Errorf("%w: %s", ErrNoDigest, ref)
	}

	return RemoteImage{
		RepoDigests: []string{ref.Context().Name() + "@" + desc.Digest.String()},
	}, nil
}
