package cluster

import (
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/registry"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
)

// registryAuth returns the base64url encoded credentials the engine expects
// for image, or "" when the keychain has none for its registry.
func registryAuth(keychain authn.Keychain, image string) (string, error) {
	// Only the repository matters; drop a pinned digest so name@digest parses.
	repo, _, _ := strings.Cut(image, "@")
	ref, err := name.ParseReference(repo)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", image, err)
	}

	authenticator, err := keychain.Resolve(ref.Context())
	if err != nil {
		return "", fmt.Errorf("resolve credentials for %s: %w", ref.Context().RegistryStr(), err)
	}
	if authenticator == authn.Anonymous {
		return "", nil
	}

	cfg, err := authenticator.Authorization()
	if err != nil {
		return "", fmt.Errorf("resolve credentials for %s: %w", ref.Context().RegistryStr(), err)
	}

	return registry.EncodeAuthConfig(registry.AuthConfig{
		Username:      cfg.Username,
		Password:      cfg.Password,
		Auth:          cfg.Auth,
		IdentityToken: cfg.IdentityToken,
		RegistryToken: cfg.RegistryToken,
		ServerAddress: ref.Context().RegistryStr(),
	})
}
