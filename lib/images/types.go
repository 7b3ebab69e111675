package images

import "context"

// RemoteImage is what a pull tells us about the latest content behind a name.
// Only the first repository digest is authoritative.
type RemoteImage struct {
	RepoDigests []string // e.g. ["nginx@sha256:..."]
}

// Digest returns the digest of the first repository digest entry.
// Returns empty string with no error when no digests are known.
func (i RemoteImage) Digest() (string, error) {
	if len(i.RepoDigests) == 0 {
		return "", nil
	}
	ref, err := Parse(i.RepoDigests[0])
	if err != nil {
		return "", err
	}
	return ref.Digest, nil
}

// DigestResolver looks up the current digest of an image name without pulling it.
type DigestResolver interface {
	Resolve(ctx context.Context, name string) (RemoteImage, error)
}
