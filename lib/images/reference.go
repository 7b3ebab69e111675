package images

import (
	_ "crypto/sha256" // registers sha256 for digest validation
	"fmt"
	"regexp"

	"github.com/distribution/reference"
	"github.com/opencontainers/go-digest"
)

// referencePattern is the only accepted grammar for an image reference:
// a name of up to 128 characters, optionally pinned to a sha256 digest.
var referencePattern = regexp.MustCompile(`^([A-Za-z0-9/_.:-]{0,128})(?:@(sha256:[0-9a-f]{64}))?$`)

// Reference is a parsed image reference of the form name[:tag][@digest].
// The tag stays embedded in Name; Digest is empty when the reference is unresolved.
type Reference struct {
	Name   string // e.g. "nginx:latest" or "ghcr.io/org/app:v1"
	Digest string // e.g. "sha256:abc123...", empty if unresolved
}

// Parse validates a raw image reference and splits it into name and digest.
// Examples:
//   - "nginx:latest" -> {Name: "nginx:latest"}
//   - "nginx:latest@sha256:abc..." -> {Name: "nginx:latest", Digest: "sha256:abc..."}
func Parse(raw string) (Reference, error) {
	m := referencePattern.FindStringSubmatch(raw)
	if m == nil {
		return Reference{}, fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}

	name, dgst := m[1], m[2]
	if name == "" {
		return Reference{}, fmt.Errorf("%w: %q: empty name", ErrInvalidReference, raw)
	}

	if dgst != "" {
		if err := digest.Digest(dgst).Validate(); err != nil {
			return Reference{}, fmt.Errorf("%w: %q: %v", ErrInvalidReference, raw, err)
		}
	}

	return Reference{Name: name, Digest: dgst}, nil
}

// String reconstructs the reference: name@digest when resolved, otherwise name.
func (r Reference) String() string {
	if r.Digest == "" {
		return r.Name
	}
	return r.Name + "@" + r.Digest
}

// Resolved reports whether the reference is pinned to a content digest.
func (r Reference) Resolved() bool {
	return r.Digest != ""
}

// WithDigest returns a copy of r pinned to the given digest.
func (r Reference) WithDigest(d string) Reference {
	return Reference{Name: r.Name, Digest: d}
}

// Repository returns the normalized repository without tag or digest,
// e.g. "docker.io/library/nginx". Returns empty string if the name is not
// a valid docker reference.
func (r Reference) Repository() string {
	named, err := reference.ParseNormalizedNamed(r.Name)
	if err != nil {
		return ""
	}
	return named.Name()
}

// Tag returns the tag embedded in the name, defaulting to "latest".
// Returns empty string if the name is not a valid docker reference.
func (r Reference) Tag() string {
	named, err := reference.ParseNormalizedNamed(r.Name)
	if err != nil {
		return ""
	}
	if tagged, ok := reference.TagNameOnly(named).(reference.Tagged); ok {
		return tagged.Tag()
	}
	return ""
}
