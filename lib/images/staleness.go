package images

// Verdict is the outcome of comparing a declared reference with the remote image.
type Verdict struct {
	Outdated  bool
	Tag       string // declared name, tag included
	NewDigest string // remote digest, empty when unknown
}

// Evaluate decides whether the declared reference is stale relative to remote.
// An unresolved declared reference is never outdated and the remote is not
// consulted. A remote without digests is never outdated either.
// The only error is a malformed remote repository digest.
func Evaluate(declared Reference, remote RemoteImage) (Verdict, error) {
	v := Verdict{Tag: declared.Name}
	if !declared.Resolved() {
		return v, nil
	}

	remoteDigest, err := remote.Digest()
	if err != nil {
		return v, err
	}
	v.NewDigest = remoteDigest

	if remoteDigest == "" {
		return v, nil
	}

	v.Outdated = declared.Digest != remoteDigest
	return v, nil
}
