package images

import "errors"

var (
	ErrInvalidReference = errors.New("invalid image reference")
	ErrNoDigest         = errors.New("no digest returned by registry")
)
