package cluster

import "errors"

var (
	ErrNotManager      = errors.New("docker engine is not a swarm manager")
	ErrNoContainerSpec = errors.New("service has no container spec")
)
