package cluster

// Mode is how a service schedules its tasks.
type Mode int

const (
	ModeOther Mode = iota
	ModeReplicated
	ModeGlobal
)

func (m Mode) String() string {
	switch m {
	case ModeReplicated:
		return "replicated"
	case ModeGlobal:
		return "global"
	default:
		return "other"
	}
}

// Service is a read-only view of one running swarm service.
type Service struct {
	ID       string
	Name     string
	Image    string // declared image reference, e.g. nginx:latest@sha256:...
	Mode     Mode
	Replicas uint64 // only meaningful for ModeReplicated
}

// Info describes the swarm role of the node the client is attached to.
type Info struct {
	LocalNodeActive  bool
	ControlAvailable bool
}
