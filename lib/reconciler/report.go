package reconciler

import (
	"time"

	"github.com/samber/lo"
)

// State is what happened to a service during a cycle.
type State string

const (
	StateFresh   State = "fresh"   // declared digest matches the remote
	StateStale   State = "stale"   // outdated, not updated (check mode)
	StateUpdated State = "updated" // update issued and accepted
	StateFailed  State = "failed"  // pull, update or unexpected error
	StateSkipped State = "skipped" // invalid or unresolved reference
)

// UpdateOutcome describes one update attempt.
type UpdateOutcome struct {
	ServiceID    string
	ServiceName  string
	OldReference string
	NewReference string
	Elapsed      time.Duration
	Err          error
}

// Success reports whether the engine accepted the update.
func (o UpdateOutcome) Success() bool {
	return o.Err == nil
}

// ServiceResult is the per-service entry of a Report.
type ServiceResult struct {
	ServiceID      string  `json:"id"`
	ServiceName    string  `json:"name"`
	Image          string  `json:"image"`
	State          State   `json:"state"`
	NewReference   string  `json:"new_reference,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
	Error          string  `json:"error,omitempty"`

	err error
}

// Err returns the error recorded for the service, if any.
func (r ServiceResult) Err() error {
	return r.err
}

func (r *ServiceResult) fail(state State, err error) {
	r.State = state
	r.err = err
	r.Error = err.Error()
}

// Report summarizes one cycle.
type Report struct {
	CycleID  string          `json:"cycle_id"`
	DryRun   bool            `json:"dry_run"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Services []ServiceResult `json:"services"`
}

func (r *Report) Scanned() []ServiceResult { return r.Services }
func (r *Report) Updated() []ServiceResult { return r.inState(StateUpdated) }
func (r *Report) Failed() []ServiceResult  { return r.inState(StateFailed) }
func (r *Report) Skipped() []ServiceResult { return r.inState(StateSkipped) }
func (r *Report) Stale() []ServiceResult   { return r.inState(StateStale) }
func (r *Report) Fresh() []ServiceResult   { return r.inState(StateFresh) }

// Counts returns the number of services per state.
func (r *Report) Counts() map[State]int {
	return lo.CountValuesBy(r.Services, func(s ServiceResult) State {
		return s.State
	})
}

func (r *Report) inState(state State) []ServiceResult {
	return lo.Filter(r.Services, func(s ServiceResult, _ int) bool {
		return s.State == state
	})
}
