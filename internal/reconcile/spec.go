// Package reconcile converges one LXD instance toward a declared target
// state, minimizing and reporting the changes it makes. One call to
// Reconciler.Reconcile performs a single pass: observe, plan, execute,
// report.
package reconcile

import (
	"context"
	"time"

	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
)

// DesiredState is the caller's declared target for the instance.
type DesiredState string

const (
	StateStarted   DesiredState = "started"
	StateStopped   DesiredState = "stopped"
	StateRestarted DesiredState = "restarted"
	StateAbsent    DesiredState = "absent"
	StateFrozen    DesiredState = "frozen"
)

// ObservedState is the instance's runtime status as last fetched, expressed
// in the same vocabulary the result reports.
type ObservedState string

const (
	ObservedStarted ObservedState = "started"
	ObservedStopped ObservedState = "stopped"
	ObservedFrozen  ObservedState = "frozen"
	ObservedAbsent  ObservedState = "absent"
)

// Spec is the immutable desired specification for one instance. Nil maps,
// slices and pointers mean "not declared, never compare"; explicitly empty
// collections are compared.
type Spec struct {
	Name         string
	Architecture string
	Config       map[string]string
	Devices      map[string]map[string]string
	Ephemeral    *bool
	Profiles     []string
	Source       map[string]any
	Type         string
	Target       string

	State            DesiredState
	Timeout          time.Duration
	WaitForAddresses bool
	ForceStop        bool

	// TrustPassword, when set, triggers authentication before the first
	// fetch.
	TrustPassword string
}

// timeoutSeconds is the state-change budget forwarded to the API.
func (s Spec) timeoutSeconds() int {
	return int(s.Timeout / time.Second)
}

// ControlPlane is the slice of the LXD client the reconciler consumes.
// *lxd.Client satisfies it; tests substitute fakes.
type ControlPlane interface {
	GetInstance(ctx context.Context, name string) (*lxd.Instance, error)
	GetInstanceState(ctx context.Context, name string) (*lxd.InstanceState, error)
	CreateInstance(ctx context.Context, req lxd.CreateRequest, target string) error
	UpdateInstance(ctx context.Context, name string, attrs lxd.InstanceAttributes) error
	DeleteInstance(ctx context.Context, name string) error
	ChangeInstanceState(ctx context.Context, name string, change lxd.StateChange) error
	Authenticate(ctx context.Context, password string) error
}

// observedState maps an API status (or a missing instance) to the
// reconciler's vocabulary.
func observedState(inst *lxd.Instance) ObservedState {
	if inst == nil {
		return ObservedAbsent
	}
	switch inst.Status {
	case lxd.StatusRunning:
		return ObservedStarted
	case lxd.StatusFrozen:
		return ObservedFrozen
	default:
		return ObservedStopped
	}
}
