// Package lxd implements a minimal client for the LXD REST API, covering the
// instance lifecycle surface the reconciler needs: fetch, create, update,
// delete, state changes and trust-password authentication.
package lxd

// Instance is the metadata document returned by GET /1.0/instances/{name}.
type Instance struct {
	Name         string                       `json:"name"`
	Status       string                       `json:"status"`
	Architecture string                       `json:"architecture"`
	Config       map[string]string            `json:"config"`
	Devices      map[string]map[string]string `json:"devices"`
	Ephemeral    bool                         `json:"ephemeral"`
	Profiles     []string                     `json:"profiles"`
	Type         string                       `json:"type"`
}

// InstanceState is the runtime state document returned by
// GET /1.0/instances/{name}/state.
type InstanceState struct {
	Status  string                      `json:"status"`
	Network map[string]NetworkInterface `json:"network"`
}

// NetworkInterface describes one network device inside an instance.
type NetworkInterface struct {
	Addresses []NetworkAddress `json:"addresses"`
	Type      string           `json:"type"`
	State     string           `json:"state"`
}

// NetworkAddress is a single address bound to a network device.
type NetworkAddress struct {
	Family  string `json:"family"`
	Address string `json:"address"`
	Netmask string `json:"netmask"`
	Scope   string `json:"scope"`
}

// InstanceAttributes is the mutable attribute set accepted by
// PUT /1.0/instances/{name}. LXD treats the PUT body as a full replacement,
// so callers must send merged values, not just the changed subset.
type InstanceAttributes struct {
	Architecture string                       `json:"architecture,omitempty"`
	Config       map[string]string            `json:"config,omitempty"`
	Devices      map[string]map[string]string `json:"devices,omitempty"`
	Ephemeral    bool                         `json:"ephemeral"`
	Profiles     []string                     `json:"profiles,omitempty"`
}

// CreateRequest is the body for POST /1.0/instances. Source and Type are
// creation-only and never appear in InstanceAttributes.
type CreateRequest struct {
	Name         string                       `json:"name"`
	Architecture string                       `json:"architecture,omitempty"`
	Config       map[string]string            `json:"config,omitempty"`
	Devices      map[string]map[string]string `json:"devices,omitempty"`
	Ephemeral    bool                         `json:"ephemeral,omitempty"`
	Profiles     []string                     `json:"profiles,omitempty"`
	Source       map[string]any               `json:"source,omitempty"`
	Type         string                       `json:"type,omitempty"`
}

// StateAction is a lifecycle verb accepted by PUT /1.0/instances/{name}/state.
type StateAction string

const (
	ActionStart    StateAction = "start"
	ActionStop     StateAction = "stop"
	ActionRestart  StateAction = "restart"
	ActionFreeze   StateAction = "freeze"
	ActionUnfreeze StateAction = "unfreeze"
)

// StateChange is the body for PUT /1.0/instances/{name}/state.
type StateChange struct {
	Action  StateAction `json:"action"`
	Timeout int         `json:"timeout"`
	Force   bool        `json:"force,omitempty"`
}

// Instance status strings reported by the API.
const (
	StatusRunning = "Running"
	StatusStopped = "Stopped"
	StatusFrozen  = "Frozen"
)
