package reconcile

import (
	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
)

// DiffEntry is one side of the before/after record.
type DiffEntry struct {
	State    string         `json:"state,omitempty" yaml:"state,omitempty"`
	Instance map[string]any `json:"instance,omitempty" yaml:"instance,omitempty"`
}

// Diff is the human-auditable record of what the reconciler observed versus
// what it intends or did. Populated even in dry-run.
type Diff struct {
	Before DiffEntry `json:"before" yaml:"before"`
	After  DiffEntry `json:"after" yaml:"after"`
}

// Result is the outcome of one reconciliation pass. On failure the partial
// Result accumulated so far accompanies the error.
type Result struct {
	RunID     string              `json:"run_id" yaml:"run_id"`
	Changed   bool                `json:"changed" yaml:"changed"`
	OldState  ObservedState       `json:"old_state" yaml:"old_state"`
	Actions   []string            `json:"actions" yaml:"actions"`
	Diff      Diff                `json:"diff" yaml:"diff"`
	Addresses map[string][]string `json:"addresses,omitempty" yaml:"addresses,omitempty"`
}

// instanceSnapshot projects the mutable attribute subset of an observed
// instance for the before record. Volatile config keys are excluded.
func instanceSnapshot(inst *lxd.Instance) map[string]any {
	if inst == nil {
		return nil
	}
	return map[string]any{
		attrArchitecture: inst.Architecture,
		attrConfig:       filterVolatile(inst.Config),
		attrDevices:      inst.Devices,
		attrEphemeral:    inst.Ephemeral,
		attrProfiles:     inst.Profiles,
	}
}

// attributesSnapshot records the apply-config body for the after record.
func attributesSnapshot(attrs lxd.InstanceAttributes) map[string]any {
	return map[string]any{
		attrArchitecture: attrs.Architecture,
		attrConfig:       attrs.Config,
		attrDevices:      attrs.Devices,
		attrEphemeral:    attrs.Ephemeral,
		attrProfiles:     attrs.Profiles,
	}
}
