// Package config loads and validates the declarative instance spec document.
package config

// Document is the full lxsync spec file: one instance, its desired
// configuration and runtime state, and the server to reach.
//
// Attribute presence matters for reconciliation: a nil map/slice/pointer
// means the attribute was not declared and is never compared, while an
// explicitly empty collection is compared (empty is not absent).
type Document struct {
	Name         string                       `yaml:"name" validate:"required,instance_name"`
	State        string                       `yaml:"state,omitempty" validate:"omitempty,oneof=started stopped restarted absent frozen"`
	Type         string                       `yaml:"type,omitempty" validate:"omitempty,oneof=container virtual-machine"`
	Architecture string                       `yaml:"architecture,omitempty"`
	Config       map[string]string            `yaml:"config,omitempty"`
	Devices      map[string]map[string]string `yaml:"devices,omitempty"`
	Ephemeral    *bool                        `yaml:"ephemeral,omitempty"`
	Profiles     []string                     `yaml:"profiles,omitempty"`
	Source       map[string]any               `yaml:"source,omitempty"`
	Target       string                       `yaml:"target,omitempty"`
	Timeout      int                          `yaml:"timeout,omitempty" validate:"omitempty,min=1,max=3600"`

	WaitForIPv4Addresses bool `yaml:"wait_for_ipv4_addresses,omitempty"`
	ForceStop            bool `yaml:"force_stop,omitempty"`

	Server ServerSettings `yaml:"server,omitempty"`
}

// ServerSettings selects the LXD endpoint and credentials.
type ServerSettings struct {
	URL               string `yaml:"url,omitempty"`
	ClientCert        string `yaml:"client_cert,omitempty"`
	ClientKey         string `yaml:"client_key,omitempty"`
	TrustPassword     string `yaml:"trust_password,omitempty"`
	InstancesEndpoint string `yaml:"instances_endpoint,omitempty" validate:"omitempty,oneof=/instances /containers"`
}

// Defaults applied after parsing.
const (
	DefaultState   = "started"
	DefaultType    = "container"
	DefaultTimeout = 30
)
