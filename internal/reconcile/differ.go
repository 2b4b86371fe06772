package reconcile

import (
	"reflect"
	"slices"
	"strings"

	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
)

// volatilePrefix namespaces config keys owned by the server. They never
// trigger a diff and are never overwritten.
const volatilePrefix = "volatile."

// mutable attribute names. Source and type are creation-only and are never
// reconciled against an existing instance.
const (
	attrArchitecture = "architecture"
	attrConfig       = "config"
	attrDevices      = "devices"
	attrEphemeral    = "ephemeral"
	attrProfiles     = "profiles"
)

var mutableAttributes = []string{attrArchitecture, attrConfig, attrDevices, attrEphemeral, attrProfiles}

// needsChange reports whether one mutable attribute differs between the
// declared spec and the observed instance. Undeclared attributes never
// differ.
func needsChange(spec Spec, observed *lxd.Instance, attr string) bool {
	switch attr {
	case attrArchitecture:
		return spec.Architecture != "" && spec.Architecture != observed.Architecture
	case attrConfig:
		return spec.Config != nil && configDiffers(spec.Config, observed.Config)
	case attrDevices:
		return spec.Devices != nil && !devicesEqual(spec.Devices, observed.Devices)
	case attrEphemeral:
		return spec.Ephemeral != nil && *spec.Ephemeral != observed.Ephemeral
	case attrProfiles:
		return spec.Profiles != nil && !slices.Equal(spec.Profiles, observed.Profiles)
	default:
		return false
	}
}

// needsApply reports whether any mutable attribute must be pushed.
func needsApply(spec Spec, observed *lxd.Instance) bool {
	for _, attr := range mutableAttributes {
		if needsChange(spec, observed, attr) {
			return true
		}
	}
	return false
}

// configDiffers applies the per-key superset rule: a desired key missing
// from the observed map (volatile keys filtered out) or carrying a
// different value is a diff. Observed keys absent from desired never are.
func configDiffers(desired, observed map[string]string) bool {
	current := filterVolatile(observed)
	for key, want := range desired {
		got, ok := current[key]
		if !ok || got != want {
			return true
		}
	}
	return false
}

func devicesEqual(desired, observed map[string]map[string]string) bool {
	if len(desired) != len(observed) {
		return false
	}
	for name, want := range desired {
		got, ok := observed[name]
		if !ok || !reflect.DeepEqual(normalizeDevice(want), normalizeDevice(got)) {
			return false
		}
	}
	return true
}

func normalizeDevice(device map[string]string) map[string]string {
	if device == nil {
		return map[string]string{}
	}
	return device
}

// filterVolatile returns a copy of config without server-managed keys.
func filterVolatile(config map[string]string) map[string]string {
	filtered := make(map[string]string, len(config))
	for key, value := range config {
		if strings.HasPrefix(key, volatilePrefix) {
			continue
		}
		filtered[key] = value
	}
	return filtered
}

// mergedAttributes builds the full PUT body for apply-config: observed
// values for every mutable attribute, overlaid with declared values where
// they differ. The config overlay is per key, so volatile and undeclared
// observed keys survive untouched.
func mergedAttributes(spec Spec, observed *lxd.Instance) lxd.InstanceAttributes {
	attrs := lxd.InstanceAttributes{
		Architecture: observed.Architecture,
		Config:       cloneConfig(observed.Config),
		Devices:      cloneDevices(observed.Devices),
		Ephemeral:    observed.Ephemeral,
		Profiles:     slices.Clone(observed.Profiles),
	}

	if needsChange(spec, observed, attrArchitecture) {
		attrs.Architecture = spec.Architecture
	}
	if needsChange(spec, observed, attrConfig) {
		if attrs.Config == nil {
			attrs.Config = make(map[string]string, len(spec.Config))
		}
		for key, value := range spec.Config {
			attrs.Config[key] = value
		}
	}
	if needsChange(spec, observed, attrDevices) {
		attrs.Devices = cloneDevices(spec.Devices)
	}
	if needsChange(spec, observed, attrEphemeral) {
		attrs.Ephemeral = *spec.Ephemeral
	}
	if needsChange(spec, observed, attrProfiles) {
		attrs.Profiles = slices.Clone(spec.Profiles)
	}

	return attrs
}

func cloneConfig(config map[string]string) map[string]string {
	if config == nil {
		return nil
	}
	cloned := make(map[string]string, len(config))
	for key, value := range config {
		cloned[key] = value
	}
	return cloned
}

func cloneDevices(devices map[string]map[string]string) map[string]map[string]string {
	if devices == nil {
		return nil
	}
	cloned := make(map[string]map[string]string, len(devices))
	for name, device := range devices {
		inner := make(map[string]string, len(device))
		for key, value := range device {
			inner[key] = value
		}
		cloned[name] = inner
	}
	return cloned
}
