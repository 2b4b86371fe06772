package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
)

// ErrAddressTimeout is returned when the address wait deadline elapses
// before every network device reports an IPv4 address.
var ErrAddressTimeout = errors.New("timeout waiting for addresses")

// loopbackDevice is excluded from address readiness.
const loopbackDevice = "lo"

// ipv4Family is the address family the waiter collects.
const ipv4Family = "inet"

// awaitAddresses polls the instance's network state until every present
// non-loopback device reports at least one IPv4 address, or the timeout
// elapses. The poll is a cancellable deadline+interval loop: ctx
// cancellation and the deadline both end it.
func awaitAddresses(ctx context.Context, client ControlPlane, name string, timeout, interval time.Duration) (map[string][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrAddressTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
			state, err := client.GetInstanceState(ctx, name)
			if err != nil {
				return nil, err
			}

			addresses := ipv4Addresses(state.Network)
			if hasAllAddresses(addresses) {
				return addresses, nil
			}
		}
	}
}

// ipv4Addresses builds the device-to-address mapping, skipping loopback and
// non-IPv4 families. Devices without addresses keep an empty entry so
// readiness can see them.
func ipv4Addresses(network map[string]lxd.NetworkInterface) map[string][]string {
	addresses := make(map[string][]string, len(network))
	for device, iface := range network {
		if device == loopbackDevice {
			continue
		}
		var ips []string
		for _, addr := range iface.Addresses {
			if addr.Family == ipv4Family {
				ips = append(ips, addr.Address)
			}
		}
		addresses[device] = ips
	}
	return addresses
}

// hasAllAddresses applies the all-or-nothing readiness rule: at least one
// device, and no device without an address.
func hasAllAddresses(addresses map[string][]string) bool {
	if len(addresses) == 0 {
		return false
	}
	for _, ips := range addresses {
		if len(ips) == 0 {
			return false
		}
	}
	return true
}
