package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
)

func TestAwaitAddressesSucceedsWhenAllDevicesReady(t *testing.T) {
	t.Parallel()

	client := &fakeClient{states: []*lxd.InstanceState{
		{Network: map[string]lxd.NetworkInterface{
			"lo":   {Addresses: []lxd.NetworkAddress{{Family: "inet", Address: "127.0.0.1"}}},
			"eth0": {Addresses: []lxd.NetworkAddress{{Family: "inet", Address: "10.0.0.5"}}},
			"eth1": {Addresses: []lxd.NetworkAddress{{Family: "inet", Address: "192.168.1.7"}}},
		}},
	}}

	addresses, err := awaitAddresses(context.Background(), client, "web01", time.Second, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"eth0": {"10.0.0.5"},
		"eth1": {"192.168.1.7"},
	}, addresses)
}

func TestAwaitAddressesBlocksOnPartiallyPopulatedDevices(t *testing.T) {
	t.Parallel()

	// eth1 never gets an address: all-or-nothing readiness must time out
	// even though eth0 is ready.
	client := &fakeClient{states: []*lxd.InstanceState{
		{Network: map[string]lxd.NetworkInterface{
			"eth0": {Addresses: []lxd.NetworkAddress{{Family: "inet", Address: "10.0.0.5"}}},
			"eth1": {},
		}},
	}}

	_, err := awaitAddresses(context.Background(), client, "web01", 15*time.Millisecond, time.Millisecond)
	require.ErrorIs(t, err, ErrAddressTimeout)
}

func TestAwaitAddressesTimesOutWithNoDevices(t *testing.T) {
	t.Parallel()

	client := &fakeClient{states: []*lxd.InstanceState{{}}}

	_, err := awaitAddresses(context.Background(), client, "web01", 15*time.Millisecond, time.Millisecond)
	require.ErrorIs(t, err, ErrAddressTimeout)
}

func TestAwaitAddressesIgnoresNonIPv4Families(t *testing.T) {
	t.Parallel()

	client := &fakeClient{states: []*lxd.InstanceState{
		{Network: map[string]lxd.NetworkInterface{
			"eth0": {Addresses: []lxd.NetworkAddress{{Family: "inet6", Address: "fe80::1"}}},
		}},
	}}

	_, err := awaitAddresses(context.Background(), client, "web01", 15*time.Millisecond, time.Millisecond)
	require.ErrorIs(t, err, ErrAddressTimeout)
}

func TestAwaitAddressesPropagatesFetchErrors(t *testing.T) {
	t.Parallel()

	client := &fakeClient{stateErr: errors.New("connection refused")}

	_, err := awaitAddresses(context.Background(), client, "web01", time.Second, time.Millisecond)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAddressTimeout)
}

func TestAwaitAddressesRespectsCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &fakeClient{}
	_, err := awaitAddresses(ctx, client, "web01", time.Second, time.Millisecond)
	require.ErrorIs(t, err, context.Canceled)
}
