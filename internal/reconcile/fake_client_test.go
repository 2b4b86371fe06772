package reconcile

import (
	"context"
	"fmt"
	"net/http"

	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
)

// fakeClient is an in-memory ControlPlane recording every mutating call.
type fakeClient struct {
	instance *lxd.Instance // nil means absent
	getErr   error

	states   []*lxd.InstanceState // consumed per GetInstanceState call
	stateErr error

	failAction string // mutating call name that should fail

	authenticated string
	mutations     []string
	createReq     *lxd.CreateRequest
	createTarget  string
	updated       *lxd.InstanceAttributes
	stateChanges  []lxd.StateChange
}

func notFoundErr() error {
	return &lxd.APIError{Code: http.StatusNotFound, Message: "not found"}
}

func (f *fakeClient) GetInstance(_ context.Context, _ string) (*lxd.Instance, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.instance == nil {
		return nil, notFoundErr()
	}
	return f.instance, nil
}

func (f *fakeClient) GetInstanceState(_ context.Context, _ string) (*lxd.InstanceState, error) {
	if f.stateErr != nil {
		return nil, f.stateErr
	}
	if len(f.states) == 0 {
		return &lxd.InstanceState{}, nil
	}
	state := f.states[0]
	if len(f.states) > 1 {
		f.states = f.states[1:]
	}
	return state, nil
}

func (f *fakeClient) record(name string) error {
	if f.failAction == name {
		return fmt.Errorf("injected %s failure", name)
	}
	f.mutations = append(f.mutations, name)
	return nil
}

func (f *fakeClient) CreateInstance(_ context.Context, req lxd.CreateRequest, target string) error {
	f.createReq = &req
	f.createTarget = target
	return f.record("create")
}

func (f *fakeClient) UpdateInstance(_ context.Context, _ string, attrs lxd.InstanceAttributes) error {
	f.updated = &attrs
	return f.record("update")
}

func (f *fakeClient) DeleteInstance(_ context.Context, _ string) error {
	return f.record("delete")
}

func (f *fakeClient) ChangeInstanceState(_ context.Context, _ string, change lxd.StateChange) error {
	if f.failAction == string(change.Action) {
		return fmt.Errorf("injected %s failure", change.Action)
	}
	f.stateChanges = append(f.stateChanges, change)
	f.mutations = append(f.mutations, string(change.Action))
	return nil
}

func (f *fakeClient) Authenticate(_ context.Context, password string) error {
	f.authenticated = password
	return nil
}
