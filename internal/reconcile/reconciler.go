package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alexisbeaulieu97/lxsync/internal/logger"
	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
)

// Reconciler is the externally visible entry point: it observes, plans,
// executes and reports for a single instance per call. It is safe to reuse
// across calls; each call owns its own run context.
type Reconciler struct {
	client ControlPlane
	log    *logger.Logger

	// waitInterval is the address poll cadence. Tests shorten it.
	waitInterval time.Duration
}

// New creates a Reconciler over a control-plane client.
func New(client ControlPlane, log *logger.Logger) *Reconciler {
	return &Reconciler{
		client:       client,
		log:          log,
		waitInterval: time.Second,
	}
}

// Reconcile performs one pass toward spec. In dry-run mode the plan is
// computed and recorded but no mutating call is issued and the address wait
// is skipped.
//
// On failure the returned Result still carries everything accumulated up to
// the failing step: callers always learn which actions completed.
func (r *Reconciler) Reconcile(ctx context.Context, spec Spec, dryRun bool) (Result, error) {
	result := Result{
		RunID:   uuid.NewString(),
		Actions: []string{},
	}

	log := r.log.WithFields(map[string]any{"run_id": result.RunID, "instance": spec.Name})

	if spec.TrustPassword != "" {
		if err := r.client.Authenticate(ctx, spec.TrustPassword); err != nil {
			return result, err
		}
		log.Debug("authenticated with trust password")
	}

	observed, err := r.fetchInstance(ctx, spec.Name)
	if err != nil {
		return result, err
	}

	oldState := observedState(observed)
	result.OldState = oldState
	result.Diff.Before = DiffEntry{State: string(oldState), Instance: instanceSnapshot(observed)}
	result.Diff.After = DiffEntry{State: string(spec.State)}

	apply := observed != nil && needsApply(spec, observed)
	actions := plan(oldState, spec.State, apply)

	log.WithFields(map[string]any{
		"old_state": string(oldState),
		"state":     string(spec.State),
		"plan":      actionNames(actions),
		"dry_run":   dryRun,
	}).Debug("plan computed")

	pass := &run{
		spec:     spec,
		client:   r.client,
		log:      log,
		dryRun:   dryRun,
		observed: observed,
		actions:  []string{},
		diff:     result.Diff,
	}

	execErr := pass.execute(ctx, actions)
	result.Actions = pass.actions
	result.Diff = pass.diff
	result.Changed = len(result.Actions) > 0
	if execErr != nil {
		return result, execErr
	}

	if r.shouldAwaitAddresses(spec, dryRun) {
		addresses, err := awaitAddresses(ctx, r.client, spec.Name, spec.Timeout, r.waitInterval)
		if err != nil {
			return result, err
		}
		result.Addresses = addresses
	}

	log.WithFields(map[string]any{"changed": result.Changed, "actions": result.Actions}).Info("reconciliation complete")
	return result, nil
}

// fetchInstance observes current state exactly once per run. A not-found
// response is the normal absent signal, not a failure.
func (r *Reconciler) fetchInstance(ctx context.Context, name string) (*lxd.Instance, error) {
	inst, err := r.client.GetInstance(ctx, name)
	if err != nil {
		if lxd.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return inst, nil
}

// shouldAwaitAddresses: addresses are awaited only for start-like desired
// states, and never in dry-run since no real state will change.
func (r *Reconciler) shouldAwaitAddresses(spec Spec, dryRun bool) bool {
	if dryRun || !spec.WaitForAddresses {
		return false
	}
	return spec.State == StateStarted || spec.State == StateRestarted
}

func actionNames(actions []Action) []string {
	names := make([]string, len(actions))
	for i, action := range actions {
		names[i] = string(action)
	}
	return names
}
