package reconcile

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/lxsync/internal/logger"
	"github.com/alexisbeaulieu97/lxsync/internal/lxd"
	lxsyncerrors "github.com/alexisbeaulieu97/lxsync/pkg/errors"
)

// run is the single mutable context threaded through one reconciliation
// pass. It owns the action log and the diff; nothing outside the pass sees
// it.
type run struct {
	spec     Spec
	client   ControlPlane
	log      *logger.Logger
	dryRun   bool
	observed *lxd.Instance // nil when absent

	actions []string
	diff    Diff
}

// execute runs the planned actions in order, aborting on the first failure.
// The action log accumulated so far is preserved for the failure report.
func (r *run) execute(ctx context.Context, actions []Action) error {
	for _, action := range actions {
		if err := r.apply(ctx, action); err != nil {
			return lxsyncerrors.NewExecutionError(string(action), err)
		}
		r.actions = append(r.actions, string(action))
		r.log.WithFields(map[string]any{"action": string(action), "dry_run": r.dryRun}).Info("action applied")
	}
	return nil
}

func (r *run) apply(ctx context.Context, action Action) error {
	switch action {
	case ActionCreate:
		return r.create(ctx)
	case ActionStart:
		return r.changeState(ctx, lxd.ActionStart, false)
	case ActionStop:
		return r.changeState(ctx, lxd.ActionStop, r.spec.ForceStop)
	case ActionRestart:
		return r.changeState(ctx, lxd.ActionRestart, r.spec.ForceStop)
	case ActionFreeze:
		return r.changeState(ctx, lxd.ActionFreeze, false)
	case ActionUnfreeze:
		return r.changeState(ctx, lxd.ActionUnfreeze, false)
	case ActionDelete:
		return r.delete(ctx)
	case ActionApplyConfig:
		return r.applyConfig(ctx)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func (r *run) create(ctx context.Context) error {
	if r.dryRun {
		return nil
	}

	req := lxd.CreateRequest{
		Name:         r.spec.Name,
		Architecture: r.spec.Architecture,
		Config:       r.spec.Config,
		Devices:      r.spec.Devices,
		Profiles:     r.spec.Profiles,
		Source:       r.spec.Source,
		Type:         r.spec.Type,
	}
	if r.spec.Ephemeral != nil {
		req.Ephemeral = *r.spec.Ephemeral
	}
	return r.client.CreateInstance(ctx, req, r.spec.Target)
}

func (r *run) changeState(ctx context.Context, action lxd.StateAction, force bool) error {
	if r.dryRun {
		return nil
	}
	return r.client.ChangeInstanceState(ctx, r.spec.Name, lxd.StateChange{
		Action:  action,
		Timeout: r.spec.timeoutSeconds(),
		Force:   force,
	})
}

func (r *run) delete(ctx context.Context) error {
	if r.dryRun {
		return nil
	}
	return r.client.DeleteInstance(ctx, r.spec.Name)
}

// applyConfig pushes the merged mutable attributes and records the body in
// the after record, dry-run included.
func (r *run) applyConfig(ctx context.Context) error {
	attrs := mergedAttributes(r.spec, r.observed)
	r.diff.After.Instance = attributesSnapshot(attrs)

	if r.dryRun {
		return nil
	}
	return r.client.UpdateInstance(ctx, r.spec.Name, attrs)
}
