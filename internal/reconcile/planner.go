package reconcile

// Action is one lifecycle operation in an execution plan. The string values
// are what the result's action log reports.
type Action string

const (
	ActionCreate      Action = "create"
	ActionStart       Action = "start"
	ActionStop        Action = "stop"
	ActionRestart     Action = "restart"
	ActionDelete      Action = "delete"
	ActionFreeze      Action = "freeze"
	ActionUnfreeze    Action = "unfreeze"
	ActionApplyConfig Action = "apply_container_configs"
)

// plan decides the ordered action sequence that converges observed state to
// the desired state. needsApply tells the planner whether at least one
// mutable attribute differs; the apply-config step is inserted only then,
// always before the terminal action of a transition, after any start needed
// to make the instance reconfigurable.
func plan(observed ObservedState, desired DesiredState, needsApply bool) []Action {
	switch desired {
	case StateStarted:
		return planStarted(observed, needsApply)
	case StateStopped:
		return planStopped(observed, needsApply)
	case StateRestarted:
		return planRestarted(observed, needsApply)
	case StateAbsent:
		return planAbsent(observed)
	case StateFrozen:
		return planFrozen(observed, needsApply)
	default:
		return nil
	}
}

func planStarted(observed ObservedState, needsApply bool) []Action {
	if observed == ObservedAbsent {
		return []Action{ActionCreate, ActionStart}
	}

	var actions []Action
	switch observed {
	case ObservedFrozen:
		actions = append(actions, ActionUnfreeze)
	case ObservedStopped:
		actions = append(actions, ActionStart)
	}
	if needsApply {
		actions = append(actions, ActionApplyConfig)
	}
	return actions
}

func planStopped(observed ObservedState, needsApply bool) []Action {
	switch observed {
	case ObservedAbsent:
		return []Action{ActionCreate}
	case ObservedStopped:
		// Most attributes cannot be applied to a stopped instance, so the
		// instance is briefly started, reconfigured, then re-stopped.
		if needsApply {
			return []Action{ActionStart, ActionApplyConfig, ActionStop}
		}
		return nil
	case ObservedFrozen:
		actions := []Action{ActionUnfreeze}
		if needsApply {
			actions = append(actions, ActionApplyConfig)
		}
		return append(actions, ActionStop)
	default:
		var actions []Action
		if needsApply {
			actions = append(actions, ActionApplyConfig)
		}
		return append(actions, ActionStop)
	}
}

func planRestarted(observed ObservedState, needsApply bool) []Action {
	if observed == ObservedAbsent {
		return []Action{ActionCreate, ActionStart}
	}

	var actions []Action
	if observed == ObservedFrozen {
		actions = append(actions, ActionUnfreeze)
	}
	if needsApply {
		actions = append(actions, ActionApplyConfig)
	}
	return append(actions, ActionRestart)
}

func planAbsent(observed ObservedState) []Action {
	if observed == ObservedAbsent {
		return nil
	}

	var actions []Action
	if observed == ObservedFrozen {
		actions = append(actions, ActionUnfreeze)
	}
	if observed != ObservedStopped {
		actions = append(actions, ActionStop)
	}
	return append(actions, ActionDelete)
}

func planFrozen(observed ObservedState, needsApply bool) []Action {
	if observed == ObservedAbsent {
		return []Action{ActionCreate, ActionStart, ActionFreeze}
	}

	var actions []Action
	if observed == ObservedStopped {
		actions = append(actions, ActionStart)
	}
	if needsApply {
		actions = append(actions, ActionApplyConfig)
	}
	// Freeze is re-issued even when already frozen; the API treats it as an
	// idempotent no-op.
	return append(actions, ActionFreeze)
}
