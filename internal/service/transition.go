package service

import "github.com/Devliang24/tapb/internal/model"

// Static transition tables: each status maps to the set of statuses reachable
// in one step. Terminal statuses map to the empty set. Self-loops are never
// listed; a request equal to the current status is a no-op, not a transition.

var requirementTransitions = map[model.RequirementStatus][]model.RequirementStatus{
	model.RequirementDraft:      {model.RequirementApproved, model.RequirementCancelled},
	model.RequirementApproved:   {model.RequirementInProgress, model.RequirementCancelled},
	model.RequirementInProgress: {model.RequirementCompleted, model.RequirementCancelled},
	model.RequirementCompleted:  {},
	model.RequirementCancelled:  {},
}

var sprintTransitions = map[model.SprintStatus][]model.SprintStatus{
	model.SprintPlanning:  {model.SprintActive},
	model.SprintActive:    {model.SprintCompleted},
	model.SprintCompleted: {},
}

func validateTransition[S ~string](table map[S][]S, current, requested S) error {
	if requested == current {
		return nil
	}
	for _, next := range table[current] {
		if next == requested {
			return nil
		}
	}
	return InvalidTransitionf("invalid status transition from %s to %s", current, requested)
}

func ValidateRequirementTransition(current, requested model.RequirementStatus) error {
	return validateTransition(requirementTransitions, current, requested)
}

func ValidateSprintTransition(current, requested model.SprintStatus) error {
	return validateTransition(sprintTransitions, current, requested)
}
