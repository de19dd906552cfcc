package service

import (
	"testing"

	"github.com/Devliang24/tapb/internal/model"
)

func TestRequirementTransitions(t *testing.T) {
	all := []model.RequirementStatus{
		model.RequirementDraft,
		model.RequirementApproved,
		model.RequirementInProgress,
		model.RequirementCompleted,
		model.RequirementCancelled,
	}
	allowed := map[model.RequirementStatus][]model.RequirementStatus{
		model.RequirementDraft:      {model.RequirementApproved, model.RequirementCancelled},
		model.RequirementApproved:   {model.RequirementInProgress, model.RequirementCancelled},
		model.RequirementInProgress: {model.RequirementCompleted, model.RequirementCancelled},
		model.RequirementCompleted:  {},
		model.RequirementCancelled:  {},
	}
	for _, from := range all {
		for _, to := range all {
			err := ValidateRequirementTransition(from, to)
			want := from == to
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if want && err != nil {
				t.Errorf("%s -> %s: unexpected error %v", from, to, err)
			}
			if !want {
				if err == nil {
					t.Errorf("%s -> %s: expected rejection", from, to)
				} else if !IsKind(err, KindInvalidTransition) {
					t.Errorf("%s -> %s: wrong error kind: %v", from, to, err)
				}
			}
		}
	}
}

func TestSprintTransitions(t *testing.T) {
	all := []model.SprintStatus{model.SprintPlanning, model.SprintActive, model.SprintCompleted}
	allowed := map[model.SprintStatus]model.SprintStatus{
		model.SprintPlanning: model.SprintActive,
		model.SprintActive:   model.SprintCompleted,
	}
	for _, from := range all {
		for _, to := range all {
			err := ValidateSprintTransition(from, to)
			want := from == to || allowed[from] == to
			if want && err != nil {
				t.Errorf("%s -> %s: unexpected error %v", from, to, err)
			}
			if !want && err == nil {
				t.Errorf("%s -> %s: expected rejection", from, to)
			}
		}
	}
}

func TestSprintCannotSkipActive(t *testing.T) {
	if err := ValidateSprintTransition(model.SprintPlanning, model.SprintCompleted); err == nil {
		t.Fatal("planning -> completed should be rejected")
	}
}
