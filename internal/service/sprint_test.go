package service

import (
	"testing"
	"time"

	"github.com/Devliang24/tapb/internal/model"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSprintCreateAndNumber(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewSprintService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	sprint, err := svc.Create(project.ID, SprintCreate{Name: "Sprint 1"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if want := FormatNumber(PrefixSprint, sprint.ID); sprint.Number != want {
		t.Errorf("number = %q, want %q", sprint.Number, want)
	}
	if sprint.Status != model.SprintPlanning {
		t.Errorf("status = %s, want planning", sprint.Status)
	}
	if sprint.CreatorID != user.ID {
		t.Errorf("creator_id = %d, want %d", sprint.CreatorID, user.ID)
	}

	var stored model.Sprint
	if err := db.First(&stored, sprint.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.CreatorID != user.ID {
		t.Errorf("stored creator_id = %d, want %d", stored.CreatorID, user.ID)
	}
}

func TestSprintOnlyCreatorMutates(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewSprintService(db, access)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	project := seedProject(t, db, "APP", alice.ID, false)
	addMember(t, db, project.ID, bob.ID)

	if _, err := svc.Create(project.ID, SprintCreate{Name: "s"}, bob.ID); !IsKind(err, KindForbidden) {
		t.Errorf("member create sprint: got %v, want forbidden", err)
	}

	sprint, err := svc.Create(project.ID, SprintCreate{Name: "s"}, alice.ID)
	if err != nil {
		t.Fatalf("creator create: %v", err)
	}
	name := "renamed"
	if _, err := svc.Update(sprint.ID, SprintUpdate{Name: &name}, bob.ID); !IsKind(err, KindForbidden) {
		t.Errorf("member update sprint: got %v, want forbidden", err)
	}
	// Members can still read.
	if _, err := svc.Get(sprint.ID, bob.ID); err != nil {
		t.Errorf("member get sprint: %v", err)
	}
}

func TestSprintTransitionAndFrozenDates(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewSprintService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	sprint, err := svc.Create(project.ID, SprintCreate{
		Name:      "s",
		StartDate: date(2025, 1, 1),
		EndDate:   date(2025, 1, 14),
	}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	completed := model.SprintCompleted
	if _, err := svc.Update(sprint.ID, SprintUpdate{Status: &completed}, user.ID); !IsKind(err, KindInvalidTransition) {
		t.Errorf("planning -> completed: got %v, want invalid transition", err)
	}

	active := model.SprintActive
	if _, err := svc.Update(sprint.ID, SprintUpdate{Status: &active}, user.ID); err != nil {
		t.Fatalf("planning -> active: %v", err)
	}
	if _, err := svc.Update(sprint.ID, SprintUpdate{Status: &completed}, user.ID); err != nil {
		t.Fatalf("active -> completed: %v", err)
	}

	// Completed sprints freeze their timebox.
	if _, err := svc.Update(sprint.ID, SprintUpdate{EndDate: date(2025, 2, 1)}, user.ID); !IsKind(err, KindFrozenField) {
		t.Errorf("date edit on completed sprint: got %v, want frozen field error", err)
	}
	// Other fields still editable.
	goal := "retro notes"
	if _, err := svc.Update(sprint.ID, SprintUpdate{Goal: &goal}, user.ID); err != nil {
		t.Errorf("goal edit on completed sprint: %v", err)
	}
}

func TestSprintHistoryRecorded(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewSprintService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	sprint, err := svc.Create(project.ID, SprintCreate{Name: "s"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	active := model.SprintActive
	if _, err := svc.Update(sprint.ID, SprintUpdate{Status: &active}, user.ID); err != nil {
		t.Fatalf("activate: %v", err)
	}

	history, err := svc.History(sprint.ID, user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history))
	}
	if *history[0].OldValue != "planning" || *history[0].NewValue != "active" {
		t.Errorf("change = %q -> %q, want planning -> active",
			*history[0].OldValue, *history[0].NewValue)
	}
}

func TestSprintDeleteNullsReferences(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewSprintService(db, access)
	requirements := NewRequirementService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	sprint, err := svc.Create(project.ID, SprintCreate{Name: "s"}, user.ID)
	if err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	requirement, err := requirements.Create(project.ID, RequirementCreate{
		Title:    "in sprint",
		SprintID: &sprint.ID,
	}, user.ID)
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}

	if err := svc.Delete(sprint.ID, user.ID); err != nil {
		t.Fatalf("delete sprint: %v", err)
	}

	var reloaded model.Requirement
	if err := db.First(&reloaded, requirement.ID).Error; err != nil {
		t.Fatalf("requirement should survive: %v", err)
	}
	if reloaded.SprintID != nil {
		t.Errorf("requirement sprint_id = %v, want nil", *reloaded.SprintID)
	}
}

func TestSprintRejectsInvertedDates(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewSprintService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	_, err := svc.Create(project.ID, SprintCreate{
		Name:      "s",
		StartDate: date(2025, 2, 1),
		EndDate:   date(2025, 1, 1),
	}, user.ID)
	if !IsKind(err, KindValidation) {
		t.Errorf("inverted dates: got %v, want validation error", err)
	}
}
