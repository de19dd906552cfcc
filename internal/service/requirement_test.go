package service

import (
	"testing"

	"github.com/Devliang24/tapb/internal/model"
)

func TestRequirementNumberFollowsID(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewRequirementService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	first, err := svc.Create(project.ID, RequirementCreate{Title: "first"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if want := FormatNumber(PrefixRequirement, first.ID); first.Number != want {
		t.Errorf("number = %q, want %q", first.Number, want)
	}

	second, err := svc.Create(project.ID, RequirementCreate{Title: "second"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Number == second.Number {
		t.Error("numbers must be unique")
	}
	if second.Status != model.RequirementDraft {
		t.Errorf("new requirement status = %s, want draft", second.Status)
	}
	if second.Priority != model.PriorityMedium {
		t.Errorf("default priority = %s, want medium", second.Priority)
	}
}

func TestRequirementLifecycleHistory(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewRequirementService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	requirement, err := svc.Create(project.ID, RequirementCreate{Title: "feature"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []model.RequirementStatus{
		model.RequirementApproved,
		model.RequirementInProgress,
		model.RequirementCompleted,
	} {
		st := status
		if _, err := svc.Update(requirement.ID, RequirementUpdate{Status: &st}, user.ID); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	history, err := svc.History(requirement.ID, user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 history rows, got %d", len(history))
	}
	// Most recent first.
	if *history[0].NewValue != "completed" {
		t.Errorf("latest change new value = %q, want completed", *history[0].NewValue)
	}
	if *history[2].OldValue != "draft" || *history[2].NewValue != "approved" {
		t.Errorf("oldest change = %q -> %q, want draft -> approved",
			*history[2].OldValue, *history[2].NewValue)
	}
}

func TestRequirementFrozenWhenCompleted(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewRequirementService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	requirement, err := svc.Create(project.ID, RequirementCreate{Title: "feature"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, status := range []model.RequirementStatus{
		model.RequirementApproved, model.RequirementInProgress, model.RequirementCompleted,
	} {
		st := status
		if _, err := svc.Update(requirement.ID, RequirementUpdate{Status: &st}, user.ID); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	title := "renamed"
	_, err = svc.Update(requirement.ID, RequirementUpdate{Title: &title}, user.ID)
	if !IsKind(err, KindFrozenField) {
		t.Errorf("title edit on completed: got %v, want frozen field error", err)
	}

	// Completed is terminal.
	st := model.RequirementInProgress
	_, err = svc.Update(requirement.ID, RequirementUpdate{Status: &st}, user.ID)
	if !IsKind(err, KindInvalidTransition) {
		t.Errorf("reopen completed: got %v, want invalid transition", err)
	}

	// Assignee is not frozen.
	bob := seedUser(t, db, "bob")
	if _, err := svc.Update(requirement.ID, RequirementUpdate{AssigneeID: &bob.ID}, user.ID); err != nil {
		t.Errorf("assignee edit on completed should pass: %v", err)
	}
}

func TestRequirementRejectsCompletedSprint(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewRequirementService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	sprint := &model.Sprint{
		ProjectID: project.ID,
		Number:    "S1",
		Name:      "done sprint",
		Status:    model.SprintCompleted,
		CreatorID: user.ID,
	}
	if err := db.Create(sprint).Error; err != nil {
		t.Fatalf("seed sprint: %v", err)
	}

	_, err := svc.Create(project.ID, RequirementCreate{Title: "x", SprintID: &sprint.ID}, user.ID)
	if !IsKind(err, KindValidation) {
		t.Errorf("assign to completed sprint: got %v, want validation error", err)
	}
}

func TestRequirementBulkPartialFailure(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewRequirementService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	draft, err := svc.Create(project.ID, RequirementCreate{Title: "draft one"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cancelled, err := svc.Create(project.ID, RequirementCreate{Title: "cancelled one"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	st := model.RequirementCancelled
	if _, err := svc.Update(cancelled.ID, RequirementUpdate{Status: &st}, user.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// cancelled -> approved is illegal and must be skipped, not fatal.
	updated, err := svc.BulkUpdateStatus([]uint{draft.ID, cancelled.ID}, model.RequirementApproved, user.ID)
	if err != nil {
		t.Fatalf("bulk: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	var reloadedDraft model.Requirement
	if err := db.First(&reloadedDraft, draft.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloadedDraft.Status != model.RequirementApproved {
		t.Errorf("draft item status = %s, want approved", reloadedDraft.Status)
	}
	var reloadedCancelled model.Requirement
	if err := db.First(&reloadedCancelled, cancelled.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloadedCancelled.Status != model.RequirementCancelled {
		t.Errorf("cancelled item status = %s, should be untouched", reloadedCancelled.Status)
	}
}

func TestRequirementBulkDeleteSkipsForbidden(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewRequirementService(db, access)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	project := seedProject(t, db, "APP", alice.ID, false)
	addMember(t, db, project.ID, bob.ID)

	mine, err := svc.Create(project.ID, RequirementCreate{Title: "bob's"}, bob.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	theirs, err := svc.Create(project.ID, RequirementCreate{Title: "alice's"}, alice.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Bob is neither creator of "theirs" nor project creator.
	deleted, err := svc.BulkDelete([]uint{mine.ID, theirs.ID}, bob.ID)
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	var count int64
	db.Model(&model.Requirement{}).Where("id = ?", theirs.ID).Count(&count)
	if count != 1 {
		t.Error("alice's requirement should survive")
	}
}

func TestRequirementDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewRequirementService(db, access)
	tasks := NewTaskService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	requirement, err := svc.Create(project.ID, RequirementCreate{Title: "with children"}, user.ID)
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}
	task, err := tasks.Create(requirement.ID, TaskCreate{Title: "subtask"}, user.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	bug := &model.Bug{
		ProjectID:     project.ID,
		RequirementID: &requirement.ID,
		TaskID:        &task.ID,
		Number:        "B1",
		Title:         "linked bug",
		Description:   "x",
		Status:        model.BugNew,
		Priority:      model.BugPriorityMedium,
		Severity:      model.SeverityMajor,
		CreatorID:     user.ID,
	}
	if err := db.Create(bug).Error; err != nil {
		t.Fatalf("seed bug: %v", err)
	}

	if err := svc.Delete(requirement.ID, user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var count int64
	db.Model(&model.Task{}).Where("id = ?", task.ID).Count(&count)
	if count != 0 {
		t.Error("task should be deleted with its requirement")
	}

	var reloadedBug model.Bug
	if err := db.First(&reloadedBug, bug.ID).Error; err != nil {
		t.Fatalf("bug should survive: %v", err)
	}
	if reloadedBug.RequirementID != nil || reloadedBug.TaskID != nil {
		t.Errorf("bug references should be nulled, got req=%v task=%v",
			reloadedBug.RequirementID, reloadedBug.TaskID)
	}
}

func TestRequirementAccessDistinguishesNotFoundAndForbidden(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewRequirementService(db, access)
	alice := seedUser(t, db, "alice")
	mallory := seedUser(t, db, "mallory")
	project := seedProject(t, db, "APP", alice.ID, false)

	requirement, err := svc.Create(project.ID, RequirementCreate{Title: "private"}, alice.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.Get(requirement.ID, mallory.ID)
	if !IsKind(err, KindForbidden) {
		t.Errorf("outsider get: got %v, want forbidden", err)
	}
	_, err = svc.Get(99999, mallory.ID)
	if !IsKind(err, KindNotFound) {
		t.Errorf("missing requirement: got %v, want not found", err)
	}
}
