package service

import (
	"testing"

	"github.com/Devliang24/tapb/internal/model"
)

func TestBugCreateWritesInitialHistory(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewBugService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	bug, err := svc.Create(project.ID, BugCreate{Title: "crash", Description: "boom"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if want := FormatNumber(PrefixBug, bug.ID); bug.Number != want {
		t.Errorf("number = %q, want %q", bug.Number, want)
	}
	if bug.Status != model.BugNew {
		t.Errorf("status = %s, want new", bug.Status)
	}

	history, err := svc.History(bug.ID, user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history row on create, got %d", len(history))
	}
	if history[0].Field != "status" || history[0].OldValue != nil || *history[0].NewValue != "new" {
		t.Errorf("initial history = %+v, want status nil -> new", history[0])
	}
}

func TestBugUpdateHistory(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewBugService(db, access)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	bug, err := svc.Create(project.ID, BugCreate{Title: "crash", Description: "boom"}, user.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UpdateStatus(bug.ID, model.BugConfirmed, user.ID); err != nil {
		t.Fatalf("status update: %v", err)
	}
	// Same value again: no new history row.
	if _, err := svc.UpdateStatus(bug.ID, model.BugConfirmed, user.ID); err != nil {
		t.Fatalf("idempotent status update: %v", err)
	}

	history, err := svc.History(bug.ID, user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
	if *history[0].OldValue != "new" || *history[0].NewValue != "confirmed" {
		t.Errorf("latest change = %q -> %q, want new -> confirmed",
			*history[0].OldValue, *history[0].NewValue)
	}
}

func TestBugAssignHistory(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewBugService(db, access)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	project := seedProject(t, db, "APP", alice.ID, false)

	bug, err := svc.Create(project.ID, BugCreate{Title: "crash", Description: "boom"}, alice.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Assign(bug.ID, &bob.ID, alice.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	history, err := svc.History(bug.ID, alice.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected create + assign rows, got %d", len(history))
	}
	if history[0].Field != "assignee_id" || history[0].OldValue != nil {
		t.Errorf("assign change = %+v, want assignee_id nil -> id", history[0])
	}
}

func TestBugBatchUpdateStatusSkipsInaccessible(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewBugService(db, access)
	alice := seedUser(t, db, "alice")
	mallory := seedUser(t, db, "mallory")
	projectA := seedProject(t, db, "AAA", alice.ID, false)
	projectM := seedProject(t, db, "MMM", mallory.ID, false)

	reachable, err := svc.Create(projectM.ID, BugCreate{Title: "mine", Description: "x"}, mallory.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	unreachable, err := svc.Create(projectA.ID, BugCreate{Title: "private", Description: "x"}, alice.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.BatchUpdateStatus([]uint{reachable.ID, unreachable.ID}, model.BugConfirmed, mallory.ID)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	var reloaded model.Bug
	if err := db.First(&reloaded, unreachable.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != model.BugNew {
		t.Errorf("inaccessible bug status = %s, should be untouched", reloaded.Status)
	}
}

func TestBugBatchDeleteAllOrNothing(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewBugService(db, access)
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	project := seedProject(t, db, "APP", alice.ID, false)
	addMember(t, db, project.ID, bob.ID)

	bobs, err := svc.Create(project.ID, BugCreate{Title: "bob's", Description: "x"}, bob.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	alices, err := svc.Create(project.ID, BugCreate{Title: "alice's", Description: "x"}, alice.ID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Bob may not delete alice's bug, so the whole batch fails.
	err = svc.BatchDelete([]uint{bobs.ID, alices.ID}, bob.ID)
	if !IsKind(err, KindForbidden) {
		t.Fatalf("batch delete: got %v, want forbidden", err)
	}

	var count int64
	db.Model(&model.Bug{}).Where("id IN ?", []uint{bobs.ID, alices.ID}).Count(&count)
	if count != 2 {
		t.Errorf("bug count = %d, nothing should be deleted", count)
	}

	// The project creator can delete both.
	if err := svc.BatchDelete([]uint{bobs.ID, alices.ID}, alice.ID); err != nil {
		t.Fatalf("creator batch delete: %v", err)
	}
	db.Model(&model.Bug{}).Where("id IN ?", []uint{bobs.ID, alices.ID}).Count(&count)
	if count != 0 {
		t.Errorf("bug count = %d, want 0", count)
	}
}

func TestBugRejectsCrossProjectLinks(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewBugService(db, access)
	user := seedUser(t, db, "alice")
	projectA := seedProject(t, db, "AAA", user.ID, false)
	projectB := seedProject(t, db, "BBB", user.ID, false)

	sprint := &model.Sprint{ProjectID: projectB.ID, Number: "S1", Name: "other", Status: model.SprintActive, CreatorID: user.ID}
	if err := db.Create(sprint).Error; err != nil {
		t.Fatalf("seed sprint: %v", err)
	}

	_, err := svc.Create(projectA.ID, BugCreate{
		Title: "x", Description: "y", SprintID: &sprint.ID,
	}, user.ID)
	if !IsKind(err, KindValidation) {
		t.Errorf("cross-project sprint link: got %v, want validation error", err)
	}
}
