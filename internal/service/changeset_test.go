package service

import (
	"strings"
	"testing"
	"time"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/gorm"
)

func TestChangesetSkipsUnchanged(t *testing.T) {
	cs := NewChangeset()
	cs.Set("title", "same", "same")
	cs.Set("status", model.RequirementDraft, model.RequirementDraft)
	if !cs.Empty() {
		t.Fatalf("expected empty changeset, got %d changes", len(cs.Changes()))
	}
}

func TestChangesetRecordsChange(t *testing.T) {
	cs := NewChangeset()
	cs.Set("status", model.RequirementDraft, model.RequirementApproved)

	changes := cs.Changes()
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	ch := changes[0]
	if ch.Field != "status" || *ch.OldValue != "draft" || *ch.NewValue != "approved" {
		t.Errorf("unexpected change: %+v", ch)
	}
	if got := cs.Updates()["status"]; got != model.RequirementApproved {
		t.Errorf("updates map holds %v, want native enum value", got)
	}
}

func TestChangesetNilToValue(t *testing.T) {
	cs := NewChangeset()
	var old *uint
	sprintID := uint(5)
	cs.Set("sprint_id", old, &sprintID)

	changes := cs.Changes()
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].OldValue != nil {
		t.Errorf("old value should be nil, got %q", *changes[0].OldValue)
	}
	if *changes[0].NewValue != "5" {
		t.Errorf("new value = %q, want 5", *changes[0].NewValue)
	}
}

func TestChangesetClipsLongValues(t *testing.T) {
	long := strings.Repeat("a", 400)
	cs := NewChangeset()
	cs.Set("description", "", long)

	changes := cs.Changes()
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if len(*changes[0].NewValue) != historyValueMax {
		t.Errorf("new value length = %d, want %d", len(*changes[0].NewValue), historyValueMax)
	}
	// The stored column value keeps the full text.
	if cs.Updates()["description"] != long {
		t.Error("updates map should keep the unclipped value")
	}
}

func TestStringifyDates(t *testing.T) {
	d := time.Date(2025, 3, 9, 15, 4, 5, 0, time.UTC)
	if got := Stringify(d); *got != "2025-03-09" {
		t.Errorf("Stringify(time) = %q, want date only", *got)
	}
	if got := Stringify(&d); *got != "2025-03-09" {
		t.Errorf("Stringify(*time) = %q, want date only", *got)
	}
	var nilTime *time.Time
	if got := Stringify(nilTime); got != nil {
		t.Errorf("Stringify(nil *time) = %q, want nil", *got)
	}
}

func TestStringifyEnums(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{model.RequirementInProgress, "in_progress"},
		{model.PriorityMedium, "medium"},
		{model.SprintActive, "active"},
		{model.TaskDone, "done"},
		{model.BugReopened, "reopened"},
		{model.SeverityBlocker, "blocker"},
		{model.EnvProduction, "production"},
		{model.CauseCodeError, "code_error"},
		{model.CaseRegression, "regression"},
		{model.CaseNotExecuted, "not_executed"},
		{uint(12), "12"},
	}
	for _, c := range cases {
		got := Stringify(c.in)
		if got == nil || *got != c.want {
			t.Errorf("Stringify(%v) = %v, want %q", c.in, got, c.want)
		}
	}
	if got := Stringify(nil); got != nil {
		t.Errorf("Stringify(nil) = %q, want nil", *got)
	}
}

func TestChangesetApplyWritesHistory(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	requirement := &model.Requirement{
		ProjectID: project.ID,
		Number:    "R1",
		Title:     "old title",
		Status:    model.RequirementDraft,
		Priority:  model.PriorityMedium,
		CreatorID: user.ID,
	}
	if err := db.Create(requirement).Error; err != nil {
		t.Fatalf("create requirement: %v", err)
	}

	cs := NewChangeset()
	cs.Set("title", requirement.Title, "new title")
	cs.Set("status", requirement.Status, model.RequirementApproved)

	now := time.Now().UTC()
	err := db.Transaction(func(tx *gorm.DB) error {
		return cs.Apply(tx, requirement, func(ch FieldChange) interface{} {
			return &model.RequirementHistory{
				RequirementID: requirement.ID,
				Field:         ch.Field,
				OldValue:      ch.OldValue,
				NewValue:      ch.NewValue,
				ChangedBy:     user.ID,
				ChangedAt:     now,
			}
		})
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	var reloaded model.Requirement
	if err := db.First(&reloaded, requirement.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Title != "new title" || reloaded.Status != model.RequirementApproved {
		t.Errorf("columns not updated: %+v", reloaded)
	}

	var history []model.RequirementHistory
	if err := db.Where("requirement_id = ?", requirement.ID).Find(&history).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(history))
	}
}
