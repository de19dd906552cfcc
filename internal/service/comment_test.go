package service

import (
	"testing"
)

func TestExtractMentions(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewCommentService(db, access)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seedUser(t, db, "stranger")
	project := seedProject(t, db, "APP", alice.ID, false)
	addMember(t, db, project.ID, bob.ID)

	ids, err := svc.ExtractMentions("ping @bob and @alice, also @stranger and @ghost", project.ID)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	got := map[uint]bool{}
	for _, id := range ids {
		got[id] = true
	}
	if !got[alice.ID] || !got[bob.ID] {
		t.Errorf("ids = %v, want alice and bob", ids)
	}
	if len(ids) != 2 {
		t.Errorf("ids = %v; strangers and unknown names must be dropped", ids)
	}
}

func TestExtractMentionsBracketForm(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	svc := NewCommentService(db, access)

	alice := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", alice.ID, false)

	ids, err := svc.ExtractMentions("see @[alice] please", project.ID)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(ids) != 1 || ids[0] != alice.ID {
		t.Errorf("ids = %v, want [%d]", ids, alice.ID)
	}
}

func TestCommentAuthorOnlyDelete(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	comments := NewCommentService(db, access)
	bugs := NewBugService(db, access)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	project := seedProject(t, db, "APP", alice.ID, false)
	addMember(t, db, project.ID, bob.ID)

	bug, err := bugs.Create(project.ID, BugCreate{Title: "b", Description: "x"}, alice.ID)
	if err != nil {
		t.Fatalf("create bug: %v", err)
	}
	comment, err := comments.CreateBugComment(bug.ID, "looking into it", bob.ID)
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	// Even the project creator cannot delete someone else's comment.
	if err := comments.DeleteBugComment(comment.ID, alice.ID); !IsKind(err, KindForbidden) {
		t.Errorf("non-author delete: got %v, want forbidden", err)
	}
	if err := comments.DeleteBugComment(comment.ID, bob.ID); err != nil {
		t.Errorf("author delete: %v", err)
	}
}

func TestCommentStoresMentions(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	comments := NewCommentService(db, access)
	requirements := NewRequirementService(db, access)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	project := seedProject(t, db, "APP", alice.ID, false)
	addMember(t, db, project.ID, bob.ID)

	requirement, err := requirements.Create(project.ID, RequirementCreate{Title: "r"}, alice.ID)
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}
	comment, err := comments.CreateRequirementComment(requirement.ID, "cc @bob", alice.ID)
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if len(comment.MentionedUserIDs) != 1 || comment.MentionedUserIDs[0] != bob.ID {
		t.Errorf("mentions = %v, want [%d]", comment.MentionedUserIDs, bob.ID)
	}
}
