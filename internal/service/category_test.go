package service

import (
	"testing"

	"github.com/Devliang24/tapb/internal/model"
)

func TestCategorySiblingOrder(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	categories := NewCategoryService(db, access)

	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	var roots []*model.RequirementCategory
	for _, name := range []string{"a", "b", "c"} {
		cat, err := categories.CreateRequirementCategory(project.ID, name, nil, user.ID)
		if err != nil {
			t.Fatalf("create root %s: %v", name, err)
		}
		roots = append(roots, cat)
	}
	for i, cat := range roots {
		if cat.Order != i {
			t.Errorf("root %q order = %d, want %d", cat.Name, cat.Order, i)
		}
	}

	// Children order independently of roots.
	child, err := categories.CreateRequirementCategory(project.ID, "a1", &roots[0].ID, user.ID)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if child.Order != 0 {
		t.Errorf("first child order = %d, want 0", child.Order)
	}
}

func TestCategoryDeleteSplicesChildren(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	categories := NewCategoryService(db, access)

	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	root, err := categories.CreateRequirementCategory(project.ID, "root", nil, user.ID)
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	mid, err := categories.CreateRequirementCategory(project.ID, "mid", &root.ID, user.ID)
	if err != nil {
		t.Fatalf("create mid: %v", err)
	}
	leaf, err := categories.CreateRequirementCategory(project.ID, "leaf", &mid.ID, user.ID)
	if err != nil {
		t.Fatalf("create leaf: %v", err)
	}

	requirement := &model.Requirement{
		ProjectID:  project.ID,
		CategoryID: &mid.ID,
		Number:     "R1",
		Title:      "filed under mid",
		Status:     model.RequirementDraft,
		Priority:   model.PriorityMedium,
		CreatorID:  user.ID,
	}
	if err := db.Create(requirement).Error; err != nil {
		t.Fatalf("create requirement: %v", err)
	}

	if err := categories.DeleteRequirementCategory(mid.ID, user.ID); err != nil {
		t.Fatalf("delete mid: %v", err)
	}

	// The leaf survives, reparented to the deleted node's parent.
	var reloadedLeaf model.RequirementCategory
	if err := db.First(&reloadedLeaf, leaf.ID).Error; err != nil {
		t.Fatalf("leaf should survive: %v", err)
	}
	if reloadedLeaf.ParentID == nil || *reloadedLeaf.ParentID != root.ID {
		t.Errorf("leaf parent = %v, want root %d", reloadedLeaf.ParentID, root.ID)
	}

	// The requirement survives uncategorized.
	var reloadedReq model.Requirement
	if err := db.First(&reloadedReq, requirement.ID).Error; err != nil {
		t.Fatalf("requirement should survive: %v", err)
	}
	if reloadedReq.CategoryID != nil {
		t.Errorf("requirement category = %v, want nil", *reloadedReq.CategoryID)
	}

	var gone int64
	db.Model(&model.RequirementCategory{}).Where("id = ?", mid.ID).Count(&gone)
	if gone != 0 {
		t.Error("mid category should be deleted")
	}
}

func TestCategoryDeleteRootPromotesChildrenToRoots(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	categories := NewCategoryService(db, access)

	user := seedUser(t, db, "alice")
	project := seedProject(t, db, "APP", user.ID, false)

	root, err := categories.CreateTestCaseCategory(project.ID, "root", nil, user.ID)
	if err != nil {
		t.Fatalf("create root: %v", err)
	}
	child, err := categories.CreateTestCaseCategory(project.ID, "child", &root.ID, user.ID)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}

	if err := categories.DeleteTestCaseCategory(root.ID, user.ID); err != nil {
		t.Fatalf("delete root: %v", err)
	}

	var reloaded model.TestCaseCategory
	if err := db.First(&reloaded, child.ID).Error; err != nil {
		t.Fatalf("child should survive: %v", err)
	}
	if reloaded.ParentID != nil {
		t.Errorf("child parent = %v, want nil (promoted to root)", *reloaded.ParentID)
	}
}

func TestCategoryRejectsForeignParent(t *testing.T) {
	db := openTestDB(t)
	access := NewAccessService(db)
	categories := NewCategoryService(db, access)

	user := seedUser(t, db, "alice")
	projectA := seedProject(t, db, "AAA", user.ID, false)
	projectB := seedProject(t, db, "BBB", user.ID, false)

	parent, err := categories.CreateRequirementCategory(projectA.ID, "root", nil, user.ID)
	if err != nil {
		t.Fatalf("create parent: %v", err)
	}
	_, err = categories.CreateRequirementCategory(projectB.ID, "cross", &parent.ID, user.ID)
	if !IsKind(err, KindValidation) {
		t.Errorf("cross-project parent: got %v, want validation error", err)
	}
}
