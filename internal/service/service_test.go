package service

import (
	"fmt"
	"testing"

	"github.com/Devliang24/tapb/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&model.User{},
		&model.Project{},
		&model.ProjectMember{},
		&model.RequirementCategory{},
		&model.TestCaseCategory{},
		&model.Sprint{},
		&model.SprintHistory{},
		&model.Requirement{},
		&model.RequirementHistory{},
		&model.RequirementComment{},
		&model.Task{},
		&model.TaskHistory{},
		&model.TaskComment{},
		&model.Bug{},
		&model.BugHistory{},
		&model.BugComment{},
		&model.TestCase{},
		&model.TestCaseHistory{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "x",
		Role:         model.RoleDeveloper,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedProject(t *testing.T, db *gorm.DB, key string, creatorID uint, public bool) *model.Project {
	t.Helper()
	project := &model.Project{
		Name:      "Project " + key,
		Key:       key,
		IsPublic:  public,
		CreatorID: creatorID,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project %s: %v", key, err)
	}
	member := &model.ProjectMember{ProjectID: project.ID, UserID: creatorID, Role: "owner"}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("seed owner membership: %v", err)
	}
	return project
}

func addMember(t *testing.T, db *gorm.DB, projectID, userID uint) {
	t.Helper()
	member := &model.ProjectMember{ProjectID: projectID, UserID: userID, Role: "member"}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
}
