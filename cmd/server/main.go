package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Devliang24/tapb/internal/config"
	"github.com/Devliang24/tapb/internal/handler"
	"github.com/Devliang24/tapb/internal/model"
	"github.com/Devliang24/tapb/internal/router"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Database.DSN())
	default:
		dialector = mysql.Open(cfg.Database.DSN())
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("connect database: %v", err)
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
		log.Fatalf("auto migrate: %v", err)
	}

	if err := seedDemoProject(db); err != nil {
		log.Fatalf("seed demo project: %v", err)
	}

	// Services
	access := service.NewAccessService(db)
	projects := service.NewProjectService(db, access)
	requirements := service.NewRequirementService(db, access)
	sprints := service.NewSprintService(db, access)
	tasks := service.NewTaskService(db, access)
	bugs := service.NewBugService(db, access)
	testCases := service.NewTestCaseService(db, access)
	categories := service.NewCategoryService(db, access)
	comments := service.NewCommentService(db, access)
	users := service.NewUserService(db)

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.Default()

	router.Setup(r, router.Deps{
		DB:                 db,
		JWTSecret:          cfg.JWT.Secret,
		UserHandler:        handler.NewUserHandler(users),
		ProjectHandler:     handler.NewProjectHandler(projects),
		RequirementHandler: handler.NewRequirementHandler(requirements, comments),
		SprintHandler:      handler.NewSprintHandler(sprints),
		TaskHandler:        handler.NewTaskHandler(tasks, comments),
		BugHandler:         handler.NewBugHandler(bugs, comments),
		TestCaseHandler:    handler.NewTestCaseHandler(testCases),
		CategoryHandler:    handler.NewCategoryHandler(categories),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// seedDemoProject makes sure every installation has the public demo space.
// It is owned by a system user and cannot be deleted through the API.
func seedDemoProject(db *gorm.DB) error {
	var project model.Project
	err := db.Where("`key` = ?", "DEMO").First(&project).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var system model.User
	err = db.Where("username = ?", "system").First(&system).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		system = model.User{
			Username:     "system",
			Email:        "system@localhost",
			PasswordHash: "!",
			Role:         model.RoleAdmin,
		}
		err = db.Create(&system).Error
	}
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		project = model.Project{
			Name:        "Demo Project",
			Key:         "DEMO",
			Description: "A public example space everyone can explore.",
			IsPublic:    true,
			CreatorID:   system.ID,
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		owner := model.ProjectMember{ProjectID: project.ID, UserID: system.ID, Role: "owner"}
		return tx.Create(&owner).Error
	})
}
