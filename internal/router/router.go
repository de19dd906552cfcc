package router

import (
	"github.com/Devliang24/tapb/internal/handler"
	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Deps struct {
	DB                 *gorm.DB
	JWTSecret          string
	UserHandler        *handler.UserHandler
	ProjectHandler     *handler.ProjectHandler
	RequirementHandler *handler.RequirementHandler
	SprintHandler      *handler.SprintHandler
	TaskHandler        *handler.TaskHandler
	BugHandler         *handler.BugHandler
	TestCaseHandler    *handler.TestCaseHandler
	CategoryHandler    *handler.CategoryHandler
}

func Setup(r *gin.Engine, deps Deps) {
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api/v1")

	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.DB))
	{
		// Users
		authed.GET("/users", deps.UserHandler.List)
		authed.GET("/users/me", deps.UserHandler.Me)
		authed.GET("/users/:id", deps.UserHandler.Get)

		// Projects. Creating projects and managing membership is reserved
		// for project managers; admins pass any role check.
		requirePM := middleware.RequireRole(model.RoleProjectManager)
		projects := authed.Group("/projects")
		{
			projects.POST("", requirePM, deps.ProjectHandler.Create)
			projects.GET("", deps.ProjectHandler.List)
			projects.GET("/:id", deps.ProjectHandler.Get)
			projects.PUT("/:id", deps.ProjectHandler.Update)
			projects.DELETE("/:id", deps.ProjectHandler.Delete)
			projects.GET("/:id/stats", deps.ProjectHandler.Stats)
			projects.GET("/:id/search", deps.ProjectHandler.Search)

			projects.GET("/:id/members", deps.ProjectHandler.ListMembers)
			projects.POST("/:id/members", requirePM, deps.ProjectHandler.AddMember)
			projects.PUT("/:id/members/:memberId", requirePM, deps.ProjectHandler.UpdateMemberRole)
			projects.DELETE("/:id/members/:memberId", requirePM, deps.ProjectHandler.RemoveMember)

			// Requirements under projects
			projects.POST("/:id/requirements", deps.RequirementHandler.Create)
			projects.GET("/:id/requirements", deps.RequirementHandler.List)

			// Sprints under projects
			projects.POST("/:id/sprints", deps.SprintHandler.Create)
			projects.GET("/:id/sprints", deps.SprintHandler.List)

			// Bugs under projects
			projects.POST("/:id/bugs", deps.BugHandler.Create)
			projects.GET("/:id/bugs", deps.BugHandler.List)

			// Test cases under projects
			projects.POST("/:id/testcases", deps.TestCaseHandler.Create)
			projects.GET("/:id/testcases", deps.TestCaseHandler.List)

			// Category trees
			projects.POST("/:id/requirement-categories", deps.CategoryHandler.CreateRequirementCategory)
			projects.GET("/:id/requirement-categories", deps.CategoryHandler.ListRequirementCategories)
			projects.POST("/:id/testcase-categories", deps.CategoryHandler.CreateTestCaseCategory)
			projects.GET("/:id/testcase-categories", deps.CategoryHandler.ListTestCaseCategories)
		}

		// Requirements (standalone)
		requirements := authed.Group("/requirements")
		{
			requirements.POST("/bulk/status", deps.RequirementHandler.BulkUpdateStatus)
			requirements.POST("/bulk/delete", deps.RequirementHandler.BulkDelete)
			requirements.GET("/:id", deps.RequirementHandler.Get)
			requirements.PUT("/:id", deps.RequirementHandler.Update)
			requirements.DELETE("/:id", deps.RequirementHandler.Delete)
			requirements.GET("/:id/history", deps.RequirementHandler.History)
			requirements.POST("/:id/comments", deps.RequirementHandler.CreateComment)
			requirements.GET("/:id/comments", deps.RequirementHandler.ListComments)
			requirements.POST("/:id/tasks", deps.TaskHandler.Create)
			requirements.GET("/:id/tasks", deps.TaskHandler.List)
		}
		authed.DELETE("/requirement-comments/:id", deps.RequirementHandler.DeleteComment)
		authed.PUT("/requirement-categories/:id", deps.CategoryHandler.UpdateRequirementCategory)
		authed.DELETE("/requirement-categories/:id", deps.CategoryHandler.DeleteRequirementCategory)

		// Sprints (standalone)
		sprints := authed.Group("/sprints")
		{
			sprints.GET("/:id", deps.SprintHandler.Get)
			sprints.PUT("/:id", deps.SprintHandler.Update)
			sprints.DELETE("/:id", deps.SprintHandler.Delete)
			sprints.GET("/:id/stats", deps.SprintHandler.Stats)
			sprints.GET("/:id/history", deps.SprintHandler.History)
		}

		// Tasks (standalone)
		tasks := authed.Group("/tasks")
		{
			tasks.GET("/:id", deps.TaskHandler.Get)
			tasks.PUT("/:id", deps.TaskHandler.Update)
			tasks.DELETE("/:id", deps.TaskHandler.Delete)
			tasks.GET("/:id/history", deps.TaskHandler.History)
			tasks.POST("/:id/comments", deps.TaskHandler.CreateComment)
			tasks.GET("/:id/comments", deps.TaskHandler.ListComments)
		}
		authed.DELETE("/task-comments/:id", deps.TaskHandler.DeleteComment)

		// Bugs (standalone)
		bugs := authed.Group("/bugs")
		{
			bugs.POST("/batch/status", deps.BugHandler.BatchUpdateStatus)
			bugs.POST("/batch/assign", deps.BugHandler.BatchAssign)
			bugs.POST("/batch/delete", deps.BugHandler.BatchDelete)
			bugs.GET("/:id", deps.BugHandler.Get)
			bugs.PUT("/:id", deps.BugHandler.Update)
			bugs.PUT("/:id/status", deps.BugHandler.UpdateStatus)
			bugs.PUT("/:id/assign", deps.BugHandler.Assign)
			bugs.DELETE("/:id", deps.BugHandler.Delete)
			bugs.GET("/:id/history", deps.BugHandler.History)
			bugs.POST("/:id/comments", deps.BugHandler.CreateComment)
			bugs.GET("/:id/comments", deps.BugHandler.ListComments)
		}
		authed.PUT("/bug-comments/:id", deps.BugHandler.UpdateComment)
		authed.DELETE("/bug-comments/:id", deps.BugHandler.DeleteComment)

		// Test cases (standalone)
		testcases := authed.Group("/testcases")
		{
			testcases.POST("/batch/delete", deps.TestCaseHandler.BatchDelete)
			testcases.GET("/:id", deps.TestCaseHandler.Get)
			testcases.PUT("/:id", deps.TestCaseHandler.Update)
			testcases.DELETE("/:id", deps.TestCaseHandler.Delete)
			testcases.GET("/:id/history", deps.TestCaseHandler.History)
		}
		authed.PUT("/testcase-categories/:id", deps.CategoryHandler.UpdateTestCaseCategory)
		authed.DELETE("/testcase-categories/:id", deps.CategoryHandler.DeleteTestCaseCategory)
	}
}
