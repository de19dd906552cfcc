package handler

import (
	"time"

	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/model"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

type TaskHandler struct {
	tasks    *service.TaskService
	comments *service.CommentService
}

func NewTaskHandler(tasks *service.TaskService, comments *service.CommentService) *TaskHandler {
	return &TaskHandler{tasks: tasks, comments: comments}
}

// POST /requirements/:id/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	requirementID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Title       string     `json:"title" binding:"required,max=200"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		AssigneeID  *uint      `json:"assignee_id"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	task, err := h.tasks.Create(requirementID, service.TaskCreate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.RequirementPriority(req.Priority),
		AssigneeID:  req.AssigneeID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// GET /requirements/:id/tasks
func (h *TaskHandler) List(c *gin.Context) {
	requirementID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	tasks, err := h.tasks.List(requirementID, c.Query("status"), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	task, err := h.tasks.Get(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// PUT /tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		AssigneeID  *uint      `json:"assignee_id"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	in := service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Status != nil {
		st := model.TaskStatus(*req.Status)
		in.Status = &st
	}
	if req.Priority != nil {
		p := model.RequirementPriority(*req.Priority)
		in.Priority = &p
	}

	task, err := h.tasks.Update(parseID(c.Param("id")), in, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// DELETE /tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.tasks.Delete(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// GET /tasks/:id/history
func (h *TaskHandler) History(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	history, err := h.tasks.History(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, history)
}

// POST /tasks/:id/comments
func (h *TaskHandler) CreateComment(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	comment, err := h.comments.CreateTaskComment(parseID(c.Param("id")), req.Content, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comment)
}

// GET /tasks/:id/comments
func (h *TaskHandler) ListComments(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	comments, err := h.comments.ListTaskComments(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comments)
}

// DELETE /task-comments/:id
func (h *TaskHandler) DeleteComment(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.comments.DeleteTaskComment(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
