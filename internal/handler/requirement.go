package handler

import (
	"time"

	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/model"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

type RequirementHandler struct {
	requirements *service.RequirementService
	comments     *service.CommentService
}

func NewRequirementHandler(requirements *service.RequirementService, comments *service.CommentService) *RequirementHandler {
	return &RequirementHandler{requirements: requirements, comments: comments}
}

// POST /projects/:id/requirements
func (h *RequirementHandler) Create(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Title       string     `json:"title" binding:"required,max=200"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		SprintID    *uint      `json:"sprint_id"`
		CategoryID  *uint      `json:"category_id"`
		AssigneeID  *uint      `json:"assignee_id"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	requirement, err := h.requirements.Create(projectID, service.RequirementCreate{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.RequirementPriority(req.Priority),
		SprintID:    req.SprintID,
		CategoryID:  req.CategoryID,
		AssigneeID:  req.AssigneeID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, requirement)
}

// GET /projects/:id/requirements
func (h *RequirementHandler) List(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePage(c)

	filter := service.RequirementFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		SprintID:   queryUint(c, "sprint_id"),
		CategoryID: queryUint(c, "category_id"),
		Keyword:    c.Query("keyword"),
	}
	items, total, err := h.requirements.List(projectID, filter, page, pageSize, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessPaged(c, items, total, page, pageSize)
}

// GET /requirements/:id
func (h *RequirementHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	requirement, err := h.requirements.Get(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, requirement)
}

// PUT /requirements/:id
func (h *RequirementHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		SprintID    *uint      `json:"sprint_id"`
		CategoryID  *uint      `json:"category_id"`
		AssigneeID  *uint      `json:"assignee_id"`
		StartDate   *time.Time `json:"start_date"`
		EndDate     *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	in := service.RequirementUpdate{
		Title:       req.Title,
		Description: req.Description,
		SprintID:    req.SprintID,
		CategoryID:  req.CategoryID,
		AssigneeID:  req.AssigneeID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if req.Status != nil {
		st := model.RequirementStatus(*req.Status)
		in.Status = &st
	}
	if req.Priority != nil {
		p := model.RequirementPriority(*req.Priority)
		in.Priority = &p
	}

	requirement, err := h.requirements.Update(parseID(c.Param("id")), in, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, requirement)
}

// DELETE /requirements/:id
func (h *RequirementHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.requirements.Delete(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// POST /requirements/bulk/status
func (h *RequirementHandler) BulkUpdateStatus(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		IDs    []uint `json:"ids" binding:"required"`
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	updated, err := h.requirements.BulkUpdateStatus(req.IDs, model.RequirementStatus(req.Status), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"updated": updated})
}

// POST /requirements/bulk/delete
func (h *RequirementHandler) BulkDelete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	deleted, err := h.requirements.BulkDelete(req.IDs, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"deleted": deleted})
}

// GET /requirements/:id/history
func (h *RequirementHandler) History(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	history, err := h.requirements.History(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, history)
}

// POST /requirements/:id/comments
func (h *RequirementHandler) CreateComment(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	comment, err := h.comments.CreateRequirementComment(parseID(c.Param("id")), req.Content, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comment)
}

// GET /requirements/:id/comments
func (h *RequirementHandler) ListComments(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	comments, err := h.comments.ListRequirementComments(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comments)
}

// DELETE /requirement-comments/:id
func (h *RequirementHandler) DeleteComment(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.comments.DeleteRequirementComment(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
