package handler

import (
	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/model"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

type BugHandler struct {
	bugs     *service.BugService
	comments *service.CommentService
}

func NewBugHandler(bugs *service.BugService, comments *service.CommentService) *BugHandler {
	return &BugHandler{bugs: bugs, comments: comments}
}

// POST /projects/:id/bugs
func (h *BugHandler) Create(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Title         string  `json:"title" binding:"required,max=200"`
		Description   string  `json:"description" binding:"required"`
		Priority      string  `json:"priority"`
		Severity      string  `json:"severity"`
		Environment   *string `json:"environment"`
		DefectCause   *string `json:"defect_cause"`
		SprintID      *uint   `json:"sprint_id"`
		RequirementID *uint   `json:"requirement_id"`
		TaskID        *uint   `json:"task_id"`
		TestCaseID    *uint   `json:"testcase_id"`
		AssigneeID    *uint   `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	in := service.BugCreate{
		Title:         req.Title,
		Description:   req.Description,
		Priority:      model.BugPriority(req.Priority),
		Severity:      model.BugSeverity(req.Severity),
		SprintID:      req.SprintID,
		RequirementID: req.RequirementID,
		TaskID:        req.TaskID,
		TestCaseID:    req.TestCaseID,
		AssigneeID:    req.AssigneeID,
	}
	if req.Environment != nil {
		env := model.BugEnvironment(*req.Environment)
		in.Environment = &env
	}
	if req.DefectCause != nil {
		cause := model.BugCause(*req.DefectCause)
		in.DefectCause = &cause
	}

	bug, err := h.bugs.Create(projectID, in, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, bug)
}

// GET /projects/:id/bugs
func (h *BugHandler) List(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePage(c)

	filter := service.BugFilter{
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Severity:   c.Query("severity"),
		SprintID:   queryUint(c, "sprint_id"),
		AssigneeID: queryUint(c, "assignee_id"),
		Keyword:    c.Query("keyword"),
	}
	bugs, total, err := h.bugs.List(projectID, filter, page, pageSize, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessPaged(c, bugs, total, page, pageSize)
}

// GET /bugs/:id
func (h *BugHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	bug, err := h.bugs.Get(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, bug)
}

// PUT /bugs/:id
func (h *BugHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Title         *string `json:"title"`
		Description   *string `json:"description"`
		Status        *string `json:"status"`
		Priority      *string `json:"priority"`
		Severity      *string `json:"severity"`
		Environment   *string `json:"environment"`
		DefectCause   *string `json:"defect_cause"`
		SprintID      *uint   `json:"sprint_id"`
		RequirementID *uint   `json:"requirement_id"`
		TaskID        *uint   `json:"task_id"`
		AssigneeID    *uint   `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	in := service.BugUpdate{
		Title:         req.Title,
		Description:   req.Description,
		SprintID:      req.SprintID,
		RequirementID: req.RequirementID,
		TaskID:        req.TaskID,
		AssigneeID:    req.AssigneeID,
	}
	if req.Status != nil {
		st := model.BugStatus(*req.Status)
		in.Status = &st
	}
	if req.Priority != nil {
		p := model.BugPriority(*req.Priority)
		in.Priority = &p
	}
	if req.Severity != nil {
		sev := model.BugSeverity(*req.Severity)
		in.Severity = &sev
	}
	if req.Environment != nil {
		env := model.BugEnvironment(*req.Environment)
		in.Environment = &env
	}
	if req.DefectCause != nil {
		cause := model.BugCause(*req.DefectCause)
		in.DefectCause = &cause
	}

	bug, err := h.bugs.Update(parseID(c.Param("id")), in, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, bug)
}

// PUT /bugs/:id/status
func (h *BugHandler) UpdateStatus(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	bug, err := h.bugs.UpdateStatus(parseID(c.Param("id")), model.BugStatus(req.Status), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, bug)
}

// PUT /bugs/:id/assign
func (h *BugHandler) Assign(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		AssigneeID *uint `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	bug, err := h.bugs.Assign(parseID(c.Param("id")), req.AssigneeID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, bug)
}

// POST /bugs/batch/status
func (h *BugHandler) BatchUpdateStatus(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		IDs    []uint `json:"ids" binding:"required"`
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	updated, err := h.bugs.BatchUpdateStatus(req.IDs, model.BugStatus(req.Status), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"updated": updated})
}

// POST /bugs/batch/assign
func (h *BugHandler) BatchAssign(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		IDs        []uint `json:"ids" binding:"required"`
		AssigneeID *uint  `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	updated, err := h.bugs.BatchAssign(req.IDs, req.AssigneeID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"updated": updated})
}

// POST /bugs/batch/delete
func (h *BugHandler) BatchDelete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	if err := h.bugs.BatchDelete(req.IDs, userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"deleted": len(req.IDs)})
}

// DELETE /bugs/:id
func (h *BugHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.bugs.Delete(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// GET /bugs/:id/history
func (h *BugHandler) History(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	history, err := h.bugs.History(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, history)
}

// POST /bugs/:id/comments
func (h *BugHandler) CreateComment(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	comment, err := h.comments.CreateBugComment(parseID(c.Param("id")), req.Content, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comment)
}

// GET /bugs/:id/comments
func (h *BugHandler) ListComments(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	comments, err := h.comments.ListBugComments(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comments)
}

// PUT /bug-comments/:id
func (h *BugHandler) UpdateComment(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	comment, err := h.comments.UpdateBugComment(parseID(c.Param("id")), req.Content, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, comment)
}

// DELETE /bug-comments/:id
func (h *BugHandler) DeleteComment(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.comments.DeleteBugComment(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
