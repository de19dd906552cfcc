package handler

import (
	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projects *service.ProjectService
}

func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// POST /projects
func (h *ProjectHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name        string `json:"name" binding:"required,max=100"`
		Key         string `json:"key" binding:"required,max=10"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
		MemberIDs   []uint `json:"member_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	project, err := h.projects.Create(service.ProjectCreate{
		Name:        req.Name,
		Key:         req.Key,
		Description: req.Description,
		IsPublic:    req.IsPublic,
		MemberIDs:   req.MemberIDs,
	}, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// GET /projects
func (h *ProjectHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePage(c)

	projects, total, err := h.projects.List(userID, page, pageSize)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessPaged(c, projects, total, page, pageSize)
}

// GET /projects/:id
func (h *ProjectHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	project, err := h.projects.GetByID(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// PUT /projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsPublic    *bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	project, err := h.projects.Update(parseID(c.Param("id")), service.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	}, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// DELETE /projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.projects.Delete(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// GET /projects/:id/members
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	members, err := h.projects.ListMembers(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, members)
}

// POST /projects/:id/members
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		UserID uint   `json:"user_id" binding:"required"`
		Role   string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}
	if req.Role == "" {
		req.Role = "member"
	}

	member, err := h.projects.AddMember(parseID(c.Param("id")), req.UserID, req.Role, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, member)
}

// PUT /projects/:id/members/:memberId
func (h *ProjectHandler) UpdateMemberRole(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	member, err := h.projects.UpdateMemberRole(parseID(c.Param("id")), parseID(c.Param("memberId")), req.Role, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, member)
}

// DELETE /projects/:id/members/:memberId
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.projects.RemoveMember(parseID(c.Param("id")), parseID(c.Param("memberId")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// GET /projects/:id/stats
func (h *ProjectHandler) Stats(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	stats, err := h.projects.Stats(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, stats)
}

// GET /projects/:id/search
func (h *ProjectHandler) Search(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	q := c.Query("q")
	if q == "" {
		BadRequest(c, 40001, "query is required")
		return
	}
	result, err := h.projects.Search(parseID(c.Param("id")), q, 20, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, result)
}
