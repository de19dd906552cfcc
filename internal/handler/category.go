package handler

import (
	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categories *service.CategoryService
}

func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

type categoryRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	ParentID *uint  `json:"parent_id"`
}

// POST /projects/:id/requirement-categories
func (h *CategoryHandler) CreateRequirementCategory(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	category, err := h.categories.CreateRequirementCategory(projectID, req.Name, req.ParentID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, category)
}

// GET /projects/:id/requirement-categories
func (h *CategoryHandler) ListRequirementCategories(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	categories, err := h.categories.ListRequirementCategories(projectID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, categories)
}

// PUT /requirement-categories/:id
func (h *CategoryHandler) UpdateRequirementCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	category, err := h.categories.UpdateRequirementCategory(parseID(c.Param("id")), req.Name, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, category)
}

// DELETE /requirement-categories/:id
func (h *CategoryHandler) DeleteRequirementCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.categories.DeleteRequirementCategory(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// POST /projects/:id/testcase-categories
func (h *CategoryHandler) CreateTestCaseCategory(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	category, err := h.categories.CreateTestCaseCategory(projectID, req.Name, req.ParentID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, category)
}

// GET /projects/:id/testcase-categories
func (h *CategoryHandler) ListTestCaseCategories(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	categories, err := h.categories.ListTestCaseCategories(projectID, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, categories)
}

// PUT /testcase-categories/:id
func (h *CategoryHandler) UpdateTestCaseCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name string `json:"name" binding:"required,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	category, err := h.categories.UpdateTestCaseCategory(parseID(c.Param("id")), req.Name, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, category)
}

// DELETE /testcase-categories/:id
func (h *CategoryHandler) DeleteTestCaseCategory(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.categories.DeleteTestCaseCategory(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}
