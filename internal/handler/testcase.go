package handler

import (
	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/model"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

type TestCaseHandler struct {
	testCases *service.TestCaseService
}

func NewTestCaseHandler(testCases *service.TestCaseService) *TestCaseHandler {
	return &TestCaseHandler{testCases: testCases}
}

// POST /projects/:id/testcases
func (h *TestCaseHandler) Create(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name           string `json:"name" binding:"required,max=200"`
		Type           string `json:"type"`
		Priority       string `json:"priority"`
		CategoryID     *uint  `json:"category_id"`
		RequirementID  *uint  `json:"requirement_id"`
		SprintID       *uint  `json:"sprint_id"`
		Module         string `json:"module"`
		Feature        string `json:"feature"`
		Precondition   string `json:"precondition"`
		Steps          string `json:"steps"`
		TestData       string `json:"test_data"`
		ExpectedResult string `json:"expected_result"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	testCase, err := h.testCases.Create(projectID, service.TestCaseCreate{
		Name:           req.Name,
		Type:           model.TestCaseType(req.Type),
		Priority:       model.RequirementPriority(req.Priority),
		CategoryID:     req.CategoryID,
		RequirementID:  req.RequirementID,
		SprintID:       req.SprintID,
		Module:         req.Module,
		Feature:        req.Feature,
		Precondition:   req.Precondition,
		Steps:          req.Steps,
		TestData:       req.TestData,
		ExpectedResult: req.ExpectedResult,
	}, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, testCase)
}

// GET /projects/:id/testcases
func (h *TestCaseHandler) List(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)
	page, pageSize := parsePage(c)

	filter := service.TestCaseFilter{
		Status:     c.Query("status"),
		Type:       c.Query("type"),
		Priority:   c.Query("priority"),
		CategoryID: queryUint(c, "category_id"),
		Keyword:    c.Query("keyword"),
	}
	cases, total, err := h.testCases.List(projectID, filter, page, pageSize, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	SuccessPaged(c, cases, total, page, pageSize)
}

// GET /testcases/:id
func (h *TestCaseHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	testCase, err := h.testCases.Get(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, testCase)
}

// PUT /testcases/:id
func (h *TestCaseHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name           *string `json:"name"`
		Type           *string `json:"type"`
		Status         *string `json:"status"`
		Priority       *string `json:"priority"`
		CategoryID     *uint   `json:"category_id"`
		RequirementID  *uint   `json:"requirement_id"`
		SprintID       *uint   `json:"sprint_id"`
		Module         *string `json:"module"`
		Feature        *string `json:"feature"`
		Precondition   *string `json:"precondition"`
		Steps          *string `json:"steps"`
		TestData       *string `json:"test_data"`
		ExpectedResult *string `json:"expected_result"`
		ActualResult   *string `json:"actual_result"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	in := service.TestCaseUpdate{
		Name:           req.Name,
		CategoryID:     req.CategoryID,
		RequirementID:  req.RequirementID,
		SprintID:       req.SprintID,
		Module:         req.Module,
		Feature:        req.Feature,
		Precondition:   req.Precondition,
		Steps:          req.Steps,
		TestData:       req.TestData,
		ExpectedResult: req.ExpectedResult,
		ActualResult:   req.ActualResult,
	}
	if req.Type != nil {
		t := model.TestCaseType(*req.Type)
		in.Type = &t
	}
	if req.Status != nil {
		st := model.TestCaseStatus(*req.Status)
		in.Status = &st
	}
	if req.Priority != nil {
		p := model.RequirementPriority(*req.Priority)
		in.Priority = &p
	}

	testCase, err := h.testCases.Update(parseID(c.Param("id")), in, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, testCase)
}

// DELETE /testcases/:id
func (h *TestCaseHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.testCases.Delete(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// POST /testcases/batch/delete
func (h *TestCaseHandler) BatchDelete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		IDs []uint `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	deleted, err := h.testCases.BatchDelete(req.IDs, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"deleted": deleted})
}

// GET /testcases/:id/history
func (h *TestCaseHandler) History(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	history, err := h.testCases.History(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, history)
}
