package handler

import (
	"time"

	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/model"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

type SprintHandler struct {
	sprints *service.SprintService
}

func NewSprintHandler(sprints *service.SprintService) *SprintHandler {
	return &SprintHandler{sprints: sprints}
}

// POST /projects/:id/sprints
func (h *SprintHandler) Create(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name      string     `json:"name" binding:"required,max=100"`
		Goal      string     `json:"goal"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	sprint, err := h.sprints.Create(projectID, service.SprintCreate{
		Name:      req.Name,
		Goal:      req.Goal,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, sprint)
}

// GET /projects/:id/sprints
func (h *SprintHandler) List(c *gin.Context) {
	projectID := parseID(c.Param("id"))
	userID := middleware.GetCurrentUserID(c)

	sprints, err := h.sprints.List(projectID, c.Query("status"), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, sprints)
}

// GET /sprints/:id
func (h *SprintHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	sprint, err := h.sprints.Get(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, sprint)
}

// PUT /sprints/:id
func (h *SprintHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		Name      *string    `json:"name"`
		Goal      *string    `json:"goal"`
		Status    *string    `json:"status"`
		StartDate *time.Time `json:"start_date"`
		EndDate   *time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, 40001, "invalid request: "+err.Error())
		return
	}

	in := service.SprintUpdate{
		Name:      req.Name,
		Goal:      req.Goal,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.Status != nil {
		st := model.SprintStatus(*req.Status)
		in.Status = &st
	}

	sprint, err := h.sprints.Update(parseID(c.Param("id")), in, userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, sprint)
}

// DELETE /sprints/:id
func (h *SprintHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	if err := h.sprints.Delete(parseID(c.Param("id")), userID); err != nil {
		Fail(c, err)
		return
	}
	Success(c, nil)
}

// GET /sprints/:id/stats
func (h *SprintHandler) Stats(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	stats, err := h.sprints.Stats(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, stats)
}

// GET /sprints/:id/history
func (h *SprintHandler) History(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	history, err := h.sprints.History(parseID(c.Param("id")), userID)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, history)
}
