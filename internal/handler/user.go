package handler

import (
	"github.com/Devliang24/tapb/internal/middleware"
	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GET /users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.List(c.Query("keyword"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, users)
}

// GET /users/me
func (h *UserHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		InternalError(c, "user not loaded")
		return
	}
	Success(c, user)
}

// GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.Get(parseID(c.Param("id")))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, user.Brief())
}
