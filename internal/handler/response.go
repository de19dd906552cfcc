package handler

import (
	"net/http"
	"strconv"

	"github.com/Devliang24/tapb/internal/service"
	"github.com/gin-gonic/gin"
)

// Response helpers

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

func SuccessPaged(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"list":      list,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

func Error(c *gin.Context, httpCode int, code int, message string) {
	c.JSON(httpCode, gin.H{
		"code":    code,
		"message": message,
		"data":    nil,
	})
}

func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, 50001, message)
}

// Fail translates a service error into the response envelope. Domain errors
// keep their business code and map their kind to an HTTP status; anything
// else is a 500.
func Fail(c *gin.Context, err error) {
	e, ok := service.AsError(err)
	if !ok {
		InternalError(c, err.Error())
		return
	}
	switch e.Kind {
	case service.KindNotFound:
		Error(c, http.StatusNotFound, e.Code, e.Message)
	case service.KindForbidden:
		Error(c, http.StatusForbidden, e.Code, e.Message)
	case service.KindConflict:
		Error(c, http.StatusConflict, e.Code, e.Message)
	default:
		Error(c, http.StatusBadRequest, e.Code, e.Message)
	}
}

func parseID(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 64)
	return uint(id)
}

func parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func queryUint(c *gin.Context, name string) *uint {
	s := c.Query(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil
	}
	u := uint(v)
	return &u
}
