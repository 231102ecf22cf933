package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/api/dto"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/service"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
)

const msgInvalidBody = "Invalid request body"

// statusOf 只有这里决定 HTTP 状态码
func statusOf(err error) int {
	var (
		vErr   *apperr.ValidationError
		cfgErr *apperr.ConfigError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError
	case errors.Is(err, service.ErrUsageDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError 统一失败响应
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusOf(err), dto.ErrorResponse{Success: false, Error: service.UserMessage(err)})
}

func respondBadRequest(c *gin.Context, msg string) {
	respondError(c, apperr.Invalid("%s", msg))
}

func respondResult(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, dto.ResultResponse{Success: true, Result: result})
}
