package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health 存活检查
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
