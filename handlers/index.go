package handlers

import (
	"net/http"

	"foodbot/utils"

	"github.com/gin-gonic/gin"
)

// IndexHandler handles GET /.
func IndexHandler(c *gin.Context) {
	c.String(http.StatusOK, "hi")
}

// HealthHandler handles GET /health with the latest dependency snapshot.
func HealthHandler(c *gin.Context) {
	health := utils.GetHealthStatus()
	status := "ok"
	if !health.Redis {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "message": "Hi, I'm foodbot", "checks": health})
}
