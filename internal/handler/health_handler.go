package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sysocial/sysocial-backend/internal/database"
	"github.com/sysocial/sysocial-backend/internal/response"
)

// HealthHandler answers the /health check of a domain service.
type HealthHandler struct {
	service string
	db      database.Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(service string, db database.Pinger) *HealthHandler {
	return &HealthHandler{service: service, db: db}
}

// Health godoc
// GET /health
// Returns 200 while the database answers, 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	if err := database.Healthy(c.Request.Context(), h.db); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "unhealthy",
			"service":    h.service,
			"database":   "unreachable",
			"request_id": response.RequestID(c),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"service":    h.service,
		"database":   "ok",
		"request_id": response.RequestID(c),
	})
}
