package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sysocial/sysocial-backend/internal/gateway"
	"github.com/sysocial/sysocial-backend/internal/response"
)

// GatewayHandler serves the gateway's own endpoints.
type GatewayHandler struct {
	board *gateway.StatusBoard
	proxy *gateway.Proxy
}

// NewGatewayHandler creates a new GatewayHandler.
func NewGatewayHandler(board *gateway.StatusBoard, proxy *gateway.Proxy) *GatewayHandler {
	return &GatewayHandler{board: board, proxy: proxy}
}

// snapshot overlays the live breaker state on the last health snapshot.
func (h *GatewayHandler) snapshot() gateway.Snapshot {
	snap := h.board.Snapshot()
	out := make(gateway.Snapshot, len(snap))
	for name, st := range snap {
		st.Breaker = h.proxy.BreakerState(name)
		out[name] = st
	}
	return out
}

// Health godoc
// GET /health?strict=true
// Reports the gateway and the last known state of each backend. The gateway
// answers 200 while it is up; with strict=true a degraded backend yields 503.
func (h *GatewayHandler) Health(c *gin.Context) {
	snap := h.snapshot()

	services := make(map[string]string, len(snap))
	for name, st := range snap {
		services[name] = st.Status
	}

	status, code := "ok", http.StatusOK
	if !snap.Healthy() {
		status = "degraded"
		if c.Query("strict") == "true" {
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, gin.H{
		"status":     status,
		"service":    "api-gateway",
		"services":   services,
		"request_id": response.RequestID(c),
	})
}

// Services godoc
// GET /services
// Lists every registered backend with its prefixes and status.
func (h *GatewayHandler) Services(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"services": h.snapshot().List()})
}
