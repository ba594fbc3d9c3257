package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sysocial/sysocial-backend/internal/response"
)

var (
	corsMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsHeaders = []string{
		"Origin", "Content-Type", "Content-Length", "Accept", "Accept-Encoding",
		"Authorization", "Cache-Control", "X-Requested-With", "X-CSRF-Token", response.HeaderRequestID,
	}
)

// CORS applies the origin allow-list. An empty list allows every origin;
// credentials are only allowed with an explicit list.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = corsMethods
	corsConfig.AllowHeaders = corsHeaders
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour

	return cors.New(corsConfig)
}

// Preflight answers any OPTIONS request the CORS middleware let through
// (those without an Origin header) with 204 and the allowed methods and
// headers, so preflights never reach a backend.
func Preflight(allowedOrigins []string) gin.HandlerFunc {
	methods := strings.Join(corsMethods, ", ")
	headers := strings.Join(corsHeaders, ", ")

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodOptions {
			c.Next()
			return
		}
		if c.Writer.Header().Get("Access-Control-Allow-Origin") == "" && len(allowedOrigins) == 0 {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", headers)
		c.Header("Access-Control-Max-Age", "43200")
		c.AbortWithStatus(http.StatusNoContent)
	}
}
