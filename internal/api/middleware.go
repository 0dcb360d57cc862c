package api

import (
	"net/http"
	"time"

	"stockmcp/internal/auth"
	"stockmcp/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader is the header name for request ID
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the context key for request ID
const requestIDKey = "request_id"

// RequestID middleware adds a unique request ID to each request.
// If X-Request-ID header exists, use it; otherwise generate a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)

		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(c *gin.Context) string {
	if requestID, exists := c.Get(requestIDKey); exists {
		if id, ok := requestID.(string); ok {
			return id
		}
	}
	return ""
}

// Logging middleware logs each request with its status and duration.
// Health probes are skipped.
func Logging(logger *logging.AppLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		logger.Info("Request handled",
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// BasicAuth middleware rejects requests whose basic-auth credentials do not
// match the configured gate.
func BasicAuth(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		username, password, ok := c.Request.BasicAuth()
		if !ok || !gate.CheckBasic(username, password) {
			c.Header("WWW-Authenticate", `Basic realm="stockmcp"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid username or password",
			})
			return
		}

		c.Set("username", username)
		c.Next()
	}
}
