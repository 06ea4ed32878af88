package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	RequestIDHeader     = "X-Request-ID"
	requestIDContextKey = "requestID"
)

// RequestIDMiddleware propagates the caller's X-Request-ID or assigns a new
// one, and logs the request under it.
func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("RequestID")
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(requestIDContextKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()

		log.Debug("Request handled",
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
		)
	}
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDContextKey)
}
