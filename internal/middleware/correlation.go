package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/pkg/utils"
)

const correlationHeader = "X-Correlation-ID"

// CorrelationID propagates or assigns a request correlation id
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(correlationHeader)
		if correlationID == "" {
			correlationID = utils.GenerateID()
		}
		c.Set("correlationID", correlationID)
		c.Header(correlationHeader, correlationID)
		c.Next()
	}
}

// RequestLogger emits one structured access log line per request
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		correlationID, _ := c.Get("correlationID")
		logger.WithFields(logrus.Fields{
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        c.Writer.Status(),
			"durationMs":    time.Since(start).Milliseconds(),
			"clientIp":      c.ClientIP(),
			"correlationId": correlationID,
		}).Info("Request completed")
	}
}
