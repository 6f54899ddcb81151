package middleware

import (
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-ID"
	slowRequest     = 3 * time.Second
)

// Logger 请求日志
// 沿用客户端传入的X-Request-ID，没有时生成一个
func Logger(logger *gecho.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		log, msg := logger.Info, "request"
		if latency > slowRequest {
			log, msg = logger.Warn, "slow request"
		}
		log(msg,
			gecho.Field("request_id", requestID),
			gecho.Field("method", c.Request.Method),
			gecho.Field("path", c.Request.URL.Path),
			gecho.Field("status", c.Writer.Status()),
			gecho.Field("latency", latency.String()),
			gecho.Field("client_ip", c.ClientIP()),
			gecho.Field("username", GetUsername(c)),
			gecho.Field("errors", c.Errors.String()),
		)
	}
}

// GetRequestID 当前请求ID
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
