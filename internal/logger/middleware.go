package logger

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderRequestID 请求 ID 头
const HeaderRequestID = "X-Request-ID"

// GinMiddleware 为每个请求生成请求 ID，注入日志并记录耗时与状态码
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = GenerateRequestID()
		}
		c.Header(HeaderRequestID, requestID)

		reqLogger := Default().With("request_id", requestID)
		ctx := WithLogger(WithRequestID(c.Request.Context(), requestID), reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/assets") {
			return
		}

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		reqLogger.Log(ctx, level, "http_request",
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		)
	}
}
