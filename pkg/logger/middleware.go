package logger

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware 記錄每個 HTTP 請求的方法、路徑、狀態碼與耗時
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		event := Info()
		if status >= 500 {
			event = Error()
		} else if status >= 400 {
			event = Warn()
		}
		event.
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Str("ip", c.ClientIP()).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	}
}
