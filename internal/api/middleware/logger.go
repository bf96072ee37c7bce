package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger writes one line per request.
func Logger() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(p gin.LogFormatterParams) string {
		line := fmt.Sprintf("%s [API] %s %s %d %s %s",
			p.TimeStamp.Format(time.RFC3339),
			p.Method,
			p.Path,
			p.StatusCode,
			p.Latency.Round(time.Microsecond),
			p.ClientIP,
		)
		if p.ErrorMessage != "" {
			line += " " + p.ErrorMessage
		}
		return line + "\n"
	})
}
