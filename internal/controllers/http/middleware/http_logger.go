package middleware

import (
	"log/slog"
	"time"

	"meal-order-service/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

// Logging attaches a request-scoped logger carrying the request id and logs
// one line per request.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header(HeaderRequestID, reqID)

		l := base.With("request_id", reqID)
		logging.With(c, l)

		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if a := ActorFrom(c); a.UserID != "" {
			attrs = append(attrs, "user_id", a.UserID, "role", a.Role)
		}

		switch {
		case c.Writer.Status() >= 500:
			l.Error("http request", attrs...)
		case c.Writer.Status() >= 400:
			l.Warn("http request", attrs...)
		default:
			l.Info("http request", attrs...)
		}
	}
}
