package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mundotea/mundotea-backend/internal/platform/ctxutil"
	"github.com/mundotea/mundotea-backend/internal/platform/logger"
)

// Probe routes are polled constantly; successful hits are logged at debug.
var quietRoutes = map[string]bool{
	"/":            true,
	"/healthcheck": true,
	"/metrics":     true,
}

// RequestLogger writes one line per request once the handler chain is done.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log = log.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := append(requestFields(c),
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"bytes", c.Writer.Size(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}
		logAt(log, status, quietRoutes[route])("HTTP request", fields...)
	}
}

func requestFields(c *gin.Context) []interface{} {
	var fields []interface{}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
	}
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.AccountID != uuid.Nil {
		fields = append(fields, "login_id", rd.AccountID.String())
	}
	return fields
}

func logAt(log *logger.Logger, status int, quiet bool) func(string, ...interface{}) {
	switch {
	case status >= 500:
		return log.Error
	case status >= 400:
		return log.Warn
	case quiet:
		return log.Debug
	default:
		return log.Info
	}
}
