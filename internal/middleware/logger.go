package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Logger writes one access line per request. Probe routes listed in quiet
// are logged at debug level unless they fail.
func Logger(log zerolog.Logger, quiet ...string) gin.HandlerFunc {
	quietRoutes := make(map[string]struct{}, len(quiet))
	for _, route := range quiet {
		quietRoutes[route] = struct{}{}
	}

	return func(c *gin.Context) {
		began := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		level := accessLevel(status)
		if _, ok := quietRoutes[route]; ok && level == zerolog.InfoLevel {
			level = zerolog.DebugLevel
		}

		entry := log.WithLevel(level).
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("route", route).
			Str("uri", c.Request.URL.RequestURI()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Str("client_ip", c.ClientIP()).
			Dur("elapsed", time.Since(began))

		if user, ok := CurrentUser(c); ok {
			entry = entry.Str("user_id", user.ID)
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny); len(errs) > 0 {
			entry = entry.Str("errors", errs.String())
		}
		entry.Msg("request served")
	}
}

func accessLevel(status int) zerolog.Level {
	switch {
	case status >= 500:
		return zerolog.ErrorLevel
	case status >= 400:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
