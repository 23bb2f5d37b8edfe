package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/homecare-api/pkg/httputil"
)

// ErrorHandler logs the errors handlers attached to the context and writes
// the error body when the handler did not.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		lastErr := c.Errors.Last()
		status, message := httputil.StatusAndMessage(lastErr.Err)

		level := zerolog.DebugLevel
		if status >= http.StatusInternalServerError {
			level = zerolog.ErrorLevel
		}
		for _, e := range c.Errors {
			log.WithLevel(level).
				Err(e.Err).
				Str("request_id", c.GetString(ContextRequestID)).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		if !c.Writer.Written() {
			c.JSON(status, httputil.NewErrorResponse(message))
		}
	}
}
