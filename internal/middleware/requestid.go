package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"

	maxRequestIDLength = 128
)

// RequestID tags each request with an id, reusing a sane inbound header. The
// request context carries a logger bound to that id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > maxRequestIDLength {
			rid = uuid.New().String()
		}

		c.Set(ContextRequestID, rid)
		c.Header(HeaderXRequestID, rid)

		reqLogger := log.With().Str(ContextRequestID, rid).Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))
		c.Next()
	}
}
