package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/homecare-api/pkg/httputil"
)

// SizeLimitConfig represents size limit configuration
type SizeLimitConfig struct {
	MaxBodySize   int64 // in bytes
	MaxHeaderSize int   // in bytes
}

func DefaultSizeLimitConfig() SizeLimitConfig {
	return SizeLimitConfig{
		MaxBodySize:   1 << 20, // 1MB, agency logos travel inline
		MaxHeaderSize: 1 << 14, // 16KB
	}
}

// SizeLimit rejects oversized requests up front and caps the body reader for
// requests that do not declare a length.
func SizeLimit(config SizeLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > config.MaxBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.NewErrorResponse(
				fmt.Sprintf("El cuerpo de la solicitud excede %d bytes", config.MaxBodySize)))
			return
		}

		headerSize := 0
		for name, values := range c.Request.Header {
			headerSize += len(name)
			for _, value := range values {
				headerSize += len(value)
			}
		}
		if headerSize > config.MaxHeaderSize {
			c.AbortWithStatusJSON(http.StatusRequestHeaderFieldsTooLarge, httputil.NewErrorResponse(
				fmt.Sprintf("Las cabeceras exceden %d bytes", config.MaxHeaderSize)))
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, config.MaxBodySize)
		}
		c.Next()
	}
}
