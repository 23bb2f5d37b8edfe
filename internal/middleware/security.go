package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// SecurityConfig represents security headers configuration
type SecurityConfig struct {
	HSTS               bool
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
	CSPDirectives      []string
}

// DefaultSecurityConfig suits a JSON API: nothing it serves is meant to be
// framed or executed. HSTS is left to the TLS terminator.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		FrameOptions:       "DENY",
		ContentTypeOptions: "nosniff",
		ReferrerPolicy:     "no-referrer",
		CSPDirectives: []string{
			"default-src 'none'",
			"frame-ancestors 'none'",
		},
	}
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders(config SecurityConfig) gin.HandlerFunc {
	csp := strings.Join(config.CSPDirectives, "; ")
	hsts := fmt.Sprintf("max-age=%d; includeSubDomains", config.HSTSMaxAge)

	return func(c *gin.Context) {
		if config.HSTS {
			c.Header("Strict-Transport-Security", hsts)
		}
		c.Header("X-Frame-Options", config.FrameOptions)
		c.Header("X-Content-Type-Options", config.ContentTypeOptions)
		c.Header("Referrer-Policy", config.ReferrerPolicy)
		if csp != "" {
			c.Header("Content-Security-Policy", csp)
		}
		c.Next()
	}
}
