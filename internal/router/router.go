package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/homecare-api/internal/config"
	"github.com/jwalitptl/homecare-api/internal/handler"
	"github.com/jwalitptl/homecare-api/internal/middleware"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Router struct {
	engine   *gin.Engine
	health   *handler.Handler
	handlers []Handler
	metrics  *metrics.Metrics
	config   RouterConfig
}

type RouterConfig struct {
	Mode           string
	RateLimit      config.RateLimitConfig
	CORSConfig     middleware.CORSConfig
	TimeoutConfig  middleware.TimeoutConfig
	SizeLimit      middleware.SizeLimitConfig
	SecurityConfig middleware.SecurityConfig
}

// ConfigFrom derives the router settings from the service configuration.
func ConfigFrom(cfg *config.Config) RouterConfig {
	cors := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		cors.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	timeout := middleware.DefaultTimeoutConfig()
	if cfg.Server.RequestTimeout > 0 {
		timeout.Duration = cfg.Server.RequestTimeout
	}

	size := middleware.DefaultSizeLimitConfig()
	if cfg.Server.MaxBodyBytes > 0 {
		size.MaxBodySize = cfg.Server.MaxBodyBytes
	}

	return RouterConfig{
		Mode:           cfg.Server.Mode,
		RateLimit:      cfg.RateLimit,
		CORSConfig:     cors,
		TimeoutConfig:  timeout,
		SizeLimit:      size,
		SecurityConfig: middleware.DefaultSecurityConfig(),
	}
}

func NewRouter(cfg RouterConfig, m *metrics.Metrics, health *handler.Handler, handlers ...Handler) *Router {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := &Router{
		engine:   gin.New(),
		health:   health,
		handlers: handlers,
		metrics:  m,
		config:   cfg,
	}
	r.Setup()
	return r
}

func (r *Router) Setup() {
	r.engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.SecurityHeaders(r.config.SecurityConfig),
		middleware.CORS(r.config.CORSConfig),
		middleware.SizeLimit(r.config.SizeLimit),
		middleware.Timeout(r.config.TimeoutConfig),
	)
	if r.config.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  rate.Limit(r.config.RateLimit.RPS),
			Burst: r.config.RateLimit.Burst,
		})
		r.engine.Use(limiter.RateLimit())
	}
	if r.metrics != nil {
		r.engine.Use(middleware.Metrics(r.metrics))
	}
	r.engine.Use(middleware.ErrorHandler())

	r.health.RegisterRoutes(r.engine)

	api := r.engine.Group("/api")
	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
