package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(ContextRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderXRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, strings.Repeat("x", 500))
	w = serve(r, req)
	assert.Len(t, w.Header().Get(HeaderXRequestID), 36)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Error interno del servidor", body["error"])
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/unwritten", func(c *gin.Context) {
		_ = c.Error(apperrors.NotFoundMessage("Paciente no encontrado"))
	})
	r.GET("/written", func(c *gin.Context) {
		_ = c.Error(apperrors.Conflict("ya escrito", nil))
		c.JSON(http.StatusConflict, gin.H{"status": "error", "error": "ya escrito"})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/unwritten", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Paciente no encontrado", decode(t, w)["message"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/written", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ya escrito", decode(t, w)["error"])
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"http://localhost:3000"}

	r := gin.New()
	r.Use(CORS(cfg))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	req = httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	open := gin.New()
	open.Use(CORS(DefaultCORSConfig()))
	open.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://anything.example")
	w = serve(open, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{Rate: 0.001, Burst: 2})
	r := gin.New()
	r.Use(rl.RateLimit())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2"))
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(TimeoutConfig{Duration: 10 * time.Millisecond}))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Equal(t, "Tiempo de espera agotado", decode(t, w)["error"])

	w = serve(r, httptest.NewRequest(http.MethodGet, "/fast", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(SizeLimit(SizeLimitConfig{MaxBodySize: 8, MaxHeaderSize: 1 << 10}))
	r.POST("/", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("this body is too large")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x"))
	req.Header.Set("X-Big", strings.Repeat("a", 2048))
	w = serve(r, req)
	assert.Equal(t, http.StatusRequestHeaderFieldsTooLarge, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(DefaultSecurityConfig()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/pacientes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/api/pacientes/1", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/api/pacientes/2", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/pacientes/:id", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "unmatched", "404")))
}
