package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/homecare-api/internal/config"
	"github.com/jwalitptl/homecare-api/internal/repository/memstore"
	"github.com/jwalitptl/homecare-api/pkg/metrics"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	reg := prometheus.NewRegistry()
	cfg := &config.Config{Server: config.ServerConfig{Mode: gin.TestMode}}

	r, err := Build(cfg, Deps{
		Store:    memstore.New(),
		Metrics:  metrics.New("test", reg),
		Gatherer: reg,
	})
	require.NoError(t, err)
	return &testAPI{t: t, engine: r.Engine()}
}

func (a *testAPI) do(method, path string, body interface{}) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func (a *testAPI) data(env envelope, v interface{}) {
	a.t.Helper()
	require.NoError(a.t, json.Unmarshal(env.Data, v))
}

type idOnly struct {
	ID     int64  `json:"id"`
	Estado string `json:"estado"`
}

func TestReferralScenario(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/agencias", gin.H{"name": "Acme Care", "email": "intake@acme.com"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var acme idOnly
	api.data(env, &acme)

	code, env = api.do(http.MethodPost, "/api/pacientes", gin.H{
		"nombre": "Jane Doe", "requerimientos": "PT,OT", "agencia_id": acme.ID, "link_correo": "http://x",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var jane idOnly
	api.data(env, &jane)
	assert.Equal(t, "nuevo", jane.Estado)

	var result struct {
		Estado string `json:"estado_paciente"`
	}
	code, env = api.do(http.MethodPost, fmt.Sprintf("/api/pacientes/%d/terapeutas", jane.ID),
		gin.H{"terapeuta_nombre": "Dr. Smith", "disciplina": "PT", "estado": "confirmado"})
	require.Equal(t, http.StatusOK, code, env.Error)
	api.data(env, &result)
	assert.Equal(t, "nuevo", result.Estado)

	code, env = api.do(http.MethodPost, fmt.Sprintf("/api/pacientes/%d/terapeutas", jane.ID),
		gin.H{"terapeuta_nombre": "Dr. Lee", "disciplina": "OT", "estado": "confirmado"})
	require.Equal(t, http.StatusOK, code, env.Error)
	api.data(env, &result)
	assert.Equal(t, "asignado", result.Estado)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/pacientes/%d", jane.ID), nil)
	require.Equal(t, http.StatusOK, code)
	api.data(env, &jane)
	assert.Equal(t, "asignado", jane.Estado)

	var stats struct {
		Agencias  int64 `json:"total_agencias"`
		Pacientes int64 `json:"total_pacientes"`
	}
	code, env = api.do(http.MethodGet, "/api/agencias/stats", nil)
	require.Equal(t, http.StatusOK, code)
	api.data(env, &stats)
	assert.Equal(t, int64(1), stats.Agencias)
	assert.Equal(t, int64(1), stats.Pacientes)

	code, env = api.do(http.MethodDelete, fmt.Sprintf("/api/agencias/%d", acme.ID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Agencia eliminada correctamente", env.Message)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/pacientes/%d", jane.ID), nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Paciente no encontrado", env.Error)
}

func TestRejectionFlow(t *testing.T) {
	api := newTestAPI(t)

	_, env := api.do(http.MethodPost, "/api/agencias", gin.H{"name": "Acme", "email": "a@acme.com"})
	var acme idOnly
	api.data(env, &acme)
	_, env = api.do(http.MethodPost, "/api/pacientes", gin.H{
		"nombre": "John Roe", "requerimientos": "ST", "agencia_id": acme.ID, "link_correo": "http://y",
	})
	var john idOnly
	api.data(env, &john)

	code, env := api.do(http.MethodPost, fmt.Sprintf("/api/pacientes/%d/rechazo", john.ID), gin.H{"motivos": []string{" "}})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", env.Status)

	code, env = api.do(http.MethodPost, fmt.Sprintf("/api/pacientes/%d/rechazo", john.ID), gin.H{
		"motivos":    []string{"No habla español"},
		"terapeutas": []gin.H{{"terapeuta_nombre": "Dr. Park", "disciplina": "ST"}},
	})
	require.Equal(t, http.StatusOK, code, env.Error)
	api.data(env, &john)
	assert.Equal(t, "no_asistido", john.Estado)

	var history struct {
		Motivos    []json.RawMessage `json:"motivos"`
		Terapeutas []json.RawMessage `json:"terapeutas"`
	}
	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/pacientes/%d/rechazos", john.ID), nil)
	require.Equal(t, http.StatusOK, code)
	api.data(env, &history)
	assert.Len(t, history.Motivos, 1)
	assert.Len(t, history.Terapeutas, 1)

	code, _ = api.do(http.MethodPut, fmt.Sprintf("/api/pacientes/%d/estado", john.ID), gin.H{"estado": "asignado"})
	assert.Equal(t, http.StatusConflict, code)

	var visible []idOnly
	code, env = api.do(http.MethodGet, "/api/pacientes?incluir_rechazados=false", nil)
	require.Equal(t, http.StatusOK, code)
	api.data(env, &visible)
	assert.Empty(t, visible)

	var reasons []string
	code, env = api.do(http.MethodGet, "/api/motivos-rechazo", nil)
	require.Equal(t, http.StatusOK, code)
	api.data(env, &reasons)
	assert.Contains(t, reasons, "No habla español")
}

func TestValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/agencias", gin.H{"name": "Acme"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "El campo email es obligatorio", env.Error)
	assert.Equal(t, env.Error, env.Message)

	code, env = api.do(http.MethodPost, "/api/pacientes", gin.H{
		"nombre": "Jane", "requerimientos": "PT", "agencia_id": 42, "link_correo": "http://x",
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Agencia no encontrada", env.Error)

	code, env = api.do(http.MethodPost, "/api/therapists", gin.H{"name": "Dr. Smith"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Los campos nombre, tipo y categoría son obligatorios", env.Error)

	code, env = api.do(http.MethodGet, "/api/therapists/7", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Terapeuta no encontrado", env.Error)

	code, _ = api.do(http.MethodGet, "/api/pacientes/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = api.do(http.MethodPut, "/api/asignaciones/9", gin.H{"estado": "confirmado"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestTherapistCRUD(t *testing.T) {
	api := newTestAPI(t)

	code, env := api.do(http.MethodPost, "/api/therapists", gin.H{"name": "Dr. Smith", "type": "PT", "category": "premium"})
	require.Equal(t, http.StatusCreated, code, env.Error)
	var th idOnly
	api.data(env, &th)

	var list []idOnly
	code, env = api.do(http.MethodGet, "/api/therapists?type=PT", nil)
	require.Equal(t, http.StatusOK, code)
	api.data(env, &list)
	assert.Len(t, list, 1)

	code, env = api.do(http.MethodDelete, fmt.Sprintf("/api/therapists/%d", th.ID), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Terapeuta eliminado correctamente", env.Message)
}

func TestReplyEndpoints(t *testing.T) {
	api := newTestAPI(t)

	var templates []struct {
		ID int `json:"id"`
	}
	code, env := api.do(http.MethodGet, "/api/plantillas-correo", nil)
	require.Equal(t, http.StatusOK, code)
	api.data(env, &templates)
	assert.Len(t, templates, 5)

	_, env = api.do(http.MethodPost, "/api/agencias", gin.H{"name": "Sunset Home Health", "email": "x@sunset.com"})
	var agency idOnly
	api.data(env, &agency)
	_, env = api.do(http.MethodPost, "/api/pacientes", gin.H{
		"nombre": "Jane Doe", "requerimientos": "PT", "agencia_id": agency.ID, "link_correo": "http://x",
	})
	var jane idOnly
	api.data(env, &jane)

	var reply struct {
		Para   string `json:"para"`
		Asunto string `json:"asunto"`
		Cuerpo string `json:"cuerpo"`
	}
	code, env = api.do(http.MethodPost, fmt.Sprintf("/api/pacientes/%d/respuesta/preview", jane.ID), gin.H{"plantilla_id": 4})
	require.Equal(t, http.StatusOK, code, env.Error)
	api.data(env, &reply)
	assert.Equal(t, "x@sunset.com", reply.Para)
	assert.Equal(t, "Referral Update - Additional Documentation Needed", reply.Asunto)

	code, _ = api.do(http.MethodPost, fmt.Sprintf("/api/pacientes/%d/respuesta/preview", jane.ID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = api.do(http.MethodGet, fmt.Sprintf("/api/pacientes/%d/respuesta/borrador", jane.ID), nil)
	require.Equal(t, http.StatusOK, code)
	api.data(env, &reply)
	assert.Contains(t, reply.Cuerpo, "Dear Sunset Home Health Team,")

	code, env = api.do(http.MethodPost, fmt.Sprintf("/api/pacientes/%d/respuesta", jane.ID), gin.H{"cuerpo": "Hola {nombre}"})
	require.Equal(t, http.StatusOK, code, env.Error)
	api.data(env, &reply)
	assert.Equal(t, "Hola Jane Doe", reply.Cuerpo)
}

func TestOperationalEndpoints(t *testing.T) {
	api := newTestAPI(t)

	code, _ := api.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, code)

	api.do(http.MethodGet, "/api/agencias", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `test_http_requests_total{method="GET",path="/api/agencias",status="200"} 1`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
