package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/service/patient"
	"github.com/jwalitptl/homecare-api/pkg/httputil"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/pacientes")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.POST("", h.CreatePatient)
		patients.PUT("/:id", h.UpdatePatient)
	}
}

func (h *Handler) ListPatients(c *gin.Context) {
	var q patient.Query
	if err := httputil.BindQuery(c, &q); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	filter, err := q.Filter()
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	patients, err := h.service.ListPatients(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.PatientInput
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.CreatePatient(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.PatientInput
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.UpdatePatient(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}
