package agency

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/service/agency"
	"github.com/jwalitptl/homecare-api/pkg/httputil"
)

type Handler struct {
	service agency.AgencyService
}

func NewHandler(service agency.AgencyService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	agencies := r.Group("/agencias")
	{
		agencies.GET("", h.ListAgencies)
		agencies.GET("/stats", h.Stats)
		agencies.GET("/search/:query", h.SearchAgencies)
		agencies.GET("/:id", h.GetAgency)
		agencies.POST("", h.CreateAgency)
		agencies.PUT("/:id", h.UpdateAgency)
		agencies.DELETE("/:id", h.DeleteAgency)
	}
}

func (h *Handler) list(c *gin.Context, term string) {
	agencies, err := h.service.ListAgencies(c.Request.Context(), term)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, agencies)
}

func (h *Handler) ListAgencies(c *gin.Context) {
	h.list(c, c.Query("term"))
}

func (h *Handler) SearchAgencies(c *gin.Context) {
	h.list(c, c.Param("query"))
}

func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, stats)
}

func (h *Handler) GetAgency(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	a, err := h.service.GetAgency(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

func (h *Handler) CreateAgency(c *gin.Context) {
	var req model.AgencyInput
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	a, err := h.service.CreateAgency(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, a)
}

func (h *Handler) UpdateAgency(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.AgencyInput
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	a, err := h.service.UpdateAgency(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

func (h *Handler) DeleteAgency(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	removed, err := h.service.DeleteAgency(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.Response{
		Status:  "success",
		Message: "Agencia eliminada correctamente",
		Data:    gin.H{"pacientes_eliminados": removed},
	})
}
