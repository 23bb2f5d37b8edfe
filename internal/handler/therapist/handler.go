package therapist

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/service/therapist"
	"github.com/jwalitptl/homecare-api/pkg/httputil"
)

type Handler struct {
	service therapist.TherapistService
}

func NewHandler(service therapist.TherapistService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	therapists := r.Group("/therapists")
	{
		therapists.GET("", h.ListTherapists)
		therapists.GET("/:id", h.GetTherapist)
		therapists.POST("", h.CreateTherapist)
		therapists.PUT("/:id", h.UpdateTherapist)
		therapists.DELETE("/:id", h.DeleteTherapist)
	}
}

func (h *Handler) ListTherapists(c *gin.Context) {
	filter, err := therapist.Filter(c.Query("type"), c.Query("status"), c.Query("term"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	therapists, err := h.service.ListTherapists(c.Request.Context(), filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, therapists)
}

func (h *Handler) GetTherapist(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	t, err := h.service.GetTherapist(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, t)
}

// Required fields are checked by the service so a missing one reports the
// directory's combined message instead of a per-field one.
func (h *Handler) CreateTherapist(c *gin.Context) {
	var req model.TherapistInput
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	t, err := h.service.CreateTherapist(c.Request.Context(), req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, t)
}

func (h *Handler) UpdateTherapist(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.TherapistInput
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	t, err := h.service.UpdateTherapist(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, t)
}

func (h *Handler) DeleteTherapist(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.DeleteTherapist(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, "Terapeuta eliminado correctamente")
}
