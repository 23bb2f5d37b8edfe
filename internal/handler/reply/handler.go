package reply

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/service/reply"
	"github.com/jwalitptl/homecare-api/pkg/httputil"
)

type Handler struct {
	service reply.ReplyService
}

func NewHandler(service reply.ReplyService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/plantillas-correo", h.ListTemplates)

	replies := r.Group("/pacientes/:id/respuesta")
	{
		replies.POST("/preview", h.Preview)
		replies.GET("/borrador", h.Draft)
		replies.POST("", h.Send)
	}
}

func (h *Handler) ListTemplates(c *gin.Context) {
	httputil.RespondWithSuccess(c, http.StatusOK, h.service.ListTemplates())
}

func (h *Handler) bind(c *gin.Context) (int64, model.ReplyRequest, bool) {
	var req model.ReplyRequest
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return 0, req, false
	}
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return 0, req, false
	}
	return id, req, true
}

func (h *Handler) Preview(c *gin.Context) {
	id, req, ok := h.bind(c)
	if !ok {
		return
	}

	out, err := h.service.Compose(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, out)
}

func (h *Handler) Draft(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	out, err := h.service.Draft(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, out)
}

func (h *Handler) Send(c *gin.Context) {
	id, req, ok := h.bind(c)
	if !ok {
		return
	}

	out, err := h.service.Send(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.Response{
		Status:  "success",
		Message: "Correo enviado correctamente",
		Data:    out,
	})
}
