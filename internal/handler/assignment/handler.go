package assignment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/homecare-api/internal/model"
	"github.com/jwalitptl/homecare-api/internal/service/assignment"
	"github.com/jwalitptl/homecare-api/pkg/httputil"
)

type Handler struct {
	service assignment.AssignmentServicer
}

func NewHandler(service assignment.AssignmentServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/pacientes/:id")
	{
		patients.GET("/terapeutas", h.ListAssignments)
		patients.POST("/terapeutas", h.UpsertAssignment)
		patients.POST("/asignar-terapeuta", h.AppendAssignment)
		patients.PUT("/estado", h.SetStatus)
		patients.POST("/rechazo", h.RejectPatient)
		patients.GET("/rechazos", h.ListRejections)
	}

	assignments := r.Group("/asignaciones")
	{
		assignments.PUT("/:id", h.UpdateAssignment)
		assignments.DELETE("/:id", h.DeleteAssignment)
	}

	r.GET("/motivos-rechazo", h.ListReasons)
}

func (h *Handler) ListAssignments(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	assignments, err := h.service.List(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, assignments)
}

type writeFunc func(c *gin.Context, patientID int64, input model.AssignmentInput) (*model.AssignmentResult, error)

func (h *Handler) write(c *gin.Context, fn writeFunc) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.AssignmentInput
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := fn(c, id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, result)
}

// UpsertAssignment keeps one current assignment per discipline.
func (h *Handler) UpsertAssignment(c *gin.Context) {
	h.write(c, func(c *gin.Context, id int64, in model.AssignmentInput) (*model.AssignmentResult, error) {
		return h.service.Upsert(c.Request.Context(), id, in)
	})
}

// AppendAssignment always records a new assignment row.
func (h *Handler) AppendAssignment(c *gin.Context) {
	h.write(c, func(c *gin.Context, id int64, in model.AssignmentInput) (*model.AssignmentResult, error) {
		return h.service.Append(c.Request.Context(), id, in)
	})
}

func (h *Handler) UpdateAssignment(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.AssignmentUpdate
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, result)
}

func (h *Handler) DeleteAssignment(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, httputil.Response{
		Status:  "success",
		Message: "Asignación eliminada correctamente",
		Data:    result,
	})
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.StatusChangeRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.SetStatus(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) RejectPatient(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.RejectionRequest
	if err := httputil.BindJSON(c, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.Reject(c.Request.Context(), id, req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) ListRejections(c *gin.Context) {
	id, err := httputil.ParamID(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	history, err := h.service.ListRejections(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, history)
}

func (h *Handler) ListReasons(c *gin.Context) {
	httputil.RespondWithSuccess(c, http.StatusOK, h.service.ListReasons())
}
