package httputil

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/homecare-api/pkg/errors"
	"github.com/jwalitptl/homecare-api/pkg/validator"
)

const msgInternal = "Error interno del servidor"

// Response wraps all API responses
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{Status: "success", Data: data}
}

func NewMessageResponse(message string) *Response {
	return &Response{Status: "success", Message: message}
}

func NewErrorResponse(message string) *Response {
	return &Response{Status: "error", Message: message, Error: message}
}

// RespondWithSuccess sends data with the given status
func RespondWithSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, NewSuccessResponse(data))
}

func RespondWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, NewMessageResponse(message))
}

// StatusAndMessage maps err to the HTTP status and the message shown to the
// client. Internal details never leave the process.
func StatusAndMessage(err error) (int, string) {
	appErr, ok := errors.As(err)
	if !ok {
		return http.StatusInternalServerError, msgInternal
	}
	status := appErr.StatusCode()
	if status >= http.StatusInternalServerError {
		return status, msgInternal
	}
	return status, appErr.Message
}

// RespondWithError records err on the context for the error middleware and
// writes the error body.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, message := StatusAndMessage(err)
	c.AbortWithStatusJSON(status, NewErrorResponse(message))
}

var registerOnce sync.Once

// BindJSON decodes the body into obj and validates its binding tags.
func BindJSON(c *gin.Context, obj interface{}) error {
	registerOnce.Do(func() {
		if err := validator.RegisterGin(); err != nil {
			panic(err)
		}
	})
	if err := c.ShouldBindJSON(obj); err != nil {
		return errors.BadRequest(validator.Message(err), err)
	}
	return nil
}

// BindQuery decodes the query string into obj.
func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return errors.BadRequest(validator.Message(err), err)
	}
	return nil
}

// ParamID reads a positive integer path parameter.
func ParamID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.BadRequest("ID inválido", err)
	}
	return id, nil
}
