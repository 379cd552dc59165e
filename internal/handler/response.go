package handler

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/optorecord-api/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: StatusSuccess,
		Data:   data,
	}
}

// NewMessageResponse is a success response carrying a message and optional data.
func NewMessageResponse(message string, data interface{}) *Response {
	return &Response{
		Status:  StatusSuccess,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  StatusError,
		Message: message,
	}
}

// RespondError writes err as an error envelope. Anything that is not an
// AppError is logged and hidden behind a generic 500.
func RespondError(c *gin.Context, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}

	if appErr.Code == apperrors.ErrInternal {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	c.AbortWithStatusJSON(appErr.StatusCode(), NewErrorResponse(appErr.Message))
}

// BindJSON decodes the request body into obj and turns binding failures into
// a 400 with a readable message. It reports whether the handler may continue.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondError(c, apperrors.BadRequest(BindingMessage(err)))
		return false
	}
	return true
}

// BindQuery is BindJSON for query parameters.
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		RespondError(c, apperrors.BadRequest(BindingMessage(err)))
		return false
	}
	return true
}

// ParamUUID parses the named path parameter.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, apperrors.BadRequest(fmt.Sprintf("Invalid %s", name)))
		return uuid.Nil, false
	}
	return id, true
}

// QueryUUID parses an optional query parameter. A missing value yields nil.
func QueryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondError(c, apperrors.BadRequest(fmt.Sprintf("Invalid %s", name)))
		return nil, false
	}
	return &id, true
}

// QueryInt returns 0 for a missing or malformed value so service defaults apply.
func QueryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

// BindingMessage describes the first problem found while binding a request.
func BindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", field)
		case "email":
			return fmt.Sprintf("%s must be a valid email address", field)
		case "oneof":
			return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
		case "usertype":
			return fmt.Sprintf("%s must be one of: Patient, Admin, Physician", field)
		case "min", "gt":
			return fmt.Sprintf("%s is too small", field)
		case "max":
			return fmt.Sprintf("%s is too large", field)
		default:
			return fmt.Sprintf("Invalid %s", field)
		}
	}

	if errors.Is(err, io.EOF) {
		return "Request body is required"
	}
	return "Invalid request body"
}
