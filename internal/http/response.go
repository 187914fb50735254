package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sujalbistaa/bookit/internal/apperr"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, data any, message string) {
	c.JSON(status, successResponse{Success: true, Message: message, Data: data})
}

func abortWith(c *gin.Context, status int, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Message: message, Errors: fields})
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch {
	case apperr.IsInvalid(err):
		return http.StatusBadRequest
	case apperr.IsUnauthorized(err):
		return http.StatusUnauthorized
	case apperr.IsForbidden(err):
		return http.StatusForbidden
	case apperr.IsNotFound(err):
		return http.StatusNotFound
	case apperr.IsConflict(err), apperr.IsInsufficientStock(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// fail writes the error envelope for err. Server errors are logged with
// the request logger and reported to the client generically.
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		requestLogger(c).Error("Request failed", zap.Error(err))
		abortWith(c, status, apperr.MessageOf(err, "Server error"), nil)
		return
	}
	abortWith(c, status, apperr.MessageOf(err, "Request failed"), apperr.FieldsOf(err))
}

// bind decodes the JSON body into req. It writes a 400 with field-level
// messages and returns false when the body is malformed or invalid.
func bind(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fieldMessage(fe)
		}
		abortWith(c, http.StatusBadRequest, "Validation failed", fields)
		return false
	}
	abortWith(c, http.StatusBadRequest, "Invalid request body", nil)
	return false
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "max":
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be %s %s characters long", name, bound, fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("%s must contain %s %s items", name, bound, fe.Param())
		default:
			return fmt.Sprintf("%s must be %s %s", name, bound, fe.Param())
		}
	}
	return fmt.Sprintf("%s is invalid", name)
}

var registerFieldNames sync.Once

// useJSONFieldNames makes validation errors report the JSON field name
// instead of the Go struct field name.
func useJSONFieldNames() {
	registerFieldNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

type listResponse struct {
	Items any   `json:"items"`
	Page  int   `json:"page,omitempty"`
	Total int64 `json:"total,omitempty"`
}
