package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/domain/apperror"
	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
)

// RequestIDKey is the gin context key holding the request ID.
const RequestIDKey = "request_id"

const unexpectedMessage = "An unexpected error occurred"

// MessageResponse is the body of delete and other record-less successes.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataResponse wraps an aggregate payload.
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// ErrorResponse is the failure envelope. Errors is null unless validation failed.
type ErrorResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Errors  []apperror.FieldError `json:"errors"`
}

// NewErrorResponse builds a failure envelope.
func NewErrorResponse(message string, fields []apperror.FieldError) ErrorResponse {
	return ErrorResponse{Success: false, Message: message, Errors: fields}
}

var setupValidator sync.Once

// SetupValidator makes gin's validator report JSON field names and know the
// notblank and calendardate rules. Safe to call repeatedly.
func SetupValidator() {
	setupValidator.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("calendardate", calendarDate)
	})
}

// calendarDate accepts the date forms understood by models.ParseCalendarDate.
func calendarDate(fl validator.FieldLevel) bool {
	_, err := models.ParseCalendarDate(fl.Field().String())
	return err == nil
}

func statusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity
	case apperror.KindBadRequest:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope for err. Unclassified errors
// become a generic 500; internal details only reach the log.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(unexpectedMessage, err)
	}

	status := statusOf(appErr.Kind)
	fields := []zap.Field{
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", c.GetString(RequestIDKey)),
	}

	if appErr.Kind == apperror.KindInternal {
		logger.Error(appErr.Message, append(fields, zap.Error(err))...)
	} else {
		logger.Info("request rejected", append(fields, zap.String("kind", appErr.Kind.String()), zap.String("reason", appErr.Message))...)
	}

	var details []apperror.FieldError
	if appErr.Kind == apperror.KindValidation {
		details = appErr.Fields
	}
	c.AbortWithStatusJSON(status, NewErrorResponse(appErr.Message, details))
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: message})
}

func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return validationError(err)
	}
	return nil
}

func bindQuery(c *gin.Context, obj any) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts binding failures into one ValidationFailed error
// listing every offending field.
func validationError(err error) error {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case errors.As(err, &verrs):
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   fe.Field(),
				Message: ruleMessage(fe),
				Type:    fe.Tag(),
			})
		}
		return apperror.Validation(fields...)
	case errors.As(err, &typeErr):
		return apperror.Validation(apperror.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Type:    "type_error",
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperror.Validation(apperror.FieldError{Field: "body", Message: "malformed JSON body", Type: "json_invalid"})
	case errors.Is(err, io.EOF):
		return apperror.Validation(apperror.FieldError{Field: "body", Message: "request body is required", Type: "missing"})
	default:
		return apperror.Validation(apperror.FieldError{Field: "body", Message: err.Error(), Type: "value_error"})
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "notblank":
		return "must not be blank"
	case "email":
		return "value is not a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "calendardate":
		return "must be a date in YYYY-MM-DD format"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}
}
