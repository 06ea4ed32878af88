package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/makkenzo/license-admin-console/internal/handler/dto"
	"github.com/makkenzo/license-admin-console/internal/ierr"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware renders the last error attached to the context as a
// dto.APIErrorResponse. Handlers that already wrote a response are left alone.
func ErrorHandlerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("ErrorHandler")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))

		status, errResponse := mapError(err)
		c.AbortWithStatusJSON(status, errResponse)
	}
}

func mapError(err error) (int, dto.APIErrorResponse) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest, dto.APIErrorResponse{
			Code:    dto.CodeValidation,
			Message: "Input validation failed.",
			Details: buildValidationErrors(ve),
		}
	}

	switch {
	case errors.Is(err, ierr.ErrValidation):
		return http.StatusBadRequest, dto.APIErrorResponse{Code: dto.CodeValidation, Message: err.Error()}
	case errors.Is(err, ierr.ErrNotConfirmed):
		return http.StatusBadRequest, dto.APIErrorResponse{Code: dto.CodeConfirmationRequired, Message: err.Error()}
	case errors.Is(err, ierr.ErrNotAuthenticated),
		errors.Is(err, ierr.ErrUnauthorized),
		errors.Is(err, ierr.ErrInvalidCredentials),
		errors.Is(err, ierr.ErrInvalidToken):
		return http.StatusUnauthorized, dto.APIErrorResponse{Code: dto.CodeUnauthenticated, Message: "Authentication required or failed."}
	case errors.Is(err, ierr.ErrForbidden):
		return http.StatusForbidden, dto.APIErrorResponse{Code: dto.CodeForbidden, Message: "Access denied."}
	case errors.Is(err, ierr.ErrNotFound):
		return http.StatusNotFound, dto.APIErrorResponse{Code: dto.CodeNotFound, Message: err.Error()}
	case errors.Is(err, ierr.ErrConflict):
		return http.StatusConflict, dto.APIErrorResponse{Code: dto.CodeConflict, Message: err.Error()}
	case errors.Is(err, ierr.ErrRemote):
		return http.StatusBadGateway, dto.APIErrorResponse{Code: dto.CodeRemote, Message: err.Error()}
	default:
		return http.StatusInternalServerError, dto.APIErrorResponse{Code: dto.CodeInternal, Message: "An unexpected error occurred."}
	}
}

func buildValidationErrors(ve validator.ValidationErrors) []dto.FieldError {
	details := make([]dto.FieldError, len(ve))
	for i, fe := range ve {
		details[i] = dto.FieldError{
			Field:   fe.Field(),
			Message: ValidationMessage(fe),
		}
	}
	return details
}

// ValidationMessage turns a validator failure into a sentence for the UI.
func ValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field '%s' failed validation on the '%s' tag", fe.Field(), fe.Tag())
	}
}

// FormError flattens a binding error into one banner line.
func FormError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return fmt.Errorf("%w: %v", ierr.ErrValidation, err)
	}
	return fmt.Errorf("%w: %s", ierr.ErrValidation, ValidationMessage(ve[0]))
}
