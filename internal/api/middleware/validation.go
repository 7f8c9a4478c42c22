package middleware

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"s2t/internal/api/errors"
	apperrors "s2t/internal/app/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateForm binds multipart or urlencoded form fields and validates them.
// A body cut off by http.MaxBytesReader yields ErrUploadTooLarge.
func ValidateForm(c *gin.Context, req interface{}) error {
	if err := c.ShouldBind(req); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return apperrors.Wrapf(apperrors.ErrUploadTooLarge, "request body above %d bytes", tooLarge.Limit)
		}
		return validationError("form", err)
	}
	return validateDomain(req)
}

// ValidateQuery binds and validates query parameters
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return validationError("query", err)
	}
	return validateDomain(req)
}

func validateDomain(req interface{}) error {
	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}

// validationError turns binding failures into a field-keyed APIError
func validationError(source string, err error) error {
	details := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) {
		for _, fieldError := range validationErrs {
			field := strings.ToLower(fieldError.Field())

			switch fieldError.Tag() {
			case "required":
				details[field] = "is required"
			case "min":
				details[field] = "is too short"
			case "max":
				details[field] = "is too long"
			case "oneof":
				details[field] = "must be one of " + fieldError.Param()
			default:
				details[field] = "is invalid"
			}
		}
	} else {
		details[source] = "invalid " + source + " parameters"
	}

	return errors.NewValidationError("Validation failed", details)
}
