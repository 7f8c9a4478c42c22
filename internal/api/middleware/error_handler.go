package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"s2t/internal/api/errors"
	apperrors "s2t/internal/app/errors"
)

// ErrorHandler recovers panics in handlers and renders them as APIError JSON
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString(RequestIDKey)

		var apiErr *errors.APIError

		switch err := recovered.(type) {
		case *errors.APIError:
			apiErr = err
		case error:
			logger.Error("Internal server error",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			apiErr = errors.NewInternalError("Internal server error")
		default:
			logger.Error("Unknown panic occurred",
				zap.Any("recovered", recovered),
				zap.String("request_id", requestID),
			)
			apiErr = errors.NewInternalError("Internal server error")
		}

		apiErr.RequestID = requestID
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError renders err as an APIError response and aborts the request.
// Domain errors are mapped to the matching HTTP kind.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := toAPIError(err)
	if apiErr.Kind == errors.KindInternal {
		_ = c.Error(err)
	}
	apiErr.RequestID = c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}

func toAPIError(err error) *errors.APIError {
	if apiErr, ok := err.(*errors.APIError); ok {
		return apiErr
	}

	switch {
	case apperrors.Is(err, apperrors.ErrProviderNotFound):
		return errors.NewNotFoundError("provider")
	case apperrors.Is(err, apperrors.ErrMicrophoneBusy):
		return errors.NewConflictError(err.Error())
	case apperrors.Is(err, apperrors.ErrUnsupportedFormat):
		return errors.NewBadRequestError(err.Error())
	case apperrors.Is(err, apperrors.ErrEmptyUpload):
		return errors.NewBadRequestError(err.Error())
	case apperrors.Is(err, apperrors.ErrUploadTooLarge):
		return &errors.APIError{Kind: errors.KindPayloadTooLarge, Message: err.Error()}
	default:
		return errors.NewInternalError("Internal server error")
	}
}
