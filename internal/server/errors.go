package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	reviewdomain "github.com/platewise/platewise/internal/review/domain"
	reviewerdomain "github.com/platewise/platewise/internal/reviewer/domain"
	storedomain "github.com/platewise/platewise/internal/store/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, reviewerdomain.ErrUnauthenticated),
		errors.Is(err, reviewerdomain.ErrInvalidCredentials),
		errors.Is(err, reviewdomain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, reviewerdomain.ErrAdminRequired),
		errors.Is(err, storedomain.ErrAdminRequired),
		errors.Is(err, reviewdomain.ErrAdminRequired),
		errors.Is(err, reviewdomain.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, reviewdomain.ErrPhoneVerificationRequired):
		return http.StatusPreconditionFailed, errorPayload{
			Type:    "precondition_failed",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, reviewerdomain.ErrInvalidEmail),
		errors.Is(err, reviewerdomain.ErrInvalidNickname),
		errors.Is(err, reviewerdomain.ErrInvalidPassword),
		errors.Is(err, reviewerdomain.ErrInvalidTier),
		errors.Is(err, reviewerdomain.ErrInvalidRole),
		errors.Is(err, reviewerdomain.ErrInvalidID),
		errors.Is(err, reviewerdomain.ErrSelfFollow),
		errors.Is(err, reviewerdomain.ErrSelfRoleChange),
		errors.Is(err, storedomain.ErrInvalidID),
		errors.Is(err, storedomain.ErrInvalidName),
		errors.Is(err, reviewdomain.ErrInvalidID),
		errors.Is(err, reviewdomain.ErrInvalidScore),
		errors.Is(err, reviewdomain.ErrInvalidContent),
		errors.Is(err, reviewdomain.ErrCommentRequired),
		errors.Is(err, reviewdomain.ErrSelfHelpful):
		return true
	}
	return false
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, reviewerdomain.ErrNotFound),
		errors.Is(err, reviewerdomain.ErrFollowNotFound),
		errors.Is(err, storedomain.ErrNotFound),
		errors.Is(err, reviewdomain.ErrNotFound),
		errors.Is(err, reviewdomain.ErrStoreNotFound),
		errors.Is(err, reviewdomain.ErrHelpfulNotFound):
		return true
	}
	return false
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, reviewerdomain.ErrDuplicateEmail),
		errors.Is(err, reviewerdomain.ErrDuplicateNickname),
		errors.Is(err, reviewerdomain.ErrAlreadyFollowing),
		errors.Is(err, reviewdomain.ErrDuplicateHelpful),
		errors.Is(err, reviewdomain.ErrNotPending),
		errors.Is(err, reviewdomain.ErrNotEditable):
		return true
	}
	return false
}
