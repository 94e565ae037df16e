package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
)

// Err is the error body every endpoint renders.
type Err struct {
	Err            error  `json:"-"`
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status"`
	ErrorText      string `json:"error,omitempty"`
	Status         string `json:"stand_status,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request",
		ErrorText:      err.Error(),
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized",
		ErrorText:      err.Error(),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Wrong credentials",
		ErrorText:      "email or password is incorrect",
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusForbidden,
		StatusText:     "Permission denied",
		ErrorText:      err.Error(),
	}
}

func ErrNotFound(resource, field string, value interface{}) *Err {
	err := fmt.Errorf("%s with %s %v not found", resource, field, value)
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found",
		ErrorText:      err.Error(),
	}
}

func notFound(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found",
		ErrorText:      err.Error(),
	}
}

func ErrConflict(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict",
		ErrorText:      err.Error(),
	}
}

func ErrLocked(err *domain.StandLockedError) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Stand locked",
		ErrorText:      err.Error(),
		Status:         string(err.Status),
	}
}

func ErrTooManyRequests(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusTooManyRequests,
		StatusText:     "Too many requests",
		ErrorText:      err.Error(),
	}
}

func ErrBadGateway(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusBadGateway,
		StatusText:     "Upload failed",
		ErrorText:      "the file could not be stored, please retry",
	}
}

func ErrInternalServerError(err error) *Err {
	return &Err{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error",
	}
}

// FromError maps a workflow error to its response. Unknown errors become a
// logged 500 carrying the op chain in where.
func FromError(where string, err error) *Err {
	var locked *domain.StandLockedError

	switch {
	case errors.As(err, &locked):
		return ErrLocked(locked)
	case errors.Is(err, domain.ErrValidation):
		return ErrBadRequest(rootValidation(err))
	case errors.Is(err, domain.ErrAdminOnly), errors.Is(err, domain.ErrNotStandOwner):
		return ErrPermissionDenied(leaf(err))
	case errors.Is(err, repository.ErrStandNotFound):
		return notFound(repository.ErrStandNotFound)
	case errors.Is(err, repository.ErrSubmissionNotFound):
		return notFound(repository.ErrSubmissionNotFound)
	case errors.Is(err, repository.ErrConfigurationNotFound):
		return notFound(repository.ErrConfigurationNotFound)
	case errors.Is(err, domain.ErrRequirementNotFound):
		return notFound(domain.ErrRequirementNotFound)
	case errors.Is(err, repository.ErrUserNotFound):
		return notFound(repository.ErrUserNotFound)
	case errors.Is(err, repository.ErrStandExists), errors.Is(err, repository.ErrUserEmailExists),
		errors.Is(err, domain.ErrDefaultConfiguration):
		return ErrConflict(leaf(err))
	case errors.Is(err, domain.ErrUploadFailed):
		return ErrBadGateway(fmt.Errorf("%s -> %w", where, err))
	}

	return ErrInternalServerError(fmt.Errorf("%s -> %w", where, err))
}

// rootValidation strips op-chain prefixes so clients only see the rule that failed.
func rootValidation(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil || !errors.Is(next, domain.ErrValidation) || next == domain.ErrValidation {
			return err
		}
		err = next
	}
}

func leaf(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}
