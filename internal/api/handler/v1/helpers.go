package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/stand-portal-api/internal/api/middleware"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/service"
)

var errNoUserInContext = errors.New("no authenticated user")

// getUserFromContext loads the account behind the verified token.
func getUserFromContext(ctx *gin.Context, uSvc UserService) (domain.User, *response.Err) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		return domain.User{}, response.ErrUnauthorized(errNoUserInContext)
	}

	user, err := uSvc.GetUser(ctx.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized(err)
		}
		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("v1.getUserFromContext -> uSvc.GetUser -> %w", err))
	}

	return user, nil
}

func parseIDParam(ctx *gin.Context, name string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, ctx.Param(name)))
	}

	return uint(id), nil
}

func parseUUIDParam(ctx *gin.Context, name string) (uuid.UUID, *response.Err) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		return uuid.Nil, response.ErrBadRequest(fmt.Errorf("invalid %s: %q", name, ctx.Param(name)))
	}

	return id, nil
}

func parseKindParam(ctx *gin.Context) (domain.SubmissionKind, *response.Err) {
	kind := domain.SubmissionKind(ctx.Param("kind"))
	if !kind.Valid() {
		return "", response.ErrBadRequest(fmt.Errorf("invalid submission kind: %q", kind))
	}

	return kind, nil
}

type validatable interface {
	Validate() error
}

// bindJSON decodes and validates the request body.
func bindJSON(ctx *gin.Context, req validatable) *response.Err {
	if err := ctx.ShouldBindJSON(req); err != nil {
		return response.ErrBadRequest(err)
	}
	if err := req.Validate(); err != nil {
		return response.ErrBadRequest(err)
	}

	return nil
}

func actorAndStand(ctx *gin.Context, uSvc UserService) (domain.User, uint, *response.Err) {
	user, respErr := getUserFromContext(ctx, uSvc)
	if respErr != nil {
		return domain.User{}, 0, respErr
	}

	standID, respErr := parseIDParam(ctx, "standID")
	if respErr != nil {
		return domain.User{}, 0, respErr
	}

	return user, standID, nil
}
