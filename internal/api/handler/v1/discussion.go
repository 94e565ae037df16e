package v1

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/service"
)

type DiscussionService interface {
	Send(ctx context.Context, actor domain.User, standID uint, text string, attachment *service.Upload) (domain.Message, error)
	List(ctx context.Context, actor domain.User, standID uint) ([]domain.Message, error)
	ListByDay(ctx context.Context, actor domain.User, standID uint) ([]domain.MessageDay, error)
	Authorize(ctx context.Context, actor domain.User, standID uint) error
}

type DiscussionHandler struct {
	svc  DiscussionService
	uSvc UserService
	hub  *Hub
}

func NewDiscussionHandler(svc DiscussionService, uSvc UserService, hub *Hub) *DiscussionHandler {
	return &DiscussionHandler{
		svc:  svc,
		uSvc: uSvc,
		hub:  hub,
	}
}

// HandleListMessages godoc
// @Summary      List a stand's discussion
// @Description  Messages come back oldest first. With group=day they are bucketed by calendar day.
// @Tags         discussion
// @Produce      json
// @Param        standID  path      int     true   "Stand ID"
// @Param        group    query     string  false  "day"
// @Success      200      {array}   domain.Message
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID}/messages [get]
// @Security     BearerAuth
func (h *DiscussionHandler) HandleListMessages(ctx *gin.Context) {
	user, standID, respErr := actorAndStand(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if ctx.Query("group") == "day" {
		days, err := h.svc.ListByDay(ctx.Request.Context(), user, standID)
		if err != nil {
			response.RenderErr(ctx, response.FromError("v1.HandleListMessages -> h.svc.ListByDay", err))
			return
		}

		ctx.JSON(http.StatusOK, days)
		return
	}

	messages, err := h.svc.List(ctx.Request.Context(), user, standID)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleListMessages -> h.svc.List", err))
		return
	}

	ctx.JSON(http.StatusOK, messages)
}

// HandleSendMessage godoc
// @Summary      Post to a stand's discussion
// @Description  Send JSON, or a multipart form with an image in "attachment". Messages are accepted even after approval.
// @Tags         discussion
// @Accept       json,mpfd
// @Produce      json
// @Param        standID  path      int                         true  "Stand ID"
// @Param        request  body      request.SendMessageRequest  true  "message"
// @Success      201      {object}  domain.Message
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      429      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /stands/{standID}/messages [post]
// @Security     BearerAuth
func (h *DiscussionHandler) HandleSendMessage(ctx *gin.Context) {
	user, standID, respErr := actorAndStand(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.SendMessageRequest
	var attachment *service.Upload

	if strings.HasPrefix(ctx.ContentType(), gin.MIMEMultipartPOSTForm) {
		if err := ctx.ShouldBind(&req); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		header, err := ctx.FormFile("attachment")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		default:
			f, err := header.Open()
			if err != nil {
				response.RenderErr(ctx, response.ErrBadRequest(err))
				return
			}
			defer f.Close()

			attachment = &service.Upload{
				FileName:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Reader:      f,
			}
		}
	} else if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	msg, err := h.svc.Send(ctx.Request.Context(), user, standID, req.Message, attachment)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleSendMessage -> h.svc.Send", err))
		return
	}

	ctx.JSON(http.StatusCreated, msg)
}

// HandleWebSocket godoc
// @Summary      Watch a stand's discussion
// @Description  Upgrades to a websocket that receives every new message of the stand as JSON. Browsers pass the token in the "token" query parameter.
// @Tags         discussion
// @Param        standID  path      int  true  "Stand ID"
// @Success      101      {string}  string  "Switching Protocols"
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID}/ws [get]
// @Security     BearerAuth
func (h *DiscussionHandler) HandleWebSocket(ctx *gin.Context) {
	user, standID, respErr := actorAndStand(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Authorize(ctx.Request.Context(), user, standID); err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleWebSocket -> h.svc.Authorize", err))
		return
	}

	h.hub.serve(ctx, standID, user.ID)
}
