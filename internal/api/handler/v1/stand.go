package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

type StandService interface {
	Create(ctx context.Context, actor domain.User, stand domain.Stand) (domain.Stand, error)
	GetOrCreateForPartner(ctx context.Context, actor domain.User) (domain.Stand, error)
	Get(ctx context.Context, actor domain.User, id uint) (domain.Stand, error)
	List(ctx context.Context, actor domain.User, filter domain.StandFilter) ([]domain.StandListItem, error)
	Summary(ctx context.Context, actor domain.User) ([]domain.StatusCount, error)
	UpdateDetails(ctx context.Context, actor domain.User, id uint, details domain.StandDetails) (domain.Stand, error)
	Delete(ctx context.Context, actor domain.User, id uint) error
	Sheet(ctx context.Context, actor domain.User, id uint, publicURL string) ([]byte, error)
}

type ReviewService interface {
	ChangeStatus(ctx context.Context, actor domain.User, standID uint, target domain.StandStatus, feedback string) (domain.Stand, error)
	History(ctx context.Context, actor domain.User, standID uint) ([]domain.RevisionEntry, error)
}

type StandHandler struct {
	svc       StandService
	review    ReviewService
	uSvc      UserService
	publicURL string
}

func NewStandHandler(svc StandService, review ReviewService, uSvc UserService, publicURL string) *StandHandler {
	return &StandHandler{
		svc:       svc,
		review:    review,
		uSvc:      uSvc,
		publicURL: publicURL,
	}
}

// HandleGetMyStand godoc
// @Summary      Get the partner's stand
// @Description  Returns the caller's stand for the current event, creating it on first access.
// @Tags         stands
// @Produce      json
// @Success      200  {object}  domain.Stand
// @Failure      400  {object}  response.Err
// @Failure      401  {object}  response.Err
// @Router       /stands/mine [get]
// @Security     BearerAuth
func (h *StandHandler) HandleGetMyStand(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.svc.GetOrCreateForPartner(ctx.Request.Context(), user)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleGetMyStand -> h.svc.GetOrCreateForPartner", err))
		return
	}

	ctx.JSON(http.StatusOK, stand)
}

// HandleCreateStand godoc
// @Summary      Create a stand for a partner
// @Tags         stands
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateStandRequest  true  "stand"
// @Success      201      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /stands [post]
// @Security     BearerAuth
func (h *StandHandler) HandleCreateStand(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateStandRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.svc.Create(ctx.Request.Context(), user, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleCreateStand -> h.svc.Create", err))
		return
	}

	ctx.JSON(http.StatusCreated, stand)
}

// HandleListStands godoc
// @Summary      List stands
// @Description  Administrators see every stand; partners only their own.
// @Tags         stands
// @Produce      json
// @Param        status      query     string  false  "filter by status"
// @Success      200         {array}   domain.StandListItem
// @Failure      400         {object}  response.Err
// @Router       /stands [get]
// @Security     BearerAuth
func (h *StandHandler) HandleListStands(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	filter := domain.StandFilter{Status: domain.StandStatus(ctx.Query("status"))}
	items, err := h.svc.List(ctx.Request.Context(), user, filter)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleListStands -> h.svc.List", err))
		return
	}

	ctx.JSON(http.StatusOK, items)
}

// HandleStandSummary godoc
// @Summary      Count stands per status
// @Tags         stands
// @Produce      json
// @Success      200  {array}   domain.StatusCount
// @Failure      403  {object}  response.Err
// @Router       /stands/summary [get]
// @Security     BearerAuth
func (h *StandHandler) HandleStandSummary(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	summary, err := h.svc.Summary(ctx.Request.Context(), user)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleStandSummary -> h.svc.Summary", err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// HandleGetStand godoc
// @Summary      Get a stand
// @Tags         stands
// @Produce      json
// @Param        standID  path      int  true  "Stand ID"
// @Success      200      {object}  domain.Stand
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID} [get]
// @Security     BearerAuth
func (h *StandHandler) HandleGetStand(ctx *gin.Context) {
	user, standID, respErr := h.actorAndStand(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.svc.Get(ctx.Request.Context(), user, standID)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleGetStand -> h.svc.Get", err))
		return
	}

	ctx.JSON(http.StatusOK, stand)
}

// HandleUpdateStand godoc
// @Summary      Update administrator-owned stand fields
// @Tags         stands
// @Accept       json
// @Produce      json
// @Param        standID  path      int                         true  "Stand ID"
// @Param        request  body      request.UpdateStandRequest  true  "fields to change"
// @Success      200      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID} [patch]
// @Security     BearerAuth
func (h *StandHandler) HandleUpdateStand(ctx *gin.Context) {
	user, standID, respErr := h.actorAndStand(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateStandRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.svc.UpdateDetails(ctx.Request.Context(), user, standID, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleUpdateStand -> h.svc.UpdateDetails", err))
		return
	}

	ctx.JSON(http.StatusOK, stand)
}

// HandleDeleteStand godoc
// @Summary      Delete a stand
// @Tags         stands
// @Param        standID  path  int  true  "Stand ID"
// @Success      204
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID} [delete]
// @Security     BearerAuth
func (h *StandHandler) HandleDeleteStand(ctx *gin.Context) {
	user, standID, respErr := h.actorAndStand(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), user, standID); err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleDeleteStand -> h.svc.Delete", err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleStandSheet godoc
// @Summary      Download the stand sheet as PDF
// @Tags         stands
// @Produce      application/pdf
// @Param        standID  path  int  true  "Stand ID"
// @Success      200
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID}/sheet.pdf [get]
// @Security     BearerAuth
func (h *StandHandler) HandleStandSheet(ctx *gin.Context) {
	user, standID, respErr := h.actorAndStand(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	pdf, err := h.svc.Sheet(ctx.Request.Context(), user, standID, h.publicURL)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleStandSheet -> h.svc.Sheet", err))
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="stand-%d.pdf"`, standID))
	ctx.Data(http.StatusOK, "application/pdf", pdf)
}

// HandleChangeStatus godoc
// @Summary      Change a stand's review status
// @Description  Moving to revision_needed requires feedback. Every change is recorded in the revision history.
// @Tags         review
// @Accept       json
// @Produce      json
// @Param        standID  path      int                          true  "Stand ID"
// @Param        request  body      request.ChangeStatusRequest  true  "target status"
// @Success      200      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID}/status [put]
// @Security     BearerAuth
func (h *StandHandler) HandleChangeStatus(ctx *gin.Context) {
	user, standID, respErr := h.actorAndStand(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ChangeStatusRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.review.ChangeStatus(ctx.Request.Context(), user, standID, domain.StandStatus(req.Status), req.Feedback)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleChangeStatus -> h.review.ChangeStatus", err))
		return
	}

	ctx.JSON(http.StatusOK, stand)
}

// HandleStandHistory godoc
// @Summary      Get a stand's revision history
// @Tags         review
// @Produce      json
// @Param        standID  path      int  true  "Stand ID"
// @Success      200      {array}   domain.RevisionEntry
// @Failure      403      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID}/history [get]
// @Security     BearerAuth
func (h *StandHandler) HandleStandHistory(ctx *gin.Context) {
	user, standID, respErr := h.actorAndStand(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	entries, err := h.review.History(ctx.Request.Context(), user, standID)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleStandHistory -> h.review.History", err))
		return
	}

	ctx.JSON(http.StatusOK, entries)
}

func (h *StandHandler) actorAndStand(ctx *gin.Context) (domain.User, uint, *response.Err) {
	return actorAndStand(ctx, h.uSvc)
}
