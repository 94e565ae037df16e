package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/service"
)

type SubmissionService interface {
	SubmitArtwork(ctx context.Context, actor domain.User, standID uint, in domain.ArtworkInput) (domain.Stand, error)
	SubmitLogo(ctx context.Context, actor domain.User, standID uint, in domain.FileInput) (domain.Stand, error)
	SubmitRender(ctx context.Context, actor domain.User, standID uint, in domain.FileInput) (domain.Stand, error)
	SubmitDrawing(ctx context.Context, actor domain.User, standID uint, in domain.DrawingInput) (domain.Stand, error)
	UploadFile(ctx context.Context, actor domain.User, standID uint, kind domain.SubmissionKind, up service.Upload) (domain.SubmissionSource, error)
	DeleteSubmission(ctx context.Context, actor domain.User, standID uint, kind domain.SubmissionKind, entryID uuid.UUID) (domain.Stand, error)
	CommentOnSubmission(ctx context.Context, actor domain.User, standID uint, kind domain.SubmissionKind, entryID uuid.UUID, text string) (domain.Stand, error)
	AddPartnerComment(ctx context.Context, actor domain.User, standID uint, text string) (domain.Stand, error)
	UpdateRequirements(ctx context.Context, actor domain.User, standID uint, req domain.StandRequirements) (domain.Stand, error)
	SetConstructionType(ctx context.Context, actor domain.User, standID uint, ct domain.ConstructionType) (domain.Stand, error)
}

type SubmissionHandler struct {
	svc  SubmissionService
	uSvc UserService
}

func NewSubmissionHandler(svc SubmissionService, uSvc UserService) *SubmissionHandler {
	return &SubmissionHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// submissionBody is implemented by every deliverable request.
type submissionBody interface {
	validatable
	UseUpload(src domain.SubmissionSource)
}

// HandleSubmitArtwork godoc
// @Summary      Submit artwork
// @Description  Accepts JSON with a file URL or link, or a multipart form carrying the file in "file".
// @Description  artwork_type names a template requirement, whose dimensions are used, or "Custom" with width and height.
// @Tags         submissions
// @Accept       json,mpfd
// @Produce      json
// @Param        standID  path      int                     true  "Stand ID"
// @Param        request  body      request.ArtworkRequest  true  "artwork"
// @Success      201      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      502      {object}  response.Err
// @Router       /stands/{standID}/artwork [post]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleSubmitArtwork(ctx *gin.Context) {
	var req request.ArtworkRequest
	h.submit(ctx, domain.KindArtwork, &req, func(c context.Context, user domain.User, standID uint) (domain.Stand, error) {
		return h.svc.SubmitArtwork(c, user, standID, req.ToInput())
	})
}

// HandleSubmitLogo godoc
// @Summary      Submit a logo
// @Tags         submissions
// @Accept       json,mpfd
// @Produce      json
// @Param        standID  path      int                        true  "Stand ID"
// @Param        request  body      request.SubmissionRequest  true  "logo"
// @Success      201      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /stands/{standID}/logos [post]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleSubmitLogo(ctx *gin.Context) {
	var req request.SubmissionRequest
	h.submit(ctx, domain.KindLogo, &req, func(c context.Context, user domain.User, standID uint) (domain.Stand, error) {
		return h.svc.SubmitLogo(c, user, standID, req.ToFileInput())
	})
}

// HandleSubmitRender godoc
// @Summary      Submit a stand render
// @Tags         submissions
// @Accept       json,mpfd
// @Produce      json
// @Param        standID  path      int                        true  "Stand ID"
// @Param        request  body      request.SubmissionRequest  true  "render"
// @Success      201      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /stands/{standID}/renders [post]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleSubmitRender(ctx *gin.Context) {
	var req request.SubmissionRequest
	h.submit(ctx, domain.KindRender, &req, func(c context.Context, user domain.User, standID uint) (domain.Stand, error) {
		return h.svc.SubmitRender(c, user, standID, req.ToFileInput())
	})
}

// HandleSubmitDrawing godoc
// @Summary      Submit a technical drawing
// @Tags         submissions
// @Accept       json,mpfd
// @Produce      json
// @Param        standID  path      int                     true  "Stand ID"
// @Param        request  body      request.DrawingRequest  true  "drawing"
// @Success      201      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /stands/{standID}/drawings [post]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleSubmitDrawing(ctx *gin.Context) {
	var req request.DrawingRequest
	h.submit(ctx, domain.KindDrawing, &req, func(c context.Context, user domain.User, standID uint) (domain.Stand, error) {
		return h.svc.SubmitDrawing(c, user, standID, req.ToInput())
	})
}

// submit binds req from JSON or a multipart form. A multipart file is stored
// first and becomes the submission's source.
func (h *SubmissionHandler) submit(ctx *gin.Context, kind domain.SubmissionKind, req submissionBody, fn func(context.Context, domain.User, uint) (domain.Stand, error)) {
	user, standID, respErr := actorAndStand(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if strings.HasPrefix(ctx.ContentType(), gin.MIMEMultipartPOSTForm) {
		if err := ctx.ShouldBind(req); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		if respErr = h.upload(ctx, user, standID, kind, req); respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}
	} else if err := ctx.ShouldBindJSON(req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	stand, err := fn(ctx.Request.Context(), user, standID)
	if err != nil {
		response.RenderErr(ctx, response.FromError(fmt.Sprintf("v1.submit -> %s", kind), err))
		return
	}

	ctx.JSON(http.StatusCreated, stand)
}

func (h *SubmissionHandler) upload(ctx *gin.Context, user domain.User, standID uint, kind domain.SubmissionKind, req submissionBody) *response.Err {
	header, err := ctx.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil
		}
		return response.ErrBadRequest(err)
	}

	f, err := header.Open()
	if err != nil {
		return response.ErrBadRequest(err)
	}
	defer f.Close()

	src, err := h.svc.UploadFile(ctx.Request.Context(), user, standID, kind, service.Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      f,
	})
	if err != nil {
		return response.FromError("v1.upload -> h.svc.UploadFile", err)
	}

	req.UseUpload(src)
	return nil
}

// HandleDeleteSubmission godoc
// @Summary      Delete a submission entry
// @Tags         submissions
// @Produce      json
// @Param        standID  path      int     true  "Stand ID"
// @Param        kind     path      string  true  "artwork, logo, render or drawing"
// @Param        entryID  path      string  true  "Submission ID"
// @Success      200      {object}  domain.Stand
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /stands/{standID}/submissions/{kind}/{entryID} [delete]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleDeleteSubmission(ctx *gin.Context) {
	user, standID, kind, entryID, respErr := h.entry(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.svc.DeleteSubmission(ctx.Request.Context(), user, standID, kind, entryID)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleDeleteSubmission -> h.svc.DeleteSubmission", err))
		return
	}

	ctx.JSON(http.StatusOK, stand)
}

// HandleCommentOnSubmission godoc
// @Summary      Comment on a submission entry
// @Description  Comments from administrators are recorded as feedback.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        standID  path      int                     true  "Stand ID"
// @Param        kind     path      string                  true  "artwork, logo, render or drawing"
// @Param        entryID  path      string                  true  "Submission ID"
// @Param        request  body      request.CommentRequest  true  "comment"
// @Success      201      {object}  domain.Stand
// @Failure      404      {object}  response.Err
// @Router       /stands/{standID}/submissions/{kind}/{entryID}/comments [post]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleCommentOnSubmission(ctx *gin.Context) {
	user, standID, kind, entryID, respErr := h.entry(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CommentRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.svc.CommentOnSubmission(ctx.Request.Context(), user, standID, kind, entryID, req.Text)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleCommentOnSubmission -> h.svc.CommentOnSubmission", err))
		return
	}

	ctx.JSON(http.StatusCreated, stand)
}

// HandleAddPartnerComment godoc
// @Summary      Add a general partner comment
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        standID  path      int                     true  "Stand ID"
// @Param        request  body      request.CommentRequest  true  "comment"
// @Success      201      {object}  domain.Stand
// @Failure      409      {object}  response.Err
// @Router       /stands/{standID}/comments [post]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleAddPartnerComment(ctx *gin.Context) {
	user, standID, respErr := actorAndStand(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CommentRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.svc.AddPartnerComment(ctx.Request.Context(), user, standID, req.Text)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleAddPartnerComment -> h.svc.AddPartnerComment", err))
		return
	}

	ctx.JSON(http.StatusCreated, stand)
}

// HandleUpdateRequirements godoc
// @Summary      Save AV and power requirements
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        standID  path      int                          true  "Stand ID"
// @Param        request  body      request.RequirementsRequest  true  "requirements"
// @Success      200      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /stands/{standID}/requirements [put]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleUpdateRequirements(ctx *gin.Context) {
	user, standID, respErr := actorAndStand(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RequirementsRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stand, err := h.svc.UpdateRequirements(ctx.Request.Context(), user, standID, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleUpdateRequirements -> h.svc.UpdateRequirements", err))
		return
	}

	ctx.JSON(http.StatusOK, stand)
}

// HandleSetConstructionType godoc
// @Summary      Choose who builds the booth
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        standID  path      int                              true  "Stand ID"
// @Param        request  body      request.ConstructionTypeRequest  true  "construction type"
// @Success      200      {object}  domain.Stand
// @Failure      400      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Router       /stands/{standID}/construction-type [put]
// @Security     BearerAuth
func (h *SubmissionHandler) HandleSetConstructionType(ctx *gin.Context) {
	user, standID, respErr := actorAndStand(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.ConstructionTypeRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ct := domain.ConstructionType(req.BoothConstructionType)
	stand, err := h.svc.SetConstructionType(ctx.Request.Context(), user, standID, ct)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleSetConstructionType -> h.svc.SetConstructionType", err))
		return
	}

	ctx.JSON(http.StatusOK, stand)
}

func (h *SubmissionHandler) entry(ctx *gin.Context) (domain.User, uint, domain.SubmissionKind, uuid.UUID, *response.Err) {
	user, standID, respErr := actorAndStand(ctx, h.uSvc)
	if respErr != nil {
		return domain.User{}, 0, "", uuid.Nil, respErr
	}

	kind, respErr := parseKindParam(ctx)
	if respErr != nil {
		return domain.User{}, 0, "", uuid.Nil, respErr
	}

	entryID, respErr := parseUUIDParam(ctx, "entryID")
	if respErr != nil {
		return domain.User{}, 0, "", uuid.Nil, respErr
	}

	return user, standID, kind, entryID, nil
}
