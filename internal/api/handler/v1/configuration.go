package v1

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/request"
	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

type ConfigurationService interface {
	Create(ctx context.Context, actor domain.User, name string) (domain.StandConfiguration, error)
	Get(ctx context.Context, id uint) (domain.StandConfiguration, error)
	GetDefault(ctx context.Context) (domain.StandConfiguration, error)
	List(ctx context.Context, status domain.ConfigurationStatus) ([]domain.StandConfiguration, error)
	Duplicate(ctx context.Context, actor domain.User, id uint) (domain.StandConfiguration, error)
	SetDefault(ctx context.Context, actor domain.User, id uint) (domain.StandConfiguration, error)
	Archive(ctx context.Context, actor domain.User, id uint) (domain.StandConfiguration, error)
	Update(ctx context.Context, actor domain.User, id uint, patch domain.ConfigurationPatch) (domain.StandConfiguration, error)
	AddRequirement(ctx context.Context, actor domain.User, id uint, req domain.ArtworkRequirement) (domain.StandConfiguration, error)
	UpdateRequirement(ctx context.Context, actor domain.User, id uint, reqID uuid.UUID, req domain.ArtworkRequirement) (domain.StandConfiguration, error)
	RemoveRequirement(ctx context.Context, actor domain.User, id uint, reqID uuid.UUID) (domain.StandConfiguration, error)
	AddVoltage(ctx context.Context, actor domain.User, id uint, voltage string) (domain.StandConfiguration, error)
	RemoveVoltage(ctx context.Context, actor domain.User, id uint, voltage string) (domain.StandConfiguration, error)
	Delete(ctx context.Context, actor domain.User, id uint) error
}

type ConfigurationHandler struct {
	svc  ConfigurationService
	uSvc UserService
}

func NewConfigurationHandler(svc ConfigurationService, uSvc UserService) *ConfigurationHandler {
	return &ConfigurationHandler{
		svc:  svc,
		uSvc: uSvc,
	}
}

// HandleListConfigurations godoc
// @Summary      List stand configuration templates
// @Tags         configurations
// @Produce      json
// @Param        status  query     string  false  "draft, active or archived"
// @Success      200     {array}   domain.StandConfiguration
// @Failure      400     {object}  response.Err
// @Router       /configurations [get]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleListConfigurations(ctx *gin.Context) {
	status := domain.ConfigurationStatus(ctx.Query("status"))
	configs, err := h.svc.List(ctx.Request.Context(), status)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleListConfigurations -> h.svc.List", err))
		return
	}

	ctx.JSON(http.StatusOK, configs)
}

// HandleGetDefaultConfiguration godoc
// @Summary      Get the default template
// @Tags         configurations
// @Produce      json
// @Success      200  {object}  domain.StandConfiguration
// @Failure      404  {object}  response.Err
// @Router       /configurations/default [get]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleGetDefaultConfiguration(ctx *gin.Context) {
	cfg, err := h.svc.GetDefault(ctx.Request.Context())
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleGetDefaultConfiguration -> h.svc.GetDefault", err))
		return
	}

	ctx.JSON(http.StatusOK, cfg)
}

// HandleGetConfiguration godoc
// @Summary      Get a template
// @Tags         configurations
// @Produce      json
// @Param        configID  path      int  true  "Configuration ID"
// @Success      200       {object}  domain.StandConfiguration
// @Failure      404       {object}  response.Err
// @Router       /configurations/{configID} [get]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleGetConfiguration(ctx *gin.Context) {
	id, respErr := parseIDParam(ctx, "configID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := h.svc.Get(ctx.Request.Context(), id)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleGetConfiguration -> h.svc.Get", err))
		return
	}

	ctx.JSON(http.StatusOK, cfg)
}

// HandleCreateConfiguration godoc
// @Summary      Create a draft template
// @Tags         configurations
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateConfigurationRequest  true  "template"
// @Success      201      {object}  domain.StandConfiguration
// @Failure      400      {object}  response.Err
// @Failure      403      {object}  response.Err
// @Router       /configurations [post]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleCreateConfiguration(ctx *gin.Context) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateConfigurationRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := h.svc.Create(ctx.Request.Context(), user, req.Name)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleCreateConfiguration -> h.svc.Create", err))
		return
	}

	ctx.JSON(http.StatusCreated, cfg)
}

// HandleUpdateConfiguration godoc
// @Summary      Update a template
// @Description  Changing the version appends the previous one to the version history.
// @Tags         configurations
// @Accept       json
// @Produce      json
// @Param        configID  path      int                                 true  "Configuration ID"
// @Param        request   body      request.UpdateConfigurationRequest  true  "fields to change"
// @Success      200       {object}  domain.StandConfiguration
// @Failure      400       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Router       /configurations/{configID} [patch]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleUpdateConfiguration(ctx *gin.Context) {
	user, id, respErr := h.actorAndConfig(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateConfigurationRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := h.svc.Update(ctx.Request.Context(), user, id, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleUpdateConfiguration -> h.svc.Update", err))
		return
	}

	ctx.JSON(http.StatusOK, cfg)
}

// HandleDuplicateConfiguration godoc
// @Summary      Duplicate a template as a new draft
// @Tags         configurations
// @Produce      json
// @Param        configID  path      int  true  "Configuration ID"
// @Success      201       {object}  domain.StandConfiguration
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Router       /configurations/{configID}/duplicate [post]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleDuplicateConfiguration(ctx *gin.Context) {
	h.lifecycle(ctx, http.StatusCreated, "v1.HandleDuplicateConfiguration -> h.svc.Duplicate", h.svc.Duplicate)
}

// HandleSetDefaultConfiguration godoc
// @Summary      Make a template the default
// @Description  The template is activated and every other template loses the default flag.
// @Tags         configurations
// @Produce      json
// @Param        configID  path      int  true  "Configuration ID"
// @Success      200       {object}  domain.StandConfiguration
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Router       /configurations/{configID}/default [put]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleSetDefaultConfiguration(ctx *gin.Context) {
	h.lifecycle(ctx, http.StatusOK, "v1.HandleSetDefaultConfiguration -> h.svc.SetDefault", h.svc.SetDefault)
}

// HandleArchiveConfiguration godoc
// @Summary      Archive a template
// @Tags         configurations
// @Produce      json
// @Param        configID  path      int  true  "Configuration ID"
// @Success      200       {object}  domain.StandConfiguration
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Router       /configurations/{configID}/archive [post]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleArchiveConfiguration(ctx *gin.Context) {
	h.lifecycle(ctx, http.StatusOK, "v1.HandleArchiveConfiguration -> h.svc.Archive", h.svc.Archive)
}

// HandleDeleteConfiguration godoc
// @Summary      Delete a template
// @Description  The default template cannot be deleted.
// @Tags         configurations
// @Param        configID  path  int  true  "Configuration ID"
// @Success      204
// @Failure      400       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Failure      404       {object}  response.Err
// @Router       /configurations/{configID} [delete]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleDeleteConfiguration(ctx *gin.Context) {
	user, id, respErr := h.actorAndConfig(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.Delete(ctx.Request.Context(), user, id); err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleDeleteConfiguration -> h.svc.Delete", err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleAddRequirement godoc
// @Summary      Add an artwork requirement
// @Tags         configurations
// @Accept       json
// @Produce      json
// @Param        configID  path      int                         true  "Configuration ID"
// @Param        request   body      request.RequirementRequest  true  "requirement"
// @Success      201       {object}  domain.StandConfiguration
// @Failure      400       {object}  response.Err
// @Failure      403       {object}  response.Err
// @Router       /configurations/{configID}/requirements [post]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleAddRequirement(ctx *gin.Context) {
	user, id, respErr := h.actorAndConfig(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RequirementRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := h.svc.AddRequirement(ctx.Request.Context(), user, id, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleAddRequirement -> h.svc.AddRequirement", err))
		return
	}

	ctx.JSON(http.StatusCreated, cfg)
}

// HandleUpdateRequirement godoc
// @Summary      Replace an artwork requirement
// @Tags         configurations
// @Accept       json
// @Produce      json
// @Param        configID       path      int                         true  "Configuration ID"
// @Param        requirementID  path      string                      true  "Requirement ID"
// @Param        request        body      request.RequirementRequest  true  "requirement"
// @Success      200            {object}  domain.StandConfiguration
// @Failure      400            {object}  response.Err
// @Failure      404            {object}  response.Err
// @Router       /configurations/{configID}/requirements/{requirementID} [put]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleUpdateRequirement(ctx *gin.Context) {
	user, id, respErr := h.actorAndConfig(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	reqID, respErr := parseUUIDParam(ctx, "requirementID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.RequirementRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := h.svc.UpdateRequirement(ctx.Request.Context(), user, id, reqID, req.ToDomain())
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleUpdateRequirement -> h.svc.UpdateRequirement", err))
		return
	}

	ctx.JSON(http.StatusOK, cfg)
}

// HandleRemoveRequirement godoc
// @Summary      Remove an artwork requirement
// @Tags         configurations
// @Produce      json
// @Param        configID       path      int     true  "Configuration ID"
// @Param        requirementID  path      string  true  "Requirement ID"
// @Success      200            {object}  domain.StandConfiguration
// @Failure      404            {object}  response.Err
// @Router       /configurations/{configID}/requirements/{requirementID} [delete]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleRemoveRequirement(ctx *gin.Context) {
	user, id, respErr := h.actorAndConfig(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	reqID, respErr := parseUUIDParam(ctx, "requirementID")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := h.svc.RemoveRequirement(ctx.Request.Context(), user, id, reqID)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleRemoveRequirement -> h.svc.RemoveRequirement", err))
		return
	}

	ctx.JSON(http.StatusOK, cfg)
}

// HandleAddVoltage godoc
// @Summary      Offer a voltage
// @Tags         configurations
// @Accept       json
// @Produce      json
// @Param        configID  path      int                     true  "Configuration ID"
// @Param        request   body      request.VoltageRequest  true  "voltage"
// @Success      200       {object}  domain.StandConfiguration
// @Failure      400       {object}  response.Err
// @Router       /configurations/{configID}/voltages [post]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleAddVoltage(ctx *gin.Context) {
	user, id, respErr := h.actorAndConfig(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.VoltageRequest
	if respErr = bindJSON(ctx, &req); respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := h.svc.AddVoltage(ctx.Request.Context(), user, id, req.Voltage)
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleAddVoltage -> h.svc.AddVoltage", err))
		return
	}

	ctx.JSON(http.StatusOK, cfg)
}

// HandleRemoveVoltage godoc
// @Summary      Stop offering a voltage
// @Tags         configurations
// @Produce      json
// @Param        configID  path      int     true  "Configuration ID"
// @Param        voltage   path      string  true  "Voltage"
// @Success      200       {object}  domain.StandConfiguration
// @Router       /configurations/{configID}/voltages/{voltage} [delete]
// @Security     BearerAuth
func (h *ConfigurationHandler) HandleRemoveVoltage(ctx *gin.Context) {
	user, id, respErr := h.actorAndConfig(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := h.svc.RemoveVoltage(ctx.Request.Context(), user, id, ctx.Param("voltage"))
	if err != nil {
		response.RenderErr(ctx, response.FromError("v1.HandleRemoveVoltage -> h.svc.RemoveVoltage", err))
		return
	}

	ctx.JSON(http.StatusOK, cfg)
}

type configAction func(ctx context.Context, actor domain.User, id uint) (domain.StandConfiguration, error)

func (h *ConfigurationHandler) lifecycle(ctx *gin.Context, status int, where string, action configAction) {
	user, id, respErr := h.actorAndConfig(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	cfg, err := action(ctx.Request.Context(), user, id)
	if err != nil {
		response.RenderErr(ctx, response.FromError(where, err))
		return
	}

	ctx.JSON(status, cfg)
}

func (h *ConfigurationHandler) actorAndConfig(ctx *gin.Context) (domain.User, uint, *response.Err) {
	user, respErr := getUserFromContext(ctx, h.uSvc)
	if respErr != nil {
		return domain.User{}, 0, respErr
	}

	id, respErr := parseIDParam(ctx, "configID")
	if respErr != nil {
		return domain.User{}, 0, respErr
	}

	return user, id, nil
}
