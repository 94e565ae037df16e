package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

var configurationStatuses = []interface{}{
	string(domain.ConfigurationDraft),
	string(domain.ConfigurationActive),
	string(domain.ConfigurationArchived),
}

type CreateConfigurationRequest struct {
	Name string `json:"name"`
}

func (req *CreateConfigurationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
	)
}

type UpdateConfigurationRequest struct {
	Name                 *string            `json:"name"`
	Version              *string            `json:"version"`
	Status               *string            `json:"status"`
	Guidelines           *domain.Guidelines `json:"guidelines"`
	ApplicableBoothTypes []string           `json:"applicable_booth_types"`
}

func (req *UpdateConfigurationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Length(1, 200)),
		validation.Field(&req.Version, validation.Length(1, 20)),
		validation.Field(&req.Status, validation.In(configurationStatuses...)),
	)
}

func (req *UpdateConfigurationRequest) ToDomain() domain.ConfigurationPatch {
	patch := domain.ConfigurationPatch{
		Name:       req.Name,
		Version:    req.Version,
		Guidelines: req.Guidelines,
	}
	if req.Status != nil {
		status := domain.ConfigurationStatus(*req.Status)
		patch.Status = &status
	}
	for _, t := range req.ApplicableBoothTypes {
		patch.ApplicableBoothTypes = append(patch.ApplicableBoothTypes, domain.ConstructionType(t))
	}
	return patch
}

type RequirementRequest struct {
	Name             string   `json:"name"`
	Width            float64  `json:"width"`
	Height           float64  `json:"height"`
	AcceptedFormats  []string `json:"accepted_formats"`
	MinResolutionDPI int      `json:"min_resolution_dpi"`
	ColorMode        string   `json:"color_mode"`
	BleedAreaMM      float64  `json:"bleed_area_mm"`
	MaxFileSizeMB    int      `json:"max_file_size_mb"`
	IsRequired       bool     `json:"is_required"`
	Description      string   `json:"description"`
}

func (req *RequirementRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&req.Width, validation.Required, validation.Min(0.01)),
		validation.Field(&req.Height, validation.Required, validation.Min(0.01)),
		validation.Field(&req.MinResolutionDPI, validation.Min(0)),
		validation.Field(&req.BleedAreaMM, validation.Min(0.0)),
		validation.Field(&req.MaxFileSizeMB, validation.Min(0)),
	)
}

func (req *RequirementRequest) ToDomain() domain.ArtworkRequirement {
	return domain.ArtworkRequirement{
		Name:             strings.TrimSpace(req.Name),
		Width:            req.Width,
		Height:           req.Height,
		AcceptedFormats:  req.AcceptedFormats,
		MinResolutionDPI: req.MinResolutionDPI,
		ColorMode:        req.ColorMode,
		BleedAreaMM:      req.BleedAreaMM,
		MaxFileSizeMB:    req.MaxFileSizeMB,
		IsRequired:       req.IsRequired,
		Description:      req.Description,
	}
}

type VoltageRequest struct {
	Voltage string `json:"voltage"`
}

func (req *VoltageRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Voltage, validation.Required, validation.Length(1, 20)),
	)
}
