package request

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

var (
	standStatuses     = []interface{}{"pending_partner_review", "pending_admin_review", "revision_needed", "approved", "completed"}
	constructionTypes = []interface{}{"sef_built", "partner_built"}
)

type CreateStandRequest struct {
	PartnerID             uint       `json:"partner_id"`
	ConfigurationID       *uint      `json:"configuration_id"`
	EventName             string     `json:"event_name"`
	BoothNumber           *string    `json:"booth_number"`
	BoothConstructionType string     `json:"booth_construction_type"`
	SubmissionDeadline    *time.Time `json:"submission_deadline"`
	AdminNotes            string     `json:"admin_notes"`
	AdminDefinedVoltages  []string   `json:"admin_defined_voltages"`
	*domain.StandLinks
}

func (req *CreateStandRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PartnerID, validation.Required),
		validation.Field(&req.BoothConstructionType, validation.In(constructionTypes...)),
		validation.Field(&req.StandLinks, validation.By(validLinks)),
	)
}

func (req *CreateStandRequest) ToDomain() domain.Stand {
	stand := domain.Stand{
		PartnerID:             req.PartnerID,
		ConfigurationID:       req.ConfigurationID,
		EventName:             strings.TrimSpace(req.EventName),
		BoothNumber:           req.BoothNumber,
		BoothConstructionType: domain.ConstructionType(req.BoothConstructionType),
		SubmissionDeadline:    req.SubmissionDeadline,
		AdminNotes:            req.AdminNotes,
		AdminDefinedVoltages:  req.AdminDefinedVoltages,
	}
	if req.StandLinks != nil {
		stand.StandLinks = *req.StandLinks
	}
	return stand
}

// UpdateStandRequest is a partial update; omitted fields are left alone and
// an empty voltage list clears the restriction.
type UpdateStandRequest struct {
	ConfigurationID      *uint      `json:"configuration_id"`
	EventName            *string    `json:"event_name"`
	BoothNumber          *string    `json:"booth_number"`
	SubmissionDeadline   *time.Time `json:"submission_deadline"`
	AdminNotes           *string    `json:"admin_notes"`
	AdminDefinedVoltages []string   `json:"admin_defined_voltages"`
	*domain.StandLinks
}

func (req *UpdateStandRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.StandLinks, validation.By(validLinks)),
	)
}

func (req *UpdateStandRequest) ToDomain() domain.StandDetails {
	return domain.StandDetails{
		ConfigurationID:      req.ConfigurationID,
		EventName:            req.EventName,
		BoothNumber:          req.BoothNumber,
		SubmissionDeadline:   req.SubmissionDeadline,
		Links:                req.StandLinks,
		AdminNotes:           req.AdminNotes,
		AdminDefinedVoltages: req.AdminDefinedVoltages,
	}
}

type ChangeStatusRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

func (req *ChangeStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required, validation.In(standStatuses...)),
		validation.Field(&req.Feedback, validation.Length(0, 4000)),
	)
}

type RequirementsRequest struct {
	AV                  domain.AVRequirements `json:"av_requirements"`
	PowerVoltage        *string               `json:"power_voltage"`
	PowerOutlets        *int                  `json:"power_outlets"`
	SpecialRequirements *string               `json:"special_requirements"`
}

func (req *RequirementsRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.PowerOutlets, validation.Min(0)),
	)
}

func (req *RequirementsRequest) ToDomain() domain.StandRequirements {
	return domain.StandRequirements{
		AV:                  req.AV,
		PowerVoltage:        req.PowerVoltage,
		PowerOutlets:        req.PowerOutlets,
		SpecialRequirements: req.SpecialRequirements,
	}
}

type ConstructionTypeRequest struct {
	BoothConstructionType string `json:"booth_construction_type"`
}

func (req *ConstructionTypeRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.BoothConstructionType, validation.Required, validation.In(constructionTypes...)),
	)
}

type CommentRequest struct {
	Text string `json:"text"`
}

func (req *CommentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Text, validation.Required, validation.Length(1, 4000)),
	)
}

func validLinks(value interface{}) error {
	links, _ := value.(*domain.StandLinks)
	if links == nil {
		return nil
	}
	return validation.ValidateStruct(
		links,
		validation.Field(&links.TechnicalDrawingLink, is.URL),
		validation.Field(&links.StandRenderLink, is.URL),
		validation.Field(&links.TechnicalSpecsLink, is.URL),
		validation.Field(&links.BrandingAreasLink, is.URL),
		validation.Field(&links.ExhibitorManualLink, is.URL),
	)
}
