package request

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

var (
	submissionTypes = []interface{}{string(domain.SubmissionFile), string(domain.SubmissionLink)}
	drawingTypes    = []interface{}{
		string(domain.DrawingFloorPlan),
		string(domain.DrawingElevation),
		string(domain.DrawingStructural),
		string(domain.DrawingElectrical),
		string(domain.DrawingOther),
	}
)

// SubmissionRequest is shared by every deliverable. Multipart uploads bind
// the same fields from the form and fill FileURL after storing the file.
type SubmissionRequest struct {
	SubmissionType string `json:"submission_type" form:"submission_type"`
	FileURL        string `json:"file_url" form:"file_url"`
	FileName       string `json:"file_name" form:"file_name"`
	LinkURL        string `json:"link_url" form:"link_url"`
	Description    string `json:"description" form:"description"`
}

func (req *SubmissionRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.SubmissionType, validation.Required, validation.In(submissionTypes...)),
		validation.Field(&req.FileURL, is.URL),
		validation.Field(&req.LinkURL, is.URL),
		validation.Field(&req.Description, validation.Length(0, 2000)),
	)
}

// UseUpload points the request at a stored file.
func (req *SubmissionRequest) UseUpload(src domain.SubmissionSource) {
	req.SubmissionType = string(src.Type)
	req.FileURL = src.FileURL
	req.FileName = src.FileName
	req.LinkURL = ""
}

func (req *SubmissionRequest) Source() domain.SubmissionSource {
	return domain.SubmissionSource{
		Type:     domain.SubmissionType(req.SubmissionType),
		FileURL:  strings.TrimSpace(req.FileURL),
		FileName: strings.TrimSpace(req.FileName),
		LinkURL:  strings.TrimSpace(req.LinkURL),
	}
}

func (req *SubmissionRequest) ToFileInput() domain.FileInput {
	return domain.FileInput{
		Source:      req.Source(),
		Description: req.Description,
	}
}

// ArtworkRequest names a template requirement in ArtworkType, or "Custom"
// together with Width and Height in meters.
type ArtworkRequest struct {
	SubmissionRequest
	ArtworkType string   `json:"artwork_type" form:"artwork_type"`
	Width       *float64 `json:"width" form:"width"`
	Height      *float64 `json:"height" form:"height"`
}

func (req *ArtworkRequest) Validate() error {
	if err := req.SubmissionRequest.Validate(); err != nil {
		return err
	}
	var size []validation.Rule
	if req.isCustom() {
		size = append(size, validation.Required, validation.Min(0.01))
	}
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ArtworkType, validation.Required),
		validation.Field(&req.Width, size...),
		validation.Field(&req.Height, size...),
	)
}

func (req *ArtworkRequest) isCustom() bool {
	return strings.EqualFold(strings.TrimSpace(req.ArtworkType), domain.CustomArtworkType)
}

func (req *ArtworkRequest) ToInput() domain.ArtworkInput {
	in := domain.ArtworkInput{
		Source:      req.Source(),
		Description: req.Description,
	}
	if req.isCustom() {
		var size domain.CustomSize
		if req.Width != nil {
			size.Width = *req.Width
		}
		if req.Height != nil {
			size.Height = *req.Height
		}
		in.Dimensions = size
		return in
	}
	in.Dimensions = domain.TemplateBound{RequirementName: strings.TrimSpace(req.ArtworkType)}
	return in
}

type DrawingRequest struct {
	SubmissionRequest
	DrawingType string `json:"drawing_type" form:"drawing_type"`
}

func (req *DrawingRequest) Validate() error {
	if err := req.SubmissionRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(
		req,
		validation.Field(&req.DrawingType, validation.Required, validation.In(drawingTypes...)),
	)
}

func (req *DrawingRequest) ToInput() domain.DrawingInput {
	return domain.DrawingInput{
		Source:      req.Source(),
		DrawingType: domain.DrawingType(req.DrawingType),
		Description: req.Description,
	}
}
