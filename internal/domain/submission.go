package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type SubmissionKind string

const (
	KindArtwork SubmissionKind = "artwork"
	KindLogo    SubmissionKind = "logo"
	KindRender  SubmissionKind = "render"
	KindDrawing SubmissionKind = "drawing"
)

func (k SubmissionKind) Valid() bool {
	switch k {
	case KindArtwork, KindLogo, KindRender, KindDrawing:
		return true
	}
	return false
}

type SubmissionType string

const (
	SubmissionFile SubmissionType = "file"
	SubmissionLink SubmissionType = "link"
)

type DrawingType string

const (
	DrawingFloorPlan  DrawingType = "Floor Plan"
	DrawingElevation  DrawingType = "Elevation"
	DrawingStructural DrawingType = "Structural"
	DrawingElectrical DrawingType = "Electrical"
	DrawingOther      DrawingType = "Other"
)

func (d DrawingType) Valid() bool {
	switch d {
	case DrawingFloorPlan, DrawingElevation, DrawingStructural, DrawingElectrical, DrawingOther:
		return true
	}
	return false
}

// CustomArtworkType marks artwork whose dimensions were typed in by the partner.
const CustomArtworkType = "Custom"

// SubmissionSource says where the deliverable lives: an uploaded file or an external link.
type SubmissionSource struct {
	Type     SubmissionType `json:"submission_type"`
	FileURL  string         `json:"file_url,omitempty"`
	FileName string         `json:"file_name,omitempty"`
	LinkURL  string         `json:"link_url,omitempty"`
}

func (s SubmissionSource) Validate() error {
	hasFile := strings.TrimSpace(s.FileURL) != ""
	hasLink := strings.TrimSpace(s.LinkURL) != ""
	switch s.Type {
	case SubmissionFile:
		if !hasFile || hasLink {
			return ErrSubmissionSource
		}
	case SubmissionLink:
		if !hasLink || hasFile {
			return ErrSubmissionSource
		}
	default:
		return ErrSubmissionSource
	}
	return nil
}

// ArtworkDimensions is either TemplateBound or CustomSize.
type ArtworkDimensions interface {
	isArtworkDimensions()
}

// TemplateBound takes its size from the named requirement of the stand's template.
type TemplateBound struct {
	RequirementName string
}

// CustomSize carries partner-supplied dimensions in meters.
type CustomSize struct {
	Width  float64
	Height float64
}

func (TemplateBound) isArtworkDimensions() {}
func (CustomSize) isArtworkDimensions()    {}

type ArtworkInput struct {
	Source      SubmissionSource
	Dimensions  ArtworkDimensions
	Description string
}

// Resolve returns the artwork type label and size for the input. Template-bound
// sizes always come from cfg, never from the caller.
func (in ArtworkInput) Resolve(cfg *StandConfiguration) (string, float64, float64, error) {
	switch dims := in.Dimensions.(type) {
	case TemplateBound:
		if cfg == nil {
			return "", 0, 0, ErrNoConfiguration
		}
		req, ok := cfg.FindRequirement(dims.RequirementName)
		if !ok {
			return "", 0, 0, ErrUnknownRequirement
		}
		return req.Name, req.Width, req.Height, nil
	case CustomSize:
		if dims.Width <= 0 || dims.Height <= 0 {
			return "", 0, 0, ErrInvalidDimensions
		}
		return CustomArtworkType, dims.Width, dims.Height, nil
	}
	return "", 0, 0, ErrUnknownRequirement
}

type ArtworkSubmission struct {
	ID uuid.UUID `json:"id"`
	SubmissionSource
	Width         float64   `json:"width"`
	Height        float64   `json:"height"`
	Description   string    `json:"description"`
	ArtworkType   string    `json:"artwork_type"`
	SubmittedAt   time.Time `json:"submitted_at"`
	SubmittedBy   string    `json:"submitted_by"`
	Comments      []Comment `json:"comments"`
	AdminFeedback []Comment `json:"admin_feedback"`
}

// FileSubmission is a logo or render deliverable.
type FileSubmission struct {
	ID   uuid.UUID      `json:"id"`
	Kind SubmissionKind `json:"kind"`
	SubmissionSource
	Description   string    `json:"description"`
	SubmittedAt   time.Time `json:"submitted_at"`
	SubmittedBy   string    `json:"submitted_by"`
	Comments      []Comment `json:"comments"`
	AdminFeedback []Comment `json:"admin_feedback"`
}

type DrawingSubmission struct {
	ID          uuid.UUID   `json:"id"`
	DrawingType DrawingType `json:"drawing_type"`
	SubmissionSource
	Description   string    `json:"description"`
	SubmittedAt   time.Time `json:"submitted_at"`
	SubmittedBy   string    `json:"submitted_by"`
	Comments      []Comment `json:"comments"`
	AdminFeedback []Comment `json:"admin_feedback"`
}

type FileInput struct {
	Source      SubmissionSource
	Description string
}

type DrawingInput struct {
	Source      SubmissionSource
	DrawingType DrawingType
	Description string
}

// SubmissionComment attaches a comment to one submission entry.
type SubmissionComment struct {
	Comment
	SubmissionID uuid.UUID
	Kind         SubmissionKind
	// Feedback separates administrator feedback from partner comments.
	Feedback bool
}
