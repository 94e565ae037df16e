package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every input error rejected before a write.
var ErrValidation = errors.New("validation failed")

var (
	ErrFeedbackRequired     = fmt.Errorf("%w: feedback is required when requesting a revision", ErrValidation)
	ErrEmptyMessage         = fmt.Errorf("%w: a message needs text or an attachment", ErrValidation)
	ErrUnknownRequirement   = fmt.Errorf("%w: unknown artwork requirement", ErrValidation)
	ErrInvalidDimensions    = fmt.Errorf("%w: custom artwork needs a positive width and height", ErrValidation)
	ErrSubmissionSource     = fmt.Errorf("%w: provide exactly one of file or link matching the submission type", ErrValidation)
	ErrInvalidStatus        = fmt.Errorf("%w: unknown stand status", ErrValidation)
	ErrInvalidConstruction  = fmt.Errorf("%w: unknown booth construction type", ErrValidation)
	ErrInvalidDrawingType   = fmt.Errorf("%w: unknown drawing type", ErrValidation)
	ErrInvalidKind          = fmt.Errorf("%w: unknown submission kind", ErrValidation)
	ErrInvalidVoltage       = fmt.Errorf("%w: voltage is not offered for this stand", ErrValidation)
	ErrEmptyComment         = fmt.Errorf("%w: comment text is required", ErrValidation)
	ErrAttachmentTooLarge   = fmt.Errorf("%w: attachment exceeds the size limit", ErrValidation)
	ErrAttachmentNotImage   = fmt.Errorf("%w: attachment must be an image", ErrValidation)
	ErrNoConfiguration      = fmt.Errorf("%w: no requirement template applies to this stand", ErrValidation)
	ErrNameRequired         = fmt.Errorf("%w: name is required", ErrValidation)
	ErrInvalidRequirement   = fmt.Errorf("%w: a requirement needs a name and a positive width and height", ErrValidation)
	ErrDuplicateRequirement = fmt.Errorf("%w: a requirement with this name already exists", ErrValidation)
	ErrBlankVoltage         = fmt.Errorf("%w: voltage cannot be blank", ErrValidation)
	ErrInvalidOutlets       = fmt.Errorf("%w: power outlets cannot be negative", ErrValidation)
	ErrInvalidBoothType     = fmt.Errorf("%w: unknown applicable booth type", ErrValidation)
	ErrInvalidConfigStatus  = fmt.Errorf("%w: unknown template status", ErrValidation)
)

var (
	ErrAdminOnly     = errors.New("only administrators can perform this action")
	ErrNotStandOwner = errors.New("stand belongs to another partner")
	ErrUploadFailed  = errors.New("file upload failed")

	ErrDefaultConfiguration = errors.New("the default template cannot be deleted")

	ErrRequirementNotFound = errors.New("artwork requirement not found")
)

// StandLockedError is returned when a partner mutates an approved or completed stand.
type StandLockedError struct {
	StandID uint
	Status  StandStatus
}

func (e *StandLockedError) Error() string {
	return fmt.Sprintf("stand %d is locked (status %s)", e.StandID, e.Status)
}

func IsStandLocked(err error) bool {
	var locked *StandLockedError
	return errors.As(err, &locked)
}
