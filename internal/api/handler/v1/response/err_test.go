package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{
			name:       "locked",
			err:        fmt.Errorf("service.SubmitArtwork -> %w", &domain.StandLockedError{StandID: 4, Status: domain.StatusApproved}),
			wantStatus: http.StatusConflict,
			wantText:   "stand 4 is locked (status approved)",
		},
		{
			name:       "validation keeps only the rule",
			err:        fmt.Errorf("service.ChangeStatus -> domain.Transition -> %w", domain.ErrFeedbackRequired),
			wantStatus: http.StatusBadRequest,
			wantText:   domain.ErrFeedbackRequired.Error(),
		},
		{
			name:       "admin only",
			err:        fmt.Errorf("service.Create -> %w", domain.ErrAdminOnly),
			wantStatus: http.StatusForbidden,
			wantText:   domain.ErrAdminOnly.Error(),
		},
		{
			name:       "other partner",
			err:        domain.ErrNotStandOwner,
			wantStatus: http.StatusForbidden,
			wantText:   domain.ErrNotStandOwner.Error(),
		},
		{
			name:       "stand not found",
			err:        fmt.Errorf("repo.FindByID -> %w", repository.ErrStandNotFound),
			wantStatus: http.StatusNotFound,
			wantText:   repository.ErrStandNotFound.Error(),
		},
		{
			name:       "requirement not found",
			err:        domain.ErrRequirementNotFound,
			wantStatus: http.StatusNotFound,
			wantText:   domain.ErrRequirementNotFound.Error(),
		},
		{
			name:       "stand exists",
			err:        fmt.Errorf("repo.Create -> %w", repository.ErrStandExists),
			wantStatus: http.StatusConflict,
			wantText:   repository.ErrStandExists.Error(),
		},
		{
			name:       "default template",
			err:        fmt.Errorf("handler.Delete -> %w", domain.ErrDefaultConfiguration),
			wantStatus: http.StatusConflict,
			wantText:   domain.ErrDefaultConfiguration.Error(),
		},
		{
			name:       "upload failed",
			err:        fmt.Errorf("%w: %v", domain.ErrUploadFailed, errors.New("minio down")),
			wantStatus: http.StatusBadGateway,
			wantText:   "the file could not be stored, please retry",
		},
		{
			name:       "unknown",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError("v1.test", tt.err)

			assert.Equal(t, tt.wantStatus, got.HTTPStatusCode)
			assert.Equal(t, tt.wantText, got.ErrorText)
		})
	}
}

func TestFromError_LockedCarriesStatus(t *testing.T) {
	got := FromError("v1.test", &domain.StandLockedError{StandID: 4, Status: domain.StatusCompleted})

	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "Stand locked", got.StatusText)
}

func TestFromError_InternalKeepsOpChain(t *testing.T) {
	cause := errors.New("boom")
	got := FromError("v1.HandleGetStand -> h.svc.Get", cause)

	assert.ErrorIs(t, got.Err, cause)
	assert.Equal(t, "v1.HandleGetStand -> h.svc.Get -> boom", got.Err.Error())
	assert.Empty(t, got.ErrorText)
}
