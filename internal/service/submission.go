package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/metrics"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
	"github.com/vietanh2810/stand-portal-api/internal/storage"
)

// BlobStore is the upload service for submitted files and attachments.
type BlobStore interface {
	Upload(ctx context.Context, prefix, fileName string, r io.Reader, size int64, contentType string) (storage.Object, error)
}

// Transitioner moves a locked stand through the review state machine.
type Transitioner interface {
	Apply(tx repository.StandTx, actor domain.User, target domain.StandStatus, feedback string) (domain.Transition, error)
}

// Upload describes a file received from a client.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type SubmissionService struct {
	repo         StandRepository
	configs      ConfigurationRepository
	review       Transitioner
	blobs        BlobStore
	pub          Publisher
	maxFileBytes int64
	now          func() time.Time
}

func NewSubmissionService(repo StandRepository, configs ConfigurationRepository, review Transitioner, blobs BlobStore, pub Publisher, maxFileBytes int64) *SubmissionService {
	return &SubmissionService{
		repo:         repo,
		configs:      configs,
		review:       review,
		blobs:        blobs,
		pub:          pub,
		maxFileBytes: maxFileBytes,
		now:          time.Now,
	}
}

func (s *SubmissionService) SubmitArtwork(ctx context.Context, actor domain.User, standID uint, in domain.ArtworkInput) (domain.Stand, error) {
	if err := in.Source.Validate(); err != nil {
		return domain.Stand{}, err
	}

	return s.mutate(ctx, actor, standID, &submitted{domain.KindArtwork, "artwork"}, func(tx repository.StandTx) error {
		var cfg *domain.StandConfiguration
		if _, ok := in.Dimensions.(domain.TemplateBound); ok {
			found, err := s.configurationFor(ctx, tx.Stand())
			if err != nil {
				return err
			}
			cfg = found
		}

		artworkType, width, height, err := in.Resolve(cfg)
		if err != nil {
			return err
		}

		return tx.AddArtwork(domain.ArtworkSubmission{
			ID:               uuid.New(),
			SubmissionSource: in.Source,
			Width:            width,
			Height:           height,
			Description:      strings.TrimSpace(in.Description),
			ArtworkType:      artworkType,
			SubmittedAt:      s.now(),
			SubmittedBy:      actor.Email,
		})
	})
}

func (s *SubmissionService) SubmitLogo(ctx context.Context, actor domain.User, standID uint, in domain.FileInput) (domain.Stand, error) {
	return s.submitFile(ctx, actor, standID, domain.KindLogo, in)
}

func (s *SubmissionService) SubmitRender(ctx context.Context, actor domain.User, standID uint, in domain.FileInput) (domain.Stand, error) {
	return s.submitFile(ctx, actor, standID, domain.KindRender, in)
}

func (s *SubmissionService) submitFile(ctx context.Context, actor domain.User, standID uint, kind domain.SubmissionKind, in domain.FileInput) (domain.Stand, error) {
	if err := in.Source.Validate(); err != nil {
		return domain.Stand{}, err
	}

	return s.mutate(ctx, actor, standID, &submitted{kind, "a " + string(kind)}, func(tx repository.StandTx) error {
		return tx.AddFile(domain.FileSubmission{
			ID:               uuid.New(),
			Kind:             kind,
			SubmissionSource: in.Source,
			Description:      strings.TrimSpace(in.Description),
			SubmittedAt:      s.now(),
			SubmittedBy:      actor.Email,
		})
	})
}

func (s *SubmissionService) SubmitDrawing(ctx context.Context, actor domain.User, standID uint, in domain.DrawingInput) (domain.Stand, error) {
	if !in.DrawingType.Valid() {
		return domain.Stand{}, domain.ErrInvalidDrawingType
	}
	if err := in.Source.Validate(); err != nil {
		return domain.Stand{}, err
	}

	return s.mutate(ctx, actor, standID, &submitted{domain.KindDrawing, "a technical drawing"}, func(tx repository.StandTx) error {
		return tx.AddDrawing(domain.DrawingSubmission{
			ID:               uuid.New(),
			DrawingType:      in.DrawingType,
			SubmissionSource: in.Source,
			Description:      strings.TrimSpace(in.Description),
			SubmittedAt:      s.now(),
			SubmittedBy:      actor.Email,
		})
	})
}

// UploadFile stores a deliverable and returns a file source to submit with.
// Ownership and the lock are checked first so a rejected partner never
// leaves an orphaned object behind.
func (s *SubmissionService) UploadFile(ctx context.Context, actor domain.User, standID uint, kind domain.SubmissionKind, up Upload) (domain.SubmissionSource, error) {
	if !kind.Valid() {
		return domain.SubmissionSource{}, domain.ErrInvalidKind
	}
	if s.maxFileBytes > 0 && up.Size > s.maxFileBytes {
		return domain.SubmissionSource{}, fmt.Errorf("%w: files are limited to %d MB", domain.ErrValidation, s.maxFileBytes>>20)
	}

	stand, err := s.repo.FindHeader(ctx, standID)
	if err != nil {
		return domain.SubmissionSource{}, fmt.Errorf("s.repo.FindHeader -> %w", err)
	}
	if err = checkWritable(actor, stand); err != nil {
		return domain.SubmissionSource{}, err
	}

	prefix := fmt.Sprintf("stands/%d/%s", standID, kind)
	obj, err := s.blobs.Upload(ctx, prefix, up.FileName, up.Reader, up.Size, up.ContentType)
	if err != nil {
		return domain.SubmissionSource{}, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	return domain.SubmissionSource{
		Type:     domain.SubmissionFile,
		FileURL:  obj.URL,
		FileName: obj.Name,
	}, nil
}

// DeleteSubmission removes one entry by id. It does not move the stand.
func (s *SubmissionService) DeleteSubmission(ctx context.Context, actor domain.User, standID uint, kind domain.SubmissionKind, entryID uuid.UUID) (domain.Stand, error) {
	if !kind.Valid() {
		return domain.Stand{}, domain.ErrInvalidKind
	}

	return s.mutate(ctx, actor, standID, nil, func(tx repository.StandTx) error {
		return tx.DeleteSubmission(kind, entryID)
	})
}

// CommentOnSubmission adds a partner comment, or administrator feedback when
// the actor is an administrator.
func (s *SubmissionService) CommentOnSubmission(ctx context.Context, actor domain.User, standID uint, kind domain.SubmissionKind, entryID uuid.UUID, text string) (domain.Stand, error) {
	if !kind.Valid() {
		return domain.Stand{}, domain.ErrInvalidKind
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Stand{}, domain.ErrEmptyComment
	}

	return s.mutate(ctx, actor, standID, nil, func(tx repository.StandTx) error {
		exists, err := tx.SubmissionExists(kind, entryID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrSubmissionNotFound
		}

		return tx.AddSubmissionComment(domain.SubmissionComment{
			Comment:      s.comment(actor, text),
			SubmissionID: entryID,
			Kind:         kind,
			Feedback:     actor.IsAdmin(),
		})
	})
}

func (s *SubmissionService) AddPartnerComment(ctx context.Context, actor domain.User, standID uint, text string) (domain.Stand, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Stand{}, domain.ErrEmptyComment
	}

	return s.mutate(ctx, actor, standID, nil, func(tx repository.StandTx) error {
		return tx.AddPartnerComment(s.comment(actor, text))
	})
}

// UpdateRequirements overwrites the AV and power answers as a whole.
func (s *SubmissionService) UpdateRequirements(ctx context.Context, actor domain.User, standID uint, req domain.StandRequirements) (domain.Stand, error) {
	if req.PowerOutlets != nil && *req.PowerOutlets < 0 {
		return domain.Stand{}, domain.ErrInvalidOutlets
	}
	if req.PowerVoltage != nil {
		v := strings.TrimSpace(*req.PowerVoltage)
		if v == "" {
			req.PowerVoltage = nil
		} else {
			req.PowerVoltage = &v
		}
	}

	return s.mutate(ctx, actor, standID, &submitted{label: "AV and power requirements"}, func(tx repository.StandTx) error {
		if req.PowerVoltage != nil && !tx.Stand().OffersVoltage(*req.PowerVoltage) {
			return domain.ErrInvalidVoltage
		}
		return tx.UpdateRequirements(req)
	})
}

// SetConstructionType records who builds the booth. It does not move the stand.
func (s *SubmissionService) SetConstructionType(ctx context.Context, actor domain.User, standID uint, ct domain.ConstructionType) (domain.Stand, error) {
	if !ct.Valid() {
		return domain.Stand{}, domain.ErrInvalidConstruction
	}

	return s.mutate(ctx, actor, standID, nil, func(tx repository.StandTx) error {
		return tx.UpdateConstructionType(ct)
	})
}

// submitted describes a partner deliverable written by a mutation. An empty
// kind marks a requirements edit.
type submitted struct {
	kind  domain.SubmissionKind
	label string
}

// mutate runs fn against the locked stand after the ownership and lock
// checks. A partner submission moves the stand into admin review in the same
// transaction and notifies administrators after commit.
func (s *SubmissionService) mutate(ctx context.Context, actor domain.User, standID uint, sub *submitted, fn func(tx repository.StandTx) error) (domain.Stand, error) {
	partnerSubmission := sub != nil && !actor.IsAdmin()

	var t domain.Transition
	err := s.repo.Transact(ctx, standID, func(tx repository.StandTx) error {
		if err := checkWritable(actor, tx.Stand()); err != nil {
			return err
		}

		if err := fn(tx); err != nil {
			return err
		}

		if partnerSubmission {
			var err error
			t, err = s.review.Apply(tx, actor, domain.StatusPendingAdminReview, "")
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return domain.Stand{}, fmt.Errorf("s.repo.Transact -> %w", err)
	}

	if sub != nil && sub.kind != "" {
		metrics.SubmissionsTotal.WithLabelValues(string(sub.kind)).Inc()
	}
	if t.Changed() {
		metrics.StatusTransitions.WithLabelValues(string(t.To)).Inc()
	}
	if partnerSubmission {
		publish(ctx, s.pub, domain.Notification{
			Type:      domain.NotificationSubmission,
			StandID:   standID,
			Title:     "New stand submission",
			Body:      fmt.Sprintf("%s submitted %s for stand #%d.", senderName(actor), sub.label, standID),
			CreatedAt: s.now(),
		})
	}

	stand, err := s.repo.FindByID(ctx, standID)
	if err != nil {
		return domain.Stand{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return stand, nil
}

// configurationFor returns the stand's own template, falling back to the
// default when the stand has none or its template was deleted. A nil result
// means no template applies.
func (s *SubmissionService) configurationFor(ctx context.Context, stand domain.Stand) (*domain.StandConfiguration, error) {
	if stand.ConfigurationID != nil {
		cfg, err := s.configs.FindByID(ctx, *stand.ConfigurationID)
		if err == nil {
			return &cfg, nil
		}
		if !errors.Is(err, repository.ErrConfigurationNotFound) {
			return nil, fmt.Errorf("s.configs.FindByID -> %w", err)
		}
	}

	cfg, err := s.configs.FindDefault(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrConfigurationNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("s.configs.FindDefault -> %w", err)
	}

	return &cfg, nil
}

func (s *SubmissionService) comment(actor domain.User, text string) domain.Comment {
	return domain.Comment{
		ID:          uuid.New(),
		Text:        text,
		AuthorEmail: actor.Email,
		AuthorName:  actor.Name,
		IsAdmin:     actor.IsAdmin(),
		CreatedAt:   s.now(),
	}
}

// checkWritable applies the ownership rule and, for partners, the lock.
func checkWritable(actor domain.User, stand domain.Stand) error {
	if err := authorize(actor, stand); err != nil {
		return err
	}
	if !actor.IsAdmin() && stand.IsLocked() {
		return &domain.StandLockedError{StandID: stand.ID, Status: stand.Status}
	}
	return nil
}

func senderName(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
