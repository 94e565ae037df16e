package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/metrics"
	"github.com/vietanh2810/stand-portal-api/internal/repository"
)

type ReviewService struct {
	repo StandRepository
	pub  Publisher
	now  func() time.Time
}

func NewReviewService(repo StandRepository, pub Publisher) *ReviewService {
	return &ReviewService{
		repo: repo,
		pub:  pub,
		now:  time.Now,
	}
}

// ChangeStatus is the administrator's review action.
func (s *ReviewService) ChangeStatus(ctx context.Context, actor domain.User, standID uint, target domain.StandStatus, feedback string) (domain.Stand, error) {
	if !actor.IsAdmin() {
		return domain.Stand{}, domain.ErrAdminOnly
	}

	var (
		t       domain.Transition
		partner uint
	)
	err := s.repo.Transact(ctx, standID, func(tx repository.StandTx) error {
		partner = tx.Stand().PartnerID

		var err error
		t, err = s.Apply(tx, actor, target, feedback)
		return err
	})
	if err != nil {
		return domain.Stand{}, fmt.Errorf("s.repo.Transact -> %w", err)
	}

	if t.Changed() {
		metrics.StatusTransitions.WithLabelValues(string(t.To)).Inc()
		publish(ctx, s.pub, domain.Notification{
			Type:        domain.NotificationStatusChanged,
			RecipientID: partner,
			StandID:     standID,
			Title:       "Stand status updated",
			Body:        statusMessage(t),
			CreatedAt:   s.now(),
		})
	}

	stand, err := s.repo.FindByID(ctx, standID)
	if err != nil {
		return domain.Stand{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return stand, nil
}

// Apply is the only writer of stand status. It plans the transition against
// the locked stand, stores the new status and feedback, and appends a
// revision entry when the transition is recorded. Callers publish and count
// the transition once the transaction has committed.
func (s *ReviewService) Apply(tx repository.StandTx, actor domain.User, target domain.StandStatus, feedback string) (domain.Transition, error) {
	current := tx.Stand()

	t, err := domain.PlanTransition(current.ID, current.Status, target, feedback, actor)
	if err != nil {
		return domain.Transition{}, err
	}

	next := current
	t.Apply(&next)
	if next.Status != current.Status || next.RevisionFeedback != current.RevisionFeedback {
		if err = tx.UpdateStatus(next.Status, next.RevisionFeedback); err != nil {
			return domain.Transition{}, fmt.Errorf("tx.UpdateStatus -> %w", err)
		}
	}

	if t.Record {
		if err = tx.AddRevision(t.Entry(actor, s.now())); err != nil {
			return domain.Transition{}, fmt.Errorf("tx.AddRevision -> %w", err)
		}
	}

	return t, nil
}

// History returns the stand's revision log, oldest first.
func (s *ReviewService) History(ctx context.Context, actor domain.User, standID uint) ([]domain.RevisionEntry, error) {
	stand, err := s.repo.FindHeader(ctx, standID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindHeader -> %w", err)
	}

	if err = authorize(actor, stand); err != nil {
		return nil, err
	}

	entries, err := s.repo.FindRevisions(ctx, standID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindRevisions -> %w", err)
	}

	return entries, nil
}

func statusMessage(t domain.Transition) string {
	switch t.To {
	case domain.StatusRevisionNeeded:
		return "Revisions were requested: " + t.Feedback
	case domain.StatusApproved:
		return "Your stand submission was approved."
	case domain.StatusCompleted:
		return "Your stand is marked as completed."
	case domain.StatusPendingAdminReview:
		return "Your stand is under review."
	default:
		return "Your stand status changed to " + string(t.To) + "."
	}
}
