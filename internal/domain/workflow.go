package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Transition is a validated stand status change.
type Transition struct {
	From     StandStatus
	To       StandStatus
	Feedback string
	// Record is set when the change must land in the revision history.
	Record bool
}

func (t Transition) Changed() bool {
	return t.From != t.To
}

// Apply moves s to the target status. Revision feedback is replaced on
// revision_needed and cleared on approved or completed.
func (t Transition) Apply(s *Stand) {
	s.Status = t.To
	switch t.To {
	case StatusRevisionNeeded:
		s.RevisionFeedback = t.Feedback
	case StatusApproved, StatusCompleted:
		s.RevisionFeedback = ""
	}
}

func (t Transition) Entry(actor User, now time.Time) RevisionEntry {
	return RevisionEntry{
		ID:        uuid.New(),
		Status:    t.To,
		Feedback:  t.Feedback,
		ChangedBy: actor.Email,
		ChangedAt: now,
	}
}

// PlanTransition is the stand state machine. Partners can only move a stand
// back into admin review, and only while it is unlocked; administrators can
// force any status but need feedback to request a revision.
func PlanTransition(standID uint, current, target StandStatus, feedback string, actor User) (Transition, error) {
	if !target.Valid() {
		return Transition{}, ErrInvalidStatus
	}

	if !actor.IsAdmin() {
		if target != StatusPendingAdminReview {
			return Transition{}, ErrAdminOnly
		}
		if current.Locked() {
			return Transition{}, &StandLockedError{StandID: standID, Status: current}
		}
		return Transition{From: current, To: target}, nil
	}

	feedback = strings.TrimSpace(feedback)
	if target == StatusRevisionNeeded && feedback == "" {
		return Transition{}, ErrFeedbackRequired
	}

	return Transition{
		From:     current,
		To:       target,
		Feedback: feedback,
		Record:   current != target,
	}, nil
}
