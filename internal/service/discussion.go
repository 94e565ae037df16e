package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/metrics"
	"github.com/vietanh2810/stand-portal-api/internal/storage"
)

// Broadcaster pushes a stored message to the clients watching a stand.
type Broadcaster interface {
	Broadcast(standID uint, msg domain.Message)
}

// DiscussionService owns the append-only message thread of each stand.
type DiscussionService struct {
	repo          StandRepository
	blobs         BlobStore
	pub           Publisher
	hub           Broadcaster
	maxAttachment int64
	location      *time.Location
	now           func() time.Time
}

func NewDiscussionService(repo StandRepository, blobs BlobStore, pub Publisher, hub Broadcaster, maxAttachment int64, location *time.Location) *DiscussionService {
	if location == nil {
		location = time.UTC
	}

	return &DiscussionService{
		repo:          repo,
		blobs:         blobs,
		pub:           pub,
		hub:           hub,
		maxAttachment: maxAttachment,
		location:      location,
		now:           time.Now,
	}
}

// Send appends a message to the stand's thread. Locked stands still accept
// messages.
func (s *DiscussionService) Send(ctx context.Context, actor domain.User, standID uint, text string, attachment *Upload) (domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return domain.Message{}, domain.ErrEmptyMessage
	}

	stand, err := s.repo.FindHeader(ctx, standID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("s.repo.FindHeader -> %w", err)
	}
	if err = authorize(actor, stand); err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:          uuid.New(),
		StandID:     standID,
		Message:     text,
		SenderEmail: actor.Email,
		SenderName:  senderName(actor),
		SenderTitle: actor.Title,
		IsAdmin:     actor.IsAdmin(),
		CreatedAt:   s.now(),
	}

	if attachment != nil {
		obj, err := s.storeAttachment(ctx, standID, attachment)
		if err != nil {
			return domain.Message{}, err
		}
		msg.AttachmentURL = &obj.URL
		msg.AttachmentName = &attachment.FileName
	}

	stored, err := s.repo.AppendMessage(ctx, msg)
	if err != nil {
		return domain.Message{}, fmt.Errorf("s.repo.AppendMessage -> %w", err)
	}

	metrics.MessagesTotal.Inc()
	if s.hub != nil {
		s.hub.Broadcast(standID, stored)
	}

	n := domain.Notification{
		Type:      domain.NotificationMessage,
		StandID:   standID,
		Title:     "New message from " + stored.SenderName,
		Body:      preview(stored),
		CreatedAt: s.now(),
	}
	if actor.IsAdmin() {
		n.RecipientID = stand.PartnerID
	}
	publish(ctx, s.pub, n)

	return stored, nil
}

// List returns the thread oldest first.
func (s *DiscussionService) List(ctx context.Context, actor domain.User, standID uint) ([]domain.Message, error) {
	stand, err := s.repo.FindHeader(ctx, standID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindHeader -> %w", err)
	}
	if err = authorize(actor, stand); err != nil {
		return nil, err
	}

	messages, err := s.repo.FindMessages(ctx, standID)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindMessages -> %w", err)
	}

	return messages, nil
}

// ListByDay groups the thread by calendar day in the event timezone.
func (s *DiscussionService) ListByDay(ctx context.Context, actor domain.User, standID uint) ([]domain.MessageDay, error) {
	messages, err := s.List(ctx, actor, standID)
	if err != nil {
		return nil, err
	}

	return domain.GroupByDay(messages, s.location), nil
}

// Authorize checks that actor may watch the stand's thread.
func (s *DiscussionService) Authorize(ctx context.Context, actor domain.User, standID uint) error {
	stand, err := s.repo.FindHeader(ctx, standID)
	if err != nil {
		return fmt.Errorf("s.repo.FindHeader -> %w", err)
	}

	return authorize(actor, stand)
}

// storeAttachment only accepts images that decode.
func (s *DiscussionService) storeAttachment(ctx context.Context, standID uint, up *Upload) (obj storage.Object, err error) {
	if s.maxAttachment > 0 && up.Size > s.maxAttachment {
		return obj, domain.ErrAttachmentTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(up.Reader, s.limit(up.Size)))
	if err != nil {
		return obj, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if s.maxAttachment > 0 && int64(len(data)) > s.maxAttachment {
		return obj, domain.ErrAttachmentTooLarge
	}

	if _, err = imaging.Decode(bytes.NewReader(data)); err != nil {
		return obj, domain.ErrAttachmentNotImage
	}

	prefix := fmt.Sprintf("stands/%d/messages", standID)
	stored, err := s.blobs.Upload(ctx, prefix, up.FileName, bytes.NewReader(data), int64(len(data)), up.ContentType)
	if err != nil {
		return obj, fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}

	return stored, nil
}

func (s *DiscussionService) limit(size int64) int64 {
	if s.maxAttachment > 0 {
		return s.maxAttachment + 1
	}
	if size > 0 {
		return size
	}
	return 32 << 20
}

func preview(m domain.Message) string {
	const maxLen = 120

	text := m.Message
	if text == "" && m.AttachmentName != nil {
		return "Sent an attachment: " + *m.AttachmentName
	}
	if r := []rune(text); len(r) > maxLen {
		return string(r[:maxLen-3]) + "..."
	}
	return text
}
