package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

func newDiscussion(stands ...domain.Stand) (*DiscussionService, *memStands, *recordingPublisher, *memBlobs, *recordingHub) {
	repo := newMemStands(stands...)
	pub := &recordingPublisher{}
	blobs := &memBlobs{}
	hub := &recordingHub{}
	svc := NewDiscussionService(repo, blobs, pub, hub, 64<<10, time.UTC)
	svc.now = fixedClock
	return svc, repo, pub, blobs, hub
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSend_AppendsInOrder(t *testing.T) {
	svc, repo, pub, _, hub := newDiscussion(partnerStand(domain.StatusPendingAdminReview))
	ctx := context.Background()

	first, err := svc.Send(ctx, testPartner, 10, " Is the banner OK? ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Is the banner OK?", first.Message)
	assert.False(t, first.IsAdmin)
	assert.Equal(t, testPartner.Name, first.SenderName)

	second, err := svc.Send(ctx, testAdmin, 10, "Looks good", nil)
	require.NoError(t, err)
	assert.True(t, second.IsAdmin)

	thread, err := svc.List(ctx, testPartner, 10)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, first.ID, thread[0].ID)
	assert.Equal(t, second.ID, thread[1].ID)

	assert.Len(t, hub.messages, 2)

	sent := pub.all()
	require.Len(t, sent, 2)
	assert.Zero(t, sent[0].RecipientID)
	assert.Equal(t, testPartner.ID, sent[1].RecipientID)
	assert.Equal(t, domain.NotificationMessage, sent[1].Type)

	stand, err := repo.FindByID(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, stand.DiscussionThread, 2)
}

func TestSend_LockedStandStillAcceptsMessages(t *testing.T) {
	svc, _, _, _, _ := newDiscussion(partnerStand(domain.StatusCompleted))

	_, err := svc.Send(context.Background(), testPartner, 10, "thanks", nil)
	assert.NoError(t, err)
}

func TestSend_Rejected(t *testing.T) {
	svc, repo, pub, _, _ := newDiscussion(partnerStand(domain.StatusPendingAdminReview))
	ctx := context.Background()

	_, err := svc.Send(ctx, testPartner, 10, "   ", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = svc.Send(ctx, testOther, 10, "hi", nil)
	assert.ErrorIs(t, err, domain.ErrNotStandOwner)

	_, err = svc.Send(ctx, testPartner, 42, "hi", nil)
	assert.ErrorIs(t, err, ErrStandNotFound)

	thread, err := repo.FindMessages(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, thread)
	assert.Empty(t, pub.all())
}

func TestSend_Attachment(t *testing.T) {
	svc, _, _, blobs, _ := newDiscussion(partnerStand(domain.StatusPendingAdminReview))
	ctx := context.Background()
	img := pngBytes(t)

	msg, err := svc.Send(ctx, testPartner, 10, "", &Upload{
		FileName:    "mockup.png",
		ContentType: "image/png",
		Size:        int64(len(img)),
		Reader:      bytes.NewReader(img),
	})
	require.NoError(t, err)
	require.NotNil(t, msg.AttachmentURL)
	require.NotNil(t, msg.AttachmentName)
	assert.Equal(t, "mockup.png", *msg.AttachmentName)
	assert.Equal(t, "https://blobs.test/stands/10/messages/mockup.png", *msg.AttachmentURL)
	assert.Len(t, blobs.uploads, 1)

	_, err = svc.Send(ctx, testPartner, 10, "here", &Upload{
		FileName: "notes.txt",
		Size:     5,
		Reader:   strings.NewReader("notes"),
	})
	assert.ErrorIs(t, err, domain.ErrAttachmentNotImage)

	_, err = svc.Send(ctx, testPartner, 10, "here", &Upload{
		FileName: "huge.png",
		Size:     1 << 20,
		Reader:   bytes.NewReader(img),
	})
	assert.ErrorIs(t, err, domain.ErrAttachmentTooLarge)

	blobs.err = errBoom
	_, err = svc.Send(ctx, testPartner, 10, "", &Upload{
		FileName: "mockup.png",
		Size:     int64(len(img)),
		Reader:   bytes.NewReader(img),
	})
	assert.ErrorIs(t, err, domain.ErrUploadFailed)

	assert.Len(t, blobs.uploads, 1)
}

func TestListByDay(t *testing.T) {
	svc, _, _, _, _ := newDiscussion(partnerStand(domain.StatusPendingAdminReview))
	ctx := context.Background()

	svc.now = func() time.Time { return time.Date(2025, 3, 14, 23, 0, 0, 0, time.UTC) }
	_, err := svc.Send(ctx, testPartner, 10, "late", nil)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC) }
	_, err = svc.Send(ctx, testAdmin, 10, "morning", nil)
	require.NoError(t, err)

	days, err := svc.ListByDay(ctx, testPartner, 10)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, "2025-03-14", days[0].Day)
	assert.Equal(t, "2025-03-15", days[1].Day)

	_, err = svc.ListByDay(ctx, testOther, 10)
	assert.ErrorIs(t, err, domain.ErrNotStandOwner)
}
