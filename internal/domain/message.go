package domain

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID             uuid.UUID `json:"id"`
	StandID        uint      `json:"stand_id"`
	Message        string    `json:"message"`
	SenderEmail    string    `json:"sender_email"`
	SenderName     string    `json:"sender_name"`
	SenderTitle    string    `json:"sender_title"`
	IsAdmin        bool      `json:"is_admin"`
	AttachmentURL  *string   `json:"attachment_url,omitempty"`
	AttachmentName *string   `json:"attachment_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type MessageDay struct {
	Day      string    `json:"day"`
	Messages []Message `json:"messages"`
}

// GroupByDay buckets messages by the calendar day of CreatedAt in loc,
// keeping insertion order inside and across days.
func GroupByDay(messages []Message, loc *time.Location) []MessageDay {
	if loc == nil {
		loc = time.UTC
	}

	var days []MessageDay
	for _, m := range messages {
		day := m.CreatedAt.In(loc).Format(time.DateOnly)
		if n := len(days); n > 0 && days[n-1].Day == day {
			days[n-1].Messages = append(days[n-1].Messages, m)
			continue
		}
		days = append(days, MessageDay{Day: day, Messages: []Message{m}})
	}
	return days
}

type NotificationType string

const (
	NotificationSubmission    NotificationType = "stand_submission"
	NotificationStatusChanged NotificationType = "stand_status_changed"
	NotificationMessage       NotificationType = "stand_message"
)

// Notification is handed to the external notification service. A zero
// RecipientID addresses every administrator.
type Notification struct {
	Type        NotificationType `json:"type"`
	RecipientID uint             `json:"recipient_id"`
	StandID     uint             `json:"stand_id"`
	Title       string           `json:"title"`
	Body        string           `json:"body"`
	CreatedAt   time.Time        `json:"created_at"`
}
