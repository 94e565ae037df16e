package v1

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/service"
)

type fakeDiscussion struct {
	hub         *Hub
	texts       []string
	attachments []string
}

func (f *fakeDiscussion) Send(_ context.Context, actor domain.User, standID uint, text string, attachment *service.Upload) (domain.Message, error) {
	if strings.TrimSpace(text) == "" && attachment == nil {
		return domain.Message{}, domain.ErrEmptyMessage
	}
	if err := f.Authorize(context.Background(), actor, standID); err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{ID: uuid.New(), StandID: standID, Message: text, SenderEmail: actor.Email, IsAdmin: actor.IsAdmin()}
	if attachment != nil {
		content, _ := io.ReadAll(attachment.Reader)
		f.attachments = append(f.attachments, attachment.FileName+":"+string(content))
		name := attachment.FileName
		msg.AttachmentName = &name
	}
	f.texts = append(f.texts, text)
	if f.hub != nil {
		f.hub.Broadcast(standID, msg)
	}
	return msg, nil
}

func (f *fakeDiscussion) List(_ context.Context, actor domain.User, standID uint) ([]domain.Message, error) {
	if err := f.Authorize(context.Background(), actor, standID); err != nil {
		return nil, err
	}
	out := make([]domain.Message, 0, len(f.texts))
	for _, text := range f.texts {
		out = append(out, domain.Message{StandID: standID, Message: text})
	}
	return out, nil
}

func (f *fakeDiscussion) ListByDay(ctx context.Context, actor domain.User, standID uint) ([]domain.MessageDay, error) {
	messages, err := f.List(ctx, actor, standID)
	if err != nil {
		return nil, err
	}
	return []domain.MessageDay{{Day: "2025-03-14", Messages: messages}}, nil
}

// Partners own stand 10 only.
func (f *fakeDiscussion) Authorize(_ context.Context, actor domain.User, standID uint) error {
	if !actor.IsAdmin() && standID != 10 {
		return domain.ErrNotStandOwner
	}
	return nil
}

func newDiscussionRouter(userID uint, svc *fakeDiscussion, hub *Hub) http.Handler {
	h := NewDiscussionHandler(svc, users, hub)
	r := newRouter(userID)
	r.GET("/stands/:standID/messages", h.HandleListMessages)
	r.POST("/stands/:standID/messages", h.HandleSendMessage)
	r.GET("/stands/:standID/ws", h.HandleWebSocket)
	return r
}

func TestHandleSendMessage_JSON(t *testing.T) {
	svc := &fakeDiscussion{}
	r := newDiscussionRouter(testPartner.ID, svc, NewHub(nil))

	rec := doJSON(t, r, http.MethodPost, "/stands/10/messages", map[string]string{"message": "Is the banner OK?"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/stands/10/messages", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/stands/11/messages", map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	assert.Equal(t, []string{"Is the banner OK?"}, svc.texts)
}

func TestHandleSendMessage_Attachment(t *testing.T) {
	svc := &fakeDiscussion{}
	body, contentType := multipartBody(t, nil, "attachment", "mockup.png", []byte("png-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/stands/10/messages", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newDiscussionRouter(testPartner.ID, svc, NewHub(nil)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"mockup.png:png-bytes"}, svc.attachments)

	var msg domain.Message
	decode(t, rec, &msg)
	require.NotNil(t, msg.AttachmentName)
	assert.Equal(t, "mockup.png", *msg.AttachmentName)
}

func TestHandleListMessages(t *testing.T) {
	svc := &fakeDiscussion{texts: []string{"first", "second"}}
	r := newDiscussionRouter(testPartner.ID, svc, NewHub(nil))

	rec := doJSON(t, r, http.MethodGet, "/stands/10/messages", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []domain.Message
	decode(t, rec, &messages)
	require.Len(t, messages, 2)
	assert.Equal(t, "first", messages[0].Message)

	rec = doJSON(t, r, http.MethodGet, "/stands/10/messages?group=day", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var days []domain.MessageDay
	decode(t, rec, &days)
	require.Len(t, days, 1)
	assert.Len(t, days[0].Messages, 2)
}

func TestHandleWebSocket_ReceivesBroadcasts(t *testing.T) {
	hub := NewHub(nil)
	svc := &fakeDiscussion{hub: hub}
	srv := httptest.NewServer(newDiscussionRouter(testPartner.ID, svc, hub))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stands/10/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.Clients(10) == 1 }, time.Second, 10*time.Millisecond)

	rec := doJSON(t, newDiscussionRouter(testAdmin.ID, svc, hub), http.MethodPost, "/stands/10/messages", map[string]string{"message": "Looks good"})
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg domain.Message
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "Looks good", msg.Message)
	assert.True(t, msg.IsAdmin)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients(10) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandleWebSocket_Forbidden(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(newDiscussionRouter(testPartner.ID, &fakeDiscussion{}, hub))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stands/11/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.Clients(11))
}

func TestHub_OriginCheck(t *testing.T) {
	check := originChecker([]string{"https://portal.test"})

	allowed := httptest.NewRequest(http.MethodGet, "/", nil)
	allowed.Header.Set("Origin", "https://portal.test")
	assert.True(t, check(allowed))

	denied := httptest.NewRequest(http.MethodGet, "/", nil)
	denied.Header.Set("Origin", "https://evil.test")
	assert.False(t, check(denied))

	assert.True(t, originChecker(nil)(denied))
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast(99, domain.Message{Message: "nobody listens"})
	assert.Zero(t, hub.Clients(99))
}
