package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/stand-portal-api/internal/api/middleware"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
	"github.com/vietanh2810/stand-portal-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	testAdmin   = domain.User{ID: 1, Email: "admin@sef.test", Name: "Ada Admin", Role: domain.RoleAdmin}
	testPartner = domain.User{ID: 2, Email: "partner@acme.test", Name: "Pat Partner", Company: "Acme", Role: domain.RolePartner}
)

type stubUsers map[uint]domain.User

func (s stubUsers) GetUser(_ context.Context, id uint) (domain.User, error) {
	u, ok := s[id]
	if !ok {
		return domain.User{}, service.ErrUserNotFound
	}
	return u, nil
}

func (s stubUsers) ListPartners(_ context.Context, actor domain.User) ([]domain.Partner, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrAdminOnly
	}
	var out []domain.Partner
	for _, u := range s {
		if u.Role == domain.RolePartner {
			out = append(out, domain.Partner{ID: u.ID, Name: u.Name, Company: u.Company, Email: u.Email})
		}
	}
	return out, nil
}

var users = stubUsers{testAdmin.ID: testAdmin, testPartner.ID: testPartner}

// newRouter returns an engine whose requests are authenticated as userID.
// A zero userID leaves requests anonymous.
func newRouter(userID uint) *gin.Engine {
	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		if userID != 0 {
			middleware.SetUserID(ctx, userID)
		}
		ctx.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}

type fakeSubmissions struct {
	artwork   []domain.ArtworkInput
	files     []domain.FileInput
	drawings  []domain.DrawingInput
	uploads   []service.Upload
	comments  []string
	err       error
	uploadErr error
}

func (f *fakeSubmissions) stand(standID uint) domain.Stand {
	return domain.Stand{ID: standID, PartnerID: testPartner.ID, Status: domain.StatusPendingAdminReview}
}

func (f *fakeSubmissions) SubmitArtwork(_ context.Context, _ domain.User, standID uint, in domain.ArtworkInput) (domain.Stand, error) {
	if f.err != nil {
		return domain.Stand{}, f.err
	}
	f.artwork = append(f.artwork, in)
	return f.stand(standID), nil
}

func (f *fakeSubmissions) SubmitLogo(_ context.Context, _ domain.User, standID uint, in domain.FileInput) (domain.Stand, error) {
	f.files = append(f.files, in)
	return f.stand(standID), f.err
}

func (f *fakeSubmissions) SubmitRender(_ context.Context, _ domain.User, standID uint, in domain.FileInput) (domain.Stand, error) {
	f.files = append(f.files, in)
	return f.stand(standID), f.err
}

func (f *fakeSubmissions) SubmitDrawing(_ context.Context, _ domain.User, standID uint, in domain.DrawingInput) (domain.Stand, error) {
	f.drawings = append(f.drawings, in)
	return f.stand(standID), f.err
}

func (f *fakeSubmissions) UploadFile(_ context.Context, _ domain.User, standID uint, kind domain.SubmissionKind, up service.Upload) (domain.SubmissionSource, error) {
	if f.uploadErr != nil {
		return domain.SubmissionSource{}, f.uploadErr
	}
	content, _ := io.ReadAll(up.Reader)
	up.Reader = bytes.NewReader(content)
	f.uploads = append(f.uploads, up)
	return domain.SubmissionSource{
		Type:     domain.SubmissionFile,
		FileURL:  "https://blobs.test/stands/" + string(kind) + "/" + up.FileName,
		FileName: up.FileName,
	}, nil
}

func (f *fakeSubmissions) DeleteSubmission(_ context.Context, _ domain.User, standID uint, _ domain.SubmissionKind, _ uuid.UUID) (domain.Stand, error) {
	return f.stand(standID), f.err
}

func (f *fakeSubmissions) CommentOnSubmission(_ context.Context, _ domain.User, standID uint, _ domain.SubmissionKind, _ uuid.UUID, text string) (domain.Stand, error) {
	f.comments = append(f.comments, text)
	return f.stand(standID), f.err
}

func (f *fakeSubmissions) AddPartnerComment(_ context.Context, _ domain.User, standID uint, text string) (domain.Stand, error) {
	f.comments = append(f.comments, text)
	return f.stand(standID), f.err
}

func (f *fakeSubmissions) UpdateRequirements(_ context.Context, _ domain.User, standID uint, _ domain.StandRequirements) (domain.Stand, error) {
	return f.stand(standID), f.err
}

func (f *fakeSubmissions) SetConstructionType(_ context.Context, _ domain.User, standID uint, ct domain.ConstructionType) (domain.Stand, error) {
	s := f.stand(standID)
	s.BoothConstructionType = ct
	return s, f.err
}
