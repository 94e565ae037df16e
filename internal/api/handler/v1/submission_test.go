package v1

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/stand-portal-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

func newSubmissionRouter(userID uint, svc *fakeSubmissions) http.Handler {
	h := NewSubmissionHandler(svc, users)
	r := newRouter(userID)
	r.POST("/stands/:standID/artwork", h.HandleSubmitArtwork)
	r.POST("/stands/:standID/logos", h.HandleSubmitLogo)
	r.POST("/stands/:standID/drawings", h.HandleSubmitDrawing)
	r.DELETE("/stands/:standID/submissions/:kind/:entryID", h.HandleDeleteSubmission)
	r.POST("/stands/:standID/submissions/:kind/:entryID/comments", h.HandleCommentOnSubmission)
	r.PUT("/stands/:standID/construction-type", h.HandleSetConstructionType)
	return r
}

func TestHandleSubmitArtwork_JSON(t *testing.T) {
	svc := &fakeSubmissions{}
	r := newSubmissionRouter(testPartner.ID, svc)

	rec := doJSON(t, r, http.MethodPost, "/stands/10/artwork", map[string]interface{}{
		"submission_type": "link",
		"link_url":        "https://drive.test/banner",
		"artwork_type":    "Main Banner",
		"width":           99,
		"height":          99,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/stands/10/artwork", map[string]interface{}{
		"submission_type": "link",
		"link_url":        "https://drive.test/custom",
		"artwork_type":    "Custom",
		"width":           2.5,
		"height":          1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	require.Len(t, svc.artwork, 2)
	assert.Equal(t, domain.TemplateBound{RequirementName: "Main Banner"}, svc.artwork[0].Dimensions)
	assert.Equal(t, domain.CustomSize{Width: 2.5, Height: 1}, svc.artwork[1].Dimensions)
	assert.Equal(t, "https://drive.test/custom", svc.artwork[1].Source.LinkURL)
}

func TestHandleSubmitArtwork_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		path string
		body map[string]interface{}
	}{
		{
			name: "missing type",
			path: "/stands/10/artwork",
			body: map[string]interface{}{"link_url": "https://drive.test/a", "artwork_type": "Main Banner"},
		},
		{
			name: "custom without size",
			path: "/stands/10/artwork",
			body: map[string]interface{}{"submission_type": "link", "link_url": "https://drive.test/a", "artwork_type": "Custom"},
		},
		{
			name: "custom with zero width",
			path: "/stands/10/artwork",
			body: map[string]interface{}{"submission_type": "link", "link_url": "https://drive.test/a", "artwork_type": "Custom", "width": 0, "height": 1},
		},
		{
			name: "bad stand id",
			path: "/stands/abc/artwork",
			body: map[string]interface{}{"submission_type": "link", "link_url": "https://drive.test/a", "artwork_type": "Main Banner"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSubmissions{}
			rec := doJSON(t, newSubmissionRouter(testPartner.ID, svc), http.MethodPost, tt.path, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.artwork)
		})
	}
}

func TestHandleSubmitArtwork_Locked(t *testing.T) {
	svc := &fakeSubmissions{err: fmt.Errorf("service.mutate -> %w", &domain.StandLockedError{StandID: 10, Status: domain.StatusApproved})}
	rec := doJSON(t, newSubmissionRouter(testPartner.ID, svc), http.MethodPost, "/stands/10/artwork", map[string]interface{}{
		"submission_type": "link",
		"link_url":        "https://drive.test/banner",
		"artwork_type":    "Main Banner",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
	var body response.Err
	decode(t, rec, &body)
	assert.Equal(t, "approved", body.Status)
}

func TestHandleSubmitArtwork_Unauthenticated(t *testing.T) {
	rec := doJSON(t, newSubmissionRouter(0, &fakeSubmissions{}), http.MethodPost, "/stands/10/artwork", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, newSubmissionRouter(77, &fakeSubmissions{}), http.MethodPost, "/stands/10/artwork", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandleSubmitLogo_Multipart(t *testing.T) {
	svc := &fakeSubmissions{}
	body, contentType := multipartBody(t, map[string]string{"description": "primary logo"}, "file", "logo.svg", []byte("<svg/>"))

	req := httptest.NewRequest(http.MethodPost, "/stands/10/logos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newSubmissionRouter(testPartner.ID, svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, svc.uploads, 1)
	assert.Equal(t, "logo.svg", svc.uploads[0].FileName)
	assert.EqualValues(t, len("<svg/>"), svc.uploads[0].Size)

	require.Len(t, svc.files, 1)
	src := svc.files[0].Source
	assert.Equal(t, domain.SubmissionFile, src.Type)
	assert.Equal(t, "https://blobs.test/stands/logo/logo.svg", src.FileURL)
	assert.Equal(t, "primary logo", svc.files[0].Description)
}

func TestHandleSubmitDrawing_MultipartUploadFails(t *testing.T) {
	svc := &fakeSubmissions{uploadErr: fmt.Errorf("%w: bucket unavailable", domain.ErrUploadFailed)}
	body, contentType := multipartBody(t, map[string]string{"drawing_type": "Floor Plan"}, "file", "plan.pdf", []byte("%PDF-1.4"))

	req := httptest.NewRequest(http.MethodPost, "/stands/10/drawings", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newSubmissionRouter(testPartner.ID, svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Empty(t, svc.drawings)
}

func TestHandleEntryRoutes(t *testing.T) {
	svc := &fakeSubmissions{}
	r := newSubmissionRouter(testAdmin.ID, svc)
	entry := uuid.New()

	rec := doJSON(t, r, http.MethodDelete, "/stands/10/submissions/artwork/"+entry.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/stands/10/submissions/poster/"+entry.String(), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/stands/10/submissions/artwork/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/stands/10/submissions/logo/"+entry.String()+"/comments", map[string]string{"text": "Use the white version"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"Use the white version"}, svc.comments)

	rec = doJSON(t, r, http.MethodPost, "/stands/10/submissions/logo/"+entry.String()+"/comments", map[string]string{"text": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSetConstructionType(t *testing.T) {
	r := newSubmissionRouter(testPartner.ID, &fakeSubmissions{})

	rec := doJSON(t, r, http.MethodPut, "/stands/10/construction-type", map[string]string{"booth_construction_type": "partner_built"})
	require.Equal(t, http.StatusOK, rec.Code)
	var stand domain.Stand
	decode(t, rec, &stand)
	assert.Equal(t, domain.ConstructionPartnerBuilt, stand.BoothConstructionType)

	rec = doJSON(t, r, http.MethodPut, "/stands/10/construction-type", map[string]string{"booth_construction_type": "rented"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
