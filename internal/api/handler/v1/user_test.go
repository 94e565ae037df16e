package v1

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

func newUserRouter(userID uint) http.Handler {
	h := NewUserHandler(users)
	r := newRouter(userID)
	r.GET("/users/me", h.HandleGetMe)
	r.GET("/users/:userID", h.HandleGetUser)
	r.GET("/partners", h.HandleListPartners)
	return r
}

func TestHandleGetMe(t *testing.T) {
	rec := doJSON(t, newUserRouter(testPartner.ID), http.MethodGet, "/users/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me domain.User
	decode(t, rec, &me)
	assert.Equal(t, testPartner.Email, me.Email)

	assert.Equal(t, http.StatusUnauthorized, doJSON(t, newUserRouter(0), http.MethodGet, "/users/me", nil).Code)
}

func TestHandleGetUser(t *testing.T) {
	partner := newUserRouter(testPartner.ID)
	assert.Equal(t, http.StatusOK, doJSON(t, partner, http.MethodGet, "/users/2", nil).Code)
	assert.Equal(t, http.StatusForbidden, doJSON(t, partner, http.MethodGet, "/users/1", nil).Code)

	admin := newUserRouter(testAdmin.ID)
	assert.Equal(t, http.StatusOK, doJSON(t, admin, http.MethodGet, "/users/2", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, admin, http.MethodGet, "/users/9", nil).Code)
}

func TestHandleListPartners(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, doJSON(t, newUserRouter(testPartner.ID), http.MethodGet, "/partners", nil).Code)

	rec := doJSON(t, newUserRouter(testAdmin.ID), http.MethodGet, "/partners", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var partners []domain.Partner
	decode(t, rec, &partners)
	require.Len(t, partners, 1)
	assert.Equal(t, "Acme", partners[0].Company)
}
