package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/stands/:id", func(ctx *gin.Context) {
		ctx.Status(http.StatusTeapot)
	})
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/stands/:id", "418"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stands/12", nil))
	require.Equal(t, http.StatusTeapot, w.Code)

	after := testutil.ToFloat64(RequestsTotal.WithLabelValues(http.MethodGet, "/stands/:id", "418"))
	assert.Equal(t, before+1, after)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
