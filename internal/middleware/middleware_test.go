package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"gitlab.com/timkado/api/agency-core/internal/pkg/jwt"
	"gitlab.com/timkado/api/agency-core/internal/tenant"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	manager, err := jwt.NewManager("secret", "agency-core", time.Hour)
	require.NoError(t, err)
	token, _, err := manager.Issue(7, "jane", false)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Auth(manager))
	r.GET("/me", func(c *gin.Context) {
		p, err := tenant.PrincipalFromContext(c.Request.Context())
		require.NoError(t, err)
		c.String(http.StatusOK, "%d %s", p.UserID, p.Username)
	})

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := serve(r, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "7 jane", rec.Body.String())
	})

	t.Run("missing token", func(t *testing.T) {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("foreign token", func(t *testing.T) {
		otherManager, err := jwt.NewManager("other", "agency-core", time.Hour)
		require.NoError(t, err)
		other, _, err := otherManager.Issue(7, "jane", false)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		id, err := tenant.FromRequestIDContext(c.Request.Context())
		require.NoError(t, err)
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := serve(r, req)
	assert.Equal(t, "req-1", rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Body.String())
	assert.Equal(t, rec.Body.String(), rec.Header().Get(RequestIDHeader))
}

func TestRecoveryAndAccessLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger.Log = zap.New(core)

	r := gin.New()
	r.Use(RequestID(), AccessLog(), Recovery())
	r.GET("/boom", func(*gin.Context) { panic(errors.New("boom")) })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	assert.Equal(t, 1, logs.FilterMessage("Request failed").Len())

	serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	served := logs.FilterMessage("Request served").All()
	require.Len(t, served, 1)
	assert.Equal(t, "/ok", served[0].ContextMap()["route"])
}
