package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/filestore"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/pkg/jwt"
	"gitlab.com/timkado/api/agency-core/internal/storage"
	"gitlab.com/timkado/api/agency-core/internal/storage/storagetest"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

const password = "testpass123"

type apiEnv struct {
	engine  *gin.Engine
	repo    *storage.PostgresRepo
	svc     *usecase.Service
	tokens  *jwt.Manager
	alice   *model.User
	bob     *model.User
	agencyA *model.Agency
	agencyB *model.Agency
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Log = zaptest.NewLogger(t)
	ctx := context.Background()

	repo, err := storage.NewRepoFromDB(ctx, storagetest.OpenSQLite(t), true)
	require.NoError(t, err)

	tokens, err := jwt.NewManager("test-secret", "agency-core", time.Hour)
	require.NoError(t, err)

	hash, err := usecase.HashPassword(password)
	require.NoError(t, err)

	e := &apiEnv{tokens: tokens, repo: repo}
	e.alice = model.NewUser(&model.User{Username: "alice", PasswordHash: hash})
	e.bob = model.NewUser(&model.User{Username: "bob", PasswordHash: hash})
	require.NoError(t, repo.CreateUser(ctx, e.alice))
	require.NoError(t, repo.CreateUser(ctx, e.bob))

	e.agencyA, e.agencyB = model.NewAgency(), model.NewAgency()
	require.NoError(t, repo.CreateAgency(ctx, e.agencyA))
	require.NoError(t, repo.CreateAgency(ctx, e.agencyB))
	_, err = repo.UpsertMembership(ctx, model.AgencyUser{UserID: e.alice.ID, AgencyID: e.agencyA.ID, Role: model.RoleOwner, IsPrimary: true})
	require.NoError(t, err)
	_, err = repo.UpsertMembership(ctx, model.AgencyUser{UserID: e.bob.ID, AgencyID: e.agencyB.ID, Role: model.RoleOwner, IsPrimary: true})
	require.NoError(t, err)

	e.svc = usecase.NewService(usecase.Dependencies{
		Repo:   repo,
		Files:  filestore.NewStore(afero.NewMemMapFs(), 1<<20),
		Tokens: tokens,
	})
	e.engine = NewEngine(e.svc, tokens, 1<<20)
	return e
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func (e *apiEnv) login(t *testing.T, username string) string {
	t.Helper()
	rec, env := e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func TestAPI_Login(t *testing.T) {
	e := newAPIEnv(t)

	token := e.login(t, "alice")
	rec, env := e.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"username":"alice"`)

	rec, env = e.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestAPI_RequiresToken(t *testing.T) {
	e := newAPIEnv(t)

	rec, env := e.do(t, http.MethodGet, "/api/v1/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, _ = e.do(t, http.MethodGet, "/api/v1/customers", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_CustomerIsolation(t *testing.T) {
	e := newAPIEnv(t)
	alice := e.login(t, "alice")
	bob := e.login(t, "bob")

	rec, env := e.do(t, http.MethodPost, "/api/v1/customers", alice, map[string]interface{}{
		"agency_id":    e.agencyA.ID,
		"first_name":   "Dana",
		"last_name":    "Reyes",
		"phone_number": "(415) 555-2671",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created model.Customer
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "+14155552671", created.PhoneNumber)

	path := fmt.Sprintf("/api/v1/customers/%d", created.ID)

	rec, _ = e.do(t, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = e.do(t, http.MethodGet, path, bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)

	rec, _ = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/customers?agency_id=%d", e.agencyA.ID), bob, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/customers?agency_id=%d", e.agencyB.ID), bob, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(env.Data), "Reyes")

	rec, _ = e.do(t, http.MethodGet, "/api/v1/customers", bob, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_ValidationErrors(t *testing.T) {
	e := newAPIEnv(t)
	alice := e.login(t, "alice")

	rec, env := e.do(t, http.MethodPost, "/api/v1/customers", alice, map[string]interface{}{
		"agency_id":    e.agencyA.ID,
		"first_name":   "Dana",
		"last_name":    "Reyes",
		"phone_number": "12345",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)

	rec, _ = e.do(t, http.MethodGet, "/api/v1/customers/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_PolicyIsActive(t *testing.T) {
	e := newAPIEnv(t)
	ctx := context.Background()
	alice := e.login(t, "alice")

	customer := model.NewCustomer(&model.Customer{AgencyID: e.agencyA.ID})
	require.NoError(t, e.repo.CreateCustomer(ctx, customer))
	business := model.NewBusiness(&model.Business{CustomerID: customer.ID})
	require.NoError(t, e.repo.CreateBusiness(ctx, business))
	policy := model.NewPolicy(&model.Policy{BusinessID: business.ID})
	require.NoError(t, e.repo.CreatePolicy(ctx, policy))

	rec, env := e.do(t, http.MethodGet, fmt.Sprintf("/api/v1/policies/%d", policy.ID), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		ID       int64 `json:"id"`
		IsActive bool  `json:"is_active"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, policy.ID, res.ID)
	assert.True(t, res.IsActive)
}

func TestAPI_VoiceWebhookIsPublic(t *testing.T) {
	e := newAPIEnv(t)

	rec, _ := e.do(t, http.MethodPost, "/api/v1/webhooks/voice", "", map[string]interface{}{
		"message": map[string]interface{}{"type": "status-update"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var res usecase.WebhookResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, usecase.WebhookSuccess, res.Status)
}

func TestServer_CORS(t *testing.T) {
	e := newAPIEnv(t)
	cfg := &config.Config{}
	cfg.Server.Port = 0
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

	srv := NewServer(cfg, e.svc, e.tokens)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/customers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/customers", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
