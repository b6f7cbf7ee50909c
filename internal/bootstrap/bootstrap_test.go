package bootstrap

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/footlink/internal/app/repositories/memory"
	"github.com/yigit/footlink/internal/config"
	"github.com/yigit/footlink/internal/pkg/auth"
	"github.com/yigit/footlink/internal/pkg/cache"
	"github.com/yigit/footlink/internal/pkg/filestorage"
)

type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	auth.BcryptCost = 4
	lgr := zerolog.Nop()

	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Mode = "test"
	cfg.Server.MetricsPath = "/metrics"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.AccessTokenExpiration = "1h"
	cfg.JWT.Issuer = "footlink.test"
	cfg.Media.Driver = config.MediaLocal
	cfg.Media.LocalPath = t.TempDir()
	cfg.Media.MaxUploadBytes = 1 << 20
	cfg.Scouting.CacheTTL = "1h"

	storage, err := filestorage.NewLocalStorage(cfg.Media.LocalPath, PublicURL(cfg))
	require.NoError(t, err)
	localCache, err := cache.NewLocal(1 << 20)
	require.NoError(t, err)

	deps, err := BuildDependencies(cfg, memory.NewRepositories(), localCache, storage, lgr)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	assert.Nil(t, deps.AuthLimiter, "rate limiting is off unless enabled")

	return &testAPI{t: t, handler: SetupRouter(cfg, deps, lgr)}
}

func (a *testAPI) do(method, path, token string, body any) (int, apiEnvelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	var env apiEnvelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (a *testAPI) register(username string) (int64, string) {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"password": "secret123",
		"fullName": username + " Player",
	})
	require.Equal(a.t, http.StatusCreated, status)

	var resp struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &resp))
	require.NotEmpty(a.t, resp.Token.AccessToken)
	return resp.User.ID, resp.Token.AccessToken
}

type postView struct {
	ID         int64 `json:"id"`
	Likes      int   `json:"likes"`
	HasLiked   bool  `json:"hasLiked"`
	SharedPost *struct {
		OriginalPostID int64 `json:"originalPostId"`
	} `json:"sharedPost"`
}

func TestAPI_PostLifecycle(t *testing.T) {
	api := newTestAPI(t)
	_, aliceToken := api.register("alice")
	_, bobToken := api.register("bob")

	status, env := api.do(http.MethodPost, "/api/posts", aliceToken, map[string]string{"content": "First touch drills"})
	require.Equal(t, http.StatusCreated, status)
	var created postView
	require.NoError(t, json.Unmarshal(env.Data, &created))
	postPath := fmt.Sprintf("/api/posts/%d", created.ID)

	status, env = api.do(http.MethodPost, postPath+"/like", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"liked":true,"likes":1}`, string(env.Data))

	status, env = api.do(http.MethodGet, postPath, bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	var seen postView
	require.NoError(t, json.Unmarshal(env.Data, &seen))
	assert.True(t, seen.HasLiked)
	assert.Equal(t, 1, seen.Likes)

	// anonymous readers never see hasLiked
	status, env = api.do(http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &seen))
	assert.False(t, seen.HasLiked)

	status, env = api.do(http.MethodPost, postPath+"/like", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"liked":false,"likes":0}`, string(env.Data))

	status, _ = api.do(http.MethodPost, postPath+"/comments", bobToken, map[string]string{"content": "Nice work"})
	require.Equal(t, http.StatusCreated, status)
	status, env = api.do(http.MethodGet, postPath+"/comments", "", nil)
	require.Equal(t, http.StatusOK, status)
	var comments []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &comments))
	assert.Len(t, comments, 1)

	status, env = api.do(http.MethodPost, postPath+"/share", bobToken, nil)
	require.Equal(t, http.StatusCreated, status)
	var shared postView
	require.NoError(t, json.Unmarshal(env.Data, &shared))
	require.NotNil(t, shared.SharedPost)
	assert.Equal(t, created.ID, shared.SharedPost.OriginalPostID)

	status, env = api.do(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	var feed []postView
	require.NoError(t, json.Unmarshal(env.Data, &feed))
	require.Len(t, feed, 2)
	assert.Equal(t, shared.ID, feed[0].ID, "feed is newest first")
}

func TestAPI_ConnectionFlow(t *testing.T) {
	api := newTestAPI(t)
	_, aliceToken := api.register("alice")
	bobID, bobToken := api.register("bob")

	status, env := api.do(http.MethodPost, "/api/connections/connect", aliceToken, map[string]int64{"userId": bobID})
	require.Equal(t, http.StatusCreated, status)
	var conn struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &conn))
	assert.Equal(t, "pending", conn.Status)

	status, env = api.do(http.MethodPost, "/api/connections/connect", aliceToken, map[string]int64{"userId": bobID})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)

	status, env = api.do(http.MethodGet, "/api/connections/pending", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	var pending []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	assert.Len(t, pending, 1)

	acceptPath := fmt.Sprintf("/api/connections/%d/accept", conn.ID)
	status, _ = api.do(http.MethodPost, acceptPath, aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status, "only the receiver may accept")

	status, env = api.do(http.MethodPost, acceptPath, bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &conn))
	assert.Equal(t, "accepted", conn.Status)

	status, env = api.do(http.MethodGet, "/api/connections", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	var accepted []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &accepted))
	assert.Len(t, accepted, 1)
}

func TestAPI_Errors(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.register("alice")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"profile without token", http.MethodGet, "/api/users/me", "", nil, http.StatusUnauthorized, "AUTH_008"},
		{"garbage token", http.MethodGet, "/api/users/me", "not-a-jwt", nil, http.StatusUnauthorized, "AUTH_005"},
		{"non numeric post id", http.MethodGet, "/api/posts/abc", "", nil, http.StatusBadRequest, "VAL_001"},
		{"unknown post", http.MethodGet, "/api/posts/999", "", nil, http.StatusNotFound, "RES_001"},
		{"unknown route", http.MethodGet, "/api/nope", "", nil, http.StatusNotFound, "RES_001"},
		{"unknown feed filter", http.MethodGet, "/api/posts?filter=bogus", "", nil, http.StatusBadRequest, "BAD_REQUEST"},
		{"network feed without token", http.MethodGet, "/api/posts?scope=network", "", nil, http.StatusUnauthorized, "AUTH_008"},
		{"short username", http.MethodPost, "/api/auth/register", "", map[string]string{"username": "ab", "password": "secret123"}, http.StatusBadRequest, "VAL_001"},
		{"duplicate username", http.MethodPost, "/api/auth/register", "", map[string]string{"username": "alice", "password": "secret123"}, http.StatusBadRequest, "AUTH_002"},
		{"wrong password", http.MethodPost, "/api/auth/login", "", map[string]string{"username": "alice", "password": "wrong-one"}, http.StatusUnauthorized, "AUTH_001"},
		{"empty comment", http.MethodPost, "/api/posts/1/comments", token, map[string]string{"content": ""}, http.StatusBadRequest, "VAL_001"},
		{"unknown scouting user", http.MethodGet, "/api/scouting-insights/999", "", nil, http.StatusNotFound, "RES_001"},
		{"suggestions for unknown user", http.MethodGet, "/api/connections/suggested/999", "", nil, http.StatusNotFound, "RES_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := api.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestAPI_SearchShortQuery(t *testing.T) {
	api := newTestAPI(t)
	api.register("alice")

	status, env := api.do(http.MethodGet, "/api/users/search?q=a", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, env = api.do(http.MethodGet, "/api/users/search?q=ali", "", nil)
	require.Equal(t, http.StatusOK, status)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 1)
}

func TestAPI_HealthAndMetrics(t *testing.T) {
	api := newTestAPI(t)

	status, env := api.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "footlink_")
}
