package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/footlink/internal/app/models/dto"
	"github.com/yigit/footlink/internal/pkg/apperrors"
	"github.com/yigit/footlink/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body
}

func newAuthRouter(jwtService *auth.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwtService)
	r := gin.New()
	whoami := func(c *gin.Context) {
		id, _ := c.Get(ContextUserID)
		c.JSON(http.StatusOK, gin.H{"userID": id})
	}
	r.GET("/private", m.JWTAuth(), whoami)
	r.GET("/public", m.OptionalAuth(), whoami)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	token, _, err := jwtService.GenerateAccessToken(7, "winger7")
	require.NoError(t, err)
	r := newAuthRouter(jwtService)

	tests := []struct {
		name       string
		target     string
		header     string
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"bearer header", "/private", "Bearer " + token, http.StatusOK, ""},
		{"raw token", "/private", token, http.StatusOK, ""},
		{"query token", "/private?token=" + token, "", http.StatusOK, ""},
		{"missing", "/private", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"garbage", "/private", "Bearer nope", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
			} else {
				assert.JSONEq(t, `{"userID":7}`, w.Body.String())
			}
		})
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: -time.Minute, TokenIssuer: "test"})
	token, _, err := jwtService.GenerateAccessToken(7, "winger7")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newAuthRouter(jwtService).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Error.Code)
}

func TestOptionalAuth(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	token, _, err := jwtService.GenerateAccessToken(3, "keeper")
	require.NoError(t, err)
	r := newAuthRouter(jwtService)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":null}`, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.JSONEq(t, `{"userID":3}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/public", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userID":null}`, w.Body.String())
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    dto.ErrorCode
		wantMessage string
	}{
		{"user not found", apperrors.ErrUserNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
		{"custom not found", apperrors.NewCustomError(apperrors.ErrUserNotFound, "Target user not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Target user not found"},
		{"wrapped not found", fmt.Errorf("loading: %w", apperrors.ErrPostNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
		{"forbidden", apperrors.NewForbiddenError("Only the receiver can respond"), http.StatusForbidden, dto.ErrorCodeForbidden, "Only the receiver can respond"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid credentials"},
		{"unauthenticated", apperrors.ErrUnauthenticated, http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authentication required"},
		{"username taken", apperrors.ErrUsernameTaken, http.StatusBadRequest, dto.ErrorCodeUsernameTaken, "Username already taken"},
		{"validation", fmt.Errorf("%w: content is required", apperrors.ErrValidationFailed), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Validation failed"},
		{"self connection", apperrors.ErrSelfConnection, http.StatusBadRequest, dto.ErrorCodeBadRequest, "cannot connect to yourself"},
		{"invalid post type", fmt.Errorf("%w: must be one of text, video, achievement, stats", apperrors.ErrInvalidPostType), http.StatusBadRequest, dto.ErrorCodeBadRequest, "invalid post type: must be one of text, video, achievement, stats"},
		{"bad request", apperrors.NewBadRequestError("unknown filter"), http.StatusBadRequest, dto.ErrorCodeBadRequest, "unknown filter"},
		{"connection exists", apperrors.ErrConnectionExists, http.StatusConflict, dto.ErrorCodeConflict, "connection already exists between these users"},
		{"storage down", fmt.Errorf("%w: open", apperrors.ErrStorageUnavailable), http.StatusServiceUnavailable, dto.ErrorCodeStorageUnavailable, "Storage temporarily unavailable"},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, tt.wantMessage, body.Error.Message)
		})
	}
}

func TestBindJSON(t *testing.T) {
	r := gin.New()
	r.POST("/comments", func(c *gin.Context) {
		var req dto.CreateCommentRequest
		if !BindJSON(c, &req) {
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(req))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, body.Error.Code)
	assert.Equal(t, "content", body.Error.Field)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/comments", strings.NewReader(`{"content":"great goal"}`)))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"data":{"content":"great goal"}}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "clients have independent buckets")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"))

	now = now.Add(time.Hour)
	rl.Allow("10.0.0.3")
	assert.Len(t, rl.limiters, 1, "idle clients are evicted")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	r := gin.New()
	r.Use(rl.Middleware())
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), string(dto.ErrorCodeRateLimited))
}

func TestRequestLoggerAndMetrics(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(zerolog.New(&buf)), Metrics())
	r.GET("/api/posts/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/posts/9", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "/api/posts/9", line["path"])
	assert.EqualValues(t, 404, line["status"])
}
