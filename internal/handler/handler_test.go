package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/palmcourt/hotel-admin/internal/config"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

// newTestHandler 不连接数据库、redis 和 rabbitmq，只能覆盖在访问它们之前就结束的路径
func newTestHandler(t *testing.T) *Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.APIPrefix = "/admin"
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.Expiration = 1
	cfg.Redis.OperationExpiration = 1
	cfg.Storage.UploadDir = t.TempDir()
	cfg.Storage.MaxUploadSize = 1 << 20
	cfg.Storage.MaxImages = 2

	h, err := NewHandler(cfg, nil, nil, nil)
	require.NoError(t, err)
	h.now = func() time.Time { return testNow }
	h.RegisterRoutes()

	return h
}

func signTestToken(t *testing.T, secret string, method jwt.SigningMethod, role string, sub int64, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(method, AuthClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(sub, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})
	ss, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return ss
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)
	return rec
}

func withValue(r *http.Request, key ContextKey, v any) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, v))
}
