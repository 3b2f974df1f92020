package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appCtx "github.com/baechuer/real-time-ressys/services/syndication-service/internal/pkg/context"
	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/transport/http/response"
)

const (
	secret = "test-secret"
	issuer = "test-issuer"
)

func signToken(t *testing.T, uid, iss, key string, expired bool, method jwt.SigningMethod) string {
	t.Helper()
	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}
	claims := Claims{
		UserID: uid,
		Role:   "organizer",
		Ver:    1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    iss,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	ss, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return ss
}

func TestAuthMiddleware_Require(t *testing.T) {
	auth := NewAuth(secret, issuer)

	run := func(header string, next http.HandlerFunc) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rr := httptest.NewRecorder()
		auth.Require(next).ServeHTTP(rr, req)
		return rr
	}
	reject := func(w http.ResponseWriter, r *http.Request) { t.Fatal("next must not be called") }

	t.Run("valid_token_should_pass_and_set_context", func(t *testing.T) {
		token := signToken(t, "org-123", issuer, secret, false, jwt.SigningMethodHS256)
		rr := run("Bearer "+token, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "org-123", UserID(r))
			w.WriteHeader(http.StatusOK)
		})
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing_header_should_fail", func(t *testing.T) {
		rr := run("", reject)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var body response.ErrorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "unauthorized", body.Error.Code)
		assert.Equal(t, "missing bearer token", body.Error.Meta["reason"])
	})

	t.Run("expired_token_should_fail", func(t *testing.T) {
		rr := run("Bearer "+signToken(t, "org-1", issuer, secret, true, jwt.SigningMethodHS256), reject)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong_secret_should_fail", func(t *testing.T) {
		rr := run("Bearer "+signToken(t, "org-1", issuer, "wrong-secret", false, jwt.SigningMethodHS256), reject)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("wrong_issuer_should_fail", func(t *testing.T) {
		rr := run("Bearer "+signToken(t, "org-1", "someone-else", secret, false, jwt.SigningMethodHS256), reject)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("other_hmac_alg_should_fail", func(t *testing.T) {
		rr := run("Bearer "+signToken(t, "org-1", issuer, secret, false, jwt.SigningMethodHS512), reject)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing_uid_should_fail", func(t *testing.T) {
		rr := run("Bearer "+signToken(t, "", issuer, secret, false, jwt.SigningMethodHS256), reject)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = appCtx.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc", seen)
	assert.Equal(t, "abc", rr.Header().Get(HeaderXRequestID))

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "abc", seen)
	assert.Equal(t, seen, rr.Header().Get(HeaderXRequestID))
}

func TestAccessLog(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test-path", nil)
	rr := httptest.NewRecorder()

	AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("hello"))
	})).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "hello", rr.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
}
