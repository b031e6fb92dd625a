package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendingops/backend/pkg/auth"
)

const testSecret = "middleware-secret"

func token(t *testing.T, role string) string {
	t.Helper()
	claims := &auth.Claims{
		User: auth.UserSession{ID: "u1", Email: "ops@lender.test", Role: role},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newRouter(verifier *auth.Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/read", RequireAuth(verifier), func(c *gin.Context) {
		user, _ := c.Get(auth.ContextKeyUser)
		c.JSON(http.StatusOK, gin.H{"user": user})
	})
	r.POST("/write", RequireAuth(verifier), RequireAdmin(verifier), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func serve(r *gin.Engine, method, path, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newRouter(auth.NewVerifier(testSecret))

	tests := []struct {
		name          string
		authorization string
		status        int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token(t, "analyst"), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, "/read", tt.authorization)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter(auth.NewVerifier(testSecret))

	w := serve(r, http.MethodPost, "/write", "Bearer "+token(t, "analyst"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(r, http.MethodPost, "/write", "Bearer "+token(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAuthDisabledWithoutSecret(t *testing.T) {
	r := newRouter(auth.NewVerifier(""))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/read", "").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodPost, "/write", "").Code)
}

func TestCors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Cors())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://ops.lender.test")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://ops.lender.test", w.Header().Get("Access-Control-Allow-Origin"))
}
