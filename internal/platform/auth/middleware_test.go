package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func protectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RequireAuth(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user": c.GetString(CtxUserIDKey),
			"role": c.GetString(CtxRoleKey),
		})
	})
	return r
}

func signToken(t *testing.T, method jwt.SigningMethod, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	r := protectedRouter()
	tok := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":  "librarian1",
		"role": RoleLibrarian,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	w := get(r, "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "librarian1")
	assert.Contains(t, w.Body.String(), RoleLibrarian)
}

func TestRequireAuthRejections(t *testing.T) {
	r := protectedRouter()

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer ").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer not-a-jwt").Code)

	// wrong secret
	tok := signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), jwt.MapClaims{
		"sub": "x", "exp": time.Now().Add(time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+tok).Code)

	// expired
	tok = signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub": "x", "exp": time.Now().Add(-time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+tok).Code)

	// no sub claim
	tok = signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer "+tok).Code)
}
