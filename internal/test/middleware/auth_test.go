package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/config"
	"site-admin-backend/internal/middleware"
	"site-admin-backend/internal/models"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func testConfig() *config.Config {
	return &config.Config{Supabase: config.Supabase{JWTSecret: testSecret}}
}

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return s
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(testConfig()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(middleware.UserIDKey)})
	})
	return router
}

func do(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_NoToken(t *testing.T) {
	w := do(authRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing authorization header")
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	for _, header := range []string{
		"Bearer invalid-token",
		"Token abc.def.ghi",
		"Bearer ",
		"Bearer a.b.c",
	} {
		w := do(authRouter(), header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "user-123"}, "another-secret")
	w := do(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_Expired(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "user-123", "exp": time.Now().Add(-time.Hour).Unix()}, testSecret)
	w := do(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAuthMiddleware_MissingSubject(t *testing.T) {
	token := sign(t, jwt.MapClaims{"role": "authenticated"}, testSecret)
	w := do(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "user-123"}, testSecret)
	w := do(authRouter(), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
}

type stubAuthorizer struct {
	err  error
	seen string
}

func (s *stubAuthorizer) AuthorizeAdmin(_ context.Context, sub string) (*models.UserAccount, error) {
	s.seen = sub
	if s.err != nil {
		return nil, s.err
	}
	return &models.UserAccount{ID: "acc-1", AuthUserID: sub, Role: models.RoleAdmin}, nil
}

func adminRouter(authz middleware.AdminAuthorizer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.AuthMiddleware(testConfig()))
	router.Use(middleware.RequireAdmin(authz))
	router.GET("/test", func(c *gin.Context) {
		admin := c.MustGet(middleware.AdminKey).(*models.UserAccount)
		c.JSON(http.StatusOK, gin.H{"admin": admin.ID})
	})
	return router
}

func TestRequireAdmin(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "user-123"}, testSecret)

	authz := &stubAuthorizer{}
	w := do(adminRouter(authz), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-123", authz.seen)
	assert.Contains(t, w.Body.String(), "acc-1")

	forbidden := &stubAuthorizer{err: apperr.New(apperr.KindForbidden, "AuthorizeAdmin", apperr.ErrForbidden)}
	w = do(adminRouter(forbidden), "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	down := &stubAuthorizer{err: apperr.Remote("AuthorizeAdmin", assert.AnError)}
	w = do(adminRouter(down), "Bearer "+token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
