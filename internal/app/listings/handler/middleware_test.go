package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"roamstay/internal/app/listings/repository/mocks"
	"roamstay/internal/app/listings/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMiddlewareRouter(jwtManager *util.JWTManager, tokenRepo *mocks.MockTokenRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	m := NewAuthMiddleware(jwtManager, tokenRepo)
	router.GET("/protected", m.Authenticate(), func(c *gin.Context) {
		identity, _ := identityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID})
	})

	return router
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	tokenRepo := new(mocks.MockTokenRepository)
	router := newMiddlewareRouter(jwtManager, tokenRepo)

	token, err := jwtManager.GenerateAccessToken("user-123", "traveler", false)
	require.NoError(t, err)

	tokenRepo.On("IsBlacklisted", mock.Anything, token).Return(false, nil)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-123")
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	router := newMiddlewareRouter(jwtManager, new(mocks.MockTokenRepository))

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BadFormat(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	router := newMiddlewareRouter(jwtManager, new(mocks.MockTokenRepository))

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	router := newMiddlewareRouter(jwtManager, new(mocks.MockTokenRepository))

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_BlacklistedToken(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", 15*time.Minute, time.Hour)
	tokenRepo := new(mocks.MockTokenRepository)
	router := newMiddlewareRouter(jwtManager, tokenRepo)

	token, err := jwtManager.GenerateAccessToken("user-123", "traveler", false)
	require.NoError(t, err)

	// Токен отозван через logout
	tokenRepo.On("IsBlacklisted", mock.Anything, token).Return(true, nil)

	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
