package handler

import (
	"net/http"
	"strings"

	"roamstay/internal/app/listings/entity"
	"roamstay/internal/app/listings/repository"
	"roamstay/internal/app/listings/util"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware проверяет JWT токен в запросах для Gin
type AuthMiddleware struct {
	jwtManager *util.JWTManager
	tokenRepo  repository.TokenRepository
}

// NewAuthMiddleware создает новый middleware для аутентификации
func NewAuthMiddleware(jwtManager *util.JWTManager, tokenRepo repository.TokenRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		tokenRepo:  tokenRepo,
	}
}

// Authenticate проверяет JWT токен и добавляет данные пользователя в контекст Gin
// Токены из черного списка (после logout) отклоняются до истечения срока
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Проверяем формат "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]

		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		blacklisted, err := m.tokenRepo.IsBlacklisted(c.Request.Context(), tokenString)
		if err == nil && blacklisted {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Set("is_admin", claims.IsAdmin)
		c.Set("access_token", tokenString)

		c.Next()
	}
}

// identityFromContext собирает Identity из контекста Gin,
// заполненного middleware аутентификации
func identityFromContext(c *gin.Context) (entity.Identity, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return entity.Identity{}, false
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return entity.Identity{}, false
	}

	identity := entity.Identity{UserID: userIDStr}

	if username, exists := c.Get("username"); exists {
		if usernameStr, ok := username.(string); ok {
			identity.Username = usernameStr
		}
	}
	if isAdmin, exists := c.Get("is_admin"); exists {
		if isAdminBool, ok := isAdmin.(bool); ok {
			identity.IsAdmin = isAdminBool
		}
	}

	return identity, true
}
