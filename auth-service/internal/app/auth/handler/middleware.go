package handler

import (
	"errors"
	"net/http"
	"strings"

	"spectre/auth-service/internal/app/auth/service"
	"spectre/auth-service/internal/app/auth/util"
	"spectre/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ключи gin.Context, которые выставляет Authenticate
const (
	ctxUserID      = "user_id"
	ctxRole        = "role"
	ctxClaims      = "claims"
	ctxAccessToken = "access_token"
)

type AuthMiddleware struct {
	authService service.AuthServiceInterface
}

func NewAuthMiddleware(authService service.AuthServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate проверяет Bearer токен, включая чёрный список
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || token == "" {
			respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenExpired):
				respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Token has expired")
			case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrTokenRevoked):
				respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid token")
			default:
				logger.Error().Err(err).Msg("Failed to validate token")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate token"})
			}
			c.Abort()
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid token")
			c.Abort()
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxClaims, claims)
		c.Set(ctxAccessToken, token)
		c.Next()
	}
}

// RequireRole - после Authenticate
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		respondError(c, http.StatusForbidden, CodeForbidden, "Insufficient permissions")
		c.Abort()
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ctxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

func currentClaims(c *gin.Context) (*util.JWTClaims, bool) {
	value, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*util.JWTClaims)
	return claims, ok
}
