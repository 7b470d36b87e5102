package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"site-admin-backend/internal/apperr"
	"site-admin-backend/internal/config"
	"site-admin-backend/internal/models"
)

const (
	UserIDKey = "user_id"
	AdminKey  = "admin"
)

// AuthMiddleware verifies a Supabase HS256 access token and stores its
// subject under UserIDKey.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	secret := []byte(cfg.Supabase.JWTSecret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "missing authorization header", "")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abort(c, http.StatusUnauthorized, "invalid authorization header format", "")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "empty token", "")
			return
		}

		// Some clients URL-encode the token
		if decoded, err := url.QueryUnescape(tokenString); err == nil {
			tokenString = decoded
		}

		if strings.Count(tokenString, ".") != 2 {
			abort(c, http.StatusUnauthorized, "invalid token format", "JWT token must have 3 parts separated by dots")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			if len(secret) == 0 {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil {
			var msg string
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "token has expired"
			case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
				msg = "token signature is invalid - check JWT secret"
			case errors.Is(err, jwt.ErrTokenMalformed):
				msg = "token is malformed - ensure you're using a valid Supabase JWT token"
			default:
				msg = err.Error()
			}
			abort(c, http.StatusUnauthorized, "invalid token", msg)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			abort(c, http.StatusUnauthorized, "invalid token claims", "")
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			abort(c, http.StatusUnauthorized, "missing user id in token", "")
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}

// AdminAuthorizer resolves an auth subject to an admin account or fails.
type AdminAuthorizer interface {
	AuthorizeAdmin(ctx context.Context, authUserID string) (*models.UserAccount, error)
}

// RequireAdmin must run after AuthMiddleware. The resolved account is stored
// under AdminKey.
func RequireAdmin(authz AdminAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		sub := c.GetString(UserIDKey)
		if sub == "" {
			abort(c, http.StatusUnauthorized, "user id not found", "")
			return
		}

		admin, err := authz.AuthorizeAdmin(c.Request.Context(), sub)
		if err != nil {
			status := apperr.HTTPStatus(err)
			if status == http.StatusForbidden {
				abort(c, status, "admin role required", "")
				return
			}
			abort(c, status, "failed to authorize", err.Error())
			return
		}

		c.Set(AdminKey, admin)
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg, detail string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{Error: msg, Message: detail})
}
