package middlewares

import (
	"strings"

	"github.com/gin-gonic/gin"

	"staycation/models"
	"staycation/services"
)

const (
	CurrentUserIDKey   = "currentUserID"
	CurrentUserRoleKey = "currentUserRole"
	claimsKey          = "claims"
	TokenCookie        = "token"
)

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// AuthMiddleware accepts a bearer header or the token cookie. With roles given, the
// caller must hold one of them.
func AuthMiddleware(tokens *services.TokenService, requiredRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.Error(services.Unauthorized("authorization header is missing"))
			c.Abort()
			return
		}

		claims, err := tokens.Parse(tokenString)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		if len(requiredRoles) > 0 {
			hasRole := false
			for _, role := range requiredRoles {
				if claims.Role == role {
					hasRole = true
					break
				}
			}
			if !hasRole {
				c.Error(services.Forbidden("you do not have access to this resource"))
				c.Abort()
				return
			}
		}

		c.Set(CurrentUserIDKey, claims.ID)
		c.Set(CurrentUserRoleKey, claims.Role)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireVerified must run after AuthMiddleware.
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil || !claims.IsEmailVerified {
			c.Error(services.Forbidden("please verify your email first"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentClaims(c *gin.Context) *services.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.Claims)
	return claims
}

func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(CurrentUserIDKey)
}

func CurrentUserRole(c *gin.Context) models.Role {
	v, _ := c.Get(CurrentUserRoleKey)
	role, _ := v.(models.Role)
	return role
}

// CronAuth guards the sweep endpoints with a shared secret.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" || bearerToken(c) != secret {
			c.Error(services.Unauthorized("invalid cron secret"))
			c.Abort()
			return
		}
		c.Next()
	}
}
