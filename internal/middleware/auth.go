package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"carpool/internal/domain"
)

const (
	// ContextUserID is the gin context key holding the authenticated
	// user's ID.
	ContextUserID = "user_id"
	// ContextRoles is the gin context key holding the authenticated
	// user's roles.
	ContextRoles = "roles"
)

// RequireAuth validates the Bearer token and stores the subject and
// roles in the request context.
func RequireAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			return
		}

		c.Set(ContextUserID, sub)
		c.Set(ContextRoles, rolesFromClaims(claims))
		c.Next()
	}
}

// RequireRole rejects requests whose token lacks the role. Must run
// after RequireAuth.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, held := range RolesFrom(c) {
			if held == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
	}
}

// UserIDFrom returns the authenticated user's ID, or "" when the
// request is unauthenticated.
func UserIDFrom(c *gin.Context) string {
	id, _ := c.Get(ContextUserID)
	s, _ := id.(string)
	return s
}

// RolesFrom returns the authenticated user's roles.
func RolesFrom(c *gin.Context) []domain.Role {
	v, _ := c.Get(ContextRoles)
	roles, _ := v.([]domain.Role)
	return roles
}

func rolesFromClaims(claims jwt.MapClaims) []domain.Role {
	raw, _ := claims["roles"].([]any)
	roles := make([]domain.Role, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, domain.Role(s))
		}
	}
	return roles
}
