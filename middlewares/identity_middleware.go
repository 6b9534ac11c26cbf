// middlewares/identity_middleware.go
package middlewares

import (
	"errors"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultUserID is the single-user fallback identity. Every request resolves
// to some user; a missing or invalid token never rejects the request.
const DefaultUserID uint = 1

// IdentityMiddleware resolves the acting user. A valid Bearer token with a
// userId claim wins; anything else falls back to the default user.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", DefaultUserID)

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}
		secret := []byte(os.Getenv("JWT_SECRET"))
		if len(secret) == 0 {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.Next()
			return
		}
		if v, ok := claims["userId"]; ok {
			switch id := v.(type) {
			case float64:
				c.Set("userID", uint(id))
			case int64:
				c.Set("userID", uint(id))
			}
		}
		c.Next()
	}
}
