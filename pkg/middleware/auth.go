package middleware

import (
	"strings"
	"time"

	"github.com/kapostolos1/estia-app/pkg/errutil"

	"github.com/gin-gonic/gin"
	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

const userIDKey = "auth.user_id"

// Session validates the Bearer session token (HS256, shared secret) and
// stores the subject claim on the request context.
func Session(secret string) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(errutil.StatusUnauthorized.HTTPStatus(), gin.H{
				"error": gin.H{"code": errutil.StatusUnauthorized, "message": "missing bearer token"},
			})
			return
		}

		raw := strings.TrimPrefix(auth, "Bearer ")

		token, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
		if err != nil {
			c.AbortWithStatusJSON(errutil.StatusUnauthorized.HTTPStatus(), gin.H{
				"error": gin.H{"code": errutil.StatusUnauthorized, "message": "invalid session token"},
			})
			return
		}

		var claims jwt.Claims
		if err := token.Claims(key, &claims); err != nil {
			c.AbortWithStatusJSON(errutil.StatusUnauthorized.HTTPStatus(), gin.H{
				"error": gin.H{"code": errutil.StatusUnauthorized, "message": "invalid session token"},
			})
			return
		}

		if err := claims.Validate(jwt.Expected{Time: time.Now()}); err != nil || claims.Subject == "" {
			c.AbortWithStatusJSON(errutil.StatusUnauthorized.HTTPStatus(), gin.H{
				"error": gin.H{"code": errutil.StatusUnauthorized, "message": "expired session"},
			})
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Next()
	}
}

// UserID returns the authenticated user id set by Session, or "".
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
