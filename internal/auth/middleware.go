package auth

import (
	"net/http"
	"strings"

	"github.com/Brownie44l1/propvest/internal/backend"
	"github.com/Brownie44l1/propvest/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxEmail  = "email"
	ctxToken  = "token"
)

// Middleware rejects requests without a valid bearer token. The token is
// forwarded to the backend on every call made while serving the request.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header {
			abort(c)
			return
		}

		claims, err := ValidateJWT(token, secret)
		if err != nil {
			abort(c)
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxToken, token)
		c.Request = c.Request.WithContext(backend.WithToken(c.Request.Context(), token))
		c.Next()
	}
}

func abort(c *gin.Context) {
	notice := models.NoticeFor(models.ErrUnauthorized)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"message": notice.Message,
		"notice":  notice,
	})
}

// UserID returns the authenticated user's id.
func UserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// Email returns the authenticated user's email.
func Email(c *gin.Context) string {
	return c.GetString(ctxEmail)
}
