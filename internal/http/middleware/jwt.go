package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"

	"github.com/kubagp1/school-clock/internal/db"
)

const tokenLifetime = 72 * time.Hour

var errBadToken = errors.New("invalid token")

// GenerateJWT issues an HS256 token carrying the user id in "sub".
func GenerateJWT(userID int, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(tokenLifetime).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func userIDFromToken(raw, secret string) (int, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errBadToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errBadToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return 0, errBadToken
	}
	return int(sub), nil
}

// JWTMiddleware authenticates "Authorization: Bearer <token>", loads
// the user from the store and exposes it via GetCurrentUser. Requests
// without a valid token never reach the handler.
func JWTMiddleware(secret string, store db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		userID, err := userIDFromToken(raw, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := store.GetUserByID(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}
